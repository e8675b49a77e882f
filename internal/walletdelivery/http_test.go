package walletdelivery

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/golang/mock/gomock"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/go-petr/wallet-ledger/internal/domain"
	"github.com/go-petr/wallet-ledger/internal/middleware"
	"github.com/go-petr/wallet-ledger/pkg/currencypkg"
	"github.com/go-petr/wallet-ledger/pkg/errorspkg"
	"github.com/go-petr/wallet-ledger/pkg/moneypkg"
	"github.com/go-petr/wallet-ledger/pkg/randompkg"
	"github.com/go-petr/wallet-ledger/pkg/tokenpkg"
	"github.com/go-petr/wallet-ledger/pkg/web"
)

var tokenMaker tokenpkg.Maker

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)

	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		if err := v.RegisterValidation("currency", currencypkg.ValidCurrency); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}

		if err := v.RegisterValidation("decimal", moneypkg.ValidAmount); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}

	var err error

	tokenMaker, err = tokenpkg.NewPasetoMaker(randompkg.String(32))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	os.Exit(m.Run())
}

func newServer(s Service) *gin.Engine {
	h := NewHandler(s)

	server := gin.New()
	server.POST("/wallets", h.Create)
	server.GET("/wallets/:address", h.Get)
	server.GET("/wallets/:address/balances", h.Balances)
	server.POST("/wallets/:address/deposits", h.Deposit)
	server.POST("/wallets/:address/withdrawals", h.Withdraw)
	server.POST("/wallets/:address/conversions", h.Convert)
	server.POST("/wallets/:address/transfers", h.Transfer)
	server.GET("/wallets/:address/movements", h.ListMovements)
	server.GET("/wallets/:address/conversions", h.ListConversions)
	server.GET("/wallets/:address/transfers", h.ListTransfers)

	operator := server.Group("/", middleware.AuthMiddleware(tokenMaker))
	operator.GET("/wallets", h.List)
	operator.DELETE("/wallets/:address", h.Block)

	return server
}

func randomWallet() domain.Wallet {
	address, _ := randompkg.Hex(20)

	return domain.Wallet{
		Address:   address,
		Status:    domain.StatusActive,
		CreatedAt: time.Now().UTC(),
	}
}

// serve sends a request with an optional JSON body and decodes the response
// into data.
func serve(t *testing.T, server *gin.Engine, req *http.Request, data any) (int, web.Response) {
	t.Helper()

	recorder := httptest.NewRecorder()
	server.ServeHTTP(recorder, req)

	res := web.Response{Data: data}
	if err := json.NewDecoder(recorder.Body).Decode(&res); err != nil {
		t.Fatalf("Decoding response body error: %v", err)
	}

	return recorder.Code, res
}

func newRequest(t *testing.T, method, url string, body any) *http.Request {
	t.Helper()

	var buf bytes.Buffer

	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("Encoding request body error: %v", err)
		}
	}

	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatalf("Creating request error: %v", err)
	}

	return req
}

func TestCreate(t *testing.T) {
	created := domain.CreatedWallet{
		Wallet: randomWallet(),
		Secret: randompkg.String(64),
	}

	testCases := []struct {
		name           string
		buildStubs     func(s *MockService)
		wantStatusCode int
		wantError      string
	}{
		{
			name: "OK",
			buildStubs: func(s *MockService) {
				s.EXPECT().CreateWallet(gomock.Any()).Times(1).Return(created, nil)
			},
			wantStatusCode: http.StatusCreated,
		},
		{
			name: "StoreUnavailable",
			buildStubs: func(s *MockService) {
				s.EXPECT().CreateWallet(gomock.Any()).Times(1).
					Return(domain.CreatedWallet{}, errorspkg.ErrStoreUnavailable)
			},
			wantStatusCode: http.StatusServiceUnavailable,
			wantError:      errorspkg.ErrStoreUnavailable.Error(),
		},
		{
			name: "AddressCollisions",
			buildStubs: func(s *MockService) {
				s.EXPECT().CreateWallet(gomock.Any()).Times(1).
					Return(domain.CreatedWallet{}, domain.ErrDuplicateAddress)
			},
			wantStatusCode: http.StatusInternalServerError,
			wantError:      errorspkg.ErrInternal.Error(),
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			walletService := NewMockService(ctrl)
			tc.buildStubs(walletService)

			data := &struct {
				Wallet domain.CreatedWallet `json:"wallet"`
			}{}

			code, res := serve(t, newServer(walletService), newRequest(t, http.MethodPost, "/wallets", nil), data)
			if code != tc.wantStatusCode {
				t.Errorf("Status code: got %v, want %v", code, tc.wantStatusCode)
			}

			if tc.wantStatusCode != http.StatusCreated {
				if res.Error != tc.wantError {
					t.Errorf(`resp.Error=%q, want %q`, res.Error, tc.wantError)
				}

				return
			}

			if diff := cmp.Diff(created, data.Wallet, cmpopts.EquateApproxTime(time.Second)); diff != "" {
				t.Errorf("res.Data mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestGetDoesNotExposeSecretHash(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	w := randomWallet()
	w.SecretHash = "$2a$10$hash"

	walletService := NewMockService(ctrl)
	walletService.EXPECT().GetWallet(gomock.Any(), gomock.Eq(w.Address)).Times(1).Return(w, nil)

	recorder := httptest.NewRecorder()
	newServer(walletService).ServeHTTP(recorder, newRequest(t, http.MethodGet, "/wallets/"+w.Address, nil))

	if recorder.Code != http.StatusOK {
		t.Fatalf("Status code: got %v, want %v", recorder.Code, http.StatusOK)
	}

	if bytes.Contains(recorder.Body.Bytes(), []byte(w.SecretHash)) {
		t.Errorf("response body %s contains secret hash", recorder.Body.String())
	}
}

func TestOperatorRoutes(t *testing.T) {
	w := randomWallet()
	blocked := w
	blocked.Status = domain.StatusBlocked

	testCases := []struct {
		name           string
		method         string
		url            string
		setupAuth      func(t *testing.T, r *http.Request) error
		buildStubs     func(s *MockService)
		wantStatusCode int
		wantError      string
	}{
		{
			name:   "ListNoAuthorization",
			method: http.MethodGet,
			url:    "/wallets",
			setupAuth: func(t *testing.T, r *http.Request) error {
				return nil
			},
			buildStubs: func(s *MockService) {
				s.EXPECT().ListWallets(gomock.Any()).Times(0)
			},
			wantStatusCode: http.StatusUnauthorized,
			wantError:      middleware.ErrAuthHeaderNotFound.Error(),
		},
		{
			name:   "ListOK",
			method: http.MethodGet,
			url:    "/wallets",
			setupAuth: func(t *testing.T, r *http.Request) error {
				return middleware.AddAuthorization(r, tokenMaker, middleware.AuthTypeBearer, "operator", time.Minute)
			},
			buildStubs: func(s *MockService) {
				s.EXPECT().ListWallets(gomock.Any()).Times(1).Return([]domain.Wallet{w}, nil)
			},
			wantStatusCode: http.StatusOK,
		},
		{
			name:   "BlockNoAuthorization",
			method: http.MethodDelete,
			url:    "/wallets/" + w.Address,
			setupAuth: func(t *testing.T, r *http.Request) error {
				return nil
			},
			buildStubs: func(s *MockService) {
				s.EXPECT().BlockWallet(gomock.Any(), gomock.Any()).Times(0)
			},
			wantStatusCode: http.StatusUnauthorized,
			wantError:      middleware.ErrAuthHeaderNotFound.Error(),
		},
		{
			name:   "BlockOK",
			method: http.MethodDelete,
			url:    "/wallets/" + w.Address,
			setupAuth: func(t *testing.T, r *http.Request) error {
				return middleware.AddAuthorization(r, tokenMaker, middleware.AuthTypeBearer, "operator", time.Minute)
			},
			buildStubs: func(s *MockService) {
				s.EXPECT().BlockWallet(gomock.Any(), gomock.Eq(w.Address)).Times(1).Return(blocked, nil)
			},
			wantStatusCode: http.StatusOK,
		},
		{
			name:   "BlockNotFound",
			method: http.MethodDelete,
			url:    "/wallets/" + w.Address,
			setupAuth: func(t *testing.T, r *http.Request) error {
				return middleware.AddAuthorization(r, tokenMaker, middleware.AuthTypeBearer, "operator", time.Minute)
			},
			buildStubs: func(s *MockService) {
				s.EXPECT().BlockWallet(gomock.Any(), gomock.Eq(w.Address)).Times(1).
					Return(domain.Wallet{}, domain.ErrWalletNotFound)
			},
			wantStatusCode: http.StatusNotFound,
			wantError:      domain.ErrWalletNotFound.Error(),
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			walletService := NewMockService(ctrl)
			tc.buildStubs(walletService)

			req := newRequest(t, tc.method, tc.url, nil)
			if err := tc.setupAuth(t, req); err != nil {
				t.Fatalf("tc.setupAuth(t, %+v) returned error: %v", req, err)
			}

			code, res := serve(t, newServer(walletService), req, nil)
			if code != tc.wantStatusCode {
				t.Errorf("Status code: got %v, want %v", code, tc.wantStatusCode)
			}

			if res.Error != tc.wantError {
				t.Errorf(`resp.Error=%q, want %q`, res.Error, tc.wantError)
			}
		})
	}
}

func TestWithdraw(t *testing.T) {
	w := randomWallet()
	secret := randompkg.String(64)

	movement := domain.Movement{
		ID:            1,
		WalletAddress: w.Address,
		CurrencyCode:  currencypkg.BTC,
		Kind:          domain.MovementWithdrawal,
		Amount:        "1.00000000",
		Fee:           "0.01000000",
		NetAmount:     "1.01000000",
		BalanceBefore: "2.00000000",
		BalanceAfter:  "0.99000000",
		CreatedAt:     time.Now().UTC(),
	}

	type requestBody struct {
		CurrencyCode string `json:"currency_code,omitempty"`
		Amount       string `json:"amount,omitempty"`
		Secret       string `json:"secret,omitempty"`
	}

	valid := requestBody{CurrencyCode: currencypkg.BTC, Amount: "1", Secret: secret}

	testCases := []struct {
		name           string
		requestBody    requestBody
		buildStubs     func(s *MockService)
		wantStatusCode int
		wantError      string
	}{
		{
			name:        "OK",
			requestBody: valid,
			buildStubs: func(s *MockService) {
				s.EXPECT().
					Withdraw(gomock.Any(), gomock.Eq(w.Address), gomock.Eq(currencypkg.BTC), gomock.Eq("1"), gomock.Eq(secret)).
					Times(1).
					Return(movement, nil)
			},
			wantStatusCode: http.StatusCreated,
		},
		{
			name:        "MalformedCurrency",
			requestBody: requestBody{CurrencyCode: "btc", Amount: "1", Secret: secret},
			buildStubs: func(s *MockService) {
				s.EXPECT().Withdraw(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
			},
			wantStatusCode: http.StatusBadRequest,
			wantError:      "CurrencyCode field must be a currency code",
		},
		{
			name:        "MalformedAmount",
			requestBody: requestBody{CurrencyCode: currencypkg.BTC, Amount: "1,5", Secret: secret},
			buildStubs: func(s *MockService) {
				s.EXPECT().Withdraw(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
			},
			wantStatusCode: http.StatusBadRequest,
			wantError:      "Amount field must be a decimal number",
		},
		{
			name:        "MissingSecret",
			requestBody: requestBody{CurrencyCode: currencypkg.BTC, Amount: "1"},
			buildStubs: func(s *MockService) {
				s.EXPECT().Withdraw(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
			},
			wantStatusCode: http.StatusBadRequest,
			wantError:      "Secret field is required",
		},
		{
			name:        "NonPositiveAmount",
			requestBody: requestBody{CurrencyCode: currencypkg.BTC, Amount: "-1", Secret: secret},
			buildStubs: func(s *MockService) {
				s.EXPECT().Withdraw(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(1).
					Return(domain.Movement{}, domain.ErrNonPositiveAmount)
			},
			wantStatusCode: http.StatusBadRequest,
			wantError:      domain.ErrNonPositiveAmount.Error(),
		},
		{
			name:        "WalletNotFound",
			requestBody: valid,
			buildStubs: func(s *MockService) {
				s.EXPECT().Withdraw(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(1).
					Return(domain.Movement{}, domain.ErrWalletNotFound)
			},
			wantStatusCode: http.StatusNotFound,
			wantError:      domain.ErrWalletNotFound.Error(),
		},
		{
			name:        "CurrencyNotFound",
			requestBody: requestBody{CurrencyCode: "XYZ", Amount: "1", Secret: secret},
			buildStubs: func(s *MockService) {
				s.EXPECT().Withdraw(gomock.Any(), gomock.Any(), gomock.Eq("XYZ"), gomock.Any(), gomock.Any()).Times(1).
					Return(domain.Movement{}, domain.ErrCurrencyNotFound)
			},
			wantStatusCode: http.StatusNotFound,
			wantError:      domain.ErrCurrencyNotFound.Error(),
		},
		{
			name:        "WalletBlocked",
			requestBody: valid,
			buildStubs: func(s *MockService) {
				s.EXPECT().Withdraw(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(1).
					Return(domain.Movement{}, domain.ErrWalletBlocked)
			},
			wantStatusCode: http.StatusForbidden,
			wantError:      domain.ErrWalletBlocked.Error(),
		},
		{
			name:        "InvalidSecret",
			requestBody: valid,
			buildStubs: func(s *MockService) {
				s.EXPECT().Withdraw(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(1).
					Return(domain.Movement{}, domain.ErrInvalidSecret)
			},
			wantStatusCode: http.StatusUnauthorized,
			wantError:      domain.ErrInvalidSecret.Error(),
		},
		{
			name:        "InsufficientFunds",
			requestBody: valid,
			buildStubs: func(s *MockService) {
				err := &domain.InsufficientFundsError{Required: "1.01000000", Available: "0.50000000"}
				s.EXPECT().Withdraw(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(1).
					Return(domain.Movement{}, err)
			},
			wantStatusCode: http.StatusUnprocessableEntity,
			wantError:      "insufficient funds: required 1.01000000, available 0.50000000",
		},
		{
			name:        "LedgerInconsistent",
			requestBody: valid,
			buildStubs: func(s *MockService) {
				s.EXPECT().Withdraw(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(1).
					Return(domain.Movement{}, domain.ErrLedgerInconsistent)
			},
			wantStatusCode: http.StatusInternalServerError,
			wantError:      errorspkg.ErrInternal.Error(),
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			walletService := NewMockService(ctrl)
			tc.buildStubs(walletService)

			data := &struct {
				Movement domain.Movement `json:"movement"`
			}{}

			req := newRequest(t, http.MethodPost, "/wallets/"+w.Address+"/withdrawals", tc.requestBody)

			code, res := serve(t, newServer(walletService), req, data)
			if code != tc.wantStatusCode {
				t.Errorf("Status code: got %v, want %v", code, tc.wantStatusCode)
			}

			if tc.wantStatusCode != http.StatusCreated {
				if res.Error != tc.wantError {
					t.Errorf(`resp.Error=%q, want %q`, res.Error, tc.wantError)
				}

				return
			}

			if diff := cmp.Diff(movement, data.Movement, cmpopts.EquateApproxTime(time.Second)); diff != "" {
				t.Errorf("res.Data mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDeposit(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	w := randomWallet()
	movement := domain.Movement{
		ID:            7,
		WalletAddress: w.Address,
		CurrencyCode:  currencypkg.USD,
		Kind:          domain.MovementDeposit,
		Amount:        "10.50000000",
		Fee:           "0.00000000",
		NetAmount:     "10.50000000",
		BalanceBefore: "0.00000000",
		BalanceAfter:  "10.50000000",
	}

	walletService := NewMockService(ctrl)
	walletService.EXPECT().
		Deposit(gomock.Any(), gomock.Eq(w.Address), gomock.Eq(currencypkg.USD), gomock.Eq("10.5")).
		Times(1).
		Return(movement, nil)

	body := gin.H{"currency_code": currencypkg.USD, "amount": "10.5", "secret": "ignored"}
	data := &struct {
		Movement domain.Movement `json:"movement"`
	}{}

	code, _ := serve(t, newServer(walletService), newRequest(t, http.MethodPost, "/wallets/"+w.Address+"/deposits", body), data)
	if code != http.StatusCreated {
		t.Fatalf("Status code: got %v, want %v", code, http.StatusCreated)
	}

	if diff := cmp.Diff(movement, data.Movement); diff != "" {
		t.Errorf("res.Data mismatch (-want +got):\n%s", diff)
	}
}

func TestConvert(t *testing.T) {
	w := randomWallet()

	testCases := []struct {
		name           string
		requestBody    gin.H
		buildStubs     func(s *MockService)
		wantStatusCode int
		wantError      string
	}{
		{
			name: "OK",
			requestBody: gin.H{
				"source_currency": currencypkg.USD,
				"target_currency": currencypkg.BRL,
				"amount":          "100",
				"secret":          "s",
			},
			buildStubs: func(s *MockService) {
				s.EXPECT().
					Convert(gomock.Any(), gomock.Eq(w.Address), gomock.Eq(currencypkg.USD), gomock.Eq(currencypkg.BRL), gomock.Eq("100"), gomock.Eq("s")).
					Times(1).
					Return(domain.Conversion{ID: 1, WalletAddress: w.Address}, nil)
			},
			wantStatusCode: http.StatusCreated,
		},
		{
			name: "SameCurrency",
			requestBody: gin.H{
				"source_currency": currencypkg.USD,
				"target_currency": currencypkg.USD,
				"amount":          "100",
				"secret":          "s",
			},
			buildStubs: func(s *MockService) {
				s.EXPECT().Convert(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
					Times(1).
					Return(domain.Conversion{}, domain.ErrSameCurrency)
			},
			wantStatusCode: http.StatusBadRequest,
			wantError:      domain.ErrSameCurrency.Error(),
		},
		{
			name: "QuoteUnavailable",
			requestBody: gin.H{
				"source_currency": currencypkg.USD,
				"target_currency": currencypkg.BRL,
				"amount":          "100",
				"secret":          "s",
			},
			buildStubs: func(s *MockService) {
				err := fmt.Errorf("%w: Get \"https://quotes.internal/USD-BRL/spot\": dial tcp 10.0.0.7:443: i/o timeout",
					domain.ErrQuoteUnavailable)
				s.EXPECT().Convert(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
					Times(1).
					Return(domain.Conversion{}, err)
			},
			wantStatusCode: http.StatusServiceUnavailable,
			wantError:      domain.ErrQuoteUnavailable.Error(),
		},
		{
			name: "MissingTarget",
			requestBody: gin.H{
				"source_currency": currencypkg.USD,
				"amount":          "100",
				"secret":          "s",
			},
			buildStubs: func(s *MockService) {
				s.EXPECT().Convert(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
					Times(0)
			},
			wantStatusCode: http.StatusBadRequest,
			wantError:      "TargetCurrency field is required",
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			walletService := NewMockService(ctrl)
			tc.buildStubs(walletService)

			req := newRequest(t, http.MethodPost, "/wallets/"+w.Address+"/conversions", tc.requestBody)

			code, res := serve(t, newServer(walletService), req, nil)
			if code != tc.wantStatusCode {
				t.Errorf("Status code: got %v, want %v", code, tc.wantStatusCode)
			}

			if res.Error != tc.wantError {
				t.Errorf(`resp.Error=%q, want %q`, res.Error, tc.wantError)
			}
		})
	}
}

func TestTransfer(t *testing.T) {
	from := randomWallet()
	to := randomWallet()

	testCases := []struct {
		name           string
		buildStubs     func(s *MockService)
		wantStatusCode int
		wantError      string
	}{
		{
			name: "OK",
			buildStubs: func(s *MockService) {
				s.EXPECT().
					Transfer(gomock.Any(), gomock.Eq(from.Address), gomock.Eq(to.Address), gomock.Eq(currencypkg.ETH), gomock.Eq("2"), gomock.Eq("s")).
					Times(1).
					Return(domain.Transfer{ID: 3, FromAddress: from.Address, ToAddress: to.Address}, nil)
			},
			wantStatusCode: http.StatusCreated,
		},
		{
			name: "DestinationNotFound",
			buildStubs: func(s *MockService) {
				s.EXPECT().Transfer(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
					Times(1).
					Return(domain.Transfer{}, domain.ErrDestinationNotFound)
			},
			wantStatusCode: http.StatusNotFound,
			wantError:      "destination wallet not found",
		},
		{
			name: "DestinationBlocked",
			buildStubs: func(s *MockService) {
				s.EXPECT().Transfer(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
					Times(1).
					Return(domain.Transfer{}, domain.ErrDestinationBlocked)
			},
			wantStatusCode: http.StatusForbidden,
			wantError:      "destination wallet is blocked",
		},
		{
			name: "SameWallet",
			buildStubs: func(s *MockService) {
				s.EXPECT().Transfer(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
					Times(1).
					Return(domain.Transfer{}, domain.ErrSameWallet)
			},
			wantStatusCode: http.StatusBadRequest,
			wantError:      domain.ErrSameWallet.Error(),
		},
	}

	body := gin.H{
		"to_address":    to.Address,
		"currency_code": currencypkg.ETH,
		"amount":        "2",
		"secret":        "s",
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			walletService := NewMockService(ctrl)
			tc.buildStubs(walletService)

			req := newRequest(t, http.MethodPost, "/wallets/"+from.Address+"/transfers", body)

			code, res := serve(t, newServer(walletService), req, nil)
			if code != tc.wantStatusCode {
				t.Errorf("Status code: got %v, want %v", code, tc.wantStatusCode)
			}

			if res.Error != tc.wantError {
				t.Errorf(`resp.Error=%q, want %q`, res.Error, tc.wantError)
			}
		})
	}
}

func TestListMovements(t *testing.T) {
	w := randomWallet()

	testCases := []struct {
		name           string
		query          string
		buildStubs     func(s *MockService)
		wantStatusCode int
		wantError      string
	}{
		{
			name:  "DefaultPage",
			query: "",
			buildStubs: func(s *MockService) {
				s.EXPECT().ListMovements(gomock.Any(), gomock.Eq(w.Address), gomock.Eq(int32(0)), gomock.Eq(int32(0))).
					Times(1).
					Return([]domain.Movement{{ID: 1}}, nil)
			},
			wantStatusCode: http.StatusOK,
		},
		{
			name:  "ExplicitPage",
			query: "?page_id=2&page_size=5",
			buildStubs: func(s *MockService) {
				s.EXPECT().ListMovements(gomock.Any(), gomock.Eq(w.Address), gomock.Eq(int32(5)), gomock.Eq(int32(2))).
					Times(1).
					Return([]domain.Movement{}, nil)
			},
			wantStatusCode: http.StatusOK,
		},
		{
			name:  "PageSizeTooLarge",
			query: "?page_size=500",
			buildStubs: func(s *MockService) {
				s.EXPECT().ListMovements(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
			},
			wantStatusCode: http.StatusBadRequest,
			wantError:      "PageSize field must be at most 100",
		},
		{
			name:  "WalletNotFound",
			query: "",
			buildStubs: func(s *MockService) {
				s.EXPECT().ListMovements(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
					Times(1).
					Return(nil, domain.ErrWalletNotFound)
			},
			wantStatusCode: http.StatusNotFound,
			wantError:      domain.ErrWalletNotFound.Error(),
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			walletService := NewMockService(ctrl)
			tc.buildStubs(walletService)

			req := newRequest(t, http.MethodGet, "/wallets/"+w.Address+"/movements"+tc.query, nil)

			code, res := serve(t, newServer(walletService), req, nil)
			if code != tc.wantStatusCode {
				t.Errorf("Status code: got %v, want %v", code, tc.wantStatusCode)
			}

			if res.Error != tc.wantError {
				t.Errorf(`resp.Error=%q, want %q`, res.Error, tc.wantError)
			}
		})
	}
}

func TestStatusCode(t *testing.T) {
	testCases := []struct {
		err  error
		want int
	}{
		{domain.ErrInvalidAddress, http.StatusBadRequest},
		{domain.ErrSecretRequired, http.StatusBadRequest},
		{domain.ErrInvalidAmount, http.StatusBadRequest},
		{domain.ErrSameWallet, http.StatusBadRequest},
		{domain.ErrDestinationNotFound, http.StatusNotFound},
		{domain.ErrCurrencyNotFound, http.StatusNotFound},
		{domain.ErrDestinationBlocked, http.StatusForbidden},
		{domain.ErrInvalidSecret, http.StatusUnauthorized},
		{&domain.InsufficientFundsError{}, http.StatusUnprocessableEntity},
		{domain.ErrBalanceLimit, http.StatusUnprocessableEntity},
		{fmt.Errorf("%w: timeout", domain.ErrQuoteUnavailable), http.StatusServiceUnavailable},
		{errorspkg.ErrStoreUnavailable, http.StatusServiceUnavailable},
		{domain.ErrLedgerInconsistent, http.StatusInternalServerError},
		{errorspkg.ErrInternal, http.StatusInternalServerError},
	}

	for _, tc := range testCases {
		if got := statusCode(tc.err); got != tc.want {
			t.Errorf("statusCode(%v) = %v, want %v", tc.err, got, tc.want)
		}
	}
}
