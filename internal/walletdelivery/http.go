// Package walletdelivery manages delivery layer of wallets and their money movements.
package walletdelivery

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/go-petr/wallet-ledger/internal/domain"
	"github.com/go-petr/wallet-ledger/pkg/errorspkg"
	"github.com/go-petr/wallet-ledger/pkg/web"
)

// Service provides service layer interface needed by wallet delivery layer.
//
//go:generate mockgen -source http.go -destination http_mock.go -package walletdelivery
type Service interface {
	CreateWallet(ctx context.Context) (domain.CreatedWallet, error)
	GetWallet(ctx context.Context, address string) (domain.Wallet, error)
	ListWallets(ctx context.Context) ([]domain.Wallet, error)
	BlockWallet(ctx context.Context, address string) (domain.Wallet, error)
	GetBalances(ctx context.Context, address string) ([]domain.Balance, error)
	Deposit(ctx context.Context, address, currencyCode, amount string) (domain.Movement, error)
	Withdraw(ctx context.Context, address, currencyCode, amount, secret string) (domain.Movement, error)
	Convert(ctx context.Context, address, source, target, amount, secret string) (domain.Conversion, error)
	Transfer(ctx context.Context, from, to, currencyCode, amount, secret string) (domain.Transfer, error)
	ListMovements(ctx context.Context, address string, pageSize, pageID int32) ([]domain.Movement, error)
	ListConversions(ctx context.Context, address string, pageSize, pageID int32) ([]domain.Conversion, error)
	ListTransfers(ctx context.Context, address string, pageSize, pageID int32) ([]domain.Transfer, error)
}

// Handler facilitates wallet delivery layer logic.
type Handler struct {
	service Service
}

// NewHandler returns wallet handler.
func NewHandler(s Service) Handler {
	return Handler{service: s}
}

func statusCode(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidAddress),
		errors.Is(err, domain.ErrSecretRequired),
		errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrNonPositiveAmount),
		errors.Is(err, domain.ErrSameCurrency),
		errors.Is(err, domain.ErrSameWallet):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrWalletNotFound),
		errors.Is(err, domain.ErrCurrencyNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrWalletBlocked):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrInvalidSecret):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrInsufficientFunds),
		errors.Is(err, domain.ErrBalanceLimit):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrQuoteUnavailable),
		errors.Is(err, errorspkg.ErrStoreUnavailable):
		return http.StatusServiceUnavailable
	}

	return http.StatusInternalServerError
}

// respondError writes err with its status code. Unknown errors are hidden
// behind errorspkg.ErrInternal and upstream failures behind their sentinel;
// the full error goes to the log only.
func respondError(gctx *gin.Context, err error) {
	l := zerolog.Ctx(gctx.Request.Context())

	code := statusCode(err)

	switch {
	case code == http.StatusInternalServerError:
		l.Error().Err(err).Send()
		gctx.JSON(code, web.Error(errorspkg.ErrInternal))
	case errors.Is(err, domain.ErrQuoteUnavailable):
		l.Warn().Err(err).Send()
		gctx.JSON(code, web.Error(domain.ErrQuoteUnavailable))
	case errors.Is(err, errorspkg.ErrStoreUnavailable):
		l.Warn().Err(err).Send()
		gctx.JSON(code, web.Error(errorspkg.ErrStoreUnavailable))
	default:
		gctx.JSON(code, web.Error(err))
	}
}

func respondBindError(gctx *gin.Context, err error) {
	var (
		ve     validator.ValidationErrors
		errMsg = "invalid request"
	)

	if errors.As(err, &ve) {
		field := ve[0]
		errMsg = field.Field() + web.GetErrorMsg(field)
	}

	zerolog.Ctx(gctx.Request.Context()).Info().Err(err).Send()
	gctx.JSON(http.StatusBadRequest, web.Response{Error: errMsg})
}

type addressURI struct {
	Address string `uri:"address" binding:"required"`
}

type walletData struct {
	Wallet domain.Wallet `json:"wallet"`
}

type createdWalletData struct {
	Wallet domain.CreatedWallet `json:"wallet"`
}

type walletsData struct {
	Wallets []domain.Wallet `json:"wallets"`
}

// Create handles http request to create wallet.
func (h *Handler) Create(gctx *gin.Context) {
	w, err := h.service.CreateWallet(gctx.Request.Context())
	if err != nil {
		respondError(gctx, err)
		return
	}

	gctx.JSON(http.StatusCreated, web.Response{Data: createdWalletData{w}})
}

// Get handles http request to get wallet.
func (h *Handler) Get(gctx *gin.Context) {
	var uri addressURI
	if err := gctx.ShouldBindUri(&uri); err != nil {
		respondBindError(gctx, err)
		return
	}

	w, err := h.service.GetWallet(gctx.Request.Context(), uri.Address)
	if err != nil {
		respondError(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, web.Response{Data: walletData{w}})
}

// List handles http request to list all wallets.
func (h *Handler) List(gctx *gin.Context) {
	wallets, err := h.service.ListWallets(gctx.Request.Context())
	if err != nil {
		respondError(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, web.Response{Data: walletsData{wallets}})
}

// Block handles http request to block wallet.
func (h *Handler) Block(gctx *gin.Context) {
	var uri addressURI
	if err := gctx.ShouldBindUri(&uri); err != nil {
		respondBindError(gctx, err)
		return
	}

	w, err := h.service.BlockWallet(gctx.Request.Context(), uri.Address)
	if err != nil {
		respondError(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, web.Response{Data: walletData{w}})
}

type balancesData struct {
	Balances []domain.Balance `json:"balances"`
}

// Balances handles http request to list wallet balances.
func (h *Handler) Balances(gctx *gin.Context) {
	var uri addressURI
	if err := gctx.ShouldBindUri(&uri); err != nil {
		respondBindError(gctx, err)
		return
	}

	balances, err := h.service.GetBalances(gctx.Request.Context(), uri.Address)
	if err != nil {
		respondError(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, web.Response{Data: balancesData{balances}})
}

type depositRequest struct {
	CurrencyCode string `json:"currency_code" binding:"required,currency"`
	Amount       string `json:"amount" binding:"required,decimal"`
}

type movementData struct {
	Movement domain.Movement `json:"movement"`
}

// Deposit handles http request to credit wallet.
func (h *Handler) Deposit(gctx *gin.Context) {
	var uri addressURI
	if err := gctx.ShouldBindUri(&uri); err != nil {
		respondBindError(gctx, err)
		return
	}

	var req depositRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		respondBindError(gctx, err)
		return
	}

	m, err := h.service.Deposit(gctx.Request.Context(), uri.Address, req.CurrencyCode, req.Amount)
	if err != nil {
		respondError(gctx, err)
		return
	}

	gctx.JSON(http.StatusCreated, web.Response{Data: movementData{m}})
}

type withdrawRequest struct {
	CurrencyCode string `json:"currency_code" binding:"required,currency"`
	Amount       string `json:"amount" binding:"required,decimal"`
	Secret       string `json:"secret" binding:"required"`
}

// Withdraw handles http request to debit wallet.
func (h *Handler) Withdraw(gctx *gin.Context) {
	var uri addressURI
	if err := gctx.ShouldBindUri(&uri); err != nil {
		respondBindError(gctx, err)
		return
	}

	var req withdrawRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		respondBindError(gctx, err)
		return
	}

	m, err := h.service.Withdraw(gctx.Request.Context(), uri.Address, req.CurrencyCode, req.Amount, req.Secret)
	if err != nil {
		respondError(gctx, err)
		return
	}

	gctx.JSON(http.StatusCreated, web.Response{Data: movementData{m}})
}

type convertRequest struct {
	SourceCurrency string `json:"source_currency" binding:"required,currency"`
	TargetCurrency string `json:"target_currency" binding:"required,currency"`
	Amount         string `json:"amount" binding:"required,decimal"`
	Secret         string `json:"secret" binding:"required"`
}

type conversionData struct {
	Conversion domain.Conversion `json:"conversion"`
}

// Convert handles http request to convert money between wallet balances.
func (h *Handler) Convert(gctx *gin.Context) {
	var uri addressURI
	if err := gctx.ShouldBindUri(&uri); err != nil {
		respondBindError(gctx, err)
		return
	}

	var req convertRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		respondBindError(gctx, err)
		return
	}

	c, err := h.service.Convert(gctx.Request.Context(),
		uri.Address, req.SourceCurrency, req.TargetCurrency, req.Amount, req.Secret)
	if err != nil {
		respondError(gctx, err)
		return
	}

	gctx.JSON(http.StatusCreated, web.Response{Data: conversionData{c}})
}

type transferRequest struct {
	ToAddress    string `json:"to_address" binding:"required"`
	CurrencyCode string `json:"currency_code" binding:"required,currency"`
	Amount       string `json:"amount" binding:"required,decimal"`
	Secret       string `json:"secret" binding:"required"`
}

type transferData struct {
	Transfer domain.Transfer `json:"transfer"`
}

// Transfer handles http request to move money to another wallet.
func (h *Handler) Transfer(gctx *gin.Context) {
	var uri addressURI
	if err := gctx.ShouldBindUri(&uri); err != nil {
		respondBindError(gctx, err)
		return
	}

	var req transferRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		respondBindError(gctx, err)
		return
	}

	tr, err := h.service.Transfer(gctx.Request.Context(),
		uri.Address, req.ToAddress, req.CurrencyCode, req.Amount, req.Secret)
	if err != nil {
		respondError(gctx, err)
		return
	}

	gctx.JSON(http.StatusCreated, web.Response{Data: transferData{tr}})
}

type listRequest struct {
	PageID   int32 `form:"page_id" binding:"omitempty,min=1"`
	PageSize int32 `form:"page_size" binding:"omitempty,min=1,max=100"`
}

func (h *Handler) bindList(gctx *gin.Context) (string, listRequest, bool) {
	var (
		uri addressURI
		req listRequest
	)

	if err := gctx.ShouldBindUri(&uri); err != nil {
		respondBindError(gctx, err)
		return "", req, false
	}

	if err := gctx.ShouldBindQuery(&req); err != nil {
		respondBindError(gctx, err)
		return "", req, false
	}

	return uri.Address, req, true
}

type movementsData struct {
	Movements []domain.Movement `json:"movements"`
}

// ListMovements handles http request to list wallet deposits and withdrawals.
func (h *Handler) ListMovements(gctx *gin.Context) {
	address, req, ok := h.bindList(gctx)
	if !ok {
		return
	}

	movements, err := h.service.ListMovements(gctx.Request.Context(), address, req.PageSize, req.PageID)
	if err != nil {
		respondError(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, web.Response{Data: movementsData{movements}})
}

type conversionsData struct {
	Conversions []domain.Conversion `json:"conversions"`
}

// ListConversions handles http request to list wallet conversions.
func (h *Handler) ListConversions(gctx *gin.Context) {
	address, req, ok := h.bindList(gctx)
	if !ok {
		return
	}

	conversions, err := h.service.ListConversions(gctx.Request.Context(), address, req.PageSize, req.PageID)
	if err != nil {
		respondError(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, web.Response{Data: conversionsData{conversions}})
}

type transfersData struct {
	Transfers []domain.Transfer `json:"transfers"`
}

// ListTransfers handles http request to list transfers sent or received by the wallet.
func (h *Handler) ListTransfers(gctx *gin.Context) {
	address, req, ok := h.bindList(gctx)
	if !ok {
		return
	}

	transfers, err := h.service.ListTransfers(gctx.Request.Context(), address, req.PageSize, req.PageID)
	if err != nil {
		respondError(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, web.Response{Data: transfersData{transfers}})
}
