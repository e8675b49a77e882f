// Package httpserver manages server creation and api routing.
package httpserver

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/go-petr/wallet-ledger/internal/ledgerrepo"
	"github.com/go-petr/wallet-ledger/internal/ledgerservice"
	"github.com/go-petr/wallet-ledger/internal/memrepo"
	"github.com/go-petr/wallet-ledger/internal/middleware"
	"github.com/go-petr/wallet-ledger/internal/operatordelivery"
	"github.com/go-petr/wallet-ledger/internal/operatorservice"
	"github.com/go-petr/wallet-ledger/internal/quoteclient"
	"github.com/go-petr/wallet-ledger/internal/walletdelivery"
	"github.com/go-petr/wallet-ledger/pkg/configpkg"
	"github.com/go-petr/wallet-ledger/pkg/currencypkg"
	"github.com/go-petr/wallet-ledger/pkg/moneypkg"
	"github.com/go-petr/wallet-ledger/pkg/passpkg"
	"github.com/go-petr/wallet-ledger/pkg/tokenpkg"
)

// Server holds db connection, handlers router and configuration.
type Server struct {
	DB     *sql.DB
	Engine *gin.Engine
	Config configpkg.Config

	redis *goredis.Client
}

// ServeHTTP implements the http.Handler interface for the Server type.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Engine.ServeHTTP(w, r)
}

// Close releases the quote cache connection. The db connection is owned by the caller.
func (s *Server) Close() error {
	if s.redis == nil {
		return nil
	}

	return s.redis.Close()
}

func feeRate(name, value string) (decimal.Decimal, error) {
	rate, err := decimal.NewFromString(value)
	if err != nil {
		return rate, fmt.Errorf("%s: %w", name, err)
	}

	if rate.IsNegative() || rate.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return rate, fmt.Errorf("%s must be in [0, 1), got %s", name, value)
	}

	return rate, nil
}

// LedgerConfig builds the ledger parameters from the application config.
func LedgerConfig(config configpkg.Config) (ledgerservice.Config, error) {
	c := ledgerservice.DefaultConfig()

	var err error

	if c.WithdrawalFeeRate, err = feeRate("WITHDRAWAL_FEE_RATE", config.WithdrawalFeeRate); err != nil {
		return c, err
	}

	if c.ConversionFeeRate, err = feeRate("CONVERSION_FEE_RATE", config.ConversionFeeRate); err != nil {
		return c, err
	}

	if c.TransferFeeRate, err = feeRate("TRANSFER_FEE_RATE", config.TransferFeeRate); err != nil {
		return c, err
	}

	if config.AddressSize > 0 {
		c.AddressSize = config.AddressSize
	}

	if config.SecretSize > 0 {
		// Secrets are hex encoded, two characters per byte.
		if 2*config.SecretSize > passpkg.MaxLength {
			return c, fmt.Errorf("SECRET_SIZE must be at most %d, got %d", passpkg.MaxLength/2, config.SecretSize)
		}

		c.SecretSize = config.SecretSize
	}

	if config.QuoteTimeout > 0 {
		c.QuoteTimeout = config.QuoteTimeout
	}

	return c, nil
}

func registerValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}

	if err := v.RegisterValidation("currency", currencypkg.ValidCurrency); err != nil {
		return errors.New("cannot register currency validator")
	}

	if err := v.RegisterValidation("decimal", moneypkg.ValidAmount); err != nil {
		return errors.New("cannot register decimal validator")
	}

	return nil
}

// New creates Server type with instantiated domains and routes.
//
// conn may be nil when config.Store is memory.
func New(conn *sql.DB, logger zerolog.Logger, config configpkg.Config) (*Server, error) {
	var repo ledgerservice.Repo

	switch config.Store {
	case configpkg.StoreMemory:
		repo = memrepo.New()
	case configpkg.StorePostgres, "":
		if conn == nil {
			return nil, errors.New("postgres store needs a db connection")
		}

		repo = ledgerrepo.NewRepoPGS(conn)
	default:
		return nil, fmt.Errorf("unknown store %q", config.Store)
	}

	ledgerConfig, err := LedgerConfig(config)
	if err != nil {
		return nil, err
	}

	tokenMaker, err := tokenpkg.NewMaker(config.TokenType, config.TokenSymmetricKey)
	if err != nil {
		return nil, fmt.Errorf("cannot create token maker: %w", err)
	}

	var (
		quotes      ledgerservice.QuoteProvider = quoteclient.New(config.QuoteBaseURL, ledgerConfig.QuoteTimeout)
		redisClient *goredis.Client
	)

	if config.RedisAddress != "" {
		if config.QuoteCacheTTL <= 0 {
			return nil, fmt.Errorf("QUOTE_CACHE_TTL must be positive, got %v", config.QuoteCacheTTL)
		}

		redisClient = goredis.NewClient(&goredis.Options{
			Addr:     config.RedisAddress,
			Password: config.RedisPassword,
			DB:       config.RedisDB,
		})

		quotes = quoteclient.NewCache(quotes, redisClient, config.QuoteCacheTTL)
	}

	ledgerService := ledgerservice.New(repo, quotes, ledgerConfig)
	operatorService := operatorservice.New(tokenMaker, operatorservice.Config{
		Username:            config.OperatorUsername,
		KeyHash:             config.OperatorKeyHash,
		AccessTokenDuration: config.AccessTokenDuration,
	})

	walletHandler := walletdelivery.NewHandler(ledgerService)
	operatorHandler := operatordelivery.NewHandler(operatorService)

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(middleware.RequestLogger(logger))

	engine.POST("/operators/login", operatorHandler.Login)

	engine.POST("/wallets", walletHandler.Create)
	engine.GET("/wallets/:address", walletHandler.Get)
	engine.GET("/wallets/:address/balances", walletHandler.Balances)
	engine.POST("/wallets/:address/deposits", walletHandler.Deposit)
	engine.POST("/wallets/:address/withdrawals", walletHandler.Withdraw)
	engine.POST("/wallets/:address/conversions", walletHandler.Convert)
	engine.POST("/wallets/:address/transfers", walletHandler.Transfer)
	engine.GET("/wallets/:address/movements", walletHandler.ListMovements)
	engine.GET("/wallets/:address/conversions", walletHandler.ListConversions)
	engine.GET("/wallets/:address/transfers", walletHandler.ListTransfers)

	authRoutes := engine.Group("/").Use(middleware.AuthMiddleware(tokenMaker))

	authRoutes.GET("/wallets", walletHandler.List)
	authRoutes.DELETE("/wallets/:address", walletHandler.Block)

	if err := registerValidators(); err != nil {
		return nil, err
	}

	server := &Server{
		DB:     conn,
		Engine: engine,
		Config: config,
		redis:  redisClient,
	}

	return server, nil
}
