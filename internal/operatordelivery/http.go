// Package operatordelivery manages delivery layer of operator login.
package operatordelivery

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

// Service provides service layer interface needed by operator delivery layer.
//
//go:generate mockgen -source http.go -destination http_mock.go -package operatordelivery
type Service interface {
	Login(ctx context.Context, username, key string) (domain.OperatorSession, error)
}

// Handler facilitates operator delivery layer logic.
type Handler struct {
	service Service
}

// NewHandler returns operator handler.
func NewHandler(s Service) Handler {
	return Handler{service: s}
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Key      string `json:"key" binding:"required"`
}

// Login handles http request to issue an operator access token.
func (h *Handler) Login(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req loginRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		var (
			ve     validator.ValidationErrors
			errMsg = "invalid request body"
		)

		if errors.As(err, &ve) {
			field := ve[0]
			errMsg = field.Field() + web.GetErrorMsg(field)
		}

		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.Response{Error: errMsg})

		return
	}

	session, err := h.service.Login(ctx, req.Username, req.Key)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			gctx.JSON(http.StatusUnauthorized, web.Error(err))
			return
		}

		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))

		return
	}

	gctx.JSON(http.StatusOK, web.Response{Data: session})
}
