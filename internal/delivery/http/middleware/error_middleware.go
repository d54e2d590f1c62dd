package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"chamba-onchain-backend/internal/delivery/http/response"
	"chamba-onchain-backend/internal/domain"
	"chamba-onchain-backend/pkg/apperror"
	"chamba-onchain-backend/pkg/logger"
)

// ErrorHandler renders the last error pushed with c.Error. Chain errors
// carry their kind so clients can branch on it.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		appErr := toAppError(err)
		if appErr.Code >= http.StatusInternalServerError {
			requestID, _ := c.Get(string(domain.KeyRequestID))
			logger.Log.Error("request failed",
				"path", c.FullPath(), "status", appErr.Code, "request_id", requestID, "error", err)
		}

		// SECURITY: never expose internal error details to clients
		if appErr.Code == http.StatusInternalServerError {
			response.Error(c, appErr.Code, "An unexpected error occurred. Please try again later.", nil)
			return
		}

		var detail interface{}
		if appErr.Kind != "" {
			detail = gin.H{"kind": appErr.Kind}
		}
		response.Error(c, appErr.Code, appErr.Message, detail)
	}
}

// kindStatus maps chain error kinds to HTTP status codes
var kindStatus = map[domain.ErrorKind]int{
	domain.KindValidation:        http.StatusBadRequest,
	domain.KindUserDeclined:      http.StatusForbidden,
	domain.KindInsufficientFunds: http.StatusPaymentRequired,
	domain.KindAccessDenied:      http.StatusForbidden,
	domain.KindMisconfigured:     http.StatusServiceUnavailable,
	domain.KindNetworkTimeout:    http.StatusGatewayTimeout,
	domain.KindUnknown:           http.StatusBadGateway,
}

// toAppError converts any error returned by a usecase into an AppError.
// Unrecognised errors become Internal and keep their cause for logging.
func toAppError(err error) *apperror.AppError {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return apperror.New(http.StatusNotFound, "Resource not found", err)
	case errors.Is(err, domain.ErrAlreadyApplied):
		return apperror.New(http.StatusConflict, "You already applied to this job", err)
	case errors.Is(err, domain.ErrMutationPending):
		return apperror.New(http.StatusConflict, "Another access change is still pending", err)
	case errors.Is(err, domain.ErrInvalidAddress):
		return apperror.New(http.StatusBadRequest, "Invalid wallet address", err)
	case errors.Is(err, domain.ErrWalletNotConnected):
		return apperror.New(http.StatusUnauthorized, "No connected account. Please connect your wallet.", err)
	case errors.Is(err, domain.ErrNoProvider):
		return apperror.New(http.StatusServiceUnavailable, "No wallet provider found", err)
	}

	var chainErr *domain.ChainError
	if !errors.As(err, &chainErr) {
		return apperror.Internal(err)
	}
	code, ok := kindStatus[chainErr.Kind]
	if !ok {
		code = http.StatusBadGateway
	}
	return &apperror.AppError{
		Code:    code,
		Message: chainErr.Message,
		Kind:    string(chainErr.Kind),
		Err:     err,
	}
}
