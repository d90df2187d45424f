package http

import (
	"errors"
	"net/http"

	"fulfillment/internal/core/application/editing"
	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/domain/services"
	"fulfillment/internal/pkg/errs"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// statusFor maps application errors to HTTP status codes. Unknown errors are 500.
func statusFor(err error) int {
	var (
		httpErr       *echo.HTTPError
		validationErr validator.ValidationErrors
	)
	switch {
	case errors.As(err, &httpErr):
		return httpErr.Code
	case errors.As(err, &validationErr):
		return http.StatusBadRequest
	case errors.Is(err, errs.ErrObjectNotFound):
		return http.StatusNotFound
	case errors.Is(err, commands.ErrPhaseNotAuthorized):
		return http.StatusForbidden
	case errors.Is(err, errs.ErrConflict),
		errors.Is(err, editing.ErrUnsavedChanges),
		errors.Is(err, order.ErrItemsAreLocked),
		errors.Is(err, order.ErrItemIsRemoved),
		errors.Is(err, commands.ErrNothingToSave):
		return http.StatusConflict
	case errors.Is(err, editing.ErrSessionClosed):
		return http.StatusGone
	case errors.Is(err, services.ErrCompletionBlocked),
		errors.Is(err, services.ErrExceptionBlocked):
		return http.StatusUnprocessableEntity
	case errors.Is(err, errs.ErrValueIsRequired),
		errors.Is(err, errs.ErrValueIsInvalid),
		errors.Is(err, errs.ErrValueIsOutOfRange):
		return http.StatusBadRequest
	case errors.Is(err, errs.ErrPersistence):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// respondError writes err as an ErrorResponse. Server errors are logged and their
// details are not sent to the client.
func (s *Server) respondError(c echo.Context, err error) error {
	code := statusFor(err)
	msg := err.Error()
	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		if m, ok := httpErr.Message.(string); ok {
			msg = m
		}
	}
	if code >= http.StatusInternalServerError {
		s.logger.Error("request failed",
			zap.String("method", c.Request().Method),
			zap.String("path", c.Path()),
			zap.Error(err))
		msg = http.StatusText(code)
	}
	return c.JSON(code, ErrorResponse{Code: code, Message: msg})
}

func badRequest(msg string) error {
	return echo.NewHTTPError(http.StatusBadRequest, msg)
}
