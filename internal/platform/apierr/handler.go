package apierr

import (
	"errors"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// response is the JSON body rendered for every error.
type response struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// ErrorHandler returns a central echo error handler that renders apierr
// errors with their mapped status and a structured body. Unclassified errors
// become Internal without leaking the underlying cause; echo's own HTTP
// errors (route not found, method not allowed) keep their status.
func ErrorHandler(logger zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		var ae *Error
		if errors.As(err, &ae) {
			_ = c.JSON(HTTPStatus(ae.Kind), response{
				Error:   statusText(ae.Kind),
				Message: ae.Message,
				Code:    string(ae.Kind),
			})
			return
		}

		var he *echo.HTTPError
		if errors.As(err, &he) {
			msg, ok := he.Message.(string)
			if !ok {
				msg = "request failed"
			}
			_ = c.JSON(he.Code, response{Error: "request failed", Message: msg, Code: string(Internal)})
			return
		}

		rid, _ := c.Get("request_id").(string)
		logger.Error().Err(err).Str("request_id", rid).Msg("unhandled error")
		_ = c.JSON(HTTPStatus(Internal), response{
			Error:   "internal server error",
			Message: "internal server error",
			Code:    string(Internal),
		})
	}
}

func statusText(kind Kind) string {
	switch kind {
	case Authentication:
		return "authentication failed"
	case Authorization:
		return "forbidden"
	case NotFound:
		return "not found"
	case Validation:
		return "validation failed"
	case Conflict:
		return "conflict"
	case PortalDenied:
		return "not found"
	default:
		return "internal server error"
	}
}
