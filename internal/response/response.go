// Package response renders the uniform JSON envelope shared by every
// endpoint: {success, message, data?, pagination?, errors?}.
package response

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/ntsvetkov/bookreview/internal/apperr"
	"github.com/ntsvetkov/bookreview/internal/logging"
	"github.com/ntsvetkov/bookreview/internal/util"
)

type Envelope struct {
	Success    bool             `json:"success"`
	Message    string           `json:"message"`
	Data       any              `json:"data,omitempty"`
	Pagination *util.Pagination `json:"pagination,omitempty"`
	Errors     []string         `json:"errors,omitempty"`
}

func Success(c echo.Context, status int, message string, data any) error {
	return c.JSON(status, Envelope{Success: true, Message: message, Data: data})
}

func Paginated(c echo.Context, message string, data any, p util.Pagination) error {
	return c.JSON(http.StatusOK, Envelope{Success: true, Message: message, Data: data, Pagination: &p})
}

// ErrorHandler recovers every handler error at the request boundary and
// renders it as the error envelope. Internal causes are logged, never
// exposed to the client.
func ErrorHandler() echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status := http.StatusInternalServerError
		env := Envelope{Success: false, Message: "internal server error"}

		// unwrap first: middleware may wrap an apperr and it must keep
		// its kind's status
		if ae, ok := apperr.As(err); ok {
			status = ae.Kind.Status()
			env.Message = ae.Message
			if ae.Kind == apperr.Internal {
				env.Message = "internal server error"
				logging.FromContext(c.Request().Context()).Error("request failed", "error", ae.Error())
			}
			writeEnvelope(c, status, env)
			return
		}

		switch e := err.(type) {
		case validator.ValidationErrors:
			status = http.StatusBadRequest
			env.Message = "validation failed"
			for _, fe := range e {
				env.Errors = append(env.Errors, fieldMessage(fe))
			}
		case *echo.HTTPError:
			status = e.Code
			if msg, ok := e.Message.(string); ok {
				env.Message = msg
			} else {
				env.Message = http.StatusText(status)
			}
		default:
			logging.FromContext(c.Request().Context()).Error("request failed", "error", err.Error())
		}

		writeEnvelope(c, status, env)
	}
}

func writeEnvelope(c echo.Context, status int, env Envelope) {
	var werr error
	if c.Request().Method == http.MethodHead {
		werr = c.NoContent(status)
	} else {
		werr = c.JSON(status, env)
	}
	if werr != nil {
		logging.FromContext(c.Request().Context()).Error("write error response", "error", werr.Error())
	}
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "email":
		return fe.Field() + " must be a valid email address"
	case "min":
		return fe.Field() + " is too short"
	case "max":
		return fe.Field() + " is too long"
	case "gte":
		return fe.Field() + " must be at least " + fe.Param()
	case "lte":
		return fe.Field() + " cannot exceed " + fe.Param()
	case "password":
		return fe.Field() + " must contain an uppercase letter, a lowercase letter and a digit"
	default:
		return fe.Field() + " is invalid"
	}
}
