// Package respond holds the helpers every controller shares for binding
// input and turning service errors into HTTP responses.
package respond

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"kitabu/app/echoServer/jwtx"
	"kitabu/model"
	"kitabu/util/errcode"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// Status maps a service error code to its HTTP status.
func Status(c errcode.Code) int {
	switch c {
	case errcode.BadInput:
		return http.StatusBadRequest
	case errcode.NotFound:
		return http.StatusNotFound
	case errcode.Forbidden:
		return http.StatusForbidden
	case errcode.Unauthorized, errcode.InvalidCreds:
		return http.StatusUnauthorized
	case errcode.Conflict, errcode.InvalidTransition, errcode.NoStock, errcode.EmailTaken:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Error writes err as {"message": ...}. Uncoded errors are logged and hidden.
func Error(c echo.Context, log *slog.Logger, op string, err error) error {
	code := errcode.Of(err)
	status := Status(code)
	if status == http.StatusInternalServerError {
		if log == nil {
			log = slog.Default()
		}
		log.Error(op+" failed",
			"err", err,
			"req_id", c.Response().Header().Get(echo.HeaderXRequestID),
			"path", c.Path(),
			"method", c.Request().Method,
		)
		return c.JSON(status, echo.Map{"message": "internal error"})
	}
	msg := errcode.Message(err)
	if msg == "" || msg == string(code) {
		msg = http.StatusText(status)
	}
	return c.JSON(status, echo.Map{"message": msg})
}

// Bind decodes the body into req and validates it.
func Bind(c echo.Context, v *validator.Validate, req any) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if v == nil {
		if err := c.Validate(req); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "validation error")
		}
		return nil
	}
	if err := v.Struct(req); err != nil {
		fields := echo.Map{}
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			for _, fe := range ve {
				fields[fe.Field()] = fe.Tag()
			}
		}
		return echo.NewHTTPError(http.StatusBadRequest, echo.Map{"message": "validation error", "errors": fields})
	}
	return nil
}

// ID parses a positive int64 path parameter.
func ID(c echo.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid "+name)
	}
	return id, nil
}

// Caller returns the authenticated caller or a 401.
func Caller(c echo.Context) (model.Caller, error) {
	caller, ok := jwtx.CallerFromContext(c)
	if !ok {
		return model.Caller{}, echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	return caller, nil
}
