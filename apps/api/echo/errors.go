package echoapi

import (
	"context"
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/sahayak/core"
	"github.com/trezcool/sahayak/core/session"
	"github.com/trezcool/sahayak/core/user"
)

var (
	errHttpNotLoggedIn = echo.NewHTTPError(http.StatusUnauthorized, "no user logged in")
	errHttpForbidden   = echo.NewHTTPError(http.StatusForbidden, "only teachers go through onboarding")
	errHttpPending     = echo.NewHTTPError(http.StatusConflict, "another session operation is pending")
	errHttpChanged     = echo.NewHTTPError(http.StatusConflict, "session changed while the operation was pending")
	errHttpTimeout     = echo.NewHTTPError(http.StatusGatewayTimeout, "identity provider timed out")
)

// unknownAccountError is returned on a login with an unknown key.
type unknownAccountError struct {
	Message    string `json:"error"`
	Suggestion string `json:"suggestion,omitempty"`
}

func (e *unknownAccountError) Error() string {
	return e.Message
}

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that knows how to handle our errors.
func newAppHTTPErrorHandler(logger core.Logger, translator ut.Translator) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		var code int
		var message interface{}

		switch origErr := errors.Cause(err).(type) {
		case *echo.HTTPError:
			if origErr.Internal != nil {
				if herr, ok := origErr.Internal.(*echo.HTTPError); ok {
					origErr = herr
				}
			}
			code = origErr.Code
			message = origErr.Message
		case *unknownAccountError:
			code = http.StatusBadRequest
			message = origErr
		case validator.ValidationErrors:
			fldErrs := make(map[string]string, len(origErr))
			for _, fErr := range core.TranslateErrors(origErr, translator) {
				fldErrs[fErr.Field] = fErr.Error
			}
			code = http.StatusBadRequest
			message = fldErrs
		case *core.ValidationError:
			if origErr.Fields != nil {
				fldErrs := make(map[string]string, len(origErr.Fields))
				for _, fErr := range origErr.Fields {
					fldErrs[fErr.Field] = fErr.Error
				}
				message = fldErrs
			} else {
				message = origErr.Error()
			}
			code = http.StatusBadRequest
		default: // any other error is a server error
			code = http.StatusInternalServerError
			msg := http.StatusText(http.StatusInternalServerError)
			message = msg

			logger.Error(msg, errors.Wrap(err, msg), map[string]interface{}{
				"method": ctx.Request().Method,
				"path":   ctx.Path(),
			})
		}

		if ctx.Echo().Debug && code == http.StatusInternalServerError {
			message = err.Error()
		}
		if m, ok := message.(string); ok {
			message = echo.Map{"error": m}
		}

		// Send response
		if !ctx.Response().Committed {
			if ctx.Request().Method == http.MethodHead { // Issue #608
				err = ctx.NoContent(code)
			} else {
				err = ctx.JSON(code, message)
			}
			if err != nil {
				ctx.Echo().Logger.Error(err)
			}
		}
	}
}

// sessionError translates session & directory errors into HTTP errors.
func sessionError(err error, keys []string, key string) error {
	switch cause := errors.Cause(err); cause {
	case user.ErrNotFound:
		uerr := &unknownAccountError{Message: cause.Error()}
		if s, ok := user.Suggest(key, keys); ok {
			uerr.Suggestion = s
		}
		return uerr
	case session.ErrNotLoggedIn:
		return errHttpNotLoggedIn
	case session.ErrRoleMismatch:
		return errHttpForbidden
	case session.ErrOperationPending:
		return errHttpPending
	case session.ErrSessionChanged:
		return errHttpChanged
	case context.DeadlineExceeded:
		return errHttpTimeout
	}
	return err
}
