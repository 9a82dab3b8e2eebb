package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/sahayak/core"
	"github.com/trezcool/sahayak/core/session"
	"github.com/trezcool/sahayak/core/user"
)

var errUnknownClass = "class is not one of the user's classes"

type LoginRequest struct {
	Email string `json:"email" validate:"required,email"`
}

func (r *LoginRequest) Validate(validate *validator.Validate) error {
	r.Email = core.CleanString(r.Email, true /* lower */)
	return validate.Struct(r)
}

type sessionApi struct {
	store    *session.Store
	validate *validator.Validate
	keys     []string
}

func registerSessionAPI(g *echo.Group, store *session.Store, validate *validator.Validate, keys []string) {
	api := sessionApi{
		store:    store,
		validate: validate,
		keys:     keys,
	}

	sg := g.Group("/session")
	sg.GET("", api.retrieve)
	sg.DELETE("", api.logout)
	sg.POST("/login", api.login)
	sg.POST("/onboarding", api.completeOnboarding)
	sg.PUT("/class", api.switchClass)
	sg.GET("/classes", api.queryClasses)

	g.GET("/catalog", api.catalog)
}

// Handlers

func (api *sessionApi) retrieve(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, api.store.Snapshot())
}

func (api *sessionApi) login(ctx echo.Context) error {
	var data LoginRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to LoginRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	if _, err := api.store.Login(ctx.Request().Context(), data.Email); err != nil {
		return sessionError(err, api.keys, data.Email)
	}
	return ctx.JSON(http.StatusOK, api.store.Snapshot())
}

func (api *sessionApi) completeOnboarding(ctx echo.Context) error {
	var data user.TeacherProfile
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to TeacherProfile")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	if _, err := api.store.CompleteOnboarding(ctx.Request().Context(), data); err != nil {
		return sessionError(err, nil, "")
	}
	return ctx.JSON(http.StatusOK, api.store.Snapshot())
}

func (api *sessionApi) switchClass(ctx echo.Context) error {
	if _, ok := api.store.User(); !ok {
		return errHttpNotLoggedIn
	}

	var data user.ClassContext
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ClassContext")
	}
	data.Grade = core.CleanString(data.Grade)
	data.ClassName = core.CleanString(data.ClassName)
	if err := api.validate.Struct(data); err != nil {
		return err
	}
	if !api.store.IsKnownClass(data) {
		return core.NewValidationError(nil, core.FieldError{Field: "className", Error: errUnknownClass})
	}

	if err := api.store.SwitchClass(ctx.Request().Context(), data); err != nil {
		return errors.Wrap(err, "switching class")
	}
	return ctx.JSON(http.StatusOK, api.store.Snapshot())
}

func (api *sessionApi) logout(ctx echo.Context) error {
	if err := api.store.Logout(ctx.Request().Context()); err != nil {
		return errors.Wrap(err, "logging out")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *sessionApi) queryClasses(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, api.store.AllClasses())
}

func (api *sessionApi) catalog(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, user.GetCatalog())
}
