package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/myschool/myschool/core/preference"
)

type preferenceAPI struct {
	svc preference.Service
}

func registerPreferenceAPI(g *echo.Group, jwt, staffOnly echo.MiddlewareFunc, svc preference.Service) {
	api := preferenceAPI{svc: svc}

	pg := g.Group("/preferences", jwt, staffOnly)
	pg.GET("", api.get)
	pg.PUT("", api.save)
}

// Handlers

func (api *preferenceAPI) get(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	prefs, err := api.svc.Get(ctx.Request().Context(), claims.Subject)
	if err != nil {
		return errors.Wrap(err, "getting preferences")
	}
	return ctx.JSON(http.StatusOK, prefs)
}

func (api *preferenceAPI) save(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}
	prefs := preference.Defaults()
	if err = ctx.Bind(&prefs); err != nil {
		return errors.Wrap(err, "binding to Preferences")
	}

	prefs, err = api.svc.Save(ctx.Request().Context(), claims.Subject, prefs)
	if err != nil {
		return errors.Wrap(err, "saving preferences")
	}
	return ctx.JSON(http.StatusOK, prefs)
}
