package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/myschool/myschool/core/fund"
)

type fundAPI struct {
	svc      fund.Service
	validate *validator.Validate
}

type transactionList struct {
	Transactions []fund.Transaction `json:"transactions"`
}

func registerFundAPI(g *echo.Group, jwt, staffOnly echo.MiddlewareFunc, svc fund.Service, validate *validator.Validate) {
	api := fundAPI{
		svc:      svc,
		validate: validate,
	}

	tg := g.Group("/transactions", jwt, staffOnly)
	tg.GET("", api.list)
	tg.POST("", api.create)
	tg.GET("/summary", api.summary)

	// detail endpoints
	dg := tg.Group("/:id")
	dg.GET("", api.retrieve)
	dg.DELETE("", api.destroy)
}

// Handlers

func (api *fundAPI) list(ctx echo.Context) error {
	var filter fund.Filter
	if err := ctx.Bind(&filter); err != nil {
		return errors.Wrap(err, "binding to Filter")
	}

	txs, err := api.svc.List(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "listing transactions")
	}
	return ctx.JSON(http.StatusOK, transactionList{Transactions: txs})
}

func (api *fundAPI) summary(ctx echo.Context) error {
	var filter fund.Filter
	if err := ctx.Bind(&filter); err != nil {
		return errors.Wrap(err, "binding to Filter")
	}

	s, err := api.svc.Summary(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "summarizing transactions")
	}
	return ctx.JSON(http.StatusOK, s)
}

func (api *fundAPI) create(ctx echo.Context) error {
	var data fund.TransactionInput
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to TransactionInput")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	t, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "recording transaction")
	}
	return ctx.JSON(http.StatusCreated, t)
}

func (api *fundAPI) retrieve(ctx echo.Context) error {
	t, err := api.svc.Get(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting transaction")
	}
	return ctx.JSON(http.StatusOK, t)
}

func (api *fundAPI) destroy(ctx echo.Context) error {
	if err := api.svc.Delete(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting transaction")
	}
	return ctx.NoContent(http.StatusNoContent)
}
