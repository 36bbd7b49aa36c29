package echoapi

import (
	"context"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/myschool/myschool/core"
	"github.com/myschool/myschool/core/sms"
)

type smsAPI struct {
	svc    sms.Service
	desk   *sms.Desk
	logger core.Logger
}

func registerSMSAPI(g *echo.Group, jwt, staffOnly echo.MiddlewareFunc, svc sms.Service, desk *sms.Desk, logger core.Logger) {
	api := smsAPI{
		svc:    svc,
		desk:   desk,
		logger: logger,
	}

	sg := g.Group("/sms", jwt, staffOnly)
	sg.GET("/placeholders", api.queryPlaceholders)
	sg.GET("/codes", api.queryCodes)
	sg.GET("/balance", api.balance)
	sg.POST("/estimate", api.estimate)

	dg := sg.Group("/draft")
	dg.GET("", api.getDraft)
	dg.PUT("", api.updateDraft)
	dg.POST("/placeholders", api.insertPlaceholder)
	dg.POST("/send", api.send)
}

// Handlers

func (api *smsAPI) queryPlaceholders(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, sms.Placeholders)
}

func (api *smsAPI) queryCodes(ctx echo.Context) error {
	codes := make(map[string]string, len(sms.ResponseCodes))
	for code, reason := range sms.ResponseCodes {
		codes[strconv.Itoa(code)] = reason
	}
	return ctx.JSON(http.StatusOK, codes)
}

func (api *smsAPI) balance(ctx echo.Context) error {
	refresh, _ := strconv.ParseBool(ctx.QueryParam("refresh"))
	if refresh || !api.svc.Balance().Valid {
		if _, err := api.svc.RefreshBalance(ctx.Request().Context()); err != nil {
			return errors.Wrap(err, "refreshing balance")
		}
	}
	return ctx.JSON(http.StatusOK, BalanceResponse{
		Balance: api.svc.Balance(),
		Rate:    api.svc.Rate(),
	})
}

func (api *smsAPI) estimate(ctx echo.Context) error {
	var data EstimateRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to EstimateRequest")
	}

	est, err := api.desk.Estimate(ctx.Request().Context(), data.Message, data.Numbers)
	if err != nil {
		return errors.Wrap(err, "estimating cost")
	}
	return ctx.JSON(http.StatusOK, est)
}

func (api *smsAPI) getDraft(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	view, err := api.desk.Get(ctx.Request().Context(), claims.Subject)
	if err != nil {
		return errors.Wrap(err, "getting draft")
	}
	return ctx.JSON(http.StatusOK, view)
}

func (api *smsAPI) updateDraft(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}
	var data sms.Draft
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Draft")
	}

	view, err := api.desk.Update(ctx.Request().Context(), claims.Subject, data)
	if err != nil {
		return errors.Wrap(err, "updating draft")
	}
	return ctx.JSON(http.StatusOK, view)
}

func (api *smsAPI) insertPlaceholder(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}
	var data sms.Placeholder
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Placeholder")
	}

	view, err := api.desk.InsertPlaceholder(ctx.Request().Context(), claims.Subject, data.Key)
	if err != nil {
		return errors.Wrap(err, "inserting placeholder")
	}
	return ctx.JSON(http.StatusOK, view)
}

func (api *smsAPI) send(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	// submissions already handed to the gateway run to completion even if the client goes away
	report, err := api.desk.Send(context.WithoutCancel(ctx.Request().Context()), claims.Subject)
	if err != nil {
		if report == nil {
			return errors.Wrap(err, "sending draft")
		}
		// messages went out, only clearing the draft failed
		api.logger.Error("clearing sent draft", err)
	}

	code := http.StatusOK
	if !report.OK() {
		code = http.StatusMultiStatus
	}
	return ctx.JSON(code, SendResponse{Report: report, Failures: report.Failures()})
}

type BalanceResponse struct {
	Balance decimal.NullDecimal `json:"balance"`
	Rate    decimal.Decimal     `json:"rate"`
}

type EstimateRequest struct {
	Message string   `json:"message"`
	Numbers []string `json:"numbers"`
}

type SendResponse struct {
	Report   *sms.Report  `json:"report"`
	Failures []sms.Result `json:"failures"`
}
