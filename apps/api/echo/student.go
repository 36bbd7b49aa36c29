package echoapi

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/myschool/myschool/core"
	"github.com/myschool/myschool/core/student"
)

const photoUploadLimit = "10M"

type studentAPI struct {
	svc       student.Service
	imageHost core.ImageHost
	validate  *validator.Validate
}

func registerStudentAPI(
	g *echo.Group,
	jwt, staffOnly echo.MiddlewareFunc,
	svc student.Service,
	imageHost core.ImageHost,
	validate *validator.Validate,
) {
	api := studentAPI{
		svc:       svc,
		imageHost: imageHost,
		validate:  validate,
	}

	sg := g.Group("/students", jwt, staffOnly)
	sg.GET("", api.query)
	sg.POST("", api.create)
	sg.GET("/classes", api.queryClasses)
	sg.GET("/overview", api.overview)
	sg.GET("/export", api.export)
	sg.POST("/photo", api.uploadPhoto, middleware.BodyLimit(photoUploadLimit))

	// detail endpoints
	dg := sg.Group("/:id")
	dg.GET("", api.retrieve)
	dg.PUT("", api.update)
	dg.DELETE("", api.destroy)
	dg.GET("/photo", api.downloadPhoto)
}

// Handlers

func (api *studentAPI) query(ctx echo.Context) error {
	var filter student.QueryFilter
	if err := ctx.Bind(&filter); err != nil {
		return errors.Wrap(err, "binding to QueryFilter")
	}
	var page core.Pagination
	if err := ctx.Bind(&page); err != nil {
		return errors.Wrap(err, "binding to Pagination")
	}
	ordering := new(Ordering)
	ordering.Bind(ctx)

	p, err := api.svc.Query(ctx.Request().Context(), filter, page, ordering.Orderings)
	if err != nil {
		return errors.Wrap(err, "querying students")
	}
	return ctx.JSON(http.StatusOK, p)
}

func (api *studentAPI) create(ctx echo.Context) error {
	var data student.StudentInput
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to StudentInput")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	s, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating student")
	}
	return ctx.JSON(http.StatusCreated, s)
}

func (api *studentAPI) retrieve(ctx echo.Context) error {
	s, err := api.svc.Get(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting student")
	}
	return ctx.JSON(http.StatusOK, s)
}

func (api *studentAPI) update(ctx echo.Context) error {
	var data student.StudentInput
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to StudentInput")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	s, err := api.svc.Update(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "updating student")
	}
	return ctx.JSON(http.StatusOK, s)
}

func (api *studentAPI) destroy(ctx echo.Context) error {
	if err := api.svc.Delete(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting student")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *studentAPI) queryClasses(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, student.Classes)
}

func (api *studentAPI) overview(ctx echo.Context) error {
	ov, err := api.svc.Overview(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "computing overview")
	}
	return ctx.JSON(http.StatusOK, ov)
}

func (api *studentAPI) export(ctx echo.Context) error {
	// buffered so that an empty export still gets a JSON error
	var buf bytes.Buffer
	if _, err := api.svc.ExportCSV(ctx.Request().Context(), ctx.QueryParam("class"), &buf); err != nil {
		return errors.Wrap(err, "exporting students")
	}

	ctx.Response().Header().Set(echo.HeaderContentDisposition, attachment(student.ExportFileName(time.Now())))
	return ctx.Blob(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

func (api *studentAPI) uploadPhoto(ctx echo.Context) error {
	fh, err := ctx.FormFile("image")
	if err != nil {
		return core.NewValidationError(err, core.FieldError{Field: "image", Error: "an image file is required"})
	}
	file, err := fh.Open()
	if err != nil {
		return errors.Wrap(err, "opening uploaded file")
	}
	defer func() { _ = file.Close() }()

	url, err := api.imageHost.Upload(ctx.Request().Context(), file, fh.Filename)
	if err != nil {
		return errors.Wrap(err, "uploading photo")
	}
	return ctx.JSON(http.StatusOK, PhotoResponse{URL: url})
}

func (api *studentAPI) downloadPhoto(ctx echo.Context) error {
	s, err := api.svc.Get(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting student")
	}
	if !s.PhotoURL.Valid || s.PhotoURL.String == "" {
		return echo.NewHTTPError(http.StatusNotFound, "student has no photo")
	}

	content, contentType, err := api.imageHost.Fetch(ctx.Request().Context(), s.PhotoURL.String)
	if err != nil {
		return errors.Wrap(err, "fetching photo")
	}
	ctx.Response().Header().Set(echo.HeaderContentDisposition, attachment(student.PhotoFileName(s)))
	return ctx.Blob(http.StatusOK, contentType, content)
}

func attachment(filename string) string {
	return fmt.Sprintf("attachment; filename=%q", filename)
}

type PhotoResponse struct {
	URL string `json:"url"`
}
