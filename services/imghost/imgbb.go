package imghost

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	_ "image/gif" // register gif
	"image/jpeg"
	_ "image/png" // register png
	"io"
	"mime/multipart"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sendgrid/rest"
	"golang.org/x/image/draw"

	"github.com/myschool/myschool/core"
)

const uploadTimeout = time.Minute

var ErrNotAnImage = errors.New("file is not a supported image (jpeg, png, gif)")

type uploadResponse struct {
	Data struct {
		URL string `json:"url"`
	} `json:"data"`
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// imgBB uploads compressed photos to ImgBB: POST {base}/1/upload?key=... with the "image" form field.
type imgBB struct {
	client   *rest.Client
	baseURL  string
	apiKey   string
	maxWidth int
	quality  int
}

var _ core.ImageHost = (*imgBB)(nil)

func NewImgBB(conf *core.Config) core.ImageHost {
	return newImgBB(conf, &http.Client{Timeout: uploadTimeout})
}

func newImgBB(conf *core.Config, httpClient *http.Client) *imgBB {
	return &imgBB{
		client:   &rest.Client{HTTPClient: httpClient},
		baseURL:  strings.TrimSuffix(conf.ImageHost.BaseURL, "/"),
		apiKey:   conf.ImageHost.APIKey,
		maxWidth: conf.ImageHost.MaxWidth,
		quality:  conf.ImageHost.Quality,
	}
}

func (h *imgBB) Upload(ctx context.Context, r io.Reader, filename string) (string, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return "", core.NewValidationError(errors.Wrap(ErrNotAnImage, err.Error()), core.FieldError{Field: "image", Error: ErrNotAnImage.Error()})
	}

	var jpg bytes.Buffer
	if err = jpeg.Encode(&jpg, downscale(img, h.maxWidth), &jpeg.Options{Quality: h.quality}); err != nil {
		return "", errors.Wrap(err, "encoding image")
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("image", strings.TrimSuffix(filename, path.Ext(filename))+".jpg")
	if err != nil {
		return "", errors.Wrap(err, "creating image form field")
	}
	if _, err = fw.Write(jpg.Bytes()); err != nil {
		return "", errors.Wrap(err, "writing image form field")
	}
	if err = mw.Close(); err != nil {
		return "", errors.Wrap(err, "closing form")
	}

	res, err := h.client.SendWithContext(ctx, rest.Request{
		Method:      rest.Post,
		BaseURL:     h.baseURL + "/1/upload",
		Headers:     map[string]string{"Content-Type": mw.FormDataContentType()},
		QueryParams: map[string]string{"key": h.apiKey},
		Body:        body.Bytes(),
	})
	if err != nil {
		return "", errors.Wrap(err, "uploading image")
	}

	var ur uploadResponse
	if err = json.Unmarshal([]byte(res.Body), &ur); err != nil {
		return "", errors.Wrapf(err, "decoding upload response (status %d)", res.StatusCode)
	}
	if res.StatusCode >= http.StatusBadRequest || ur.Data.URL == "" {
		return "", errors.Errorf("uploading image: status %d: %s", res.StatusCode, ur.Error.Message)
	}
	return ur.Data.URL, nil
}

func (h *imgBB) Fetch(ctx context.Context, url string) ([]byte, string, error) {
	res, err := h.client.SendWithContext(ctx, rest.Request{Method: rest.Get, BaseURL: url})
	if err != nil {
		return nil, "", errors.Wrap(err, "fetching image")
	}
	if res.StatusCode >= http.StatusBadRequest {
		return nil, "", errors.Errorf("fetching image: status %d", res.StatusCode)
	}
	content := []byte(res.Body)
	return content, http.DetectContentType(content), nil
}

// downscale shrinks img to maxWidth, keeping its aspect ratio. Smaller images are returned as is.
func downscale(img image.Image, maxWidth int) image.Image {
	b := img.Bounds()
	if maxWidth <= 0 || b.Dx() <= maxWidth {
		return img
	}
	height := b.Dy() * maxWidth / b.Dx()
	if height < 1 {
		height = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, maxWidth, height))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, b, draw.Over, nil)
	return dst
}
