package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/monkey-ranch/internal/logger"
	"github.com/iliyamo/monkey-ranch/internal/metrics"
	"github.com/iliyamo/monkey-ranch/internal/repository"
	"github.com/iliyamo/monkey-ranch/internal/storage"
	"github.com/iliyamo/monkey-ranch/internal/validation"
)

// envelope is the body of every API response.
type envelope struct {
	Success        bool   `json:"success"`
	Message        string `json:"message,omitempty"`
	ID             *int64 `json:"id,omitempty"`
	ComprobanteURL string `json:"comprobante_url,omitempty"`
	Count          *int   `json:"count,omitempty"`
	Data           any    `json:"data,omitempty"`
}

const (
	msgInvalidBody = "Solicitud inválida"
	msgNotFound    = "Ruta no encontrada"
	msgInternal    = "Error interno del servidor"
)

func created(c echo.Context, msg string, id int64) error {
	return c.JSON(http.StatusCreated, envelope{Success: true, Message: msg, ID: &id})
}

func list[T any](c echo.Context, rows []T) error {
	if rows == nil {
		rows = []T{}
	}
	n := len(rows)
	return c.JSON(http.StatusOK, envelope{Success: true, Count: &n, Data: rows})
}

func fail(c echo.Context, status int, msg string) error {
	return c.JSON(status, envelope{Success: false, Message: msg})
}

// reject answers a client error whose message is shown to the visitor.
func reject(c echo.Context, form string, err error) error {
	metrics.TrackForm(form, metrics.ResultRejected)
	return fail(c, http.StatusBadRequest, err.Error())
}

// internal logs err and answers with a generic message; database details
// never reach the client.
func internal(c echo.Context, form, msg string, err error) error {
	logger.FromContext(c.Request().Context()).Error(msg, zap.String("form", form), zap.Error(err))
	metrics.TrackForm(form, metrics.ResultError)
	return fail(c, http.StatusInternalServerError, msg)
}

// formValues reads a JSON object or a url-encoded/multipart form into a flat
// map of trimmed strings. JSON numbers and booleans are kept as their text.
func formValues(c echo.Context) (map[string]string, error) {
	req := c.Request()
	out := map[string]string{}
	if strings.HasPrefix(req.Header.Get(echo.HeaderContentType), echo.MIMEApplicationJSON) {
		var raw map[string]any
		dec := json.NewDecoder(req.Body)
		dec.UseNumber()
		if err := dec.Decode(&raw); err != nil {
			if errors.Is(err, io.EOF) {
				return out, nil
			}
			return nil, err
		}
		for k, v := range raw {
			switch t := v.(type) {
			case string:
				out[k] = strings.TrimSpace(t)
			case json.Number:
				out[k] = t.String()
			case bool:
				out[k] = strconv.FormatBool(t)
			}
		}
		return out, nil
	}
	params, err := c.FormParams()
	if err != nil {
		return nil, err
	}
	for k, vs := range params {
		if len(vs) > 0 {
			out[k] = strings.TrimSpace(vs[0])
		}
	}
	return out, nil
}

// tooLarge reports whether err is the body limit tripping while the request
// body was being read.
func tooLarge(err error) bool {
	var he *echo.HTTPError
	return errors.As(err, &he) && he.Code == http.StatusRequestEntityTooLarge
}

// pageFrom parses the optional limit and offset query parameters.
func pageFrom(c echo.Context) (repository.Page, error) {
	var p repository.Page
	for name, dst := range map[string]*int{"limit": &p.Limit, "offset": &p.Offset} {
		s := c.QueryParam(name)
		if s == "" {
			continue
		}
		n, err := validation.Int(s)
		if err != nil || n < 0 {
			return repository.Page{}, validation.ErrNotNumeric
		}
		*dst = n
	}
	return p, nil
}

// ErrorHandler renders framework errors (unknown routes, oversized bodies,
// panics recovered upstream) in the API envelope.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	code := http.StatusInternalServerError
	msg := msgInternal
	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		switch code {
		case http.StatusNotFound:
			msg = msgNotFound
		case http.StatusMethodNotAllowed:
			msg = "Método no permitido"
		case http.StatusRequestEntityTooLarge:
			msg = "La solicitud excede el tamaño máximo permitido"
			// An oversized proof is a file-policy rejection like any other.
			if strings.HasSuffix(c.Request().URL.Path, ProofRouteSuffix) {
				code = http.StatusBadRequest
				msg = storage.ErrTooLarge.Error()
			}
		default:
			if code < http.StatusInternalServerError {
				msg = fmt.Sprint(he.Message)
			}
		}
	}
	if code >= http.StatusInternalServerError {
		logger.FromContext(c.Request().Context()).Error("unhandled error", zap.Error(err))
	}
	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(code)
		return
	}
	_ = c.JSON(code, envelope{Success: false, Message: msg})
}
