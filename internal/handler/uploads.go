package handler

import (
	"bytes"
	"errors"
	"io"
	"net/http"

	"github.com/gabriel-vasile/mimetype"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/monkey-ranch/internal/storage"
)

// sniffLen matches the amount mimetype inspects by default.
const sniffLen = 3072

// ServeUpload handles GET /uploads/:name, streaming a stored proof from
// whichever store is configured.
func (h *Handler) ServeUpload(c echo.Context) error {
	name := c.Param("name")
	if name == "" {
		return fail(c, http.StatusNotFound, "Comprobante no encontrado")
	}
	rc, err := h.Files.Open(c.Request().Context(), name)
	if errors.Is(err, storage.ErrNotExist) {
		return fail(c, http.StatusNotFound, "Comprobante no encontrado")
	}
	if err != nil {
		return internal(c, "upload", "Error al leer el comprobante", err)
	}
	defer rc.Close()

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(rc, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return internal(c, "upload", "Error al leer el comprobante", err)
	}
	head = head[:n]
	return c.Stream(http.StatusOK, mimetype.Detect(head).String(), io.MultiReader(bytes.NewReader(head), rc))
}
