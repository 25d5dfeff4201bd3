// Package storage validates and stores payment proofs. Files are checked
// against the allow-list before anything is written, then saved under a
// timestamped name by a ProofStore (local disk or MinIO).
package storage

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
)

var (
	ErrMissingFile    = errors.New("Por favor, adjunta el comprobante de pago")
	ErrTooLarge       = errors.New("El archivo es demasiado grande (máximo 10 MB)")
	ErrTypeNotAllowed = errors.New("Tipo de archivo no permitido. Solo se aceptan imágenes (JPG, PNG, GIF) o PDF")
)

// AllowedTypes is the set of MIME types accepted as proof.
var AllowedTypes = map[string]bool{
	"image/jpeg":      true,
	"image/png":       true,
	"image/gif":       true,
	"application/pdf": true,
}

// Policy holds the upload limits.
type Policy struct {
	MaxBytes int64
	Allowed  map[string]bool
}

// DefaultPolicy accepts the allow-list up to maxBytes.
func DefaultPolicy(maxBytes int64) Policy {
	return Policy{MaxBytes: maxBytes, Allowed: AllowedTypes}
}

// Check validates a multipart file without writing it anywhere. Both the
// declared Content-Type and the sniffed content must be on the allow-list.
// The sniffed type is returned.
func (p Policy) Check(fh *multipart.FileHeader) (string, error) {
	if fh == nil {
		return "", ErrMissingFile
	}
	if fh.Size > p.MaxBytes {
		return "", ErrTooLarge
	}
	declared := baseType(fh.Header.Get("Content-Type"))
	if declared != "" && !p.Allowed[declared] {
		return "", fmt.Errorf("%w: %s", ErrTypeNotAllowed, declared)
	}

	f, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer f.Close()
	return p.sniff(f)
}

func (p Policy) sniff(r io.Reader) (string, error) {
	mt, err := mimetype.DetectReader(r)
	if err != nil {
		return "", err
	}
	detected := baseType(mt.String())
	if !p.Allowed[detected] {
		return "", fmt.Errorf("%w: %s", ErrTypeNotAllowed, detected)
	}
	return detected, nil
}

// IsPolicyError reports whether err is a client-side file problem.
func IsPolicyError(err error) bool {
	return errors.Is(err, ErrMissingFile) || errors.Is(err, ErrTooLarge) || errors.Is(err, ErrTypeNotAllowed)
}

func baseType(ct string) string {
	ct = strings.TrimSpace(strings.ToLower(ct))
	if ct == "" {
		return ""
	}
	if mt, _, err := mime.ParseMediaType(ct); err == nil {
		return mt
	}
	if i := strings.Index(ct, ";"); i > 0 {
		return strings.TrimSpace(ct[:i])
	}
	return ct
}

// StoredName builds the on-disk name: write-time milliseconds, a dash and the
// sanitized original name. Two uploads with the same name in the same
// millisecond collide; that risk is accepted.
func StoredName(now time.Time, original string) string {
	return fmt.Sprintf("%d-%s", now.UnixMilli(), SanitizeFilename(original))
}

// SanitizeFilename removes path separators and characters that would break
// the public URL.
func SanitizeFilename(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	name = strings.ReplaceAll(name, "\x00", "")
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		case r == ' ':
			b.WriteRune('_')
		}
	}
	out := strings.Trim(b.String(), " .")
	if len(out) > 200 {
		ext := filepath.Ext(out)
		if len(ext) > 20 {
			ext = ""
		}
		out = out[:200-len(ext)] + ext
	}
	if out == "" {
		out = "comprobante"
	}
	return out
}

// PublicURL joins the configured base with the stored name.
func PublicURL(base, stored string) string {
	return strings.TrimRight(base, "/") + "/uploads/" + stored
}
