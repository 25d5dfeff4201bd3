// Package validation holds the form checks shared by every endpoint. Error
// values carry the Spanish message shown to visitors.
package validation

import (
	"errors"
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ErrMissingFields = errors.New("Por favor, completa todos los campos")
	ErrInvalidEmail  = errors.New("Por favor, ingresa un email válido")
	ErrNotNumeric    = errors.New("Por favor, ingresa un número válido")
)

var emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Field is a named form value.
type Field struct {
	Name  string
	Value string
}

// F is shorthand for building a Field.
func F(name, value string) Field { return Field{Name: name, Value: value} }

// Required fails with ErrMissingFields when any value is blank. The names of
// the blank fields are returned for logging.
func Required(fields ...Field) ([]string, error) {
	var missing []string
	for _, f := range fields {
		if strings.TrimSpace(f.Value) == "" {
			missing = append(missing, f.Name)
		}
	}
	if len(missing) > 0 {
		return missing, ErrMissingFields
	}
	return nil, nil
}

// Email checks the local-part@domain.tld shape.
func Email(s string) error {
	if !emailRegex.MatchString(s) {
		return ErrInvalidEmail
	}
	return nil
}

// Int coerces a form value to an integer.
func Int(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, ErrNotNumeric
	}
	return n, nil
}

// Amount parses an optional money value; blank yields zero and ok=false.
func Amount(s string) (d decimal.Decimal, ok bool, err error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, false, nil
	}
	d, err = decimal.NewFromString(strings.TrimPrefix(s, "$"))
	if err != nil {
		return decimal.Zero, false, ErrNotNumeric
	}
	return d, true, nil
}

// IsClientError reports whether err came from this package.
func IsClientError(err error) bool {
	return errors.Is(err, ErrMissingFields) || errors.Is(err, ErrInvalidEmail) || errors.Is(err, ErrNotNumeric)
}
