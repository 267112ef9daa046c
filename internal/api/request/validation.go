package request

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"github.com/edvin/provisioner/internal/platform"
)

const maxBodyBytes = 1 << 20

var validate = validator.New()

func init() {
	validate.RegisterValidation("orgname", func(fl validator.FieldLevel) bool {
		return ValidOrganizationName(fl.Field().String())
	})
	validate.RegisterValidation("subdomain", func(fl validator.FieldLevel) bool {
		return platform.IsValidSubdomain(fl.Field().String())
	})
}

// normalizer is implemented by requests that clean up their fields before
// validation.
type normalizer interface {
	Normalize()
}

func Decode(r *http.Request, v any) error {
	if err := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodyBytes)).Decode(v); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	if n, ok := v.(normalizer); ok {
		n.Normalize()
	}
	if err := validate.Struct(v); err != nil {
		return fmt.Errorf("validation error: %w", err)
	}
	return nil
}

// ValidOrganizationName accepts 3 to 50 characters of letters, digits, space,
// hyphen, underscore and dot.
func ValidOrganizationName(s string) bool {
	n := utf8.RuneCountInString(s)
	if n < 3 || n > 50 {
		return false
	}
	for _, c := range s {
		if unicode.IsLetter(c) || unicode.IsDigit(c) || strings.ContainsRune(" -_.", c) {
			continue
		}
		return false
	}
	return true
}

// RequireSubdomain validates a subdomain taken from the URL.
func RequireSubdomain(s string) (string, error) {
	if s == "" {
		return "", fmt.Errorf("missing required subdomain")
	}
	if !platform.IsValidSubdomain(s) {
		return "", fmt.Errorf("invalid subdomain %q", s)
	}
	return s, nil
}
