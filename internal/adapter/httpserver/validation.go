package httpserver

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/fairyhunter13/cv-autofill/internal/domain"
)

var (
	vldOnce sync.Once
	vld     *validator.Validate
)

// getValidator returns a shared validator that reports json field names.
func getValidator() *validator.Validate {
	vldOnce.Do(func() {
		vld = validator.New()
		vld.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return vld
}

type sessionRef struct {
	ID string `json:"session_id" validate:"required,max=64,printascii,excludesall=/?#%"`
}

// ValidateSessionID checks a client-chosen session id.
func ValidateSessionID(id string) error {
	if err := getValidator().Struct(sessionRef{ID: id}); err != nil {
		return invalidArgument(err)
	}
	return nil
}

// Completeness reports whether the fields a form needs before submission
// are present, listing the missing ones by json name.
func Completeness(p domain.StructuredProfile) (bool, []string) {
	err := getValidator().Struct(p)
	if err == nil {
		return true, []string{}
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return false, []string{}
	}
	missing := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		missing = append(missing, fe.Field())
	}
	return false, missing
}

func invalidArgument(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return &fieldError{field: fe.Field(), tag: fe.Tag()}
	}
	return errors.Join(domain.ErrInvalidArgument, err)
}

type fieldError struct{ field, tag string }

func (e *fieldError) Error() string {
	return "invalid argument: " + e.field + " failed " + e.tag
}

func (e *fieldError) Unwrap() error { return domain.ErrInvalidArgument }
