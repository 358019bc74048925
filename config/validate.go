package config

import (
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/kbukum/streamcast/errors"
)

var (
	validate *validator.Validate
	once     sync.Once
)

// FieldError describes one invalid field, named by its config key.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func getValidator() *validator.Validate {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("mapstructure"), ",", 2)[0]
			if name == "-" || name == "" {
				return strings.ToLower(fld.Name)
			}
			return name
		})
	})
	return validate
}

// ValidateStruct validates s using its `validate` struct tags. Failures are
// returned as an INVALID_INPUT AppError listing every field by its dotted
// config key.
func ValidateStruct(s any) error {
	err := getValidator().Struct(s)
	if err == nil {
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return errors.Validation(err.Error())
	}

	fields := make([]FieldError, 0, len(verrs))
	messages := make([]string, 0, len(verrs))
	for _, e := range verrs {
		key := configKey(e.Namespace())
		msg := describe(e)
		fields = append(fields, FieldError{Field: key, Message: msg})
		messages = append(messages, key+": "+msg)
	}
	return errors.Validation(strings.Join(messages, "; ")).WithDetail("fields", fields)
}

// configKey drops the root struct name: "ServiceConfig.http.addr" -> "http.addr".
func configKey(namespace string) string {
	if _, rest, ok := strings.Cut(namespace, "."); ok {
		return rest
	}
	return namespace
}

func describe(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "min", "gte":
		return "must be at least " + e.Param()
	case "max", "lte":
		return "must be at most " + e.Param()
	case "gt":
		return "must be greater than " + e.Param()
	case "oneof":
		return "must be one of: " + e.Param()
	case "hostname_port":
		return "must be host:port"
	case "startswith":
		return "must start with " + e.Param()
	default:
		return "is invalid"
	}
}
