// Occurlog - Occurrence Logging and Geographic Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/occurlog

package validation

import (
	"errors"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

// CodeValidationFailed is the API error code for invalid request bodies.
const CodeValidationFailed = "VALIDATION_FAILED"

// FormTimeLayout is the layout of an HTML datetime-local input, which is how
// occurrence times are submitted.
const FormTimeLayout = "2006-01-02T15:04"

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// FieldError is one failed rule on one request field. Field is the json
// name when the struct field has one.
type FieldError struct {
	Field   string
	Tag     string
	Param   string
	Value   interface{}
	Message string
}

func (e FieldError) Error() string { return e.Message }

// RequestValidationError collects every failed rule of a request body.
type RequestValidationError struct {
	Fields []FieldError
}

func (ve *RequestValidationError) Error() string {
	if len(ve.Fields) == 0 {
		return "validation failed"
	}
	msgs := make([]string, len(ve.Fields))
	for i, f := range ve.Fields {
		msgs[i] = f.Message
	}
	return strings.Join(msgs, "; ")
}

// APIError carries the code, message and details of the error envelope
// without importing the api package.
type APIError struct {
	Code    string
	Message string
	Details map[string]interface{}
}

// ToAPIError shapes the errors for the response envelope: one failure is
// reported inline, several are listed under "fields".
func (ve *RequestValidationError) ToAPIError() *APIError {
	switch len(ve.Fields) {
	case 0:
		return &APIError{Code: CodeValidationFailed, Message: "Validation failed"}
	case 1:
		f := ve.Fields[0]
		return &APIError{
			Code:    CodeValidationFailed,
			Message: f.Message,
			Details: map[string]interface{}{"field": f.Field, "tag": f.Tag, "value": f.Value},
		}
	}

	fields := make([]map[string]interface{}, len(ve.Fields))
	msgs := make([]string, len(ve.Fields))
	for i, f := range ve.Fields {
		fields[i] = map[string]interface{}{"field": f.Field, "tag": f.Tag, "message": f.Message}
		msgs[i] = f.Field + ": " + f.Message
	}
	return &APIError{
		Code:    CodeValidationFailed,
		Message: strings.Join(msgs, "; "),
		Details: map[string]interface{}{"fields": fields},
	}
}

// GetValidator returns the shared validator with the occurlog rules
// registered: notblank, timezone and formtime.
func GetValidator() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(jsonFieldName)

		// Registration only fails for malformed tag names.
		_ = v.RegisterValidation("notblank", validators.NotBlank)
		_ = v.RegisterValidation("timezone", func(fl validator.FieldLevel) bool {
			name := fl.Field().String()
			if name == "" {
				return false
			}
			_, err := time.LoadLocation(name)
			return err == nil
		})
		_ = v.RegisterValidation("formtime", func(fl validator.FieldLevel) bool {
			_, err := time.Parse(FormTimeLayout, fl.Field().String())
			return err == nil
		})
		validate = v
	})
	return validate
}

func jsonFieldName(fld reflect.StructField) string {
	name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
	if name == "" || name == "-" {
		return fld.Name
	}
	return name
}

// ValidateStruct runs the validate tags of s. It returns nil when every
// rule passes.
func ValidateStruct(s interface{}) *RequestValidationError {
	err := GetValidator().Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return &RequestValidationError{Fields: []FieldError{{Field: "unknown", Tag: "unknown", Message: err.Error()}}}
	}

	out := make([]FieldError, len(fieldErrs))
	for i, fe := range fieldErrs {
		out[i] = FieldError{
			Field:   fe.Field(),
			Tag:     fe.Tag(),
			Param:   fe.Param(),
			Value:   fe.Value(),
			Message: message(fe),
		}
	}
	return &RequestValidationError{Fields: out}
}

// messages holds the text per tag; {f} is the field and {p} the tag param.
// min and max have a separate entry for strings.
var messages = map[string]string{
	"required":   "{f} is required",
	"notblank":   "{f} must not be blank",
	"email":      "{f} must be a valid email address",
	"alphanum":   "{f} may only contain letters and digits",
	"latitude":   "{f} must be a valid latitude (-90 to 90)",
	"longitude":  "{f} must be a valid longitude (-180 to 180)",
	"timezone":   "{f} must be a valid IANA timezone",
	"formtime":   "{f} must be a time in the form " + FormTimeLayout,
	"oneof":      "{f} must be one of: {p}",
	"gte":        "{f} must be greater than or equal to {p}",
	"lte":        "{f} must be less than or equal to {p}",
	"nefield":    "{f} must differ from {p}",
	"min":        "{f} must be at least {p}",
	"max":        "{f} must be at most {p}",
	"min/string": "{f} must be at least {p} characters",
	"max/string": "{f} must be at most {p} characters",
}

func message(fe validator.FieldError) string {
	tmpl, ok := messages[fe.Tag()+"/"+fe.Kind().String()]
	if !ok {
		tmpl, ok = messages[fe.Tag()]
	}
	if !ok {
		tmpl = "{f} failed {t} validation"
	}
	return strings.NewReplacer("{f}", fe.Field(), "{p}", fe.Param(), "{t}", fe.Tag()).Replace(tmpl)
}
