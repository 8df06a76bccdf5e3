// Plan - Player Analytics Persistence
// Copyright 2026 Plan Player Analytics contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/plan-player-analytics/Plan-sub001

package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// maxEpochMillis is 9999-12-31T23:59:59Z. Larger values are seconds or
// nanoseconds passed where milliseconds were expected.
const maxEpochMillis = 253402300799999

// FieldError is one failed rule on one field.
type FieldError struct {
	Field string
	Tag   string
	Param string
	msg   string
}

func (e FieldError) Error() string { return e.msg }

// StructError collects the field errors of one entity. Transactions
// return it before touching the store.
type StructError struct {
	Entity string
	Fields []FieldError
}

func (se *StructError) Error() string {
	if len(se.Fields) == 0 {
		return "invalid " + se.Entity
	}
	msgs := make([]string, len(se.Fields))
	for i, f := range se.Fields {
		msgs[i] = f.msg
	}
	return "invalid " + se.Entity + ": " + strings.Join(msgs, "; ")
}

// HasField reports whether the named field failed.
func (se *StructError) HasField(field string) bool {
	for _, f := range se.Fields {
		if f.Field == field {
			return true
		}
	}
	return false
}

// GetValidator returns the shared validator with the epoch_ms rule.
func GetValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		if err := validate.RegisterValidation("epoch_ms", epochMillis); err != nil {
			panic(fmt.Sprintf("validation: register epoch_ms: %v", err))
		}
	})
	return validate
}

// RegisterStructValidation adds a cross-field rule for the given types.
// Call it from package initialization, before the types are validated.
func RegisterStructValidation(fn validator.StructLevelFunc, types ...interface{}) {
	GetValidator().RegisterStructValidation(fn, types...)
}

// ValidateStruct returns nil or a *StructError.
func ValidateStruct(s interface{}) error {
	err := GetValidator().Struct(s)
	if err == nil {
		return nil
	}

	se := &StructError{Entity: entityName(s)}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		se.Fields = []FieldError{{Field: "unknown", Tag: "unknown", msg: err.Error()}}
		return se
	}
	for _, fe := range fieldErrs {
		se.Fields = append(se.Fields, FieldError{
			Field: fe.Field(),
			Tag:   fe.Tag(),
			Param: fe.Param(),
			msg:   describe(fe),
		})
	}
	return se
}

func entityName(s interface{}) string {
	t := reflect.TypeOf(s)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.Name() == "" {
		return fmt.Sprintf("%T", s)
	}
	return t.Name()
}

func epochMillis(fl validator.FieldLevel) bool {
	f := fl.Field()
	switch f.Kind() {
	case reflect.Int, reflect.Int32, reflect.Int64:
		v := f.Int()
		return v >= 0 && v <= maxEpochMillis
	default:
		return false
	}
}

// describe renders a rule failure the way it reads in store logs.
func describe(fe validator.FieldError) string {
	field, param := fe.Field(), fe.Param()
	unit := ""
	if fe.Kind() == reflect.String {
		unit = " characters"
	}

	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "uuid":
		return field + " must be a valid UUID"
	case "epoch_ms":
		return field + " must be an epoch millisecond timestamp"
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, param)
	case "min", "gte":
		return fmt.Sprintf("%s must be at least %s%s", field, param, unit)
	case "max", "lte":
		return fmt.Sprintf("%s must be at most %s%s", field, param, unit)
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, param)
	case "lt":
		return fmt.Sprintf("%s must be less than %s", field, param)
	case "gtefield":
		return fmt.Sprintf("%s must not be before %s", field, param)
	case "ltefield":
		return fmt.Sprintf("%s must not exceed %s", field, param)
	default:
		return fmt.Sprintf("%s failed %s", field, fe.Tag())
	}
}
