// Package validator plugs go-playground/validator into echo.
package validator

import (
	"fmt"
	"reflect"
	"strings"

	"mlm/internal/domain/entity"
	domainerrors "mlm/internal/domain/errors"
	"mlm/internal/errors"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// CustomValidator implements echo.Validator.
type CustomValidator struct {
	validate *validator.Validate
}

// New builds a validator that reports JSON field names and knows the domain tags:
// rank (a known rank name) and decimal_gt0 / decimal_ne0 on decimal.Decimal fields.
func New() *CustomValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}

		return name
	})
	_ = v.RegisterValidation("rank", func(fl validator.FieldLevel) bool {
		_, err := entity.ParseRank(fl.Field().String())

		return err == nil
	})
	_ = v.RegisterValidation("decimal_gt0", func(fl validator.FieldLevel) bool {
		d, ok := fl.Field().Interface().(decimal.Decimal)

		return ok && d.IsPositive()
	})
	_ = v.RegisterValidation("decimal_ne0", func(fl validator.FieldLevel) bool {
		d, ok := fl.Field().Interface().(decimal.Decimal)

		return ok && !d.IsZero()
	})

	return &CustomValidator{validate: v}
}

// Validate returns ErrValidationFailed listing every failing field.
func (cv *CustomValidator) Validate(i any) error {
	err := cv.validate.Struct(i)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return domainerrors.ErrValidationFailed.WithDetails(err.Error())
	}

	messages := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		messages = append(messages, describe(fe))
	}

	return domainerrors.ErrValidationFailed.WithDetails(strings.Join(messages, "; "))
}

func describe(fe validator.FieldError) string {
	field := fe.Namespace()
	if idx := strings.Index(field, "."); idx >= 0 {
		field = field[idx+1:]
	}

	switch fe.Tag() {
	case "required", "required_if":
		return fmt.Sprintf("%s is required", field)
	case "rank":
		return fmt.Sprintf("%s must be one of %s", field, strings.Join(rankNames(), ", "))
	case "decimal_gt0":
		return fmt.Sprintf("%s must be greater than zero", field)
	case "decimal_ne0":
		return fmt.Sprintf("%s must not be zero", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", field, fe.Param())
	default:
		if fe.Param() != "" {
			return fmt.Sprintf("%s failed %s=%s", field, fe.Tag(), fe.Param())
		}

		return fmt.Sprintf("%s failed %s", field, fe.Tag())
	}
}

func rankNames() []string {
	var names []string
	for r := entity.RankBronze; r <= entity.RankDiamond; r++ {
		names = append(names, r.String())
	}

	return names
}
