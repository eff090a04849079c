// Package validator validates write inputs before they reach the store.
// Store-level operations assume pre-validated input and do not re-validate,
// so every create/update path in the service layer runs through Struct first.
package validator

import (
	"regexp"

	apperrors "finanzas/internal/errors"

	"github.com/go-playground/validator/v10"
)

var hexColorRegex = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

var validate = newValidate()

func newValidate() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("hex_color", validateHexColor)
	_ = v.RegisterValidation("tipo_movimiento", validateTipoMovimiento)
	_ = v.RegisterValidation("proveedor", validateProveedor)
	return v
}

// Struct validates the given input struct against its `validate` tags and
// converts the first violation into an INVALID_INPUT AppError.
func Struct(in interface{}) error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}

	if errs, ok := err.(validator.ValidationErrors); ok && len(errs) > 0 {
		first := errs[0]
		return apperrors.WithMessage(apperrors.ErrInvalidInput,
			"invalid value for "+first.Field()+" ("+first.Tag()+")")
	}
	return apperrors.Wrap(apperrors.ErrInvalidInput, err)
}

func validateHexColor(fl validator.FieldLevel) bool {
	return hexColorRegex.MatchString(fl.Field().String())
}

func validateTipoMovimiento(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "gasto", "ingreso":
		return true
	}
	return false
}

func validateProveedor(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "email", "google":
		return true
	}
	return false
}
