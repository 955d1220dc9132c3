package handlers

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/procureflow/budget_control_app/internal/core/domain"
)

// validateControlLevel accepts only the known control level names.
func validateControlLevel(fl validator.FieldLevel) bool {
	return domain.ControlLevel(fl.Field().String()).IsValid()
}

// registerValidators wires the custom binding validators into gin's
// validator engine. Safe to call more than once.
func registerValidators() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("controllevel", validateControlLevel)
	}
}
