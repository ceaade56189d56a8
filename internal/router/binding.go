package router

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/medalert/ice-api/internal/model"
)

// registerCustomValidators wires the profile enums into gin's binding
// layer so malformed values are rejected before the service sees them.
func registerCustomValidators() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}

	v.RegisterValidation("bloodgroup", func(fl validator.FieldLevel) bool {
		value := fl.Field().String()
		for _, bg := range model.BloodGroups {
			if value == bg {
				return true
			}
		}
		return false
	})

	v.RegisterValidation("gender", func(fl validator.FieldLevel) bool {
		switch model.Gender(fl.Field().String()) {
		case model.GenderMale, model.GenderFemale, model.GenderOther:
			return true
		}
		return false
	})
}
