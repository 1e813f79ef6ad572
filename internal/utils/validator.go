package utils

import (
	"flavorpal-backend/domain"
	"github.com/go-playground/validator/v10"
)

var Validate *validator.Validate

func InitValidator() {
	Validate = NewValidator()
}

// NewValidator returns a validator with the image_data_uri tag registered.
func NewValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("image_data_uri", func(fl validator.FieldLevel) bool {
		return domain.ImageDataURIPattern.MatchString(fl.Field().String())
	})
	return v
}
