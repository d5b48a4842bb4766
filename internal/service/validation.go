package service

import (
	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/city-intranet-api/internal/models"
	appErrors "github.com/noah-isme/city-intranet-api/pkg/errors"
)

// NewValidator returns a validator with the domain enum tags registered.
func NewValidator() *validator.Validate {
	return withDomainValidations(validator.New())
}

func withDomainValidations(validate *validator.Validate) *validator.Validate {
	if validate == nil {
		validate = validator.New()
	}
	_ = validate.RegisterValidation("role", func(fl validator.FieldLevel) bool {
		return models.UserRole(fl.Field().String()).Valid()
	})
	_ = validate.RegisterValidation("taskstatus", func(fl validator.FieldLevel) bool {
		return models.TaskStatus(fl.Field().String()).Valid()
	})
	_ = validate.RegisterValidation("taskpriority", func(fl validator.FieldLevel) bool {
		return models.TaskPriority(fl.Field().String()).Valid()
	})
	_ = validate.RegisterValidation("doccategory", func(fl validator.FieldLevel) bool {
		return models.DocumentCategory(fl.Field().String()).Valid()
	})
	return validate
}

func validationError(err error, message string) error {
	return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, message)
}
