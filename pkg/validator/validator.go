package validator

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator"

	"eventverteiler/internal/model"
)

var global *validator.Validate

const (
	ErrInvalidFormat      = "Invalid format"
	ErrFieldRequired      = "Field is required"
	ErrFieldExceedsMaxLen = "Field exceeds maximum length"
	ErrFieldBelowMinLen   = "Field is below minimum length"
	ErrFieldExceedsMaxVal = "Field exceeds maximum value"
	ErrFieldBelowMinVal   = "Field is below minimum value"
	ErrUnknownValidation  = "Unknown validation error"
)

func init() {
	SetValidator(New())
}

func New() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("platform", validatePlatform)
	_ = v.RegisterValidation("intmethod", validateMethod)
	_ = v.RegisterValidation("eventtype", validateEventType)
	_ = v.RegisterValidation("caldate", validateCalendarDate)
	_ = v.RegisterValidation("clocktime", validateClockTime)
	return v
}

func SetValidator(v *validator.Validate) {
	global = v
}

func Validator() *validator.Validate {
	return global
}

func validatePlatform(fl validator.FieldLevel) bool {
	return model.Platform(fl.Field().String()).Valid()
}

func validateMethod(fl validator.FieldLevel) bool {
	return model.Method(fl.Field().String()).Valid()
}

func validateEventType(fl validator.FieldLevel) bool {
	switch model.EventType(fl.Field().String()) {
	case model.EventTypeVirtual, model.EventTypeLive, model.EventTypeHybrid:
		return true
	}
	return false
}

func validateCalendarDate(fl validator.FieldLevel) bool {
	_, err := time.Parse("2006-01-02", fl.Field().String())
	return err == nil
}

func validateClockTime(fl validator.FieldLevel) bool {
	_, err := time.Parse("15:04", fl.Field().String())
	return err == nil
}

func Validate(ctx context.Context, structure any) error {
	return parseValidationErrors(Validator().StructCtx(ctx, structure))
}

func parseValidationErrors(err error) error {
	if err == nil {
		return nil
	}
	vErrors, ok := err.(validator.ValidationErrors)
	if !ok || len(vErrors) == 0 {
		return nil
	}
	ve := vErrors[0]
	var msg string
	switch ve.Tag() {
	case "required":
		msg = ErrFieldRequired
	case "max":
		msg = ErrFieldExceedsMaxLen
	case "min":
		msg = ErrFieldBelowMinLen
	case "lt", "lte":
		msg = ErrFieldExceedsMaxVal
	case "gt", "gte":
		msg = ErrFieldBelowMinVal
	case "platform":
		msg = "Unknown platform"
	case "intmethod":
		msg = "Unknown integration method"
	case "eventtype":
		msg = "Unknown event type"
	case "caldate":
		msg = "Date must be YYYY-MM-DD"
	case "clocktime":
		msg = "Time must be HH:MM"
	default:
		msg = ErrUnknownValidation
	}
	return errors.New(msg + ": " + ve.Namespace())
}
