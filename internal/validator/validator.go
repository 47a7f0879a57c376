package validator

import (
	"reflect"
	"regexp"
	"strings"

	"github.com/binhtph/quiz-app/internal/models"
	"github.com/go-playground/validator/v10"
)

var pinPattern = regexp.MustCompile(`^[0-9]{4,8}$`)

const maxTimeLimitMinutes = 600

// Validator combines struct tag validation with question content checks.
type Validator struct {
	structValidator   *validator.Validate
	questionValidator *QuestionValidator
}

func New() *Validator {
	structValidator := validator.New()
	registerCustomValidators(structValidator)

	return &Validator{
		structValidator:   structValidator,
		questionValidator: NewQuestionValidator(),
	}
}

// ValidateStruct validates struct tags only
func (v *Validator) ValidateStruct(s interface{}) error {
	return v.structValidator.Struct(s)
}

// Validate runs struct tags and converts failures to ValidationErrors.
func (v *Validator) Validate(s interface{}) error {
	if err := v.ValidateStruct(s); err != nil {
		if errs := ToValidationErrors(err); len(errs) > 0 {
			return errs
		}
		return err
	}
	return nil
}

func (v *Validator) Question() *QuestionValidator {
	return v.questionValidator
}

func registerCustomValidators(validate *validator.Validate) {
	validate.RegisterValidation("question_type", validateQuestionType)
	validate.RegisterValidation("pin_code", validatePinCode)
	validate.RegisterValidation("user_name", validateUserName)
	validate.RegisterValidation("time_limit", validateTimeLimit)

	// Report json field names in errors
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

func validateQuestionType(fl validator.FieldLevel) bool {
	return models.QuestionType(fl.Field().String()).IsValid()
}

func validatePinCode(fl validator.FieldLevel) bool {
	return pinPattern.MatchString(fl.Field().String())
}

func validateUserName(fl validator.FieldLevel) bool {
	name := fl.Field().String()
	return name != "" && len(name) <= 100 && strings.TrimSpace(name) == name
}

func validateTimeLimit(fl validator.FieldLevel) bool {
	minutes := fl.Field().Int()
	return minutes >= 1 && minutes <= maxTimeLimitMinutes
}
