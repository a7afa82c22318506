package forms

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/BradenHooton/srm/internal/models"
)

var (
	lettersPattern   = regexp.MustCompile(`^[a-zA-Z ]+$`)
	wordSpacePattern = regexp.MustCompile(`^[\w\s]+$`)
	phonePattern     = regexp.MustCompile(`^[+]?(?:[0-9\-\(\)\/\.]\s?){6,15}[0-9]{1}$`)
	postcodePattern  = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9\- ]{0,10}[a-zA-Z0-9]$`)
	vatPattern       = regexp.MustCompile(`^[Gg][Bb][0-9]{9}([0-9]{3})?$`)
	usernamePattern  = regexp.MustCompile(`^[\w.@+-]+$`)
)

// Validator checks submitted forms. It owns a clock because the exclusion
// date window is relative to the day of validation.
type Validator struct {
	validate *validator.Validate
	now      func() time.Time
}

func NewValidator() *Validator {
	return NewValidatorWithClock(time.Now)
}

func NewValidatorWithClock(now func() time.Time) *Validator {
	v := &Validator{
		validate: validator.New(validator.WithRequiredStructEnabled()),
		now:      now,
	}

	// report errors under the submitted field name rather than the Go name
	v.validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	mustRegister(v.validate, "letters", lettersPattern)
	mustRegister(v.validate, "wordspace", wordSpacePattern)
	mustRegister(v.validate, "phone", phonePattern)
	mustRegister(v.validate, "postcode", postcodePattern)
	mustRegister(v.validate, "vatno", vatPattern)
	mustRegister(v.validate, "username", usernamePattern)

	mustRegisterChoice(v.validate, "company_type", models.CompanyTypes)
	mustRegisterChoice(v.validate, "legal_form", models.LegalForms)
	mustRegisterChoice(v.validate, "mandatory_ground", models.MandatoryExclusions)
	mustRegisterChoice(v.validate, "discretionary_ground", models.DiscretionaryExclusions)

	v.validate.RegisterStructValidation(v.exclusionRules, ExclusionForm{})
	v.validate.RegisterStructValidation(registerRules, RegisterForm{})

	return v
}

func mustRegister(validate *validator.Validate, tag string, pattern *regexp.Regexp) {
	err := validate.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
		return pattern.MatchString(fl.Field().String())
	})
	if err != nil {
		panic(fmt.Sprintf("forms: register %s: %v", tag, err))
	}
}

// mustRegisterChoice registers a tag accepting exactly one of choices. Some
// labels contain commas, which rules out the builtin oneof tag.
func mustRegisterChoice(validate *validator.Validate, tag string, choices []string) {
	allowed := make(map[string]struct{}, len(choices))
	for _, choice := range choices {
		allowed[choice] = struct{}{}
	}
	err := validate.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
		_, ok := allowed[fl.Field().String()]
		return ok
	})
	if err != nil {
		panic(fmt.Sprintf("forms: register %s: %v", tag, err))
	}
}

// check runs struct validation and converts the result into FieldErrors.
func (v *Validator) check(form any) FieldErrors {
	fieldErrors := FieldErrors{}

	err := v.validate.Struct(form)
	if err == nil {
		return fieldErrors
	}

	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		fieldErrors.Add(NonFieldErrors, err.Error())
		return fieldErrors
	}

	for _, fe := range ve {
		field := fe.Field()
		if fe.Tag() == "exclusion_ground" {
			field = NonFieldErrors
		}
		fieldErrors.Add(field, message(fe))
	}
	return fieldErrors
}

// message converts a validator FieldError to the text shown next to the field.
func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "email":
		return "Enter a valid email address."
	case "max":
		return fmt.Sprintf("Ensure this value has at most %s characters.", fe.Param())
	case "company_type", "legal_form", "mandatory_ground", "discretionary_ground":
		return fmt.Sprintf("Select a valid choice. %s is not one of the available choices.", fe.Value())
	case "letters":
		return "Only letters and spaces are allowed."
	case "wordspace":
		return "Only alphanumeric characters and spaces are allowed."
	case "phone":
		return "Enter a valid phone number."
	case "postcode":
		return "Enter a valid postcode/zipcode e.g. N1 1AD."
	case "vatno":
		return "Enter a valid UK VAT number, GB followed by nine numbers e.g. GB123456789"
	case "username":
		return "Enter a valid username. This value may contain only letters, numbers, and @/./+/-/_ characters."
	case "date":
		return "Enter a valid date."
	case "date_max":
		return fmt.Sprintf("Ensure this value is less than or equal to %s.", fe.Param())
	case "date_min":
		return fmt.Sprintf("Ensure this value is greater than or equal to %s.", fe.Param())
	case "exclusion_ground":
		if fe.Param() == "required" {
			return "Exclusion date is required if either mandatory or discretionary option is selected."
		}
		return "Exclusion date is not required if both mandatory and discretionary fields are None."
	case "password_mismatch":
		return "The two password fields didn't match."
	default:
		return fmt.Sprintf("failed validation: %s", fe.Tag())
	}
}
