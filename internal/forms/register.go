package forms

import (
	"errors"
	"net/url"

	"github.com/go-playground/validator/v10"

	pkgauth "github.com/BradenHooton/srm/pkg/auth"
)

type RegisterForm struct {
	Username  string `form:"username" validate:"required,max=150,username"`
	FirstName string `form:"first_name" validate:"required,max=30"`
	LastName  string `form:"last_name" validate:"required,max=30"`
	Email     string `form:"email" validate:"required,max=254,email"`
	Password1 string `form:"password1" validate:"required"`
	Password2 string `form:"password2" validate:"required"`
}

// ParseRegister reads the signup form. Passwords are not trimmed.
func ParseRegister(values url.Values) RegisterForm {
	return RegisterForm{
		Username:  field(values, "username"),
		FirstName: field(values, "first_name"),
		LastName:  field(values, "last_name"),
		Email:     field(values, "email"),
		Password1: values.Get("password1"),
		Password2: values.Get("password2"),
	}
}

// Register validates the signup form, including password strength. Email
// uniqueness needs the user store and is checked by the caller.
func (v *Validator) Register(values url.Values) (*RegisterForm, FieldErrors) {
	form := ParseRegister(values)

	errs := v.check(form)
	if !errs.Has("password1") && !errs.Has("password2") {
		err := pkgauth.ValidatePassword(form.Password2, form.Username, form.Email, form.FirstName, form.LastName)
		var pve *pkgauth.PasswordValidationError
		if errors.As(err, &pve) {
			errs.Add("password2", pve.Errors...)
		}
	}

	if !errs.Empty() {
		return nil, errs
	}
	return &form, nil
}

func registerRules(sl validator.StructLevel) {
	form := sl.Current().Interface().(RegisterForm)
	if form.Password1 != "" && form.Password2 != "" && form.Password1 != form.Password2 {
		sl.ReportError(form.Password2, "password2", "Password2", "password_mismatch", "")
	}
}
