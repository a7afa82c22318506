package forms

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/BradenHooton/srm/internal/models"
)

// Accepted exclusion_date layouts, ISO first.
var dateLayouts = []string{"2006-01-02", "02/01/2006", "02/01/06"}

// exclusionWindowDays is how far back an exclusion date may lie: ten years
// plus leap-day slack.
const exclusionWindowDays = 365*10 + 3

type CustomerForm struct {
	FirstName string `form:"first_name" validate:"required,max=30,letters"`
	LastName  string `form:"last_name" validate:"required,max=30,letters"`
	Email     string `form:"email" validate:"required,max=100,email"`
	Phone     string `form:"phone" validate:"required,max=15,phone"`
	Address   string `form:"address" validate:"required,max=50,wordspace"`
	City      string `form:"city" validate:"required,max=50,letters"`
	Country   string `form:"country" validate:"required,max=50,letters"`
	Postcode  string `form:"postcode" validate:"required,max=10,postcode"`
}

type SupplierForm struct {
	Name     string `form:"supplier_name" validate:"required,max=50,wordspace"`
	Email    string `form:"supplier_email" validate:"required,max=100,email"`
	Phone    string `form:"supplier_phone" validate:"required,max=15,phone"`
	Address  string `form:"supplier_address" validate:"required,max=50,wordspace"`
	City     string `form:"supplier_city" validate:"required,max=50,letters"`
	Country  string `form:"supplier_country" validate:"required,max=50,letters"`
	Postcode string `form:"supplier_postcode" validate:"required,max=10,postcode"`
}

type DetailForm struct {
	CompanyType string `form:"company_type" validate:"required,company_type"`
	LegalForm   string `form:"legal_form" validate:"required,legal_form"`
	VATNo       string `form:"vat_no" validate:"required,max=20,vatno"`
}

type ExclusionForm struct {
	Mandatory     string `form:"mandatory" validate:"mandatory_ground"`
	Discretionary string `form:"discretionary" validate:"discretionary_ground"`
	ExclusionDate string `form:"exclusion_date"`
}

func ParseCustomer(values url.Values) CustomerForm {
	return CustomerForm{
		FirstName: field(values, "first_name"),
		LastName:  field(values, "last_name"),
		Email:     field(values, "email"),
		Phone:     field(values, "phone"),
		Address:   field(values, "address"),
		City:      field(values, "city"),
		Country:   field(values, "country"),
		Postcode:  field(values, "postcode"),
	}
}

func ParseSupplier(values url.Values) SupplierForm {
	return SupplierForm{
		Name:     field(values, "supplier_name"),
		Email:    field(values, "supplier_email"),
		Phone:    field(values, "supplier_phone"),
		Address:  field(values, "supplier_address"),
		City:     field(values, "supplier_city"),
		Country:  field(values, "supplier_country"),
		Postcode: field(values, "supplier_postcode"),
	}
}

func ParseDetail(values url.Values) DetailForm {
	return DetailForm{
		CompanyType: field(values, "company_type"),
		LegalForm:   field(values, "legal_form"),
		VATNo:       field(values, "vat_no"),
	}
}

// ParseExclusion defaults both grounds to None when left blank.
func ParseExclusion(values url.Values) ExclusionForm {
	form := ExclusionForm{
		Mandatory:     field(values, "mandatory"),
		Discretionary: field(values, "discretionary"),
		ExclusionDate: field(values, "exclusion_date"),
	}
	if form.Mandatory == "" {
		form.Mandatory = models.ExclusionNone
	}
	if form.Discretionary == "" {
		form.Discretionary = models.ExclusionNone
	}
	return form
}

// Date parses ExclusionDate. A blank value is a nil date, not an error.
func (f ExclusionForm) Date() (*time.Time, error) {
	if f.ExclusionDate == "" {
		return nil, nil
	}
	for _, layout := range dateLayouts {
		if parsed, err := time.Parse(layout, f.ExclusionDate); err == nil {
			return &parsed, nil
		}
	}
	return nil, fmt.Errorf("unrecognised date %q", f.ExclusionDate)
}

func field(values url.Values, name string) string {
	return strings.TrimSpace(values.Get(name))
}

// titleCase matches the capitalisation applied to names and addresses on save.
func titleCase(s string) string {
	return cases.Title(language.English).String(s)
}

// Customer validates values and returns the normalized record.
func (v *Validator) Customer(values url.Values) (*models.Customer, FieldErrors) {
	form := ParseCustomer(values)
	if errs := v.check(form); !errs.Empty() {
		return nil, errs
	}

	return &models.Customer{
		FirstName: titleCase(form.FirstName),
		LastName:  titleCase(form.LastName),
		Email:     form.Email,
		Phone:     form.Phone,
		Address:   titleCase(form.Address),
		City:      titleCase(form.City),
		Country:   titleCase(form.Country),
		Postcode:  strings.ToUpper(form.Postcode),
	}, nil
}

// Supplier validates values and returns the normalized record. The caller
// links it to a customer.
func (v *Validator) Supplier(values url.Values) (*models.Supplier, FieldErrors) {
	form := ParseSupplier(values)
	if errs := v.check(form); !errs.Empty() {
		return nil, errs
	}

	return &models.Supplier{
		Name:     titleCase(form.Name),
		Email:    form.Email,
		Phone:    form.Phone,
		Address:  titleCase(form.Address),
		City:     titleCase(form.City),
		Country:  titleCase(form.Country),
		Postcode: strings.ToUpper(form.Postcode),
	}, nil
}

func (v *Validator) Detail(values url.Values) (*models.Detail, FieldErrors) {
	form := ParseDetail(values)
	if errs := v.check(form); !errs.Empty() {
		return nil, errs
	}

	return &models.Detail{
		CompanyType: form.CompanyType,
		LegalForm:   form.LegalForm,
		VATNo:       strings.ToUpper(form.VATNo),
	}, nil
}

func (v *Validator) Exclusion(values url.Values) (*models.Exclusion, FieldErrors) {
	form := ParseExclusion(values)
	if errs := v.check(form); !errs.Empty() {
		return nil, errs
	}

	// already validated by exclusionRules
	date, _ := form.Date()

	return &models.Exclusion{
		Mandatory:     form.Mandatory,
		Discretionary: form.Discretionary,
		ExclusionDate: date,
	}, nil
}

// exclusionRules checks the date window and ties the date to the grounds:
// a date is required when any ground is selected and refused when none is.
func (v *Validator) exclusionRules(sl validator.StructLevel) {
	form := sl.Current().Interface().(ExclusionForm)

	date, err := form.Date()
	if err != nil {
		sl.ReportError(form.ExclusionDate, "exclusion_date", "ExclusionDate", "date", "")
		return
	}

	if date != nil {
		now := v.now()
		today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
		earliest := today.AddDate(0, 0, -exclusionWindowDays)

		if date.After(today) {
			sl.ReportError(form.ExclusionDate, "exclusion_date", "ExclusionDate", "date_max", today.Format("2006-01-02"))
		}
		if date.Before(earliest) {
			sl.ReportError(form.ExclusionDate, "exclusion_date", "ExclusionDate", "date_min", earliest.Format("2006-01-02"))
		}
	}

	hasGround := form.Mandatory != models.ExclusionNone || form.Discretionary != models.ExclusionNone
	switch {
	case hasGround && date == nil:
		sl.ReportError(form.ExclusionDate, "exclusion_date", "ExclusionDate", "exclusion_ground", "required")
	case !hasGround && date != nil:
		sl.ReportError(form.ExclusionDate, "exclusion_date", "ExclusionDate", "exclusion_ground", "forbidden")
	}
}
