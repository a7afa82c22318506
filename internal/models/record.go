package models

import "time"

// Customer owns suppliers.
type Customer struct {
	ID        string    `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Address   string    `json:"address"`
	City      string    `json:"city"`
	Country   string    `json:"country"`
	Postcode  string    `json:"postcode"`
	CreatedAt time.Time `json:"created_at"`
}

// DisplayName renders "Last, First".
func (c *Customer) DisplayName() string {
	return c.LastName + ", " + c.FirstName
}

// Supplier belongs to one customer and owns one detail and any exclusions.
type Supplier struct {
	ID         string    `json:"id"`
	CustomerID string    `json:"customer_id"`
	Name       string    `json:"supplier_name"`
	Email      string    `json:"supplier_email"`
	Phone      string    `json:"supplier_phone"`
	Address    string    `json:"supplier_address"`
	City       string    `json:"supplier_city"`
	Country    string    `json:"supplier_country"`
	Postcode   string    `json:"supplier_postcode"`
	CreatedAt  time.Time `json:"created_at"`
}

// Company type choices for Detail.CompanyType
const (
	CompanyTypeAgricultural   = "Agricultural"
	CompanyTypeAutomotive     = "Automotive"
	CompanyTypeClothing       = "Clothing & Accessories"
	CompanyTypeConstruction   = "Construction Materials"
	CompanyTypeEducation      = "Education & Training"
	CompanyTypeFinancial      = "Financial Services"
	CompanyTypeHospitality    = "Hospitality, Food & Beverage"
	CompanyTypeITServices     = "IT Services"
	CompanyTypeMedical        = "Medical Equipment"
	CompanyTypeOfficeSupplies = "Office Supplies"
)

// CompanyTypes lists every accepted company type in display order.
var CompanyTypes = []string{
	CompanyTypeAgricultural,
	CompanyTypeAutomotive,
	CompanyTypeClothing,
	CompanyTypeConstruction,
	CompanyTypeEducation,
	CompanyTypeFinancial,
	CompanyTypeHospitality,
	CompanyTypeITServices,
	CompanyTypeMedical,
	CompanyTypeOfficeSupplies,
}

// LegalForms lists every accepted legal form.
var LegalForms = []string{"Sole Trader", "Limited Company", "Charity"}

// Detail holds the compliance details of a supplier (one per supplier).
type Detail struct {
	ID          string    `json:"id"`
	SupplierID  string    `json:"supplier_id"`
	CompanyType string    `json:"company_type"`
	LegalForm   string    `json:"legal_form"`
	VATNo       string    `json:"vat_no"`
	CreatedAt   time.Time `json:"created_at"`
}

// ExclusionNone marks the absence of an exclusion ground.
const ExclusionNone = "None"

// MandatoryExclusions lists the mandatory exclusion grounds.
var MandatoryExclusions = []string{"Theft", "Fraud", "Bribery", ExclusionNone}

// DiscretionaryExclusions lists the discretionary exclusion grounds.
var DiscretionaryExclusions = []string{"Bankruptcy", "Improper Procurement", "Breach of Contract", ExclusionNone}

// Exclusion records procurement exclusion grounds for a supplier.
type Exclusion struct {
	ID            string     `json:"id"`
	SupplierID    string     `json:"supplier_id"`
	Mandatory     string     `json:"mandatory"`
	Discretionary string     `json:"discretionary"`
	ExclusionDate *time.Time `json:"exclusion_date"`
	CreatedAt     time.Time  `json:"created_at"`
}

// CustomerRecord is a customer with its suppliers. Details and Exclusions are
// positionally aligned with Suppliers; a supplier without one has nil there.
type CustomerRecord struct {
	Customer   *Customer    `json:"customer"`
	Suppliers  []*Supplier  `json:"suppliers"`
	Details    []*Detail    `json:"details"`
	Exclusions []*Exclusion `json:"exclusions"`
}
