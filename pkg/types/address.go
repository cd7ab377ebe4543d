package types

import (
	"strings"
)

// Address is a postal address. It is stored as jsonb on orders and vendors and
// as embedded columns in the user address book.
type Address struct {
	Line1      string `json:"line1" gorm:"column:line1" validate:"required,max=200"`
	Line2      string `json:"line2,omitempty" gorm:"column:line2" validate:"max=200"`
	Landmark   string `json:"landmark,omitempty" gorm:"column:landmark" validate:"max=120"`
	City       string `json:"city" gorm:"column:city" validate:"required,max=100"`
	State      string `json:"state" gorm:"column:state" validate:"required,max=100"`
	PostalCode string `json:"postalCode" gorm:"column:postal_code" validate:"required,max=20"`
	Country    string `json:"country" gorm:"column:country" validate:"max=60"`
}

const defaultCountry = "India"

// Normalize trims every field and applies the default country.
func (a Address) Normalize() Address {
	out := Address{
		Line1:      strings.TrimSpace(a.Line1),
		Line2:      strings.TrimSpace(a.Line2),
		Landmark:   strings.TrimSpace(a.Landmark),
		City:       strings.TrimSpace(a.City),
		State:      strings.TrimSpace(a.State),
		PostalCode: strings.TrimSpace(a.PostalCode),
		Country:    strings.TrimSpace(a.Country),
	}
	if out.Country == "" {
		out.Country = defaultCountry
	}
	return out
}

// IsComplete reports whether the fields needed for delivery are present.
func (a Address) IsComplete() bool {
	n := a.Normalize()
	return n.Line1 != "" && n.City != "" && n.State != "" && n.PostalCode != ""
}
