package model

import (
	"github.com/sfbilling/sfbilling/pkg/types"
	"gorm.io/datatypes"
)

// Address is a postal address stored as a JSON document on its owner row.
type Address struct {
	Street     string `json:"street,omitempty" yaml:"street"`
	City       string `json:"city,omitempty" yaml:"city"`
	State      string `json:"state,omitempty" yaml:"state"`
	PostalCode string `json:"postal_code,omitempty" yaml:"postal_code"`
	Country    string `json:"country,omitempty" yaml:"country"`
}

// Account represents a customer account in the SQL record store.
type Account struct {
	Record

	Name string `json:"name" gorm:"not null;index"`

	BillingAddress datatypes.JSONType[Address] `json:"billing_address"`

	Phone         string   `json:"phone"`
	Industry      string   `json:"industry"`
	AnnualRevenue *float64 `json:"annual_revenue"`
	Type          string   `json:"type" gorm:"type:varchar(40)"`
}

// ToAPI converts the account row to its API representation.
func (a *Account) ToAPI() types.Account {
	addr := a.BillingAddress.Data()
	return types.Account{
		ID:   a.ID,
		Name: a.Name,
		BillingAddress: types.BillingAddress{
			Street:     addr.Street,
			City:       addr.City,
			State:      addr.State,
			PostalCode: addr.PostalCode,
			Country:    addr.Country,
		},
		Phone:         a.Phone,
		Industry:      a.Industry,
		AnnualRevenue: a.AnnualRevenue,
		Type:          a.Type,
	}
}
