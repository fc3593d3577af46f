package salesforce

import "github.com/sfbilling/sfbilling/pkg/types"

// relationship is a parent record embedded in a query result (eg- Account__r).
type relationship struct {
	Name          string `json:"Name"`
	InvoiceNumber string `json:"Invoice_Number__c"`
}

func (r *relationship) name() string {
	if r == nil {
		return ""
	}
	return r.Name
}

func (r *relationship) invoiceNumber() string {
	if r == nil {
		return ""
	}
	return r.InvoiceNumber
}

type invoiceSObject struct {
	ID            string        `json:"Id"`
	InvoiceNumber string        `json:"Invoice_Number__c"`
	Account       string        `json:"Account__c"`
	AccountRel    *relationship `json:"Account__r"`
	Amount        *float64      `json:"Amount__c"`
	Status        string        `json:"Status__c"`
	InvoiceDate   string        `json:"Invoice_Date__c"`
	DueDate       string        `json:"Due_Date__c"`
	CreatedDate   string        `json:"CreatedDate"`
}

func (o invoiceSObject) toAPI() types.Invoice {
	return types.Invoice{
		ID:            o.ID,
		InvoiceNumber: o.InvoiceNumber,
		AccountID:     o.Account,
		AccountName:   o.AccountRel.name(),
		Amount:        o.Amount,
		Status:        o.Status,
		InvoiceDate:   o.InvoiceDate,
		DueDate:       o.DueDate,
		CreatedDate:   o.CreatedDate,
	}
}

type accountSObject struct {
	ID                string   `json:"Id"`
	Name              string   `json:"Name"`
	BillingStreet     string   `json:"BillingStreet"`
	BillingCity       string   `json:"BillingCity"`
	BillingState      string   `json:"BillingState"`
	BillingPostalCode string   `json:"BillingPostalCode"`
	BillingCountry    string   `json:"BillingCountry"`
	Phone             string   `json:"Phone"`
	Industry          string   `json:"Industry"`
	AnnualRevenue     *float64 `json:"AnnualRevenue"`
	Type              string   `json:"Type"`
}

func (o accountSObject) toAPI() types.Account {
	return types.Account{
		ID:   o.ID,
		Name: o.Name,
		BillingAddress: types.BillingAddress{
			Street:     o.BillingStreet,
			City:       o.BillingCity,
			State:      o.BillingState,
			PostalCode: o.BillingPostalCode,
			Country:    o.BillingCountry,
		},
		Phone:         o.Phone,
		Industry:      o.Industry,
		AnnualRevenue: o.AnnualRevenue,
		Type:          o.Type,
	}
}

type usageSObject struct {
	ID          string        `json:"Id"`
	Name        string        `json:"Name"`
	Account     string        `json:"Account__c"`
	AccountRel  *relationship `json:"Account__r"`
	ServiceType string        `json:"Service_Type__c"`
	UsageAmount *float64      `json:"Usage_Amount__c"`
	UnitPrice   *float64      `json:"Unit_Price__c"`
	TotalCost   *float64      `json:"Total_Cost__c"`
	UsageDate   string        `json:"Usage_Date__c"`
	CreatedDate string        `json:"CreatedDate"`
}

func (o usageSObject) toAPI() types.UsageRecord {
	return types.UsageRecord{
		ID:          o.ID,
		Name:        o.Name,
		AccountID:   o.Account,
		AccountName: o.AccountRel.name(),
		ServiceType: o.ServiceType,
		UsageAmount: o.UsageAmount,
		UnitPrice:   o.UnitPrice,
		TotalCost:   o.TotalCost,
		UsageDate:   o.UsageDate,
		CreatedDate: o.CreatedDate,
	}
}

type paymentSObject struct {
	ID            string        `json:"Id"`
	PaymentNumber string        `json:"Payment_Number__c"`
	Invoice       string        `json:"Invoice__c"`
	InvoiceRel    *relationship `json:"Invoice__r"`
	Account       string        `json:"Account__c"`
	AccountRel    *relationship `json:"Account__r"`
	Amount        *float64      `json:"Amount__c"`
	PaymentDate   string        `json:"Payment_Date__c"`
	PaymentMethod string        `json:"Payment_Method__c"`
	Status        string        `json:"Status__c"`
	CreatedDate   string        `json:"CreatedDate"`
}

func (o paymentSObject) toAPI() types.Payment {
	return types.Payment{
		ID:            o.ID,
		PaymentNumber: o.PaymentNumber,
		InvoiceID:     o.Invoice,
		InvoiceNumber: o.InvoiceRel.invoiceNumber(),
		AccountID:     o.Account,
		AccountName:   o.AccountRel.name(),
		Amount:        o.Amount,
		PaymentDate:   o.PaymentDate,
		PaymentMethod: o.PaymentMethod,
		Status:        o.Status,
		CreatedDate:   o.CreatedDate,
	}
}
