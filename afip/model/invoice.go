package model

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// VatDetail is one AlicIva entry.
type VatDetail struct {
	ID         int
	BaseAmount decimal.Decimal
	Amount     decimal.Decimal
}

// TributeDetail is one Tributo entry.
type TributeDetail struct {
	ID          int
	Description string
	BaseAmount  decimal.Decimal
	Rate        decimal.Decimal
	Amount      decimal.Decimal
}

// Observation is a non-fatal advisory attached by AFIP to an approved or
// rejected voucher.
type Observation struct {
	Code    int
	Message string
}

// InvoiceRequest is a normalized request for one voucher. Treated as
// immutable once handed to the authorization service.
type InvoiceRequest struct {
	SalesPoint  int
	VoucherType int
	Concept     int // 1 productos, 2 servicios, 3 ambos
	DocType     int
	DocNumber   string

	TotalAmount      decimal.Decimal
	NetAmount        decimal.Decimal
	VatAmount        decimal.Decimal
	NonTaxableAmount decimal.Decimal
	ExemptAmount     decimal.Decimal
	TributesAmount   decimal.Decimal

	Currency     string // MonId, e.g. "PES"
	CurrencyRate decimal.Decimal

	// AAAAMMDD; required by AFIP when Concept is 2 or 3, defaulted to the
	// voucher date when empty.
	ServiceStartDate string
	ServiceEndDate   string
	PaymentDueDate   string

	VatDetails     []VatDetail
	TributeDetails []TributeDetail

	ReceiverVatConditionID int
	// SameCurrencySettlement maps to CanMisMonExt ("S"/"N").
	SameCurrencySettlement bool
}

// InvoiceAuthorization is the outcome of a successful FECAESolicitar
// exchange.
type InvoiceAuthorization struct {
	CAE           string
	CAEExpiration string // AAAAMMDD
	VoucherNumber int64
	VoucherDate   string // AAAAMMDD
	Status        string // "A" approved, "R" rejected
	Observations  []Observation
}

func (a *InvoiceAuthorization) Approved() bool {
	return a != nil && a.Status == "A" && a.CAE != ""
}

// VoucherRecord is AFIP's stored view of an already authorized voucher
// as returned by FECompConsultar.
type VoucherRecord struct {
	SalesPoint    int
	VoucherType   int
	VoucherNumber int64
	VoucherDate   string
	DocType       int
	DocNumber     string
	TotalAmount   decimal.Decimal
	Currency      string
	CAE           string
	CAEExpiration string
	Result        string
}

var dateFormats = []string{"2006-01-02", "02/01/2006", "02-01-2006"}

// NormalizeDate converts a date in any accepted input format to
// AFIP's AAAAMMDD. Empty input stays empty.
func NormalizeDate(s string) (string, error) {
	if s == "" {
		return "", nil
	}
	if len(s) == 8 && allDigits(s) {
		return s, nil
	}
	for _, layout := range dateFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("20060102"), nil
		}
	}
	return "", fmt.Errorf("unrecognized date format: %q", s)
}

func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
