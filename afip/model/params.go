package model

// ParamEntry is one row of an AFIP reference table (voucher types,
// document types, VAT rates and so on). Codes stay strings because some
// tables use non-numeric ids (currencies: "PES", "DOL").
type ParamEntry struct {
	Code        string
	Description string
	ValidFrom   string // AAAAMMDD
	ValidUntil  string // AAAAMMDD or "NULL"
}

// SalesPoint is one habilitated point of issuance.
type SalesPoint struct {
	Number       int
	EmissionType string // "CAE" or "CAEA"
	Blocked      bool
	DroppedAt    string
}

// ServerStatus is the FEDummy health triple.
type ServerStatus struct {
	App  string
	Db   string
	Auth string
}

func (s ServerStatus) OK() bool {
	return s.App == "OK" && s.Db == "OK" && s.Auth == "OK"
}
