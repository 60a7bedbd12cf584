// Package qr builds the verification payload AFIP mandates on printed
// vouchers (https://www.afip.gob.ar/fe/qr/especificaciones.asp): a
// fixed-schema JSON object, base64 encoded, embedded in a fixed URL.
package qr

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/afipar/go-afip-client/afip/model"
)

const baseURL = "https://www.afip.gob.ar/fe/qr/"

// Payload is the QR content contract, version 1.
type Payload struct {
	Ver        int     `json:"ver"`
	Fecha      string  `json:"fecha"` // YYYY-MM-DD
	Cuit       int64   `json:"cuit"`
	PtoVta     int     `json:"ptoVta"`
	TipoCmp    int     `json:"tipoCmp"`
	NroCmp     int64   `json:"nroCmp"`
	Importe    float64 `json:"importe"`
	Moneda     string  `json:"moneda"`
	Ctz        float64 `json:"ctz"`
	TipoDocRec int     `json:"tipoDocRec"`
	NroDocRec  int64   `json:"nroDocRec"`
	TipoCodAut string  `json:"tipoCodAut"`
	CodAut     int64   `json:"codAut"`
}

// FromAuthorization assembles the payload for an approved voucher.
func FromAuthorization(cuit string, req *model.InvoiceRequest, auth *model.InvoiceAuthorization) (Payload, error) {
	if !auth.Approved() {
		return Payload{}, fmt.Errorf("cannot build QR payload for a non-approved voucher")
	}

	issuerCuit, err := strconv.ParseInt(cuit, 10, 64)
	if err != nil {
		return Payload{}, fmt.Errorf("invalid issuer CUIT %q: %w", cuit, err)
	}
	docNumber, err := strconv.ParseInt(req.DocNumber, 10, 64)
	if err != nil {
		return Payload{}, fmt.Errorf("invalid receiver document %q: %w", req.DocNumber, err)
	}
	cae, err := strconv.ParseInt(auth.CAE, 10, 64)
	if err != nil {
		return Payload{}, fmt.Errorf("invalid CAE %q: %w", auth.CAE, err)
	}
	date, err := isoDate(auth.VoucherDate)
	if err != nil {
		return Payload{}, err
	}

	total, _ := req.TotalAmount.Round(2).Float64()
	rate, _ := req.CurrencyRate.Float64()

	return Payload{
		Ver:        1,
		Fecha:      date,
		Cuit:       issuerCuit,
		PtoVta:     req.SalesPoint,
		TipoCmp:    req.VoucherType,
		NroCmp:     auth.VoucherNumber,
		Importe:    total,
		Moneda:     req.Currency,
		Ctz:        rate,
		TipoDocRec: req.DocType,
		NroDocRec:  docNumber,
		TipoCodAut: "E", // CAE
		CodAut:     cae,
	}, nil
}

// URL returns the verification link carrying the base64 payload.
func URL(p Payload) (string, error) {
	b, err := json.Marshal(p)
	if err != nil {
		return "", err
	}
	return baseURL + "?p=" + base64.StdEncoding.EncodeToString(b), nil
}

// Round trips AAAAMMDD into the YYYY-MM-DD the QR schema wants.
func isoDate(s string) (string, error) {
	t, err := time.Parse("20060102", s)
	if err != nil {
		return "", fmt.Errorf("invalid voucher date %q: %w", s, err)
	}
	return t.Format("2006-01-02"), nil
}
