package wsfe

import (
	"context"

	"github.com/afipar/go-afip-client/afip"
	"github.com/afipar/go-afip-client/afip/model"
	"github.com/afipar/go-afip-client/afip/soap"
)

// codeNoResults is AFIP's "Sin Resultados" business code, returned for
// empty catalog queries and unknown voucher lookups.
const codeNoResults = 602

// VoucherTypes lists the voucher type catalog (FEParamGetTiposCbte).
func (s *Service) VoucherTypes(ctx context.Context) ([]model.ParamEntry, error) {
	return s.params(ctx, "FEParamGetTiposCbte", "CbteTipo", fallbackVoucherTypes)
}

// DocumentTypes lists the receiver document type catalog.
func (s *Service) DocumentTypes(ctx context.Context) ([]model.ParamEntry, error) {
	return s.params(ctx, "FEParamGetTiposDoc", "DocTipo", fallbackDocumentTypes)
}

// ConceptTypes lists the concept catalog.
func (s *Service) ConceptTypes(ctx context.Context) ([]model.ParamEntry, error) {
	return s.params(ctx, "FEParamGetTiposConcepto", "ConceptoTipo", fallbackConceptTypes)
}

// VatTypes lists the VAT rate catalog.
func (s *Service) VatTypes(ctx context.Context) ([]model.ParamEntry, error) {
	return s.params(ctx, "FEParamGetTiposIva", "IvaTipo", fallbackVatTypes)
}

// CurrencyTypes lists the currency catalog.
func (s *Service) CurrencyTypes(ctx context.Context) ([]model.ParamEntry, error) {
	return s.params(ctx, "FEParamGetTiposMonedas", "Moneda", fallbackCurrencies)
}

// ReceiverVatConditions lists the receiver VAT condition catalog
// (FEParamGetCondicionIvaReceptor, RG 5616).
func (s *Service) ReceiverVatConditions(ctx context.Context) ([]model.ParamEntry, error) {
	return s.params(ctx, "FEParamGetCondicionIvaReceptor", "CondicionIvaReceptor", fallbackReceiverConditions)
}

// SalesPoints lists the taxpayer's habilitated sales points. Outside
// production a failure (including AFIP's 602 "no results" answer for
// taxpayers without registered points) degrades to a single default
// point so the rest of the flow can be exercised.
func (s *Service) SalesPoints(ctx context.Context) ([]model.SalesPoint, error) {
	result, err := s.call(ctx, "FEParamGetPtosVenta", true, nil)
	if err != nil {
		if s.env == afip.Production {
			return nil, err
		}
		logger.Warnf("FEParamGetPtosVenta failed, using default sales point: %v", err)
		return []model.SalesPoint{{Number: 1, EmissionType: "CAE"}}, nil
	}

	var out []model.SalesPoint
	for _, e := range soap.FindAll(result, "PtoVenta") {
		out = append(out, model.SalesPoint{
			Number:       intOf(e, "Nro"),
			EmissionType: textOf(e, "EmisionTipo"),
			Blocked:      textOf(e, "Bloqueado") == "S",
			DroppedAt:    textOf(e, "FchBaja"),
		})
	}
	return out, nil
}

// params fetches one reference table. In the testing environment a
// remote failure degrades to the fixed local fallback; in production it
// propagates unmodified.
func (s *Service) params(ctx context.Context, op, itemTag string, fallback []model.ParamEntry) ([]model.ParamEntry, error) {
	result, err := s.call(ctx, op, true, nil)
	if err != nil {
		if s.env == afip.Production {
			return nil, err
		}
		logger.Warnf("%s failed, serving local fallback table: %v", op, err)
		return fallback, nil
	}

	var out []model.ParamEntry
	for _, e := range soap.FindAll(result, itemTag) {
		out = append(out, model.ParamEntry{
			Code:        textOf(e, "Id"),
			Description: textOf(e, "Desc"),
			ValidFrom:   textOf(e, "FchDesde"),
			ValidUntil:  textOf(e, "FchHasta"),
		})
	}
	return out, nil
}
