package wsfe

import (
	"strconv"

	"github.com/beevik/etree"

	"github.com/afipar/go-afip-client/afip"
	"github.com/afipar/go-afip-client/afip/model"
)

// buildDetail constructs the FECAEDetRequest element for a single
// voucher with the given assigned number. Amounts are serialized with
// exactly two decimals; optional arrays and fields are attached only
// when present.
func buildDetail(req *model.InvoiceRequest, number int64, today string) (*etree.Element, error) {
	det := etree.NewElement("FECAEDetRequest")

	det.CreateElement("Concepto").SetText(strconv.Itoa(req.Concept))
	det.CreateElement("DocTipo").SetText(strconv.Itoa(req.DocType))
	det.CreateElement("DocNro").SetText(req.DocNumber)
	det.CreateElement("CbteDesde").SetText(strconv.FormatInt(number, 10))
	det.CreateElement("CbteHasta").SetText(strconv.FormatInt(number, 10))
	det.CreateElement("CbteFch").SetText(today)

	det.CreateElement("ImpTotal").SetText(req.TotalAmount.StringFixed(2))
	det.CreateElement("ImpTotConc").SetText(req.NonTaxableAmount.StringFixed(2))
	det.CreateElement("ImpNeto").SetText(req.NetAmount.StringFixed(2))
	det.CreateElement("ImpOpEx").SetText(req.ExemptAmount.StringFixed(2))
	det.CreateElement("ImpIVA").SetText(req.VatAmount.StringFixed(2))
	det.CreateElement("ImpTrib").SetText(req.TributesAmount.StringFixed(2))

	// service period applies to concepts 2 (servicios) and 3 (ambos);
	// AFIP requires the three dates then, defaulted to the voucher date
	if req.Concept == 2 || req.Concept == 3 {
		start, err := dateOrToday(req.ServiceStartDate, today)
		if err != nil {
			return nil, err
		}
		end, err := dateOrToday(req.ServiceEndDate, today)
		if err != nil {
			return nil, err
		}
		due, err := dateOrToday(req.PaymentDueDate, today)
		if err != nil {
			return nil, err
		}
		det.CreateElement("FchServDesde").SetText(start)
		det.CreateElement("FchServHasta").SetText(end)
		det.CreateElement("FchVtoPago").SetText(due)
	}

	det.CreateElement("MonId").SetText(req.Currency)
	det.CreateElement("MonCotiz").SetText(req.CurrencyRate.String())

	// RG 5616 (ARCA v4.x) fields
	if req.SameCurrencySettlement {
		det.CreateElement("CanMisMonExt").SetText("S")
	} else {
		det.CreateElement("CanMisMonExt").SetText("N")
	}
	if req.ReceiverVatConditionID != 0 {
		det.CreateElement("CondicionIVAReceptorId").SetText(strconv.Itoa(req.ReceiverVatConditionID))
	}

	if len(req.VatDetails) > 0 {
		iva := det.CreateElement("Iva")
		for _, v := range req.VatDetails {
			alic := iva.CreateElement("AlicIva")
			alic.CreateElement("Id").SetText(strconv.Itoa(v.ID))
			alic.CreateElement("BaseImp").SetText(v.BaseAmount.StringFixed(2))
			alic.CreateElement("Importe").SetText(v.Amount.StringFixed(2))
		}
	}

	if len(req.TributeDetails) > 0 {
		tributos := det.CreateElement("Tributos")
		for _, t := range req.TributeDetails {
			trib := tributos.CreateElement("Tributo")
			trib.CreateElement("Id").SetText(strconv.Itoa(t.ID))
			trib.CreateElement("Desc").SetText(t.Description)
			trib.CreateElement("BaseImp").SetText(t.BaseAmount.StringFixed(2))
			trib.CreateElement("Alic").SetText(t.Rate.StringFixed(2))
			trib.CreateElement("Importe").SetText(t.Amount.StringFixed(2))
		}
	}

	return det, nil
}

func dateOrToday(s, today string) (string, error) {
	if s == "" {
		return today, nil
	}
	normalized, err := model.NormalizeDate(s)
	if err != nil {
		return "", &afip.ValidationError{Field: "date", Message: err.Error()}
	}
	return normalized, nil
}
