package wsfe

import "github.com/afipar/go-afip-client/afip/model"

// Local reference tables used when homologación is unreachable. They
// mirror the stable core of AFIP's catalogs and are never served in
// production.

func entry(code, desc string) model.ParamEntry {
	return model.ParamEntry{Code: code, Description: desc, ValidFrom: "20200101", ValidUntil: "NULL"}
}

var fallbackVoucherTypes = []model.ParamEntry{
	entry("1", "Factura A"),
	entry("2", "Nota de Débito A"),
	entry("3", "Nota de Crédito A"),
	entry("6", "Factura B"),
	entry("7", "Nota de Débito B"),
	entry("8", "Nota de Crédito B"),
	entry("11", "Factura C"),
	entry("12", "Nota de Débito C"),
	entry("13", "Nota de Crédito C"),
}

var fallbackDocumentTypes = []model.ParamEntry{
	entry("80", "CUIT"),
	entry("86", "CUIL"),
	entry("96", "DNI"),
	entry("99", "Consumidor Final"),
}

var fallbackConceptTypes = []model.ParamEntry{
	entry("1", "Productos"),
	entry("2", "Servicios"),
	entry("3", "Productos y Servicios"),
}

var fallbackVatTypes = []model.ParamEntry{
	entry("3", "0%"),
	entry("4", "10.5%"),
	entry("5", "21%"),
	entry("6", "27%"),
}

var fallbackCurrencies = []model.ParamEntry{
	entry("PES", "Pesos Argentinos"),
	entry("DOL", "Dólar Estadounidense"),
}

var fallbackReceiverConditions = []model.ParamEntry{
	entry("1", "IVA Responsable Inscripto"),
	entry("4", "IVA Sujeto Exento"),
	entry("5", "Consumidor Final"),
	entry("6", "Responsable Monotributo"),
}
