package wsfe

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/afipar/go-afip-client/afip"
)

func TestVoucherTypes(t *testing.T) {
	svc, fake, _ := newTestService(t, afip.Testing)
	fake.responses["FEParamGetTiposCbte"] = resultEnvelope("FEParamGetTiposCbte",
		`<ResultGet>`+
			`<CbteTipo><Id>1</Id><Desc>Factura A</Desc><FchDesde>20100917</FchDesde><FchHasta>NULL</FchHasta></CbteTipo>`+
			`<CbteTipo><Id>6</Id><Desc>Factura B</Desc><FchDesde>20100917</FchDesde><FchHasta>NULL</FchHasta></CbteTipo>`+
			`</ResultGet>`)

	types, err := svc.VoucherTypes(context.Background())
	require.NoError(t, err)
	require.Len(t, types, 2)
	assert.Equal(t, "1", types[0].Code)
	assert.Equal(t, "Factura A", types[0].Description)
	assert.Equal(t, "6", types[1].Code)
}

func TestCurrencyTypes_AlphabeticCodes(t *testing.T) {
	svc, fake, _ := newTestService(t, afip.Testing)
	fake.responses["FEParamGetTiposMonedas"] = resultEnvelope("FEParamGetTiposMonedas",
		`<ResultGet>`+
			`<Moneda><Id>PES</Id><Desc>Pesos Argentinos</Desc><FchDesde>20090403</FchDesde><FchHasta>NULL</FchHasta></Moneda>`+
			`<Moneda><Id>DOL</Id><Desc>Dólar Estadounidense</Desc><FchDesde>20090403</FchDesde><FchHasta>NULL</FchHasta></Moneda>`+
			`</ResultGet>`)

	currencies, err := svc.CurrencyTypes(context.Background())
	require.NoError(t, err)
	require.Len(t, currencies, 2)
	assert.Equal(t, "PES", currencies[0].Code)
	assert.Equal(t, "DOL", currencies[1].Code)
}

func TestParams_FallbackInTesting(t *testing.T) {
	svc, fake, _ := newTestService(t, afip.Testing)
	fake.responses["FEParamGetTiposIva"] = "service unavailable"
	fake.statuses["FEParamGetTiposIva"] = http.StatusInternalServerError

	types, err := svc.VatTypes(context.Background())
	require.NoError(t, err, "testing environment degrades to the local table")
	assert.Equal(t, fallbackVatTypes, types)
}

func TestParams_PropagatesInProduction(t *testing.T) {
	svc, fake, _ := newTestService(t, afip.Production)
	fake.responses["FEParamGetTiposIva"] = "service unavailable"
	fake.statuses["FEParamGetTiposIva"] = http.StatusInternalServerError

	_, err := svc.VatTypes(context.Background())
	assert.Error(t, err)
}

func TestSalesPoints(t *testing.T) {
	svc, fake, _ := newTestService(t, afip.Testing)
	fake.responses["FEParamGetPtosVenta"] = resultEnvelope("FEParamGetPtosVenta",
		`<ResultGet>`+
			`<PtoVenta><Nro>1</Nro><EmisionTipo>CAE</EmisionTipo><Bloqueado>N</Bloqueado><FchBaja>NULL</FchBaja></PtoVenta>`+
			`<PtoVenta><Nro>2</Nro><EmisionTipo>CAEA</EmisionTipo><Bloqueado>S</Bloqueado><FchBaja>20240101</FchBaja></PtoVenta>`+
			`</ResultGet>`)

	points, err := svc.SalesPoints(context.Background())
	require.NoError(t, err)
	require.Len(t, points, 2)
	assert.Equal(t, 1, points[0].Number)
	assert.Equal(t, "CAE", points[0].EmissionType)
	assert.False(t, points[0].Blocked)
	assert.True(t, points[1].Blocked)
	assert.Equal(t, "20240101", points[1].DroppedAt)
}

func TestSalesPoints_DefaultWhenUnregistered(t *testing.T) {
	svc, fake, _ := newTestService(t, afip.Testing)
	fake.responses["FEParamGetPtosVenta"] = resultEnvelope("FEParamGetPtosVenta",
		`<Errors><Err><Code>602</Code><Msg>Sin Resultados</Msg></Err></Errors>`)

	points, err := svc.SalesPoints(context.Background())
	require.NoError(t, err)
	require.Len(t, points, 1)
	assert.Equal(t, 1, points[0].Number)
	assert.Equal(t, "CAE", points[0].EmissionType)
	assert.False(t, points[0].Blocked)
}

func TestSalesPoints_PropagatesInProduction(t *testing.T) {
	svc, fake, _ := newTestService(t, afip.Production)
	fake.responses["FEParamGetPtosVenta"] = resultEnvelope("FEParamGetPtosVenta",
		`<Errors><Err><Code>602</Code><Msg>Sin Resultados</Msg></Err></Errors>`)

	_, err := svc.SalesPoints(context.Background())
	require.Error(t, err)

	var serr *afip.ServiceError
	require.ErrorAs(t, err, &serr)
	assert.True(t, serr.HasCode(602))
}
