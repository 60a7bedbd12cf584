package afip

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/afipar/go-afip-client/afip/model"
	"github.com/afipar/go-afip-client/afip/sign"
	"github.com/afipar/go-afip-client/afip/soap"
	"github.com/afipar/go-afip-client/afip/ticketstore"
	"github.com/afipar/go-afip-client/afip/wsaa"
	"github.com/afipar/go-afip-client/afip/wsfe"
)

// Client bundles the WSAA and WSFE services behind one constructor.
// Both remain reachable for callers that need the full surface.
type Client struct {
	WSAA *wsaa.Service
	WSFE *wsfe.Service

	cfg Config
}

// NewClient wires the default stack: file-backed ticket cache under
// cfg.CacheDir, CMS signer over the configured certificate pair, and
// one SOAP client per endpoint.
func NewClient(cfg Config) (*Client, error) {
	signer, err := sign.New(cfg.CertPath, cfg.KeyPath, []byte(cfg.KeyPassword))
	if err != nil {
		return nil, err
	}

	env := cfg.Environment()
	store := ticketstore.NewFile(cfg.CacheDir)

	auth := wsaa.New(
		soap.New(env.WSAAURL(), cfg.ConnectTimeout, cfg.ReadTimeout),
		signer, store, cfg.Cuit, env, cfg.TokenTTL)

	invoicing := wsfe.New(
		soap.New(env.WSFEURL(), cfg.ConnectTimeout, cfg.ReadTimeout),
		auth, cfg.Cuit, env, decimal.NewFromFloat(cfg.AmountTolerance))

	return &Client{WSAA: auth, WSFE: invoicing, cfg: cfg}, nil
}

func (c *Client) Authenticate(ctx context.Context, service string, forceRefresh bool) (*model.AuthTicket, error) {
	return c.WSAA.Authenticate(ctx, service, forceRefresh)
}

func (c *Client) LastVoucher(ctx context.Context, salesPoint, voucherType int) (int64, error) {
	return c.WSFE.LastVoucher(ctx, salesPoint, voucherType)
}

func (c *Client) Authorize(ctx context.Context, req *model.InvoiceRequest) (*model.InvoiceAuthorization, error) {
	return c.WSFE.Authorize(ctx, req)
}

func (c *Client) CheckInvoice(ctx context.Context, salesPoint, voucherType int, voucherNumber int64) (*model.VoucherRecord, error) {
	return c.WSFE.CheckInvoice(ctx, salesPoint, voucherType, voucherNumber)
}

// VAT rate to AFIP VAT type id.
func vatTypeID(rate decimal.Decimal) int {
	switch {
	case rate.Equal(decimal.NewFromFloat(10.5)):
		return 4
	case rate.Equal(decimal.NewFromInt(27)):
		return 6
	default:
		return 5 // 21%
	}
}

// InvoiceA authorizes a Factura A for a CUIT-identified receiver,
// computing the VAT split from the net amount and rate.
func (c *Client) InvoiceA(ctx context.Context, receiverCuit string, netAmount, vatRate decimal.Decimal) (*model.InvoiceAuthorization, error) {
	vat := netAmount.Mul(vatRate).Div(decimal.NewFromInt(100)).Round(2)
	total := netAmount.Add(vat)

	return c.Authorize(ctx, &model.InvoiceRequest{
		SalesPoint:   c.cfg.DefaultSalesPoint,
		VoucherType:  1,
		Concept:      1,
		DocType:      80, // CUIT
		DocNumber:    receiverCuit,
		TotalAmount:  total,
		NetAmount:    netAmount,
		VatAmount:    vat,
		Currency:     "PES",
		CurrencyRate: decimal.NewFromInt(1),
		VatDetails: []model.VatDetail{
			{ID: vatTypeID(vatRate), BaseAmount: netAmount, Amount: vat},
		},
	})
}

// InvoiceB authorizes a Factura B from a VAT-inclusive total.
func (c *Client) InvoiceB(ctx context.Context, docType int, docNumber string, totalAmount, vatRate decimal.Decimal) (*model.InvoiceAuthorization, error) {
	divisor := decimal.NewFromInt(1).Add(vatRate.Div(decimal.NewFromInt(100)))
	net := totalAmount.Div(divisor).Round(2)
	vat := totalAmount.Sub(net)

	return c.Authorize(ctx, &model.InvoiceRequest{
		SalesPoint:   c.cfg.DefaultSalesPoint,
		VoucherType:  6,
		Concept:      1,
		DocType:      docType,
		DocNumber:    docNumber,
		TotalAmount:  totalAmount,
		NetAmount:    net,
		VatAmount:    vat,
		Currency:     "PES",
		CurrencyRate: decimal.NewFromInt(1),
		VatDetails: []model.VatDetail{
			{ID: vatTypeID(vatRate), BaseAmount: net, Amount: vat},
		},
	})
}
