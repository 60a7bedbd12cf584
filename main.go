package main

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/afipar/go-afip-client/afip"
	"github.com/afipar/go-afip-client/afip/model"
	"github.com/afipar/go-afip-client/afip/qr"
	"github.com/afipar/go-afip-client/afip/wsfe"
)

func main() {

	logrus.SetLevel(logrus.DebugLevel)

	cfg, err := afip.ConfigFromEnv()
	if err != nil {
		panic(err)
	}

	client, err := afip.NewClient(cfg)
	if err != nil {
		panic(err)
	}

	ctx := context.Background()

	status, err := client.WSFE.ServerStatus(ctx)
	if err != nil {
		panic(err)
	}
	fmt.Printf("WSFE status: app=%s db=%s auth=%s\n", status.App, status.Db, status.Auth)

	ticket, err := client.Authenticate(ctx, wsfe.SubService, false)
	if err != nil {
		panic(err)
	}
	fmt.Println("ticket valid until", ticket.Expiration)

	last, err := client.LastVoucher(ctx, cfg.DefaultSalesPoint, 6)
	if err != nil {
		panic(err)
	}
	fmt.Println("last Factura B:", last)

	// Factura B to consumidor final, IVA included in the total
	req := &model.InvoiceRequest{
		SalesPoint:   cfg.DefaultSalesPoint,
		VoucherType:  6,
		Concept:      1,
		DocType:      99,
		DocNumber:    "0",
		TotalAmount:  decimal.NewFromFloat(121.00),
		NetAmount:    decimal.NewFromFloat(100.00),
		VatAmount:    decimal.NewFromFloat(21.00),
		Currency:     "PES",
		CurrencyRate: decimal.NewFromInt(1),
		VatDetails: []model.VatDetail{
			{ID: 5, BaseAmount: decimal.NewFromFloat(100.00), Amount: decimal.NewFromFloat(21.00)},
		},
	}

	auth, err := client.Authorize(ctx, req)
	if err != nil {
		panic(err)
	}
	fmt.Printf("CAE %s (expires %s) for voucher %d\n", auth.CAE, auth.CAEExpiration, auth.VoucherNumber)

	payload, err := qr.FromAuthorization(cfg.Cuit, req, auth)
	if err != nil {
		panic(err)
	}
	link, err := qr.URL(payload)
	if err != nil {
		panic(err)
	}
	fmt.Println("verification link:", link)
}
