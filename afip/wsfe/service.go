// Package wsfe implements AFIP's electronic invoicing service (WSFEv1):
// voucher sequence queries, CAE authorization and the reference table
// catalog.
package wsfe

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/beevik/etree"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"github.com/afipar/go-afip-client/afip"
	"github.com/afipar/go-afip-client/afip/model"
	"github.com/afipar/go-afip-client/afip/mutex"
	"github.com/afipar/go-afip-client/afip/soap"
)

var logger = log.WithField("component", "afip.wsfe")

const (
	serviceNS = "http://ar.gov.afip.dif.FEV1/"

	// SubService is the WSAA sub-service name tickets are issued for.
	SubService = "wsfe"
)

// Authenticator supplies valid access tickets. Satisfied by
// wsaa.Service.
type Authenticator interface {
	Authenticate(ctx context.Context, service string, forceRefresh bool) (*model.AuthTicket, error)
}

type voucherKey struct {
	salesPoint  int
	voucherType int
}

// Service talks to WSFEv1. Authorize calls are serialized per
// (sales point, voucher type): the next voucher number comes from a
// remote read that is not atomic with the authorization write, and two
// racing calls would burn a round trip on a guaranteed rejection.
type Service struct {
	client    *soap.Client
	auth      Authenticator
	cuit      string
	env       afip.Environment
	tolerance decimal.Decimal
	clock     func() time.Time
	locks     mutex.Keyed[voucherKey]
}

func New(client *soap.Client, auth Authenticator, cuit string, env afip.Environment, tolerance decimal.Decimal) *Service {
	return &Service{
		client:    client,
		auth:      auth,
		cuit:      cuit,
		env:       env,
		tolerance: tolerance,
		clock:     time.Now,
	}
}

// LastVoucher returns the number of the last authorized voucher for the
// given sales point and voucher type. 0 means none issued yet.
func (s *Service) LastVoucher(ctx context.Context, salesPoint, voucherType int) (int64, error) {
	result, err := s.call(ctx, "FECompUltimoAutorizado", true, func(p *etree.Element) {
		p.CreateElement("PtoVta").SetText(strconv.Itoa(salesPoint))
		p.CreateElement("CbteTipo").SetText(strconv.Itoa(voucherType))
	})
	if err != nil {
		return 0, err
	}

	n, err := strconv.ParseInt(textOf(result, "CbteNro"), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("unreadable CbteNro in response: %w", err)
	}
	logger.WithField("ptoVta", salesPoint).WithField("cbteTipo", voucherType).
		Debugf("last authorized voucher: %d", n)
	return n, nil
}

// Authorize requests a CAE for the next voucher in the request's
// sequence. Local invariants are checked before any network traffic.
func (s *Service) Authorize(ctx context.Context, req *model.InvoiceRequest) (*model.InvoiceAuthorization, error) {
	if err := s.validate(req); err != nil {
		return nil, err
	}

	key := voucherKey{req.SalesPoint, req.VoucherType}
	s.locks.Lock(key)
	defer s.locks.Unlock(key)

	last, err := s.LastVoucher(ctx, req.SalesPoint, req.VoucherType)
	if err != nil {
		return nil, err
	}
	next := last + 1
	today := s.clock().Format("20060102")

	detail, err := buildDetail(req, next, today)
	if err != nil {
		return nil, err
	}

	logger.WithField("ptoVta", req.SalesPoint).WithField("cbteTipo", req.VoucherType).
		Infof("requesting CAE for voucher %d", next)

	result, err := s.call(ctx, "FECAESolicitar", true, func(p *etree.Element) {
		caeReq := p.CreateElement("FeCAEReq")

		cab := caeReq.CreateElement("FeCabReq")
		cab.CreateElement("CantReg").SetText("1")
		cab.CreateElement("PtoVta").SetText(strconv.Itoa(req.SalesPoint))
		cab.CreateElement("CbteTipo").SetText(strconv.Itoa(req.VoucherType))

		caeReq.CreateElement("FeDetReq").AddChild(detail)
	})
	if err != nil {
		return nil, err
	}

	return parseAuthorization(result, today)
}

// CheckInvoice looks up an already authorized voucher. Returns
// afip.ErrNotFound when AFIP has no record for it.
func (s *Service) CheckInvoice(ctx context.Context, salesPoint, voucherType int, voucherNumber int64) (*model.VoucherRecord, error) {
	result, err := s.call(ctx, "FECompConsultar", true, func(p *etree.Element) {
		q := p.CreateElement("FeCompConsReq")
		q.CreateElement("PtoVta").SetText(strconv.Itoa(salesPoint))
		q.CreateElement("CbteTipo").SetText(strconv.Itoa(voucherType))
		q.CreateElement("CbteNro").SetText(strconv.FormatInt(voucherNumber, 10))
	})
	if err != nil {
		var serr *afip.ServiceError
		if errors.As(err, &serr) && serr.HasCode(codeNoResults) {
			return nil, fmt.Errorf("%w: %d-%d-%d", afip.ErrNotFound, salesPoint, voucherType, voucherNumber)
		}
		return nil, err
	}

	rg := soap.Find(result, "ResultGet")
	if rg == nil {
		return nil, fmt.Errorf("FECompConsultar response without ResultGet")
	}

	total, _ := decimal.NewFromString(textOf(rg, "ImpTotal"))
	return &model.VoucherRecord{
		SalesPoint:    intOf(rg, "PtoVta"),
		VoucherType:   intOf(rg, "CbteTipo"),
		VoucherNumber: int64(intOf(rg, "CbteDesde")),
		VoucherDate:   textOf(rg, "CbteFch"),
		DocType:       intOf(rg, "DocTipo"),
		DocNumber:     textOf(rg, "DocNro"),
		TotalAmount:   total,
		Currency:      textOf(rg, "MonId"),
		CAE:           textOf(rg, "CodAutorizacion"),
		CAEExpiration: textOf(rg, "FchVto"),
		Result:        textOf(rg, "Resultado"),
	}, nil
}

// ServerStatus checks WSFE's health endpoints (FEDummy).
func (s *Service) ServerStatus(ctx context.Context) (model.ServerStatus, error) {
	result, err := s.call(ctx, "FEDummy", false, nil)
	if err != nil {
		return model.ServerStatus{}, err
	}
	return model.ServerStatus{
		App:  textOf(result, "AppServer"),
		Db:   textOf(result, "DbServer"),
		Auth: textOf(result, "AuthServer"),
	}, nil
}

func (s *Service) validate(req *model.InvoiceRequest) error {
	if req.SalesPoint < 1 {
		return &afip.ValidationError{Field: "SalesPoint", Message: "must be >= 1"}
	}
	if req.Concept < 1 || req.Concept > 3 {
		return &afip.ValidationError{Field: "Concept", Message: "must be 1, 2 or 3"}
	}
	if req.DocNumber == "" {
		return &afip.ValidationError{Field: "DocNumber", Message: "required"}
	}
	if !req.CurrencyRate.IsPositive() {
		return &afip.ValidationError{Field: "CurrencyRate", Message: "must be > 0"}
	}

	for _, a := range []struct {
		name string
		v    decimal.Decimal
	}{
		{"TotalAmount", req.TotalAmount},
		{"NetAmount", req.NetAmount},
		{"VatAmount", req.VatAmount},
		{"NonTaxableAmount", req.NonTaxableAmount},
		{"ExemptAmount", req.ExemptAmount},
		{"TributesAmount", req.TributesAmount},
	} {
		if a.v.IsNegative() {
			return &afip.ValidationError{Field: a.name, Message: "must not be negative"}
		}
	}

	sum := req.NetAmount.
		Add(req.VatAmount).
		Add(req.NonTaxableAmount).
		Add(req.ExemptAmount).
		Add(req.TributesAmount)
	if req.TotalAmount.Sub(sum).Abs().GreaterThan(s.tolerance) {
		return &afip.ValidationError{
			Field:   "TotalAmount",
			Message: fmt.Sprintf("total %s does not match component sum %s", req.TotalAmount, sum),
		}
	}
	return nil
}

// call runs one WSFE operation: attaches the Auth element, posts the
// envelope and strips the result, turning a remote Errors list into a
// ServiceError.
func (s *Service) call(ctx context.Context, op string, withAuth bool, build func(p *etree.Element)) (*etree.Element, error) {
	payload := etree.NewElement(op)
	payload.CreateAttr("xmlns", serviceNS)

	if withAuth {
		ticket, err := s.auth.Authenticate(ctx, SubService, false)
		if err != nil {
			return nil, err
		}
		a := payload.CreateElement("Auth")
		a.CreateElement("Token").SetText(ticket.Token)
		a.CreateElement("Sign").SetText(ticket.Sign)
		a.CreateElement("Cuit").SetText(s.cuit)
	}
	if build != nil {
		build(payload)
	}

	body, err := s.client.Call(ctx, serviceNS+op, payload)
	if err != nil {
		return nil, err
	}

	result := soap.Find(body, op+"Result")
	if result == nil {
		return nil, fmt.Errorf("%s response without result element", op)
	}
	if serr := remoteErrors(op, result); serr != nil {
		return nil, serr
	}
	return result, nil
}

func remoteErrors(op string, result *etree.Element) error {
	errs := soap.Find(result, "Errors")
	if errs == nil {
		return nil
	}
	var details []afip.ErrorDetail
	for _, e := range soap.FindAll(errs, "Err") {
		details = append(details, afip.ErrorDetail{
			Code: intOf(e, "Code"),
			Msg:  textOf(e, "Msg"),
		})
	}
	if len(details) == 0 {
		return nil
	}
	return &afip.ServiceError{Op: op, Errors: details}
}

func parseAuthorization(result *etree.Element, today string) (*model.InvoiceAuthorization, error) {
	det := soap.Find(result, "FECAEDetResponse")
	if det == nil {
		return nil, fmt.Errorf("FECAESolicitar response without detail")
	}

	var obs []model.Observation
	for _, o := range soap.FindAll(det, "Obs") {
		obs = append(obs, model.Observation{
			Code:    intOf(o, "Code"),
			Message: textOf(o, "Msg"),
		})
	}
	for _, o := range obs {
		logger.Warnf("AFIP observation %d: %s", o.Code, o.Message)
	}

	if textOf(det, "Resultado") == "R" {
		return nil, &afip.RejectedError{Observations: obs}
	}

	auth := &model.InvoiceAuthorization{
		CAE:           textOf(det, "CAE"),
		CAEExpiration: textOf(det, "CAEFchVto"),
		VoucherNumber: int64(intOf(det, "CbteDesde")),
		VoucherDate:   today,
		Status:        "A",
		Observations:  obs,
	}
	logger.WithField("cae", auth.CAE).Info("voucher approved")
	return auth, nil
}

func textOf(e *etree.Element, tag string) string {
	if el := soap.Find(e, tag); el != nil {
		return el.Text()
	}
	return ""
}

func intOf(e *etree.Element, tag string) int {
	n, _ := strconv.Atoi(textOf(e, tag))
	return n
}
