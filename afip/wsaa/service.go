package wsaa

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/beevik/etree"
	"github.com/go-faster/errors"
	log "github.com/sirupsen/logrus"

	"github.com/afipar/go-afip-client/afip"
	"github.com/afipar/go-afip-client/afip/model"
	"github.com/afipar/go-afip-client/afip/soap"
	"github.com/afipar/go-afip-client/afip/ticketstore"
)

var logger = log.WithField("component", "afip.wsaa")

const loginNS = "http://wsaa.view.sua.dvadac.desein.afip.gov"

// Signer produces the CMS envelope over a TRA. Satisfied by sign.Signer.
type Signer interface {
	Sign(document []byte, detached bool) ([]byte, error)
}

// Service is the authentication service: cache first, then a full
// build-sign-exchange round trip.
type Service struct {
	client *soap.Client
	signer Signer
	store  ticketstore.Store
	tra    *TRABuilder

	cuit string
	env  afip.Environment
	ttl  time.Duration

	// serializes remote logins so concurrent callers behind a cold cache
	// trigger a single exchange
	mu sync.Mutex
}

func New(client *soap.Client, signer Signer, store ticketstore.Store, cuit string, env afip.Environment, ttl time.Duration) *Service {
	return &Service{
		client: client,
		signer: signer,
		store:  store,
		tra:    NewTRABuilder(),
		cuit:   cuit,
		env:    env,
		ttl:    ttl,
	}
}

// Authenticate returns a valid access ticket for the given sub-service,
// reusing the cached one unless it expired or forceRefresh is set.
func (s *Service) Authenticate(ctx context.Context, service string, forceRefresh bool) (*model.AuthTicket, error) {
	key := ticketstore.Key{Service: service, Cuit: s.cuit, Environment: s.env.String()}

	if !forceRefresh {
		if t, ok := s.store.Get(key); ok {
			logger.WithField("service", service).Debug("ticket served from cache")
			return t, nil
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// another caller may have refreshed while we waited on the lock
	if !forceRefresh {
		if t, ok := s.store.Get(key); ok {
			return t, nil
		}
	}

	logger.WithField("service", service).Info("requesting new access ticket")

	tra, err := s.tra.Build(service, s.ttl)
	if err != nil {
		return nil, err
	}

	cms, err := s.signer.Sign(tra, false)
	if err != nil {
		// already a CredentialError, keep it intact
		return nil, err
	}

	ticket, err := s.login(ctx, cms)
	if err != nil {
		return nil, s.mapError(err)
	}
	ticket.Cuit = s.cuit

	if err := s.store.Put(key, ticket); err != nil {
		// a cache that cannot be written is an inconvenience, not a
		// failed authentication
		logger.Warnf("could not cache ticket for %s: %v", service, err)
	}

	logger.WithField("expiration", ticket.Expiration).Info("authentication successful")
	return ticket, nil
}

func (s *Service) login(ctx context.Context, cms []byte) (*model.AuthTicket, error) {
	payload := etree.NewElement("loginCms")
	payload.CreateAttr("xmlns", loginNS)
	payload.CreateElement("in0").SetText(base64.StdEncoding.EncodeToString(cms))

	body, err := s.client.Call(ctx, "", payload)
	if err != nil {
		return nil, err
	}

	ret := soap.Find(body, "loginCmsReturn")
	if ret == nil {
		return nil, fmt.Errorf("login response without loginCmsReturn")
	}
	// the element text is the escaped loginTicketResponse document
	return ParseLoginTicket(ret.Text())
}

// mapError applies the failure policy: timeouts stay distinct and
// retryable, signature complaints become credential errors with the
// original message verbatim, and everything else is wrapped with the
// suspected cause type so diagnosis does not start from zero.
func (s *Service) mapError(err error) error {
	if errors.Is(err, afip.ErrConnectTimeout) || errors.Is(err, afip.ErrReadTimeout) {
		return err
	}
	if indicatesBadSignature(err) {
		return &afip.CredentialError{Reason: err.Error(), Err: err}
	}
	return fmt.Errorf("authentication failed, possible underlying cause: %T: %w", err, err)
}

func indicatesBadSignature(err error) bool {
	msg := strings.ToLower(err.Error())
	for _, marker := range []string{"firma", "cms", "sign", "certificado", "certificate"} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
