package soap

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/beevik/etree"
	"github.com/go-resty/resty/v2"
	log "github.com/sirupsen/logrus"

	"github.com/afipar/go-afip-client/afip"
)

var logger = log.WithField("component", "afip.soap")

// Client posts SOAP 1.1 envelopes to a single AFIP endpoint. Both WSAA
// and WSFE speak this dialect; the payload element carries its own
// default namespace.
type Client struct {
	rest *resty.Client
	url  string
}

// New builds a client for the given endpoint URL. The connect and read
// timeouts are enforced independently and surface as the two distinct
// retryable error kinds.
func New(url string, connectTimeout, readTimeout time.Duration) *Client {
	transport := &http.Transport{
		DialContext: (&net.Dialer{
			Timeout: connectTimeout,
		}).DialContext,
		TLSHandshakeTimeout:   connectTimeout,
		ResponseHeaderTimeout: readTimeout,
	}

	rest := resty.New().
		SetTransport(transport).
		SetHeader("Content-Type", "text/xml; charset=utf-8")

	return &Client{rest: rest, url: url}
}

// Call wraps payload in an envelope, posts it with the given SOAPAction
// and returns the response Body element. Faults and structured HTTP
// errors are mapped before anything reaches the caller.
func (c *Client) Call(ctx context.Context, action string, payload *etree.Element) (*etree.Element, error) {

	body, err := Envelope(payload).WriteToBytes()
	if err != nil {
		return nil, err
	}

	logger.WithField("action", action).Debug("posting SOAP request")

	resp, err := c.rest.R().
		SetContext(ctx).
		SetHeader("SOAPAction", fmt.Sprintf("%q", action)).
		SetBody(body).
		Post(c.url)
	if err != nil {
		return nil, classify(err)
	}

	doc := etree.NewDocument()
	if perr := doc.ReadFromBytes(resp.Body()); perr != nil {
		if resp.IsError() {
			return nil, &RequestError{StatusCode: resp.StatusCode(), Body: resp.String()}
		}
		return nil, fmt.Errorf("malformed SOAP response: %w", perr)
	}

	// faults usually arrive with HTTP 500, so look for one before
	// deciding on the status code
	if f := faultOf(doc.Root()); f != nil {
		return nil, f
	}
	if resp.IsError() {
		return nil, &RequestError{StatusCode: resp.StatusCode(), Body: resp.String()}
	}

	b := Find(doc.Root(), "Body")
	if b == nil {
		return nil, fmt.Errorf("SOAP response without Body element")
	}
	return b, nil
}

func faultOf(root *etree.Element) *Fault {
	fe := Find(root, "Fault")
	if fe == nil {
		return nil
	}
	return &Fault{
		Code:    text(fe, "faultcode"),
		Message: text(fe, "faultstring"),
	}
}

func text(e *etree.Element, tag string) string {
	if el := Find(e, tag); el != nil {
		return el.Text()
	}
	return ""
}

// classify maps transport errors onto the connect/read timeout taxonomy
// once, at the boundary.
func classify(err error) error {
	var nerr net.Error
	timeout := errors.As(err, &nerr) && nerr.Timeout() ||
		errors.Is(err, context.DeadlineExceeded)
	if !timeout {
		return err
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "dial" {
		return fmt.Errorf("%w: %v", afip.ErrConnectTimeout, err)
	}
	return fmt.Errorf("%w: %v", afip.ErrReadTimeout, err)
}

// Find walks e depth first and returns the first element whose local
// name is tag, ignoring namespace prefixes. AFIP responses mix default
// and prefixed namespaces, so path queries by full tag are unreliable.
func Find(e *etree.Element, tag string) *etree.Element {
	if e == nil {
		return nil
	}
	if e.Tag == tag {
		return e
	}
	for _, child := range e.ChildElements() {
		if found := Find(child, tag); found != nil {
			return found
		}
	}
	return nil
}

// FindAll returns every descendant of e (or e itself) with the given
// local name, in document order.
func FindAll(e *etree.Element, tag string) []*etree.Element {
	if e == nil {
		return nil
	}
	var out []*etree.Element
	if e.Tag == tag {
		out = append(out, e)
	}
	for _, child := range e.ChildElements() {
		out = append(out, FindAll(child, tag)...)
	}
	return out
}
