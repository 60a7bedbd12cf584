package wsaa

import (
	"fmt"
	"time"

	"github.com/beevik/etree"
	"github.com/go-faster/errors"

	"github.com/afipar/go-afip-client/afip/model"
)

// ParseLoginTicket normalizes a WSAA login response into an AuthTicket.
// Depending on the transport stack the payload shows up as raw XML
// (string or bytes), as an already decoded LoginTicketResponse, or as a
// generic map; one strategy per shape, resolved here so nothing past
// this boundary sees more than the ticket.
func ParseLoginTicket(v any) (*model.AuthTicket, error) {
	switch r := v.(type) {
	case string:
		return parseRawXML([]byte(r))
	case []byte:
		return parseRawXML(r)
	case *model.LoginTicketResponse:
		return fromParts(r.Credentials.Token, r.Credentials.Sign, r.Header.ExpirationTime)
	case model.LoginTicketResponse:
		return fromParts(r.Credentials.Token, r.Credentials.Sign, r.Header.ExpirationTime)
	case map[string]any:
		return parseMapping(r)
	default:
		return nil, fmt.Errorf("unsupported login response shape: %T", v)
	}
}

func parseRawXML(raw []byte) (*model.AuthTicket, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(raw); err != nil {
		return nil, errors.Wrap(err, "parse loginTicketResponse")
	}

	token := elementText(doc, "token")
	sign := elementText(doc, "sign")
	expiration := elementText(doc, "expirationTime")
	return fromParts(token, sign, expiration)
}

func parseMapping(m map[string]any) (*model.AuthTicket, error) {
	creds, _ := m["credentials"].(map[string]any)
	header, _ := m["header"].(map[string]any)
	if creds == nil || header == nil {
		return nil, fmt.Errorf("login response mapping lacks credentials or header")
	}
	token, _ := creds["token"].(string)
	sign, _ := creds["sign"].(string)
	expiration, _ := header["expirationTime"].(string)
	return fromParts(token, sign, expiration)
}

func fromParts(token, sign, expiration string) (*model.AuthTicket, error) {
	if token == "" || sign == "" {
		return nil, fmt.Errorf("login response without token or sign")
	}
	exp, err := parseExpiration(expiration)
	if err != nil {
		return nil, err
	}
	return &model.AuthTicket{Token: token, Sign: sign, Expiration: exp}, nil
}

// parseExpiration accepts whatever timestamp flavor WSAA emits
// (milliseconds, numeric offsets) by truncating to the bare
// YYYY-MM-DDTHH:MM:SS form first. The bare form is read in local time,
// matching the authority's own zone handling.
func parseExpiration(s string) (time.Time, error) {
	t, err := time.ParseInLocation(timeLayout, truncateTimestamp(s), time.Local)
	if err != nil {
		return time.Time{}, errors.Wrap(err, "parse ticket expiration")
	}
	return t, nil
}

func truncateTimestamp(s string) string {
	if len(s) > len(timeLayout) {
		return s[:len(timeLayout)]
	}
	return s
}

func elementText(doc *etree.Document, tag string) string {
	if root := doc.Root(); root != nil {
		if e := findLocal(root, tag); e != nil {
			return e.Text()
		}
	}
	return ""
}

func findLocal(e *etree.Element, tag string) *etree.Element {
	if e.Tag == tag {
		return e
	}
	for _, child := range e.ChildElements() {
		if found := findLocal(child, tag); found != nil {
			return found
		}
	}
	return nil
}
