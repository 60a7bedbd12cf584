// Package wsaa implements AFIP's authentication service: it builds and
// signs access ticket requests (TRA), exchanges them through loginCms
// and caches the resulting tickets.
package wsaa

import (
	"strconv"
	"time"

	"github.com/beevik/etree"
)

const timeLayout = "2006-01-02T15:04:05"

// skewMargin is subtracted from the generation timestamp so WSAA never
// sees a request generated "in the future". AFIP's clocks have been
// observed a couple of minutes apart from NTP-synced hosts.
const skewMargin = 2 * time.Minute

// TRABuilder formats loginTicketRequest documents. Timestamps are UTC
// minus a fixed safety margin; that is the single clock policy for the
// whole client.
type TRABuilder struct {
	clock func() time.Time
}

func NewTRABuilder() *TRABuilder {
	return &TRABuilder{clock: time.Now}
}

// Build returns the TRA XML for the given sub-service, valid from now
// until now+ttl.
func (b *TRABuilder) Build(service string, ttl time.Duration) ([]byte, error) {
	generation := b.clock().UTC().Add(-skewMargin)
	expiration := generation.Add(ttl)

	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	root := doc.CreateElement("loginTicketRequest")
	root.CreateAttr("version", "1.0")

	header := root.CreateElement("header")
	header.CreateElement("uniqueId").SetText(strconv.FormatInt(generation.Unix(), 10))
	header.CreateElement("generationTime").SetText(generation.Format(timeLayout))
	header.CreateElement("expirationTime").SetText(expiration.Format(timeLayout))

	root.CreateElement("service").SetText(service)

	doc.Indent(2)
	return doc.WriteToBytes()
}
