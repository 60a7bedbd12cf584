// Package ticketstore persists WSAA access tickets between runs. A Get
// never returns an expired ticket, and any doubt about an entry (corrupt
// file, failed read) is answered with a miss so the caller simply
// re-authenticates.
package ticketstore

import (
	"fmt"

	"github.com/afipar/go-afip-client/afip/model"
)

// Key identifies one ticket slot.
type Key struct {
	Service     string
	Cuit        string
	Environment string
}

func (k Key) String() string {
	return fmt.Sprintf("%s_%s_%s", k.Service, k.Environment, k.Cuit)
}

// Store is the cache contract consumed by the authentication service.
type Store interface {
	// Get returns the ticket for key, or ok=false when there is none,
	// it expired, or the entry could not be read.
	Get(key Key) (t *model.AuthTicket, ok bool)
	Put(key Key, t *model.AuthTicket) error
	Evict(key Key) error
}
