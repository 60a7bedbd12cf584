package wsaa

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/afipar/go-afip-client/afip/model"
)

const loginTicketXML = `<?xml version="1.0" encoding="UTF-8"?>
<loginTicketResponse version="1.0">
  <header>
    <source>CN=wsaahomo</source>
    <destination>SERIALNUMBER=CUIT 20123456789</destination>
    <uniqueId>42</uniqueId>
    <generationTime>2025-03-15T11:58:00</generationTime>
    <expirationTime>2025-03-15T23:58:00.123-03:00</expirationTime>
  </header>
  <credentials>
    <token>tok-abc</token>
    <sign>sig-xyz</sign>
  </credentials>
</loginTicketResponse>`

func TestParseLoginTicket_RawXML(t *testing.T) {
	ticket, err := ParseLoginTicket(loginTicketXML)
	require.NoError(t, err)

	assert.Equal(t, "tok-abc", ticket.Token)
	assert.Equal(t, "sig-xyz", ticket.Sign)
	// suffix truncated before parsing
	want := time.Date(2025, 3, 15, 23, 58, 0, 0, time.Local)
	assert.True(t, ticket.Expiration.Equal(want), "got %s", ticket.Expiration)
}

func TestParseLoginTicket_AllShapesAgree(t *testing.T) {

	typed := &model.LoginTicketResponse{}
	typed.Credentials.Token = "tok-abc"
	typed.Credentials.Sign = "sig-xyz"
	typed.Header.ExpirationTime = "2025-03-15T23:58:00.123-03:00"

	mapping := map[string]any{
		"credentials": map[string]any{"token": "tok-abc", "sign": "sig-xyz"},
		"header":      map[string]any{"expirationTime": "2025-03-15T23:58:00.123-03:00"},
	}

	raw, err := ParseLoginTicket([]byte(loginTicketXML))
	require.NoError(t, err)
	fromTyped, err := ParseLoginTicket(typed)
	require.NoError(t, err)
	fromMap, err := ParseLoginTicket(mapping)
	require.NoError(t, err)

	assert.Equal(t, raw, fromTyped)
	assert.Equal(t, raw, fromMap)
}

func TestParseLoginTicket_UnsupportedShape(t *testing.T) {
	_, err := ParseLoginTicket(42)
	assert.ErrorContains(t, err, "unsupported login response shape")
}

func TestParseLoginTicket_MissingCredentials(t *testing.T) {
	_, err := ParseLoginTicket(`<loginTicketResponse><header><expirationTime>2025-03-15T23:58:00</expirationTime></header></loginTicketResponse>`)
	assert.Error(t, err)
}

func TestTruncateTimestamp(t *testing.T) {
	assert.Equal(t, "2025-03-15T23:58:00", truncateTimestamp("2025-03-15T23:58:00.123-03:00"))
	assert.Equal(t, "2025-03-15T23:58:00", truncateTimestamp("2025-03-15T23:58:00"))
	assert.Equal(t, "short", truncateTimestamp("short"))
}
