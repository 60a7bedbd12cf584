package model

import "time"

// AuthTicket is a WSAA access ticket. It is never mutated after
// creation; a refresh produces a new value.
type AuthTicket struct {
	Token      string    `json:"token"`
	Sign       string    `json:"sign"`
	Cuit       string    `json:"cuit"`
	Expiration time.Time `json:"expiration"`
}

func (t *AuthTicket) Valid() bool {
	return t.ValidAt(time.Now())
}

func (t *AuthTicket) ValidAt(now time.Time) bool {
	return t != nil && t.Token != "" && now.Before(t.Expiration)
}

// LoginTicketResponse is the typed shape of a WSAA loginTicketResponse
// document, for transports that already decode the payload.
type LoginTicketResponse struct {
	Header struct {
		Source         string `xml:"source"`
		Destination    string `xml:"destination"`
		UniqueID       string `xml:"uniqueId"`
		GenerationTime string `xml:"generationTime"`
		ExpirationTime string `xml:"expirationTime"`
	} `xml:"header"`
	Credentials struct {
		Token string `xml:"token"`
		Sign  string `xml:"sign"`
	} `xml:"credentials"`
}
