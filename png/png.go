package png

import "github.com/skip2/go-qrcode"

// Qr renders content as a 300x300 PNG QR code, suitable for embedding
// the AFIP verification link on a printed voucher.
func Qr(content string) ([]byte, error) {
	return qrcode.Encode(content, qrcode.Medium, 300)
}
