package sign

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"math/big"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mozilla.org/pkcs7"

	"github.com/afipar/go-afip-client/afip"
)

// writeCredentials generates a self-signed certificate and key pair and
// writes both as PEM files under dir.
func writeCredentials(t *testing.T, dir string) (certPath, keyPath string, key *rsa.PrivateKey) {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	tmpl := &x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject: pkix.Name{
			CommonName:   "test",
			SerialNumber: "CUIT 20111111112",
		},
		NotBefore:   time.Now().Add(-time.Hour),
		NotAfter:    time.Now().Add(24 * time.Hour),
		KeyUsage:    x509.KeyUsageDigitalSignature,
		ExtKeyUsage: []x509.ExtKeyUsage{x509.ExtKeyUsageClientAuth},
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
	require.NoError(t, err)

	certPath = filepath.Join(dir, "certificado.crt")
	keyPath = filepath.Join(dir, "private.key")

	certPEM := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der})
	require.NoError(t, os.WriteFile(certPath, certPEM, 0o600))

	keyPEM := pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(key),
	})
	require.NoError(t, os.WriteFile(keyPath, keyPEM, 0o600))

	return certPath, keyPath, key
}

func TestNewAndSign(t *testing.T) {
	certPath, keyPath, _ := writeCredentials(t, t.TempDir())

	signer, err := New(certPath, keyPath, nil)
	require.NoError(t, err)
	require.NotNil(t, signer.Certificate())

	document := []byte(`<loginTicketRequest version="1.0"/>`)
	cms, err := signer.Sign(document, false)
	require.NoError(t, err)

	parsed, err := pkcs7.Parse(cms)
	require.NoError(t, err, "output must be a well formed SignedData")
	assert.Equal(t, document, parsed.Content)
	require.NoError(t, parsed.Verify())
}

func TestSignDetached(t *testing.T) {
	certPath, keyPath, _ := writeCredentials(t, t.TempDir())

	signer, err := New(certPath, keyPath, nil)
	require.NoError(t, err)

	cms, err := signer.Sign([]byte("payload"), true)
	require.NoError(t, err)

	parsed, err := pkcs7.Parse(cms)
	require.NoError(t, err)
	assert.Empty(t, parsed.Content, "detached signature carries no content")
}

func TestNew_PKCS8Key(t *testing.T) {
	dir := t.TempDir()
	certPath, _, key := writeCredentials(t, dir)

	der, err := x509.MarshalPKCS8PrivateKey(key)
	require.NoError(t, err)
	keyPath := filepath.Join(dir, "pkcs8.key")
	keyPEM := pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der})
	require.NoError(t, os.WriteFile(keyPath, keyPEM, 0o600))

	_, err = New(certPath, keyPath, nil)
	assert.NoError(t, err)
}

func TestNew_MissingFiles(t *testing.T) {
	dir := t.TempDir()
	certPath, keyPath, _ := writeCredentials(t, dir)

	var cerr *afip.CredentialError

	_, err := New(filepath.Join(dir, "nope.crt"), keyPath, nil)
	require.ErrorAs(t, err, &cerr)

	_, err = New(certPath, filepath.Join(dir, "nope.key"), nil)
	require.ErrorAs(t, err, &cerr)
}

func TestNew_KeyDoesNotMatchCertificate(t *testing.T) {
	dir := t.TempDir()
	certPath, _, _ := writeCredentials(t, dir)

	other, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	otherPath := filepath.Join(dir, "other.key")
	keyPEM := pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(other),
	})
	require.NoError(t, os.WriteFile(otherPath, keyPEM, 0o600))

	_, err = New(certPath, otherPath, nil)
	var cerr *afip.CredentialError
	require.ErrorAs(t, err, &cerr)
	assert.Contains(t, cerr.Reason, "does not match")
}

func TestNew_EncryptedKeyWithoutPassword(t *testing.T) {
	dir := t.TempDir()
	certPath, _, _ := writeCredentials(t, dir)

	// the block type alone triggers the password check, the payload is
	// never reached
	keyPath := filepath.Join(dir, "encrypted.key")
	keyPEM := pem.EncodeToMemory(&pem.Block{Type: "ENCRYPTED PRIVATE KEY", Bytes: []byte{0x30, 0x00}})
	require.NoError(t, os.WriteFile(keyPath, keyPEM, 0o600))

	_, err := New(certPath, keyPath, nil)
	var cerr *afip.CredentialError
	require.ErrorAs(t, err, &cerr)
	assert.Contains(t, cerr.Reason, "password")
}

func TestNew_GarbageKeyFile(t *testing.T) {
	dir := t.TempDir()
	certPath, _, _ := writeCredentials(t, dir)

	keyPath := filepath.Join(dir, "garbage.key")
	require.NoError(t, os.WriteFile(keyPath, []byte("not a pem file"), 0o600))

	_, err := New(certPath, keyPath, nil)
	var cerr *afip.CredentialError
	require.ErrorAs(t, err, &cerr)
	assert.Contains(t, cerr.Reason, "no private key block")
}
