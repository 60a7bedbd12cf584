// Package sign loads the taxpayer's certificate and private key and
// produces the CMS (PKCS#7) signed envelope WSAA expects around a TRA.
package sign

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"os"

	"github.com/go-faster/errors"
	"github.com/youmark/pkcs8"
	"go.mozilla.org/pkcs7"

	"github.com/afipar/go-afip-client/afip"
)

type Signer struct {
	cert *x509.Certificate
	key  crypto.Signer
}

// New reads certificate and key material from disk. Any problem with
// either file, or a key that does not match the certificate, is a
// CredentialError so callers can tell it apart from transport trouble.
func New(certPath, keyPath string, keyPassword []byte) (*Signer, error) {
	cert, err := loadCertificate(certPath)
	if err != nil {
		return nil, err
	}

	key, err := loadPrivateKey(keyPath, keyPassword)
	if err != nil {
		return nil, err
	}

	if !keyMatchesCert(cert, key) {
		return nil, &afip.CredentialError{
			Reason: fmt.Sprintf("private key %s does not match certificate %s", keyPath, certPath),
		}
	}

	return &Signer{cert: cert, key: key}, nil
}

// Sign produces a CMS SignedData envelope over document. With detached
// set, the content is omitted and only referenced by the signature.
func (s *Signer) Sign(document []byte, detached bool) ([]byte, error) {
	sd, err := pkcs7.NewSignedData(document)
	if err != nil {
		return nil, errors.Wrap(err, "init signed data")
	}

	// the library defaults to SHA-1; AFIP accepts it but there is no
	// reason to sign with anything below SHA-256
	sd.SetDigestAlgorithm(pkcs7.OIDDigestAlgorithmSHA256)

	if err := sd.AddSigner(s.cert, s.key, pkcs7.SignerInfoConfig{}); err != nil {
		return nil, &afip.CredentialError{Reason: "signing failed", Err: err}
	}
	if detached {
		sd.Detach()
	}
	return sd.Finish()
}

func (s *Signer) Certificate() *x509.Certificate { return s.cert }

func loadCertificate(path string) (*x509.Certificate, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, &afip.CredentialError{Reason: "read certificate", Err: err}
	}
	if block, _ := pem.Decode(b); block != nil {
		if block.Type != "CERTIFICATE" {
			return nil, &afip.CredentialError{
				Reason: fmt.Sprintf("unexpected PEM block %q in %s", block.Type, path),
			}
		}
		b = block.Bytes
	}
	cert, err := x509.ParseCertificate(b)
	if err != nil {
		return nil, &afip.CredentialError{Reason: "parse certificate", Err: err}
	}
	return cert, nil
}

func loadPrivateKey(path string, password []byte) (crypto.Signer, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, &afip.CredentialError{Reason: "read private key", Err: err}
	}

	for len(b) > 0 {
		var block *pem.Block
		block, b = pem.Decode(b)
		if block == nil {
			break
		}

		var (
			key  any
			perr error
		)
		switch block.Type {
		case "RSA PRIVATE KEY":
			key, perr = x509.ParsePKCS1PrivateKey(block.Bytes)
		case "EC PRIVATE KEY":
			key, perr = x509.ParseECPrivateKey(block.Bytes)
		case "PRIVATE KEY":
			key, perr = x509.ParsePKCS8PrivateKey(block.Bytes)
		case "ENCRYPTED PRIVATE KEY":
			if len(password) == 0 {
				return nil, &afip.CredentialError{
					Reason: "private key is encrypted and no password was given",
				}
			}
			key, perr = pkcs8.ParsePKCS8PrivateKey(block.Bytes, password)
		default:
			continue
		}
		if perr != nil {
			return nil, &afip.CredentialError{Reason: "parse private key", Err: perr}
		}

		signer, ok := key.(crypto.Signer)
		if !ok {
			return nil, &afip.CredentialError{
				Reason: fmt.Sprintf("unsupported key type %T", key),
			}
		}
		return signer, nil
	}

	return nil, &afip.CredentialError{
		Reason: fmt.Sprintf("no private key block found in %s", path),
	}
}

func keyMatchesCert(cert *x509.Certificate, key crypto.Signer) bool {
	switch pub := cert.PublicKey.(type) {
	case *rsa.PublicKey:
		return pub.Equal(key.Public())
	case *ecdsa.PublicKey:
		return pub.Equal(key.Public())
	default:
		return false
	}
}
