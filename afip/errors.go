package afip

import (
	"errors"
	"fmt"
	"strings"

	"github.com/afipar/go-afip-client/afip/model"
)

var (
	// ErrConnectTimeout marks a failure to establish the TCP/TLS
	// connection within the configured connect timeout. Retryable.
	ErrConnectTimeout = errors.New("afip: connect timeout")

	// ErrReadTimeout marks a connection that was established but did not
	// answer within the configured read timeout. Retryable.
	ErrReadTimeout = errors.New("afip: read timeout")

	// ErrNotFound is returned by voucher lookups when AFIP has no record
	// for the requested (sales point, type, number).
	ErrNotFound = errors.New("afip: voucher not found")
)

// CredentialError covers missing, unreadable or mismatched certificate
// material, and WSAA faults that indicate an invalid CMS signature.
// Not retryable; never masked as a transport error.
type CredentialError struct {
	Reason string
	Err    error
}

func (e *CredentialError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("credential error: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("credential error: %s", e.Reason)
}

func (e *CredentialError) Unwrap() error { return e.Err }

// ErrorDetail is one code/message pair from a WSFE Errors list.
type ErrorDetail struct {
	Code int
	Msg  string
}

func (e ErrorDetail) Error() string {
	return fmt.Sprintf("%d: %s", e.Code, e.Msg)
}

// ServiceError is a structured error list returned by an AFIP operation.
// The original code/message pairs are kept intact.
type ServiceError struct {
	Op     string
	Errors []ErrorDetail
}

func (e *ServiceError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "afip %s:", e.Op)
	for _, d := range e.Errors {
		fmt.Fprintf(&sb, " [%d: %s]", d.Code, d.Msg)
	}
	return sb.String()
}

// HasCode reports whether the error list contains the given AFIP code.
func (e *ServiceError) HasCode(code int) bool {
	for _, d := range e.Errors {
		if d.Code == code {
			return true
		}
	}
	return false
}

// RejectedError is raised when a voucher detail comes back with
// Resultado "R". The observations attached by AFIP are carried verbatim.
type RejectedError struct {
	Observations []model.Observation
}

func (e *RejectedError) Error() string {
	var sb strings.Builder
	sb.WriteString("voucher rejected by AFIP")
	for _, o := range e.Observations {
		fmt.Fprintf(&sb, " [%d: %s]", o.Code, o.Message)
	}
	return sb.String()
}

// ValidationError is a local invariant violation detected before any
// network call.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid request: %s: %s", e.Field, e.Message)
}
