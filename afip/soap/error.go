package soap

import "fmt"

// RequestError is a non-2xx HTTP response that did not carry a SOAP
// fault.
type RequestError struct {
	StatusCode int
	Body       string
}

func (r *RequestError) Error() string {
	return fmt.Sprintf("status: %d body: %s", r.StatusCode, r.Body)
}

// Fault is a SOAP fault as returned by the endpoint. WSAA reports CMS
// and TRA problems this way.
type Fault struct {
	Code    string
	Message string
}

func (f *Fault) Error() string {
	return fmt.Sprintf("soap fault %s: %s", f.Code, f.Message)
}
