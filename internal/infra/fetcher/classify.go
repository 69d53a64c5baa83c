package fetcher

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"syscall"
)

// Transport fault kinds reported as "Unknown exception <kind>.".
const (
	ExceptionTimeout           = "Timeout"
	ExceptionCanceled          = "Canceled"
	ExceptionDNS               = "DNSError"
	ExceptionConnectionRefused = "ConnectionRefused"
	ExceptionConnectionReset   = "ConnectionReset"
	ExceptionTLS               = "TLSError"
	ExceptionMalformedResponse = "MalformedResponse"
	ExceptionInvalidURL        = "InvalidURL"
	ExceptionPrivateAddress    = "PrivateAddress"
	ExceptionReadError         = "ReadError"
	ExceptionGeneric           = "Error"
)

// classifyTransportError maps a transport-level fault to its exception kind.
// The order matters: a DNS timeout is a DNS error, a dial refusal wrapped in
// a net.OpError is a refusal rather than a generic network error.
func classifyTransportError(err error) string {
	if err == nil {
		return ExceptionGeneric
	}

	switch {
	case errors.Is(err, ErrInvalidURL):
		return ExceptionInvalidURL
	case errors.Is(err, ErrPrivateIP):
		return ExceptionPrivateAddress
	case errors.Is(err, context.DeadlineExceeded):
		return ExceptionTimeout
	case errors.Is(err, context.Canceled):
		return ExceptionCanceled
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return ExceptionDNS
	}

	if errors.Is(err, syscall.ECONNREFUSED) {
		return ExceptionConnectionRefused
	}
	if errors.Is(err, syscall.ECONNRESET) || errors.Is(err, syscall.EPIPE) ||
		errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return ExceptionConnectionReset
	}

	if isTLSError(err) {
		return ExceptionTLS
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ExceptionTimeout
	}

	// net/http does not export a type for unparsable responses.
	if strings.Contains(err.Error(), "malformed HTTP") {
		return ExceptionMalformedResponse
	}

	return ExceptionGeneric
}

func isTLSError(err error) bool {
	var (
		recordErr    tls.RecordHeaderError
		verifyErr    *tls.CertificateVerificationError
		alertErr     tls.AlertError
		authorityErr x509.UnknownAuthorityError
		hostnameErr  x509.HostnameError
		invalidErr   x509.CertificateInvalidError
	)
	return errors.As(err, &recordErr) ||
		errors.As(err, &verifyErr) ||
		errors.As(err, &alertErr) ||
		errors.As(err, &authorityErr) ||
		errors.As(err, &hostnameErr) ||
		errors.As(err, &invalidErr)
}

// statusClass names the response class of an HTTP status code.
func statusClass(code int) string {
	switch {
	case code >= 100 && code < 200:
		return "Informational"
	case code >= 200 && code < 300:
		return "Success"
	case code >= 300 && code < 400:
		return "Redirection"
	case code >= 400 && code < 500:
		return "ClientError"
	case code >= 500 && code < 600:
		return "ServerError"
	default:
		return "Unknown"
	}
}

// reasonPhrase returns the reason phrase sent by the server, falling back
// to the canonical text for the status code.
func reasonPhrase(resp *http.Response) string {
	reason := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
	if reason == "" {
		reason = http.StatusText(resp.StatusCode)
	}
	return reason
}
