package lookup

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/evyataryagoni/wataxrate/internal/models"
)

// ErrorKind classifies why a lookup failed.
type ErrorKind int

const (
	// KindNetwork means no response was received (DNS, refused connection,
	// timeout, cancellation, or a body that could not be read).
	KindNetwork ErrorKind = iota + 1
	// KindRemoteRejected means the service answered but reported failure,
	// either with a non-2xx status or with an error result code.
	KindRemoteRejected
	// KindDecode means the service answered with success but the body did
	// not have the expected structure.
	KindDecode
)

func (k ErrorKind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindRemoteRejected:
		return "remote_rejected"
	case KindDecode:
		return "decode"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// LookupError is returned by every failed lookup. Callers branch on Kind.
type LookupError struct {
	Kind ErrorKind

	// StatusCode is the HTTP status for RemoteRejected errors caused by a
	// non-2xx response. It is 0 for in-band rejections and network errors.
	StatusCode int

	// Body is a truncated copy of the response body for non-2xx responses.
	Body string

	// Code and Info are set when the service answered 2xx with an error
	// result code. Info holds the decoded response so it can be inspected;
	// its rate fields are not meaningful.
	Code models.ResultCode
	Info *models.TaxInfo

	Err error
}

func (e *LookupError) Error() string {
	if e == nil {
		return "<nil>"
	}
	var b strings.Builder
	b.WriteString("tax rate lookup: ")
	switch e.Kind {
	case KindNetwork:
		b.WriteString("network failure")
	case KindRemoteRejected:
		if e.StatusCode != 0 {
			b.WriteString(fmt.Sprintf("rejected with http %d", e.StatusCode))
			if t := http.StatusText(e.StatusCode); t != "" {
				b.WriteString(" ")
				b.WriteString(t)
			}
		} else {
			b.WriteString(fmt.Sprintf("rejected with code %d (%s)", int(e.Code), e.Code))
		}
	case KindDecode:
		b.WriteString("malformed response")
	default:
		b.WriteString(e.Kind.String())
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *LookupError) Unwrap() error { return e.Err }

// Retryable reports whether the same lookup may succeed if issued again.
// Network failures, 5xx and 429 statuses, and DOR internal errors are
// retryable; bad addresses and malformed responses are not.
func (e *LookupError) Retryable() bool {
	if e == nil {
		return false
	}
	switch e.Kind {
	case KindNetwork:
		return true
	case KindRemoteRejected:
		if e.StatusCode != 0 {
			return e.StatusCode >= 500 || e.StatusCode == http.StatusTooManyRequests
		}
		return e.Code.Retryable()
	}
	return false
}

// AsLookupError extracts *LookupError from err.
func AsLookupError(err error) (*LookupError, bool) {
	var le *LookupError
	if errors.As(err, &le) {
		return le, true
	}
	return nil, false
}

func isKind(err error, kind ErrorKind) bool {
	le, ok := AsLookupError(err)
	return ok && le.Kind == kind
}

func IsNetwork(err error) bool { return isKind(err, KindNetwork) }

func IsRemoteRejected(err error) bool { return isKind(err, KindRemoteRejected) }

func IsDecode(err error) bool { return isKind(err, KindDecode) }

// IsRetryable reports whether err is a retryable *LookupError.
func IsRetryable(err error) bool {
	le, ok := AsLookupError(err)
	return ok && le.Retryable()
}
