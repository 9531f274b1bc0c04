package catalog

import "fmt"

// Kind classifies a catalog failure. Callers use errors.As to pull the
// *Error out of a wrapped chain and switch on its Kind.
type Kind int

const (
	// KindNotFound - the catalog has no entry for the query.
	KindNotFound Kind = iota
	// KindAmbiguous - the fuzzy name matched more than one card.
	KindAmbiguous
	// KindTimeout - the catalog did not answer within the deadline.
	KindTimeout
	// KindConnectFailed - the request never reached the catalog.
	KindConnectFailed
	// KindParseFailed - the catalog answered with an unreadable body.
	KindParseFailed
	// KindNetwork - any other transport or server failure.
	KindNetwork
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindAmbiguous:
		return "ambiguous"
	case KindTimeout:
		return "timeout"
	case KindConnectFailed:
		return "connect_failed"
	case KindParseFailed:
		return "parse_failed"
	default:
		return "network"
	}
}

// Error is a catalog lookup failure with a user-presentable message.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return fmt.Sprintf("catalog %s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("catalog %s", e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

// notFound builds a KindNotFound error with a formatted message.
func notFound(format string, args ...interface{}) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// ambiguous builds a KindAmbiguous error with a formatted message.
func ambiguous(format string, args ...interface{}) *Error {
	return &Error{Kind: KindAmbiguous, Message: fmt.Sprintf(format, args...)}
}
