package netmd

import (
	"fmt"

	"github.com/bdube/netmd/query"
)

// ErrorKind enumerates the InterfaceError sum described in spec.md §4.4/§7.
type ErrorKind int

const (
	KindQuery ErrorKind = iota
	KindCommunication
	KindGroup
	KindEncryption
	KindInvalidStatus
	KindNoSupportedMedia
	KindInvalidLevel
	KindInvalidEncoding
	KindInvalidDiscFormat
	KindRejected
	KindTitleError
	KindNotImplemented
	KindMaxRetries
	KindUnknown
)

func (k ErrorKind) String() string {
	switch k {
	case KindQuery:
		return "Query"
	case KindCommunication:
		return "Communication"
	case KindGroup:
		return "Group"
	case KindEncryption:
		return "Encryption"
	case KindInvalidStatus:
		return "InvalidStatus"
	case KindNoSupportedMedia:
		return "NoSupportedMedia"
	case KindInvalidLevel:
		return "InvalidLevel"
	case KindInvalidEncoding:
		return "InvalidEncoding"
	case KindInvalidDiscFormat:
		return "InvalidDiscFormat"
	case KindRejected:
		return "Rejected"
	case KindTitleError:
		return "TitleError"
	case KindNotImplemented:
		return "NotImplemented"
	case KindMaxRetries:
		return "MaxRetries"
	default:
		return "Unknown"
	}
}

// InterfaceError is the single closed error sum every Interface operation
// returns on failure (spec.md §4.4).
type InterfaceError struct {
	Kind    ErrorKind
	Message string
	Cause   error
}

func (e *InterfaceError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("netmd: %s: %s", e.Kind, e.Message)
	}
	if e.Cause != nil {
		return fmt.Sprintf("netmd: %s: %s", e.Kind, e.Cause)
	}
	return fmt.Sprintf("netmd: %s", e.Kind)
}

func (e *InterfaceError) Unwrap() error { return e.Cause }

func newErr(kind ErrorKind, msg string) *InterfaceError {
	return &InterfaceError{Kind: kind, Message: msg}
}

func wrapErr(kind ErrorKind, cause error) *InterfaceError {
	return &InterfaceError{Kind: kind, Cause: cause}
}

// wrapQueryErr lifts a query.Error (or any error from the query codec)
// into the Query member of InterfaceError.
func wrapQueryErr(err error) *InterfaceError {
	if err == nil {
		return nil
	}
	if _, ok := err.(*query.Error); ok {
		return wrapErr(KindQuery, err)
	}
	return wrapErr(KindQuery, err)
}
