// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

package model

import (
	"errors"
	"fmt"
)

// ErrorKind is the stable tag of a federation error. It is what gets recorded
// as the outcome of a failed request and what travels between providers.
type ErrorKind string

const (
	KindUnauthenticated         ErrorKind = "Unauthenticated"
	KindUnauthorized            ErrorKind = "Unauthorized"
	KindInvalidParameter        ErrorKind = "InvalidParameter"
	KindMismatchingResourceType ErrorKind = "MismatchingResourceType"
	KindInstanceNotFound        ErrorKind = "InstanceNotFound"
	KindUnexpected              ErrorKind = "Unexpected"
	KindUnavailableProvider     ErrorKind = "UnavailableProvider"
	KindNotImplemented          ErrorKind = "NotImplemented"
	KindQuotaExceeded           ErrorKind = "QuotaExceeded"
	KindRemoteCommunication     ErrorKind = "RemoteCommunication"
)

var errorKinds = map[ErrorKind]struct{}{
	KindUnauthenticated:         {},
	KindUnauthorized:            {},
	KindInvalidParameter:        {},
	KindMismatchingResourceType: {},
	KindInstanceNotFound:        {},
	KindUnexpected:              {},
	KindUnavailableProvider:     {},
	KindNotImplemented:          {},
	KindQuotaExceeded:           {},
	KindRemoteCommunication:     {},
}

// ParseErrorKind reports whether s names a known kind.
func ParseErrorKind(s string) (ErrorKind, bool) {
	k := ErrorKind(s)
	_, ok := errorKinds[k]
	return k, ok
}

// FederationError is the only error type the connectors let escape.
type FederationError struct {
	Kind    ErrorKind
	Message string
	Cause   error
}

func (e *FederationError) Error() string {
	if e.Message == "" {
		return string(e.Kind)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *FederationError) Unwrap() error {
	return e.Cause
}

// Is matches on kind so errors.Is(err, ErrInstanceNotFound) holds for any
// instance-not-found error regardless of message.
func (e *FederationError) Is(target error) bool {
	var fe *FederationError
	if !errors.As(target, &fe) {
		return false
	}
	return fe.Kind == e.Kind
}

var (
	ErrUnauthenticated         = &FederationError{Kind: KindUnauthenticated}
	ErrUnauthorized            = &FederationError{Kind: KindUnauthorized}
	ErrInvalidParameter        = &FederationError{Kind: KindInvalidParameter}
	ErrMismatchingResourceType = &FederationError{Kind: KindMismatchingResourceType}
	ErrInstanceNotFound        = &FederationError{Kind: KindInstanceNotFound}
	ErrUnexpected              = &FederationError{Kind: KindUnexpected}
	ErrUnavailableProvider     = &FederationError{Kind: KindUnavailableProvider}
	ErrNotImplemented          = &FederationError{Kind: KindNotImplemented}
	ErrQuotaExceeded           = &FederationError{Kind: KindQuotaExceeded}
	ErrRemoteCommunication     = &FederationError{Kind: KindRemoteCommunication}
)

func NewError(kind ErrorKind, format string, args ...any) *FederationError {
	return &FederationError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func WrapError(kind ErrorKind, cause error) *FederationError {
	msg := ""
	if cause != nil {
		msg = cause.Error()
	}
	return &FederationError{Kind: kind, Message: msg, Cause: cause}
}

func NewUnauthenticatedError(format string, args ...any) *FederationError {
	return NewError(KindUnauthenticated, format, args...)
}

func NewInvalidParameterError(format string, args ...any) *FederationError {
	return NewError(KindInvalidParameter, format, args...)
}

func NewMismatchingResourceTypeError(declared ResourceType, actual any) *FederationError {
	return NewError(KindMismatchingResourceType, "order declared as %s is a %T", declared, actual)
}

func NewInstanceNotFoundError(format string, args ...any) *FederationError {
	return NewError(KindInstanceNotFound, format, args...)
}

func NewUnexpectedError(format string, args ...any) *FederationError {
	return NewError(KindUnexpected, format, args...)
}

func NewUnavailableProviderError(format string, args ...any) *FederationError {
	return NewError(KindUnavailableProvider, format, args...)
}

// IsFederationError tells recognized errors from unanticipated ones.
func IsFederationError(err error) bool {
	var fe *FederationError
	return errors.As(err, &fe)
}

// KindOf returns the stable tag used as the audit outcome of a failure. Errors
// outside the federation taxonomy are tagged with their Go type name.
func KindOf(err error) string {
	if err == nil {
		return ""
	}
	var fe *FederationError
	if errors.As(err, &fe) {
		return string(fe.Kind)
	}
	return fmt.Sprintf("%T", err)
}
