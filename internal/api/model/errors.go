// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

package model

import (
	"errors"
	"net/http"

	pkgmodel "github.com/platform-engineering-labs/skyfed/pkg/model"
)

// ErrorResponse is the body of every failed API call.
type ErrorResponse struct {
	Kind    pkgmodel.ErrorKind `json:"error"`
	Message string             `json:"message,omitempty"`
}

func NewErrorResponse(err error) ErrorResponse {
	var fe *pkgmodel.FederationError
	if errors.As(err, &fe) {
		return ErrorResponse{Kind: fe.Kind, Message: fe.Message}
	}
	return ErrorResponse{Kind: pkgmodel.KindUnexpected, Message: err.Error()}
}

// Err rebuilds the federation error the agent reported.
func (e ErrorResponse) Err() error {
	kind, ok := pkgmodel.ParseErrorKind(string(e.Kind))
	if !ok {
		kind = pkgmodel.KindUnexpected
	}
	return &pkgmodel.FederationError{Kind: kind, Message: e.Message}
}

var statusByKind = map[pkgmodel.ErrorKind]int{
	pkgmodel.KindUnauthenticated:         http.StatusUnauthorized,
	pkgmodel.KindUnauthorized:            http.StatusForbidden,
	pkgmodel.KindInvalidParameter:        http.StatusBadRequest,
	pkgmodel.KindMismatchingResourceType: http.StatusBadRequest,
	pkgmodel.KindInstanceNotFound:        http.StatusNotFound,
	pkgmodel.KindNotImplemented:          http.StatusNotImplemented,
	pkgmodel.KindQuotaExceeded:           http.StatusConflict,
	pkgmodel.KindUnavailableProvider:     http.StatusServiceUnavailable,
	pkgmodel.KindRemoteCommunication:     http.StatusBadGateway,
	pkgmodel.KindUnexpected:              http.StatusInternalServerError,
}

// StatusOf is the HTTP status an error kind is reported with.
func StatusOf(kind pkgmodel.ErrorKind) int {
	if status, ok := statusByKind[kind]; ok {
		return status
	}
	return http.StatusInternalServerError
}
