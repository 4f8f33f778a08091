package services

import (
	"errors"
	"net/http"
	"strings"

	"aliadodoc/pkg/doctypes"

	"google.golang.org/genai"
)

// Lowercase fragments of remote error messages, by kind.
var (
	authMarkers = []string{
		"api key not valid",
		"api_key_invalid",
		"api key expired",
		"api key was reported as leaked",
		"unregistered callers",
		"unauthenticated",
	}
	staleFileMarkers = []string{
		"permission to access the file",
		"file not found",
		"file is not in an active state",
	}
	quotaMarkers = []string{
		"resource_exhausted",
		"quota",
		"rate limit",
		"error 429",
	}
	compatibilityMarkers = []string{
		"only supported in the gemini developer client",
		"not supported by this client",
	}
	formatMarkers = []string{
		"unsupported mime",
		"mime type",
		"unsupported file",
		"unsupported format",
	}
)

// classifyRemoteError maps a remote failure to the error taxonomy.
// Errors that are already classified keep their kind.
func classifyRemoteError(op string, err error) *doctypes.Error {
	var classified *doctypes.Error
	if errors.As(err, &classified) {
		return classified
	}

	kind := remoteErrorKind(err)
	return doctypes.NewError(kind, op, err)
}

// remoteErrorKind inspects status codes first and the message text second.
// The genai uploader flattens errors with %s, so text matching must stay.
func remoteErrorKind(err error) doctypes.ErrorKind {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusUnauthorized:
			return doctypes.KindAuthentication
		case http.StatusTooManyRequests:
			return doctypes.KindQuotaExceeded
		}
	}

	msg := strings.ToLower(err.Error())
	switch {
	case containsAny(msg, authMarkers):
		return doctypes.KindAuthentication
	case containsAny(msg, quotaMarkers):
		return doctypes.KindQuotaExceeded
	case containsAny(msg, compatibilityMarkers):
		return doctypes.KindCompatibility
	case containsAny(msg, formatMarkers):
		return doctypes.KindUnsupportedFormat
	default:
		return doctypes.KindGeneric
	}
}

// isStaleFileError reports whether err says a referenced remote file expired
// or was deleted. The service answers 403 PERMISSION_DENIED for those, which
// says nothing about the credential.
func isStaleFileError(err error) bool {
	if err == nil {
		return false
	}
	var apiErr genai.APIError
	if errors.As(err, &apiErr) && apiErr.Code != http.StatusForbidden && apiErr.Code != http.StatusNotFound && apiErr.Code != http.StatusBadRequest {
		return false
	}
	return containsAny(strings.ToLower(err.Error()), staleFileMarkers)
}

func containsAny(s string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(s, m) {
			return true
		}
	}
	return false
}
