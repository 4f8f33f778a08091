package services

import (
	"errors"
	"fmt"
	"testing"

	"aliadodoc/pkg/doctypes"

	"github.com/stretchr/testify/assert"
	"google.golang.org/genai"
)

func TestClassifyRemoteError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected doctypes.ErrorKind
	}{
		{"invalid key message", genai.APIError{Code: 400, Status: "INVALID_ARGUMENT", Message: "API key not valid. Please pass a valid API key."}, doctypes.KindAuthentication},
		{"unauthorized status", genai.APIError{Code: 401, Status: "UNAUTHENTICATED"}, doctypes.KindAuthentication},
		{"forbidden status alone", genai.APIError{Code: 403, Status: "PERMISSION_DENIED"}, doctypes.KindGeneric},
		{"forbidden expired file", genai.APIError{Code: 403, Status: "PERMISSION_DENIED", Message: "You do not have permission to access the File abc123 or it may not exist."}, doctypes.KindGeneric},
		{"forbidden without key", genai.APIError{Code: 403, Status: "PERMISSION_DENIED", Message: "Method doesn't allow unregistered callers (callers without established identity). Please use API Key or other form of API consumer identity to call this API."}, doctypes.KindAuthentication},
		{"forbidden leaked key", genai.APIError{Code: 403, Status: "PERMISSION_DENIED", Message: "Your API key was reported as leaked. Please use another API key."}, doctypes.KindAuthentication},
		{"flattened upload error", errors.New("failed to upload file: Error 400, Message: API key not valid, Status: INVALID_ARGUMENT"), doctypes.KindAuthentication},
		{"quota status", genai.APIError{Code: 429, Status: "RESOURCE_EXHAUSTED"}, doctypes.KindQuotaExceeded},
		{"quota text", errors.New("You exceeded your current quota"), doctypes.KindQuotaExceeded},
		{"vertex files", errors.New("method Create is only supported in the Gemini Developer client."), doctypes.KindCompatibility},
		{"mime rejected", errors.New("Unsupported MIME type: application/x-foo"), doctypes.KindUnsupportedFormat},
		{"generic", errors.New("connection reset by peer"), doctypes.KindGeneric},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			classified := classifyRemoteError("op", tt.err)
			assert.Equal(t, tt.expected, classified.Kind)
			assert.Equal(t, tt.err, classified.Err)
		})
	}
}

func TestIsStaleFileError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"expired file", genai.APIError{Code: 403, Status: "PERMISSION_DENIED", Message: "You do not have permission to access the File abc123 or it may not exist."}, true},
		{"missing file", genai.APIError{Code: 404, Status: "NOT_FOUND", Message: "File not found."}, true},
		{"rejected key", genai.APIError{Code: 400, Status: "INVALID_ARGUMENT", Message: "API key not valid. Please pass a valid API key."}, false},
		{"server error mentioning file", genai.APIError{Code: 500, Status: "INTERNAL", Message: "File not found in cache"}, false},
		{"nil", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, isStaleFileError(tt.err))
		})
	}
}

func TestClassifyRemoteError_KeepsExistingKind(t *testing.T) {
	original := doctypes.NewError(doctypes.KindCompatibility, "files", errFilesUnsupported)
	classified := classifyRemoteError("upload", fmt.Errorf("wrapped: %w", original))
	assert.Same(t, original, classified)
}
