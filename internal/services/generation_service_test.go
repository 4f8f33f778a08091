package services

import (
	"context"
	"errors"
	"image"
	"testing"

	"aliadodoc/pkg/doctypes"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

type stubSuggester struct {
	alternative string
}

func (s stubSuggester) CheaperAlternative(string) (string, bool) {
	return s.alternative, s.alternative != ""
}

func newTestGenerationService(t *testing.T, client *fakeGemini, suggester AlternativeSuggester) (*GenerationService, *fakeProvider) {
	t.Helper()
	provider := &fakeProvider{client: client}
	service := NewGenerationService(provider, suggester)
	require.NoError(t, service.Initialize())
	return service, provider
}

func collect(t *testing.T, stream doctypes.FragmentStream) ([]string, error) {
	t.Helper()
	var texts []string
	for fragment, err := range stream {
		if err != nil {
			return texts, err
		}
		text, _ := fragment.Text()
		texts = append(texts, text)
	}
	return texts, nil
}

func TestBuildParts(t *testing.T) {
	parts := BuildParts("summarize", nil)
	require.Len(t, parts, 1)
	assert.Equal(t, "summarize", parts[0].Text)

	parts = BuildParts("summarize", doctypes.TextContent{Text: "body"})
	require.Len(t, parts, 2)
	assert.Equal(t, "summarize", parts[0].Text)
	assert.Equal(t, "body", parts[1].Text)

	parts = BuildParts("describe", doctypes.ImageContent{Image: image.NewRGBA(image.Rect(0, 0, 1, 1)), MediaType: "image/png", Data: []byte{1, 2}})
	require.Len(t, parts, 2)
	require.NotNil(t, parts[1].InlineData)
	assert.Equal(t, "image/png", parts[1].InlineData.MIMEType)

	parts = BuildParts("review", doctypes.RemoteFileContent{Handle: doctypes.RemoteFileHandle{Name: "files/a", URI: "https://files.test/a", MediaType: "application/pdf"}})
	require.Len(t, parts, 2)
	require.NotNil(t, parts[1].FileData)
	assert.Equal(t, "https://files.test/a", parts[1].FileData.FileURI)

	parts = BuildParts("empty", doctypes.TextContent{})
	assert.Len(t, parts, 1, "empty content is not sent")

	parts = BuildParts("review", doctypes.RemoteFileContent{Handle: doctypes.RemoteFileHandle{Name: "files/a", MediaType: "application/pdf"}})
	assert.Len(t, parts, 1, "a handle without a URI is not sent")
}

func TestGenerationService_Generate_Streams(t *testing.T) {
	client := newFakeGemini()
	client.streamResponses = []*genai.GenerateContentResponse{textResponse("Hel"), textResponse("lo")}
	service, _ := newTestGenerationService(t, client, nil)

	result := service.Generate(context.Background(), "key", "gemini-2.5-flash", "hi", "be brief", doctypes.TextContent{Text: "doc"})
	require.False(t, result.IsError())

	texts, err := collect(t, result.Stream)
	require.NoError(t, err)
	assert.Equal(t, []string{"Hel", "lo"}, texts)

	assert.Equal(t, "gemini-2.5-flash", client.lastModel)
	require.Len(t, client.lastContents, 1)
	require.Len(t, client.lastContents[0].Parts, 2)
	assert.Equal(t, "hi", client.lastContents[0].Parts[0].Text)
	assert.Equal(t, "doc", client.lastContents[0].Parts[1].Text)
	require.NotNil(t, client.lastConfig.SystemInstruction)
	assert.Equal(t, "be brief", client.lastConfig.SystemInstruction.Parts[0].Text)
}

func TestGenerationService_Generate_EmptyCredential(t *testing.T) {
	client := newFakeGemini()
	service, provider := newTestGenerationService(t, client, nil)

	result := service.Generate(context.Background(), "", "gemini-2.5-flash", "hi", "", nil)
	assert.True(t, result.IsError())
	assert.Equal(t, InvalidCredentialText, result.ErrorText)
	assert.Equal(t, doctypes.KindAuthentication, result.ErrorKind)
	assert.Empty(t, client.Calls())
	assert.Equal(t, 0, provider.requests)
}

func TestGenerationService_Generate_RejectedKeyOnFirstPull(t *testing.T) {
	client := newFakeGemini()
	client.streamErrAt = 0
	client.streamErr = genai.APIError{Code: 400, Status: "INVALID_ARGUMENT", Message: "API key not valid. Please pass a valid API key."}
	service, _ := newTestGenerationService(t, client, nil)

	result := service.Generate(context.Background(), "bad-key", "gemini-2.5-flash", "hi", "", nil)
	assert.True(t, result.IsError())
	assert.Equal(t, InvalidCredentialText, result.ErrorText)
	assert.Equal(t, doctypes.KindAuthentication, result.ErrorKind)
}

func TestGenerationService_Generate_ExpiredRemoteFile(t *testing.T) {
	client := newFakeGemini()
	client.streamErrAt = 0
	client.streamErr = genai.APIError{Code: 403, Status: "PERMISSION_DENIED", Message: "You do not have permission to access the File abc123 or it may not exist."}
	service, _ := newTestGenerationService(t, client, nil)

	content := doctypes.RemoteFileContent{Handle: doctypes.RemoteFileHandle{Name: "files/abc123", URI: "https://files.test/abc123", MediaType: "application/pdf"}}
	result := service.Generate(context.Background(), "valid-key", "gemini-2.5-flash", "summarize", "", content)
	require.True(t, result.IsError())
	assert.Equal(t, doctypes.KindGeneric, result.ErrorKind)
	assert.Equal(t, StaleAttachmentText, result.ErrorText)
	assert.True(t, result.StaleAttachment)
}

func TestGenerationService_Generate_QuotaExceeded(t *testing.T) {
	tests := []struct {
		name      string
		message   string
		suggester AlternativeSuggester
		contains  []string
		excludes  []string
	}{
		{
			name:      "fractional retry",
			message:   "You exceeded your current quota. Please retry in 42.0s.",
			suggester: stubSuggester{alternative: "gemini-2.5-flash-lite"},
			contains:  []string{"`gemini-2.5-pro`", "`gemini-2.5-flash-lite`", "billing", "Estimated wait: 42 s."},
			excludes:  []string{" min "},
		},
		{
			name:      "structured retry",
			message:   "Resource has been exhausted (e.g. check quota). retry_delay { seconds: 125 }",
			suggester: nil,
			contains:  []string{"`gemini-2.5-pro`", "cheaper model", "billing", "Estimated wait: 2 min 5 s."},
		},
		{
			name:      "no retry hint",
			message:   "Resource has been exhausted (e.g. check quota).",
			suggester: stubSuggester{},
			contains:  []string{"`gemini-2.5-pro`", "cheaper model", "billing"},
			excludes:  []string{"Estimated wait"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newFakeGemini()
			client.streamErrAt = 0
			client.streamErr = genai.APIError{Code: 429, Status: "RESOURCE_EXHAUSTED", Message: tt.message}
			service, _ := newTestGenerationService(t, client, tt.suggester)

			result := service.Generate(context.Background(), "key", "gemini-2.5-pro", "hi", "", nil)
			require.True(t, result.IsError())
			assert.Equal(t, doctypes.KindQuotaExceeded, result.ErrorKind)
			for _, s := range tt.contains {
				assert.Contains(t, result.ErrorText, s)
			}
			for _, s := range tt.excludes {
				assert.NotContains(t, result.ErrorText, s)
			}
		})
	}
}

func TestGenerationService_Generate_GenericError(t *testing.T) {
	client := newFakeGemini()
	client.streamErrAt = 0
	client.streamErr = errors.New("connection refused")
	service, _ := newTestGenerationService(t, client, nil)

	result := service.Generate(context.Background(), "key", "gemini-2.5-flash", "hi", "", nil)
	require.True(t, result.IsError())
	assert.Equal(t, "❌ Error: connection refused", result.ErrorText)
	assert.Equal(t, doctypes.KindGeneric, result.ErrorKind)
}

func TestGenerationService_Generate_MidStreamError(t *testing.T) {
	client := newFakeGemini()
	client.streamResponses = []*genai.GenerateContentResponse{textResponse("partial")}
	client.streamErrAt = 1
	client.streamErr = errors.New("stream reset")
	service, _ := newTestGenerationService(t, client, nil)

	result := service.Generate(context.Background(), "key", "gemini-2.5-flash", "hi", "", nil)
	require.False(t, result.IsError())

	texts, err := collect(t, result.Stream)
	assert.Equal(t, []string{"partial"}, texts)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stream reset")
}

func TestGenerationService_Generate_EmptyStream(t *testing.T) {
	service, _ := newTestGenerationService(t, newFakeGemini(), nil)

	result := service.Generate(context.Background(), "key", "gemini-2.5-flash", "hi", "", nil)
	require.False(t, result.IsError())
	texts, err := collect(t, result.Stream)
	assert.NoError(t, err)
	assert.Empty(t, texts)
}

func TestGenerationService_NotInitialized(t *testing.T) {
	service := NewGenerationService(&fakeProvider{client: newFakeGemini()}, nil)
	result := service.Generate(context.Background(), "key", "m", "hi", "", nil)
	assert.True(t, result.IsError())
	assert.Contains(t, result.ErrorText, "not initialized")
}
