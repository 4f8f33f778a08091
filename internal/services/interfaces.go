package services

import (
	"context"
	"io"
	"iter"

	"google.golang.org/genai"
)

// FileStore is the remote file-storage surface used by the remote file lifecycle manager.
type FileStore interface {
	UploadFile(ctx context.Context, r io.Reader, config *genai.UploadFileConfig) (*genai.File, error)
	GetFile(ctx context.Context, name string) (*genai.File, error)
	DeleteFile(ctx context.Context, name string) error
}

// ContentStreamer is the streaming generation surface used by the generation service.
type ContentStreamer interface {
	GenerateContentStream(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) iter.Seq2[*genai.GenerateContentResponse, error]
}

// GeminiAPI is everything AliadoDoc needs from one authenticated Gemini client.
type GeminiAPI interface {
	FileStore
	ContentStreamer
}

// ClientProvider hands out Gemini clients keyed by credential.
// Implementations reject an empty credential with an authentication error.
type ClientProvider interface {
	ClientFor(credential string) (GeminiAPI, error)
}

// AlternativeSuggester proposes a cheaper model when the current one is rate limited.
type AlternativeSuggester interface {
	CheaperAlternative(modelID string) (string, bool)
}
