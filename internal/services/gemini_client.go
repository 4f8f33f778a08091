package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"net/http"
	"sync"

	"aliadodoc/internal/logger"
	"aliadodoc/pkg/doctypes"

	"google.golang.org/genai"
)

// errFilesUnsupported is returned when the configured backend has no Files API.
var errFilesUnsupported = errors.New("file uploads are only supported in the Gemini Developer client")

// GeminiClient implements GeminiAPI on top of google.golang.org/genai.
// The underlying genai client is created lazily on the first request.
type GeminiClient struct {
	apiKey    string
	backend   genai.Backend
	transport http.RoundTripper

	mu     sync.Mutex
	client *genai.Client
}

// NewGeminiClient creates a new Gemini client with lazy initialization.
// A nil transport uses the genai default HTTP client.
func NewGeminiClient(apiKey string, backend genai.Backend, transport http.RoundTripper) *GeminiClient {
	return &GeminiClient{
		apiKey:    apiKey,
		backend:   backend,
		transport: transport,
	}
}

// IsConfigured returns true if the client has an API key.
func (c *GeminiClient) IsConfigured() bool {
	return c.apiKey != ""
}

// initializeClientIfNeeded initializes the genai client if it hasn't been initialized yet.
func (c *GeminiClient) initializeClientIfNeeded(ctx context.Context) (*genai.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.client != nil {
		return c.client, nil
	}

	if c.apiKey == "" {
		return nil, doctypes.NewError(doctypes.KindAuthentication, "client", errors.New("google API key not configured"))
	}

	clientConfig := &genai.ClientConfig{
		APIKey:  c.apiKey,
		Backend: c.backend,
	}
	if c.transport != nil {
		clientConfig.HTTPClient = &http.Client{Transport: c.transport}
	}

	client, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	logger.Debug("Gemini client initialized", "backend", client.ClientConfig().Backend.String())
	c.client = client
	return client, nil
}

// filesClient returns the initialized client, refusing backends without a Files API.
func (c *GeminiClient) filesClient(ctx context.Context) (*genai.Client, error) {
	client, err := c.initializeClientIfNeeded(ctx)
	if err != nil {
		return nil, err
	}
	if client.ClientConfig().Backend == genai.BackendVertexAI || client.Files == nil {
		return nil, doctypes.NewError(doctypes.KindCompatibility, "files", errFilesUnsupported)
	}
	return client, nil
}

// UploadFile uploads r to the Files API.
func (c *GeminiClient) UploadFile(ctx context.Context, r io.Reader, config *genai.UploadFileConfig) (*genai.File, error) {
	client, err := c.filesClient(ctx)
	if err != nil {
		return nil, err
	}
	return client.Files.Upload(ctx, r, config)
}

// GetFile fetches the current metadata of an uploaded file.
func (c *GeminiClient) GetFile(ctx context.Context, name string) (*genai.File, error) {
	client, err := c.filesClient(ctx)
	if err != nil {
		return nil, err
	}
	return client.Files.Get(ctx, name, nil)
}

// DeleteFile removes an uploaded file.
func (c *GeminiClient) DeleteFile(ctx context.Context, name string) error {
	client, err := c.filesClient(ctx)
	if err != nil {
		return err
	}
	_, err = client.Files.Delete(ctx, name, nil)
	return err
}

// GenerateContentStream starts a streamed generation. Initialization failures
// are delivered as the first element of the stream.
func (c *GeminiClient) GenerateContentStream(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) iter.Seq2[*genai.GenerateContentResponse, error] {
	client, err := c.initializeClientIfNeeded(ctx)
	if err != nil {
		return func(yield func(*genai.GenerateContentResponse, error) bool) {
			yield(nil, err)
		}
	}
	return client.Models.GenerateContentStream(ctx, model, contents, config)
}
