package services

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"aliadodoc/internal/logger"
	"aliadodoc/pkg/doctypes"

	"google.golang.org/genai"
)

// ErrMissingCredential is wrapped in the authentication error returned for an empty credential.
var ErrMissingCredential = errors.New("no API key configured (set GEMINI_API_KEY)")

// ClientFactoryService implements ClientProvider.
// It caches one GeminiClient per credential.
type ClientFactoryService struct {
	initialized bool
	backend     genai.Backend
	transport   http.RoundTripper

	mu      sync.Mutex
	clients map[string]GeminiAPI
	create  func(apiKey string) GeminiAPI
}

// NewClientFactoryService creates a new ClientFactoryService instance.
// A nil transport uses the genai default.
func NewClientFactoryService(backend genai.Backend, transport http.RoundTripper) *ClientFactoryService {
	f := &ClientFactoryService{
		backend:   backend,
		transport: transport,
		clients:   make(map[string]GeminiAPI),
	}
	f.create = func(apiKey string) GeminiAPI {
		return NewGeminiClient(apiKey, f.backend, f.transport)
	}
	return f
}

// Name returns the service name "client_factory" for registration.
func (f *ClientFactoryService) Name() string {
	return "client_factory"
}

// Initialize sets up the ClientFactoryService for operation.
func (f *ClientFactoryService) Initialize() error {
	logger.ServiceOperation("client_factory", "initialize", "starting")
	f.initialized = true
	logger.ServiceOperation("client_factory", "initialize", "completed")
	return nil
}

// ClientFor returns the cached client for credential, creating it on first use.
func (f *ClientFactoryService) ClientFor(credential string) (GeminiAPI, error) {
	if !f.initialized {
		return nil, fmt.Errorf("client factory service not initialized")
	}

	if credential == "" {
		return nil, doctypes.NewError(doctypes.KindAuthentication, "client", ErrMissingCredential)
	}

	clientID := f.generateClientID(credential)

	f.mu.Lock()
	defer f.mu.Unlock()

	if client, exists := f.clients[clientID]; exists {
		logger.Debug("Returning cached Gemini client", "clientID", clientID)
		return client, nil
	}

	client := f.create(credential)
	f.clients[clientID] = client

	logger.Debug("Created new Gemini client", "clientID", clientID)
	return client, nil
}

// ClientCount returns the number of cached clients.
func (f *ClientFactoryService) ClientCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.clients)
}

// generateClientID hashes the credential so it never appears in logs.
// Format: "gemini:a1b2c3d4".
func (f *ClientFactoryService) generateClientID(credential string) string {
	hash := sha256.Sum256([]byte(credential))
	return fmt.Sprintf("gemini:%s", hex.EncodeToString(hash[:])[:8])
}
