package services

import (
	"context"
	"fmt"
	"iter"
	"strings"

	"aliadodoc/internal/logger"
	"aliadodoc/pkg/doctypes"

	"google.golang.org/genai"
)

// User-facing error texts. They are rendered as assistant replies.
const (
	InvalidCredentialText = "❌ The API key is not valid or is missing. Set a valid GEMINI_API_KEY in your .env file and restart AliadoDoc."
	StaleAttachmentText   = "❌ The attached file is no longer available on the server (uploads expire after 48 hours). It has been detached; attach it again to continue."
	quotaTextFormat       = "⏳ The quota for model `%s` has been exhausted."
	genericTextFormat     = "❌ Error: %v"
)

// GenerationService builds generation requests and starts streamed replies.
// Remote failures come back as error texts in the result, never as Go errors.
type GenerationService struct {
	initialized bool
	clients     ClientProvider
	catalog     AlternativeSuggester
}

// NewGenerationService creates a new GenerationService. catalog may be nil,
// in which case quota messages carry no model suggestion.
func NewGenerationService(clients ClientProvider, catalog AlternativeSuggester) *GenerationService {
	return &GenerationService{
		clients: clients,
		catalog: catalog,
	}
}

// Name returns the service name "generation" for registration.
func (g *GenerationService) Name() string {
	return "generation"
}

// Initialize sets up the GenerationService for operation.
func (g *GenerationService) Initialize() error {
	if g.clients == nil {
		return fmt.Errorf("generation service requires a client provider")
	}
	g.initialized = true
	return nil
}

// Generate sends prompt, followed by content when present, to modelID with
// systemInstruction bound for the whole call. The first stream element is
// pulled eagerly so transport and credential failures are reported as an
// error text instead of surfacing mid-render. The returned stream must be
// consumed to release the underlying connection.
func (g *GenerationService) Generate(ctx context.Context, credential, modelID, prompt, systemInstruction string, content doctypes.Content) doctypes.GenerationResult {
	if !g.initialized {
		return g.errorResult(modelID, fmt.Errorf("generation service not initialized"))
	}

	client, err := g.clients.ClientFor(credential)
	if err != nil {
		return g.errorResult(modelID, err)
	}

	contents := []*genai.Content{genai.NewContentFromParts(BuildParts(prompt, content), genai.RoleUser)}
	config := &genai.GenerateContentConfig{}
	if systemInstruction != "" {
		config.SystemInstruction = genai.NewContentFromText(systemInstruction, genai.RoleUser)
	}

	logger.Debug("Generation starting", "model", modelID, "parts", len(contents[0].Parts))

	next, stop := iter.Pull2(client.GenerateContentStream(ctx, modelID, contents, config))
	first, err, ok := next()
	if !ok {
		stop()
		return doctypes.GenerationResult{Stream: doctypes.StreamOf()}
	}
	if err != nil {
		stop()
		return g.errorResult(modelID, err)
	}

	stream := func(yield func(doctypes.Fragment, error) bool) {
		defer stop()
		if !yield(FragmentFromResponse(first), nil) {
			return
		}
		for {
			resp, err, ok := next()
			if !ok {
				return
			}
			if err != nil {
				yield(nil, classifyRemoteError("stream", err))
				return
			}
			if !yield(FragmentFromResponse(resp), nil) {
				return
			}
		}
	}
	return doctypes.GenerationResult{Stream: stream}
}

// BuildParts orders the request parts: the prompt first, then the attachment
// if present and non-empty.
func BuildParts(prompt string, content doctypes.Content) []*genai.Part {
	parts := []*genai.Part{genai.NewPartFromText(prompt)}
	if doctypes.IsEmptyContent(content) {
		return parts
	}

	switch c := content.(type) {
	case doctypes.ImageContent:
		parts = append(parts, genai.NewPartFromBytes(c.Data, c.MediaType))
	case doctypes.TextContent:
		parts = append(parts, genai.NewPartFromText(c.Text))
	case doctypes.RemoteFileContent:
		parts = append(parts, genai.NewPartFromURI(c.Handle.URI, c.Handle.MediaType))
	}
	return parts
}

// errorResult converts err into the user-facing error text for its kind.
func (g *GenerationService) errorResult(modelID string, err error) doctypes.GenerationResult {
	classified := classifyRemoteError("generate", err)
	logger.Debug("Generation failed", "model", modelID, "kind", classified.Kind.String(), "error", err)

	if classified.Kind != doctypes.KindAuthentication && isStaleFileError(err) {
		return doctypes.GenerationResult{ErrorText: StaleAttachmentText, ErrorKind: doctypes.KindGeneric, StaleAttachment: true}
	}

	switch classified.Kind {
	case doctypes.KindAuthentication:
		return doctypes.GenerationResult{ErrorText: InvalidCredentialText, ErrorKind: doctypes.KindAuthentication}
	case doctypes.KindQuotaExceeded:
		return doctypes.GenerationResult{ErrorText: g.quotaText(modelID, err), ErrorKind: doctypes.KindQuotaExceeded}
	default:
		return doctypes.GenerationResult{ErrorText: fmt.Sprintf(genericTextFormat, err), ErrorKind: classified.Kind}
	}
}

// quotaText names the model, suggests a cheaper one and billing, and adds a
// wait estimate when the service provided a retry delay.
func (g *GenerationService) quotaText(modelID string, err error) string {
	var b strings.Builder
	fmt.Fprintf(&b, quotaTextFormat, modelID)

	suggestion := " Try a cheaper model"
	if g.catalog != nil {
		if alt, ok := g.catalog.CheaperAlternative(modelID); ok {
			suggestion = fmt.Sprintf(" Try a cheaper model such as `%s` (`\\model %s`)", alt, alt)
		}
	}
	b.WriteString(suggestion)
	b.WriteString(" or check the billing plan of your Google AI Studio project.")

	if delay, ok := RetryDelayFromError(err); ok {
		fmt.Fprintf(&b, " Estimated wait: %s.", FormatWait(delay))
	}
	return b.String()
}
