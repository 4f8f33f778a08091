package services

import (
	"fmt"
	"net/http"

	"aliadodoc/pkg/doctypes"

	"google.golang.org/genai"
)

// Options configures the service set built by NewServices.
type Options struct {
	Backend       genai.Backend
	BaseTransport http.RoundTripper
	MarkdownStyle string
	WordWrap      int
}

// Services is the initialized service set used by the shell and the CLI.
type Services struct {
	Registry    *Registry
	Transport   *TransportService
	Clients     *ClientFactoryService
	RemoteFiles *RemoteFileService
	Attachments *AttachmentService
	Catalog     *ModelCatalogService
	Generation  *GenerationService
	Stream      *StreamService
	Markdown    *MarkdownService
	Clipboard   *ClipboardService
}

// NewServices registers every service in dependency order and initializes them.
func NewServices(opts Options) (*Services, error) {
	s := &Services{Registry: NewRegistry()}

	s.Transport = NewTransportService(opts.BaseTransport)
	s.Clients = NewClientFactoryService(opts.Backend, s.Transport.RoundTripper())
	s.RemoteFiles = NewRemoteFileService(s.Clients)
	s.Attachments = NewAttachmentService(s.RemoteFiles)
	s.Catalog = NewModelCatalogService()
	s.Generation = NewGenerationService(s.Clients, s.Catalog)
	s.Stream = NewStreamService()
	s.Markdown = NewMarkdownService(opts.MarkdownStyle, opts.WordWrap)
	s.Clipboard = NewClipboardService()

	for _, service := range []doctypes.Service{
		s.Transport, s.Clients, s.RemoteFiles, s.Attachments, s.Catalog,
		s.Generation, s.Stream, s.Markdown, s.Clipboard,
	} {
		if err := s.Registry.RegisterService(service); err != nil {
			return nil, fmt.Errorf("failed to register services: %w", err)
		}
	}

	if err := s.Registry.InitializeAll(); err != nil {
		return nil, err
	}
	return s, nil
}
