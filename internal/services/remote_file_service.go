package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"aliadodoc/internal/logger"
	"aliadodoc/pkg/doctypes"

	"github.com/charmbracelet/log"
	"google.golang.org/genai"
)

// Defaults for waiting on server-side processing of an uploaded file.
const (
	DefaultPollInterval = 2 * time.Second
	DefaultMaxPolls     = 30
)

// RemoteFileService owns the lifecycle of files uploaded to the Gemini Files
// API: upload, processing wait, and best-effort deletion. It remembers every
// handle it created so they can be purged on demand.
type RemoteFileService struct {
	initialized  bool
	clients      ClientProvider
	pollInterval time.Duration
	maxPolls     int
	log          *log.Logger

	mu      sync.Mutex
	live    []doctypes.RemoteFileHandle
	deleted map[string]bool
}

// NewRemoteFileService creates a new RemoteFileService backed by clients.
func NewRemoteFileService(clients ClientProvider) *RemoteFileService {
	return &RemoteFileService{
		clients:      clients,
		pollInterval: DefaultPollInterval,
		maxPolls:     DefaultMaxPolls,
		deleted:      make(map[string]bool),
	}
}

// Name returns the service name "remote_files" for registration.
func (r *RemoteFileService) Name() string {
	return "remote_files"
}

// Initialize sets up the RemoteFileService for operation.
func (r *RemoteFileService) Initialize() error {
	if r.clients == nil {
		return fmt.Errorf("remote file service requires a client provider")
	}
	r.log = logger.NewStyledLogger("Files")
	r.initialized = true
	return nil
}

// SetPolling overrides how long uploads wait for server-side processing.
func (r *RemoteFileService) SetPolling(interval time.Duration, maxPolls int) {
	r.pollInterval = interval
	r.maxPolls = maxPolls
}

// Upload stores data remotely and waits until the file leaves the PROCESSING state.
func (r *RemoteFileService) Upload(ctx context.Context, credential string, data []byte, displayName, mediaType string) (doctypes.RemoteFileHandle, error) {
	if !r.initialized {
		return doctypes.RemoteFileHandle{}, fmt.Errorf("remote file service not initialized")
	}
	if credential == "" {
		return doctypes.RemoteFileHandle{}, doctypes.NewError(doctypes.KindAuthentication, "upload", ErrMissingCredential)
	}

	client, err := r.clients.ClientFor(credential)
	if err != nil {
		return doctypes.RemoteFileHandle{}, classifyRemoteError("upload", err)
	}

	file, err := client.UploadFile(ctx, bytes.NewReader(data), &genai.UploadFileConfig{
		MIMEType:    mediaType,
		DisplayName: displayName,
	})
	if err != nil {
		r.log.Error("Upload failed", "file", displayName, "error", err)
		return doctypes.RemoteFileHandle{}, classifyRemoteError("upload", err)
	}

	handle := handleFromFile(file, displayName, mediaType)
	r.track(handle)
	r.log.Info("Uploaded", "file", displayName, "name", handle.Name)

	if err := r.awaitActive(ctx, client, file); err != nil {
		r.Delete(ctx, credential, handle)
		return doctypes.RemoteFileHandle{}, err
	}

	return handle, nil
}

// awaitActive polls the file until processing finishes. Files still
// processing after maxPolls are returned as-is and left to the model call.
func (r *RemoteFileService) awaitActive(ctx context.Context, client FileStore, file *genai.File) error {
	for polls := 0; file.State == genai.FileStateProcessing; polls++ {
		if polls >= r.maxPolls {
			r.log.Warn("File still processing, continuing", "name", file.Name)
			return nil
		}

		select {
		case <-ctx.Done():
			return doctypes.NewError(doctypes.KindGeneric, "upload", ctx.Err())
		case <-time.After(r.pollInterval):
		}

		next, err := client.GetFile(ctx, file.Name)
		if err != nil {
			return classifyRemoteError("upload", err)
		}
		file = next
	}

	if file.State == genai.FileStateFailed {
		reason := "the service could not process this file"
		if file.Error != nil && file.Error.Message != "" {
			reason = file.Error.Message
		}
		return doctypes.NewError(doctypes.KindUnsupportedFormat, "upload", errors.New(reason))
	}
	return nil
}

// Delete removes a remote file. Failures are logged and swallowed, and a
// handle already deleted by this service is not sent again.
func (r *RemoteFileService) Delete(ctx context.Context, credential string, handle doctypes.RemoteFileHandle) {
	if handle.Name == "" {
		return
	}

	r.mu.Lock()
	if r.deleted[handle.Name] {
		r.mu.Unlock()
		logger.Debug("Remote file already deleted", "name", handle.Name)
		return
	}
	r.deleted[handle.Name] = true
	r.untrackLocked(handle.Name)
	r.mu.Unlock()

	if err := r.deleteRemote(ctx, credential, handle); err != nil {
		cleanupErr := doctypes.NewError(doctypes.KindCleanup, "delete", err)
		if r.log != nil {
			r.log.Warn("Cleanup failed", "name", handle.Name, "error", cleanupErr)
		}
		return
	}
	if r.log != nil {
		r.log.Info("Deleted", "name", handle.Name)
	}
}

func (r *RemoteFileService) deleteRemote(ctx context.Context, credential string, handle doctypes.RemoteFileHandle) error {
	if credential == "" {
		return ErrMissingCredential
	}
	client, err := r.clients.ClientFor(credential)
	if err != nil {
		return err
	}
	return client.DeleteFile(ctx, handle.Name)
}

// Purge deletes every handle this service uploaded and has not deleted yet.
// It returns how many deletions were attempted.
func (r *RemoteFileService) Purge(ctx context.Context, credential string) int {
	pending := r.Live()
	for _, handle := range pending {
		r.Delete(ctx, credential, handle)
	}
	return len(pending)
}

// Live returns the handles uploaded by this service that are not yet deleted.
func (r *RemoteFileService) Live() []doctypes.RemoteFileHandle {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]doctypes.RemoteFileHandle, len(r.live))
	copy(out, r.live)
	return out
}

func (r *RemoteFileService) track(handle doctypes.RemoteFileHandle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.deleted, handle.Name)
	r.live = append(r.live, handle)
}

func (r *RemoteFileService) untrackLocked(name string) {
	for i, h := range r.live {
		if h.Name == name {
			r.live = append(r.live[:i], r.live[i+1:]...)
			return
		}
	}
}

func handleFromFile(file *genai.File, displayName, mediaType string) doctypes.RemoteFileHandle {
	handle := doctypes.RemoteFileHandle{
		Name:        file.Name,
		DisplayName: file.DisplayName,
		URI:         file.URI,
		MediaType:   file.MIMEType,
	}
	if handle.DisplayName == "" {
		handle.DisplayName = displayName
	}
	if handle.MediaType == "" {
		handle.MediaType = mediaType
	}
	return handle
}
