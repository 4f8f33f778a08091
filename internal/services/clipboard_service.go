package services

import (
	"errors"
	"fmt"
	"time"

	"aliadodoc/internal/logger"
	"aliadodoc/pkg/doctypes"
)

// ErrClipboardEmpty is returned when the clipboard holds neither an image nor text.
var ErrClipboardEmpty = errors.New("clipboard is empty")

// ClipboardService reads the system clipboard as an attachment upload.
type ClipboardService struct {
	initialized bool
	available   bool
	now         func() time.Time
}

// NewClipboardService creates a new ClipboardService instance.
func NewClipboardService() *ClipboardService {
	return &ClipboardService{now: time.Now}
}

// Name returns the service name "clipboard" for registration.
func (c *ClipboardService) Name() string {
	return "clipboard"
}

// Initialize probes the platform clipboard. A missing clipboard is not an
// error; Read reports it instead.
func (c *ClipboardService) Initialize() error {
	c.initialized = true
	if !clipboardAvailable {
		return nil
	}
	if err := initClipboard(); err != nil {
		logger.Debug("Clipboard unavailable", "error", err)
		return nil
	}
	c.available = true
	return nil
}

// Available reports whether the clipboard can be read.
func (c *ClipboardService) Available() bool {
	return c.available
}

// Read returns the clipboard content as an upload. Images win over text.
func (c *ClipboardService) Read() (doctypes.Upload, error) {
	if !c.initialized {
		return doctypes.Upload{}, fmt.Errorf("clipboard service not initialized")
	}
	if !c.available {
		return doctypes.Upload{}, errClipboardUnavailable
	}

	stamp := c.now().Format("20060102-150405")
	if img := readClipboardImage(); len(img) > 0 {
		return doctypes.Upload{Name: "clipboard-" + stamp + ".png", MediaType: "image/png", Data: img}, nil
	}
	if text := readClipboardText(); len(text) > 0 {
		return doctypes.Upload{Name: "clipboard-" + stamp + ".txt", MediaType: "text/plain", Data: text}, nil
	}
	return doctypes.Upload{}, ErrClipboardEmpty
}
