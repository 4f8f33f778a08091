package shell

import (
	"context"
	"fmt"
	"image"
	"strings"

	"aliadodoc/internal/logger"
	"aliadodoc/pkg/doctypes"
)

// previewLines is how many lines of a text attachment \show prints.
const previewLines = 10

// AttachUpload replaces the current attachment with upload. The previous
// remote handle is deleted before the new upload is classified, and any
// failure leaves the session without an attachment.
func (s *Shell) AttachUpload(ctx context.Context, upload doctypes.Upload) error {
	if previous := s.session.Detach(); previous != nil {
		s.releaseAttachment(ctx, previous)
	}

	attachment, err := s.deps.Attacher.Attach(ctx, s.settings.Credential, upload)
	if err != nil {
		logger.Warn("Attachment failed", "file", upload.Name, "kind", doctypes.KindOf(err).String(), "error", err)
		return err
	}

	s.session.Attach(attachment)
	logger.Info("Attachment stored", "file", attachment.Name, "class", attachment.Class.String())
	return nil
}

// DetachCurrent removes the current attachment and releases its remote handle.
func (s *Shell) DetachCurrent(ctx context.Context) (*doctypes.Attachment, bool) {
	previous := s.session.Detach()
	if previous == nil {
		return nil, false
	}
	s.releaseAttachment(ctx, previous)
	return previous, true
}

// releaseAttachment deletes the remote handle held by a, if any.
func (s *Shell) releaseAttachment(ctx context.Context, a *doctypes.Attachment) {
	if handle, ok := a.RemoteHandle(); ok {
		s.deps.RemoteFiles.Delete(ctx, s.settings.Credential, handle)
	}
}

// Preview describes an attachment for \show.
func Preview(a *doctypes.Attachment) string {
	if a == nil {
		return "No file attached."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s (%s, %s)\n", a.Name, a.MediaType, a.Class)

	switch c := a.Content.(type) {
	case doctypes.ImageContent:
		fmt.Fprintf(&b, "Image %s, %s", c.Format, imageSize(c.Image))
		if c.MediaType != a.MediaType {
			fmt.Fprintf(&b, ", sent as %s", c.MediaType)
		}
		b.WriteString("\n")
	case doctypes.TextContent:
		lines := strings.Split(c.Text, "\n")
		shown := lines
		if len(shown) > previewLines {
			shown = shown[:previewLines]
		}
		for _, line := range shown {
			b.WriteString("  " + line + "\n")
		}
		if len(lines) > previewLines {
			fmt.Fprintf(&b, "  ... (%d more lines)\n", len(lines)-previewLines)
		}
	case doctypes.RemoteFileContent:
		fmt.Fprintf(&b, "Remote file %s\n", c.Handle.Name)
		if c.Handle.URI != "" {
			fmt.Fprintf(&b, "URI %s\n", c.Handle.URI)
		}
	}
	return b.String()
}

func imageSize(img image.Image) string {
	if img == nil {
		return "empty"
	}
	bounds := img.Bounds()
	return fmt.Sprintf("%dx%d", bounds.Dx(), bounds.Dy())
}
