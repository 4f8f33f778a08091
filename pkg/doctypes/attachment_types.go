package doctypes

import (
	"image"
	"time"
)

// Class is the handling class assigned to an uploaded artifact.
// It is computed once by the classifier and never re-derived from the media type.
type Class int

const (
	// ClassUnsupported marks artifacts that cannot be attached.
	ClassUnsupported Class = iota
	// ClassImage marks artifacts decoded into an in-memory image.
	ClassImage
	// ClassInlineText marks artifacts decoded into a UTF-8 string.
	ClassInlineText
	// ClassRemoteBinary marks artifacts uploaded to remote file storage.
	ClassRemoteBinary
)

// String returns the class name used in logs and previews.
func (c Class) String() string {
	switch c {
	case ClassImage:
		return "image"
	case ClassInlineText:
		return "inline_text"
	case ClassRemoteBinary:
		return "remote_binary"
	default:
		return "unsupported"
	}
}

// Upload is a raw artifact as received from the user. Data is consumed by
// materialization and is not retained by the session.
type Upload struct {
	Name      string
	MediaType string
	Data      []byte
}

// RemoteFileHandle references binary content stored by the remote service.
// Name is the server-assigned identifier ("files/abc123").
type RemoteFileHandle struct {
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	URI         string `json:"uri"`
	MediaType   string `json:"media_type"`
}

// Content is the materialized form of an attachment. The set of
// implementations is closed: ImageContent, TextContent and RemoteFileContent.
// A nil Content means no attachment.
type Content interface {
	Class() Class
	isContent()
}

// ImageContent is a decoded image. Data and MediaType hold the encoding sent
// to the model, which is the original bytes for formats the service accepts
// and a PNG re-encoding otherwise.
type ImageContent struct {
	Image     image.Image
	Format    string
	MediaType string
	Data      []byte
}

// Class implements Content.
func (ImageContent) Class() Class { return ClassImage }
func (ImageContent) isContent()   {}

// TextContent is a decoded UTF-8 document.
type TextContent struct {
	Text string
}

// Class implements Content.
func (TextContent) Class() Class { return ClassInlineText }
func (TextContent) isContent()   {}

// RemoteFileContent wraps a live remote handle.
type RemoteFileContent struct {
	Handle RemoteFileHandle
}

// Class implements Content.
func (RemoteFileContent) Class() Class { return ClassRemoteBinary }
func (RemoteFileContent) isContent()   {}

// IsEmptyContent reports whether c carries nothing worth sending to the model.
func IsEmptyContent(c Content) bool {
	switch v := c.(type) {
	case nil:
		return true
	case ImageContent:
		return v.Image == nil || len(v.Data) == 0
	case TextContent:
		return v.Text == ""
	case RemoteFileContent:
		return v.Handle.URI == ""
	default:
		return true
	}
}

// Attachment is the artifact currently associated with a session.
// Attachments are immutable once materialized.
type Attachment struct {
	Name       string
	MediaType  string
	Class      Class
	Content    Content
	AttachedAt time.Time
}

// RemoteHandle returns the remote handle held by the attachment, if any.
func (a *Attachment) RemoteHandle() (RemoteFileHandle, bool) {
	if a == nil {
		return RemoteFileHandle{}, false
	}
	if rc, ok := a.Content.(RemoteFileContent); ok {
		return rc.Handle, true
	}
	return RemoteFileHandle{}, false
}
