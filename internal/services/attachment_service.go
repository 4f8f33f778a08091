package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif" // register GIF decoding
	_ "image/jpeg"
	"image/png"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"aliadodoc/internal/logger"
	"aliadodoc/pkg/doctypes"

	"github.com/gabriel-vasile/mimetype"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Suffixes and media types routed to remote file storage.
var (
	remoteSuffixes = map[string]bool{
		".doc": true, ".docx": true, ".pdf": true, ".xls": true, ".xlsx": true,
	}
	remoteMediaTypes = map[string]bool{
		"application/pdf":    true,
		"application/msword": true,
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true,
		"application/vnd.ms-excel": true,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet": true,
	}
	textSuffixes = map[string]bool{
		".py": true, ".md": true, ".csv": true, ".txt": true, ".json": true,
	}
	// inlineImageFormats are sent as-is; other decodable formats are re-encoded to PNG.
	inlineImageFormats = map[string]string{
		"png":  "image/png",
		"jpeg": "image/jpeg",
		"webp": "image/webp",
	}
)

// utf8BOM is dropped from the start of text attachments.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// SupportedExtensions lists the file suffixes accepted by \attach, for help and completion.
var SupportedExtensions = []string{".jpg", ".jpeg", ".png", ".webp", ".gif", ".txt", ".csv", ".py", ".md", ".json", ".pdf", ".doc", ".docx", ".xls", ".xlsx"}

// RemoteUploader uploads binary attachments to remote storage.
type RemoteUploader interface {
	Upload(ctx context.Context, credential string, data []byte, displayName, mediaType string) (doctypes.RemoteFileHandle, error)
}

// AttachmentService classifies uploaded artifacts and materializes them into
// the form the generation call accepts.
type AttachmentService struct {
	initialized bool
	remote      RemoteUploader
	now         func() time.Time
}

// NewAttachmentService creates a new AttachmentService that uploads binaries through remote.
func NewAttachmentService(remote RemoteUploader) *AttachmentService {
	return &AttachmentService{
		remote: remote,
		now:    time.Now,
	}
}

// Name returns the service name "attachment" for registration.
func (a *AttachmentService) Name() string {
	return "attachment"
}

// Initialize sets up the AttachmentService for operation.
func (a *AttachmentService) Initialize() error {
	if a.remote == nil {
		return fmt.Errorf("attachment service requires a remote uploader")
	}
	a.initialized = true
	return nil
}

// NormalizeMediaType lowercases a media type and strips its parameters.
func NormalizeMediaType(mediaType string) string {
	mediaType = strings.ToLower(strings.TrimSpace(mediaType))
	if i := strings.IndexByte(mediaType, ';'); i >= 0 {
		mediaType = strings.TrimSpace(mediaType[:i])
	}
	return mediaType
}

// Classify assigns exactly one handling class from the declared media type
// and the file name. Image and remote binary checks win over inline text.
func Classify(mediaType, fileName string) doctypes.Class {
	mt := NormalizeMediaType(mediaType)
	suffix := strings.ToLower(filepath.Ext(fileName))

	switch {
	case strings.HasPrefix(mt, "image"):
		return doctypes.ClassImage
	case remoteSuffixes[suffix] || remoteMediaTypes[mt]:
		return doctypes.ClassRemoteBinary
	case strings.HasPrefix(mt, "text") || mt == "application/json" || textSuffixes[suffix]:
		return doctypes.ClassInlineText
	default:
		return doctypes.ClassUnsupported
	}
}

// Attach classifies and materializes an upload. The returned attachment is
// never partially built: on error the caller must leave the session empty.
func (a *AttachmentService) Attach(ctx context.Context, credential string, upload doctypes.Upload) (*doctypes.Attachment, error) {
	if !a.initialized {
		return nil, fmt.Errorf("attachment service not initialized")
	}

	class := Classify(upload.MediaType, upload.Name)
	logger.Debug("Attachment classified", "file", upload.Name, "media_type", upload.MediaType, "class", class.String())

	if class == doctypes.ClassUnsupported {
		return nil, doctypes.NewError(doctypes.KindClassification, "classify",
			fmt.Errorf("unsupported file type %q for %s", NormalizeMediaType(upload.MediaType), upload.Name))
	}

	content, err := a.Materialize(ctx, credential, class, upload)
	if err != nil {
		return nil, err
	}

	return &doctypes.Attachment{
		Name:       upload.Name,
		MediaType:  NormalizeMediaType(upload.MediaType),
		Class:      class,
		Content:    content,
		AttachedAt: a.now(),
	}, nil
}

// Materialize converts an upload of a known class into its content form.
func (a *AttachmentService) Materialize(ctx context.Context, credential string, class doctypes.Class, upload doctypes.Upload) (doctypes.Content, error) {
	switch class {
	case doctypes.ClassImage:
		return DecodeImage(upload.Data)
	case doctypes.ClassInlineText:
		return DecodeText(upload.Data)
	case doctypes.ClassRemoteBinary:
		handle, err := a.remote.Upload(ctx, credential, upload.Data, upload.Name, NormalizeMediaType(upload.MediaType))
		if err != nil {
			return nil, err
		}
		return doctypes.RemoteFileContent{Handle: handle}, nil
	default:
		return nil, doctypes.NewError(doctypes.KindClassification, "materialize", fmt.Errorf("unsupported class %s", class))
	}
}

// DecodeImage decodes data into an in-memory image. Formats the model does
// not accept inline are re-encoded to PNG.
func DecodeImage(data []byte) (doctypes.Content, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, doctypes.NewError(doctypes.KindDecode, "decode image", err)
	}

	if mediaType, ok := inlineImageFormats[format]; ok {
		return doctypes.ImageContent{Image: img, Format: format, MediaType: mediaType, Data: data}, nil
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, doctypes.NewError(doctypes.KindDecode, "encode image", err)
	}
	logger.Debug("Image re-encoded", "from", format, "to", "png")
	return doctypes.ImageContent{Image: img, Format: format, MediaType: "image/png", Data: buf.Bytes()}, nil
}

// DecodeText strictly decodes UTF-8 text, dropping a leading byte order mark.
func DecodeText(data []byte) (doctypes.Content, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	if !utf8.Valid(data) {
		return nil, doctypes.NewError(doctypes.KindDecode, "decode text", errors.New("file is not valid UTF-8"))
	}
	return doctypes.TextContent{Text: string(data)}, nil
}

// LoadLocalFile reads a file from disk and detects its media type from content,
// falling back to the file extension when content sniffing is inconclusive.
func LoadLocalFile(path string) (doctypes.Upload, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return doctypes.Upload{}, fmt.Errorf("failed to read %s: %w", path, err)
	}

	return doctypes.Upload{
		Name:      filepath.Base(path),
		MediaType: DetectMediaType(data, path),
		Data:      data,
	}, nil
}

// DetectMediaType sniffs data with mimetype and falls back to the extension of name.
func DetectMediaType(data []byte, name string) string {
	detected := mimetype.Detect(data)
	mt := NormalizeMediaType(detected.String())

	if mt == "" || mt == "application/octet-stream" || mt == "application/x-ole-storage" || mt == "application/zip" {
		if byExt := mime.TypeByExtension(strings.ToLower(filepath.Ext(name))); byExt != "" {
			return NormalizeMediaType(byExt)
		}
	}
	return mt
}
