// Package doctypes defines the shared types of AliadoDoc: conversation turns,
// attachments and their materialized content, streaming fragments, and the
// error taxonomy used across services.
package doctypes

// Service defines the interface that all AliadoDoc services must implement.
// Services are registered once and initialized before the shell starts.
type Service interface {
	Name() string
	Initialize() error
}

// ReplyRenderer displays an assistant reply while it is being streamed.
// Partial is called after every non-empty fragment with the whole accumulated
// text followed by a cursor marker, Final once with the finished text, and
// Fail when the transport aborts the stream.
type ReplyRenderer interface {
	Partial(accumulated string)
	Final(text string)
	Fail(err error)
}

// TranscriptWriter appends turns to a conversation transcript.
type TranscriptWriter interface {
	Append(role Role, content string) Turn
}
