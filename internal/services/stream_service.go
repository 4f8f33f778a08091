package services

import (
	"errors"
	"strings"

	"aliadodoc/internal/logger"
	"aliadodoc/pkg/doctypes"

	"github.com/charmbracelet/log"
	"google.golang.org/genai"
)

// Cursor is appended to partial renders while a reply is still streaming.
const Cursor = "▌"

// SafetyNotice replaces a reply that produced no text.
const SafetyNotice = "⚠️ The model did not return any text. The request may have been blocked by safety filters. Try rephrasing your question."

// FragmentFromResponse converts one streamed response into a fragment. It never
// fails: responses without usable text become an EmptyFragment.
func FragmentFromResponse(resp *genai.GenerateContentResponse) doctypes.Fragment {
	fragment, err := extractFragment(resp)
	if err != nil {
		logger.Debug("Fragment skipped", "error", err)
		return doctypes.EmptyFragment{Reason: err.Error()}
	}
	return fragment
}

// extractFragment returns a StreamExtractionError for malformed responses.
func extractFragment(resp *genai.GenerateContentResponse) (doctypes.Fragment, error) {
	if resp == nil {
		return nil, doctypes.NewError(doctypes.KindStreamExtraction, "extract", errors.New("nil response"))
	}

	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
		return doctypes.EmptyFragment{Reason: string(resp.PromptFeedback.BlockReason)}, nil
	}

	if len(resp.Candidates) == 0 {
		return doctypes.EmptyFragment{Reason: "no candidates"}, nil
	}

	candidate := resp.Candidates[0]
	if candidate == nil {
		return nil, doctypes.NewError(doctypes.KindStreamExtraction, "extract", errors.New("nil candidate"))
	}
	if candidate.Content == nil {
		return doctypes.EmptyFragment{Reason: string(candidate.FinishReason)}, nil
	}

	var text strings.Builder
	for _, part := range candidate.Content.Parts {
		// Thought summaries are not part of the reply.
		if part == nil || part.Thought {
			continue
		}
		text.WriteString(part.Text)
	}

	if text.Len() == 0 {
		return doctypes.EmptyFragment{Reason: string(candidate.FinishReason)}, nil
	}
	return doctypes.TextFragment{Content: text.String()}, nil
}

// StreamService assembles streamed fragments into a single assistant turn.
type StreamService struct {
	initialized bool
	log         *log.Logger
}

// NewStreamService creates a new StreamService instance.
func NewStreamService() *StreamService {
	return &StreamService{}
}

// Name returns the service name "stream" for registration.
func (s *StreamService) Name() string {
	return "stream"
}

// Initialize sets up the StreamService for operation.
func (s *StreamService) Initialize() error {
	s.log = logger.NewStyledLogger("Stream")
	s.initialized = true
	return nil
}

// Assemble consumes stream in delivery order, rendering the growing reply
// with a trailing cursor. When the stream ends it renders the final text (or
// SafetyNotice when nothing but whitespace arrived) and appends exactly one
// assistant turn. A transport error discards the partial reply: nothing is
// appended and the error is returned after renderer.Fail.
func (s *StreamService) Assemble(stream doctypes.FragmentStream, renderer doctypes.ReplyRenderer, transcript doctypes.TranscriptWriter) (doctypes.Turn, error) {
	var accumulator strings.Builder
	fragments, empty := 0, 0

	for fragment, err := range stream {
		if err != nil {
			if s.log != nil {
				s.log.Error("Stream aborted", "fragments", fragments, "error", err)
			}
			renderer.Fail(err)
			return doctypes.Turn{}, err
		}

		fragments++
		if fragment == nil {
			empty++
			continue
		}
		text, ok := fragment.Text()
		if !ok {
			empty++
			continue
		}

		accumulator.WriteString(text)
		renderer.Partial(accumulator.String() + Cursor)
	}

	final := accumulator.String()
	if strings.TrimSpace(final) == "" {
		final = SafetyNotice
	}

	logger.Debug("Stream finished", "fragments", fragments, "empty", empty, "length", len(final))
	renderer.Final(final)
	return transcript.Append(doctypes.RoleAssistant, final), nil
}
