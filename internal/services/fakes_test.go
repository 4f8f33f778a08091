package services

import (
	"context"
	"io"
	"iter"
	"sync"

	"aliadodoc/pkg/doctypes"

	"google.golang.org/genai"
)

// fakeGemini records every remote call in order.
type fakeGemini struct {
	mu    sync.Mutex
	calls []string

	uploadErr  error
	uploadFile *genai.File
	getFiles   []*genai.File
	getErr     error
	deleteErr  error
	uploads    []genai.UploadFileConfig
	uploadData [][]byte

	streamResponses []*genai.GenerateContentResponse
	streamErr       error
	streamErrAt     int
	lastModel       string
	lastContents    []*genai.Content
	lastConfig      *genai.GenerateContentConfig
}

func newFakeGemini() *fakeGemini {
	return &fakeGemini{streamErrAt: -1}
}

func (f *fakeGemini) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakeGemini) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.calls))
	copy(out, f.calls)
	return out
}

func (f *fakeGemini) UploadFile(_ context.Context, r io.Reader, config *genai.UploadFileConfig) (*genai.File, error) {
	f.record("upload:" + config.DisplayName)
	data, _ := io.ReadAll(r)
	f.uploads = append(f.uploads, *config)
	f.uploadData = append(f.uploadData, data)
	if f.uploadErr != nil {
		return nil, f.uploadErr
	}
	if f.uploadFile != nil {
		return f.uploadFile, nil
	}
	return &genai.File{
		Name:     "files/" + config.DisplayName,
		URI:      "https://generativelanguage.googleapis.com/v1beta/files/" + config.DisplayName,
		MIMEType: config.MIMEType,
		State:    genai.FileStateActive,
	}, nil
}

func (f *fakeGemini) GetFile(_ context.Context, name string) (*genai.File, error) {
	f.record("get:" + name)
	if f.getErr != nil {
		return nil, f.getErr
	}
	if len(f.getFiles) == 0 {
		return &genai.File{Name: name, State: genai.FileStateActive}, nil
	}
	next := f.getFiles[0]
	f.getFiles = f.getFiles[1:]
	return next, nil
}

func (f *fakeGemini) DeleteFile(_ context.Context, name string) error {
	f.record("delete:" + name)
	return f.deleteErr
}

func (f *fakeGemini) GenerateContentStream(_ context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) iter.Seq2[*genai.GenerateContentResponse, error] {
	f.record("generate:" + model)
	f.lastModel = model
	f.lastContents = contents
	f.lastConfig = config
	return func(yield func(*genai.GenerateContentResponse, error) bool) {
		for i, resp := range f.streamResponses {
			if i == f.streamErrAt {
				yield(nil, f.streamErr)
				return
			}
			if !yield(resp, nil) {
				return
			}
		}
		if f.streamErrAt >= len(f.streamResponses) {
			yield(nil, f.streamErr)
		}
	}
}

// fakeProvider hands out a single fake client.
type fakeProvider struct {
	client   *fakeGemini
	requests int
}

func (p *fakeProvider) ClientFor(credential string) (GeminiAPI, error) {
	if credential == "" {
		return nil, doctypes.NewError(doctypes.KindAuthentication, "client", ErrMissingCredential)
	}
	p.requests++
	return p.client, nil
}

// textResponse builds a streamed response carrying text.
func textResponse(text string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: genai.NewContentFromText(text, genai.RoleModel),
		}},
	}
}

// recordingRenderer captures renderer calls.
type recordingRenderer struct {
	partials []string
	final    string
	finals   int
	failed   error
}

func (r *recordingRenderer) Partial(accumulated string) { r.partials = append(r.partials, accumulated) }
func (r *recordingRenderer) Final(text string)          { r.final = text; r.finals++ }
func (r *recordingRenderer) Fail(err error)             { r.failed = err }

// memoryTranscript is a minimal TranscriptWriter.
type memoryTranscript struct {
	turns []doctypes.Turn
}

func (m *memoryTranscript) Append(role doctypes.Role, content string) doctypes.Turn {
	turn := doctypes.Turn{Role: role, Content: content}
	m.turns = append(m.turns, turn)
	return turn
}
