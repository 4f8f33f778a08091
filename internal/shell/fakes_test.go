package shell

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"aliadodoc/internal/config"
	"aliadodoc/internal/output"
	"aliadodoc/internal/services"
	"aliadodoc/internal/session"
	"aliadodoc/pkg/doctypes"

	"github.com/stretchr/testify/require"
)

// callLog is shared by the fakes so tests can assert cross-service ordering.
type callLog struct {
	calls []string
}

func (l *callLog) add(format string, args ...interface{}) {
	l.calls = append(l.calls, fmt.Sprintf(format, args...))
}

type generateCall struct {
	credential string
	model      string
	prompt     string
	system     string
	content    doctypes.Content
}

type fakeGenerator struct {
	log     *callLog
	results []doctypes.GenerationResult
	calls   []generateCall
}

func (f *fakeGenerator) Generate(_ context.Context, credential, modelID, prompt, systemInstruction string, content doctypes.Content) doctypes.GenerationResult {
	f.log.add("generate:%s", modelID)
	f.calls = append(f.calls, generateCall{credential, modelID, prompt, systemInstruction, content})
	if len(f.results) == 0 {
		return doctypes.GenerationResult{Stream: doctypes.StreamOf(doctypes.TextFragment{Content: "ok"})}
	}
	result := f.results[0]
	f.results = f.results[1:]
	return result
}

type fakeAttacher struct {
	log *callLog
	err error
}

func (f *fakeAttacher) Attach(_ context.Context, _ string, upload doctypes.Upload) (*doctypes.Attachment, error) {
	f.log.add("attach:%s", upload.Name)
	if f.err != nil {
		return nil, f.err
	}
	class := services.Classify(upload.MediaType, upload.Name)
	var content doctypes.Content
	switch class {
	case doctypes.ClassRemoteBinary:
		content = doctypes.RemoteFileContent{Handle: doctypes.RemoteFileHandle{Name: "files/" + upload.Name, URI: "https://files/" + upload.Name}}
	case doctypes.ClassInlineText:
		content = doctypes.TextContent{Text: string(upload.Data)}
	default:
		return nil, doctypes.NewError(doctypes.KindClassification, "classify", errors.New("unsupported"))
	}
	return &doctypes.Attachment{Name: upload.Name, MediaType: upload.MediaType, Class: class, Content: content}, nil
}

type fakeRemoteFiles struct {
	log    *callLog
	purged int
	purgeN int
}

func (f *fakeRemoteFiles) Delete(_ context.Context, _ string, handle doctypes.RemoteFileHandle) {
	f.log.add("delete:%s", handle.Name)
}

func (f *fakeRemoteFiles) Purge(_ context.Context, _ string) int {
	f.log.add("purge")
	f.purged++
	return f.purgeN
}

type fakeCatalog struct{}

var catalogEntries = []doctypes.ModelCatalogEntry{
	{ID: "gemini-2.5-pro", Description: "Most capable", Tier: 3},
	{ID: "gemini-2.5-flash", Description: "Balanced", Tier: 2},
}

func (fakeCatalog) GetModelCatalog() ([]doctypes.ModelCatalogEntry, error) {
	return catalogEntries, nil
}

func (fakeCatalog) GetModelByID(id string) (doctypes.ModelCatalogEntry, error) {
	for _, m := range catalogEntries {
		if strings.EqualFold(m.ID, id) {
			return m, nil
		}
	}
	return doctypes.ModelCatalogEntry{}, fmt.Errorf("model with ID '%s' not found", id)
}

type fakeExchanges struct{}

func (fakeExchanges) LastExchange() string { return `{"status":200}` }

type testShell struct {
	*Shell
	log       *callLog
	generator *fakeGenerator
	attacher  *fakeAttacher
	remote    *fakeRemoteFiles
	out       *bytes.Buffer
}

func newTestShell(t *testing.T, policy config.AttachmentPolicy) *testShell {
	t.Helper()

	log := &callLog{}
	stream := services.NewStreamService()
	require.NoError(t, stream.Initialize())

	ts := &testShell{
		log:       log,
		generator: &fakeGenerator{log: log},
		attacher:  &fakeAttacher{log: log},
		remote:    &fakeRemoteFiles{log: log},
		out:       &bytes.Buffer{},
	}

	counter := 0
	sess := session.New("Hello, I am the assistant.", "gemini-2.5-flash",
		session.WithClock(func() time.Time { return time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC) }),
		session.WithIDGenerator(func() string {
			counter++
			return fmt.Sprintf("id-%d", counter)
		}),
	)

	ts.Shell = New(sess, Dependencies{
		Generator:   ts.generator,
		Assembler:   stream,
		Attacher:    ts.attacher,
		RemoteFiles: ts.remote,
		Catalog:     fakeCatalog{},
		Exchanges:   fakeExchanges{},
	}, Settings{
		Credential:       "test-key",
		SystemPrompt:     "be helpful",
		AttachmentPolicy: policy,
		QuickPrompt:      "quick project guidance",
	}, output.NewPrinter(output.WithWriter(ts.out), output.TestMode()))

	return ts
}

func (ts *testShell) attachRemote(t *testing.T, name string) {
	t.Helper()
	require.NoError(t, ts.AttachUpload(context.Background(), doctypes.Upload{Name: name, MediaType: "application/pdf", Data: []byte("%PDF")}))
}

func (ts *testShell) contents() []string {
	turns := ts.Session().Turns()
	out := make([]string, len(turns))
	for i, turn := range turns {
		out[i] = turn.Content
	}
	return out
}
