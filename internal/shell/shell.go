// Package shell provides the interactive AliadoDoc chat shell: the readline
// loop, the backslash commands, and the turn-processing path that owns the
// session.
package shell

import (
	"context"
	"errors"
	"io"
	"strings"

	"aliadodoc/internal/config"
	"aliadodoc/internal/logger"
	"aliadodoc/internal/output"
	"aliadodoc/internal/session"
	"aliadodoc/pkg/doctypes"

	"github.com/chzyer/readline"
)

// Generator starts one generation call.
type Generator interface {
	Generate(ctx context.Context, credential, modelID, prompt, systemInstruction string, content doctypes.Content) doctypes.GenerationResult
}

// Assembler consumes a fragment stream into one assistant turn.
type Assembler interface {
	Assemble(stream doctypes.FragmentStream, renderer doctypes.ReplyRenderer, transcript doctypes.TranscriptWriter) (doctypes.Turn, error)
}

// Attacher classifies and materializes uploads.
type Attacher interface {
	Attach(ctx context.Context, credential string, upload doctypes.Upload) (*doctypes.Attachment, error)
}

// RemoteFiles releases remote handles.
type RemoteFiles interface {
	Delete(ctx context.Context, credential string, handle doctypes.RemoteFileHandle)
	Purge(ctx context.Context, credential string) int
}

// ModelCatalog lists and validates models.
type ModelCatalog interface {
	GetModelCatalog() ([]doctypes.ModelCatalogEntry, error)
	GetModelByID(id string) (doctypes.ModelCatalogEntry, error)
}

// Clipboard reads the system clipboard.
type Clipboard interface {
	Available() bool
	Read() (doctypes.Upload, error)
}

// ExchangeRecorder exposes the last captured HTTP exchange.
type ExchangeRecorder interface {
	LastExchange() string
}

// Dependencies are the services the shell drives. Clipboard and Exchanges may be nil.
type Dependencies struct {
	Generator   Generator
	Assembler   Assembler
	Attacher    Attacher
	RemoteFiles RemoteFiles
	Catalog     ModelCatalog
	Clipboard   Clipboard
	Exchanges   ExchangeRecorder
	Markdown    output.MarkdownRenderer
}

// Settings are the per-process values the shell reads from configuration.
type Settings struct {
	Credential       string
	SystemPrompt     string
	AttachmentPolicy config.AttachmentPolicy
	QuickPrompt      string
	HistoryFile      string
	Interactive      bool
}

// Shell is one interactive chat over a single session.
type Shell struct {
	session  *session.Session
	deps     Dependencies
	settings Settings
	printer  *output.Printer
	commands *CommandSet
	turns    *TurnProcessor

	// newRenderer builds the renderer for one streamed reply.
	newRenderer func() doctypes.ReplyRenderer

	done bool
}

// New creates a shell over sess.
func New(sess *session.Session, deps Dependencies, settings Settings, printer *output.Printer) *Shell {
	s := &Shell{
		session:  sess,
		deps:     deps,
		settings: settings,
		printer:  printer,
	}
	s.newRenderer = func() doctypes.ReplyRenderer {
		return output.NewLiveView(s.printer, s.deps.Markdown, s.settings.Interactive)
	}
	s.turns = NewTurnProcessor(s)
	s.commands = NewCommandSet()
	return s
}

// Session returns the session the shell drives.
func (s *Shell) Session() *session.Session {
	return s.session
}

// Greet renders the transcript seeded at session creation.
func (s *Shell) Greet() {
	for _, turn := range s.session.Turns() {
		s.renderTurn(turn)
	}
}

// HandleLine processes one line of input: a backslash command or a chat turn.
// It returns false once the shell should stop.
func (s *Shell) HandleLine(ctx context.Context, line string) bool {
	input := strings.TrimSpace(line)
	if input == "" {
		return !s.done
	}

	if strings.HasPrefix(input, "\\") {
		name, args := splitCommand(input)
		logger.Debug("Command received", "command", name)
		if err := s.commands.Execute(ctx, s, name, args); err != nil {
			s.printer.Error(err.Error())
			if name != "help" {
				s.printer.Muted("Type \\help for available commands")
			}
		}
		return !s.done
	}

	s.turns.Process(ctx, input)
	return !s.done
}

// Ask runs a single chat turn with prompt, bypassing command parsing.
func (s *Shell) Ask(ctx context.Context, prompt string) {
	s.turns.Process(ctx, strings.TrimSpace(prompt))
}

// Run reads lines until \exit, EOF, or ctx is cancelled.
func (s *Shell) Run(ctx context.Context) error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:            s.prompt(),
		HistoryFile:       s.settings.HistoryFile,
		AutoComplete:      s.commands.Completer(),
		Painter:           NewCommandHighlighter(s.printer),
		InterruptPrompt:   "^C",
		EOFPrompt:         "\\exit",
		HistorySearchFold: true,
	})
	if err != nil {
		return err
	}
	defer func() { _ = rl.Close() }()

	s.Greet()

	for ctx.Err() == nil {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			if line == "" {
				break
			}
			continue
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}

		if !s.HandleLine(ctx, line) {
			break
		}
		rl.SetPrompt(s.prompt())
	}

	s.Close(context.WithoutCancel(ctx))
	return nil
}

// Close releases every remote handle created during the session.
func (s *Shell) Close(ctx context.Context) {
	s.session.Detach()
	if n := s.deps.RemoteFiles.Purge(ctx, s.settings.Credential); n > 0 {
		logger.Info("Remote files released on exit", "count", n)
	}
}

func (s *Shell) prompt() string {
	label := "aliadodoc"
	if a := s.session.Attachment(); a != nil {
		label += " [" + a.Name + "]"
	}
	return s.printer.Styled(output.SemanticUser, label) + "> "
}

// renderTurn prints one transcript turn with its role label.
func (s *Shell) renderTurn(turn doctypes.Turn) {
	if turn.IsUser() {
		s.printer.Println(s.printer.Styled(output.SemanticUser, "You") + ": " + turn.Content)
		return
	}
	s.printer.Println(s.printer.Styled(output.SemanticAssistant, "AliadoDoc") + ":")
	s.printer.Print(s.renderMarkdown(turn.Content))
}

func (s *Shell) renderMarkdown(text string) string {
	rendered := text
	if s.deps.Markdown != nil {
		if out, err := s.deps.Markdown.Render(text); err == nil {
			rendered = out
		}
	}
	if !strings.HasSuffix(rendered, "\n") {
		rendered += "\n"
	}
	return rendered
}

// splitCommand splits "\name args" into its lowercase name and trimmed arguments.
func splitCommand(input string) (string, string) {
	body := strings.TrimPrefix(input, "\\")
	name, args, _ := strings.Cut(body, " ")
	return strings.ToLower(name), strings.TrimSpace(args)
}
