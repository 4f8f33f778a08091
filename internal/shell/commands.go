package shell

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"aliadodoc/internal/output"
	"aliadodoc/internal/services"
	"aliadodoc/internal/templates"
	"aliadodoc/pkg/doctypes"

	"github.com/chzyer/readline"
)

// Command is one backslash command.
type Command struct {
	Name        string
	Usage       string
	Description string
	// CompletesPath marks commands whose argument is a local file path.
	CompletesPath bool
	Run           func(ctx context.Context, s *Shell, args string) error
}

// CommandSet holds the shell's commands by name.
type CommandSet struct {
	commands map[string]Command
}

// NewCommandSet returns the built-in commands.
func NewCommandSet() *CommandSet {
	set := &CommandSet{commands: make(map[string]Command)}
	for _, cmd := range builtinCommands() {
		set.commands[cmd.Name] = cmd
	}
	return set
}

// Names returns command names in sorted order.
func (c *CommandSet) Names() []string {
	names := make([]string, 0, len(c.commands))
	for name := range c.commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Get returns the command registered under name.
func (c *CommandSet) Get(name string) (Command, bool) {
	cmd, ok := c.commands[name]
	return cmd, ok
}

// Execute runs the named command.
func (c *CommandSet) Execute(ctx context.Context, s *Shell, name, args string) error {
	cmd, ok := c.commands[name]
	if !ok {
		return fmt.Errorf("unknown command: \\%s", name)
	}
	return cmd.Run(ctx, s, args)
}

// Completer builds the readline completer: command names, and file paths
// after commands that take one.
func (c *CommandSet) Completer() *readline.PrefixCompleter {
	items := make([]readline.PrefixCompleterInterface, 0, len(c.commands))
	for _, name := range c.Names() {
		cmd := c.commands[name]
		if cmd.CompletesPath {
			items = append(items, readline.PcItem("\\"+name, readline.PcItemDynamic(completePath)))
			continue
		}
		items = append(items, readline.PcItem("\\"+name))
	}
	return readline.NewPrefixCompleter(items...)
}

// completePath lists entries matching the path typed after the command.
// Files are filtered to the attachable extensions.
func completePath(line string) []string {
	_, typed, _ := strings.Cut(strings.TrimSpace(line), " ")
	dir, prefix := filepath.Split(typed)
	readDir := dir
	if readDir == "" {
		readDir = "."
	}

	entries, err := os.ReadDir(readDir)
	if err != nil {
		return nil
	}

	supported := make(map[string]bool)
	for _, ext := range services.SupportedExtensions {
		supported[ext] = true
	}

	var matches []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasPrefix(name, ".") || !strings.HasPrefix(name, prefix) {
			continue
		}
		if entry.IsDir() {
			matches = append(matches, dir+name+string(filepath.Separator))
			continue
		}
		if supported[strings.ToLower(filepath.Ext(name))] {
			matches = append(matches, dir+name)
		}
	}
	return matches
}

func builtinCommands() []Command {
	return []Command{
		{
			Name:          "attach",
			Usage:         "\\attach <path>",
			Description:   "Attach a local file (image, text, PDF or Office document)",
			CompletesPath: true,
			Run:           runAttach,
		},
		{
			Name:        "paste",
			Usage:       "\\paste",
			Description: "Attach the image or text currently in the clipboard",
			Run:         runPaste,
		},
		{
			Name:        "detach",
			Usage:       "\\detach",
			Description: "Remove the current attachment",
			Run:         runDetach,
		},
		{
			Name:        "show",
			Usage:       "\\show",
			Description: "Preview the current attachment",
			Run: func(_ context.Context, s *Shell, _ string) error {
				s.printer.Print(Preview(s.session.Attachment()))
				return nil
			},
		},
		{
			Name:        "quick",
			Usage:       "\\quick",
			Description: "Ask for quick project guidance",
			Run: func(ctx context.Context, s *Shell, _ string) error {
				s.session.SetPendingPrompt(s.settings.QuickPrompt)
				s.turns.Process(ctx, "")
				return nil
			},
		},
		{
			Name:          "formats",
			Usage:         "\\formats [path]",
			Description:   "Save the essential project formats (.md, or .zip archive)",
			CompletesPath: true,
			Run: func(_ context.Context, s *Shell, args string) error {
				path, err := templates.Save(expandPath(args), false)
				if err != nil {
					return err
				}
				s.printer.Success("Formats saved to " + path)
				return nil
			},
		},
		{
			Name:        "model",
			Usage:       "\\model [id]",
			Description: "Show available models or switch the current one",
			Run:         runModel,
		},
		{
			Name:        "history",
			Usage:       "\\history",
			Description: "Show the conversation so far",
			Run: func(_ context.Context, s *Shell, _ string) error {
				for _, turn := range s.session.Turns() {
					s.renderTurn(turn)
				}
				return nil
			},
		},
		{
			Name:        "reset",
			Usage:       "\\reset",
			Description: "Start a new conversation (the attachment is removed)",
			Run: func(ctx context.Context, s *Shell, _ string) error {
				if previous := s.session.Reset(); previous != nil {
					s.releaseAttachment(ctx, previous)
				}
				s.printer.Success("Conversation reset")
				s.Greet()
				return nil
			},
		},
		{
			Name:        "cleanup",
			Usage:       "\\cleanup",
			Description: "Delete every remote file uploaded in this session",
			Run: func(ctx context.Context, s *Shell, _ string) error {
				if a := s.session.Attachment(); a != nil && a.Class == doctypes.ClassRemoteBinary {
					s.session.Detach()
				}
				n := s.deps.RemoteFiles.Purge(ctx, s.settings.Credential)
				s.printer.Success(fmt.Sprintf("Deleted %d remote file(s)", n))
				return nil
			},
		},
		{
			Name:        "debug",
			Usage:       "\\debug",
			Description: "Show the last HTTP exchange with the model service",
			Run: func(_ context.Context, s *Shell, _ string) error {
				if s.deps.Exchanges == nil {
					return errors.New("exchange capture is not available")
				}
				s.printer.Println(s.deps.Exchanges.LastExchange())
				return nil
			},
		},
		{
			Name:        "help",
			Usage:       "\\help",
			Description: "List available commands",
			Run:         runHelp,
		},
		{
			Name:        "exit",
			Usage:       "\\exit",
			Description: "Leave AliadoDoc",
			Run: func(_ context.Context, s *Shell, _ string) error {
				s.done = true
				return nil
			},
		},
	}
}

func runAttach(ctx context.Context, s *Shell, args string) error {
	path := expandPath(args)
	if path == "" {
		return errors.New("usage: \\attach <path>")
	}

	upload, err := services.LoadLocalFile(path)
	if err != nil {
		return err
	}
	return s.attachAndReport(ctx, upload)
}

func runPaste(ctx context.Context, s *Shell, _ string) error {
	if s.deps.Clipboard == nil || !s.deps.Clipboard.Available() {
		return errors.New("clipboard is not available on this system")
	}

	upload, err := s.deps.Clipboard.Read()
	if errors.Is(err, services.ErrClipboardEmpty) {
		s.printer.Warning("The clipboard is empty")
		return nil
	}
	if err != nil {
		return err
	}
	return s.attachAndReport(ctx, upload)
}

// attachAndReport attaches upload and shows a success or failure notice.
func (s *Shell) attachAndReport(ctx context.Context, upload doctypes.Upload) error {
	if err := s.AttachUpload(ctx, upload); err != nil {
		s.printer.Error(AttachFailureText(upload.Name, err))
		return nil
	}
	a := s.session.Attachment()
	s.printer.Success(fmt.Sprintf("File %s attached (%s)", a.Name, a.Class))
	return nil
}

// AttachFailureText is the notice shown when an attachment cannot be used.
func AttachFailureText(name string, err error) string {
	switch doctypes.KindOf(err) {
	case doctypes.KindClassification:
		return fmt.Sprintf("Unsupported file type: %s. Supported extensions: %s", name, strings.Join(services.SupportedExtensions, ", "))
	case doctypes.KindDecode:
		return fmt.Sprintf("Could not read %s: the file looks damaged or is not in the expected encoding", name)
	case doctypes.KindAuthentication:
		return fmt.Sprintf("Could not upload %s: the API key is not valid or is missing", name)
	case doctypes.KindCompatibility:
		return fmt.Sprintf("Could not upload %s: this client cannot upload files. Use a Gemini API key instead of Vertex AI", name)
	case doctypes.KindUnsupportedFormat:
		return fmt.Sprintf("The service rejected the format of %s", name)
	default:
		return fmt.Sprintf("Could not attach %s: %v", name, err)
	}
}

func runDetach(ctx context.Context, s *Shell, _ string) error {
	previous, ok := s.DetachCurrent(ctx)
	if !ok {
		s.printer.Info("No file attached")
		return nil
	}
	s.printer.Success("File " + previous.Name + " detached")
	return nil
}

func runModel(_ context.Context, s *Shell, args string) error {
	if args == "" {
		models, err := s.deps.Catalog.GetModelCatalog()
		if err != nil {
			return err
		}
		for _, m := range models {
			marker := "  "
			if strings.EqualFold(m.ID, s.session.Model()) {
				marker = "* "
			}
			s.printer.Println(fmt.Sprintf("%s%s  %s", marker, s.printer.Styled(output.SemanticCode, m.ID), m.Description))
		}
		return nil
	}

	entry, err := s.deps.Catalog.GetModelByID(args)
	if err != nil {
		return err
	}
	s.session.SetModel(entry.ID)
	s.printer.Success("Model set to " + entry.ID)
	return nil
}

func runHelp(_ context.Context, s *Shell, _ string) error {
	s.printer.Println(s.printer.Styled(output.SemanticBold, "Commands"))
	for _, name := range s.commands.Names() {
		cmd, _ := s.commands.Get(name)
		s.printer.Println("  " + s.printer.Styled(output.SemanticCommand, fmt.Sprintf("%-18s", cmd.Usage)) + " " + cmd.Description)
	}
	s.printer.Muted("Anything else is sent to the model as a question.")
	return nil
}

// expandPath trims quotes and expands a leading ~.
func expandPath(arg string) string {
	path := strings.Trim(strings.TrimSpace(arg), `"'`)
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}
