package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"aliadodoc/internal/config"
	"aliadodoc/internal/data/embedded"
	"aliadodoc/internal/logger"
	"aliadodoc/internal/output"
	"aliadodoc/internal/services"
	"aliadodoc/internal/session"
	"aliadodoc/internal/shell"
	"aliadodoc/internal/templates"
	"aliadodoc/internal/version"

	"github.com/spf13/cobra"
	"google.golang.org/genai"
)

// parseBackend maps the configured backend name to the client backend.
func parseBackend(name string) (genai.Backend, error) {
	switch name {
	case "", "gemini":
		return genai.BackendGeminiAPI, nil
	case "vertex":
		return genai.BackendVertexAI, nil
	default:
		return genai.BackendUnspecified, fmt.Errorf("unknown backend %q (expected gemini or vertex)", name)
	}
}

// newPrinter builds the console printer for cfg.
func newPrinter(cfg *config.Config, w io.Writer) *output.Printer {
	opts := []output.Option{output.WithWriter(w)}
	switch {
	case cfg.TestMode:
		opts = append(opts, output.TestMode())
	case cfg.NoColor:
		opts = append(opts, output.PlainText())
	default:
		theme, err := output.DefaultTheme()
		if err != nil {
			logger.Warn("Theme unavailable, using plain output", "error", err)
		} else {
			opts = append(opts, output.WithStyles(theme))
		}
	}
	return output.NewPrinter(opts...)
}

// markdownStyle picks the glamour style for the run.
func markdownStyle(cfg *config.Config, interactive bool) string {
	if cfg.TestMode || cfg.NoColor || !interactive {
		return "notty"
	}
	return "auto"
}

// newShell wires the services into a shell over a fresh session.
func newShell(cmd *cobra.Command, cfg *config.Config, interactive bool) (*shell.Shell, error) {
	backend, err := parseBackend(cfg.Backend)
	if err != nil {
		return nil, err
	}

	svc, err := services.NewServices(services.Options{
		Backend:       backend,
		MarkdownStyle: markdownStyle(cfg, interactive),
		WordWrap:      cfg.WordWrap,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	model := cfg.Model
	if entry, err := svc.Catalog.GetModelByID(model); err == nil {
		model = entry.ID
	} else {
		logger.Warn("Configured model is not in the catalog", "model", model)
	}

	if !cfg.HasCredential() {
		logger.Warn("GEMINI_API_KEY is not set; requests will fail until it is configured")
	}

	sess := session.New(string(embedded.GreetingData), model)
	logger.Info("Session started", "session", sess.ID, "model", model)

	sh := shell.New(sess, shell.Dependencies{
		Generator:   svc.Generation,
		Assembler:   svc.Stream,
		Attacher:    svc.Attachments,
		RemoteFiles: svc.RemoteFiles,
		Catalog:     svc.Catalog,
		Clipboard:   svc.Clipboard,
		Exchanges:   svc.Transport,
		Markdown:    svc.Markdown,
	}, shell.Settings{
		Credential:       cfg.APIKey,
		SystemPrompt:     cfg.SystemPrompt,
		AttachmentPolicy: cfg.AttachmentPolicy,
		QuickPrompt:      string(embedded.QuickPromptData),
		HistoryFile:      cfg.HistoryFile,
		Interactive:      interactive,
	}, newPrinter(cfg, cmd.OutOrStdout()))

	return sh, nil
}

func runChat(cmd *cobra.Command, _ []string) error {
	logger.Info("Starting AliadoDoc", "version", version.GetVersion())

	sh, err := newShell(cmd, loadedCfg, output.IsInteractive())
	if err != nil {
		return err
	}
	return sh.Run(cmd.Context())
}

func runAsk(cmd *cobra.Command, args []string) error {
	sh, err := newShell(cmd, loadedCfg, false)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	defer sh.Close(context.WithoutCancel(ctx))

	if askFile != "" {
		upload, err := services.LoadLocalFile(askFile)
		if err != nil {
			return err
		}
		if err := sh.AttachUpload(ctx, upload); err != nil {
			return errors.New(shell.AttachFailureText(upload.Name, err))
		}
	}

	sh.Ask(ctx, strings.Join(args, " "))
	return nil
}

func runFormats(cmd *cobra.Command, _ []string) error {
	path, err := templates.Save(formatsOut, formatsZip)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Formats saved to %s\n", path)
	return nil
}

func runModels(cmd *cobra.Command, _ []string) error {
	catalog := services.NewModelCatalogService()
	if err := catalog.Initialize(); err != nil {
		return err
	}
	models, err := catalog.GetModelCatalog()
	if err != nil {
		return err
	}

	printer := newPrinter(loadedCfg, cmd.OutOrStdout())
	for _, m := range models {
		marker := "  "
		if m.ID == loadedCfg.Model {
			marker = "* "
		}
		printer.Println(fmt.Sprintf("%s%s  %s (tier %d, %d tokens)",
			marker, printer.Styled(output.SemanticCode, m.ID), m.Description, m.Tier, m.ContextWindow))
	}
	return nil
}
