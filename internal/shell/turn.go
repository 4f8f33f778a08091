package shell

import (
	"context"
	"fmt"

	"aliadodoc/internal/config"
	"aliadodoc/internal/logger"
	"aliadodoc/internal/output"
	"aliadodoc/pkg/doctypes"
)

// AuthRollbackWarning is shown after an exchange is removed because the credential failed.
const AuthRollbackWarning = "The last exchange was removed from the history because the API key was rejected."

// TurnProcessor is the single path that mutates the session during a chat turn.
type TurnProcessor struct {
	shell *Shell
}

// NewTurnProcessor creates the turn processor for s.
func NewTurnProcessor(s *Shell) *TurnProcessor {
	return &TurnProcessor{shell: s}
}

// ResolvePrompt picks the prompt for the next turn. A pending programmatic
// prompt wins over typed input and is consumed.
func (t *TurnProcessor) ResolvePrompt(typed string) (string, bool) {
	if prompt, ok := t.shell.session.TakePendingPrompt(); ok {
		return prompt, true
	}
	return typed, false
}

// Process runs one full turn: user turn, generation, rendering, assistant turn.
func (t *TurnProcessor) Process(ctx context.Context, typed string) {
	s := t.shell
	sess := s.session

	prompt, programmatic := t.ResolvePrompt(typed)
	if prompt == "" {
		return
	}

	userText := prompt
	if a := sess.Attachment(); a != nil {
		userText += fmt.Sprintf("\n\n(Attached file: **%s**)", a.Name)
	}
	userTurn := sess.Append(doctypes.RoleUser, userText)
	if programmatic {
		s.renderTurn(userTurn)
	}
	logger.TurnEvent("user", "session", sess.ID, "turn", userTurn.ID, "model", sess.Model(), "attachment", sess.Attachment() != nil)

	result := s.deps.Generator.Generate(ctx, s.settings.Credential, sess.Model(), prompt, s.settings.SystemPrompt, sess.Content())

	s.printer.Println(s.printer.Styled(output.SemanticAssistant, "AliadoDoc") + ":")
	if result.IsError() {
		t.handleError(ctx, result)
	} else {
		turn, err := s.deps.Assembler.Assemble(result.Stream, s.newRenderer(), sess)
		if err != nil {
			logger.TurnEvent("stream aborted", "session", sess.ID, "error", err)
		} else {
			logger.TurnEvent("assistant", "session", sess.ID, "turn", turn.ID, "length", len(turn.Content))
		}
	}

	t.applyAttachmentPolicy(ctx)
}

// handleError renders an error result as an assistant turn. Authentication
// failures roll the exchange back so a fixed key starts from a clean history.
// An expired remote file is detached.
func (t *TurnProcessor) handleError(ctx context.Context, result doctypes.GenerationResult) {
	s := t.shell
	sess := s.session

	sess.Append(doctypes.RoleAssistant, result.ErrorText)
	s.newRenderer().Final(result.ErrorText)
	logger.TurnEvent("error", "session", sess.ID, "kind", result.ErrorKind.String())

	if result.ErrorKind == doctypes.KindAuthentication {
		if sess.RollbackExchange() {
			s.printer.Warning(AuthRollbackWarning)
		}
	}
	if result.StaleAttachment {
		if previous, ok := s.DetachCurrent(ctx); ok {
			logger.Info("Expired attachment detached", "file", previous.Name)
		}
	}
}

func (t *TurnProcessor) applyAttachmentPolicy(ctx context.Context) {
	s := t.shell
	if s.settings.AttachmentPolicy != config.PolicyConsume {
		return
	}
	if previous := s.session.Detach(); previous != nil {
		s.releaseAttachment(ctx, previous)
		logger.Debug("Attachment consumed", "file", previous.Name)
	}
}
