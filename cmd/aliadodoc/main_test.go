package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"aliadodoc/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

// runCLI executes the root command with args and returns its output.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("GOOGLE_API_KEY", "")

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append(args, "--config-dir", t.TempDir(), "--test-mode"))
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		askFile, formatsOut, formatsZip = "", "", false
		_ = rootCmd.PersistentFlags().Set("model", "")
	})

	err := rootCmd.Execute()
	return out.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := runCLI(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "AliadoDoc v")
}

func TestFormatsCommand(t *testing.T) {
	dir := t.TempDir()

	path := filepath.Join(dir, "formats.md")
	out, err := runCLI(t, "formats", "--out", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Formats saved to "+path)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Project Charter")

	zipPath := filepath.Join(dir, "formats.zip")
	_, err = runCLI(t, "formats", "--out", zipPath, "--zip")
	require.NoError(t, err)
	data, err = os.ReadFile(zipPath)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("PK")))
}

func TestModelsCommand(t *testing.T) {
	out, err := runCLI(t, "models", "--model", "gemini-2.5-pro")
	require.NoError(t, err)

	assert.Contains(t, out, "* gemini-2.5-pro")
	assert.Contains(t, out, "  gemini-2.5-flash")
	assert.Contains(t, out, "tier 3")
}

func TestAskWithoutCredential(t *testing.T) {
	out, err := runCLI(t, "ask", "hello")
	require.NoError(t, err)

	assert.Contains(t, out, "The API key is not valid or is missing")
}

func TestAskWithUnsupportedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blob.bin")
	require.NoError(t, os.WriteFile(path, []byte{0x00, 0xff, 0x10}, 0o644))

	_, err := runCLI(t, "ask", "what is this?", "--file", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Unsupported file type: blob.bin")
}

func TestParseBackend(t *testing.T) {
	backend, err := parseBackend("")
	require.NoError(t, err)
	assert.Equal(t, genai.BackendGeminiAPI, backend)

	backend, err = parseBackend("vertex")
	require.NoError(t, err)
	assert.Equal(t, genai.BackendVertexAI, backend)

	_, err = parseBackend("openai")
	assert.Error(t, err)
}

func TestMarkdownStyle(t *testing.T) {
	assert.Equal(t, "auto", markdownStyle(&config.Config{}, true))
	assert.Equal(t, "notty", markdownStyle(&config.Config{}, false))
	assert.Equal(t, "notty", markdownStyle(&config.Config{NoColor: true}, true))
	assert.Equal(t, "notty", markdownStyle(&config.Config{TestMode: true}, true))
}
