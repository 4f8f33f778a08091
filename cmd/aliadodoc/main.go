// Package main provides the AliadoDoc CLI application entry point.
// AliadoDoc is a terminal chat assistant that reads attached project documents.
package main

import (
	"fmt"
	"os"

	"aliadodoc/internal/config"
	"aliadodoc/internal/logger"
	"aliadodoc/internal/version"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	configDir  string
	askFile    string
	formatsOut string
	formatsZip bool
	loadedCfg  *config.Config
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "aliadodoc",
	Short: "AliadoDoc - project documentation assistant",
	Long: `AliadoDoc is a chat assistant for project documentation.
Attach images, text files, PDFs or Office documents and ask questions about them.`,
	SilenceUsage: true,
	RunE:         runChat, // Default behavior is to run the interactive chat
}

// chatCmd is the explicit version of the default behavior
var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start the interactive chat",
	RunE:  runChat,
}

var askCmd = &cobra.Command{
	Use:   "ask <prompt>",
	Short: "Ask a single question and print the reply",
	Long: `Ask a single question without entering the interactive chat.
Use --file to attach a document to the question.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

var formatsCmd = &cobra.Command{
	Use:   "formats",
	Short: "Save the essential project document formats",
	Args:  cobra.NoArgs,
	RunE:  runFormats,
}

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List the models AliadoDoc can use",
	Args:  cobra.NoArgs,
	RunE:  runModels,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Fprintln(cmd.OutOrStdout(), version.GetDetailedVersion())
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.String("log-level", "", "Set log level (debug|info|warn|error) [default: warn]")
	flags.String("log-file", "", "Write logs to file instead of stderr")
	flags.Bool("test-mode", false, "Run in deterministic test mode")
	flags.Bool("no-color", false, "Disable colors and styled markdown")
	flags.String("model", "", "Model to use (see 'aliadodoc models')")
	flags.String("attachment-policy", "", "What happens to an attachment after a reply (keep|consume)")
	flags.Int("word-wrap", 0, "Wrap rendered replies at this width")
	flags.String("backend", "", "Model service backend (gemini|vertex)")
	flags.StringVar(&configDir, "config-dir", "", "Directory holding .env and config.yaml")

	// Bind flags to viper
	for key, flag := range map[string]string{
		config.KeyLogLevel:         "log-level",
		config.KeyLogFile:          "log-file",
		config.KeyTestMode:         "test-mode",
		config.KeyNoColor:          "no-color",
		config.KeyModel:            "model",
		config.KeyAttachmentPolicy: "attachment-policy",
		config.KeyWordWrap:         "word-wrap",
		config.KeyBackend:          "backend",
	} {
		if err := viper.BindPFlag(key, flags.Lookup(flag)); err != nil {
			fmt.Fprintf(os.Stderr, "Error binding %s flag: %v\n", flag, err)
			os.Exit(1)
		}
	}

	askCmd.Flags().StringVarP(&askFile, "file", "f", "", "Attach this file to the question")
	formatsCmd.Flags().StringVarP(&formatsOut, "out", "o", "", "Output path (default essential-formats.md)")
	formatsCmd.Flags().BoolVar(&formatsZip, "zip", false, "Write a zip archive instead of markdown")

	rootCmd.AddCommand(chatCmd, askCmd, formatsCmd, modelsCmd, versionCmd)

	// Configure logger before any command execution
	cobra.OnInitialize(initConfig)
}

func initConfig() {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}
	if err := logger.Configure(cfg.LogLevel, cfg.LogFile, cfg.TestMode); err != nil {
		fmt.Fprintf(os.Stderr, "Error configuring logger: %v\n", err)
		os.Exit(1)
	}
	loadedCfg = cfg
}

func loadConfig() (*config.Config, error) {
	return config.Load(viper.GetViper(), config.LoadOptions{ConfigDir: configDir})
}
