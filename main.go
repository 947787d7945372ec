// Command vizstudio runs the visualization studio server and its terminal
// clients.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xiaot623/gogo/vizstudio/internal/logging"
)

var (
	// Global flags
	configPath string
	logLevel   string
	serverURL  string
	sessionID  string
	apiKey     string

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "vizstudio",
	Short: "Architectural visualization studio for the aquaculture facility",
	Long: `vizstudio turns natural-language requests into image prompts and renders
them through Gemini, with editable facility, design and company contexts.

Run "vizstudio serve" to start the studio, then use "chat" or "generate"
against it.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		logger, err = logging.New(logLevel)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a YAML config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "http://localhost:8080", "studio server URL")
	rootCmd.PersistentFlags().StringVar(&sessionID, "session", "cli", "studio session id")
	rootCmd.PersistentFlags().StringVar(&apiKey, "api-key", "", "Gemini API key (default $GEMINI_API_KEY)")

	rootCmd.AddCommand(serveCmd, chatCmd, generateCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
