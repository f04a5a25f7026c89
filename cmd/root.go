package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/ajcwebdev/autoshow-sub002/internal/config"
	"github.com/ajcwebdev/autoshow-sub002/internal/utils"
)

var (
	// verbosityLevel is the command-line flag for setting the log level
	verbosityLevel string
	settingsPath   string
)

var rootCmd = &cobra.Command{
	Use:   "autoshow",
	Short: "Turn videos, podcasts and audio files into Markdown show notes",
	Long: `autoshow downloads or converts the audio of a video, playlist, URL list,
local file or podcast feed, transcribes it with whisper.cpp or a hosted
speech-to-text service, and writes a prompt file or LLM generated show notes
to the content directory.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// Set the global log level based on the flag
		logLevel := utils.LogLevelFromString(verbosityLevel)
		utils.SetLogLevel(logLevel)
	},
}

// Execute runs the command tree. Errors are returned to main, which owns the
// exit code.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func loadSettings() (config.Settings, error) {
	return config.LoadSettings(settingsPath)
}

func init() {
	// Initialize global flags
	rootCmd.PersistentFlags().StringVarP(&verbosityLevel, "log-level", "l", "normal",
		"Set the logging verbosity level: quiet, normal, verbose, debug")
	rootCmd.PersistentFlags().StringVar(&settingsPath, "config", "",
		"Path to a YAML settings file (default "+config.DefaultSettingsFile+" when present)")
}
