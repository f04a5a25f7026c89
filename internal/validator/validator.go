package validator

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/samber/lo"

	"github.com/ajcwebdev/autoshow-sub002/internal/apperr"
	"github.com/ajcwebdev/autoshow-sub002/internal/config"
	"github.com/ajcwebdev/autoshow-sub002/internal/utils"
)

// ExternalTool represents an external command-line tool requirement
type ExternalTool struct {
	Name        string
	Purpose     string
	VersionArgs []string
	Validate    func(output string) bool
}

// EnvVar is an API key a selected backend reads from the environment.
type EnvVar struct {
	Backend string
	Name    string
}

func ytDlp(s config.Settings) ExternalTool {
	return ExternalTool{
		Name:        s.Tools.YtDlp,
		Purpose:     "metadata and audio download",
		VersionArgs: []string{"--version"},
		Validate: func(output string) bool {
			return strings.TrimSpace(output) != ""
		},
	}
}

func ffmpeg(s config.Settings) ExternalTool {
	return ExternalTool{
		Name:        s.Tools.FFmpeg,
		Purpose:     "audio conversion",
		VersionArgs: []string{"-version"},
		Validate: func(output string) bool {
			return strings.Contains(output, "ffmpeg version")
		},
	}
}

// RequiredTools lists the binaries a run with opts will invoke. Info runs only
// need what metadata resolution needs.
func RequiredTools(opts config.ProcessingOptions, s config.Settings) []ExternalTool {
	opts = opts.WithDefaults()
	var tools []ExternalTool

	switch opts.Source {
	case config.SourceVideo, config.SourcePlaylist, config.SourceURLs:
		tools = append(tools, ytDlp(s))
	case config.SourceRSS:
		if !opts.Info {
			tools = append(tools, ytDlp(s))
		}
	case config.SourceFile:
		tools = append(tools, ExternalTool{
			Name:        s.Tools.FFprobe,
			Purpose:     "media inspection",
			VersionArgs: []string{"-version"},
			Validate: func(output string) bool {
				return strings.Contains(output, "ffprobe version")
			},
		})
	}
	if opts.Info {
		return tools
	}
	tools = append(tools, ffmpeg(s))

	switch opts.Transcription.Backend {
	case config.TranscriptionWhisper:
		tools = append(tools, ExternalTool{
			Name:    filepath.Join(s.Whisper.CppDir, "build", "bin", "whisper-cli"),
			Purpose: "whisper.cpp transcription",
		})
	case config.TranscriptionWhisperDocker:
		tools = append(tools, ExternalTool{
			Name:        s.Tools.Docker,
			Purpose:     "whisper.cpp container",
			VersionArgs: []string{"--version"},
			Validate: func(output string) bool {
				return strings.Contains(strings.ToLower(output), "docker version")
			},
		})
	case config.TranscriptionWhisperPython:
		tools = append(tools, ExternalTool{
			Name:        s.Tools.Whisper,
			Purpose:     "openai-whisper transcription",
			VersionArgs: []string{"--help"},
			Validate: func(output string) bool {
				return strings.Contains(output, "usage") || strings.Contains(output, "Usage") || strings.Contains(output, "options")
			},
		})
	case config.TranscriptionWhisperDiarization:
		tools = append(tools, ExternalTool{
			Name:        s.Tools.Python,
			Purpose:     "whisper-diarization",
			VersionArgs: []string{"--version"},
			Validate: func(output string) bool {
				return strings.HasPrefix(output, "Python")
			},
		})
	}

	return lo.UniqBy(tools, func(t ExternalTool) string { return t.Name })
}

// RequiredEnvVars lists the credentials the selected backends need.
func RequiredEnvVars(opts config.ProcessingOptions) []EnvVar {
	opts = opts.WithDefaults()
	var vars []EnvVar
	if opts.Info {
		return vars
	}
	if v := config.TranscriptionCredentialVariable(opts.Transcription.Backend); v != "" {
		vars = append(vars, EnvVar{Backend: string(opts.Transcription.Backend), Name: v})
	}
	if v := config.LLMCredentialVariable(opts.LLM.Provider); v != "" {
		vars = append(vars, EnvVar{Backend: string(opts.LLM.Provider), Name: v})
	}
	return vars
}

// ValidateExternalTools checks if all required external tools are installed
func ValidateExternalTools(cmd utils.CommandExecutor, tools []ExternalTool) error {
	for _, tool := range tools {
		path, err := cmd.LookPath(tool.Name)
		if err != nil {
			return &apperr.DependencyMissingError{Tool: tool.Name, Err: err}
		}
		utils.LogVerbose("✓ %s found at %s", tool.Name, path)
	}
	return nil
}

// ValidateEnvVars checks if all required environment variables are set
func ValidateEnvVars(getenv config.Getenv, vars []EnvVar) error {
	for _, v := range vars {
		if strings.TrimSpace(getenv(v.Name)) == "" {
			return &apperr.CredentialMissingError{Backend: v.Backend, Variable: v.Name}
		}

		// Don't print the actual value for security
		utils.LogVerbose("✓ %s is set", v.Name)
	}
	return nil
}

// Check is one line of the validate command's report.
type Check struct {
	Name   string
	Detail string
	OK     bool
}

// Report runs every check instead of stopping at the first failure. Tools
// with VersionArgs are also executed and their output validated.
func Report(ctx context.Context, cmd utils.CommandExecutor, getenv config.Getenv, tools []ExternalTool, vars []EnvVar) []Check {
	var checks []Check

	for _, tool := range tools {
		path, err := cmd.LookPath(tool.Name)
		if err != nil {
			checks = append(checks, Check{Name: tool.Name, Detail: fmt.Sprintf("not found in PATH (%s)", tool.Purpose)})
			continue
		}
		if len(tool.VersionArgs) == 0 || tool.Validate == nil {
			checks = append(checks, Check{Name: tool.Name, Detail: path, OK: true})
			continue
		}

		output, err := cmd.ExecuteCommand(ctx, path, tool.VersionArgs)
		if err != nil {
			checks = append(checks, Check{Name: tool.Name, Detail: fmt.Sprintf("found at %s but failed to run: %v", path, err)})
			continue
		}
		if !tool.Validate(string(output)) {
			checks = append(checks, Check{Name: tool.Name, Detail: fmt.Sprintf("found at %s but the version could not be verified", path)})
			continue
		}
		checks = append(checks, Check{Name: tool.Name, Detail: path, OK: true})
	}

	for _, v := range vars {
		if strings.TrimSpace(getenv(v.Name)) == "" {
			checks = append(checks, Check{Name: v.Name, Detail: fmt.Sprintf("not set (required by %s)", v.Backend)})
			continue
		}
		checks = append(checks, Check{Name: v.Name, Detail: "set", OK: true})
	}
	return checks
}
