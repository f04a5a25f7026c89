package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ajcwebdev/autoshow-sub002/internal/utils"
	"github.com/ajcwebdev/autoshow-sub002/internal/workflow"
)

var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Generate show notes for a video, playlist, URL list, file or RSS feed",
	Long: `Run the show notes pipeline: resolve metadata, acquire audio, transcribe,
build the prompt, optionally call a language model and write the result to
the content directory.

Transcription and LLM flags take an optional model, which must be attached
with "=": --whisper=tiny, --ollama=qwen2.5:0.5b. A bare --whisper uses the
default model.

Examples:
  autoshow process --video "https://www.youtube.com/watch?v=MORMZXEaONk"
  autoshow process --file content/audio.mp3 --whisper=tiny --claude
  autoshow process --rss "https://ajcwebdev.substack.com/feed" --last 2 --deepgram`,
	Args: noModelArgs,
}

func init() {
	flags := bindProcessFlags(processCmd)

	processCmd.RunE = func(cmd *cobra.Command, args []string) error {
		opts, err := flags.options()
		if err != nil {
			return err
		}
		settings, err := loadSettings()
		if err != nil {
			return err
		}

		p, err := workflow.New(cmd.Context(), opts, settings, workflow.Deps{})
		if err != nil {
			return err
		}

		res, err := p.Run(cmd.Context())
		if err != nil {
			return err
		}

		switch {
		case res.InfoPath != "":
			utils.LogSuccess("Metadata written to %s", utils.Highlight(res.InfoPath))
		case len(res.Failed) > 0:
			utils.LogWarning("%d of %d items failed", len(res.Failed), len(res.Failed)+len(res.Succeeded))
			for _, f := range res.Failed {
				utils.LogWarning("  %s (%s): %s", f.Item, f.Stage, f.Error)
			}
		default:
			utils.LogSuccess("Processed %d item(s)", len(res.Succeeded))
		}
		if len(res.Succeeded) == 0 && len(res.Failed) > 0 {
			return fmt.Errorf("all %d items failed", len(res.Failed))
		}
		return nil
	}

	rootCmd.AddCommand(processCmd)
}
