package cmd

import (
	"fmt"
	"os"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/ajcwebdev/autoshow-sub002/internal/config"
	"github.com/ajcwebdev/autoshow-sub002/internal/utils"
	"github.com/ajcwebdev/autoshow-sub002/internal/validator"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate environment setup",
	Long: `Check that the external tools and API keys a process run would need are
available. Accepts the same source, transcription and LLM flags as process;
with no source flag a video run with the given backends is assumed.`,
	Args: noModelArgs,
}

func init() {
	flags := bindProcessFlags(validateCmd)

	validateCmd.RunE = func(cmd *cobra.Command, args []string) error {
		if lo.EveryBy(config.SourceKinds, func(k config.SourceKind) bool { return *flags.sources[k] == "" }) {
			*flags.sources[config.SourceVideo] = "validate"
		}
		opts, err := flags.options()
		if err != nil {
			return err
		}
		settings, err := loadSettings()
		if err != nil {
			return err
		}

		utils.LogInfo("Validating environment...")
		checks := validator.Report(cmd.Context(), &utils.RealCommandExecutor{}, os.Getenv,
			validator.RequiredTools(opts, settings), validator.RequiredEnvVars(opts))

		for _, c := range checks {
			if c.OK {
				utils.LogSuccess("✓ %s: %s", c.Name, c.Detail)
			} else {
				utils.LogError("✗ %s: %s", c.Name, c.Detail)
			}
		}

		failed := lo.CountBy(checks, func(c validator.Check) bool { return !c.OK })
		if failed > 0 {
			return fmt.Errorf("%d of %d checks failed", failed, len(checks))
		}
		utils.LogSuccess("Environment validation completed successfully")
		return nil
	}

	rootCmd.AddCommand(validateCmd)
}
