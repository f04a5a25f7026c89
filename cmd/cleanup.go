package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ajcwebdev/autoshow-sub002/internal/modules/clean"
	"github.com/ajcwebdev/autoshow-sub002/internal/utils"
)

var (
	contentDir    string
	cleanupDryRun bool
)

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Remove intermediate files left in the content directory",
	Long: `Remove audio, raw transcripts and front matter files whose item already
has a final prompt or show notes file, plus orphaned LLM temp files. Runs
interrupted before their final file are left alone.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if contentDir == "" {
			settings, err := loadSettings()
			if err != nil {
				return err
			}
			contentDir = settings.ContentDir
		}

		// Check if the content directory exists
		if _, err := os.Stat(contentDir); os.IsNotExist(err) {
			return fmt.Errorf("content directory %s does not exist", contentDir)
		}

		leftovers, err := clean.Sweep(contentDir, cleanupDryRun)
		if err != nil {
			return err
		}
		if len(leftovers) == 0 {
			utils.LogInfo("No leftover files in %s", contentDir)
			return nil
		}
		if cleanupDryRun {
			utils.LogInfo("Dry run - %d files would be deleted.", len(leftovers))
		}
		return nil
	},
}

func init() {
	cleanupCmd.Flags().StringVarP(&contentDir, "dir", "d", "", "Content directory to clean up (default from settings)")
	cleanupCmd.Flags().BoolVarP(&cleanupDryRun, "dry-run", "n", false, "Show what would be deleted without actually deleting")
	rootCmd.AddCommand(cleanupCmd)
}
