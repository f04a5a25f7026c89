package cmd

import (
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/ajcwebdev/autoshow-sub002/internal/server"
	"github.com/ajcwebdev/autoshow-sub002/internal/utils"
	"github.com/ajcwebdev/autoshow-sub002/internal/workflow"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the pipeline over HTTP",
	Long: `Start an HTTP server with GET /health and POST /process. The request body
of /process is a JSON processing request; requests are processed one at a time.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		settings, err := loadSettings()
		if err != nil {
			return err
		}
		if serveAddr == "" {
			serveAddr = settings.Server.Addr
		}
		if utils.CurrentLogLevel < utils.LevelDebug {
			gin.SetMode(gin.ReleaseMode)
		}

		srv := server.New(serveAddr, server.PipelineRunner(settings, workflow.Deps{}))
		return srv.ListenAndServe(cmd.Context())
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default from settings, :3000)")
	rootCmd.AddCommand(serveCmd)
}
