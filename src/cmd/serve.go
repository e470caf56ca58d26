package cmd

import (
	"github.com/spf13/cobra"

	"github.com/drive-clone/api/src/server"
)

var serveCMD = &cobra.Command{
	Use:   "serve",
	Short: "run the HTTP API",
	Long:  `connect to the database, Redis and the blob store, then serve the API until SIGINT/SIGTERM`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := initialize(cmd)
		if err != nil {
			return err
		}

		logger.WithField("environment", cfg.Environment).Info("Starting drive API")

		srv, err := server.NewServer(cfg, logger)
		if err != nil {
			logger.WithError(err).Error("Server init failed")
			return err
		}
		defer srv.Close()

		return srv.Run()
	},
}

func init() {
	rootCMD.AddCommand(serveCMD)
}
