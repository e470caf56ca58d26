package cmd

import (
	"encoding/json"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/drive-clone/api/src/database"
	"github.com/drive-clone/api/src/server"
)

var reconcileCMD = &cobra.Command{
	Use:   "reconcile",
	Short: "run one consistency sweep",
	Long:  `purge expired quota reservations and delete blobs no entry references, then print the report`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := initialize(cmd)
		if err != nil {
			return err
		}

		db, err := database.NewConnection(cfg, logger)
		if err != nil {
			return err
		}
		redis, err := database.NewRedisConnection(cfg, logger)
		if err != nil {
			db.Close()
			return err
		}

		srv, err := server.NewServerWithConnections(cfg, logger, db, redis)
		if err != nil {
			db.Close()
			redis.Close()
			return err
		}
		defer srv.Close()

		report, err := srv.ConsistencyService().RunReconciliation(cmd.Context())
		if err != nil {
			return err
		}

		logger.WithFields(logrus.Fields{
			"orphans_deleted":     report.OrphansDeleted,
			"reservations_purged": report.ReservationsPurged,
		}).Info("Reconciliation finished")

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	},
}

func init() {
	rootCMD.AddCommand(reconcileCMD)
}
