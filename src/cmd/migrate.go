package cmd

import (
	"github.com/spf13/cobra"

	"github.com/drive-clone/api/src/database"
	auth_repo "github.com/drive-clone/api/src/repository/auth"
	files_repo "github.com/drive-clone/api/src/repository/files"
	"github.com/drive-clone/api/src/server"
)

var migrateCMD = &cobra.Command{
	Use:   "migrate",
	Short: "migrate",
	Long:  `create the users, entries and reservations tables`,
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
		defer db.Close()

		if err := server.EnsureSchema(cmd.Context(),
			auth_repo.NewUserRepository(db, logger),
			files_repo.NewEntryRepository(db.DB, logger),
			files_repo.NewReservationRepository(db.DB, logger),
		); err != nil {
			return err
		}

		logger.WithField("driver", cfg.DatabaseDriver).Info("Schema is up to date")
		return nil
	},
}

func init() {
	rootCMD.AddCommand(migrateCMD)
}
