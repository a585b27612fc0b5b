package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/golang-migrate/migrate/v4"
	migratemysql "github.com/golang-migrate/migrate/v4/database/mysql"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/spf13/cobra"

	"storefront.GO/config"
	"storefront.GO/migrations"
	"storefront.GO/model/entity"
)

var migrateDown bool

var migrateCmd = &cobra.Command{
	Use:   "db:migrate",
	Short: "Apply database schema migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := config.NewDB()
		if err != nil {
			return fmt.Errorf("database connection failed: %w", err)
		}
		sqldb, err := db.DB()
		if err != nil {
			return err
		}
		defer sqldb.Close()

		if os.Getenv("DB_DRIVER") == "sqlite" {
			if err := db.AutoMigrate(&entity.Product{}, &entity.CartItem{}); err != nil {
				return fmt.Errorf("auto migrate: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "SQLite schema is up to date")
			return nil
		}

		src, err := iofs.New(migrations.FS, ".")
		if err != nil {
			return fmt.Errorf("could not open migrations: %w", err)
		}
		driver, err := migratemysql.WithInstance(sqldb, &migratemysql.Config{})
		if err != nil {
			return fmt.Errorf("could not create migrate driver: %w", err)
		}
		m, err := migrate.NewWithInstance("iofs", src, "mysql", driver)
		if err != nil {
			return fmt.Errorf("could not create migrate instance: %w", err)
		}

		if migrateDown {
			err = m.Down()
		} else {
			err = m.Up()
		}
		if errors.Is(err, migrate.ErrNoChange) {
			fmt.Fprintln(cmd.OutOrStdout(), "No migrations to apply")
			return nil
		}
		if err != nil {
			return fmt.Errorf("could not run migrations: %w", err)
		}
		version, _, _ := m.Version()
		fmt.Fprintf(cmd.OutOrStdout(), "Schema at version %d\n", version)
		return nil
	},
}

func init() {
	migrateCmd.Flags().BoolVar(&migrateDown, "down", false, "Roll back every migration")
	rootCmd.AddCommand(migrateCmd)
}
