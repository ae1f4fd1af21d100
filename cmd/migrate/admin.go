package main

import (
	"errors"
	"fmt"
	"os"

	appidentity "github.com/sitestock/backend/internal/application/identity"
	"github.com/sitestock/backend/internal/domain/identity"
	"github.com/sitestock/backend/internal/domain/shared"
	"github.com/sitestock/backend/internal/infrastructure/config"
	"github.com/sitestock/backend/internal/infrastructure/persistence"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var adminOpts struct {
	name     string
	email    string
	username string
}

// passwordEnv keeps the bootstrap password out of shell history
const passwordEnv = "SITESTOCK_ADMIN_PASSWORD"

var createAdminCmd = &cobra.Command{
	Use:   "create-admin",
	Short: "Create the first admin user",
	Long: "Create an admin user on a migrated database. The password is read from " +
		passwordEnv + ". An existing username or email is reported and left untouched.",
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		password := os.Getenv(passwordEnv)
		if password == "" {
			return fmt.Errorf("%s is not set", passwordEnv)
		}

		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		db, err := persistence.NewDatabase(&cfg.Database)
		if err != nil {
			return err
		}
		defer db.Close()
		if db.Driver == "sqlite" {
			if err := db.AutoMigrate(); err != nil {
				return err
			}
		}

		users := appidentity.NewUserService(
			persistence.NewGormUserRepository(db.DB),
			persistence.NewGormSiteRepository(db.DB),
			log,
		)
		user, err := users.Create(cmd.Context(), appidentity.CreateUserRequest{
			Name:     adminOpts.name,
			Email:    adminOpts.email,
			Username: adminOpts.username,
			Password: password,
			Role:     string(identity.RoleAdmin),
		})
		if errors.Is(err, shared.ErrAlreadyExists) {
			log.Warn("Admin user already exists", zap.String("username", adminOpts.username))
			return nil
		}
		if err != nil {
			return err
		}
		log.Info("Admin user created", zap.String("id", user.ID.String()), zap.String("username", user.Username))
		return nil
	},
}

func init() {
	createAdminCmd.Flags().StringVar(&adminOpts.name, "name", "Administrator", "display name")
	createAdminCmd.Flags().StringVar(&adminOpts.email, "email", "", "email address")
	createAdminCmd.Flags().StringVar(&adminOpts.username, "username", "admin", "login name")
	_ = createAdminCmd.MarkFlagRequired("email")

	rootCmd.AddCommand(createAdminCmd)
}
