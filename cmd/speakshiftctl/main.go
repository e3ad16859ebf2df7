package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"SpeakShift/internal/config"
	"SpeakShift/internal/model"
	"SpeakShift/internal/repo"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

// dbOpener открывает БД по DSN. В тестах подменяется на SQLite.
type dbOpener func(dsn string) (*gorm.DB, error)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rootCmd := newRootCommand(config.FromEnv(), repo.InitDB)
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "speakshiftctl: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand(cfg *config.Config, open dbOpener) *cobra.Command {
	cmd := &cobra.Command{
		Use:          "speakshiftctl",
		Short:        "SpeakShift maintenance CLI",
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVarP(&cfg.DatabaseDSN, "database", "d", cfg.DatabaseDSN, "Database DSN (defaults to DATABASE_URI)")
	cmd.AddCommand(
		newMigrateCmd(cfg, open),
		newCreateAdminCmd(cfg, open),
		newVersionCmd(),
	)
	return cmd
}

func newMigrateCmd(cfg *config.Config, open dbOpener) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update database tables",
		RunE: func(cmd *cobra.Command, _ []string) error {
			// InitDB уже выполняет миграцию
			db, err := openDB(cfg, open)
			if err != nil {
				return err
			}
			defer closeDB(db)
			fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
			return nil
		},
	}
}

func newCreateAdminCmd(cfg *config.Config, open dbOpener) *cobra.Command {
	var name, username, email, password string
	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create an administrator or promote an existing user",
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, err := openDB(cfg, open)
			if err != nil {
				return err
			}
			defer closeDB(db)
			return createAdmin(cmd.Context(), cmd.OutOrStdout(), repo.NewUserRepository(db), name, username, email, password)
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Display name (defaults to username)")
	cmd.Flags().StringVar(&username, "username", "", "Username")
	cmd.Flags().StringVar(&email, "email", "", "Email")
	cmd.Flags().StringVar(&password, "password", "", "Password, at least 6 characters")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "SpeakShift CLI\nVersion: %s\nBuild date: %s\n", version, buildDate)
		},
	}
}

// createAdmin назначает роль admin существующему пользователю
// или создаёт нового, если email не найден.
func createAdmin(ctx context.Context, out io.Writer, users repo.UserRepository, name, username, email, password string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return errors.New("email is required")
	}

	existing, err := users.GetByEmail(ctx, email)
	switch {
	case err == nil:
		if err := users.UpdateFields(ctx, existing.ID, map[string]any{"role": model.RoleAdmin, "disabled": false}); err != nil {
			return fmt.Errorf("promote user: %w", err)
		}
		fmt.Fprintf(out, "user %s promoted to admin\n", email)
		return nil
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("find user: %w", err)
	}

	if username == "" {
		return errors.New("username is required for a new user")
	}
	if len(password) < 6 {
		return errors.New("password must be at least 6 characters")
	}
	if name == "" {
		name = username
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	u := &model.User{
		Name:     name,
		Username: username,
		Email:    email,
		Password: string(hash),
		Role:     model.RoleAdmin,
		Status:   model.StatusActive,
		Avatar:   model.AvatarURL(name),
	}
	if err := users.Create(ctx, u); err != nil {
		return fmt.Errorf("create admin: %w", err)
	}
	fmt.Fprintf(out, "admin %s created (%s)\n", email, u.ID)
	return nil
}

func openDB(cfg *config.Config, open dbOpener) (*gorm.DB, error) {
	if strings.TrimSpace(cfg.DatabaseDSN) == "" {
		return nil, errors.New("database DSN is not set: use --database or DATABASE_URI")
	}
	db, err := open(cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return db, nil
}

func closeDB(db *gorm.DB) {
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
