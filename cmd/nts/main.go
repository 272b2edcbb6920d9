package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/huh"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"nts-go/internal/app"
	"nts-go/internal/config"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	cfg, _, err := app.LoadConfig()
	return cfg, err
}

// withApp reads the config, creates and loads an NtsApp, runs fn, and
// closes the app. operation identifies the CLI command being run
// (e.g. "AddNote", "ImportAll").
func withApp(ctx context.Context, operation string, fn func(a *app.NtsApp) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	a, err := app.NewNtsApp(ctx, cfg, operation, app.EnvOrPrompt("Passphrase: "))
	if err != nil {
		return fmt.Errorf("initializing app: %w", err)
	}
	if err := a.Load(ctx); err != nil {
		a.Fail(err)
		a.Close()
		return err
	}

	err = fn(a)
	a.Fail(err)
	if closeErr := a.Close(); closeErr != nil && err == nil {
		err = closeErr
	}
	return err
}

// confirm asks a yes/no question. skip answers yes without asking.
func confirm(title, description string, skip bool) (bool, error) {
	if skip {
		return true, nil
	}
	var ok bool
	err := huh.NewConfirm().
		Title(title).
		Description(description).
		Affirmative("Yes").
		Negative("No").
		Value(&ok).
		Run()
	if err != nil {
		return false, fmt.Errorf("confirmation: %w", err)
	}
	return ok, nil
}

var rootCmd = &cobra.Command{
	Use:          "nts",
	Short:        "Notes to self: local-first notes, reminders and journaling",
	SilenceUsage: true,
}

// config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		encrypt, _ := cmd.Flags().GetBool("encrypt")

		paths, err := app.DefaultPaths()
		if err != nil {
			return err
		}
		// Checked up front so keys are not generated for a config that
		// cannot be written.
		if _, err := os.Stat(paths.ConfigFile); err == nil {
			return fmt.Errorf("config file already exists at %s", paths.ConfigFile)
		}

		hostID := uuid.New().String()
		cfg := config.NewConfig(hostID, paths.BaseDir)

		if encrypt {
			cfg.Encryption.Type = "age"
			passphrase, err := app.NewPassphrase()
			if err != nil {
				return err
			}
			recipient, err := app.SetupEncryption(cfg.Encryption, passphrase)
			if err != nil {
				return err
			}
			fmt.Printf("Encryption key: %s\n", recipient)
		}

		if err := config.Init(paths.ConfigFile, cfg); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		fmt.Printf("Configuration initialized at %s\n", paths.ConfigFile)
		fmt.Printf("Host ID: %s\n", hostID)
		fmt.Printf("Base Dir: %s\n", paths.BaseDir)
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "View configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, paths, err := app.LoadConfig()
		if err != nil {
			return err
		}

		fmt.Printf("Configuration from %s:\n\n", paths.ConfigFile)
		fmt.Printf("Host ID:    %s\n", cfg.HostID)
		fmt.Printf("Base Dir:   %s\n", cfg.BaseDir)
		fmt.Printf("Log Dir:    %s\n", cfg.LogDir)
		fmt.Printf("Local:      %s (%s)\n", cfg.Local.Type, cfg.Local.Namespace)
		fmt.Printf("Remote:     %s\n", cfg.Remote.Type)
		fmt.Printf("Encryption: %s\n", cfg.Encryption.Type)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configInitCmd)
	configInitCmd.Flags().Bool("encrypt", false, "Generate an age key pair and seal remote payloads")
	configCmd.AddCommand(configListCmd)

	rootCmd.AddCommand(configCmd)
}
