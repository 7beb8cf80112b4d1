// root.go viper root command code
package cmd

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Guilherme32/rosa-go/cmd/serve"
	"github.com/Guilherme32/rosa-go/internal/config"
	"github.com/Guilherme32/rosa-go/internal/logging"
)

// RootCommand creates and returns the root command.
func RootCommand() *cobra.Command {
	opts := &config.CLIOptions{}

	rootCmd := &cobra.Command{
		Use:   "rosa",
		Short: "rosa-go optical spectrum acquisition engine",
	}

	if err := setupFlags(rootCmd, opts); err != nil {
		log.Printf("error setting up flags: %v\n", err)
	}

	rootCmd.AddCommand(serve.Command(opts))

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if err := initialize(opts); err != nil {
			return fmt.Errorf("error initializing: %w", err)
		}
		return nil
	}

	return rootCmd
}

// initialize runs before any subcommand: it brings up ambient logging at
// the requested level and resolves the default config directory.
func initialize(opts *config.CLIOptions) error {
	logging.Init()
	if opts.Debug {
		logging.SetLevel(-4) // slog.LevelDebug
	}

	// A custom --config-dir moves the rotating structured log alongside
	// it, so a non-default install keeps its logs and config together.
	if opts.ConfigDir != "" {
		writer, err := logging.RotatingWriter(filepath.Join(opts.ConfigDir, "logs", "app.log"), logging.RotationConfig{})
		if err != nil {
			return fmt.Errorf("opening log file under config dir: %w", err)
		}
		if err := logging.SetOutput(writer, os.Stdout); err != nil {
			return fmt.Errorf("redirecting log output: %w", err)
		}
	} else {
		opts.ConfigDir = config.New().Dir()
	}

	return nil
}

// setupFlags defines flags global to the command line interface.
func setupFlags(rootCmd *cobra.Command, opts *config.CLIOptions) error {
	rootCmd.PersistentFlags().BoolVarP(&opts.Debug, "debug", "d", viper.GetBool("debug"), "Enable debug output")
	rootCmd.PersistentFlags().StringVar(&opts.ConfigDir, "config-dir", viper.GetString("config-dir"), "Directory holding handler.toml and the acquisitor config files (default: OS config dir)")

	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		return fmt.Errorf("error binding flags: %w", err)
	}

	return nil
}
