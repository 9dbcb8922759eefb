package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/autobrr/animelink/cmd"
)

func main() {
	var rootCmd = &cobra.Command{
		Use:   "animelink",
		Short: "Link downloaded anime into a library by content",
		Long: `A CLI application that matches downloaded folders against an anime library
by their media files and reflinks them into the matching series folder.
`,
		SilenceUsage: true,
	}

	// Parse persistent flags
	rootCmd.PersistentFlags().StringVarP(&cmd.FlagConfigFile, "config", "c", cmd.FlagConfigFile, "Config file")
	rootCmd.PersistentFlags().StringVarP(&cmd.FlagLogFile, "log", "l", cmd.FlagLogFile, "Log file")
	rootCmd.PersistentFlags().CountVarP(&cmd.FlagLogLevel, "verbose", "v", "Verbose level")

	rootCmd.PersistentFlags().StringVar(&cmd.FlagStatePath, "state", "", "State file (overrides paths.state)")
	rootCmd.PersistentFlags().StringVar(&cmd.FlagSourcePath, "source", "", "Source folder (overrides paths.source)")
	rootCmd.PersistentFlags().StringVar(&cmd.FlagLibraryPath, "library", "", "Library folder (overrides paths.library)")
	rootCmd.PersistentFlags().BoolVar(&cmd.FlagDryRun, "dry-run", false, "Dry run mode")

	rootCmd.AddCommand(cmd.TestCommand())
	rootCmd.AddCommand(cmd.RenewCommand())
	rootCmd.AddCommand(cmd.ReflinkCommand())
	rootCmd.AddCommand(cmd.VersionCommand())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Println(err)
		stop()
		os.Exit(1)
	}
}
