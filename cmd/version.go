package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/autobrr/animelink/pkg/runtime"
)

func VersionCommand() *cobra.Command {
	command := &cobra.Command{
		Use:   "version",
		Short: "Print version info",
		Long:  `Print version info`,
		Example: `  animelink version
  animelink version --help`,
	}

	command.RunE = func(cmd *cobra.Command, args []string) error {
		fmt.Fprintf(cmd.OutOrStdout(), "animelink version: %s commit: %s built at: %s\n",
			runtime.Version, runtime.GitCommit, runtime.Timestamp)
		return nil
	}

	return command
}
