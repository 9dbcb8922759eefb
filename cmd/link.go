package cmd

import (
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/autobrr/animelink/pkg/config"
	"github.com/autobrr/animelink/pkg/logger"
	"github.com/autobrr/animelink/pkg/notification"
	"github.com/autobrr/animelink/pkg/reflink"
	"github.com/autobrr/animelink/pkg/runner"
)

func TestCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "test",
		Short: "Resolve targets for new sources without copying",
		Long: `This command records new folders found in the source folder and matches them
against the library. Resolved targets are saved to the state file, nothing is copied.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAction(cmd, runner.ActionTest)
		},
	}
}

func RenewCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "renew",
		Short: "Re-inspect every source, then resolve targets",
		Long: `This command behaves like test, but also re-inspects sources already present
in the state file so that folders which gained or lost subfolders get their kind refreshed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAction(cmd, runner.ActionRenew)
		},
	}
}

func ReflinkCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "reflink",
		Short: "Resolve targets and reflink sources into the library",
		Long: `This command resolves targets like test, then clones each matched source into
its library folder with copy-on-write. Cloned sources are marked inactive.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAction(cmd, runner.ActionReflink)
		},
	}
}

func runAction(cmd *cobra.Command, action runner.Action) error {
	if err := initCore(); err != nil {
		return err
	}

	log := logger.GetLogger(action.String())
	paths := config.Config.Paths

	unlock, err := lockState(paths.State)
	if err != nil {
		return err
	}
	defer unlock()

	report, err := runner.Run(cmd.Context(), runner.Options{
		Action:      action,
		StatePath:   paths.State,
		SourcePath:  paths.Source,
		LibraryPath: paths.Library,
		Ignore:      ignoreExprs,
		DryRun:      FlagDryRun,
		Cloner:      reflink.New(),
	})
	if err != nil {
		return errors.Wrapf(err, "%s failed", action)
	}

	report.Render(cmd.OutOrStdout())

	log.Infof("Finished in %s: %s (%d listings)", report.Elapsed, report.Summary(), report.Listings)

	noti := notification.NewDiscordSender(log, config.Config.Notifications)
	if noti.CanSend() {
		fields := make([]notification.Field, 0, len(report.Resolutions))
		for _, res := range report.Resolutions {
			fields = append(fields, noti.BuildField(notification.BuildOptions{
				Path:   res.Path.String(),
				Source: res.Source,
				Target: res.Target,
				Status: report.Status(res),
			}))
		}

		if err := noti.Send(cmd.Context(), action.String(), report.Summary(), report.Elapsed, fields, FlagDryRun); err != nil {
			log.WithError(err).Errorf("Failed sending %s notification", noti.Name())
		}
	}

	if report.Failed > 0 {
		return errors.Errorf("%d clones failed", report.Failed)
	}
	return nil
}
