package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/conneroisu/sitepack/internal/watcher"
)

var watchCmd = &cobra.Command{
	Use:     "watch",
	Aliases: []string{"w"},
	Short:   "Rebuild the site whenever the source tree changes",
	Long: `Build once, then watch the source directory and rebuild after every
debounced batch of changes. Entry points are discovered again on each
rebuild, so newly referenced scripts and stylesheets are picked up.

Examples:
  sitepack watch
  sitepack watch --sourcemap`,
	Args: cobra.NoArgs,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return bindFlags(cmd, buildBindings)
	},
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
	AddBuildFlags(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	sess, err := openSession()
	if err != nil {
		return err
	}
	defer sess.Close()

	ctx, stop := signalContext(context.Background())
	defer stop()

	// A failing first build is reported and watching continues.
	sess.orchestrator.Build(ctx)

	fw, err := newSiteWatcher(sess)
	if err != nil {
		return err
	}
	if err := fw.Start(ctx); err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}
	defer fw.Stop()

	fmt.Fprintf(cmd.OutOrStdout(), "Watching %s (Ctrl+C to stop)\n", sess.config.Source)
	<-ctx.Done()

	stats := sess.orchestrator.Metrics().Snapshot()
	fmt.Fprintf(cmd.OutOrStdout(), "%d build(s), %d failed, average %s\n",
		stats.TotalBuilds, stats.FailedBuilds, stats.AverageDuration.Round(1e6))
	return nil
}

// newSiteWatcher watches the source tree, skipping ignored directories,
// editor temp files and the output tree, and rebuilds on every batch.
func newSiteWatcher(sess *session) (*watcher.FileWatcher, error) {
	logger := sess.logger.WithComponent("watch")
	fw, err := watcher.NewFileWatcher(sess.config.Watch.Debounce, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	fw.AddFilter(watcher.IgnoreFilter(sess.config.Watch.Ignore))
	fw.AddFilter(watcher.NoTempFilter)
	fw.AddFilter(watcher.OutsideFilter(sess.config.Output))

	fw.AddHandler(func(events []watcher.ChangeEvent) error {
		ctx := context.Background()
		logger.Info(ctx, "Change detected", "files", len(events), "first", events[0].Path)
		_, err := sess.orchestrator.Build(ctx)
		return err
	})

	if err := fw.AddRecursive(sess.config.Source); err != nil {
		fw.Stop()
		return nil, fmt.Errorf("failed to watch %s: %w", sess.config.Source, err)
	}
	return fw, nil
}
