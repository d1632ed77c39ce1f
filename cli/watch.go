package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"github.com/yoanbernabeu/counttype/pipeline"
	"github.com/yoanbernabeu/counttype/scanner"
	"github.com/yoanbernabeu/counttype/stats"
)

// watchAndCount runs a full count, then recounts from scratch after the
// directory settles following a change. Runs never overlap: they happen
// on this goroutine, between event reads.
func watchAndCount(ctx context.Context, cmd *cobra.Command, runCfg pipeline.RunConfig) error {
	if err := scanner.Verify(runCfg.Dir); err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(runCfg.Dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", runCfg.Dir, err)
	}

	own := scanner.NewExclusions(runCfg.Outputs()...)
	if err := recount(ctx, cmd, runCfg); err != nil {
		return err
	}
	logger.Info("watching for changes", "dir", runCfg.Dir, "debounce", cfg.Watch.Debounce)

	var settle <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op == fsnotify.Chmod || own.Matches(event.Name) {
				continue
			}
			logger.Debug("change detected", "path", event.Name, "op", event.Op.String())
			settle = time.After(cfg.Watch.Debounce)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch error", "error", err)

		case <-settle:
			settle = nil
			if err := recount(ctx, cmd, runCfg); err != nil {
				return err
			}
		}
	}
}

// recount runs one pass. Only destination errors stop watching: a
// transient scan failure is logged and retried on the next change.
func recount(ctx context.Context, cmd *cobra.Command, runCfg pipeline.RunConfig) error {
	_, err := countOnce(ctx, cmd, runCfg)
	if err == nil || errors.Is(err, context.Canceled) {
		return nil
	}
	var destErr *stats.DestinationError
	if errors.As(err, &destErr) {
		return err
	}
	logger.Warn("count failed", "error", err)
	return nil
}
