package config

import (
	"fmt"
	"os"

	"github.com/fsnotify/fsnotify"
	yaml "gopkg.in/yaml.v3"

	"github.com/tunehub/telemetry/pkg/observability"
)

// ApplyOverridesFile merges the YAML overrides file into cfg. Fields absent
// from the file keep their current values.
func ApplyOverridesFile(cfg *RateLimitConfig, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	overrides := *cfg
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}

	*cfg = overrides
	return nil
}

// WatchOverrides watches the rate-limit overrides file and calls apply with
// the merged config whenever the file is written. It returns a stop
// function. Parse failures are logged and the previous config stays active.
func WatchOverrides(base RateLimitConfig, path string, logger *observability.Logger, apply func(RateLimitConfig)) (func(), error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := watcher.Add(path); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", path, err)
	}

	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				updated := base
				if err := ApplyOverridesFile(&updated, path); err != nil {
					logger.WithError(err).Warn("Ignoring rate limit overrides update")
					continue
				}
				logger.WithField("file", path).Info("Applying rate limit overrides")
				apply(updated)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.WithError(err).Warn("Overrides watcher error")
			}
		}
	}()

	return func() { watcher.Close() }, nil
}
