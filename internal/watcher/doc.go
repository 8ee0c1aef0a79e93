// Package watcher keeps the stored catalog in step with the Homebrew store.
//
// A Watcher registers fsnotify watches on the Cellar and Caskroom and on
// every package folder directly below them, which is where installs,
// upgrades and uninstalls show up. Bursts of events are coalesced: the
// OnChange callback runs once the store has been quiet for the debounce
// period, and never overlaps with itself.
//
// Example usage:
//
//	w, err := watcher.New(watcher.Config{
//		Roots:    []string{cellar, caskroom},
//		Debounce: 2 * time.Second,
//		OnChange: func(ctx context.Context, changed []string) error {
//			_, err := sc.ScanPackages(ctx, prefix)
//			return err
//		},
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//	err = w.Run(ctx)
//
// The daemon helpers run the same loop in a detached child process tracked
// by a PID file.
package watcher
