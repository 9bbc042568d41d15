// Package watcher re-runs a handler whenever an input file changes.
//
// The watcher observes the file's parent directory with fsnotify so that
// editors and export tools that replace the file (write to a temp file, then
// rename) are seen as well as in-place writes. Bursts of events are
// coalesced: the handler runs once the file has been quiet for the debounce
// interval.
//
// Example usage:
//
//	w, err := watcher.New("baskets.csv", func(ctx context.Context) error {
//		return remine(ctx)
//	})
//	if err != nil {
//		return err
//	}
//	if err := w.Start(ctx); err != nil {
//		return err
//	}
//	defer w.Stop()
//
// A watcher can also run detached from the terminal; see StartDaemon.
package watcher
