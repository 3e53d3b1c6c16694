package orchestrator

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// StopSignalName is the file whose creation in the signals directory stops a run.
const StopSignalName = "stop"

// SignalsDir returns the signals directory inside workDir.
func SignalsDir(workDir string) string {
	return filepath.Join(workDir, ".mastercoder", "signals")
}

// StopWatcher cancels a context when a stop file appears in the signals
// directory. The engine notices the cancellation at the next phase boundary.
type StopWatcher struct {
	dir    string
	cancel context.CancelFunc

	mu      sync.Mutex
	stopped bool

	watcher *fsnotify.Watcher
	done    chan struct{}
	wg      sync.WaitGroup
}

// WatchStopSignal derives a cancellable context from parent and cancels it
// when <workDir>/.mastercoder/signals/stop is created or written. A stale
// stop file is removed first.
func WatchStopSignal(parent context.Context, workDir string) (context.Context, *StopWatcher, error) {
	dir := SignalsDir(workDir)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, nil, fmt.Errorf("create signals directory: %w", err)
	}
	_ = os.Remove(filepath.Join(dir, StopSignalName))

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, nil, fmt.Errorf("watch %s: %w", dir, err)
	}

	ctx, cancel := context.WithCancel(parent)
	sw := &StopWatcher{
		dir:     dir,
		cancel:  cancel,
		watcher: watcher,
		done:    make(chan struct{}),
	}

	sw.wg.Add(1)
	go sw.watch()

	return ctx, sw, nil
}

func (sw *StopWatcher) watch() {
	defer sw.wg.Done()
	for {
		select {
		case <-sw.done:
			return
		case event, ok := <-sw.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != StopSignalName {
				continue
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) != 0 {
				debugLog("[signals] stop signal received: %s", event.Name)
				sw.mu.Lock()
				sw.stopped = true
				sw.mu.Unlock()
				sw.cancel()
			}
		case _, ok := <-sw.watcher.Errors:
			if !ok {
				return
			}
		}
	}
}

// RequestStop writes the stop file for a run in workDir.
func RequestStop(workDir string) error {
	dir := SignalsDir(workDir)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create signals directory: %w", err)
	}
	return os.WriteFile(filepath.Join(dir, StopSignalName), []byte("stop\n"), 0644)
}

// Stopped reports whether a stop signal has been received.
func (sw *StopWatcher) Stopped() bool {
	sw.mu.Lock()
	defer sw.mu.Unlock()
	return sw.stopped
}

// Close stops watching, cancels the derived context and removes the stop file.
func (sw *StopWatcher) Close() error {
	close(sw.done)
	err := sw.watcher.Close()
	sw.wg.Wait()
	sw.cancel()
	_ = os.Remove(filepath.Join(sw.dir, StopSignalName))
	return err
}
