// Package watch emits a stream of newly created or modified .pcap paths
// from a non-recursive directory watch.
package watch

import (
	"context"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watch subscribes to filesystem change events in dir (non-recursive) and
// sends every .pcap path touched by a Create or Write (modify) event on the
// returned paths channel. paths closes when ctx is canceled; done closes
// right after, once the watcher goroutine has fully exited, giving the
// supervisor an explicit point to join on during shutdown (spec.md §4.I).
func Watch(ctx context.Context, dir string, logger *zap.Logger) (paths <-chan string, done <-chan struct{}, err error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, nil, err
	}
	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return nil, nil, err
	}

	pathsCh := make(chan string)
	doneCh := make(chan struct{})

	go func() {
		defer close(doneCh)
		defer close(pathsCh)
		defer fsw.Close()

		for {
			select {
			case <-ctx.Done():
				return

			case event, open := <-fsw.Events:
				if !open {
					return
				}
				if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
					continue
				}
				if filepath.Ext(event.Name) != ".pcap" {
					continue
				}
				select {
				case pathsCh <- event.Name:
				case <-ctx.Done():
					return
				}

			case werr, open := <-fsw.Errors:
				if !open {
					return
				}
				logger.Warn("watcher event error", zap.Error(werr))
			}
		}
	}()

	return pathsCh, doneCh, nil
}
