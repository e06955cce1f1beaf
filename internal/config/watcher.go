// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher reloads the global config when the config file changes on disk.
// Editors tend to emit bursts of write/rename events, so changes are
// debounced before a reload is attempted.
type Watcher struct {
	watcher  *fsnotify.Watcher
	path     string
	onReload func(*Config)

	mu      sync.Mutex
	timer   *time.Timer
	done    chan struct{}
	stopped bool
}

// debounceDelay is how long to wait after the last event before reloading.
const debounceDelay = 250 * time.Millisecond

// NewWatcher starts watching the default config file. onReload is called
// with the freshly loaded config after each successful reload; it may be
// nil.
func NewWatcher(onReload func(*Config)) (*Watcher, error) {
	path, err := Path()
	if err != nil {
		return nil, err
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	// Watch the directory, not the file: atomic saves replace the inode
	// and a file-level watch would go stale after the first rename.
	if err := fw.Add(filepath.Dir(path)); err != nil {
		fw.Close()
		return nil, fmt.Errorf("failed to watch config directory: %w", err)
	}

	w := &Watcher{
		watcher:  fw,
		path:     path,
		onReload: onReload,
		done:     make(chan struct{}),
	}
	go w.loop()
	return w, nil
}

func (w *Watcher) loop() {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != filepath.Clean(w.path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			w.scheduleReload()
		case _, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			// Watch errors are not fatal; the stale config stays active.
		case <-w.done:
			return
		}
	}
}

func (w *Watcher) scheduleReload() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped {
		return
	}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(debounceDelay, func() {
		if err := ReloadGlobal(); err != nil {
			return
		}
		if w.onReload != nil {
			w.onReload(Global())
		}
	})
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if !w.stopped {
		w.stopped = true
		close(w.done)
		if w.timer != nil {
			w.timer.Stop()
		}
	}
	w.mu.Unlock()
	return w.watcher.Close()
}
