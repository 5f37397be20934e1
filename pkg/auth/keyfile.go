package auth

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounceInterval is how long WatchKeyFile waits after the last
// write before reloading.
const DefaultDebounceInterval = 100 * time.Millisecond

// LoadKeyFile reads an authorization string from path.
//
// The first non-empty line is used. It may be a raw "sk-..." key or a full
// "Bearer sk-..." string. The file must be a regular file readable only by
// its owner (0600 or 0400).
func LoadKeyFile(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("key file not found: %s", path)
		}
		return "", fmt.Errorf("failed to stat key file: %w", err)
	}
	if !info.Mode().IsRegular() {
		return "", fmt.Errorf("key file is not a regular file: %s", path)
	}

	mode := info.Mode().Perm()
	if mode != 0600 && mode != 0400 {
		return "", fmt.Errorf("insecure permissions on %s: %o (expected 0600 or 0400)", path, mode)
	}

	// #nosec G304 - path comes from operator configuration
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read key file: %w", err)
	}

	line := firstLine(data)
	if line == "" {
		return "", fmt.Errorf("key file is empty: %s", path)
	}

	auth := line
	if !strings.HasPrefix(line, BearerPrefix) {
		auth = BearerPrefix + line
	}
	if err := ValidateAuth(auth); err != nil {
		return "", fmt.Errorf("key file %s: %w", path, err)
	}
	return auth, nil
}

func firstLine(data []byte) string {
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		if line := bytes.TrimSpace(scanner.Bytes()); len(line) > 0 {
			return string(line)
		}
	}
	return ""
}

// KeyWatcher reloads a Credential whenever its key file changes.
type KeyWatcher struct {
	path     string
	cred     *Credential
	watcher  *fsnotify.Watcher
	logger   *slog.Logger
	debounce *debouncer
	onReload func(error)
}

// WatcherOption configures a KeyWatcher.
type WatcherOption func(*KeyWatcher)

// WithDebounce overrides DefaultDebounceInterval.
func WithDebounce(d time.Duration) WatcherOption {
	return func(w *KeyWatcher) {
		w.debounce = newDebouncer(d)
	}
}

// WithWatcherLogger sets the logger used for reload events.
func WithWatcherLogger(logger *slog.Logger) WatcherOption {
	return func(w *KeyWatcher) {
		w.logger = logger
	}
}

// WithReloadHook registers fn to run after every reload attempt with the
// attempt's result.
func WithReloadHook(fn func(error)) WatcherOption {
	return func(w *KeyWatcher) {
		w.onReload = fn
	}
}

// NewKeyWatcher creates a watcher for path. The parent directory is watched
// so that editors and secret mounts that replace the file are noticed.
func NewKeyWatcher(path string, cred *Credential, opts ...WatcherOption) (*KeyWatcher, error) {
	w := &KeyWatcher{
		path:     filepath.Clean(path),
		cred:     cred,
		logger:   slog.Default().With("component", "auth.keywatcher"),
		debounce: newDebouncer(DefaultDebounceInterval),
	}
	for _, opt := range opts {
		opt(w)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(w.path)); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("failed to watch key file directory: %w", err)
	}
	w.watcher = watcher
	return w, nil
}

// Watch blocks until ctx is cancelled, reloading the credential on changes.
func (w *KeyWatcher) Watch(ctx context.Context) error {
	defer func() {
		w.debounce.stop()
		_ = w.watcher.Close()
	}()

	w.logger.Info("key file watcher started", "path", w.path)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("key file watcher stopped")
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}

			w.logger.Debug("key file event", "op", event.Op.String())
			w.debounce.trigger(w.reload)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			w.logger.Error("key file watcher error", "error", err)
		}
	}
}

func (w *KeyWatcher) reload() {
	auth, err := LoadKeyFile(w.path)
	if err == nil {
		err = w.cred.ReplaceAuth(auth)
	}

	if err != nil {
		w.logger.Warn("key file reload rejected, keeping previous key", "error", err)
	} else {
		w.logger.Info("key file reloaded", "auth", MaskAuth(auth))
	}

	if w.onReload != nil {
		w.onReload(err)
	}
}

// WatchKeyFile watches path and replaces cred's authorization whenever the
// file holds a new valid key. It blocks until ctx is cancelled.
func WatchKeyFile(ctx context.Context, path string, cred *Credential, opts ...WatcherOption) error {
	w, err := NewKeyWatcher(path, cred, opts...)
	if err != nil {
		return err
	}
	return w.Watch(ctx)
}

// debouncer runs only the last callback after a quiet period.
type debouncer struct {
	interval time.Duration
	mu       sync.Mutex
	timer    *time.Timer
	stopped  bool
}

func newDebouncer(interval time.Duration) *debouncer {
	return &debouncer{interval: interval}
}

func (d *debouncer) trigger(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.interval, fn)
}

func (d *debouncer) stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
