package prompt

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
)

// PolicySource supplies the policy in force at render time.
type PolicySource interface {
	Policy() Policy
}

// StaticPolicy is a fixed PolicySource.
type StaticPolicy Policy

func (s StaticPolicy) Policy() Policy { return Policy(s) }

// PolicyFile is a PolicySource backed by a YAML file that can be reloaded
// while the server runs. A reload that fails keeps the previous policy.
type PolicyFile struct {
	path    string
	current atomic.Pointer[Policy]
	logger  *slog.Logger
}

// OpenPolicyFile loads path.
func OpenPolicyFile(path string, logger *slog.Logger) (*PolicyFile, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	f := &PolicyFile{path: path, logger: logger}
	if err := f.Reload(); err != nil {
		return nil, err
	}
	return f, nil
}

func (f *PolicyFile) Policy() Policy {
	return *f.current.Load()
}

// Reload re-reads the file.
func (f *PolicyFile) Reload() error {
	p, err := LoadPolicy(f.path)
	if err != nil {
		return err
	}
	f.current.Store(&p)
	return nil
}

// Watch reloads the policy whenever the file is written or replaced.
// The watcher is registered before Watch returns; events are handled in
// the background until ctx is done.
func (f *PolicyFile) Watch(ctx context.Context) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating policy watcher: %w", err)
	}
	// Watch the directory so replaced files are seen too.
	if err := w.Add(filepath.Dir(f.path)); err != nil {
		w.Close()
		return fmt.Errorf("watching %s: %w", f.path, err)
	}

	target := filepath.Clean(f.path)
	go func() {
		defer w.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != target || !(ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create)) {
					continue
				}
				if err := f.Reload(); err != nil {
					f.logger.Warn("policy reload failed, keeping previous policy", "path", f.path, "error", err)
					continue
				}
				f.logger.Info("policy reloaded", "path", f.path)
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				f.logger.Warn("policy watcher error", "error", err)
			}
		}
	}()
	return nil
}
