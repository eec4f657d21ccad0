package assets

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/Faultbox/midgard-lod/pkg/lod"
)

// ChangeFunc is called after a watched source was reloaded. err is set
// when the reload or the chain build failed.
type ChangeFunc func(name string, chain *lod.Chain, err error)

// Watch reloads sources in dir that match pattern whenever they change
// and rebuilds their chains. Generated level files are ignored. Bursts of events for the same files are
// coalesced until debounce has passed without further events. Removed
// files are forgotten. Watch blocks until ctx is cancelled.
func (m *Manager) Watch(ctx context.Context, dir, pattern string, debounce time.Duration, onChange ChangeFunc) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer w.Close()

	if err := w.Add(dir); err != nil {
		return fmt.Errorf("watching %s: %w", dir, err)
	}
	m.log.Info("watching sources", zap.String("dir", dir), zap.String("pattern", pattern))

	pending := make(map[string]struct{})
	timer := time.NewTimer(debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if match, _ := filepath.Match(pattern, filepath.Base(ev.Name)); !match || IsLevelFile(ev.Name) {
				continue
			}
			switch {
			case ev.Has(fsnotify.Remove), ev.Has(fsnotify.Rename):
				delete(pending, ev.Name)
				m.Remove(NameFor(ev.Name))
				m.log.Info("source removed", zap.String("path", ev.Name))
			case ev.Has(fsnotify.Create), ev.Has(fsnotify.Write):
				pending[ev.Name] = struct{}{}
				timer.Reset(debounce)
			}

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			m.log.Warn("watcher error", zap.Error(err))

		case <-timer.C:
			for path := range pending {
				m.reload(path, onChange)
			}
			clear(pending)
		}
	}
}

func (m *Manager) reload(path string, onChange ChangeFunc) {
	name, err := m.LoadFile(path)
	if err != nil {
		m.log.Warn("reload failed", zap.String("path", path), zap.Error(err))
		if onChange != nil {
			onChange(NameFor(path), nil, err)
		}
		return
	}

	chain, err := m.Rebuild(name)
	if err != nil {
		m.log.Warn("rebuild failed", zap.String("asset", name), zap.Error(err))
	}
	if onChange != nil {
		onChange(name, chain, err)
	}
}
