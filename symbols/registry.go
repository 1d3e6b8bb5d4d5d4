// This file is part of Dwarfsym.
//
// Dwarfsym is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Dwarfsym is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Dwarfsym.  If not, see <https://www.gnu.org/licenses/>.

package symbols

import (
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/jetsetilly/dwarfsym/curated"
	"github.com/jetsetilly/dwarfsym/logger"
)

// Error patterns for the Registry type.
const (
	NotRegistered     = "registry: no provider for %s"
	AlreadyRegistered = "registry: provider for %s already registered"
)

// Registry is a read-only collection of completed providers keyed by the
// path of the executable they were built from.
//
// Providers are immutable once built but the executable on disk is not. The
// registry watches each registered path and marks the provider stale when
// the file changes underneath it. A stale provider still answers queries,
// the staleness flag is advice to the owner that a rebuild is due.
type Registry struct {
	crit    sync.Mutex
	watcher *fsnotify.Watcher
	entries map[string]*registryEntry

	done chan bool
}

type registryEntry struct {
	provider Provider
	stale    bool
}

// NewRegistry is the preferred method of initialisation for the Registry
// type. The Close() function must be called when the registry is no longer
// required.
func NewRegistry() (*Registry, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, curated.Errorf("registry: %v", err)
	}

	reg := &Registry{
		watcher: watcher,
		entries: make(map[string]*registryEntry),
		done:    make(chan bool),
	}

	go reg.watch()

	return reg, nil
}

// watch services the fsnotify event channel until Close() is called.
func (reg *Registry) watch() {
	for {
		select {
		case <-reg.done:
			return
		case event, ok := <-reg.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Remove|fsnotify.Rename) != 0 {
				reg.crit.Lock()
				if e, ok := reg.entries[event.Name]; ok {
					if !e.stale {
						logger.Logf("registry", "%s has changed on disk", event.Name)
					}
					e.stale = true
				}
				reg.crit.Unlock()
			}
		case err, ok := <-reg.watcher.Errors:
			if !ok {
				return
			}
			logger.Logf("registry", "watcher: %v", err)
		}
	}
}

// Add a completed provider to the registry.
func (reg *Registry) Add(path string, provider Provider) error {
	reg.crit.Lock()
	defer reg.crit.Unlock()

	if _, ok := reg.entries[path]; ok {
		return curated.Errorf(AlreadyRegistered, path)
	}

	reg.entries[path] = &registryEntry{provider: provider}

	// a watch failure is not fatal. the provider is still usable, it just
	// never goes stale
	if err := reg.watcher.Add(path); err != nil {
		logger.Logf("registry", "cannot watch %s: %v", path, err)
	}

	return nil
}

// Lookup returns the provider for the path and whether the executable has
// changed on disk since the provider was built.
func (reg *Registry) Lookup(path string) (Provider, bool, error) {
	reg.crit.Lock()
	defer reg.crit.Unlock()

	e, ok := reg.entries[path]
	if !ok {
		return nil, false, curated.Errorf(NotRegistered, path)
	}

	return e.provider, e.stale, nil
}

// Remove the provider for the path from the registry.
func (reg *Registry) Remove(path string) error {
	reg.crit.Lock()
	defer reg.crit.Unlock()

	if _, ok := reg.entries[path]; !ok {
		return curated.Errorf(NotRegistered, path)
	}

	delete(reg.entries, path)
	_ = reg.watcher.Remove(path)

	return nil
}

// Close the registry and stop watching all registered paths.
func (reg *Registry) Close() error {
	close(reg.done)
	return reg.watcher.Close()
}
