package service

import (
	"encoding/json/v2"
	"log/slog"
	"slices"
	"sync"

	"github.com/scriptoriumapp/scriptorium-server/internal/store"
)

// CollectionService is the registry of distinct collection names. It owns
// name uniqueness and rename validation only; membership accounting lives on
// the books themselves. The two stores are not transactionally linked:
// callers that rename here must propagate via
// BookService.RenameCollectionReferences.
type CollectionService struct {
	mu      sync.RWMutex
	names   []string
	gateway SnapshotStore
	emitter Emitter
	logger  *slog.Logger
}

// NewCollectionService creates a collection registry, loading any prior
// snapshot from the gateway.
func NewCollectionService(gateway SnapshotStore, emitter Emitter, logger *slog.Logger) *CollectionService {
	s := &CollectionService{
		gateway: gateway,
		emitter: emitter,
		logger:  logger,
	}
	s.load()
	return s
}

func (s *CollectionService) load() {
	text, ok, err := s.gateway.Load(store.CollectionsKey)
	if err != nil {
		s.logger.Warn("loading collection snapshot failed, starting empty", "error", err)
		return
	}
	if !ok {
		return
	}

	var names []string
	if err := json.Unmarshal([]byte(text), &names); err != nil {
		s.logger.Warn("collection snapshot unreadable, starting empty", "error", err)
		return
	}
	s.names = names
}

// persist writes the registry to the gateway. Caller must hold the lock.
func (s *CollectionService) persist() {
	data, err := json.Marshal(s.names)
	if err != nil {
		s.logger.Error("marshal collection snapshot", "error", err)
		return
	}
	if err := s.gateway.Save(store.CollectionsKey, string(data)); err != nil {
		s.logger.Warn("persist collection snapshot", "error", err)
	}
}

// Add registers the name. Returns false without mutating if the name is
// already present (exact, case-sensitive match).
func (s *CollectionService) Add(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if slices.Contains(s.names, name) {
		return false
	}
	s.names = append(s.names, name)

	s.logger.Info("collection added", "name", name)
	s.emitter.Emit(CollectionEvent{Type: EventCollectionAdded, Name: name})
	s.persist()
	return true
}

// Delete removes the name if present; no-op otherwise. It does not touch any
// book's customCollections — callers wanting that cleanup run
// BookService.SetCollectionMembership(name, nil) first.
func (s *CollectionService) Delete(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := slices.Index(s.names, name)
	if i < 0 {
		return
	}
	s.names = append(s.names[:i], s.names[i+1:]...)

	s.logger.Info("collection deleted", "name", name)
	s.emitter.Emit(CollectionEvent{Type: EventCollectionDeleted, Name: name})
	s.persist()
}

// Rename replaces oldName with newName in place. Returns false without
// mutating if newName already exists as a different entry. Renaming an
// absent oldName returns true and changes nothing. Callers are responsible
// for propagating the rename to book references; the registry does not.
func (s *CollectionService) Rename(oldName, newName string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if newName != oldName && slices.Contains(s.names, newName) {
		return false
	}

	i := slices.Index(s.names, oldName)
	if i < 0 || oldName == newName {
		return true
	}
	s.names[i] = newName

	s.logger.Info("collection renamed", "old_name", oldName, "new_name", newName)
	s.emitter.Emit(CollectionEvent{Type: EventCollectionRenamed, Name: newName, OldName: oldName})
	s.persist()
	return true
}

// List returns a copy of the registered names in insertion order.
func (s *CollectionService) List() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.names)
}

// Contains reports whether the name is registered.
func (s *CollectionService) Contains(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Contains(s.names, name)
}
