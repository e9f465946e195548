package store

import (
	"sort"
	"sync"

	"github.com/mmcdole/citadel/internal/domain"
)

// MemoryStore implements domain.CatalogStore without persistence.
// Used by tests and when no cache directory is configured.
type MemoryStore struct {
	mu         sync.RWMutex
	characters map[int]domain.Character
	watched    map[int]struct{}
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		characters: make(map[int]domain.Character),
		watched:    make(map[int]struct{}),
	}
}

func (s *MemoryStore) Close() error { return nil }

func (s *MemoryStore) GetCharacter(id int) (domain.Character, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.characters[id]
	return cloneCharacter(c), ok, nil
}

func (s *MemoryStore) UpsertCharacters(chars []domain.Character) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range chars {
		favorite := false
		if existing, ok := s.characters[c.ID]; ok {
			favorite = existing.IsFavorite
		}
		row := cloneCharacter(c)
		row.IsFavorite = favorite
		s.characters[c.ID] = row
	}
	return nil
}

func (s *MemoryStore) SetFavorite(id int, favorite bool) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.characters[id]
	if !ok {
		return false, nil
	}
	c.IsFavorite = favorite
	s.characters[id] = c
	return true, nil
}

func (s *MemoryStore) ToggleFavorite(id int) (bool, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.characters[id]
	if !ok {
		return false, false, nil
	}
	c.IsFavorite = !c.IsFavorite
	s.characters[id] = c
	return c.IsFavorite, true, nil
}

func (s *MemoryStore) Characters() ([]domain.Character, error) {
	return s.collect(func(domain.Character) bool { return true }), nil
}

func (s *MemoryStore) FavoriteCharacters() ([]domain.Character, error) {
	return s.collect(func(c domain.Character) bool { return c.IsFavorite }), nil
}

func (s *MemoryStore) FavoriteIDs() (map[int]struct{}, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make(map[int]struct{})
	for id, c := range s.characters {
		if c.IsFavorite {
			ids[id] = struct{}{}
		}
	}
	return ids, nil
}

// collect returns matching rows ordered by ascending id
func (s *MemoryStore) collect(keep func(domain.Character) bool) []domain.Character {
	s.mu.RLock()
	out := make([]domain.Character, 0, len(s.characters))
	for _, c := range s.characters {
		if keep(c) {
			out = append(out, cloneCharacter(c))
		}
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *MemoryStore) IsWatched(episodeID int) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.watched[episodeID]
	return ok, nil
}

func (s *MemoryStore) MarkWatched(episodeID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.watched[episodeID] = struct{}{}
	return nil
}

func (s *MemoryStore) UnmarkWatched(episodeID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.watched, episodeID)
	return nil
}

func (s *MemoryStore) WatchedEpisodeIDs() (map[int]struct{}, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make(map[int]struct{}, len(s.watched))
	for id := range s.watched {
		ids[id] = struct{}{}
	}
	return ids, nil
}

// cloneCharacter copies the episode slice so callers cannot alias stored rows
func cloneCharacter(c domain.Character) domain.Character {
	if c.EpisodeURLs != nil {
		c.EpisodeURLs = append([]string(nil), c.EpisodeURLs...)
	}
	return c
}
