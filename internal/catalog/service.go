// Package catalog merges the remote character catalog with the local cache.
//
// Remote refreshes never touch the locally owned favorite flag: pages are
// upserted with the flag preserved, then stamped from the store's favorite set.
package catalog

import (
	"context"
	"log/slog"

	"github.com/mmcdole/citadel/internal/domain"
)

// Service orchestrates remote source + store operations.
// Safe for concurrent use; per-row atomicity comes from the store.
type Service struct {
	*Queries

	source domain.CharacterSource
	store  domain.CatalogStore
	logger *slog.Logger
}

// NewService creates a new catalog service.
func NewService(source domain.CharacterSource, store domain.CatalogStore, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		Queries: NewQueries(store, logger),
		source:  source,
		store:   store,
		logger:  logger,
	}
}

// GetPage fetches one page, writes it through to the cache and stamps favorites.
// Transport errors are returned unchanged; see domain.IsNotFound.
func (s *Service) GetPage(ctx context.Context, page int, filter domain.CharacterFilter) (domain.CharacterPage, error) {
	result, err := s.source.FetchPage(ctx, page, filter)
	if err != nil {
		s.logger.Error("failed to fetch page", "error", err, "page", page)
		return domain.CharacterPage{}, err
	}

	if err := s.store.UpsertCharacters(result.Characters); err != nil {
		s.logger.Error("failed to cache page", "error", err, "page", page)
	}

	favorites := s.favoriteIDs()
	for i := range result.Characters {
		_, fav := favorites[result.Characters[i].ID]
		result.Characters[i].IsFavorite = fav
	}

	s.logger.Debug("fetched page", "page", page, "count", len(result.Characters),
		"totalPages", result.Info.TotalPages, "filtered", !filter.IsEmpty())
	return result, nil
}

// GetCharacter fetches a single character and stamps its favorite flag.
// The result is not written to the cache.
func (s *Service) GetCharacter(ctx context.Context, id int) (domain.Character, error) {
	c, err := s.source.FetchCharacter(ctx, id)
	if err != nil {
		s.logger.Error("failed to fetch character", "error", err, "id", id)
		return domain.Character{}, err
	}

	c.IsFavorite = false
	cached, ok, err := s.store.GetCharacter(id)
	if err != nil {
		s.logger.Error("failed to read cached character", "error", err, "id", id)
	} else if ok {
		c.IsFavorite = cached.IsFavorite
	}
	return c, nil
}

// ToggleFavorite flips the stored flag. Toggling an uncached id is a no-op
// reported through Applied. Publishing the change is left to the caller.
func (s *Service) ToggleFavorite(id int) (domain.FavoriteToggle, error) {
	fav, ok, err := s.store.ToggleFavorite(id)
	if err != nil {
		s.logger.Error("failed to toggle favorite", "error", err, "id", id)
		return domain.FavoriteToggle{CharacterID: id}, err
	}
	if !ok {
		s.logger.Debug("toggle ignored, character not cached", "id", id)
		return domain.FavoriteToggle{CharacterID: id}, nil
	}

	s.logger.Info("toggled favorite", "id", id, "isFavorite", fav)
	return domain.FavoriteToggle{CharacterID: id, IsFavorite: fav, Applied: true}, nil
}

func (s *Service) favoriteIDs() map[int]struct{} {
	ids, err := s.store.FavoriteIDs()
	if err != nil {
		s.logger.Error("failed to read favorite ids", "error", err)
		return map[int]struct{}{}
	}
	return ids
}
