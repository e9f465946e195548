package catalog

import (
	"context"
	"sort"

	"github.com/mmcdole/citadel/internal/domain"
)

// WatchProgress summarizes how many of a character's episodes were watched
type WatchProgress struct {
	Watched int
	Total   int
}

// Ratio returns the watched fraction in [0,1]
func (p WatchProgress) Ratio() float64 {
	if p.Total == 0 {
		return 0
	}
	return float64(p.Watched) / float64(p.Total)
}

// Complete reports whether every episode was watched
func (p WatchProgress) Complete() bool {
	return p.Total > 0 && p.Watched == p.Total
}

// ProgressOf counts watched episodes
func ProgressOf(episodes []domain.Episode) WatchProgress {
	p := WatchProgress{Total: len(episodes)}
	for _, e := range episodes {
		if e.IsWatched {
			p.Watched++
		}
	}
	return p
}

// GetEpisodes fetches episodes in one request, stamps watched markers and
// returns them sorted by id
func (s *Service) GetEpisodes(ctx context.Context, ids []int) ([]domain.Episode, error) {
	if len(ids) == 0 {
		return []domain.Episode{}, nil
	}

	episodes, err := s.source.FetchEpisodes(ctx, ids)
	if err != nil {
		s.logger.Error("failed to fetch episodes", "error", err, "count", len(ids))
		return nil, err
	}

	watched, err := s.store.WatchedEpisodeIDs()
	if err != nil {
		s.logger.Error("failed to read watched markers", "error", err)
		watched = map[int]struct{}{}
	}
	for i := range episodes {
		_, episodes[i].IsWatched = watched[episodes[i].ID]
	}

	sort.Slice(episodes, func(i, j int) bool { return episodes[i].ID < episodes[j].ID })
	s.logger.Debug("fetched episodes", "count", len(episodes))
	return episodes, nil
}

// MarkWatched records the episode as watched. Marking twice is a no-op.
func (s *Service) MarkWatched(episodeID int) error {
	if err := s.store.MarkWatched(episodeID); err != nil {
		s.logger.Error("failed to mark watched", "error", err, "episodeID", episodeID)
		return err
	}
	return nil
}

// UnmarkWatched removes the watched marker. Unmarking twice is a no-op.
func (s *Service) UnmarkWatched(episodeID int) error {
	if err := s.store.UnmarkWatched(episodeID); err != nil {
		s.logger.Error("failed to unmark watched", "error", err, "episodeID", episodeID)
		return err
	}
	return nil
}

// ToggleWatched flips the marker given the state the caller displays and
// returns the new state
func (s *Service) ToggleWatched(episodeID int, currentlyWatched bool) (bool, error) {
	if currentlyWatched {
		return false, s.UnmarkWatched(episodeID)
	}
	return true, s.MarkWatched(episodeID)
}

// MarkAllWatched marks every id, stopping at the first failure
func (s *Service) MarkAllWatched(episodeIDs []int) error {
	for _, id := range episodeIDs {
		if err := s.MarkWatched(id); err != nil {
			return err
		}
	}
	return nil
}

// UnmarkAllWatched clears every id, stopping at the first failure
func (s *Service) UnmarkAllWatched(episodeIDs []int) error {
	for _, id := range episodeIDs {
		if err := s.UnmarkWatched(id); err != nil {
			return err
		}
	}
	return nil
}

// IsWatched reports the stored marker, false when the store cannot be read
func (q *Queries) IsWatched(episodeID int) bool {
	ok, err := q.store.IsWatched(episodeID)
	if err != nil {
		q.logger.Error("failed to read watched marker", "error", err, "episodeID", episodeID)
		return false
	}
	return ok
}
