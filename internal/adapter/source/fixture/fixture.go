// Package fixture provides an in-memory CharacterSource with the same
// paging and error behavior as the remote catalog.
package fixture

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/mmcdole/citadel/internal/domain"
)

// PageSize matches the remote catalog
const PageSize = 20

// Source serves characters and episodes from memory
type Source struct {
	mu         sync.Mutex
	characters []domain.Character
	episodes   map[int]domain.Episode
	pageSize   int
	failures   []error
	calls      map[string]int
}

// New creates a source over chars (served in the given order) and episodes
func New(chars []domain.Character, episodes []domain.Episode) *Source {
	s := &Source{
		characters: append([]domain.Character(nil), chars...),
		episodes:   make(map[int]domain.Episode, len(episodes)),
		pageSize:   PageSize,
		calls:      make(map[string]int),
	}
	for _, e := range episodes {
		s.episodes[e.ID] = e
	}
	return s
}

// Generate creates a source with n synthetic characters, each appearing in
// up to three of 51 synthetic episodes
func Generate(n int) *Source {
	statuses := []domain.CharacterStatus{domain.StatusAlive, domain.StatusDead, domain.StatusUnknown}
	species := []string{"Human", "Alien", "Humanoid", "Robot"}

	const totalEpisodes = 51
	episodes := make([]domain.Episode, 0, totalEpisodes)
	for i := 1; i <= totalEpisodes; i++ {
		season, number := (i-1)/11+1, (i-1)%11+1
		episodes = append(episodes, domain.Episode{
			ID:   i,
			Name: fmt.Sprintf("Episode %d", i),
			Code: fmt.Sprintf("S%02dE%02d", season, number),
			URL:  EpisodeURL(i),
		})
	}

	chars := make([]domain.Character, 0, n)
	for i := 1; i <= n; i++ {
		var refs []string
		for j := 0; j < 3 && i+j*7 <= totalEpisodes; j++ {
			refs = append(refs, EpisodeURL(i+j*7))
		}
		chars = append(chars, domain.Character{
			ID:          i,
			Name:        fmt.Sprintf("Character %d", i),
			Status:      statuses[i%len(statuses)],
			Species:     species[i%len(species)],
			Gender:      domain.GenderUnknown,
			Origin:      domain.Location{Name: "Earth (C-137)"},
			Location:    domain.Location{Name: "Citadel of Ricks"},
			EpisodeURLs: refs,
		})
	}
	return New(chars, episodes)
}

// EpisodeURL returns the canonical reference for an episode id
func EpisodeURL(id int) string {
	return fmt.Sprintf("https://rickandmortyapi.com/api/episode/%d", id)
}

// SetPageSize changes how many characters a page holds
func (s *Source) SetPageSize(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n > 0 {
		s.pageSize = n
	}
}

// Replace swaps the served characters, simulating a remote update
func (s *Source) Replace(chars []domain.Character) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.characters = append([]domain.Character(nil), chars...)
}

// FailNext makes the next calls fail with errs, in order
func (s *Source) FailNext(errs ...error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures = append(s.failures, errs...)
}

// Calls returns how many times the named method was invoked
func (s *Source) Calls(method string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[method]
}

func (s *Source) begin(ctx context.Context, method string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls[method]++
	if err := ctx.Err(); err != nil {
		return &domain.TransportError{Kind: domain.TransportUnreachable, Err: err}
	}
	if len(s.failures) > 0 {
		err := s.failures[0]
		s.failures = s.failures[1:]
		return err
	}
	return nil
}

func (s *Source) FetchPage(ctx context.Context, page int, filter domain.CharacterFilter) (domain.CharacterPage, error) {
	if page < 1 {
		return domain.CharacterPage{}, &domain.TransportError{Kind: domain.TransportInvalidRequest,
			Err: fmt.Errorf("page %d out of range", page)}
	}
	if err := s.begin(ctx, "FetchPage"); err != nil {
		return domain.CharacterPage{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var matched []domain.Character
	for _, c := range s.characters {
		if matches(c, filter) {
			matched = append(matched, c)
		}
	}

	totalPages := (len(matched) + s.pageSize - 1) / s.pageSize
	if page > totalPages {
		return domain.CharacterPage{}, &domain.TransportError{Kind: domain.TransportNotFound}
	}

	start := (page - 1) * s.pageSize
	end := min(start+s.pageSize, len(matched))
	out := make([]domain.Character, 0, end-start)
	for _, c := range matched[start:end] {
		c.IsFavorite = false
		c.EpisodeURLs = append([]string(nil), c.EpisodeURLs...)
		out = append(out, c)
	}
	return domain.CharacterPage{
		Characters: out,
		Info: domain.PageInfo{
			TotalCount:      len(matched),
			TotalPages:      totalPages,
			HasNextPage:     page < totalPages,
			HasPreviousPage: page > 1,
		},
	}, nil
}

func (s *Source) FetchCharacter(ctx context.Context, id int) (domain.Character, error) {
	if err := s.begin(ctx, "FetchCharacter"); err != nil {
		return domain.Character{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.characters {
		if c.ID == id {
			c.IsFavorite = false
			c.EpisodeURLs = append([]string(nil), c.EpisodeURLs...)
			return c, nil
		}
	}
	return domain.Character{}, &domain.TransportError{Kind: domain.TransportNotFound}
}

func (s *Source) FetchEpisodes(ctx context.Context, ids []int) ([]domain.Episode, error) {
	if len(ids) == 0 {
		return nil, &domain.TransportError{Kind: domain.TransportInvalidRequest, Err: fmt.Errorf("no episode ids")}
	}
	if err := s.begin(ctx, "FetchEpisodes"); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Episode, 0, len(ids))
	for _, id := range ids {
		if e, ok := s.episodes[id]; ok {
			e.IsWatched = false
			out = append(out, e)
		}
	}
	if len(out) == 0 {
		return nil, &domain.TransportError{Kind: domain.TransportNotFound}
	}
	return out, nil
}

func matches(c domain.Character, f domain.CharacterFilter) bool {
	if f.Name != "" && !strings.Contains(strings.ToLower(c.Name), strings.ToLower(f.Name)) {
		return false
	}
	if f.Status != "" && c.Status != f.Status {
		return false
	}
	if f.Species != "" && !strings.Contains(strings.ToLower(c.Species), strings.ToLower(f.Species)) {
		return false
	}
	return true
}
