package catalog

import (
	"log/slog"
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/mmcdole/citadel/internal/domain"
)

// Queries provides synchronous, cache-only reads.
// Store failures degrade to empty results.
type Queries struct {
	store  domain.CatalogStore
	logger *slog.Logger
}

// NewQueries creates a new Queries instance.
func NewQueries(store domain.CatalogStore, logger *slog.Logger) *Queries {
	if logger == nil {
		logger = slog.Default()
	}
	return &Queries{store: store, logger: logger}
}

// GetCachedCharacters returns every cached character ordered by ascending id
func (q *Queries) GetCachedCharacters() []domain.Character {
	chars, err := q.store.Characters()
	if err != nil {
		q.logger.Error("failed to read cached characters", "error", err)
		return []domain.Character{}
	}
	return chars
}

// GetCachedCharacter returns a single cached row
func (q *Queries) GetCachedCharacter(id int) (domain.Character, bool) {
	c, ok, err := q.store.GetCharacter(id)
	if err != nil {
		q.logger.Error("failed to read cached character", "error", err, "id", id)
		return domain.Character{}, false
	}
	return c, ok
}

// GetFavoriteCharacters returns favorite rows ordered by name, then id
func (q *Queries) GetFavoriteCharacters() []domain.Character {
	favs, err := q.store.FavoriteCharacters()
	if err != nil {
		q.logger.Error("failed to read favorites", "error", err)
		return []domain.Character{}
	}
	SortByName(favs)
	return favs
}

// SortByName orders characters by name, case-insensitively and
// locale-aware. Equal names fall back to byte order, then to id.
func SortByName(chars []domain.Character) {
	col := collate.New(language.Und, collate.IgnoreCase)
	sort.SliceStable(chars, func(i, j int) bool {
		a, b := chars[i], chars[j]
		if c := col.CompareString(a.Name, b.Name); c != 0 {
			return c < 0
		}
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.ID < b.ID
	})
}
