package domain

import (
	"context"
)

// CharacterSource provides access to the remote catalog.
// Implementations return *TransportError on failure.
type CharacterSource interface {
	// FetchPage returns one page of characters matching filter.
	// Pages are 1-based.
	FetchPage(ctx context.Context, page int, filter CharacterFilter) (CharacterPage, error)

	// FetchCharacter returns a single character
	FetchCharacter(ctx context.Context, id int) (Character, error)

	// FetchEpisodes returns the episodes for ids, in a single request when possible
	FetchEpisodes(ctx context.Context, ids []int) ([]Episode, error)
}

// CatalogStore is the durable local cache.
// Every mutation of a single row is atomic; readers never observe a partially written row.
type CatalogStore interface {
	// === Characters ===
	GetCharacter(id int) (Character, bool, error)

	// UpsertCharacters writes every remote field of each character.
	// IsFavorite is preserved for existing rows and false for new ones.
	UpsertCharacters(chars []Character) error

	// SetFavorite sets the flag; ok is false when no row exists
	SetFavorite(id int, favorite bool) (ok bool, err error)

	// ToggleFavorite flips the flag and returns the new value; ok is false when no row exists
	ToggleFavorite(id int) (favorite bool, ok bool, err error)

	// Characters returns all rows ordered by ascending id
	Characters() ([]Character, error)

	// FavoriteCharacters returns rows with IsFavorite set
	FavoriteCharacters() ([]Character, error)

	// FavoriteIDs returns the ids of all favorite rows
	FavoriteIDs() (map[int]struct{}, error)

	// === Watched markers ===
	IsWatched(episodeID int) (bool, error)
	MarkWatched(episodeID int) error   // No-op when already marked
	UnmarkWatched(episodeID int) error // No-op when not marked
	WatchedEpisodeIDs() (map[int]struct{}, error)

	// === Lifecycle ===
	Close() error
}

// Authenticator is the device authentication capability
type Authenticator interface {
	// IsAvailable reports whether authentication hardware/credentials exist
	IsAvailable() bool

	// Kind reports which kind of authentication the device offers
	Kind() AuthKind

	// Challenge prompts the user. A nil error means success.
	// Failures are returned as *AuthError.
	Challenge(ctx context.Context, reason string) error

	// Invalidate discards any internal context so the next Challenge starts fresh
	Invalidate()
}
