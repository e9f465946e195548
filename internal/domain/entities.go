package domain

import (
	"fmt"
	"net/url"
	"path"
	"regexp"
	"strconv"
	"strings"
)

// CharacterStatus is the life status reported by the remote catalog
type CharacterStatus string

const (
	StatusAlive   CharacterStatus = "alive"
	StatusDead    CharacterStatus = "dead"
	StatusUnknown CharacterStatus = "unknown"
)

// ParseStatus maps a remote status string to a CharacterStatus.
// Unrecognized values map to StatusUnknown.
func ParseStatus(s string) CharacterStatus {
	switch CharacterStatus(strings.ToLower(strings.TrimSpace(s))) {
	case StatusAlive:
		return StatusAlive
	case StatusDead:
		return StatusDead
	default:
		return StatusUnknown
	}
}

// DisplayName returns a human-readable status
func (s CharacterStatus) DisplayName() string {
	switch s {
	case StatusAlive:
		return "Alive"
	case StatusDead:
		return "Dead"
	default:
		return "Unknown"
	}
}

// CharacterGender is the gender reported by the remote catalog
type CharacterGender string

const (
	GenderMale       CharacterGender = "male"
	GenderFemale     CharacterGender = "female"
	GenderGenderless CharacterGender = "genderless"
	GenderUnknown    CharacterGender = "unknown"
)

// ParseGender maps a remote gender string to a CharacterGender.
func ParseGender(s string) CharacterGender {
	switch CharacterGender(strings.ToLower(strings.TrimSpace(s))) {
	case GenderMale:
		return GenderMale
	case GenderFemale:
		return GenderFemale
	case GenderGenderless:
		return GenderGenderless
	default:
		return GenderUnknown
	}
}

// DisplayName returns a human-readable gender
func (g CharacterGender) DisplayName() string {
	switch g {
	case GenderMale:
		return "Male"
	case GenderFemale:
		return "Female"
	case GenderGenderless:
		return "Genderless"
	default:
		return "Unknown"
	}
}

// Location is a named place with an opaque remote reference
type Location struct {
	Name string
	URL  string
}

// Character is a catalog entity.
// IsFavorite is owned locally and is never taken from remote data.
type Character struct {
	ID          int             // Server-assigned identifier
	Name        string          // Display name
	Status      CharacterStatus // alive, dead or unknown
	Species     string          // e.g. "Human"
	Type        string          // Free-text subtype
	Gender      CharacterGender
	Origin      Location
	Location    Location // Last known location
	ImageURL    string   // Empty when the remote has no image
	EpisodeURLs []string // Ordered episode references
	IsFavorite  bool
}

// EpisodeIDs returns the episode ids parsed from the last path component
// of each episode reference. References that do not end in an integer are skipped.
func (c Character) EpisodeIDs() []int {
	ids := make([]int, 0, len(c.EpisodeURLs))
	for _, ref := range c.EpisodeURLs {
		if id, ok := episodeIDFromRef(ref); ok {
			ids = append(ids, id)
		}
	}
	return ids
}

// Coordinates returns the deterministic map position for this character
func (c Character) Coordinates() Coordinates {
	return CoordinatesFor(c.ID)
}

func episodeIDFromRef(ref string) (int, bool) {
	p := ref
	if u, err := url.Parse(ref); err == nil && u.Path != "" {
		p = u.Path
	}
	last := path.Base(strings.TrimRight(p, "/"))
	id, err := strconv.Atoi(last)
	if err != nil {
		return 0, false
	}
	return id, true
}

// CharacterFilter narrows a remote page query. Zero values mean "absent".
type CharacterFilter struct {
	Name    string          // Name substring
	Status  CharacterStatus // Empty when unset
	Species string          // Species substring
}

// IsEmpty reports whether no constraint is set
func (f CharacterFilter) IsEmpty() bool {
	return f.Name == "" && f.Status == "" && f.Species == ""
}

// PageInfo is pagination metadata derived from a remote response
type PageInfo struct {
	TotalCount      int
	TotalPages      int
	HasNextPage     bool
	HasPreviousPage bool
}

// CharacterPage is one bounded batch of characters plus pagination metadata
type CharacterPage struct {
	Characters []Character
	Info       PageInfo
}

// Episode is a single episode record
type Episode struct {
	ID        int
	Name      string
	AirDate   string // As reported remotely, e.g. "December 2, 2013"
	Code      string // "S01E01"
	URL       string
	IsWatched bool // Sourced from the watched-marker store
}

var (
	seasonPattern  = regexp.MustCompile(`S(\d+)`)
	episodePattern = regexp.MustCompile(`E(\d+)`)
)

// Season returns the season number parsed from the episode code
func (e Episode) Season() (int, bool) {
	return codeNumber(seasonPattern, e.Code)
}

// Number returns the episode number within its season
func (e Episode) Number() (int, bool) {
	return codeNumber(episodePattern, e.Code)
}

func codeNumber(re *regexp.Regexp, code string) (int, bool) {
	m := re.FindStringSubmatch(code)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}

// DisplayTitle returns "S01E01 · Pilot"
func (e Episode) DisplayTitle() string {
	if e.Code == "" {
		return e.Name
	}
	return fmt.Sprintf("%s · %s", e.Code, e.Name)
}
