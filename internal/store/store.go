package store

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mmcdole/citadel/internal/domain"
	bolt "go.etcd.io/bbolt"
)

// Bucket names
var (
	bucketCharacters = []byte("characters")
	bucketWatched    = []byte("watched")
)

// characterRecord is the persisted form of a character row
type characterRecord struct {
	ID          int      `json:"id"`
	Name        string   `json:"name"`
	Status      string   `json:"status"`
	Species     string   `json:"species"`
	Type        string   `json:"type"`
	Gender      string   `json:"gender"`
	OriginName  string   `json:"originName"`
	OriginURL   string   `json:"originUrl"`
	LocName     string   `json:"locationName"`
	LocURL      string   `json:"locationUrl"`
	ImageURL    string   `json:"imageUrl,omitempty"`
	EpisodeURLs []string `json:"episodes"`
	IsFavorite  bool     `json:"isFavorite"`
	UpdatedAt   int64    `json:"updatedAt"`
}

// watchedRecord marks an episode as watched
type watchedRecord struct {
	WatchedAt int64 `json:"watchedAt"`
}

func newRecord(c domain.Character, favorite bool) characterRecord {
	return characterRecord{
		ID:          c.ID,
		Name:        c.Name,
		Status:      string(c.Status),
		Species:     c.Species,
		Type:        c.Type,
		Gender:      string(c.Gender),
		OriginName:  c.Origin.Name,
		OriginURL:   c.Origin.URL,
		LocName:     c.Location.Name,
		LocURL:      c.Location.URL,
		ImageURL:    c.ImageURL,
		EpisodeURLs: c.EpisodeURLs,
		IsFavorite:  favorite,
		UpdatedAt:   time.Now().Unix(),
	}
}

func (r characterRecord) toDomain() domain.Character {
	return domain.Character{
		ID:          r.ID,
		Name:        r.Name,
		Status:      domain.ParseStatus(r.Status),
		Species:     r.Species,
		Type:        r.Type,
		Gender:      domain.ParseGender(r.Gender),
		Origin:      domain.Location{Name: r.OriginName, URL: r.OriginURL},
		Location:    domain.Location{Name: r.LocName, URL: r.LocURL},
		ImageURL:    r.ImageURL,
		EpisodeURLs: r.EpisodeURLs,
		IsFavorite:  r.IsFavorite,
	}
}

// CatalogStore implements domain.CatalogStore using BoltDB.
// Each row mutation runs in its own read-modify-write transaction, which
// serializes upserts and toggles touching the same id.
type CatalogStore struct {
	db *bolt.DB
}

// Open opens (or creates) the cache database under dir
func Open(dir string) (*CatalogStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	dbPath := filepath.Join(dir, "citadel.db")
	db, err := bolt.Open(dbPath, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{bucketCharacters, bucketWatched} {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &CatalogStore{db: db}, nil
}

func (s *CatalogStore) Close() error {
	return s.db.Close()
}

// signBit is flipped so negative ids sort before positive ones
const signBit = 1 << 63

// itob encodes an id as a big-endian key so cursor order is ascending id order
func itob(id int) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, uint64(id)^signBit)
	return b
}

func btoi(b []byte) int {
	return int(binary.BigEndian.Uint64(b) ^ signBit)
}

// === Characters ===

func (s *CatalogStore) GetCharacter(id int) (domain.Character, bool, error) {
	var (
		rec   characterRecord
		found bool
	)
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketCharacters).Get(itob(id))
		if v == nil {
			return nil
		}
		found = true
		return json.Unmarshal(v, &rec)
	})
	if err != nil || !found {
		return domain.Character{}, false, err
	}
	return rec.toDomain(), true, nil
}

func (s *CatalogStore) UpsertCharacters(chars []domain.Character) error {
	if len(chars) == 0 {
		return nil
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketCharacters)
		for _, c := range chars {
			key := itob(c.ID)
			favorite := false
			if v := b.Get(key); v != nil {
				var existing characterRecord
				if err := json.Unmarshal(v, &existing); err != nil {
					return fmt.Errorf("decode character %d: %w", c.ID, err)
				}
				favorite = existing.IsFavorite
			}
			data, err := json.Marshal(newRecord(c, favorite))
			if err != nil {
				return err
			}
			if err := b.Put(key, data); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *CatalogStore) SetFavorite(id int, favorite bool) (bool, error) {
	var found bool
	err := s.updateRow(id, func(rec *characterRecord) {
		found = true
		rec.IsFavorite = favorite
	})
	return found, err
}

func (s *CatalogStore) ToggleFavorite(id int) (bool, bool, error) {
	var (
		found    bool
		favorite bool
	)
	err := s.updateRow(id, func(rec *characterRecord) {
		found = true
		rec.IsFavorite = !rec.IsFavorite
		favorite = rec.IsFavorite
	})
	return favorite, found, err
}

// updateRow applies fn to an existing row inside one transaction; missing rows are skipped
func (s *CatalogStore) updateRow(id int, fn func(rec *characterRecord)) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketCharacters)
		key := itob(id)
		v := b.Get(key)
		if v == nil {
			return nil
		}

		var rec characterRecord
		if err := json.Unmarshal(v, &rec); err != nil {
			return err
		}
		fn(&rec)

		data, err := json.Marshal(&rec)
		if err != nil {
			return err
		}
		return b.Put(key, data)
	})
}

func (s *CatalogStore) Characters() ([]domain.Character, error) {
	return s.scan(func(characterRecord) bool { return true })
}

func (s *CatalogStore) FavoriteCharacters() ([]domain.Character, error) {
	return s.scan(func(r characterRecord) bool { return r.IsFavorite })
}

func (s *CatalogStore) FavoriteIDs() (map[int]struct{}, error) {
	favs, err := s.FavoriteCharacters()
	if err != nil {
		return nil, err
	}
	ids := make(map[int]struct{}, len(favs))
	for _, c := range favs {
		ids[c.ID] = struct{}{}
	}
	return ids, nil
}

// scan walks the characters bucket in key (ascending id) order
func (s *CatalogStore) scan(keep func(characterRecord) bool) ([]domain.Character, error) {
	var out []domain.Character
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketCharacters).ForEach(func(k, v []byte) error {
			var rec characterRecord
			if err := json.Unmarshal(v, &rec); err != nil {
				return err
			}
			if keep(rec) {
				out = append(out, rec.toDomain())
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// === Watched markers ===

func (s *CatalogStore) IsWatched(episodeID int) (bool, error) {
	var watched bool
	err := s.db.View(func(tx *bolt.Tx) error {
		watched = tx.Bucket(bucketWatched).Get(itob(episodeID)) != nil
		return nil
	})
	return watched, err
}

func (s *CatalogStore) MarkWatched(episodeID int) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketWatched)
		key := itob(episodeID)
		if b.Get(key) != nil {
			return nil
		}
		data, err := json.Marshal(watchedRecord{WatchedAt: time.Now().Unix()})
		if err != nil {
			return err
		}
		return b.Put(key, data)
	})
}

func (s *CatalogStore) UnmarkWatched(episodeID int) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		// Delete on a missing key is a no-op
		return tx.Bucket(bucketWatched).Delete(itob(episodeID))
	})
}

func (s *CatalogStore) WatchedEpisodeIDs() (map[int]struct{}, error) {
	ids := make(map[int]struct{})
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketWatched).ForEach(func(k, _ []byte) error {
			ids[btoi(k)] = struct{}{}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}
