package rickandmorty

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmcdole/citadel/internal/domain"
)

const characterPageJSON = `{
  "info": {"count": 826, "pages": 42, "next": "https://rickandmortyapi.com/api/character?page=2", "prev": null},
  "results": [
    {
      "id": 1, "name": "Rick Sanchez", "status": "Alive", "species": "Human", "type": "", "gender": "Male",
      "origin": {"name": "Earth (C-137)", "url": "https://rickandmortyapi.com/api/location/1"},
      "location": {"name": "Citadel of Ricks", "url": "https://rickandmortyapi.com/api/location/3"},
      "image": "https://rickandmortyapi.com/api/character/avatar/1.jpeg",
      "episode": ["https://rickandmortyapi.com/api/episode/1", "https://rickandmortyapi.com/api/episode/2"],
      "url": "https://rickandmortyapi.com/api/character/1"
    },
    {
      "id": 7, "name": "Abradolf Lincler", "status": "unknown", "species": "Human", "type": "Genetic experiment",
      "gender": "Male", "origin": {"name": "Earth (Replacement Dimension)", "url": ""},
      "location": {"name": "Testicle Monster Dimension", "url": ""},
      "episode": ["https://rickandmortyapi.com/api/episode/10"],
      "url": "https://rickandmortyapi.com/api/character/7"
    }
  ]
}`

func setupServer(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(Config{BaseURL: srv.URL}, nil)
}

func requireTransportKind(t *testing.T, err error, kind domain.TransportErrorKind) *domain.TransportError {
	t.Helper()
	var te *domain.TransportError
	require.True(t, errors.As(err, &te), "expected *TransportError, got %v", err)
	assert.Equal(t, kind, te.Kind)
	return te
}

func TestClient_FetchPage(t *testing.T) {
	var gotPath, gotQuery string
	c := setupServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(characterPageJSON))
	})

	page, err := c.FetchPage(context.Background(), 1, domain.CharacterFilter{
		Name:    "rick",
		Status:  domain.StatusAlive,
		Species: "human",
	})
	require.NoError(t, err)

	assert.Equal(t, "/character", gotPath)
	assert.Equal(t, "name=rick&page=1&species=human&status=alive", gotQuery)

	assert.Equal(t, domain.PageInfo{TotalCount: 826, TotalPages: 42, HasNextPage: true, HasPreviousPage: false}, page.Info)
	require.Len(t, page.Characters, 2)

	rick := page.Characters[0]
	assert.Equal(t, 1, rick.ID)
	assert.Equal(t, domain.StatusAlive, rick.Status)
	assert.Equal(t, domain.GenderMale, rick.Gender)
	assert.Equal(t, "Citadel of Ricks", rick.Location.Name)
	assert.Equal(t, []int{1, 2}, rick.EpisodeIDs())
	assert.False(t, rick.IsFavorite)

	assert.Equal(t, domain.StatusUnknown, page.Characters[1].Status)
	assert.Equal(t, "Genetic experiment", page.Characters[1].Type)
}

func TestClient_FetchPageOmitsEmptyFilter(t *testing.T) {
	var gotQuery string
	c := setupServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		_, _ = w.Write([]byte(characterPageJSON))
	})

	_, err := c.FetchPage(context.Background(), 3, domain.CharacterFilter{})
	require.NoError(t, err)
	assert.Equal(t, "page=3", gotQuery)
}

func TestClient_ErrorClassification(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   domain.TransportErrorKind
	}{
		{"not found", http.StatusNotFound, `{"error":"There is nothing here"}`, domain.TransportNotFound},
		{"server error", http.StatusInternalServerError, `oops`, domain.TransportServer},
		{"bad gateway", http.StatusBadGateway, ``, domain.TransportServer},
		{"decode failure", http.StatusOK, `{"info": [}`, domain.TransportDecode},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := setupServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := c.FetchPage(context.Background(), 1, domain.CharacterFilter{})
			te := requireTransportKind(t, err, tt.want)
			if tt.want == domain.TransportServer {
				assert.Equal(t, tt.status, te.StatusCode)
			}
			assert.Equal(t, tt.want == domain.TransportNotFound, domain.IsNotFound(err))
		})
	}
}

func TestClient_InvalidRequestsSkipNetwork(t *testing.T) {
	calls := 0
	c := setupServer(t, func(w http.ResponseWriter, r *http.Request) { calls++ })

	_, err := c.FetchPage(context.Background(), 0, domain.CharacterFilter{})
	requireTransportKind(t, err, domain.TransportInvalidRequest)

	_, err = c.FetchEpisodes(context.Background(), nil)
	requireTransportKind(t, err, domain.TransportInvalidRequest)

	assert.Zero(t, calls)
}

func TestClient_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	c := NewClient(Config{BaseURL: url}, nil)
	_, err := c.FetchCharacter(context.Background(), 1)
	requireTransportKind(t, err, domain.TransportUnreachable)
}

func TestClient_RequestTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(srv.Close)
	t.Cleanup(func() { close(release) })

	c := NewClient(Config{BaseURL: srv.URL, RequestTimeout: 50 * time.Millisecond, ResourceTimeout: time.Second}, nil)
	start := time.Now()
	_, err := c.FetchCharacter(context.Background(), 1)
	requireTransportKind(t, err, domain.TransportUnreachable)
	assert.Less(t, time.Since(start), time.Second)
}

func TestClient_FetchCharacter(t *testing.T) {
	var gotPath string
	c := setupServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_, _ = w.Write([]byte(`{"id": 2, "name": "Morty Smith", "status": "Alive", "species": "Human",
			"gender": "Male", "origin": {"name": "unknown", "url": ""}, "location": {"name": "Citadel of Ricks", "url": ""},
			"episode": []}`))
	})

	ch, err := c.FetchCharacter(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, "/character/2", gotPath)
	assert.Equal(t, "Morty Smith", ch.Name)
	assert.Empty(t, ch.EpisodeIDs())
}

func TestClient_FetchEpisodes(t *testing.T) {
	tests := []struct {
		name     string
		ids      []int
		wantPath string
		body     string
		wantIDs  []int
	}{
		{
			name:     "single id returns object",
			ids:      []int{28},
			wantPath: "/episode/28",
			body:     `{"id": 28, "name": "The Ricklantis Mixup", "air_date": "September 10, 2017", "episode": "S03E07", "url": "u"}`,
			wantIDs:  []int{28},
		},
		{
			name:     "several ids return array",
			ids:      []int{1, 2},
			wantPath: "/episode/1,2",
			body: `[{"id": 1, "name": "Pilot", "air_date": "December 2, 2013", "episode": "S01E01", "url": "u1"},
				{"id": 2, "name": "Lawnmower Dog", "air_date": "December 9, 2013", "episode": "S01E02", "url": "u2"}]`,
			wantIDs: []int{1, 2},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotPath string
			c := setupServer(t, func(w http.ResponseWriter, r *http.Request) {
				gotPath = r.URL.Path
				_, _ = w.Write([]byte(tt.body))
			})

			episodes, err := c.FetchEpisodes(context.Background(), tt.ids)
			require.NoError(t, err)
			assert.Equal(t, tt.wantPath, gotPath)

			got := make([]int, len(episodes))
			for i, e := range episodes {
				got[i] = e.ID
				assert.False(t, e.IsWatched)
			}
			assert.Equal(t, tt.wantIDs, got)

			season, ok := episodes[0].Season()
			require.True(t, ok)
			assert.Positive(t, season)
		})
	}
}
