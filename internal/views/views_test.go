package views

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmcdole/citadel/internal/adapter/biometric"
	"github.com/mmcdole/citadel/internal/adapter/source/fixture"
	"github.com/mmcdole/citadel/internal/catalog"
	"github.com/mmcdole/citadel/internal/domain"
	"github.com/mmcdole/citadel/internal/favorites"
	"github.com/mmcdole/citadel/internal/runloop"
	"github.com/mmcdole/citadel/internal/session"
	"github.com/mmcdole/citadel/internal/store"
)

var t0 = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

type harness struct {
	loop    *runloop.Loop
	bus     *favorites.Bus
	src     *fixture.Source
	store   *store.MemoryStore
	svc     *catalog.Service
	auth    *biometric.Scripted
	clock   *session.ManualClock
	session *session.Coordinator
}

func setup(t *testing.T, n int) *harness {
	t.Helper()
	loop := runloop.New()
	t.Cleanup(loop.Close)

	h := &harness{
		loop:  loop,
		bus:   favorites.NewBus(loop, nil),
		src:   fixture.Generate(n),
		store: store.NewMemoryStore(),
		auth:  biometric.NewScripted(),
		clock: session.NewManualClock(t0),
	}
	h.svc = catalog.NewService(h.src, h.store, nil)
	h.session = session.NewCoordinator(h.auth, session.Config{
		Timeout:  5 * time.Minute,
		Clock:    h.clock,
		Executor: loop,
	}, nil)
	return h
}

// settle drains the loop and any reloads the drained callbacks started
func (h *harness) settle(waiters ...interface{ Wait() }) {
	h.loop.Flush()
	for _, w := range waiters {
		w.Wait()
	}
	h.loop.Flush()
}

func (h *harness) warmCache(t *testing.T) {
	t.Helper()
	for page := 1; ; page++ {
		p, err := h.svc.GetPage(t.Context(), page, domain.CharacterFilter{})
		require.NoError(t, err)
		if !p.Info.HasNextPage {
			return
		}
	}
}

func characterIDs(chars []domain.Character) []int {
	out := make([]int, len(chars))
	for i, c := range chars {
		out[i] = c.ID
	}
	return out
}

func serverError() error {
	return &domain.TransportError{Kind: domain.TransportServer, StatusCode: 500}
}

func TestBackground_DropsWorkAfterClose(t *testing.T) {
	var b background
	ran := make(chan struct{}, 2)

	require.True(t, b.Go(func() { ran <- struct{}{} }))
	b.Wait()
	assert.Len(t, ran, 1)

	b.Close()
	assert.False(t, b.Go(func() { ran <- struct{}{} }))
	b.Wait()
	assert.Len(t, ran, 1)
}
