package source

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmcdole/citadel/internal/adapter"
	"github.com/mmcdole/citadel/internal/adapter/source/fixture"
	"github.com/mmcdole/citadel/internal/adapter/source/rickandmorty"
)

func TestNewClient(t *testing.T) {
	cfg := adapter.DefaultConfig()

	src, err := NewClientFromConfig(cfg, nil)
	require.NoError(t, err)
	assert.IsType(t, &rickandmorty.Client{}, src)

	cfg.API.Source = adapter.SourceTypeFixture
	src, err = NewClientFromConfig(cfg, nil)
	require.NoError(t, err)
	assert.IsType(t, &fixture.Source{}, src)

	cfg.API.Source = "graphql"
	_, err = NewClientFromConfig(cfg, nil)
	assert.Error(t, err)

	_, err = NewClient(nil, nil)
	assert.Error(t, err)

	_, err = NewClient(&adapter.APIConfig{Source: adapter.SourceTypeRickAndMorty}, nil)
	assert.Error(t, err)
}
