// Package source builds the remote catalog backend from configuration.
package source

import (
	"fmt"
	"log/slog"

	"github.com/mmcdole/citadel/internal/adapter"
	"github.com/mmcdole/citadel/internal/adapter/source/fixture"
	"github.com/mmcdole/citadel/internal/adapter/source/rickandmorty"
	"github.com/mmcdole/citadel/internal/domain"
)

// FixtureSize is the number of synthetic characters served offline
const FixtureSize = 120

// NewClient creates a CharacterSource based on the configured source type.
// This factory function abstracts away the specific backend implementation.
func NewClient(cfg *adapter.APIConfig, logger *slog.Logger) (domain.CharacterSource, error) {
	if cfg == nil {
		return nil, fmt.Errorf("api config is nil")
	}

	switch cfg.Source {
	case adapter.SourceTypeRickAndMorty, "":
		if cfg.BaseURL == "" {
			return nil, fmt.Errorf("api base URL is required")
		}
		return rickandmorty.NewClient(rickandmorty.Config{
			BaseURL:         cfg.BaseURL,
			RequestTimeout:  cfg.RequestTimeout,
			ResourceTimeout: cfg.ResourceTimeout,
			RateLimit:       cfg.RateLimit,
			Burst:           cfg.Burst,
		}, logger), nil

	case adapter.SourceTypeFixture:
		return fixture.Generate(FixtureSize), nil

	default:
		return nil, fmt.Errorf("unknown source type: %s", cfg.Source)
	}
}

// NewClientFromConfig creates a CharacterSource from the application config
func NewClientFromConfig(cfg *adapter.Config, logger *slog.Logger) (domain.CharacterSource, error) {
	return NewClient(&cfg.API, logger)
}
