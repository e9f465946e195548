package rickandmorty

import (
	"github.com/mmcdole/citadel/internal/domain"
)

// MapCharacterPage converts a list response to a domain page
func MapCharacterPage(p CharacterPageDTO) domain.CharacterPage {
	return domain.CharacterPage{
		Characters: MapCharacters(p.Results),
		Info: domain.PageInfo{
			TotalCount:      p.Info.Count,
			TotalPages:      p.Info.Pages,
			HasNextPage:     p.Info.Next != nil,
			HasPreviousPage: p.Info.Prev != nil,
		},
	}
}

// MapCharacters converts character resources. The favorite flag is always false.
func MapCharacters(dtos []CharacterDTO) []domain.Character {
	chars := make([]domain.Character, 0, len(dtos))
	for _, d := range dtos {
		chars = append(chars, MapCharacter(d))
	}
	return chars
}

// MapCharacter converts a single character resource
func MapCharacter(d CharacterDTO) domain.Character {
	episodes := d.Episode
	if episodes == nil {
		episodes = []string{}
	}
	return domain.Character{
		ID:          d.ID,
		Name:        d.Name,
		Status:      domain.ParseStatus(d.Status),
		Species:     d.Species,
		Type:        d.Type,
		Gender:      domain.ParseGender(d.Gender),
		Origin:      domain.Location{Name: d.Origin.Name, URL: d.Origin.URL},
		Location:    domain.Location{Name: d.Location.Name, URL: d.Location.URL},
		ImageURL:    d.Image,
		EpisodeURLs: episodes,
	}
}

// MapEpisodes converts episode resources
func MapEpisodes(dtos []EpisodeDTO) []domain.Episode {
	episodes := make([]domain.Episode, 0, len(dtos))
	for _, d := range dtos {
		episodes = append(episodes, domain.Episode{
			ID:      d.ID,
			Name:    d.Name,
			AirDate: d.AirDate,
			Code:    d.Episode,
			URL:     d.URL,
		})
	}
	return episodes
}
