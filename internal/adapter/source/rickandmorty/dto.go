package rickandmorty

// InfoDTO is the pagination envelope of list responses
type InfoDTO struct {
	Count int     `json:"count"`
	Pages int     `json:"pages"`
	Next  *string `json:"next"`
	Prev  *string `json:"prev"`
}

// CharacterPageDTO is the response of GET /character
type CharacterPageDTO struct {
	Info    InfoDTO        `json:"info"`
	Results []CharacterDTO `json:"results"`
}

// LocationRefDTO is a named reference to a location resource
type LocationRefDTO struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// CharacterDTO is a character resource
type CharacterDTO struct {
	ID       int            `json:"id"`
	Name     string         `json:"name"`
	Status   string         `json:"status"`
	Species  string         `json:"species"`
	Type     string         `json:"type"`
	Gender   string         `json:"gender"`
	Origin   LocationRefDTO `json:"origin"`
	Location LocationRefDTO `json:"location"`
	Image    string         `json:"image,omitempty"`
	Episode  []string       `json:"episode"`
	URL      string         `json:"url"`
	Created  string         `json:"created,omitempty"`
}

// EpisodeDTO is an episode resource
type EpisodeDTO struct {
	ID         int      `json:"id"`
	Name       string   `json:"name"`
	AirDate    string   `json:"air_date"`
	Episode    string   `json:"episode"` // Season/episode code, e.g. "S01E01"
	Characters []string `json:"characters,omitempty"`
	URL        string   `json:"url"`
	Created    string   `json:"created,omitempty"`
}

// ErrorDTO is the body of non-2xx responses
type ErrorDTO struct {
	Error string `json:"error"`
}
