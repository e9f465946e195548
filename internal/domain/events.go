package domain

// FavoriteEvent announces that a character's favorite flag changed.
// Character is nil when the publisher only knows the id.
type FavoriteEvent struct {
	CharacterID int
	IsFavorite  bool
	Character   *Character
}

// FavoriteToggle is the outcome of toggling a favorite
type FavoriteToggle struct {
	CharacterID int
	IsFavorite  bool // Value after the toggle
	Applied     bool // False when no cached row existed
}

// Event builds the broadcast for this toggle. snapshot may be nil.
func (t FavoriteToggle) Event(snapshot *Character) FavoriteEvent {
	ev := FavoriteEvent{CharacterID: t.CharacterID, IsFavorite: t.IsFavorite}
	if snapshot != nil {
		c := *snapshot
		c.IsFavorite = t.IsFavorite
		ev.Character = &c
	}
	return ev
}
