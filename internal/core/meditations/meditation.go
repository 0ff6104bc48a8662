package meditations

import (
	"Vented/internal/store"
)

// Collection is the store path meditation documents live under.
const Collection = "meditations"

// Meditation is one guided audio track in the library.
type Meditation struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	AudioURL    string `json:"audioUrl"`
	Category    string `json:"category"`
}

// FromDocument maps a store document onto a Meditation.
func FromDocument(doc store.Document) Meditation {
	return Meditation{
		ID:          doc.ID,
		Title:       store.AsString(doc.Data["title"]),
		Description: store.AsString(doc.Data["description"]),
		AudioURL:    store.AsString(doc.Data["audioUrl"]),
		Category:    store.AsString(doc.Data["category"]),
	}
}

// seedCatalog is written to the store on first boot.
var seedCatalog = []Meditation{
	{ID: "1", Title: "Morning Gratitude", Description: "Start your day with a positive mindset.", AudioURL: "https://cdn.vented.app/audio/morning-gratitude.mp3", Category: "Stress & Anxiety"},
	{ID: "2", Title: "Deep Sleep Relaxation", Description: "A calming meditation to help you fall asleep.", AudioURL: "https://cdn.vented.app/audio/deep-sleep.mp3", Category: "Sleep & Relaxation"},
	{ID: "3", Title: "Mindful Walking", Description: "A guided meditation for your daily walk.", AudioURL: "https://cdn.vented.app/audio/mindful-walking.mp3", Category: "Walking Meditations"},
}
