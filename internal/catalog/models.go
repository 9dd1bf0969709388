package catalog

import "time"

// ContentType classifies a catalog entry.
type ContentType string

const (
	TypeMovie  ContentType = "movie"
	TypeSeries ContentType = "series"
)

// Status tracks the transcode lifecycle of a piece of content.
// Transitions are one-way: in_progress moves to ready on encode success
// or to failed on encode error, and neither terminal state ever reverts.
type Status string

const (
	StatusInProgress Status = "in_progress"
	StatusReady      Status = "ready"
	StatusFailed     Status = "failed"
)

// Content is one catalog entry exposed to viewers.
// Movies carry FilePath/DurationSeconds directly; series carry Seasons.
type Content struct {
	ID              int64       `json:"id,omitempty"`
	UUID            string      `json:"uuid"`
	Title           string      `json:"title"`
	Type            ContentType `json:"type"`
	ReleaseYear     int         `json:"release_year"`
	Genre           []string    `json:"genre"`
	Rating          float64     `json:"rating"`
	Description     string      `json:"description,omitempty"`
	Cast            []string    `json:"cast,omitempty"`
	Status          Status      `json:"status"`
	FilePath        string      `json:"file_path,omitempty"`
	DurationSeconds float64     `json:"duration_seconds,omitempty"`
	Seasons         []Season    `json:"seasons,omitempty"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
}

// Season groups the episodes of one series season.
type Season struct {
	SeasonNumber int       `json:"season_number"`
	Episodes     []Episode `json:"episodes"`
}

// Episode is one episode of a season. Intro markers and the
// next-episode skip point are optional; zero means unset.
type Episode struct {
	EpisodeNumber   int     `json:"episode_number"`
	Title           string  `json:"title"`
	IntroStartTime  float64 `json:"intro_start_time,omitempty"`
	IntroEndTime    float64 `json:"intro_end_time,omitempty"`
	NextEpisodeTime float64 `json:"next_episode_time,omitempty"`
	FilePath        string  `json:"file_path,omitempty"`
	DurationSeconds float64 `json:"duration_seconds,omitempty"`
	Status          Status  `json:"status,omitempty"`
}

// EpisodeRow is one flattened row of the per-season episode view,
// returned by Store.SeasonEpisodes.
type EpisodeRow struct {
	UUID            string   `json:"uuid"`
	Title           string   `json:"title"`
	ReleaseYear     int      `json:"release_year"`
	Genre           []string `json:"genre"`
	Rating          float64  `json:"rating"`
	Type            string   `json:"type"`
	SeasonNumber    int      `json:"season_number"`
	Episode         int      `json:"episode"`
	IntroStartTime  float64  `json:"intro_start_time,omitempty"`
	IntroEndTime    float64  `json:"intro_end_time,omitempty"`
	NextEpisodeTime float64  `json:"next_episode_time,omitempty"`
	FilePath        string   `json:"file_path,omitempty"`
}

// ParseContentType normalizes the type strings accepted on the upload
// and listing surfaces. "movies" maps to movie; "tv-shows" and "tvshow"
// map to series. Anything else is rejected.
func ParseContentType(s string) (ContentType, bool) {
	switch s {
	case "movies":
		return TypeMovie, true
	case "tv-shows", "tvshow":
		return TypeSeries, true
	default:
		return "", false
	}
}
