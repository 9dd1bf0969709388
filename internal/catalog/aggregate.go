package catalog

import (
	"fmt"
	"sort"
)

// EpisodeEntry is the per-file episode metadata submitted with a series
// upload, before any transcode has run.
type EpisodeEntry struct {
	Season          int     `json:"season"`
	Episode         int     `json:"episode"`
	Title           string  `json:"title"`
	IntroStartTime  float64 `json:"intro_start_time,omitempty"`
	IntroEndTime    float64 `json:"intro_end_time,omitempty"`
	NextEpisodeTime float64 `json:"next_episode_time,omitempty"`
}

// GroupEpisodes folds the per-file entries of one series upload into a
// season-number keyed grouping. The result is independent of submission
// order: episodes are keyed by (season, episode) and each season's list
// is sorted by ascending episode number. Re-submitting the same
// (season, episode) pair replaces the earlier entry rather than
// duplicating it.
func GroupEpisodes(entries []EpisodeEntry) map[int][]Episode {
	bySeason := make(map[int]map[int]Episode)

	for _, e := range entries {
		if bySeason[e.Season] == nil {
			bySeason[e.Season] = make(map[int]Episode)
		}
		bySeason[e.Season][e.Episode] = Episode{
			EpisodeNumber:   e.Episode,
			Title:           e.Title,
			IntroStartTime:  e.IntroStartTime,
			IntroEndTime:    e.IntroEndTime,
			NextEpisodeTime: e.NextEpisodeTime,
		}
	}

	grouped := make(map[int][]Episode, len(bySeason))
	for season, eps := range bySeason {
		list := make([]Episode, 0, len(eps))
		for _, ep := range eps {
			list = append(list, ep)
		}
		sort.Slice(list, func(i, j int) bool {
			return list[i].EpisodeNumber < list[j].EpisodeNumber
		})
		grouped[season] = list
	}
	return grouped
}

// AttachArtifact records the transcode artifact path and probed
// duration on the matching episode, mutating the grouping in place.
// It reports whether a matching (season, episode) entry was found.
func AttachArtifact(grouped map[int][]Episode, season, episode int, filePath string, duration float64) bool {
	eps, ok := grouped[season]
	if !ok {
		return false
	}
	for i := range eps {
		if eps[i].EpisodeNumber == episode {
			eps[i].FilePath = filePath
			eps[i].DurationSeconds = duration
			return true
		}
	}
	return false
}

// ReadyEpisodes filters a season's episode list down to the entries
// whose dispatch produced an artifact. Episodes whose dispatch failed
// are omitted entirely rather than persisted with empty fields.
func ReadyEpisodes(eps []Episode) []Episode {
	ready := make([]Episode, 0, len(eps))
	for _, ep := range eps {
		if ep.FilePath != "" {
			ready = append(ready, ep)
		}
	}
	return ready
}

// AppendSeason adds a season to the growing result of one upload
// request. Duplicate season numbers within a request are a caller
// error, not a silent merge.
func AppendSeason(seasons []Season, season Season) ([]Season, error) {
	for _, s := range seasons {
		if s.SeasonNumber == season.SeasonNumber {
			return seasons, fmt.Errorf("duplicate season %d in upload request", season.SeasonNumber)
		}
	}
	return append(seasons, season), nil
}
