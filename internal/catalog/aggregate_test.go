package catalog

import (
	"reflect"
	"testing"
)

func TestGroupEpisodesOrderIndependence(t *testing.T) {
	t.Parallel()

	forward := []EpisodeEntry{
		{Season: 1, Episode: 1, Title: "Pilot"},
		{Season: 1, Episode: 2, Title: "Second"},
		{Season: 2, Episode: 1, Title: "Opener"},
	}
	shuffled := []EpisodeEntry{
		{Season: 2, Episode: 1, Title: "Opener"},
		{Season: 1, Episode: 2, Title: "Second"},
		{Season: 1, Episode: 1, Title: "Pilot"},
	}

	a := GroupEpisodes(forward)
	b := GroupEpisodes(shuffled)

	if !reflect.DeepEqual(a, b) {
		t.Errorf("GroupEpisodes() is order-dependent:\nforward:  %+v\nshuffled: %+v", a, b)
	}

	if len(a) != 2 {
		t.Fatalf("GroupEpisodes() produced %d seasons, expected 2", len(a))
	}
	if len(a[1]) != 2 || len(a[2]) != 1 {
		t.Errorf("GroupEpisodes() season sizes = %d/%d, expected 2/1", len(a[1]), len(a[2]))
	}

	// Episodes within a season must come back sorted ascending.
	if a[1][0].EpisodeNumber != 1 || a[1][1].EpisodeNumber != 2 {
		t.Errorf("GroupEpisodes() season 1 episodes out of order: %+v", a[1])
	}
}

func TestGroupEpisodesResubmissionReplaces(t *testing.T) {
	t.Parallel()

	grouped := GroupEpisodes([]EpisodeEntry{
		{Season: 1, Episode: 1, Title: "First try"},
		{Season: 1, Episode: 1, Title: "Second try", IntroStartTime: 12},
	})

	if len(grouped[1]) != 1 {
		t.Fatalf("GroupEpisodes() kept %d entries for S01E01, expected 1", len(grouped[1]))
	}
	ep := grouped[1][0]
	if ep.Title != "Second try" {
		t.Errorf("GroupEpisodes() kept title %q, expected the later submission", ep.Title)
	}
	if ep.IntroStartTime != 12 {
		t.Errorf("GroupEpisodes() IntroStartTime = %v, expected 12", ep.IntroStartTime)
	}
}

func TestGroupEpisodesEmpty(t *testing.T) {
	t.Parallel()

	grouped := GroupEpisodes(nil)
	if len(grouped) != 0 {
		t.Errorf("GroupEpisodes(nil) = %+v, expected empty map", grouped)
	}
}

func TestAttachArtifact(t *testing.T) {
	t.Parallel()

	grouped := GroupEpisodes([]EpisodeEntry{
		{Season: 1, Episode: 1, Title: "Pilot"},
		{Season: 1, Episode: 2, Title: "Second"},
	})

	if !AttachArtifact(grouped, 1, 2, "/videos/series/Show/S01/E02/ep.m3u8", 1321.5) {
		t.Fatal("AttachArtifact() = false for an existing episode")
	}

	ep := grouped[1][1]
	if ep.FilePath != "/videos/series/Show/S01/E02/ep.m3u8" {
		t.Errorf("AttachArtifact() FilePath = %q", ep.FilePath)
	}
	if ep.DurationSeconds != 1321.5 {
		t.Errorf("AttachArtifact() DurationSeconds = %v, expected 1321.5", ep.DurationSeconds)
	}

	// Sibling episode untouched.
	if grouped[1][0].FilePath != "" {
		t.Errorf("AttachArtifact() touched sibling episode: %+v", grouped[1][0])
	}

	if AttachArtifact(grouped, 1, 9, "x", 1) {
		t.Error("AttachArtifact() = true for a missing episode")
	}
	if AttachArtifact(grouped, 9, 1, "x", 1) {
		t.Error("AttachArtifact() = true for a missing season")
	}
}

func TestReadyEpisodes(t *testing.T) {
	t.Parallel()

	eps := []Episode{
		{EpisodeNumber: 1, FilePath: "/a.m3u8"},
		{EpisodeNumber: 2},
		{EpisodeNumber: 3, FilePath: "/c.m3u8"},
	}

	ready := ReadyEpisodes(eps)
	if len(ready) != 2 {
		t.Fatalf("ReadyEpisodes() kept %d episodes, expected 2", len(ready))
	}
	if ready[0].EpisodeNumber != 1 || ready[1].EpisodeNumber != 3 {
		t.Errorf("ReadyEpisodes() = %+v, expected episodes 1 and 3", ready)
	}
}

func TestAppendSeason(t *testing.T) {
	t.Parallel()

	seasons, err := AppendSeason(nil, Season{SeasonNumber: 1})
	if err != nil {
		t.Fatalf("AppendSeason() first season failed: %v", err)
	}
	seasons, err = AppendSeason(seasons, Season{SeasonNumber: 2})
	if err != nil {
		t.Fatalf("AppendSeason() second season failed: %v", err)
	}
	if len(seasons) != 2 {
		t.Fatalf("AppendSeason() produced %d seasons, expected 2", len(seasons))
	}

	if _, err := AppendSeason(seasons, Season{SeasonNumber: 1}); err == nil {
		t.Error("AppendSeason() error = nil for duplicate season number")
	}
}
