package languages

import (
	"context"
	"testing"

	"github.com/911interpreters/portal/internal/api"
	"github.com/rs/zerolog"
)

type fakeBackend struct {
	list  []api.LanguageEntry
	avail []api.AvailabilityEntry
	top   []api.LanguageEntry
}

func (f *fakeBackend) ListLanguages(ctx context.Context) ([]api.LanguageEntry, error) {
	return f.list, nil
}

func (f *fakeBackend) GetAvailability(ctx context.Context) ([]api.AvailabilityEntry, error) {
	return f.avail, nil
}

func (f *fakeBackend) GetTopLanguages(ctx context.Context) ([]api.LanguageEntry, error) {
	return f.top, nil
}

func names(entries ...string) []api.LanguageEntry {
	out := make([]api.LanguageEntry, len(entries))
	for i, e := range entries {
		out[i] = api.LanguageEntry{Language: e}
	}
	return out
}

func TestCanonicalName(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"Spanish_Video", "Spanish"},
		{"Spanish_Audio", "Spanish"},
		{"Spanish_video", "Spanish"},
		{"Spanish_AUDIO", "Spanish"},
		{"Spanish", "Spanish"},
		{"ASL_Video", "ASL"},
		{"  Arabic_Video  ", "Arabic"},
		{"Haitian Creole_Audio", "Haitian Creole"},
		{"Farsi_Audio_Video", "Farsi"},
		{"_Video", "_Video"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := CanonicalName(tt.raw); got != tt.want {
			t.Errorf("CanonicalName(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}

func TestBuildIndex_MaxMergeWithinPass(t *testing.T) {
	index := buildIndex([]api.AvailabilityEntry{
		{Language: "Spanish_Video", OptedInCountVideo: 3, OptedInCountAudio: 0},
		{Language: "Spanish_Audio", OptedInCountVideo: 1, OptedInCountAudio: 5},
	})

	counts := index["Spanish"]
	if counts.Video != 3 || counts.Audio != 5 {
		t.Errorf("Expected (video=3, audio=5), got (video=%d, audio=%d)", counts.Video, counts.Audio)
	}
	if len(index) != 1 {
		t.Errorf("Expected one canonical entry, got %d", len(index))
	}
}

func TestBuildIndex_SuffixVariantsCollapse(t *testing.T) {
	index := buildIndex([]api.AvailabilityEntry{
		{Language: "Spanish_Video", OptedInCountVideo: 5},
		{Language: "Spanish_Audio", OptedInCountAudio: 2},
	})

	counts := index["Spanish"]
	if counts.Video != 5 || counts.Audio != 2 {
		t.Errorf("Expected {Spanish video:5 audio:2}, got %+v", counts)
	}
}

func TestRefreshFull_OrderAndZeroFill(t *testing.T) {
	backend := &fakeBackend{
		list: names("Spanish", "French", "Mandarin"),
		avail: []api.AvailabilityEntry{
			{Language: "Mandarin_Video", OptedInCountVideo: 2, OptedInCountAudio: 1},
			{Language: "Spanish_Video", OptedInCountVideo: 4},
		},
	}
	agg := NewAggregator(backend, zerolog.Nop())

	rows, err := agg.RefreshFull(context.Background())
	if err != nil {
		t.Fatalf("RefreshFull failed: %v", err)
	}

	if len(rows) != 3 {
		t.Fatalf("Expected 3 rows, got %d", len(rows))
	}
	for i, want := range []string{"Spanish", "French", "Mandarin"} {
		if rows[i].Name != want {
			t.Errorf("Row %d = %q, want %q (master list order must be preserved)", i, rows[i].Name, want)
		}
	}
	if rows[0].Video != 4 || rows[0].Audio != 0 {
		t.Errorf("Spanish counts = (%d,%d), want (4,0)", rows[0].Video, rows[0].Audio)
	}
	if rows[1].Video != 0 || rows[1].Audio != 0 {
		t.Errorf("French must be zero-filled, got (%d,%d)", rows[1].Video, rows[1].Audio)
	}
	if rows[2].Video != 2 || rows[2].Audio != 1 {
		t.Errorf("Mandarin counts = (%d,%d), want (2,1)", rows[2].Video, rows[2].Audio)
	}
}

func TestRefreshAvailabilityOnly_AbsentNameResetsToZero(t *testing.T) {
	backend := &fakeBackend{
		avail: []api.AvailabilityEntry{
			{Language: "French_Video", OptedInCountVideo: 1, OptedInCountAudio: 1},
		},
	}
	agg := NewAggregator(backend, zerolog.Nop())

	current := []LanguageAvailability{
		{Name: "Spanish", Raw: "Spanish", Video: 4, Audio: 2},
		{Name: "French", Raw: "French", Video: 0, Audio: 0},
	}

	rows, err := agg.RefreshAvailabilityOnly(context.Background(), current)
	if err != nil {
		t.Fatalf("RefreshAvailabilityOnly failed: %v", err)
	}

	if rows[0].Video != 0 || rows[0].Audio != 0 {
		t.Errorf("Spanish absent from fresh response must reset to (0,0), got (%d,%d)", rows[0].Video, rows[0].Audio)
	}
	if rows[1].Video != 1 || rows[1].Audio != 1 {
		t.Errorf("French = (%d,%d), want (1,1)", rows[1].Video, rows[1].Audio)
	}

	// The previous snapshot is untouched; refresh builds new rows.
	if current[0].Video != 4 {
		t.Errorf("Input rows were mutated")
	}
}

func TestTopLanguages_MergesAvailability(t *testing.T) {
	backend := &fakeBackend{
		top: names("Spanish", "ASL"),
		avail: []api.AvailabilityEntry{
			{Language: "Spanish_Video", OptedInCountVideo: 2, OptedInCountAudio: 3},
		},
	}
	agg := NewAggregator(backend, zerolog.Nop())

	rows, err := agg.TopLanguages(context.Background())
	if err != nil {
		t.Fatalf("TopLanguages failed: %v", err)
	}

	if len(rows) != 2 {
		t.Fatalf("Expected 2 rows, got %d", len(rows))
	}
	if rows[0].Video != 2 || rows[0].Audio != 3 {
		t.Errorf("Spanish = (%d,%d), want (2,3)", rows[0].Video, rows[0].Audio)
	}
	if rows[1].Video != 0 || rows[1].Audio != 0 {
		t.Errorf("ASL has no availability row and must be zero-filled, got (%d,%d)", rows[1].Video, rows[1].Audio)
	}
}

func TestEligibility(t *testing.T) {
	tests := []struct {
		name      string
		row       LanguageAvailability
		ready     bool
		wantVideo bool
		wantAudio bool
	}{
		{"both channels available", LanguageAvailability{Name: "Spanish", Video: 2, Audio: 1}, true, true, true},
		{"launcher not ready", LanguageAvailability{Name: "Spanish", Video: 2, Audio: 1}, false, false, false},
		{"no interpreters", LanguageAvailability{Name: "Spanish"}, true, false, false},
		{"ASL never gets audio", LanguageAvailability{Name: "ASL", Video: 3, Audio: 3}, true, true, false},
		{"ASL substring blocks audio", LanguageAvailability{Name: "Tactile ASL", Video: 1, Audio: 1}, true, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.row.VideoEligible(tt.ready); got != tt.wantVideo {
				t.Errorf("VideoEligible = %v, want %v", got, tt.wantVideo)
			}
			if got := tt.row.AudioEligible(tt.ready); got != tt.wantAudio {
				t.Errorf("AudioEligible = %v, want %v", got, tt.wantAudio)
			}
		})
	}
}
