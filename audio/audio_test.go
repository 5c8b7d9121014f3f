// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package audio

import (
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/danielhkuo/pollkit/models"
	"github.com/danielhkuo/pollkit/storage"
)

// countingPlayer wraps NopPlayer and counts Play calls, optionally
// rejecting them.
type countingPlayer struct {
	*NopPlayer

	mu      sync.Mutex
	plays   int
	playErr error
}

func newCountingPlayer() *countingPlayer {
	return &countingPlayer{NopPlayer: NewNopPlayer()}
}

func (p *countingPlayer) Play() error {
	p.mu.Lock()
	p.plays++
	err := p.playErr
	p.mu.Unlock()
	if err != nil {
		return err
	}
	return p.NopPlayer.Play()
}

func (p *countingPlayer) playCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.plays
}

func newTestStore(t *testing.T) *storage.Store {
	t.Helper()
	store, err := storage.Open(filepath.Join(t.TempDir(), "state.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func song(id string) models.Song {
	return models.Song{SongID: id, SongTitle: "Song " + id, FileURL: "https://cdn.example.com/" + id + ".mp3"}
}

func TestThemePlaysOncePerDay(t *testing.T) {
	player := newCountingPlayer()
	ch := NewThemeChannel(player, newTestStore(t), "")

	day := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	ch.now = func() time.Time { return day }

	ch.TriggerIfArmed()
	ch.TriggerIfArmed()
	ch.TriggerIfArmed()

	if got := player.playCount(); got != 1 {
		t.Fatalf("plays on first day = %d, want 1", got)
	}
	if !ch.IsPlaying() {
		t.Fatal("theme should be playing after trigger")
	}

	// The song ends naturally; next day the guard has lapsed.
	player.FireEnded()
	if ch.IsPlaying() {
		t.Fatal("theme should stop when the track ends")
	}
	day = day.Add(24 * time.Hour)

	ch.TriggerIfArmed()
	ch.TriggerIfArmed()

	if got := player.playCount(); got != 2 {
		t.Fatalf("plays after second day = %d, want 2", got)
	}
}

func TestThemeGuardPersistsAcrossRestart(t *testing.T) {
	store := newTestStore(t)
	day := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

	first := newCountingPlayer()
	ch := NewThemeChannel(first, store, "")
	ch.now = func() time.Time { return day }
	ch.TriggerIfArmed()
	if got := first.playCount(); got != 1 {
		t.Fatalf("plays = %d, want 1", got)
	}

	// A fresh channel over the same store sees today's guard.
	second := newCountingPlayer()
	restarted := NewThemeChannel(second, store, "")
	restarted.now = func() time.Time { return day }
	restarted.TriggerIfArmed()
	if got := second.playCount(); got != 0 {
		t.Fatalf("plays after restart = %d, want 0", got)
	}
}

func TestThemeToggleBypassesDailyGuard(t *testing.T) {
	player := newCountingPlayer()
	ch := NewThemeChannel(player, newTestStore(t), "")
	day := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	ch.now = func() time.Time { return day }

	ch.TriggerIfArmed()

	ch.Toggle() // off
	if ch.IsOn() {
		t.Fatal("channel should be off")
	}
	if ch.IsPlaying() {
		t.Fatal("toggling off should stop playback")
	}
	if _, playing, _ := player.Snapshot(); playing {
		t.Fatal("player should be stopped")
	}

	ch.Toggle() // on: plays even though the guard fired today
	if !ch.IsPlaying() {
		t.Fatal("toggling on should start playback immediately")
	}
	if got := player.playCount(); got != 2 {
		t.Fatalf("plays = %d, want 2", got)
	}
}

func TestThemeResetClearsGuard(t *testing.T) {
	player := newCountingPlayer()
	ch := NewThemeChannel(player, newTestStore(t), "")
	day := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	ch.now = func() time.Time { return day }

	ch.TriggerIfArmed()
	player.FireEnded()

	ch.Reset()
	ch.TriggerIfArmed()
	if got := player.playCount(); got != 2 {
		t.Fatalf("plays after reset = %d, want 2", got)
	}
}

func TestThemePlaybackRejectionIsNotFatal(t *testing.T) {
	player := newCountingPlayer()
	player.playErr = errors.New("autoplay blocked")
	ch := NewThemeChannel(player, newTestStore(t), "")

	ch.TriggerIfArmed()
	if ch.IsPlaying() {
		t.Fatal("rejected playback must not be reported as playing")
	}
}

func TestThemeUsesDefaultURL(t *testing.T) {
	player := newCountingPlayer()
	ch := NewThemeChannel(player, newTestStore(t), "")

	ch.TriggerIfArmed()
	url, _, _ := player.Snapshot()
	if url != DefaultThemeURL {
		t.Fatalf("loaded url = %q, want default theme url", url)
	}
}

func TestSoundtrackPlayLoadsAndSeeksIndex(t *testing.T) {
	player := newCountingPlayer()
	ch := NewSoundtrackChannel(player)
	list := []models.Song{song("a"), song("b"), song("c")}

	ch.Play(list[1], list)

	if got := ch.Index(); got != 1 {
		t.Fatalf("index = %d, want 1", got)
	}
	current, ok := ch.Current()
	if !ok || current.SongID != "b" {
		t.Fatalf("current = %+v, want song b", current)
	}
	url, playing, _ := player.Snapshot()
	if url != list[1].FileURL || !playing {
		t.Fatalf("player state = (%q, %v), want (%q, true)", url, playing, list[1].FileURL)
	}
}

func TestSoundtrackPlayUnknownSongFallsBackToStart(t *testing.T) {
	ch := NewSoundtrackChannel(newCountingPlayer())
	list := []models.Song{song("a"), song("b")}

	ch.Play(song("zz"), list)

	if got := ch.Index(); got != 0 {
		t.Fatalf("index = %d, want 0", got)
	}
}

func TestSoundtrackCircularNavigation(t *testing.T) {
	ch := NewSoundtrackChannel(newCountingPlayer())
	list := []models.Song{song("a"), song("b"), song("c")}
	ch.Play(list[2], list)

	ch.Next() // wraps to the start
	if got := ch.Index(); got != 0 {
		t.Fatalf("index after Next from last = %d, want 0", got)
	}

	ch.Previous() // wraps to the end
	if got := ch.Index(); got != 2 {
		t.Fatalf("index after Previous from first = %d, want 2", got)
	}
	current, _ := ch.Current()
	if current.SongID != "c" {
		t.Fatalf("current = %q, want c", current.SongID)
	}
}

func TestSoundtrackTogglePlayPause(t *testing.T) {
	player := newCountingPlayer()
	ch := NewSoundtrackChannel(player)

	// Nothing loaded: toggle is a no-op.
	ch.TogglePlayPause()
	if ch.IsPlaying() || player.playCount() != 0 {
		t.Fatal("toggle with nothing loaded must do nothing")
	}

	ch.Play(song("a"), []models.Song{song("a")})
	ch.TogglePlayPause()
	if ch.IsPlaying() {
		t.Fatal("should be paused")
	}
	ch.TogglePlayPause()
	if !ch.IsPlaying() {
		t.Fatal("should be playing again")
	}
}

func TestSoundtrackSeekClamps(t *testing.T) {
	player := newCountingPlayer()
	ch := NewSoundtrackChannel(player)
	ch.Play(song("a"), nil)

	// Duration unknown: seek is a no-op.
	ch.Seek(30 * time.Second)
	if got := player.Position(); got != 0 {
		t.Fatalf("position = %v, want 0 while duration unknown", got)
	}

	player.SetMetadataDuration(3 * time.Minute)

	ch.Seek(-5 * time.Second)
	if got := player.Position(); got != 0 {
		t.Fatalf("position = %v, want clamp to 0", got)
	}
	ch.Seek(10 * time.Minute)
	if got := player.Position(); got != 3*time.Minute {
		t.Fatalf("position = %v, want clamp to duration", got)
	}
	ch.Seek(90 * time.Second)
	if got := player.Position(); got != 90*time.Second {
		t.Fatalf("position = %v, want 90s", got)
	}
}

func TestSoundtrackVolumeClamps(t *testing.T) {
	player := newCountingPlayer()
	ch := NewSoundtrackChannel(player)

	for _, tc := range []struct {
		in, want float64
	}{
		{-0.5, 0},
		{0.4, 0.4},
		{1.7, 1},
	} {
		ch.SetVolume(tc.in)
		if got := ch.Volume(); got != tc.want {
			t.Errorf("SetVolume(%v): volume = %v, want %v", tc.in, got, tc.want)
		}
		if _, _, got := player.Snapshot(); got != tc.want {
			t.Errorf("SetVolume(%v): player volume = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestSoundtrackAutoAdvanceIsDebounced(t *testing.T) {
	player := newCountingPlayer()
	ch := NewSoundtrackChannel(player)
	list := []models.Song{song("a"), song("b"), song("c")}
	ch.Play(list[0], list)

	// Double-fired end event: both land inside the debounce window.
	player.FireEnded()
	player.FireEnded()

	deadline := time.After(2 * time.Second)
	for ch.Index() != 1 {
		select {
		case <-deadline:
			t.Fatalf("index = %d, want advance to 1", ch.Index())
		default:
			time.Sleep(5 * time.Millisecond)
		}
	}

	// Give a second advance time to show up if the debounce failed.
	time.Sleep(3 * advanceDelay)
	if got := ch.Index(); got != 1 {
		t.Fatalf("index = %d, want a single advance to 1", got)
	}
	if !ch.IsPlaying() {
		t.Fatal("auto-advance should resume playback")
	}
}

func TestSoundtrackEndWithoutPlaylistStops(t *testing.T) {
	player := newCountingPlayer()
	ch := NewSoundtrackChannel(player)
	ch.Play(song("solo"), nil)

	player.FireEnded()
	time.Sleep(3 * advanceDelay)

	if ch.IsPlaying() {
		t.Fatal("end of a solo song should leave the channel stopped")
	}
	current, _ := ch.Current()
	if current.SongID != "solo" {
		t.Fatalf("current = %q, want solo", current.SongID)
	}
}

func TestSoundtrackPlaybackRejectionIsNotFatal(t *testing.T) {
	player := newCountingPlayer()
	player.playErr = errors.New("decode error")
	ch := NewSoundtrackChannel(player)

	ch.Play(song("a"), nil)
	if ch.IsPlaying() {
		t.Fatal("rejected playback must not be reported as playing")
	}
}

func TestChannelsAreIndependent(t *testing.T) {
	themePlayer := newCountingPlayer()
	soundtrackPlayer := newCountingPlayer()
	session := NewSession(themePlayer, soundtrackPlayer, newTestStore(t), "")

	session.Soundtrack.Play(song("a"), nil)
	session.Theme.TriggerIfArmed()

	if !session.Soundtrack.IsPlaying() {
		t.Fatal("theme trigger must not touch the soundtrack channel")
	}
	session.Theme.Toggle() // off
	if !session.Soundtrack.IsPlaying() {
		t.Fatal("theme toggle must not pause the soundtrack")
	}
	if session.Theme.IsPlaying() {
		t.Fatal("theme should be stopped")
	}
}

func TestByPlaylistAndFeatured(t *testing.T) {
	songs := []models.Song{
		{SongID: "1", PlaylistTag: "Chill, Focus", Featured: true, FeaturedOrder: 2, FileURL: "u1"},
		{SongID: "2", PlaylistTag: "Hype", FileURL: "u2"},
		{SongID: "3", PlaylistTag: "Chill", Featured: true, FeaturedOrder: 1, FileURL: "u3"},
	}

	chill := ByPlaylist(songs, "Chill")
	if len(chill) != 2 || chill[0].SongID != "1" || chill[1].SongID != "3" {
		t.Fatalf("ByPlaylist(Chill) = %+v", chill)
	}
	if got := ByPlaylist(songs, "Jazz"); len(got) != 0 {
		t.Fatalf("ByPlaylist(Jazz) = %+v, want empty", got)
	}

	featured := Featured(songs)
	if len(featured) != 2 || featured[0].SongID != "3" || featured[1].SongID != "1" {
		t.Fatalf("Featured = %+v, want [3 1]", featured)
	}
}

func TestLoadManifest(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		songs, err := parseManifest([]byte(`
songs:
  - song_id: s1
    song_title: First Light
    mood_tag: inspiring
    playlist_tag: "Morning, Focus"
    featured: true
    featured_order: 1
    file_url: https://cdn.example.com/s1.mp3
  - song_id: s2
    song_title: Undertow
    file_url: https://cdn.example.com/s2.mp3
`))
		if err != nil {
			t.Fatalf("parseManifest: %v", err)
		}
		if len(songs) != 2 {
			t.Fatalf("len = %d, want 2", len(songs))
		}
		if songs[0].SongID != "s1" || !songs[0].Featured || songs[0].MoodTag != "inspiring" {
			t.Fatalf("songs[0] = %+v", songs[0])
		}
		if got := songs[0].Playlists(); len(got) != 2 || got[0] != "Morning" {
			t.Fatalf("playlists = %v", got)
		}
	})

	t.Run("missing song_id", func(t *testing.T) {
		_, err := parseManifest([]byte("songs:\n  - file_url: u\n"))
		if err == nil {
			t.Fatal("expected error for missing song_id")
		}
	})

	t.Run("missing file_url", func(t *testing.T) {
		_, err := parseManifest([]byte("songs:\n  - song_id: s1\n"))
		if err == nil {
			t.Fatal("expected error for missing file_url")
		}
	})

	t.Run("empty manifest", func(t *testing.T) {
		songs, err := parseManifest([]byte("songs: []\n"))
		if err != nil {
			t.Fatalf("parseManifest: %v", err)
		}
		if len(songs) != 0 {
			t.Fatalf("len = %d, want 0", len(songs))
		}
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadManifest(filepath.Join(t.TempDir(), "nope.yml"))
		if err == nil {
			t.Fatal("expected error for missing file")
		}
	})
}
