// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package audio

import (
	"log/slog"
	"sync"
	"time"

	"github.com/danielhkuo/pollkit/storage"
)

// DefaultThemeURL is the stock theme song source.
const DefaultThemeURL = "https://myworld-soundtrack.s3.us-east-2.amazonaws.com/myworld_soundtrack/Theme+(Male+Inspiring+Rap).mp3"

const keyThemePlayedDate = "theme_song_played_date"

const themeDateLayout = "2006-01-02"

// ThemeChannel plays the one-shot theme song. While armed (toggled on and
// not yet playing), the first user-interaction signal of each calendar day
// starts playback; further signals that day are no-ops. It never reads or
// writes soundtrack state.
type ThemeChannel struct {
	player Player
	store  *storage.Store
	now    func() time.Time

	mu      sync.Mutex
	url     string
	on      bool
	playing bool
}

// NewThemeChannel creates an armed channel (toggled on, nothing playing).
func NewThemeChannel(player Player, store *storage.Store, url string) *ThemeChannel {
	if url == "" {
		url = DefaultThemeURL
	}
	t := &ThemeChannel{
		player: player,
		store:  store,
		now:    time.Now,
		url:    url,
		on:     true,
	}
	player.OnEnded(t.handleEnded)
	return t
}

// handleEnded returns the channel to its stopped state when the song
// finishes, so the next day's trigger can play again.
func (t *ThemeChannel) handleEnded() {
	t.mu.Lock()
	t.playing = false
	t.mu.Unlock()
}

// TriggerIfArmed starts the theme song if the channel is armed and it has
// not yet played today. Idempotent: safe to call on every interaction;
// only the first effective call per calendar day plays. Callers fire it
// from a genuine user gesture so the platform's autoplay policy is
// already satisfied.
func (t *ThemeChannel) TriggerIfArmed() {
	t.mu.Lock()
	if !t.on || t.playing || t.playedToday() {
		t.mu.Unlock()
		return
	}
	t.markPlayedToday()
	t.mu.Unlock()

	t.play()
}

// Toggle flips the channel on or off. Turning on plays immediately,
// bypassing the daily guard; turning off stops and rewinds to 0.
func (t *ThemeChannel) Toggle() {
	t.mu.Lock()
	t.on = !t.on
	on := t.on
	t.mu.Unlock()

	if on {
		slog.Info("theme song turned on")
		t.play()
	} else {
		slog.Info("theme song turned off")
		t.player.Stop()
		t.mu.Lock()
		t.playing = false
		t.mu.Unlock()
	}
}

// Reset clears the daily guard so the next trigger plays again. Support
// and debug use.
func (t *ThemeChannel) Reset() {
	if err := t.store.Delete(keyThemePlayedDate); err != nil {
		slog.Error("failed to reset theme guard", "error", err)
	}
}

// IsOn reports the user toggle state.
func (t *ThemeChannel) IsOn() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.on
}

// IsPlaying reports whether the theme song is currently playing.
func (t *ThemeChannel) IsPlaying() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.playing
}

func (t *ThemeChannel) play() {
	t.player.Load(t.url)
	if err := t.player.Play(); err != nil {
		// Load/play rejections are logged, never fatal; the channel
		// just stays stopped.
		slog.Error("theme song playback rejected", "error", err)
		t.mu.Lock()
		t.playing = false
		t.mu.Unlock()
		return
	}

	t.mu.Lock()
	t.playing = true
	t.mu.Unlock()
}

func (t *ThemeChannel) playedToday() bool {
	date, ok, err := t.store.Get(keyThemePlayedDate)
	if err != nil || !ok {
		return false
	}
	return date == t.now().Format(themeDateLayout)
}

func (t *ThemeChannel) markPlayedToday() {
	if err := t.store.Set(keyThemePlayedDate, t.now().Format(themeDateLayout)); err != nil {
		slog.Error("failed to persist theme guard", "error", err)
	}
}
