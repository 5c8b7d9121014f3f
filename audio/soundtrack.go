// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package audio

import (
	"log/slog"
	"sync"
	"time"

	"github.com/danielhkuo/pollkit/models"
)

// advanceDelay is how long after a natural track end the playlist
// auto-advances. It doubles as the debounce window against double-fired
// end events from the media element.
const advanceDelay = 100 * time.Millisecond

// SoundtrackChannel plays the music playlist, independently of the theme
// channel. States: Stopped → Playing ⇄ Paused, plus circular playlist
// navigation and auto-advance on track end.
type SoundtrackChannel struct {
	player Player
	now    func() time.Time

	mu        sync.Mutex
	playlist  []models.Song
	index     int
	current   *models.Song
	playing   bool
	volume    float64
	lastEnded time.Time
}

func NewSoundtrackChannel(player Player) *SoundtrackChannel {
	ch := &SoundtrackChannel{
		player: player,
		now:    time.Now,
		volume: 1,
	}
	player.OnEnded(ch.handleEnded)
	return ch
}

// Play replaces the current source with song, rewinds to 0 and starts
// playback. A non-empty playlist replaces the channel's playlist and
// seeks the index to the song's position, falling back to 0 when the
// song is not in the list.
func (s *SoundtrackChannel) Play(song models.Song, playlist []models.Song) {
	s.mu.Lock()
	s.player.Stop()

	if len(playlist) > 0 {
		s.playlist = append([]models.Song(nil), playlist...)
		s.index = 0
		for i, entry := range s.playlist {
			if entry.SongID == song.SongID {
				s.index = i
				break
			}
		}
	}

	s.current = &song
	volume := s.volume
	s.mu.Unlock()

	s.player.Load(song.FileURL)
	s.player.SetVolume(volume)
	s.startPlayback(song)
}

// TogglePlayPause pauses or resumes the current song. No-op when nothing
// is loaded.
func (s *SoundtrackChannel) TogglePlayPause() {
	s.mu.Lock()
	if s.current == nil {
		s.mu.Unlock()
		return
	}
	playing := s.playing
	current := *s.current
	s.mu.Unlock()

	if playing {
		s.player.Pause()
		s.mu.Lock()
		s.playing = false
		s.mu.Unlock()
		return
	}
	s.startPlayback(current)
}

// Seek moves the playhead, clamped to [0, duration]. No-op while the
// source duration is unknown.
func (s *SoundtrackChannel) Seek(pos time.Duration) {
	dur := s.player.Duration()
	if dur <= 0 {
		return
	}
	if pos < 0 {
		pos = 0
	}
	if pos > dur {
		pos = dur
	}
	s.player.Seek(pos)
}

// SetVolume clamps v to [0,1] and applies it immediately.
func (s *SoundtrackChannel) SetVolume(v float64) {
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}

	s.mu.Lock()
	s.volume = v
	s.mu.Unlock()

	s.player.SetVolume(v)
}

// Next advances to the following playlist entry, wrapping at the end,
// and plays it.
func (s *SoundtrackChannel) Next() {
	s.advance(1)
}

// Previous steps back one playlist entry, wrapping at the start, and
// plays it.
func (s *SoundtrackChannel) Previous() {
	s.advance(-1)
}

func (s *SoundtrackChannel) advance(step int) {
	s.mu.Lock()
	n := len(s.playlist)
	if n == 0 {
		s.mu.Unlock()
		return
	}
	s.index = ((s.index+step)%n + n) % n
	song := s.playlist[s.index]
	s.current = &song
	volume := s.volume
	s.mu.Unlock()

	s.player.Load(song.FileURL)
	s.player.SetVolume(volume)
	s.startPlayback(song)
}

// Current returns the loaded song, or false when nothing is loaded.
func (s *SoundtrackChannel) Current() (models.Song, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return models.Song{}, false
	}
	return *s.current, true
}

// Index returns the playlist cursor.
func (s *SoundtrackChannel) Index() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index
}

// IsPlaying reports playback state.
func (s *SoundtrackChannel) IsPlaying() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.playing
}

// Volume returns the channel volume in [0,1].
func (s *SoundtrackChannel) Volume() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.volume
}

// Playlist returns a copy of the current playlist.
func (s *SoundtrackChannel) Playlist() []models.Song {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Song(nil), s.playlist...)
}

func (s *SoundtrackChannel) startPlayback(song models.Song) {
	if err := s.player.Play(); err != nil {
		slog.Error("soundtrack playback rejected", "song_id", song.SongID, "error", err)
		s.mu.Lock()
		s.playing = false
		s.mu.Unlock()
		return
	}

	s.mu.Lock()
	s.playing = true
	s.mu.Unlock()
}

// handleEnded auto-advances after a natural end of track. Overlapping end
// events within the debounce window collapse into one advance.
func (s *SoundtrackChannel) handleEnded() {
	s.mu.Lock()
	now := s.now()
	if now.Sub(s.lastEnded) < advanceDelay {
		s.mu.Unlock()
		return
	}
	s.lastEnded = now
	s.playing = false
	hasPlaylist := len(s.playlist) > 0
	s.mu.Unlock()

	if !hasPlaylist {
		return
	}
	time.AfterFunc(advanceDelay, s.Next)
}
