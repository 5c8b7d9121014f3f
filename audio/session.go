// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package audio

import (
	"sort"

	"github.com/danielhkuo/pollkit/models"
	"github.com/danielhkuo/pollkit/storage"
)

// Session owns the two audio channels for the life of the process. It is
// constructed once at startup and never torn down: pausing and resuming
// music across navigation is a product requirement.
//
// The channels are separate types over separate Player instances, so the
// type system keeps them from touching each other's state.
type Session struct {
	Theme      *ThemeChannel
	Soundtrack *SoundtrackChannel
}

// NewSession wires the two channels. themePlayer and soundtrackPlayer
// must be distinct Player instances.
func NewSession(themePlayer, soundtrackPlayer Player, store *storage.Store, themeURL string) *Session {
	return &Session{
		Theme:      NewThemeChannel(themePlayer, store, themeURL),
		Soundtrack: NewSoundtrackChannel(soundtrackPlayer),
	}
}

// ByPlaylist filters songs to those tagged with the playlist name.
func ByPlaylist(songs []models.Song, playlist string) []models.Song {
	var out []models.Song
	for _, song := range songs {
		for _, tag := range song.Playlists() {
			if tag == playlist {
				out = append(out, song)
				break
			}
		}
	}
	return out
}

// Featured returns the featured songs ordered by their featured rank.
func Featured(songs []models.Song) []models.Song {
	var out []models.Song
	for _, song := range songs {
		if song.Featured {
			out = append(out, song)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].FeaturedOrder < out[j].FeaturedOrder
	})
	return out
}
