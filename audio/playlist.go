// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package audio

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/danielhkuo/pollkit/models"
)

// manifest is the on-disk shape of a local playlist file. Fields mirror
// the soundtrack wire format so a manifest can be maintained by hand or
// dumped from the API.
type manifest struct {
	Songs []manifestSong `yaml:"songs"`
}

type manifestSong struct {
	SongID        string `yaml:"song_id"`
	SongTitle     string `yaml:"song_title"`
	MoodTag       string `yaml:"mood_tag"`
	PlaylistTag   string `yaml:"playlist_tag"`
	LyricsSnippet string `yaml:"lyrics_snippet"`
	Featured      bool   `yaml:"featured"`
	FeaturedOrder int    `yaml:"featured_order"`
	FileURL       string `yaml:"file_url"`
}

// LoadManifest reads a local playlist manifest. Songs without an ID or a
// file URL are rejected; a manifest with zero songs is valid and yields
// an empty slice.
func LoadManifest(path string) ([]models.Song, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read playlist manifest: %w", err)
	}
	return parseManifest(raw)
}

func parseManifest(raw []byte) ([]models.Song, error) {
	var m manifest
	if err := yaml.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("parse playlist manifest: %w", err)
	}
	songs := make([]models.Song, 0, len(m.Songs))
	for i, s := range m.Songs {
		if s.SongID == "" {
			return nil, fmt.Errorf("playlist manifest: song %d missing song_id", i)
		}
		if s.FileURL == "" {
			return nil, fmt.Errorf("playlist manifest: song %q missing file_url", s.SongID)
		}
		songs = append(songs, models.Song{
			SongID:        s.SongID,
			SongTitle:     s.SongTitle,
			MoodTag:       s.MoodTag,
			PlaylistTag:   s.PlaylistTag,
			LyricsSnippet: s.LyricsSnippet,
			Featured:      s.Featured,
			FeaturedOrder: s.FeaturedOrder,
			FileURL:       s.FileURL,
		})
	}
	return songs, nil
}
