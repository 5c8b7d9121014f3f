// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

# Config Fields

  - APIBase: Poll API base URL (required)
  - StatePath: Local state database path (default: pollkit.db)
  - ThemeSongURL: Theme song URL override (optional)
  - PlaylistFile: Local YAML playlist manifest (optional)

# CLI Flags

	-a           API base URL
	-s           Local state database path
	--theme-url  Theme song URL override
	--playlist   Playlist manifest path

# Environment Variables

Flags fall back to environment variables:

	API_BASE_URL   → -a
	STATE_PATH     → -s
	THEME_SONG_URL → --theme-url
	PLAYLIST_FILE  → --playlist

CLI flags take precedence over environment variables.

# Validation

ParseFlags returns an error if the API base URL is missing.
*/
package cliparse
