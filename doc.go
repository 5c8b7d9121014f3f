// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides a terminal walkthrough of the Pollkit client.

Pollkit is the client core for a teen-oriented anonymous polling app:
browse categories, blocks and questions, vote once per day per question,
and see live results, with a theme song and a soundtrack playlist along
the way.

# Running

The walkthrough needs an API base URL, from a flag, the environment, or
a .env file:

	API_BASE_URL=https://api.example.com go run .

Or with flags:

	go run . -a https://api.example.com -s state.db

# Configuration

  - API_BASE_URL (-a): poll API base URL (required)
  - STATE_PATH (-s): local state database (default: pollkit.db)
  - THEME_SONG_URL (--theme-url): theme song override
  - PLAYLIST_FILE (--playlist): local YAML soundtrack manifest, used
    when the live catalog is unreachable

# Architecture

The client is a set of small packages wired together here:

  - models: wire types shared with the poll API
  - api: HTTP client for the poll API
  - storage: SQLite-backed key/value state
  - identity: anonymous per-device identity with the age gate
  - cooldown: per-question 24-hour vote window
  - voting: the submission state machine
  - results: count → percentage aggregation
  - audio: theme and soundtrack channels
  - progress: completed blocks and the milestone song suggestion
  - cliparse: configuration parsing

See package documentation for each component.
*/
package main
