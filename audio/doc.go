// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package audio manages the two independent playback channels: the one-shot
theme song and the soundtrack playlist.

# Channels

A Session owns one ThemeChannel and one SoundtrackChannel, each over its
own Player. The channels never share state: toggling the theme song does
not pause the soundtrack, and playing a soundtrack song does not consume
the theme's daily guard.

  - ThemeChannel: armed on startup, plays at most once per calendar day
    on the first user interaction, with a manual on/off toggle.
  - SoundtrackChannel: Stopped → Playing ⇄ Paused with circular playlist
    navigation, seek, volume, and debounced auto-advance on track end.

# Players

Player abstracts a single media element. NopPlayer is the headless
implementation used by tests and terminal builds; platform builds supply
their own.

# Playlists

Songs come from the soundtrack API or from a local YAML manifest read by
LoadManifest. ByPlaylist and Featured filter a song list the way the
browse screens need it.
*/
package audio
