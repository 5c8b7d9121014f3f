// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package audio

import (
	"log/slog"
	"sync"
	"time"
)

// Player abstracts one media element. Load and Play are asynchronous in
// real backends and may reject (autoplay policy, bad URL); a rejection is
// reported as the error from Play, never as a panic.
type Player interface {
	// Load replaces the current source and rewinds to position 0.
	Load(url string)
	// Play starts or resumes playback of the loaded source.
	Play() error
	// Pause pauses playback, keeping the position.
	Pause()
	// Stop pauses and rewinds to position 0.
	Stop()
	// Seek moves the position, already clamped by the caller.
	Seek(pos time.Duration)
	Position() time.Duration
	// Duration returns 0 while the source metadata is unknown.
	Duration() time.Duration
	// SetVolume applies a [0,1] volume immediately.
	SetVolume(v float64)
	// OnEnded registers the natural end-of-track callback.
	OnEnded(fn func())
}

// NopPlayer is a headless Player that tracks state without producing
// sound. It backs tests and terminal builds where no audio device exists.
type NopPlayer struct {
	mu      sync.Mutex
	url     string
	pos     time.Duration
	dur     time.Duration
	volume  float64
	playing bool
	onEnded func()
}

func NewNopPlayer() *NopPlayer {
	return &NopPlayer{volume: 1}
}

func (p *NopPlayer) Load(url string) {
	p.mu.Lock()
	p.url = url
	p.pos = 0
	p.playing = false
	p.mu.Unlock()
	slog.Debug("player loaded source", "url", url)
}

func (p *NopPlayer) Play() error {
	p.mu.Lock()
	p.playing = true
	p.mu.Unlock()
	return nil
}

func (p *NopPlayer) Pause() {
	p.mu.Lock()
	p.playing = false
	p.mu.Unlock()
}

func (p *NopPlayer) Stop() {
	p.mu.Lock()
	p.playing = false
	p.pos = 0
	p.mu.Unlock()
}

func (p *NopPlayer) Seek(pos time.Duration) {
	p.mu.Lock()
	p.pos = pos
	p.mu.Unlock()
}

func (p *NopPlayer) Position() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pos
}

func (p *NopPlayer) Duration() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.dur
}

func (p *NopPlayer) SetVolume(v float64) {
	p.mu.Lock()
	p.volume = v
	p.mu.Unlock()
}

func (p *NopPlayer) OnEnded(fn func()) {
	p.mu.Lock()
	p.onEnded = fn
	p.mu.Unlock()
}

// SetMetadataDuration simulates the media element learning its duration.
func (p *NopPlayer) SetMetadataDuration(d time.Duration) {
	p.mu.Lock()
	p.dur = d
	p.mu.Unlock()
}

// FireEnded simulates a natural end-of-track event.
func (p *NopPlayer) FireEnded() {
	p.mu.Lock()
	fn := p.onEnded
	p.playing = false
	p.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// Snapshot returns the current (url, playing, volume) for assertions.
func (p *NopPlayer) Snapshot() (url string, playing bool, volume float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.url, p.playing, p.volume
}
