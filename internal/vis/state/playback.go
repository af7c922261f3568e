package state

import (
	"math"
	"time"
)

// Playback tracks the cursor over a recorded run. The cursor is a
// fractional tick index so playback advances smoothly between frames;
// consumers round down to pick the entry to display.
type Playback struct {
	Cursor     float64 // fractional tick index into the trace
	MaxIndex   float64 // last valid index (len(entries)-1)
	Speed      float64 // ticks per wall-clock second
	Playing    bool
	lastUpdate time.Time
}

// NewPlayback creates a paused playback over n trace entries.
func NewPlayback(n int) *Playback {
	maxIndex := float64(n - 1)
	if maxIndex < 0 {
		maxIndex = 0
	}
	return &Playback{
		MaxIndex:   maxIndex,
		Speed:      4,
		lastUpdate: time.Now(),
	}
}

// Index returns the trace entry index under the cursor.
func (p *Playback) Index() int {
	i := int(math.Floor(p.Cursor))
	if i < 0 {
		return 0
	}
	if float64(i) > p.MaxIndex {
		return int(p.MaxIndex)
	}
	return i
}

// TogglePlay toggles playback, restarting from the beginning when the
// cursor is already at the end.
func (p *Playback) TogglePlay() {
	p.Playing = !p.Playing
	if p.Playing {
		p.lastUpdate = time.Now()
		if p.Cursor >= p.MaxIndex {
			p.Cursor = 0
		}
	}
}

// Pause stops playback.
func (p *Playback) Pause() {
	p.Playing = false
}

// Reset rewinds to the first tick and pauses.
func (p *Playback) Reset() {
	p.Cursor = 0
	p.Playing = false
}

// Advance moves the cursor by wall-clock time elapsed since the last call,
// scaled by Speed. Playback pauses when the last tick is reached.
func (p *Playback) Advance() {
	if !p.Playing {
		return
	}
	now := time.Now()
	elapsed := now.Sub(p.lastUpdate).Seconds()
	p.lastUpdate = now

	p.Cursor += elapsed * p.Speed
	if p.Cursor >= p.MaxIndex {
		p.Cursor = p.MaxIndex
		p.Playing = false
	}
}

// Seek positions the cursor at the given index, clamped to the trace.
func (p *Playback) Seek(idx float64) {
	if idx < 0 {
		idx = 0
	}
	if idx > p.MaxIndex {
		idx = p.MaxIndex
	}
	p.Cursor = idx
}

// StepForward pauses and advances exactly one tick.
func (p *Playback) StepForward() {
	p.Pause()
	p.Seek(math.Floor(p.Cursor) + 1)
}

// StepBack pauses and goes back exactly one tick.
func (p *Playback) StepBack() {
	p.Pause()
	p.Seek(math.Ceil(p.Cursor) - 1)
}

// SetSpeed sets the playback rate in ticks per second, clamped to a
// usable range.
func (p *Playback) SetSpeed(speed float64) {
	if speed < 0.5 {
		speed = 0.5
	}
	if speed > 64 {
		speed = 64
	}
	p.Speed = speed
}

// Progress returns the cursor position as a 0-1 fraction.
func (p *Playback) Progress() float64 {
	if p.MaxIndex <= 0 {
		return 0
	}
	return p.Cursor / p.MaxIndex
}
