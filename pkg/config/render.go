package config

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// RGBDepth is the number of bytes per rgb24 pixel.
const RGBDepth = 3

// PixelFormat is the raw pixel format frames are written in.
const PixelFormat = "rgb24"

// Rational is a frame rate expressed as Num/Den.
type Rational struct {
	Num uint64
	Den uint64
}

// NewRational returns num/den reduced to lowest terms.
func NewRational(num, den uint64) Rational {
	if num == 0 || den == 0 {
		return Rational{Num: num, Den: den}
	}
	g := gcd(num, den)
	return Rational{Num: num / g, Den: den / g}
}

// ParseRational parses "30", "30000/1001" or "29.97".
func ParseRational(s string) (Rational, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Rational{}, fmt.Errorf("%w: empty frame rate", ErrInvalidConfig)
	}

	if num, den, ok := strings.Cut(s, "/"); ok {
		n, err := strconv.ParseUint(strings.TrimSpace(num), 10, 64)
		if err != nil {
			return Rational{}, fmt.Errorf("%w: frame rate %q: %v", ErrInvalidConfig, s, err)
		}
		d, err := strconv.ParseUint(strings.TrimSpace(den), 10, 64)
		if err != nil {
			return Rational{}, fmt.Errorf("%w: frame rate %q: %v", ErrInvalidConfig, s, err)
		}
		r := NewRational(n, d)
		return r, r.Validate()
	}

	if n, err := strconv.ParseUint(s, 10, 64); err == nil {
		r := NewRational(n, 1)
		return r, r.Validate()
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f <= 0 {
		return Rational{}, fmt.Errorf("%w: frame rate %q", ErrInvalidConfig, s)
	}
	// Three decimal places cover 23.976 and 29.97.
	r := NewRational(uint64(math.Round(f*1000)), 1000)
	return r, r.Validate()
}

// Validate checks that both terms are positive.
func (r Rational) Validate() error {
	if r.Num == 0 || r.Den == 0 {
		return fmt.Errorf("%w: frame rate must be positive, got %d/%d", ErrInvalidConfig, r.Num, r.Den)
	}
	return nil
}

// Float returns the frame rate as a float64.
func (r Rational) Float() float64 {
	if r.Den == 0 {
		return 0
	}
	return float64(r.Num) / float64(r.Den)
}

// String formats the rate the way ffmpeg accepts it.
func (r Rational) String() string {
	if r.Den == 1 {
		return strconv.FormatUint(r.Num, 10)
	}
	return strconv.FormatUint(r.Num, 10) + "/" + strconv.FormatUint(r.Den, 10)
}

// MarshalText implements encoding.TextMarshaler.
func (r Rational) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *Rational) UnmarshalText(text []byte) error {
	parsed, err := ParseRational(string(text))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

func gcd(a, b uint64) uint64 {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

// RenderConfig describes the raw frames handed to a sink.
type RenderConfig struct {
	Width  uint
	Height uint
	FPS    Rational
}

// Validate checks the invariants width, height > 0 and a positive frame rate.
func (r RenderConfig) Validate() error {
	if r.Width == 0 || r.Height == 0 {
		return fmt.Errorf("%w: resolution must be positive, got %dx%d", ErrInvalidConfig, r.Width, r.Height)
	}
	return r.FPS.Validate()
}

// FrameBytes returns the size of one rgb24 frame.
func (r RenderConfig) FrameBytes() int {
	return int(r.Width) * int(r.Height) * RGBDepth
}

// BufferBytes returns the write buffer size: two frames.
func (r RenderConfig) BufferBytes() int {
	return r.FrameBytes() * FramesToBuffer
}

// FramesToBuffer is the number of frames buffered ahead of the OS pipe.
const FramesToBuffer = 2

// CheckFrame returns ErrFrameSize unless frame is exactly one frame long.
func (r RenderConfig) CheckFrame(frame []byte) error {
	if want := r.FrameBytes(); len(frame) != want {
		return fmt.Errorf("%w: got %d bytes, want %d (%dx%d %s)", ErrFrameSize, len(frame), want, r.Width, r.Height, PixelFormat)
	}
	return nil
}

// AudioConfig describes the master audio muxed into the output.
type AudioConfig struct {
	Path      string
	BeginTime time.Duration
	// EndTime is nil when the audio plays to the end.
	EndTime *time.Duration
}

// Validate checks 0 <= BeginTime <= EndTime.
func (a *AudioConfig) Validate() error {
	if a == nil {
		return nil
	}
	if a.Path == "" {
		return fmt.Errorf("%w: audio path is empty", ErrInvalidConfig)
	}
	if a.BeginTime < 0 {
		return fmt.Errorf("%w: audio begin time %s is negative", ErrInvalidConfig, a.BeginTime)
	}
	if a.EndTime != nil && *a.EndTime < a.BeginTime {
		return fmt.Errorf("%w: audio end time %s is before begin time %s", ErrInvalidConfig, *a.EndTime, a.BeginTime)
	}
	return nil
}

// Duration returns EndTime - BeginTime and whether an end time is set.
func (a *AudioConfig) Duration() (time.Duration, bool) {
	if a == nil || a.EndTime == nil {
		return 0, false
	}
	return *a.EndTime - a.BeginTime, true
}

// Seconds formats d as decimal seconds, e.g. "1.5" or "0".
func Seconds(d time.Duration) string {
	return strconv.FormatFloat(d.Seconds(), 'f', -1, 64)
}
