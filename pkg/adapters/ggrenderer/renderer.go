// Package ggrenderer renders a deterministic test pattern with the gg library
// and emits it as raw rgb24 frames.
package ggrenderer

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"time"

	"github.com/fogleman/gg"
	"golang.org/x/image/font/basicfont"

	"github.com/user/framepipe/pkg/config"
	"github.com/user/framepipe/pkg/ports"
)

// ErrFrameIndex is returned for a frame index outside [0, FrameCount).
var ErrFrameIndex = errors.New("ggrenderer: frame index out of range")

// barColors are the classic SMPTE colour bars.
var barColors = []color.RGBA{
	{R: 192, G: 192, B: 192, A: 255},
	{R: 192, G: 192, B: 0, A: 255},
	{R: 0, G: 192, B: 192, A: 255},
	{R: 0, G: 192, B: 0, A: 255},
	{R: 192, G: 0, B: 192, A: 255},
	{R: 192, G: 0, B: 0, A: 255},
	{R: 0, G: 0, B: 192, A: 255},
}

// Renderer draws colour bars, a bar sweeping once per second and a frame
// counter. The same index always yields the same bytes.
type Renderer struct {
	width  int
	height int
	fps    config.Rational
	frames int

	background color.Color
	bar        color.Color
	text       color.Color
	label      string

	dc  *gg.Context
	buf []byte
}

// New creates a Renderer producing frames frames at the given render settings.
func New(render config.RenderConfig, frames int, pattern config.PatternConfig) *Renderer {
	return &Renderer{
		width:      int(render.Width),
		height:     int(render.Height),
		fps:        render.FPS,
		frames:     frames,
		background: config.ParseColor(pattern.BackgroundColor),
		bar:        config.ParseColor(pattern.BarColor),
		text:       config.ParseColor(pattern.TextColor),
		label:      pattern.Label,
		dc:         gg.NewContext(int(render.Width), int(render.Height)),
		buf:        make([]byte, render.FrameBytes()),
	}
}

// FrameCount returns the number of frames the renderer produces.
func (r *Renderer) FrameCount() int {
	return r.frames
}

// RenderFrame draws frame index and returns it as rgb24. The returned slice
// is reused by the next call.
func (r *Renderer) RenderFrame(ctx context.Context, index int) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if index < 0 || index >= r.frames {
		return nil, fmt.Errorf("%w: %d not in [0, %d)", ErrFrameIndex, index, r.frames)
	}

	r.draw(index)

	img, ok := r.dc.Image().(*image.RGBA)
	if !ok {
		return nil, fmt.Errorf("ggrenderer: unexpected image type %T", r.dc.Image())
	}
	toRGB(r.buf, img)
	return r.buf, nil
}

func (r *Renderer) draw(index int) {
	dc := r.dc
	w, h := float64(r.width), float64(r.height)

	dc.SetColor(r.background)
	dc.Clear()

	// Colour bars between 1/8 and 5/8 of the height.
	top, barsHeight := float64(r.height/8), float64(r.height/2)
	barWidth := w / float64(len(barColors))
	for i, c := range barColors {
		dc.SetColor(c)
		dc.DrawRectangle(float64(i)*barWidth, top, barWidth, barsHeight)
		dc.Fill()
	}

	// Sweep: one pass across the width per second of video.
	perSecond := int(r.fps.Float() + 0.5)
	if perSecond < 1 {
		perSecond = 1
	}
	sweepWidth := w / 32
	if sweepWidth < 1 {
		sweepWidth = 1
	}
	x := (w - sweepWidth) * float64(index%perSecond) / float64(perSecond)
	dc.SetColor(r.bar)
	dc.DrawRectangle(x, top+barsHeight, sweepWidth, h/8)
	dc.Fill()

	dc.SetColor(r.text)
	dc.SetFontFace(basicfont.Face7x13)
	dc.DrawStringAnchored(r.caption(index), w/2, h*13/16, 0.5, 0.5)
}

// caption returns the label, frame number and timecode for index.
func (r *Renderer) caption(index int) string {
	at := time.Duration(float64(index) / r.fps.Float() * float64(time.Second))
	text := fmt.Sprintf("%05d  %s", index, timecode(at))
	if r.label != "" {
		text = r.label + "  " + text
	}
	return text
}

func timecode(d time.Duration) string {
	d = d.Round(time.Millisecond)
	m := d / time.Minute
	s := (d % time.Minute) / time.Second
	ms := (d % time.Second) / time.Millisecond
	return fmt.Sprintf("%02d:%02d.%03d", m, s, ms)
}

// toRGB packs the opaque RGBA pixels of src into dst as rgb24.
func toRGB(dst []byte, src *image.RGBA) {
	b := src.Bounds()
	i := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := src.Pix[src.PixOffset(b.Min.X, y):]
		for x := 0; x < b.Dx(); x++ {
			dst[i] = row[x*4]
			dst[i+1] = row[x*4+1]
			dst[i+2] = row[x*4+2]
			i += 3
		}
	}
}

var _ ports.FrameRenderer = (*Renderer)(nil)
