// Package canvas converts pointer positions between the on-screen rendered
// space and the image's natural (authoring-time) pixel space.
package canvas

import (
	"errors"

	"hazardhunt/internal/geometry"
)

// ErrNotMeasured is returned while the rendered image has no measured
// dimensions yet (image not loaded). Clicks arriving in that window must be
// dropped by the caller rather than mapped through a zero scale.
var ErrNotMeasured = errors.New("canvas: rendered size not measured")

// Size holds pixel dimensions of either space.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Mapper translates between one rendered size and one natural size. A resize
// or zoom produces a new Mapper; points already mapped keep their original
// natural coordinates.
type Mapper struct {
	Rendered Size
	Natural  Size
}

// NewMapper builds a mapper for the given rendered and natural sizes.
func NewMapper(rendered, natural Size) Mapper {
	return Mapper{Rendered: rendered, Natural: natural}
}

// Ready reports whether both rendered dimensions have been measured.
func (m Mapper) Ready() bool {
	return m.Rendered.Width > 0 && m.Rendered.Height > 0
}

// ToNatural maps a screen-space point into natural image coordinates using
// independent per-axis scale factors. It refuses to divide by an unmeasured
// rendered size.
func (m Mapper) ToNatural(p geometry.Point) (geometry.Point, error) {
	if !m.Ready() {
		return geometry.Point{}, ErrNotMeasured
	}
	scaleX := m.Natural.Width / m.Rendered.Width
	scaleY := m.Natural.Height / m.Rendered.Height
	return geometry.Point{X: p.X * scaleX, Y: p.Y * scaleY}, nil
}

// ToScreen maps a natural-space point back onto the rendered canvas. Used by
// overlay rendering (zone outlines, click markers).
func (m Mapper) ToScreen(p geometry.Point) (geometry.Point, error) {
	if m.Natural.Width <= 0 || m.Natural.Height <= 0 {
		return geometry.Point{}, ErrNotMeasured
	}
	scaleX := m.Rendered.Width / m.Natural.Width
	scaleY := m.Rendered.Height / m.Natural.Height
	return geometry.Point{X: p.X * scaleX, Y: p.Y * scaleY}, nil
}
