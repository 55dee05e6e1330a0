// Package geometry provides the shape types and point containment tests used
// for hit-testing risk zones. All coordinates are in the image's natural pixel
// space; callers are responsible for mapping screen coordinates first and for
// rejecting non-finite input.
package geometry

import "math"

// Point is a position in natural image coordinates.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Shape is the closed set of zone geometries. Each variant carries only the
// fields it needs; there is no shared struct with optional fields.
type Shape interface {
	// Contains reports whether p lies inside the shape, boundary inclusive.
	Contains(p Point) bool
	// Kind returns the wire discriminant ("circle" or "rectangle").
	Kind() string
}

const (
	KindCircle    = "circle"
	KindRectangle = "rectangle"
)

// Circle is a zone defined by a center point and radius.
type Circle struct {
	Center Point   `json:"center"`
	Radius float64 `json:"radius"`
}

func (c Circle) Kind() string { return KindCircle }

// Contains uses Euclidean distance with an inclusive boundary.
func (c Circle) Contains(p Point) bool {
	dx := p.X - c.Center.X
	dy := p.Y - c.Center.Y
	return math.Sqrt(dx*dx+dy*dy) <= c.Radius
}

// Rect is an axis-aligned rectangular zone anchored at its top-left corner.
type Rect struct {
	Origin Point   `json:"origin"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

func (r Rect) Kind() string { return KindRectangle }

// Contains treats all four edges as part of the rectangle.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.Origin.X && p.X <= r.Origin.X+r.Width &&
		p.Y >= r.Origin.Y && p.Y <= r.Origin.Y+r.Height
}

// Span returns the smallest dimension of a shape: the radius for circles, the
// shorter side for rectangles. The zone editor uses it to reject degenerate
// drag gestures.
func Span(s Shape) float64 {
	switch v := s.(type) {
	case Circle:
		return v.Radius
	case Rect:
		return math.Min(v.Width, v.Height)
	default:
		return 0
	}
}
