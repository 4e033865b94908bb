package geometry

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var ErrDegenerateZone = errors.New("degenerate zone")

type Point struct {
	X int
	Y int
}

// Zone is a simple polygon in frame pixel coordinates. It is immutable once built.
type Zone struct {
	vertices []Point
}

// NewZone validates the polygon and returns a Zone. Repeated consecutive vertices
// (including a closing vertex equal to the first one) are collapsed before the check.
func NewZone(points []Point) (*Zone, error) {
	vertices := make([]Point, 0, len(points))
	for _, p := range points {
		if len(vertices) > 0 && vertices[len(vertices)-1] == p {
			continue
		}
		vertices = append(vertices, p)
	}
	if len(vertices) > 1 && vertices[0] == vertices[len(vertices)-1] {
		vertices = vertices[:len(vertices)-1]
	}

	if len(vertices) < 3 {
		return nil, fmt.Errorf("%w: need at least 3 distinct vertices, got %d", ErrDegenerateZone, len(vertices))
	}
	if doubleArea(vertices) == 0 {
		return nil, fmt.Errorf("%w: vertices are collinear", ErrDegenerateZone)
	}

	return &Zone{vertices: vertices}, nil
}

// MustZone is NewZone for literals known to be valid.
func MustZone(points ...Point) *Zone {
	z, err := NewZone(points)
	if err != nil {
		panic(err)
	}
	return z
}

func (z *Zone) Vertices() []Point {
	out := make([]Point, len(z.vertices))
	copy(out, z.vertices)
	return out
}

// Contains reports whether p lies inside the polygon or on its boundary.
func (z *Zone) Contains(p Point) bool {
	n := len(z.vertices)
	inside := false
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		a, b := z.vertices[j], z.vertices[i]
		if onSegment(a, b, p) {
			return true
		}
		if (a.Y > p.Y) != (b.Y > p.Y) {
			// x coordinate of the edge at p.Y compared without division:
			// p.X < a.X + (p.Y-a.Y)*(b.X-a.X)/(b.Y-a.Y)
			lhs := int64(p.X-a.X) * int64(b.Y-a.Y)
			rhs := int64(p.Y-a.Y) * int64(b.X-a.X)
			if b.Y-a.Y < 0 {
				lhs, rhs = -lhs, -rhs
			}
			if lhs < rhs {
				inside = !inside
			}
		}
	}
	return inside
}

func (z *Zone) String() string {
	parts := make([]string, len(z.vertices))
	for i, v := range z.vertices {
		parts[i] = fmt.Sprintf("%d,%d", v.X, v.Y)
	}
	return strings.Join(parts, ";")
}

// ParsePolygon reads vertices written as "x1,y1;x2,y2;...".
func ParsePolygon(raw string) ([]Point, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("%w: empty polygon", ErrDegenerateZone)
	}

	var points []Point
	for _, pair := range strings.Split(raw, ";") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		xy := strings.Split(pair, ",")
		if len(xy) != 2 {
			return nil, fmt.Errorf("invalid vertex %q: expected x,y", pair)
		}
		x, err := strconv.Atoi(strings.TrimSpace(xy[0]))
		if err != nil {
			return nil, fmt.Errorf("invalid vertex %q: %w", pair, err)
		}
		y, err := strconv.Atoi(strings.TrimSpace(xy[1]))
		if err != nil {
			return nil, fmt.Errorf("invalid vertex %q: %w", pair, err)
		}
		points = append(points, Point{X: x, Y: y})
	}
	return points, nil
}

func onSegment(a, b, p Point) bool {
	cross := int64(b.X-a.X)*int64(p.Y-a.Y) - int64(b.Y-a.Y)*int64(p.X-a.X)
	if cross != 0 {
		return false
	}
	return p.X >= min(a.X, b.X) && p.X <= max(a.X, b.X) &&
		p.Y >= min(a.Y, b.Y) && p.Y <= max(a.Y, b.Y)
}

func doubleArea(vertices []Point) int64 {
	var sum int64
	n := len(vertices)
	for i := 0; i < n; i++ {
		a, b := vertices[i], vertices[(i+1)%n]
		sum += int64(a.X)*int64(b.Y) - int64(b.X)*int64(a.Y)
	}
	return sum
}
