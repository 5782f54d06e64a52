package physics

import "math"

// Layer is a collision layer bit. Masks are ORed layers.
type Layer uint32

const (
	LayerObstacle Layer = 1 << iota
	LayerMonster
	LayerPlayer

	LayerNone Layer = 0
	LayerAll  Layer = ^Layer(0)
)

// Has reports whether the mask includes any bit of l.
func (m Layer) Has(l Layer) bool { return m&l != 0 }

// Shape is a collider geometry. The set of shapes is closed: Circle and Rect.
type Shape interface {
	overlapsCircle(center Vec2, radius float64) bool
	// raycast returns the entry distance along the unit direction dir.
	raycast(origin, dir Vec2, maxDist float64) (float64, bool)
}

// Circle is a disc collider.
type Circle struct {
	Center Vec2
	Radius float64
}

func (c Circle) overlapsCircle(center Vec2, radius float64) bool {
	r := c.Radius + radius
	return c.Center.Sub(center).LenSq() <= r*r
}

func (c Circle) raycast(origin, dir Vec2, maxDist float64) (float64, bool) {
	m := origin.Sub(c.Center)
	b := m.Dot(dir)
	cc := m.LenSq() - c.Radius*c.Radius
	if cc > 0 && b > 0 {
		return 0, false
	}
	disc := b*b - cc
	if disc < 0 {
		return 0, false
	}
	t := -b - math.Sqrt(disc)
	if t < 0 {
		// origin inside the circle
		t = 0
	}
	if t > maxDist {
		return 0, false
	}
	return t, true
}

// Rect is an axis-aligned box collider.
type Rect struct {
	Min, Max Vec2
}

// RectAt builds a Rect from its lower-left corner and size.
func RectAt(x, y, w, h float64) Rect {
	return Rect{Min: Vec2{x, y}, Max: Vec2{x + w, y + h}}
}

func (r Rect) overlapsCircle(center Vec2, radius float64) bool {
	closest := Vec2{
		X: math.Max(r.Min.X, math.Min(center.X, r.Max.X)),
		Y: math.Max(r.Min.Y, math.Min(center.Y, r.Max.Y)),
	}
	return closest.Sub(center).LenSq() <= radius*radius
}

func (r Rect) raycast(origin, dir Vec2, maxDist float64) (float64, bool) {
	tmin, tmax := 0.0, maxDist
	axes := [2][4]float64{
		{origin.X, dir.X, r.Min.X, r.Max.X},
		{origin.Y, dir.Y, r.Min.Y, r.Max.Y},
	}
	for _, a := range axes {
		o, d, lo, hi := a[0], a[1], a[2], a[3]
		if math.Abs(d) < 1e-12 {
			if o < lo || o > hi {
				return 0, false
			}
			continue
		}
		inv := 1 / d
		t1, t2 := (lo-o)*inv, (hi-o)*inv
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tmin = math.Max(tmin, t1)
		tmax = math.Min(tmax, t2)
		if tmin > tmax {
			return 0, false
		}
	}
	return tmin, true
}
