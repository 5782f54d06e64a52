package physics

import (
	"sort"
	"sync"
)

// ColliderID identifies a collider inside a Space. Zero is never assigned.
type ColliderID int64

// Hit is the nearest raycast intersection.
type Hit struct {
	Collider ColliderID
	Point    Vec2
	Distance float64
}

type collider struct {
	id    ColliderID
	layer Layer
	shape Shape
}

// Space is a flat collider registry answering broad-phase overlap and raycast queries.
// It is safe for concurrent use.
type Space struct {
	mu        sync.RWMutex
	colliders map[ColliderID]*collider
	nextID    ColliderID
}

// NewSpace creates an empty Space.
func NewSpace() *Space {
	return &Space{colliders: make(map[ColliderID]*collider)}
}

// Add registers a shape on the given layer and returns its ID.
func (s *Space) Add(layer Layer, shape Shape) ColliderID {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	s.colliders[s.nextID] = &collider{id: s.nextID, layer: layer, shape: shape}
	return s.nextID
}

// AddCircle registers a circle collider.
func (s *Space) AddCircle(layer Layer, center Vec2, radius float64) ColliderID {
	return s.Add(layer, Circle{Center: center, Radius: radius})
}

// AddRect registers a rect collider.
func (s *Space) AddRect(layer Layer, r Rect) ColliderID {
	return s.Add(layer, r)
}

// Remove deletes a collider. Unknown IDs are ignored.
func (s *Space) Remove(id ColliderID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.colliders, id)
}

// Len returns the number of registered colliders.
func (s *Space) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.colliders)
}

// MoveCircle re-centers a circle collider. Returns false if id is unknown or not a circle.
func (s *Space) MoveCircle(id ColliderID, center Vec2) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.colliders[id]
	if !ok {
		return false
	}
	circ, ok := c.shape.(Circle)
	if !ok {
		return false
	}
	circ.Center = center
	c.shape = circ
	return true
}

// CircleCenter returns the current center of a circle collider.
func (s *Space) CircleCenter(id ColliderID) (Vec2, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.colliders[id]
	if !ok {
		return Vec2{}, false
	}
	circ, ok := c.shape.(Circle)
	if !ok {
		return Vec2{}, false
	}
	return circ.Center, true
}

// OverlapCircleAll returns the IDs of every collider on mask that overlaps the circle,
// in ascending ID order.
func (s *Space) OverlapCircleAll(center Vec2, radius float64, mask Layer) []ColliderID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []ColliderID
	for id, c := range s.colliders {
		if !mask.Has(c.layer) {
			continue
		}
		if c.shape.overlapsCircle(center, radius) {
			out = append(out, id)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// CircleBlocked reports whether a circle at center would overlap any collider on mask
// other than ignore.
func (s *Space) CircleBlocked(center Vec2, radius float64, mask Layer, ignore ColliderID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for id, c := range s.colliders {
		if id == ignore || !mask.Has(c.layer) {
			continue
		}
		if c.shape.overlapsCircle(center, radius) {
			return true
		}
	}
	return false
}

// Raycast returns the nearest collider on mask hit by the ray from origin along dir within
// maxDistance. dir need not be normalized; a zero dir never hits.
func (s *Space) Raycast(origin, dir Vec2, maxDistance float64, mask Layer) (Hit, bool) {
	unit := dir.Normalize()
	if unit == (Vec2{}) || maxDistance <= 0 {
		return Hit{}, false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	var best Hit
	found := false
	for id, c := range s.colliders {
		if !mask.Has(c.layer) {
			continue
		}
		t, ok := c.shape.raycast(origin, unit, maxDistance)
		if !ok {
			continue
		}
		// ties go to the lower ID so results are stable across map iteration
		if !found || t < best.Distance || (t == best.Distance && id < best.Collider) {
			best = Hit{Collider: id, Distance: t, Point: origin.Add(unit.Scale(t))}
			found = true
		}
	}
	return best, found
}
