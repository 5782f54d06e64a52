package physics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVec2_Normalize(t *testing.T) {
	v := V(3, 4).Normalize()
	assert.InDelta(t, 1.0, v.Len(), 1e-9)
	assert.InDelta(t, 0.6, v.X, 1e-9)
	assert.Equal(t, Vec2{}, Vec2{}.Normalize(), "zero vector stays zero")
}

func TestVec2_Rotate(t *testing.T) {
	v := V(1, 0).Rotate(math.Pi / 2)
	assert.InDelta(t, 0, v.X, 1e-9)
	assert.InDelta(t, 1, v.Y, 1e-9)
}

func TestRaycast_HitsNearestRect(t *testing.T) {
	s := NewSpace()
	far := s.AddRect(LayerObstacle, RectAt(5, -1, 1, 2))
	near := s.AddRect(LayerObstacle, RectAt(2, -1, 1, 2))

	hit, ok := s.Raycast(V(0, 0), V(1, 0), 10, LayerObstacle)
	require.True(t, ok)
	assert.Equal(t, near, hit.Collider)
	assert.InDelta(t, 2.0, hit.Distance, 1e-9)
	assert.InDelta(t, 2.0, hit.Point.X, 1e-9)
	assert.NotEqual(t, far, hit.Collider)
}

func TestRaycast_RespectsMaxDistanceAndMask(t *testing.T) {
	s := NewSpace()
	s.AddRect(LayerObstacle, RectAt(2, -1, 1, 2))
	s.AddCircle(LayerPlayer, V(1, 0), 0.25)

	_, ok := s.Raycast(V(0, 0), V(1, 0), 1.5, LayerObstacle)
	assert.False(t, ok, "obstacle is beyond max distance")

	hit, ok := s.Raycast(V(0, 0), V(1, 0), 1.5, LayerPlayer)
	require.True(t, ok)
	assert.InDelta(t, 0.75, hit.Distance, 1e-9)

	_, ok = s.Raycast(V(0, 0), V(0, 1), 10, LayerAll)
	assert.False(t, ok, "nothing above the origin")
}

func TestRaycast_OriginInsideCircle(t *testing.T) {
	s := NewSpace()
	id := s.AddCircle(LayerObstacle, V(0, 0), 1)
	hit, ok := s.Raycast(V(0.2, 0), V(1, 0), 5, LayerObstacle)
	require.True(t, ok)
	assert.Equal(t, id, hit.Collider)
	assert.Zero(t, hit.Distance)
}

func TestRaycast_ZeroDirection(t *testing.T) {
	s := NewSpace()
	s.AddCircle(LayerObstacle, V(0, 0), 1)
	_, ok := s.Raycast(V(0, 0), Vec2{}, 5, LayerAll)
	assert.False(t, ok)
}

func TestOverlapCircleAll(t *testing.T) {
	s := NewSpace()
	a := s.AddCircle(LayerPlayer, V(1.1, 0), 0.2)
	b := s.AddRect(LayerObstacle, RectAt(-3, -3, 1, 1))
	c := s.AddCircle(LayerMonster, V(0, 0.5), 0.1)

	got := s.OverlapCircleAll(V(0, 0), 1, LayerAll)
	assert.Equal(t, []ColliderID{a, c}, got)
	assert.NotContains(t, got, b)

	got = s.OverlapCircleAll(V(0, 0), 1, LayerPlayer)
	assert.Equal(t, []ColliderID{a}, got)
}

func TestMoveCircle(t *testing.T) {
	s := NewSpace()
	id := s.AddCircle(LayerMonster, V(0, 0), 0.5)
	rect := s.AddRect(LayerObstacle, RectAt(0, 0, 1, 1))

	require.True(t, s.MoveCircle(id, V(4, 4)))
	pos, ok := s.CircleCenter(id)
	require.True(t, ok)
	assert.Equal(t, V(4, 4), pos)

	assert.False(t, s.MoveCircle(rect, V(1, 1)), "rects are static")
	assert.False(t, s.MoveCircle(999, V(1, 1)))
}

func TestCircleBlocked_IgnoresSelf(t *testing.T) {
	s := NewSpace()
	self := s.AddCircle(LayerMonster, V(0, 0), 0.5)
	s.AddRect(LayerObstacle, RectAt(1, -1, 1, 2))

	assert.False(t, s.CircleBlocked(V(0, 0), 0.5, LayerAll, self))
	assert.True(t, s.CircleBlocked(V(0.8, 0), 0.5, LayerObstacle, self))

	s.Remove(self)
	assert.Equal(t, 1, s.Len())
}
