package editor

import (
	"fmt"
	"math"
	"testing"

	"floorplanner/internal/geometry"
	"floorplanner/internal/planner/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testBounds = geometry.Bounds{Width: 800, Height: 600}

func newTestController() *Controller {
	n := 0
	return NewController(testBounds,
		WithRandom(func() float64 { return 0 }),
		WithIDGenerator(func() string {
			n++
			return fmt.Sprintf("room_%d", n)
		}),
	)
}

func addRoom(t *testing.T, c *Controller, typ string, w, h int) models.Room {
	t.Helper()
	room, err := c.AddRoomInstance(models.Template{Type: typ, Width: w, Height: h})
	require.NoError(t, err)
	return room
}

func assertCanvasValid(t *testing.T, c *Controller) {
	t.Helper()
	rooms := c.Rooms()
	for i, a := range rooms {
		assert.True(t, c.Bounds().Contains(a.Rect), "%s out of bounds: %+v", a.ID, a.Rect)
		assert.True(t, geometry.IsGridAligned(a.Rect), "%s off grid: %+v", a.ID, a.Rect)
		assert.GreaterOrEqual(t, a.Rect.W, geometry.MinWidth)
		assert.GreaterOrEqual(t, a.Rect.H, geometry.MinHeight)
		for _, b := range rooms[i+1:] {
			assert.False(t, geometry.IsColliding(a.Rect, b.Rect), "%s overlaps %s", a.ID, b.ID)
		}
	}
}

func TestAddRoomInstance(t *testing.T) {
	c := newTestController()

	first := addRoom(t, c, "bedroom", 120, 80)
	assert.Equal(t, "room_1", first.ID)
	assert.Equal(t, "bedroom1", first.Name)
	assert.Equal(t, geometry.Rect{X: 20, Y: 20, W: 120, H: 80}, first.Rect)

	second := addRoom(t, c, "bedroom", 120, 80)
	assert.Equal(t, "bedroom2", second.Name)
	assert.False(t, geometry.IsColliding(first.Rect, second.Rect))
	assertCanvasValid(t, c)

	_, err := c.AddRoomInstance(models.Template{Type: "  "})
	assert.ErrorIs(t, err, ErrBadTemplate)
}

func TestAddRoomInstance_FullCanvas(t *testing.T) {
	c := NewController(geometry.Bounds{Width: 220, Height: 150}, WithRandom(func() float64 { return 0 }))

	added, refused := 0, 0
	for i := 0; i < 4; i++ {
		_, err := c.AddRoomInstance(models.Template{Type: "bedroom", Width: 100, Height: 100})
		if err != nil {
			require.ErrorIs(t, err, ErrNoSpace)
			refused++
		} else {
			added++
		}
		assert.Len(t, c.Rooms(), added)
		assertCanvasValid(t, c)
	}
	assert.GreaterOrEqual(t, added, 1)
	assert.Greater(t, refused, 0)
}

func TestAddRoomInstance_NormalisesSize(t *testing.T) {
	c := newTestController()
	room := addRoom(t, c, "closet", 5, -10)
	assert.Equal(t, 40, room.Rect.W)
	assert.Equal(t, 40, room.Rect.H)
}

func TestStateTransitions(t *testing.T) {
	c := newTestController()
	room := addRoom(t, c, "kitchen", 140, 100)
	assert.Equal(t, Idle, c.State())

	require.NoError(t, c.PointerDown(room.ID, HandleNone, Point{X: 50, Y: 50}))
	assert.Equal(t, Dragging, c.State())
	assert.Equal(t, room.ID, c.ActiveRoom())

	assert.ErrorIs(t, c.PointerDown(room.ID, HandleBottomRight, Point{}), ErrBusy)

	_, err := c.PointerUp()
	require.NoError(t, err)
	assert.Equal(t, Idle, c.State())
	assert.Empty(t, c.ActiveRoom())

	_, err = c.PointerUp()
	assert.ErrorIs(t, err, ErrNoSession)
	_, err = c.PointerMove(Point{X: 1, Y: 1})
	assert.ErrorIs(t, err, ErrNoSession)

	require.NoError(t, c.PointerDown(room.ID, HandleTopLeft, Point{}))
	assert.Equal(t, Resizing, c.State())
	c.PointerLeave()
	assert.Equal(t, Idle, c.State())

	assert.ErrorIs(t, c.PointerDown("missing", HandleNone, Point{}), ErrRoomNotFound)
	assert.ErrorIs(t, c.PointerDown(room.ID, Handle("middle"), Point{}), ErrBadHandle)
	assert.Equal(t, Idle, c.State())
}

func TestDrag_SnapsToGrid(t *testing.T) {
	c := newTestController()
	room := addRoom(t, c, "bedroom", 120, 80)

	require.NoError(t, c.PointerDown(room.ID, HandleNone, Point{X: 100, Y: 100}))

	moved, err := c.PointerMove(Point{X: 105, Y: 103})
	require.NoError(t, err)
	assert.Equal(t, geometry.Rect{X: 20, Y: 20, W: 120, H: 80}, moved.Rect)

	moved, err = c.PointerMove(Point{X: 112, Y: 112})
	require.NoError(t, err)
	assert.Equal(t, geometry.Rect{X: 40, Y: 40, W: 120, H: 80}, moved.Rect)

	_, err = c.PointerUp()
	require.NoError(t, err)
	got, ok := c.Room(room.ID)
	require.True(t, ok)
	assert.Equal(t, 40, got.Rect.X)
}

func TestDrag_NonFinitePointer(t *testing.T) {
	c := newTestController()
	room := addRoom(t, c, "bedroom", 120, 80)

	require.NoError(t, c.PointerDown(room.ID, HandleNone, Point{X: math.NaN(), Y: 0}))
	moved, err := c.PointerMove(Point{X: math.Inf(1), Y: math.NaN()})
	require.NoError(t, err)
	assert.Equal(t, room.Rect, moved.Rect)
}

func TestDrag_ResolvesCollision(t *testing.T) {
	c := newTestController()
	a := addRoom(t, c, "living", 120, 80)
	b := addRoom(t, c, "kitchen", 120, 80)
	require.False(t, geometry.IsColliding(a.Rect, b.Rect))

	require.NoError(t, c.PointerDown(b.ID, HandleNone, Point{}))
	for _, p := range []Point{{X: -20, Y: 10}, {X: -60, Y: 30}, {X: -100, Y: 40}, {X: -120, Y: 60}} {
		_, err := c.PointerMove(p)
		require.NoError(t, err)
		assertCanvasValid(t, c)
	}
}

func TestDrag_BetweenTwoRooms(t *testing.T) {
	c := newTestController()
	left := addRoom(t, c, "living", 120, 80)
	right := addRoom(t, c, "kitchen", 120, 80)
	mover := addRoom(t, c, "bedroom", 100, 80)
	require.False(t, geometry.IsColliding(left.Rect, right.Rect))
	assertCanvasValid(t, c)

	require.NoError(t, c.PointerDown(mover.ID, HandleNone, Point{}))
	path := []Point{
		{X: 0, Y: -20}, {X: -40, Y: -60}, {X: -80, Y: -100}, {X: 30, Y: -90},
		{X: 110, Y: -80}, {X: 150, Y: -60}, {X: 200, Y: -100}, {X: 60, Y: -40},
	}
	for _, p := range path {
		_, err := c.PointerMove(p)
		require.NoError(t, err)
		assertCanvasValid(t, c)
	}
	_, err := c.PointerUp()
	require.NoError(t, err)
	assertCanvasValid(t, c)

	stillLeft, _ := c.Room(left.ID)
	stillRight, _ := c.Room(right.ID)
	assert.Equal(t, left.Rect, stillLeft.Rect)
	assert.Equal(t, right.Rect, stillRight.Rect)
}

func TestDrag_StaysInsideCanvas(t *testing.T) {
	c := newTestController()
	room := addRoom(t, c, "bedroom", 120, 80)

	require.NoError(t, c.PointerDown(room.ID, HandleNone, Point{}))
	moved, err := c.PointerMove(Point{X: 5000, Y: 5000})
	require.NoError(t, err)
	assert.Equal(t, geometry.Rect{X: 660, Y: 500, W: 120, H: 80}, moved.Rect)

	moved, err = c.PointerMove(Point{X: -5000, Y: -5000})
	require.NoError(t, err)
	assert.Equal(t, 0, moved.Rect.X)
	assert.Equal(t, 0, moved.Rect.Y)
}

func TestResize_Corners(t *testing.T) {
	cases := []struct {
		handle Handle
		delta  Point
		want   geometry.Rect
	}{
		{HandleBottomRight, Point{X: 40, Y: 20}, geometry.Rect{X: 20, Y: 20, W: 160, H: 100}},
		{HandleBottomLeft, Point{X: -20, Y: 20}, geometry.Rect{X: 0, Y: 20, W: 140, H: 100}},
		{HandleTopRight, Point{X: 40, Y: -20}, geometry.Rect{X: 20, Y: 0, W: 160, H: 100}},
		{HandleTopLeft, Point{X: 40, Y: 20}, geometry.Rect{X: 60, Y: 40, W: 80, H: 60}},
	}
	for _, tc := range cases {
		t.Run(string(tc.handle), func(t *testing.T) {
			c := newTestController()
			room := addRoom(t, c, "bedroom", 120, 80)

			require.NoError(t, c.PointerDown(room.ID, tc.handle, Point{X: 300, Y: 300}))
			got, err := c.PointerMove(Point{X: 300 + tc.delta.X, Y: 300 + tc.delta.Y})
			require.NoError(t, err)
			assert.Equal(t, tc.want, got.Rect)
		})
	}
}

func TestResize_NeverBelowMinimum(t *testing.T) {
	deltas := []Point{
		{X: -1e6, Y: -1e6},
		{X: 1e6, Y: 1e6},
		{X: -1e6, Y: 1e6},
		{X: 1e6, Y: -1e6},
		{X: -130, Y: -95},
	}
	for _, h := range []Handle{HandleTopLeft, HandleTopRight, HandleBottomLeft, HandleBottomRight} {
		for _, d := range deltas {
			c := newTestController()
			room := addRoom(t, c, "bedroom", 120, 80)

			require.NoError(t, c.PointerDown(room.ID, h, Point{}))
			got, err := c.PointerMove(d)
			require.NoError(t, err)
			assert.GreaterOrEqual(t, got.Rect.W, geometry.MinWidth, "%s %+v", h, d)
			assert.GreaterOrEqual(t, got.Rect.H, geometry.MinHeight, "%s %+v", h, d)
			assertCanvasValid(t, c)
		}
	}
}

func TestResize_ShrinkFromTopLeftKeepsOppositeCorner(t *testing.T) {
	c := newTestController()
	room := addRoom(t, c, "bedroom", 120, 80)

	require.NoError(t, c.PointerDown(room.ID, HandleTopLeft, Point{}))
	got, err := c.PointerMove(Point{X: 1e6, Y: 1e6})
	require.NoError(t, err)
	assert.Equal(t, geometry.Rect{X: 100, Y: 60, W: 40, H: 40}, got.Rect)
}

func TestLock(t *testing.T) {
	c := newTestController()
	room := addRoom(t, c, "bedroom", 120, 80)

	c.SetLocked(true)
	assert.ErrorIs(t, c.PointerDown(room.ID, HandleNone, Point{}), ErrLocked)
	assert.Equal(t, Idle, c.State())

	assert.False(t, c.ToggleLock())
	require.NoError(t, c.PointerDown(room.ID, HandleNone, Point{}))

	assert.True(t, c.ToggleLock())
	frozen, err := c.PointerMove(Point{X: 200, Y: 200})
	require.NoError(t, err)
	assert.Equal(t, room.Rect, frozen.Rect)
	assert.Equal(t, Dragging, c.State())

	c.SetLocked(false)
	moved, err := c.PointerMove(Point{X: 200, Y: 200})
	require.NoError(t, err)
	assert.Equal(t, geometry.Rect{X: 220, Y: 220, W: 120, H: 80}, moved.Rect)
}

func TestDeleteRules(t *testing.T) {
	c := newTestController()
	a := addRoom(t, c, "bedroom", 120, 80)
	b := addRoom(t, c, "bathroom", 80, 80)

	require.NoError(t, c.Select(a.ID))
	assert.ErrorIs(t, c.Select("nope"), ErrRoomNotFound)

	c.SetLocked(true)
	_, err := c.DeleteSelected()
	assert.ErrorIs(t, err, ErrLocked)

	// the delete control ignores the lock
	removed, err := c.DeleteRoom(a.ID)
	require.NoError(t, err)
	assert.True(t, removed)
	assert.Empty(t, c.Selected())

	removed, err = c.DeleteRoom(a.ID)
	require.NoError(t, err)
	assert.False(t, removed)

	c.SetLocked(false)
	id, err := c.DeleteSelected()
	require.NoError(t, err)
	assert.Empty(t, id)

	require.NoError(t, c.PointerDown(b.ID, HandleNone, Point{}))
	_, err = c.DeleteRoom(b.ID)
	assert.ErrorIs(t, err, ErrRoomActive)
	require.NoError(t, c.Select(b.ID))
	_, err = c.DeleteSelected()
	assert.ErrorIs(t, err, ErrRoomActive)

	_, err = c.PointerUp()
	require.NoError(t, err)
	id, err = c.DeleteSelected()
	require.NoError(t, err)
	assert.Equal(t, b.ID, id)
	assert.Empty(t, c.Rooms())
}

func TestSaveLoadRoundTrip(t *testing.T) {
	c := newTestController()
	a := addRoom(t, c, "bedroom", 120, 100)
	addRoom(t, c, "kitchen", 140, 100)
	addRoom(t, c, "bathroom", 80, 80)
	require.NoError(t, c.AttachMetadata(a.ID, "room_1.json"))
	assert.ErrorIs(t, c.AttachMetadata("ghost", "x.json"), ErrRoomNotFound)

	saved := c.SaveLayout()
	require.Len(t, saved, 3)
	assert.Equal(t, "room_1.json", saved[0].AttachedJSON)

	other := newTestController()
	require.NoError(t, other.LoadLayout(saved))
	assert.Equal(t, saved, other.SaveLayout())

	next := addRoom(t, other, "living", 160, 140)
	assert.Equal(t, "living4", next.Name)
}

func TestLoadLayout_SnapsAndDeduplicates(t *testing.T) {
	c := newTestController()
	err := c.LoadLayout([]models.LayoutItem{
		{ID: "a", Type: "bedroom", X: 33, Y: 9, Width: 118, Height: 10},
		{ID: "a", Type: "", X: 200, Y: 200, Width: 80, Height: 80},
	})
	require.NoError(t, err)

	rooms := c.Rooms()
	require.Len(t, rooms, 2)
	assert.Equal(t, geometry.Rect{X: 40, Y: 0, W: 120, H: 40}, rooms[0].Rect)
	assert.NotEqual(t, "a", rooms[1].ID)
	assert.Equal(t, "room", rooms[1].Type)
}

func TestLoadLayout_RefusedDuringSession(t *testing.T) {
	c := newTestController()
	room := addRoom(t, c, "bedroom", 120, 80)
	require.NoError(t, c.PointerDown(room.ID, HandleNone, Point{}))

	assert.ErrorIs(t, c.LoadLayout(nil), ErrSessionActive)
	assert.Len(t, c.Rooms(), 1)
}

func TestDragTo_IsPure(t *testing.T) {
	anchor := geometry.Rect{X: 100, Y: 100, W: 120, H: 80}
	others := []geometry.Rect{{X: 300, Y: 100, W: 100, H: 100}}

	first := DragTo(anchor, 45, 0, others, testBounds)
	second := DragTo(anchor, 45, 0, others, testBounds)
	assert.Equal(t, first, second)
	assert.Equal(t, geometry.Rect{X: 100, Y: 100, W: 120, H: 80}, anchor)
	assert.False(t, geometry.CollidesAny(first, others))
}

func TestParseHandle(t *testing.T) {
	for _, s := range []string{"", "tl", "tr", "bl", "br"} {
		h, err := ParseHandle(s)
		require.NoError(t, err)
		assert.Equal(t, Handle(s), h)
	}
	_, err := ParseHandle("center")
	assert.ErrorIs(t, err, ErrBadHandle)
}
