package geometry

// Rect is an axis-aligned rectangle in integer pixel coordinates. It is a
// plain value with no owner; copy it freely.
type Rect struct {
	X, Y, W, H int
}

func (r Rect) Left() int   { return r.X }
func (r Rect) Right() int  { return r.X + r.W }
func (r Rect) Top() int    { return r.Y }
func (r Rect) Bottom() int { return r.Y + r.H }

// Contains reports whether the point (x, y) lies inside r. The right and
// bottom edges are exclusive.
func (r Rect) Contains(x, y int) bool {
	return r.Left() <= x && x < r.Right() && r.Top() <= y && y < r.Bottom()
}

// Translate returns r shifted by (dx, dy).
func (r Rect) Translate(dx, dy int) Rect {
	r.X += dx
	r.Y += dy
	return r
}
