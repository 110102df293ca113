// Package layout holds the pure geometry used by the board engine: child
// placement under a parent, category bounding boxes and rectangle tests.
package layout

import "github.com/Ngyama/idea-canvas/internal/model"

const (
	// ChildOffsetRatio is the fraction of the parent width children are indented by.
	ChildOffsetRatio = 0.3
	// ChildGap separates the parent's bottom edge from the first child.
	ChildGap = 15.0
	// ChildStride is the vertical distance between consecutive children.
	ChildStride = 60.0

	CategoryPaddingX      = 40.0
	CategoryPaddingTop    = 70.0
	CategoryPaddingBottom = 40.0
)

// ChildPosition returns where the child at index sits under a parent.
func ChildPosition(parentPos model.Point, parentSize model.Size, index int) model.Point {
	return model.Point{
		X: parentPos.X + parentSize.Width*ChildOffsetRatio,
		Y: parentPos.Y + parentSize.Height + ChildGap + float64(index)*ChildStride,
	}
}

type Rect struct {
	X, Y, Width, Height float64
}

func RectOf(pos model.Point, size model.Size) Rect {
	return Rect{X: pos.X, Y: pos.Y, Width: size.Width, Height: size.Height}
}

func (r Rect) Right() float64  { return r.X + r.Width }
func (r Rect) Bottom() float64 { return r.Y + r.Height }

func (r Rect) Valid() bool { return r.Width > 0 && r.Height > 0 }

// Contains is inclusive on every edge.
func (r Rect) Contains(p model.Point) bool {
	return p.X >= r.X && p.X <= r.Right() && p.Y >= r.Y && p.Y <= r.Bottom()
}

// ContainsRect reports whether o lies fully inside r.
func (r Rect) ContainsRect(o Rect) bool {
	return o.X >= r.X && o.Right() <= r.Right() && o.Y >= r.Y && o.Bottom() <= r.Bottom()
}

// Union returns the smallest rect covering r and o.
func (r Rect) Union(o Rect) Rect {
	x, y := min(r.X, o.X), min(r.Y, o.Y)
	return Rect{X: x, Y: y, Width: max(r.Right(), o.Right()) - x, Height: max(r.Bottom(), o.Bottom()) - y}
}

// Expand grows r by d on every side.
func (r Rect) Expand(d float64) Rect {
	return Rect{X: r.X - d, Y: r.Y - d, Width: r.Width + 2*d, Height: r.Height + 2*d}
}

// CategoryBounds returns the box a new category draws around its members:
// 40 units left/right/below and 70 above for the name band.
// ok is false when rects is empty.
func CategoryBounds(rects []Rect) (model.Point, model.Size, bool) {
	if len(rects) == 0 {
		return model.Point{}, model.Size{}, false
	}
	minX, minY := rects[0].X, rects[0].Y
	maxX, maxY := rects[0].Right(), rects[0].Bottom()
	for _, r := range rects[1:] {
		minX = min(minX, r.X)
		minY = min(minY, r.Y)
		maxX = max(maxX, r.Right())
		maxY = max(maxY, r.Bottom())
	}
	minX -= CategoryPaddingX
	minY -= CategoryPaddingTop
	maxX += CategoryPaddingX
	maxY += CategoryPaddingBottom
	return model.Point{X: minX, Y: minY}, model.Size{Width: maxX - minX, Height: maxY - minY}, true
}
