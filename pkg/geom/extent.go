package geom

// Corner handle directions, indexed bottom-left, top-left, top-right,
// bottom-right. Each points away from the opposite corner.
var cornerDir = [4]Point{{X: -1, Y: -1}, {X: -1, Y: 1}, {X: 1, Y: 1}, {X: 1, Y: -1}}

// ResizeExtent moves corner handle of the extent e to p while the opposite
// corner stays fixed. The result keeps e's orientation: a corner pair
// written right-to-left stays right-to-left. Each side is clamped to at
// least minSize.
func ResizeExtent(e [2]Point, handle int, p Point, minSize float64) [2]Point {
	r := RectFromPoints(e[0], e[1])
	anchor := r.Corners()[(handle+2)%4]
	dir := cornerDir[handle%4]

	if (p.X-anchor.X)*dir.X < minSize {
		p.X = anchor.X + dir.X*minSize
	}
	if (p.Y-anchor.Y)*dir.Y < minSize {
		p.Y = anchor.Y + dir.Y*minSize
	}

	n := RectFromPoints(anchor, p)
	out := e
	if e[0].X <= e[1].X {
		out[0].X, out[1].X = n.Min.X, n.Max.X
	} else {
		out[0].X, out[1].X = n.Max.X, n.Min.X
	}
	if e[0].Y <= e[1].Y {
		out[0].Y, out[1].Y = n.Min.Y, n.Max.Y
	} else {
		out[0].Y, out[1].Y = n.Max.Y, n.Min.Y
	}
	return out
}
