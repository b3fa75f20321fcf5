package level

import "bsprender/internal/fixed"

// PointOnSide returns 0 if (x, y) is on the front side of the node's
// partition line, 1 if on the back.
func (n *Node) PointOnSide(x, y fixed.Fixed) int {
	return pointOnSide(x, y, n.X, n.Y, n.Dx, n.Dy)
}

// PointOnSegSide classifies (x, y) against the seg's line.
func (s *Seg) PointOnSegSide(x, y fixed.Fixed) int {
	return pointOnSide(x, y, s.V1.X, s.V1.Y, s.V2.X-s.V1.X, s.V2.Y-s.V1.Y)
}

func pointOnSide(x, y, lx, ly, ldx, ldy fixed.Fixed) int {
	if ldx == 0 {
		if x <= lx {
			return b2i(ldy > 0)
		}
		return b2i(ldy < 0)
	}
	if ldy == 0 {
		if y <= ly {
			return b2i(ldx < 0)
		}
		return b2i(ldx > 0)
	}

	dx := x - lx
	dy := y - ly

	// sign bits alone decide the quadrant cases
	if ldy^ldx^dx^dy < 0 {
		if ldy^dx < 0 {
			return 1
		}
		return 0
	}

	left := fixed.Mul(ldy>>fixed.FracBits, dx)
	right := fixed.Mul(dy, ldx>>fixed.FracBits)
	if right < left {
		return 0
	}
	return 1
}

func b2i(b bool) int {
	if b {
		return 1
	}
	return 0
}

// PointInSubsector descends the tree to the leaf containing (x, y).
func (l *Level) PointInSubsector(x, y fixed.Fixed) *SubSector {
	c := l.Root()
	for !c.IsSubSector() {
		n := &l.Nodes[c.Index()]
		c = n.Children[n.PointOnSide(x, y)]
	}
	return &l.SubSectors[c.Index()]
}
