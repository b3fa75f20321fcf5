package render

import (
	"math"

	"bsprender/internal/fixed"
	"bsprender/internal/level"
)

// clipRange is a run of columns fully covered by solid walls.
type clipRange struct {
	first, last int
}

// bspState is the seg currently being clipped and its sectors.
type bspState struct {
	curLine     *level.Seg
	frontSector *level.Sector
	backSector  *level.Sector
	rwAngle1    fixed.Angle
}

func (r *Renderer) clearDrawSegs() {
	r.drawSegs.Reset()
}

// clearClipSegs leaves only the two sentinels outside the view.
func (r *Renderer) clearClipSegs() {
	r.solidSegs = append(r.solidSegs[:0],
		clipRange{first: -math.MaxInt32, last: -1},
		clipRange{first: r.view.viewWidth, last: math.MaxInt32})
}

func (r *Renderer) pointToAngle(x, y fixed.Fixed) fixed.Angle {
	return fixed.PointToAngle(x-r.viewX, y-r.viewY)
}

// clipSolidWallSegment draws the parts of [first, last] not yet covered and
// adds the range to the solid list, merging neighbors.
func (r *Renderer) clipSolidWallSegment(first, last int) {
	segs := r.solidSegs
	start := 0
	for segs[start].last < first-1 {
		start++
	}

	if first < segs[start].first {
		if last < segs[start].first-1 {
			// entirely visible, insert a new range
			r.storeWallRange(first, last)
			segs = append(segs, clipRange{})
			copy(segs[start+1:], segs[start:len(segs)-1])
			segs[start] = clipRange{first: first, last: last}
			r.solidSegs = segs
			return
		}
		r.storeWallRange(first, segs[start].first-1)
		segs[start].first = first
	}

	if last <= segs[start].last {
		return
	}

	next := start
	merged := false
	for last >= segs[next+1].first-1 {
		r.storeWallRange(segs[next].last+1, segs[next+1].first-1)
		next++
		if last <= segs[next].last {
			segs[start].last = segs[next].last
			merged = true
			break
		}
	}
	if !merged {
		r.storeWallRange(segs[next].last+1, last)
		segs[start].last = last
	}

	if next == start {
		return
	}
	// drop the ranges swallowed by start
	r.solidSegs = append(segs[:start+1], segs[next+1:]...)
}

// clipPassWallSegment draws the uncovered parts of [first, last] without
// marking them solid: windows and steps that sprites may show through.
func (r *Renderer) clipPassWallSegment(first, last int) {
	segs := r.solidSegs
	start := 0
	for segs[start].last < first-1 {
		start++
	}

	if first < segs[start].first {
		if last < segs[start].first-1 {
			r.storeWallRange(first, last)
			return
		}
		r.storeWallRange(first, segs[start].first-1)
	}

	if last <= segs[start].last {
		return
	}

	for last >= segs[start+1].first-1 {
		r.storeWallRange(segs[start].last+1, segs[start+1].first-1)
		start++
		if last <= segs[start].last {
			return
		}
	}
	r.storeWallRange(segs[start].last+1, last)
}

// addLine clips a seg to the view angle and hands its column range to the
// solid or pass clipper.
func (r *Renderer) addLine(seg *level.Seg) {
	r.bsp.curLine = seg
	r.stats.Segs++

	angle1 := r.pointToAngle(seg.V1.X, seg.V1.Y)
	angle2 := r.pointToAngle(seg.V2.X, seg.V2.Y)

	// back side
	span := angle1 - angle2
	if span >= fixed.Ang180 {
		return
	}

	r.bsp.rwAngle1 = angle1
	angle1 -= r.viewAngle
	angle2 -= r.viewAngle

	clip := r.view.clipAngle
	tspan := angle1 + clip
	if tspan > 2*clip {
		tspan -= 2 * clip
		if tspan >= span {
			return
		}
		angle1 = clip
	}
	tspan = clip - angle2
	if tspan > 2*clip {
		tspan -= 2 * clip
		if tspan >= span {
			return
		}
		angle2 = -clip
	}

	x1 := r.view.viewAngleToX[(angle1+fixed.Ang90)>>fixed.AngleToFineShift]
	x2 := r.view.viewAngleToX[(angle2+fixed.Ang90)>>fixed.AngleToFineShift]
	if x1 == x2 {
		return
	}

	front := r.bsp.frontSector
	back := seg.BackSector
	r.bsp.backSector = back

	switch {
	case back == nil:
		r.clipSolidWallSegment(x1, x2-1)
	case back.CeilingHeight <= front.FloorHeight || back.FloorHeight >= front.CeilingHeight:
		// closed door
		r.clipSolidWallSegment(x1, x2-1)
	case back.CeilingHeight != front.CeilingHeight || back.FloorHeight != front.FloorHeight:
		r.clipPassWallSegment(x1, x2-1)
	case back.CeilingPic == front.CeilingPic && back.FloorPic == front.FloorPic &&
		back.LightLevel == front.LightLevel && seg.Side.MidTexture == level.NoTexture:
		// nothing on this line differs from the sector behind it
	default:
		r.clipPassWallSegment(x1, x2-1)
	}
}

// checkCoord picks the two box corners that bound the box's angular extent
// for each of the nine viewer positions around it.
var checkCoord = [12][4]int{
	{3, 0, 2, 1},
	{3, 0, 2, 0},
	{3, 1, 2, 0},
	{0},
	{2, 0, 2, 1},
	{0, 0, 0, 0},
	{3, 1, 3, 0},
	{0},
	{2, 0, 3, 1},
	{2, 1, 3, 1},
	{2, 1, 3, 0},
}

// checkBBox reports whether any part of the box could be visible through
// columns not yet solid.
func (r *Renderer) checkBBox(box *[4]fixed.Fixed) bool {
	var boxX, boxY int
	switch {
	case r.viewX <= box[level.BoxLeft]:
		boxX = 0
	case r.viewX < box[level.BoxRight]:
		boxX = 1
	default:
		boxX = 2
	}
	switch {
	case r.viewY >= box[level.BoxTop]:
		boxY = 0
	case r.viewY > box[level.BoxBottom]:
		boxY = 1
	default:
		boxY = 2
	}

	boxPos := boxY<<2 + boxX
	if boxPos == 5 {
		return true
	}

	cc := checkCoord[boxPos]
	x1, y1 := box[cc[0]], box[cc[1]]
	x2, y2 := box[cc[2]], box[cc[3]]

	angle1 := r.pointToAngle(x1, y1) - r.viewAngle
	angle2 := r.pointToAngle(x2, y2) - r.viewAngle

	span := angle1 - angle2
	if span >= fixed.Ang180 {
		return true
	}

	clip := r.view.clipAngle
	tspan := angle1 + clip
	if tspan > 2*clip {
		tspan -= 2 * clip
		if tspan >= span {
			return false
		}
		angle1 = clip
	}
	tspan = clip - angle2
	if tspan > 2*clip {
		tspan -= 2 * clip
		if tspan >= span {
			return false
		}
		angle2 = -clip
	}

	sx1 := r.view.viewAngleToX[(angle1+fixed.Ang90)>>fixed.AngleToFineShift]
	sx2 := r.view.viewAngleToX[(angle2+fixed.Ang90)>>fixed.AngleToFineShift]
	if sx1 == sx2 {
		return false
	}
	sx2--

	start := 0
	for r.solidSegs[start].last < sx2 {
		start++
	}
	return !(sx1 >= r.solidSegs[start].first && sx2 <= r.solidSegs[start].last)
}

// subsector registers the leaf's planes and sprites, then its segs.
func (r *Renderer) subsector(num int) {
	ss := &r.level.SubSectors[num]
	r.stats.SubSectors++
	front := ss.Sector
	r.bsp.frontSector = front

	r.floorPlane = nil
	if front.FloorHeight < r.viewZ {
		r.floorPlane = r.findPlane(front.FloorHeight, front.FloorPic, front.LightLevel)
	}
	r.ceilingPlane = nil
	if front.CeilingHeight > r.viewZ || front.CeilingPic == r.assets.SkyFlat {
		r.ceilingPlane = r.findPlane(front.CeilingHeight, front.CeilingPic, front.LightLevel)
	}

	r.addSprites(front)

	segs := r.level.SubSectorSegs(num)
	for i := range segs {
		r.addLine(&segs[i])
	}
}

// renderBSPNode visits the tree near side first. The far side is skipped
// when its bounding box is hidden behind solid walls.
func (r *Renderer) renderBSPNode(c level.Child) {
	if c.IsSubSector() {
		if c.Index() >= len(r.level.SubSectors) {
			fatalf("renderBSPNode", "bad subsector %d", c.Index())
		}
		r.subsector(c.Index())
		return
	}
	if c.Index() >= len(r.level.Nodes) {
		fatalf("renderBSPNode", "bad node %d", c.Index())
	}
	n := &r.level.Nodes[c.Index()]
	r.stats.Nodes++

	side := n.PointOnSide(r.viewX, r.viewY)
	r.renderBSPNode(n.Children[side])
	if r.checkBBox(&n.BBox[side^1]) {
		r.renderBSPNode(n.Children[side^1])
	}
}
