package render

import (
	"testing"

	"bsprender/internal/fixed"
	"bsprender/internal/level"
	"bsprender/internal/level/leveltest"
)

func box(top, bottom, left, right int) *[4]fixed.Fixed {
	var b [4]fixed.Fixed
	b[level.BoxTop] = fixed.FromInt(top)
	b[level.BoxBottom] = fixed.FromInt(bottom)
	b[level.BoxLeft] = fixed.FromInt(left)
	b[level.BoxRight] = fixed.FromInt(right)
	return &b
}

func TestSolidSegsCollapseInClosedRoom(t *testing.T) {
	r := newTestRenderer(t, leveltest.Box(128, roomSpec()), DefaultLimits())
	mustRender(t, r, eastViewer(-64, 0))

	if len(r.solidSegs) != 1 {
		t.Fatalf("solid ranges = %v, want one covering the view", r.solidSegs)
	}
	if r.checkBBox(box(64, -64, 200, 300)) {
		t.Error("box ahead reported visible behind a solid view")
	}
}

func TestCheckBBox(t *testing.T) {
	r := newTestRenderer(t, leveltest.Box(128, roomSpec()), DefaultLimits())
	r.setupFrame(eastViewer(0, 0))
	r.clearClipSegs()

	tests := []struct {
		name string
		box  *[4]fixed.Fixed
		want bool
	}{
		{"ahead", box(64, -64, 200, 300), true},
		{"behind", box(64, -64, -300, -200), false},
		{"around viewer", box(10, -10, -10, 10), true},
		{"far off to the side", box(2000, 1000, 10, 20), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := r.checkBBox(tt.box); got != tt.want {
				t.Errorf("checkBBox = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBackFacingSegsAreSkipped(t *testing.T) {
	// the west wall faces away from a viewer looking east
	r := newTestRenderer(t, leveltest.Box(128, roomSpec()), DefaultLimits())
	mustRender(t, r, eastViewer(-64, 0))
	for _, ds := range r.drawSegs.Used() {
		if ds.curLine.V1.X == fixed.FromInt(-128) && ds.curLine.V2.X == fixed.FromInt(-128) {
			t.Error("west wall was drawn")
		}
	}
}
