package render

import (
	"testing"

	"bsprender/internal/fixed"
	"bsprender/internal/level/leveltest"
)

func within(got, want, tol fixed.Fixed) bool {
	return (got - want).Abs() <= tol
}

func TestWallDistanceAndScale(t *testing.T) {
	lvl := leveltest.Box(128, roomSpec())
	r := newTestRenderer(t, lvl, DefaultLimits())
	mustRender(t, r, eastViewer(0, 0))

	east := &lvl.Segs[1]
	hyp, dist := r.wallDistance(east, r.pointToAngle(east.V1.X, east.V1.Y))
	// corner at (128, 128)
	if !within(hyp, 11863283, fixed.FracUnit/4) {
		t.Errorf("hyp = %v, want about 181.02", hyp.Float())
	}
	if !within(dist, fixed.FromInt(128), fixed.FracUnit/2) {
		t.Errorf("dist = %v, want about 128", dist.Float())
	}

	w := wallState{normalAngle: east.Angle + fixed.Ang90, distance: dist}
	center := r.scaleFromGlobalAngle(r.viewAngle+r.view.xToViewAngle[r.view.centerX], &w)
	want := fixed.Div(r.view.projection, fixed.FromInt(128))
	if !within(center, want, want/100) {
		t.Errorf("center scale = %v, want %v", center.Float(), want.Float())
	}
}

func TestScaleFromGlobalAngleClamps(t *testing.T) {
	r := newTestRenderer(t, leveltest.Box(128, roomSpec()), DefaultLimits())
	r.setupFrame(eastViewer(0, 0))

	near := wallState{normalAngle: 0, distance: 1}
	if got := r.scaleFromGlobalAngle(0, &near); got != maxScale {
		t.Errorf("touching wall scale = %d, want %d", got, maxScale)
	}
	// a wall seen almost edge on
	far := wallState{normalAngle: fixed.Ang90 - 1<<fixed.AngleToFineShift, distance: fixed.FromInt(30000)}
	if got := r.scaleFromGlobalAngle(0, &far); got != minScale {
		t.Errorf("distant wall scale = %d, want %d", got, minScale)
	}
}

func TestDrawSegScaleInterpolation(t *testing.T) {
	r := newTestRenderer(t, leveltest.Box(128, roomSpec()), DefaultLimits())
	mustRender(t, r, eastViewer(-64, 32))

	for i, ds := range r.drawSegs.Used() {
		w := wallState{normalAngle: ds.curLine.Angle + fixed.Ang90}
		_, w.distance = r.wallDistance(ds.curLine, r.pointToAngle(ds.curLine.V1.X, ds.curLine.V1.Y))
		if got := r.scaleFromGlobalAngle(r.viewAngle+r.view.xToViewAngle[ds.x1], &w); got != ds.scale1 {
			t.Errorf("drawseg %d: scale1 = %d, recomputed %d", i, ds.scale1, got)
		}
		if got := r.scaleFromGlobalAngle(r.viewAngle+r.view.xToViewAngle[ds.x2], &w); got != ds.scale2 {
			t.Errorf("drawseg %d: scale2 = %d, recomputed %d", i, ds.scale2, got)
		}
		// integer stepping drifts by under one unit per column
		n := fixed.Fixed(ds.x2 - ds.x1)
		if end := ds.scale1 + ds.scaleStep*n; !within(end, ds.scale2, n) {
			t.Errorf("drawseg %d: stepped end %d, want %d within %d", i, end, ds.scale2, n)
		}
	}
}

func TestContrast(t *testing.T) {
	lvl := leveltest.Box(128, roomSpec())
	tests := []struct {
		name string
		seg  int
		want int
	}{
		{"north wall runs east-west", 0, -1},
		{"east wall runs north-south", 1, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := contrast(&lvl.Segs[tt.seg]); got != tt.want {
				t.Errorf("contrast = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestMaskedMidTextureDrawsOnce(t *testing.T) {
	lvl := leveltest.TwoRooms(256, 1024, roomSpec(), roomSpec(), leveltest.Tex{Mid: 2})
	r := newTestRenderer(t, lvl, DefaultLimits())
	fb, _ := mustRender(t, r, eastViewer(-128, 0))

	var masked *drawSeg
	for i, ds := range r.drawSegs.Used() {
		if ds.maskedTextureCol.valid() {
			masked = &r.drawSegs.Used()[i]
		}
	}
	if masked == nil {
		t.Fatal("no masked drawseg")
	}
	for x := masked.x1; x <= masked.x2; x++ {
		if c := masked.maskedTextureCol.at(x); c != maskedColumnDone {
			t.Fatalf("column %d left undrawn (%d)", x, c)
		}
	}
	// the 64 unit mid texture hangs from the ceiling
	if got := fb[20*ScreenWidth+160]; got != testUpperColor {
		t.Errorf("masked pixel = %d, want %d", got, testUpperColor)
	}
	if got := fb[100*ScreenWidth+160]; got == testUpperColor {
		t.Error("masked texture drawn below its height")
	}
}
