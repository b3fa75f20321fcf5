package game

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"bsprender/internal/config"
	"bsprender/internal/fixed"
	"bsprender/internal/level/leveltest"
	"bsprender/internal/render"
)

func testAssets() *render.Assets {
	cm := make([]render.Colormap, render.NumColormaps+2)
	for i := range cm {
		for j := range cm[i] {
			cm[i][j] = byte(j)
		}
	}
	flat := &render.Flat{Name: "FLOOR", Pixels: make([]byte, render.FlatSize*render.FlatSize)}
	return &render.Assets{
		Colormaps: cm,
		Textures: []*render.Texture{
			nil,
			render.SolidTexture("WALL", 64, 128, 10),
			render.SolidTexture("SKY1", 256, 128, 30),
		},
		Flats:      []*render.Flat{nil, flat},
		SkyTexture: 2,
	}
}

func newTestGame(t *testing.T, limits render.Limits) *BSPGame {
	t.Helper()
	lvl := leveltest.Box(256, leveltest.SectorSpec{Floor: 16, Ceiling: 128, FloorPic: 1, CeilingPic: 1, Light: 160})
	r, err := render.New(testAssets(), lvl, limits, render.MaxBlocks, 0)
	if err != nil {
		t.Fatalf("render.New: %v", err)
	}
	cfg := config.Default()
	cfg.Limits = limits
	return NewBSPGame(cfg, r, 0, 0, 0, nil)
}

func TestViewerStandsOnFloor(t *testing.T) {
	g := newTestGame(t, render.DefaultLimits())
	if want := fixed.FromInt(16 + 41); g.Viewer().Z != want {
		t.Errorf("Z = %v, want %v", g.Viewer().Z.Float(), want.Float())
	}
}

func TestTurnAndMove(t *testing.T) {
	tests := []struct {
		name           string
		turn           int
		forward, right int
		wantX, wantY   int
	}{
		{"forward east", 0, 10, 0, 10, 0},
		{"strafe right of east", 0, 0, 10, 0, -10},
		{"forward north", 90, 10, 0, 0, 10},
		{"back from west", 180, -10, 0, 10, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newTestGame(t, render.DefaultLimits())
			g.Turn(tt.turn)
			g.Move(tt.forward, tt.right)
			v := g.Viewer()
			// fine angles quantize the turn, so allow a unit of drift
			if dx := v.X - fixed.FromInt(tt.wantX); dx.Abs() > fixed.FracUnit {
				t.Errorf("X = %v, want %d", v.X.Float(), tt.wantX)
			}
			if dy := v.Y - fixed.FromInt(tt.wantY); dy.Abs() > fixed.FracUnit {
				t.Errorf("Y = %v, want %d", v.Y.Float(), tt.wantY)
			}
		})
	}
}

func TestTurnWrapsAround(t *testing.T) {
	g := newTestGame(t, render.DefaultLimits())
	g.Turn(-90)
	g.Turn(-270)
	perDegree := int32(fixed.Ang45 / 45)
	if d := int32(g.Viewer().Angle); d > perDegree || d < -perDegree {
		t.Errorf("angle after a full turn = %#x", g.Viewer().Angle)
	}
}

func TestRenderViewRecordsStats(t *testing.T) {
	g := newTestGame(t, render.DefaultLimits())
	if err := g.RenderView(); err != nil {
		t.Fatalf("RenderView: %v", err)
	}
	if g.lastStats.DrawSegs == 0 {
		t.Error("no draw-segments recorded")
	}
	if g.Frame().Pixels[100*render.ScreenWidth+160] != 10 {
		t.Error("wall not drawn at the view center")
	}
}

func TestRendererFailureStopsGame(t *testing.T) {
	limits := render.DefaultLimits()
	limits.VisPlanes = 1
	g := newTestGame(t, limits)

	err := g.RenderView()
	var fe *render.FatalError
	if !errors.As(err, &fe) {
		t.Fatalf("RenderView() = %v, want a FatalError", err)
	}
	// the loop returns the failure before touching input
	if got := g.gameLoop.Update(); !errors.Is(got, err) {
		t.Errorf("Update() = %v, want %v", got, err)
	}
}

func TestHUDShowsPeakUsage(t *testing.T) {
	g := newTestGame(t, render.DefaultLimits())
	if err := g.RenderView(); err != nil {
		t.Fatalf("RenderView: %v", err)
	}
	g.monitor.RecordRender(2*time.Millisecond, g.lastStats)

	lines := g.gameLoop.ui.hudLines()
	want := fmt.Sprintf("peak planes %d  drawsegs %d", g.lastStats.VisPlanes, g.lastStats.DrawSegs)
	found := false
	for _, line := range lines {
		if strings.HasPrefix(line, want) {
			found = true
		}
	}
	if !found {
		t.Errorf("HUD lines %q missing %q", lines, want)
	}
	if !strings.Contains(strings.Join(lines, "\n"), "render 2.0ms") {
		t.Errorf("HUD lines %q missing the render time", lines)
	}
}
