package level_test

import (
	"testing"

	"bsprender/internal/fixed"
	"bsprender/internal/level"
	"bsprender/internal/level/leveltest"
)

func TestPointOnSide(t *testing.T) {
	// partition along +y through the origin: east is front
	n := &level.Node{Dx: 0, Dy: fixed.FromInt(10)}
	diag := &level.Node{Dx: fixed.FromInt(10), Dy: fixed.FromInt(10)}
	tests := []struct {
		name string
		node *level.Node
		x, y int
		want int
	}{
		{"vertical east", n, 5, 0, 0},
		{"vertical west", n, -5, 0, 1},
		{"vertical on line", n, 0, 3, 1},
		{"diagonal right", diag, 10, 0, 0},
		{"diagonal left", diag, 0, 10, 1},
		{"diagonal far right", diag, 100, -50, 0},
		{"diagonal far left", diag, -100, 50, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.node.PointOnSide(fixed.FromInt(tt.x), fixed.FromInt(tt.y))
			if got != tt.want {
				t.Errorf("PointOnSide(%d, %d) = %d, want %d", tt.x, tt.y, got, tt.want)
			}
		})
	}
}

func TestPointInSubsector(t *testing.T) {
	spec := leveltest.SectorSpec{Floor: 0, Ceiling: 128, Light: 160}
	l := leveltest.TwoRooms(256, 256, spec, spec, leveltest.Tex{})
	if err := l.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	west := l.PointInSubsector(fixed.FromInt(-100), 0)
	east := l.PointInSubsector(fixed.FromInt(100), 0)
	if west.Sector != &l.Sectors[0] {
		t.Error("west point not in west sector")
	}
	if east.Sector != &l.Sectors[1] {
		t.Error("east point not in east sector")
	}
}

func TestLinkThing(t *testing.T) {
	spec := leveltest.SectorSpec{Floor: 0, Ceiling: 128, Light: 160}
	l := leveltest.TwoRooms(256, 256, spec, spec, leveltest.Tex{})
	th := &level.Thing{X: fixed.FromInt(50)}
	l.LinkThing(th)
	if len(l.Sectors[1].Things) != 1 {
		t.Fatalf("east sector has %d things, want 1", len(l.Sectors[1].Things))
	}
	th.X = fixed.FromInt(-50)
	l.LinkThing(th)
	if len(l.Sectors[1].Things) != 0 || len(l.Sectors[0].Things) != 1 {
		t.Error("thing was not moved between sectors")
	}
}

func TestValidateRejectsBadChild(t *testing.T) {
	l := leveltest.Box(128, leveltest.SectorSpec{Ceiling: 128})
	l.Nodes = append(l.Nodes, level.Node{Children: [2]level.Child{level.SubSectorChild(7), level.SubSectorChild(0)}})
	if err := l.Validate(); err == nil {
		t.Error("expected error for subsector out of range")
	}
}
