// Command map_viewer draws the levels of a WAD from above, the way the
// automap shows them.
package main

import (
	"context"
	"fmt"
	"image/color"
	"log"
	"os"
	"path/filepath"
	"sort"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"bsprender/internal/config"
	"bsprender/internal/fixed"
	"bsprender/internal/level"
	"bsprender/internal/wad"
)

const (
	windowWidth  = 1200
	windowHeight = 800
	sidebarWidth = 300
)

type mapInfo struct {
	Key  string
	Data *wad.Map
	Err  error
}

type viewer struct {
	archive    *wad.WAD
	maps       []mapInfo
	mapIndex   int
	sidebarTab int
	lastErr    string
}

const (
	tabInfo = iota
	tabThings
)

var (
	colorSolid    = color.RGBA{230, 60, 60, 255}
	colorFloor    = color.RGBA{190, 130, 70, 255}
	colorCeiling  = color.RGBA{230, 220, 90, 255}
	colorTwoSided = color.RGBA{110, 110, 120, 255}
	colorThing    = color.RGBA{80, 220, 80, 255}
	colorStart    = color.RGBA{50, 200, 255, 255}
)

func main() {
	ensureRuntimeCWD()

	cfg := config.MustLoadConfig("config.yaml")

	archive, err := wad.Open(cfg.Assets.WAD)
	if err != nil {
		log.Fatal(err)
	}
	defer archive.Close()
	if _, err := archive.LoadAssets(context.Background()); err != nil {
		log.Fatal(err)
	}

	v := &viewer{
		archive:    archive,
		maps:       loadMaps(archive),
		sidebarTab: tabInfo,
	}
	if len(v.maps) == 0 {
		v.lastErr = "no maps in " + cfg.Assets.WAD
	}
	for i, m := range v.maps {
		if m.Key == cfg.Assets.Map {
			v.mapIndex = i
		}
	}

	ebiten.SetWindowSize(windowWidth, windowHeight)
	ebiten.SetWindowTitle("BSP Renderer Map Viewer")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	if err := ebiten.RunGame(v); err != nil {
		log.Fatal(err)
	}
}

func (v *viewer) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyTab) {
		if v.sidebarTab == tabInfo {
			v.sidebarTab = tabThings
		} else {
			v.sidebarTab = tabInfo
		}
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyRight) || inpututil.IsKeyJustPressed(ebiten.KeyD) {
		if len(v.maps) > 0 {
			v.mapIndex = (v.mapIndex + 1) % len(v.maps)
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyLeft) || inpututil.IsKeyJustPressed(ebiten.KeyA) {
		if len(v.maps) > 0 {
			v.mapIndex--
			if v.mapIndex < 0 {
				v.mapIndex = len(v.maps) - 1
			}
		}
	}
	return nil
}

func (v *viewer) Draw(screen *ebiten.Image) {
	screen.Fill(color.RGBA{15, 15, 22, 255})

	if len(v.maps) == 0 {
		ebitenutil.DebugPrintAt(screen, v.lastErr, 16, 16)
		return
	}

	m := v.maps[v.mapIndex]
	if m.Err != nil {
		ebitenutil.DebugPrintAt(screen, fmt.Sprintf("map %s failed to load: %v", m.Key, m.Err), 16, 16)
		return
	}

	screenW, screenH := screen.Bounds().Dx(), screen.Bounds().Dy()

	padding := 16
	mapAreaW := screenW - sidebarWidth - padding*3
	mapAreaH := screenH - padding*2
	mapAreaX := padding
	mapAreaY := padding
	sidebarX := mapAreaX + mapAreaW + padding

	drawMapPanel(screen, m, mapAreaX, mapAreaY, mapAreaW, mapAreaH)
	drawSidebar(screen, m, sidebarX, padding, sidebarWidth, mapAreaH, v.sidebarTab)
}

func (v *viewer) Layout(_, _ int) (int, int) {
	return windowWidth, windowHeight
}

// transform maps level coordinates into a panel, y up.
type transform struct {
	minX, maxY float64
	scale      float64
	originX    float64
	originY    float64
}

// fitTransform scales the vertex bounds into a w x h panel at (x, y),
// keeping the aspect ratio and centering the level.
func fitTransform(verts []level.Vertex, x, y, w, h int) transform {
	if len(verts) == 0 {
		return transform{scale: 1, originX: float64(x), originY: float64(y)}
	}
	minX, maxX := verts[0].X.Float(), verts[0].X.Float()
	minY, maxY := verts[0].Y.Float(), verts[0].Y.Float()
	for _, vt := range verts[1:] {
		minX = min(minX, vt.X.Float())
		maxX = max(maxX, vt.X.Float())
		minY = min(minY, vt.Y.Float())
		maxY = max(maxY, vt.Y.Float())
	}
	spanX := max(maxX-minX, 1)
	spanY := max(maxY-minY, 1)
	scale := min(float64(w)/spanX, float64(h)/spanY)
	return transform{
		minX:    minX,
		maxY:    maxY,
		scale:   scale,
		originX: float64(x) + (float64(w)-spanX*scale)/2,
		originY: float64(y) + (float64(h)-spanY*scale)/2,
	}
}

func (t transform) point(px, py fixed.Fixed) (float32, float32) {
	return float32(t.originX + (px.Float()-t.minX)*t.scale),
		float32(t.originY + (t.maxY-py.Float())*t.scale)
}

// lineColor follows the automap: solid walls, floor steps, ceiling steps
// and plain two-sided lines.
func lineColor(ln *level.Line) color.RGBA {
	switch {
	case ln.BackSector == nil:
		return colorSolid
	case ln.BackSector.FloorHeight != ln.FrontSector.FloorHeight:
		return colorFloor
	case ln.BackSector.CeilingHeight != ln.FrontSector.CeilingHeight:
		return colorCeiling
	default:
		return colorTwoSided
	}
}

func drawMapPanel(screen *ebiten.Image, m mapInfo, x, y, w, h int) {
	drawFilledRect(screen, x, y, w, h, color.RGBA{20, 20, 35, 255})
	drawRectBorder(screen, x, y, w, h, 2, color.RGBA{70, 70, 90, 255})

	inset := 24
	t := fitTransform(m.Data.Vertices, x+inset, y+inset+24, w-inset*2, h-inset*2-24)

	for i := range m.Data.Lines {
		ln := &m.Data.Lines[i]
		if ln.Flags&level.LineDontDraw != 0 {
			continue
		}
		x1, y1 := t.point(ln.V1.X, ln.V1.Y)
		x2, y2 := t.point(ln.V2.X, ln.V2.Y)
		vector.StrokeLine(screen, x1, y1, x2, y2, 1, lineColor(ln), false)
	}

	for _, th := range m.Data.Things {
		tx, ty := t.point(th.X, th.Y)
		vector.DrawFilledCircle(screen, tx, ty, 2, colorThing, false)
	}

	if m.Data.HasStart {
		sx, sy := t.point(m.Data.Start.X, m.Data.Start.Y)
		vector.StrokeCircle(screen, sx, sy, 5, 2, colorStart, false)
		a := m.Data.Start.Angle
		ex, ey := t.point(m.Data.Start.X+fixed.Mul(fixed.FromInt(64), a.Cos()), m.Data.Start.Y+fixed.Mul(fixed.FromInt(64), a.Sin()))
		vector.StrokeLine(screen, sx, sy, ex, ey, 2, colorStart, false)
	}

	ebitenutil.DebugPrintAt(screen, m.Key, x+12, y+8)
	ebitenutil.DebugPrintAt(screen, "Left/Right (or A/D) to switch maps, Tab for things, Esc to quit", x+12, y+24)
}

func drawSidebar(screen *ebiten.Image, m mapInfo, x, y, w, h int, tab int) {
	drawFilledRect(screen, x, y, w, h, color.RGBA{18, 18, 26, 255})
	drawRectBorder(screen, x, y, w, h, 2, color.RGBA{70, 70, 90, 255})

	row := y + 12
	var lines []string
	if tab == tabThings {
		lines = thingLines(m.Data)
	} else {
		l := m.Data.Level
		lines = []string{
			fmt.Sprintf("Vertices: %d", len(l.Vertices)),
			fmt.Sprintf("Lines: %d", len(l.Lines)),
			fmt.Sprintf("Sectors: %d", len(l.Sectors)),
			fmt.Sprintf("Segs: %d", len(l.Segs)),
			fmt.Sprintf("Subsectors: %d", len(l.SubSectors)),
			fmt.Sprintf("Nodes: %d", len(l.Nodes)),
			fmt.Sprintf("Things: %d", len(l.Things)),
			"",
			"Red: walls  Brown: floor steps",
			"Yellow: ceiling steps",
			"Green: things  Cyan: start",
		}
	}
	for _, line := range lines {
		if row > y+h-16 {
			break
		}
		ebitenutil.DebugPrintAt(screen, line, x+12, row)
		row += 16
	}
}

// thingLines counts things per thing type, most common first.
func thingLines(m *wad.Map) []string {
	counts := make(map[int]int)
	for _, th := range m.Things {
		counts[th.Type]++
	}
	types := make([]int, 0, len(counts))
	for typ := range counts {
		types = append(types, typ)
	}
	sort.Slice(types, func(i, j int) bool {
		if counts[types[i]] != counts[types[j]] {
			return counts[types[i]] > counts[types[j]]
		}
		return types[i] < types[j]
	})
	lines := make([]string, 0, len(types))
	for _, typ := range types {
		lines = append(lines, fmt.Sprintf("type %5d: %d", typ, counts[typ]))
	}
	return lines
}

func loadMaps(archive *wad.WAD) []mapInfo {
	var maps []mapInfo
	for _, name := range archive.LevelNames() {
		m, err := archive.ReadLevel(name)
		if err != nil {
			log.Printf("Warning: %v", err)
		}
		maps = append(maps, mapInfo{Key: name, Data: m, Err: err})
	}
	return maps
}

func drawFilledRect(screen *ebiten.Image, x, y, w, h int, clr color.RGBA) {
	vector.DrawFilledRect(screen, float32(x), float32(y), float32(w), float32(h), clr, false)
}

func drawRectBorder(screen *ebiten.Image, x, y, w, h, thickness int, clr color.RGBA) {
	t := float32(thickness)
	fx := float32(x)
	fy := float32(y)
	fw := float32(w)
	fh := float32(h)
	vector.DrawFilledRect(screen, fx, fy, fw, t, clr, false)
	vector.DrawFilledRect(screen, fx, fy+fh-t, fw, t, clr, false)
	vector.DrawFilledRect(screen, fx, fy, t, fh, clr, false)
	vector.DrawFilledRect(screen, fx+fw-t, fy, t, fh, clr, false)
}

func ensureRuntimeCWD() {
	if _, err := os.Stat("config.yaml"); err == nil {
		return
	}
	exe, err := os.Executable()
	if err != nil {
		return
	}
	execDir := filepath.Dir(exe)
	_ = os.Chdir(execDir)
}
