package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/hajimehoshi/ebiten/v2"

	"bsprender/internal/config"
	"bsprender/internal/fixed"
	"bsprender/internal/game"
	"bsprender/internal/render"
	"bsprender/internal/wad"
)

// weaponSprite is drawn as the view overlay when the WAD has it.
const weaponSprite = "PISG"

func main() {
	configPath := flag.String("config", "config.yaml", "configuration file")
	shot := flag.String("shot", "", "render one frame from the player start to this PNG file and exit")
	mapName := flag.String("map", "", "level to load, overriding the config")
	wadPath := flag.String("wad", "", "WAD file, overriding the config")
	flag.Parse()

	// Load configuration
	cfg := config.MustLoadConfig(*configPath)
	if *mapName != "" {
		cfg.Assets.Map = *mapName
	}
	if *wadPath != "" {
		cfg.Assets.WAD = *wadPath
	}

	if cfg.Debug.LogFile != "" {
		f, err := os.OpenFile(cfg.Debug.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			log.Fatal(err)
		}
		defer f.Close()
		log.SetOutput(io.MultiWriter(os.Stderr, f))
	}
	wad.SetLogger(log.New(log.Writer(), "[wad] ", log.LstdFlags))
	render.SetLogger(log.New(log.Writer(), "[render] ", log.LstdFlags))

	g, err := newGame(cfg)
	if err != nil {
		log.Fatal(err)
	}

	if *shot != "" {
		if err := g.RenderView(); err != nil {
			log.Fatal(err)
		}
		if err := g.Frame().SavePNG(*shot, cfg.Display.Scale); err != nil {
			log.Fatal(err)
		}
		log.Printf("Saved %s", *shot)
		return
	}

	// Set window properties from config
	ebiten.SetWindowSize(cfg.GetWindowSize())
	ebiten.SetWindowTitle(fmt.Sprintf("%s - %s", cfg.Display.WindowTitle, cfg.Assets.Map))
	if cfg.Display.Resizable {
		ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	}

	// a renderer failure ends the loop with its error
	if err := ebiten.RunGame(g); err != nil {
		log.Fatal(err)
	}
}

func newGame(cfg *config.Config) (*game.BSPGame, error) {
	archive, err := wad.Open(cfg.Assets.WAD)
	if err != nil {
		return nil, err
	}
	defer archive.Close()

	assets, err := archive.LoadAssets(context.Background())
	if err != nil {
		return nil, err
	}
	m, err := archive.ReadLevel(cfg.Assets.Map)
	if err != nil {
		return nil, err
	}
	if sky, ok := archive.SkyTexture(cfg.Assets.Map); ok {
		assets.SkyTexture = sky
	}
	if !m.HasStart {
		log.Printf("Warning: %s has no player start, using the origin", cfg.Assets.Map)
	}

	r, err := render.New(assets, m.Level, cfg.GetLimits(), cfg.GetScreenBlocks(), cfg.GetDetail())
	if err != nil {
		return nil, err
	}

	var weapon []render.PSprite
	if id, ok := archive.SpriteNum(weaponSprite); ok {
		weapon = []render.PSprite{{Sprite: id, SX: fixed.FracUnit, SY: fixed.FromInt(32)}}
	}
	return game.NewBSPGame(cfg, r, m.Start.X, m.Start.Y, m.Start.Angle, weapon), nil
}
