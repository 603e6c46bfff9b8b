// Command demohost runs the demo platformer with the instrumentation core
// installed on it. Telemetry, the status slot and the input resources live
// under -root.
package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/hajimehoshi/ebiten/v2"
	"go.uber.org/zap"

	"github.com/younwookim/tickhook/internal/application/core"
	"github.com/younwookim/tickhook/internal/application/demo"
	"github.com/younwookim/tickhook/internal/application/game"
	"github.com/younwookim/tickhook/internal/application/replay"
	"github.com/younwookim/tickhook/internal/application/scene/playing"
	"github.com/younwookim/tickhook/internal/application/state"
	"github.com/younwookim/tickhook/internal/infrastructure/config"
	"github.com/younwookim/tickhook/internal/infrastructure/logging"
	"github.com/younwookim/tickhook/internal/infrastructure/storage"
)

const (
	screenW = 480
	screenH = 270
)

func main() {
	root := flag.String("root", "hooks", "Directory for telemetry, status and input resources")
	configDir := flag.String("config", "", "Directory with core.json/layout.json overrides (embedded defaults when empty)")
	scale := flag.Int("scale", 2, "Window scale")
	theme := flag.Uint("theme", 0, "Course theme stamped into saved courses")
	style := flag.String("style", "0x334D", "Course game style stamped into saved courses")
	flag.Parse()

	cfg, err := loadConfig(*configDir)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.New(logging.Options{Level: cfg.Core.Logging.Level, Format: cfg.Core.Logging.Format})
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()
	logging.SetLogger(logger)

	gameStyle, err := config.ParseUint(*style)
	if err != nil {
		log.Fatalf("Invalid -style: %v", err)
	}

	fsys, err := storage.NewDir(*root)
	if err != nil {
		log.Fatalf("Failed to open root: %v", err)
	}

	host, err := demo.New(demo.Options{Layout: cfg.Layout, Theme: uint8(*theme), Style: uint16(gameStyle)})
	if err != nil {
		log.Fatalf("Failed to start host: %v", err)
	}

	c, err := core.New(cfg, core.Deps{FS: fsys, Space: host.Space()})
	if err != nil {
		log.Fatalf("Failed to build core: %v", err)
	}
	if err := c.Install(host.Symbols()); err != nil {
		logger.Warn("some hooks not installed, running without them", zap.Error(err))
	}
	logger.Info("demo host ready",
		zap.String("root", fsys.Root()),
		zap.String("input", c.Engine.Source().String()))

	scn := playing.New(host, playing.Options{
		Overlay: func() string { return overlay(c) },
		OnExit: func() {
			if err := c.Close(); err != nil {
				logger.Warn("core close failed", zap.Error(err))
			}
		},
		ScreenW: screenW,
		ScreenH: screenH,
	})

	ebiten.SetWindowSize(screenW*(*scale), screenH*(*scale))
	ebiten.SetWindowTitle("tickhook demo host")
	ebiten.SetTPS(60)

	if err := ebiten.RunGame(game.New(scn, screenW, screenH)); err != nil {
		log.Fatal(err)
	}
}

func loadConfig(dir string) (*config.Config, error) {
	if dir == "" {
		return config.Default()
	}
	return config.NewLoader(dir).LoadAll()
}

// overlay summarises the core's view of the host
func overlay(c *core.Core) string {
	s := c.Emitter.Last()
	src := c.Engine.Source().String()
	if !c.Engine.Overriding() {
		src += " (idle)"
	}
	return fmt.Sprintf("core: tick %d mode %s polls %d phase %d | input %s last %s",
		s.Tick, state.Mode(s.Mode), s.PollCount, s.Phase, src,
		replay.FormatButtons(c.Engine.LastInput().Buttons))
}
