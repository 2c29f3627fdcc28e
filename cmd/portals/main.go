// portals - walk through portals in your terminal.
//
// Controls:
//
//	W/S         - Walk forward/back
//	A/D         - Strafe left/right
//	Left/Right  - Turn
//	Up/Down     - Look up/down
//	Mouse drag  - Look around
//	Space       - Jump
//	P           - Switch painting pairs between painting and portal mode
//	G           - Toggle gizmos (portal frames, trigger boxes, volumes)
//	R           - Reload the scene
//	?           - Toggle HUD overlay
//	Esc/Q       - Quit
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	uv "github.com/charmbracelet/ultraviolet"

	"github.com/taigrr/portals/pkg/portal"
	"github.com/taigrr/portals/pkg/render"
	"github.com/taigrr/portals/pkg/scene"
)

var (
	scenePath = flag.String("scene", "", "Scene file (TOML); the built-in demo when empty")
	targetFPS = flag.Int("fps", 30, "Target FPS")
	bgColor   = flag.String("bg", "", "Background color override (R,G,B)")
	logPath   = flag.String("log", "", "Write logs to this file")
	debug     = flag.Bool("debug", false, "Log teleports and trigger events")
	watch     = flag.Bool("watch", false, "Reload the scene when its file changes")
	snapshot  = flag.String("snapshot", "", "Render one frame to this PNG file and exit")
	size      = flag.String("size", "320x180", "Snapshot size (WxH)")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "portals - seamless portals in the terminal\n\n")
		fmt.Fprintf(os.Stderr, "Usage: portals [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nControls:\n")
		fmt.Fprintf(os.Stderr, "  W/S/A/D     - Walk and strafe\n")
		fmt.Fprintf(os.Stderr, "  Arrows      - Turn and look\n")
		fmt.Fprintf(os.Stderr, "  Mouse drag  - Look around\n")
		fmt.Fprintf(os.Stderr, "  Space       - Jump\n")
		fmt.Fprintf(os.Stderr, "  P           - Toggle painting/portal mode\n")
		fmt.Fprintf(os.Stderr, "  G           - Toggle gizmos\n")
		fmt.Fprintf(os.Stderr, "  R           - Reload scene\n")
		fmt.Fprintf(os.Stderr, "  ?           - Toggle HUD overlay\n")
		fmt.Fprintf(os.Stderr, "  Esc/Q       - Quit\n")
	}
	flag.Parse()

	closeLog, err := setupLogging(*logPath, *debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if *snapshot != "" {
		err = runSnapshot(*snapshot)
	} else {
		err = run()
	}
	closeLog()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// setupLogging routes portal logs to path. Without a path nothing is
// logged; the terminal belongs to the renderer.
func setupLogging(path string, debug bool) (func(), error) {
	if path == "" {
		return func() {}, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log: %w", err)
	}
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	portal.SetLogger(slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: level})))
	return func() {
		portal.SetLogger(nil)
		f.Close()
	}, nil
}

// loadWorld builds the scene from -scene, or the built-in one.
func loadWorld() (*scene.World, error) {
	cfg := scene.DefaultConfig()
	if *scenePath != "" {
		var err error
		if cfg, err = scene.Load(*scenePath); err != nil {
			return nil, err
		}
	}
	if *bgColor != "" {
		var r, g, b uint8
		if _, err := fmt.Sscanf(*bgColor, "%d,%d,%d", &r, &g, &b); err != nil {
			return nil, fmt.Errorf("parse -bg %q: %w", *bgColor, err)
		}
		cfg.Background = scene.Colour{r, g, b}
	}

	w, err := scene.Build(cfg)
	if err != nil {
		return nil, fmt.Errorf("build scene: %w", err)
	}
	if w.InitErr != nil {
		portal.Logger().Warn("scene has inert surfaces", "err", w.InitErr)
	}
	return w, nil
}

func sceneTitle() string {
	if *scenePath == "" {
		return "demo"
	}
	return filepath.Base(*scenePath)
}

func runSnapshot(path string) error {
	var width, height int
	if _, err := fmt.Sscanf(*size, "%dx%d", &width, &height); err != nil || width <= 0 || height <= 0 {
		return fmt.Errorf("invalid -size %q", *size)
	}
	w, err := loadWorld()
	if err != nil {
		return err
	}
	w.Resize(width, height)
	w.Step(0, scene.Input{})

	fb := render.NewFramebuffer(width, height)
	w.Draw(fb)
	if err := fb.SavePNG(path); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

func run() error {
	world, err := loadWorld()
	if err != nil {
		return err
	}

	term := uv.DefaultTerminal()

	width, height, err := term.GetSize()
	if err != nil {
		return fmt.Errorf("get terminal size: %w", err)
	}

	if err := term.Start(); err != nil {
		return fmt.Errorf("start terminal: %w", err)
	}

	term.EnterAltScreen()
	term.HideCursor()
	term.Resize(width, height)

	fmt.Fprint(os.Stdout, "\x1b[?1003h") // Enable any-event mouse tracking
	fmt.Fprint(os.Stdout, "\x1b[?1006h") // Enable SGR extended mouse mode

	fbWidth, fbHeight := render.CellSize(width, height)
	fb := render.NewFramebuffer(fbWidth, fbHeight)
	world.Resize(fbWidth, fbHeight)

	controls := NewControls(*targetFPS)
	hud := NewHUD(sceneTitle())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	reload := make(chan struct{}, 1)
	if *watch && *scenePath != "" {
		if err := watchScene(ctx, *scenePath, reload); err != nil {
			hud.Flash(err.Error())
		}
	}

	rebuild := func() {
		w, err := loadWorld()
		if err != nil {
			portal.Logger().Warn("reload scene", "err", err)
			hud.Flash("reload failed: " + err.Error())
			return
		}
		w.Renderer.Gizmos = world.Renderer.Gizmos
		w.Resize(fbWidth, fbHeight)
		world = w
		controls = NewControls(*targetFPS)
		hud.Flash("scene reloaded")
	}

	handle := func(ev uv.Event) {
		switch ev := ev.(type) {
		case uv.WindowSizeEvent:
			width, height = ev.Width, ev.Height
			term.Erase()
			term.Resize(width, height)
			fbWidth, fbHeight = render.CellSize(width, height)
			fb = render.NewFramebuffer(fbWidth, fbHeight)
			world.Resize(fbWidth, fbHeight)

		case uv.KeyPressEvent:
			switch {
			case ev.MatchString("escape", "q", "ctrl+c"):
				cancel()
			case ev.MatchString("w"):
				controls.Move(1, 0)
			case ev.MatchString("s"):
				controls.Move(-1, 0)
			case ev.MatchString("a"):
				controls.Move(0, -1)
			case ev.MatchString("d"):
				controls.Move(0, 1)
			case ev.MatchString("left"):
				controls.Turn(turnStep, 0)
			case ev.MatchString("right"):
				controls.Turn(-turnStep, 0)
			case ev.MatchString("up"):
				controls.Turn(0, turnStep)
			case ev.MatchString("down"):
				controls.Turn(0, -turnStep)
			case ev.MatchString("space"):
				controls.Jump()
			case ev.MatchString("p"):
				togglePairs(world.Pairs)
			case ev.MatchString("g"):
				world.Renderer.Gizmos = !world.Renderer.Gizmos
			case ev.MatchString("r"):
				rebuild()
			case ev.MatchString("?"), ev.MatchString("shift+/"):
				hud.Show = !hud.Show
			}

		case uv.KeyReleaseEvent:
			switch {
			case ev.MatchString("w"), ev.MatchString("s"):
				controls.Stop(true, false)
			case ev.MatchString("a"), ev.MatchString("d"):
				controls.Stop(false, true)
			}

		case uv.MouseClickEvent:
			controls.Press(ev.X, ev.Y)

		case uv.MouseReleaseEvent:
			controls.Release()

		case uv.MouseMotionEvent:
			controls.Drag(ev.X, ev.Y)
		}
	}

	targetDuration := time.Second / time.Duration(*targetFPS)
	lastFrame := time.Now()

	cleanup := func() {
		fmt.Fprint(os.Stdout, "\x1b[?1003l")
		fmt.Fprint(os.Stdout, "\x1b[?1006l")
		term.ExitAltScreen()
		term.ShowCursor()
		term.Shutdown(context.Background())
	}

	events := term.Events()
	for {
	drain:
		for {
			select {
			case ev, ok := <-events:
				if !ok {
					cancel()
					break drain
				}
				handle(ev)
			case <-reload:
				rebuild()
			default:
				break drain
			}
		}

		select {
		case <-ctx.Done():
			cleanup()
			return nil
		default:
		}

		now := time.Now()
		dt := now.Sub(lastFrame).Seconds()
		lastFrame = now

		if dt > 0.1 {
			dt = 0.1
		}

		world.Step(dt, controls.Input(world.Player))
		world.Draw(fb)

		term.Draw(fb)
		if err := term.Display(); err != nil {
			cleanup()
			return fmt.Errorf("display: %w", err)
		}

		hud.UpdateFPS()
		hud.Render(width, height, world)

		elapsed := time.Since(now)
		if elapsed < targetDuration {
			time.Sleep(targetDuration - elapsed)
		}
	}
}

// togglePairs switches every pair to the other mode. Back in painting mode
// walking up to a painting starts the transition again.
func togglePairs(pairs []*portal.Pair) {
	for _, p := range pairs {
		if p.Mode() == portal.ModePainting {
			p.SetMode(portal.ModePortal)
		} else {
			p.SetMode(portal.ModePainting)
		}
	}
}
