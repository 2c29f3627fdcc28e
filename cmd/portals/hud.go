package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/taigrr/portals/pkg/portal"
	"github.com/taigrr/portals/pkg/scene"
)

// HUD renders an overlay with the frame rate, the player's state and the
// portal counters.
type HUD struct {
	Show  bool
	title string

	fps       float64
	fpsFrames int
	fpsTime   time.Time
	message   string
	msgUntil  time.Time
}

// NewHUD creates a HUD titled with the scene name.
func NewHUD(title string) *HUD {
	return &HUD{title: title, fpsTime: time.Now()}
}

// UpdateFPS updates the FPS counter (call once per frame).
func (h *HUD) UpdateFPS() {
	h.fpsFrames++
	elapsed := time.Since(h.fpsTime)
	if elapsed >= time.Second {
		h.fps = float64(h.fpsFrames) / elapsed.Seconds()
		h.fpsFrames = 0
		h.fpsTime = time.Now()
	}
}

// Flash shows msg on the bottom row for a few seconds, even with the HUD
// hidden.
func (h *HUD) Flash(msg string) {
	h.message = msg
	h.msgUntil = time.Now().Add(3 * time.Second)
}

// Render draws the HUD directly to the terminal.
func (h *HUD) Render(width, height int, w *scene.World) {
	const (
		reset     = "\x1b[0m"
		bold      = "\x1b[1m"
		bgBlack   = "\x1b[40m"
		fgWhite   = "\x1b[97m"
		fgGreen   = "\x1b[92m"
		fgYellow  = "\x1b[93m"
		fgCyan    = "\x1b[96m"
		clearLine = "\x1b[2K"
	)
	moveTo := func(row, col int) string {
		return fmt.Sprintf("\x1b[%d;%dH", row, col)
	}

	// Always clear the HUD rows so toggling off works.
	fmt.Print(moveTo(1, 1) + clearLine)
	fmt.Print(moveTo(height, 1) + clearLine)

	if time.Now().Before(h.msgUntil) {
		fmt.Print(moveTo(height, 1) + fmt.Sprintf("%s%s%s %s %s", bgBlack, bold, fgYellow, h.message, reset))
		if !h.Show {
			return
		}
	} else if !h.Show {
		return
	}

	fmt.Printf("%s%s%s %.0f FPS %s", moveTo(1, 1), bgBlack, fgGreen, h.fps, reset)

	titleCol := max((width-len(h.title)-2)/2, 1)
	fmt.Print(moveTo(1, titleCol) + fmt.Sprintf("%s%s%s %s %s", bold, bgBlack, fgWhite, h.title, reset))

	st := w.Stats()
	stats := fmt.Sprintf("%d draws %d skips %d cut %d tp", st.Draws, st.VisibilitySkips, st.Truncations, st.Teleports)
	fmt.Print(moveTo(1, max(width-len(stats)-1, 1)) + fmt.Sprintf("%s%s%s %s %s", bgBlack, fgCyan, bold, stats, reset))

	if time.Now().Before(h.msgUntil) {
		return
	}
	pos := w.Player.Pose().Position
	status := fmt.Sprintf("pos %.1f,%.1f,%.1f  scale %.2f  %s",
		pos.X, pos.Y, pos.Z, w.Player.Pose().UniformScale(), pairStatus(w.Pairs))
	if !w.Player.InControl() {
		status += "  [transition]"
	}
	fmt.Print(moveTo(height, 1) + fmt.Sprintf("%s%s %s %s", bgBlack, fgWhite, status, reset))
}

func pairStatus(pairs []*portal.Pair) string {
	parts := make([]string, 0, len(pairs))
	for _, p := range pairs {
		switch p.Stage() {
		case portal.StageRendezvous, portal.StagePush:
			parts = append(parts, fmt.Sprintf("%s/%s %.0f%%", p.Mode(), p.Stage(), p.Progress()*100))
		default:
			parts = append(parts, fmt.Sprintf("%s/%s", p.Mode(), p.Stage()))
		}
	}
	return strings.Join(parts, " ")
}
