package viewer

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/Garsondee/vr-targets/internal/game"
)

const (
	logLineHeight = 14
	panelRecent   = 3 // how many latest entries to highlight
	maxLineChars  = (logPanelWidth - 16) / 6
)

// drawMessagePanel renders the toast history on the right of the window.
func drawMessagePanel(screen *ebiten.Image, ml *game.MessageLog, panelX, panelH int) {
	vector.FillRect(screen, float32(panelX), 0, logPanelWidth, float32(panelH), color.RGBA{R: 10, G: 12, B: 10, A: 248}, false)
	vector.StrokeLine(screen, float32(panelX), 0, float32(panelX), float32(panelH), 1.0, color.RGBA{R: 50, G: 70, B: 50, A: 255}, false)

	vector.FillRect(screen, float32(panelX), 0, logPanelWidth, 16, color.RGBA{R: 20, G: 30, B: 20, A: 255}, false)
	ebitenutil.DebugPrintAt(screen, "MESSAGES", panelX+8, 2)
	vector.StrokeLine(screen, float32(panelX), 16, float32(panelX+logPanelWidth), 16, 1.0, color.RGBA{R: 50, G: 80, B: 50, A: 200}, false)

	visible := panelLines(ml.Recent(), (panelH-24)/logLineHeight)
	y := 20
	for i, line := range visible {
		if i >= len(visible)-panelRecent {
			vector.FillRect(screen, float32(panelX+2), float32(y), logPanelWidth-4, logLineHeight, color.RGBA{R: 30, G: 40, B: 30, A: 160}, false)
		}
		ebitenutil.DebugPrintAt(screen, line, panelX+8, y)
		y += logLineHeight
	}
}

// panelLines formats the newest entries that fit in maxVisible rows.
func panelLines(entries []game.MessageEntry, maxVisible int) []string {
	if maxVisible <= 0 {
		return nil
	}
	if len(entries) > maxVisible {
		entries = entries[len(entries)-maxVisible:]
	}
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		line := fmt.Sprintf("%5d %s", e.Frame, e.Line())
		if len(line) > maxLineChars {
			line = line[:maxLineChars-1] + "~"
		}
		out = append(out, line)
	}
	return out
}
