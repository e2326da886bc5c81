//go:build !headless

// debug_overlay.go - Monitor window rendering and input for Ebiten

/*
 ██▓ ███▄    █ ▄▄▄█████▓ █    ██  ██▓▄▄▄█████▓ ██▓ ▒█████   ███▄    █    ▓█████  ███▄    █   ▄████  ██▓ ███▄    █ ▓█████
▓██▒ ██ ▀█   █ ▓  ██▒ ▓▒ ██  ▓██▒▓██▒▓  ██▒ ▓▒▓██▒▒██▒  ██▒ ██ ▀█   █    ▓█   ▀  ██ ▀█   █  ██▒ ▀█▒▓██▒ ██ ▀█   █ ▓█   ▀
▒██▒▓██  ▀█ ██▒▒ ▓██░ ▒░▓██  ▒██░▒██▒▒ ▓██░ ▒░▒██▒▒██░  ██▒▓██  ▀█ ██▒   ▒███   ▓██  ▀█ ██▒▒██░▄▄▄░▒██▒▓██  ▀█ ██▒▒███
░██░▓██▒  ▐▌██▒░ ▓██▓ ░ ▓▓█  ░██░░██░░ ▓██▓ ░ ░██░▒██   ██░▓██▒  ▐▌██▒   ▒▓█  ▄ ▓██▒  ▐▌██▒░▓█  ██▓░██░▓██▒  ▐▌██▒▒▓█  ▄
░██░▒██░   ▓██░  ▒██▒ ░ ▒▒█████▓ ░██░  ▒██▒ ░ ░██░░ ████▓▒░▒██░   ▓██░   ░▒████▒▒██░   ▓██░░▒▓███▀▒░██░▒██░   ▓██░░▒████▒
░▓  ░ ▒░   ▒ ▒   ▒ ░░   ░▒▓▒ ▒ ▒ ░▓    ▒ ░░   ░▓  ░ ▒░▒░▒░ ░ ▒░   ▒ ▒    ░░ ▒░ ░░ ▒░   ▒ ▒  ░▒   ▒ ░▓  ░ ▒░   ▒ ▒ ░░ ▒░ ░
 ▒ ░░ ░░   ░ ▒░    ░    ░░▒░ ░ ░  ▒ ░    ░     ▒ ░  ░ ▒ ▒░ ░ ░░   ░ ▒░    ░ ░  ░░ ░░   ░ ▒░  ░   ░  ▒ ░░ ░░   ░ ▒░ ░ ░  ░
 ▒ ░   ░   ░ ░   ░       ░░░ ░ ░  ▒ ░  ░       ▒ ░░ ░ ░ ▒     ░   ░ ░       ░      ░   ░ ░ ░ ░   ░  ▒ ░   ░   ░ ░    ░
 ░           ░             ░      ░            ░      ░ ░           ░       ░  ░         ░       ░  ░           ░    ░  ░

(c) 2024 - 2026 Zayn Otley
https://github.com/IntuitionAmiga/IntuitionEngine
License: GPLv3 or later
*/

package main

import (
	"fmt"
	"image/color"
	"strings"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text"
	"golang.design/x/clipboard"
	"golang.org/x/image/font/basicfont"
)

const (
	overlayWidth  = 960
	overlayHeight = 540
	glyphW        = 7
	lineH         = 14
	panelCols     = 34 // watch panel width in glyphs
	overlayRows   = overlayHeight / lineH
	outputCols    = (overlayWidth - panelCols*glyphW) / glyphW
)

var overlayBackground = color.RGBA{R: 0x00, G: 0x55, B: 0xAA, A: 0xFF}

// MonitorOverlay renders the monitor in its own window: scrollback on the
// left, live watchpoints on the right, input line at the bottom.
type MonitorOverlay struct {
	monitor *MachineMonitor

	clipboardOnce sync.Once
	clipboardOK   bool
}

// NewMonitorOverlay creates the overlay for monitor.
func NewMonitorOverlay(monitor *MachineMonitor) *MonitorOverlay {
	return &MonitorOverlay{monitor: monitor}
}

// RunMonitorWindow opens the monitor window and blocks until it closes.
func RunMonitorWindow(monitor *MachineMonitor) error {
	ebiten.SetWindowSize(overlayWidth, overlayHeight)
	ebiten.SetWindowTitle("Machine Monitor")
	return ebiten.RunGame(NewMonitorOverlay(monitor))
}

func (o *MonitorOverlay) Update() error {
	if o.HandleInput() {
		return ebiten.Termination
	}
	return nil
}

func (o *MonitorOverlay) Layout(_, _ int) (int, int) {
	return overlayWidth, overlayHeight
}

// colorToRGBA converts packed RGBA to color.RGBA.
func colorToRGBA(c uint32) color.RGBA {
	return color.RGBA{R: byte(c >> 24), G: byte(c >> 16), B: byte(c >> 8), A: byte(c)}
}

// drawString renders s at a glyph column/row, clipped to maxCols.
func drawString(screen *ebiten.Image, s string, col, row, maxCols int, c uint32) {
	if len(s) > maxCols {
		s = s[:maxCols]
	}
	text.Draw(screen, s, basicfont.Face7x13, col*glyphW, (row+1)*lineH-3, colorToRGBA(c))
}

// Draw renders the monitor onto the screen.
func (o *MonitorOverlay) Draw(screen *ebiten.Image) {
	m := o.monitor
	screen.Fill(overlayBackground)

	m.mu.Lock()
	header := fmt.Sprintf("MACHINE MONITOR  [%s]  pc=$%08X  %s", m.machine.CPUName(), m.machine.Regs.PC(), m.state)
	lines := m.outputLines
	scroll := m.scrollOffset
	input := string(m.inputLine)
	cursor := m.cursorPos
	drawString(screen, header, 0, 0, outputCols, colorCyan)

	// Output scrollback
	outputStart := 1
	outputEnd := overlayRows - 1 // leave last row for input
	visible := outputEnd - outputStart
	startIdx := max(len(lines)-visible-scroll, 0)
	for row := outputStart; row < outputEnd; row++ {
		idx := startIdx + (row - outputStart)
		if idx < len(lines) {
			drawString(screen, lines[idx].Text, 0, row, outputCols, lines[idx].Color)
		}
	}
	m.mu.Unlock()

	// Input line
	inputRow := overlayRows - 1
	drawString(screen, "> "+input, 0, inputRow, outputCols, colorWhite)
	if cursorCol := 2 + cursor; cursorCol < outputCols {
		drawString(screen, "_", cursorCol, inputRow, 1, colorWhite)
	}

	o.drawWatchPanel(screen)
}

func (o *MonitorOverlay) drawWatchPanel(screen *ebiten.Image) {
	x := float64(outputCols * glyphW)
	ebitenutil.DrawRect(screen, x, 0, 1, overlayHeight, colorToRGBA(colorDim))

	col := outputCols + 1
	pool := o.monitor.watches
	drawString(screen, fmt.Sprintf("WATCH %d/%d", pool.Len(), maxWatchpoints), col, 0, panelCols-1, colorCyan)
	row := 1
	for _, wp := range pool.List() {
		if row+1 >= overlayRows {
			break
		}
		drawString(screen, fmt.Sprintf("%2d %s", wp.ID, wp.Expr), col, row, panelCols-1, colorWhite)
		c := uint32(colorDim)
		if wp.Value != wp.OldValue {
			c = colorGreen
		}
		drawString(screen, fmt.Sprintf("   $%08X <- $%08X", wp.Value, wp.OldValue), col, row+1, panelCols-1, c)
		row += 2
	}
}

// HandleInput processes keyboard input. Returns true when the monitor
// should close.
func (o *MonitorOverlay) HandleInput() bool {
	if inpututil.IsKeyJustPressed(ebiten.KeyF2) {
		o.copyWatchList()
	}
	ctrl := ebiten.IsKeyPressed(ebiten.KeyControl)
	if ctrl && inpututil.IsKeyJustPressed(ebiten.KeyV) {
		o.pasteClipboard()
	}

	m := o.monitor
	m.mu.Lock()
	defer m.mu.Unlock()

	// Escape = exit
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		m.state = MonitorQuit
		return true
	}

	// PgUp/PgDn for scrolling
	if inpututil.IsKeyJustPressed(ebiten.KeyPageUp) {
		m.scrollOffset += 10
		maxScroll := len(m.outputLines) - (overlayRows - 2)
		if m.scrollOffset > maxScroll {
			m.scrollOffset = maxScroll
		}
		if m.scrollOffset < 0 {
			m.scrollOffset = 0
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyPageDown) {
		m.scrollOffset -= 10
		if m.scrollOffset < 0 {
			m.scrollOffset = 0
		}
	}

	// Up/Down for command history
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowUp) {
		if m.historyIdx > 0 {
			m.historyIdx--
			m.inputLine = []byte(m.history[m.historyIdx])
			m.cursorPos = len(m.inputLine)
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowDown) {
		if m.historyIdx < len(m.history)-1 {
			m.historyIdx++
			m.inputLine = []byte(m.history[m.historyIdx])
			m.cursorPos = len(m.inputLine)
		} else {
			m.historyIdx = len(m.history)
			m.inputLine = nil
			m.cursorPos = 0
		}
	}

	// Enter = submit command
	if inpututil.IsKeyJustPressed(ebiten.KeyEnter) {
		input := string(m.inputLine)
		m.appendOutput("> "+input, colorDim)
		m.inputLine = nil
		m.cursorPos = 0
		m.scrollOffset = 0
		return m.executeLocked(input)
	}

	// Backspace
	if inpututil.IsKeyJustPressed(ebiten.KeyBackspace) {
		if m.cursorPos > 0 && len(m.inputLine) > 0 {
			m.inputLine = append(m.inputLine[:m.cursorPos-1], m.inputLine[m.cursorPos:]...)
			m.cursorPos--
		}
	}

	// Left/Right arrows
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowLeft) {
		if m.cursorPos > 0 {
			m.cursorPos--
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowRight) {
		if m.cursorPos < len(m.inputLine) {
			m.cursorPos++
		}
	}

	// Printable character input
	if !ctrl {
		for _, r := range ebiten.AppendInputChars(nil) {
			if r >= 0x20 && r < 0x7F {
				m.insertInputLocked(byte(r))
			}
		}
	}

	return false
}

// insertInputLocked inserts ch at the cursor. Caller holds m.mu.
func (m *MachineMonitor) insertInputLocked(ch byte) {
	if len(m.inputLine) >= outputCols-4 {
		return
	}
	m.inputLine = append(m.inputLine, 0)
	copy(m.inputLine[m.cursorPos+1:], m.inputLine[m.cursorPos:])
	m.inputLine[m.cursorPos] = ch
	m.cursorPos++
}

func (o *MonitorOverlay) initClipboard() bool {
	o.clipboardOnce.Do(func() {
		o.clipboardOK = clipboard.Init() == nil
	})
	return o.clipboardOK
}

// pasteClipboard inserts the first line of the clipboard text at the cursor.
func (o *MonitorOverlay) pasteClipboard() {
	if !o.initClipboard() {
		return
	}
	data := clipboard.Read(clipboard.FmtText)
	if len(data) == 0 {
		return
	}
	line, _, _ := strings.Cut(string(data), "\n")
	line = strings.TrimRight(line, "\r")

	m := o.monitor
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := 0; i < len(line); i++ {
		if line[i] >= 0x20 && line[i] < 0x7F {
			m.insertInputLocked(line[i])
		}
	}
}

// copyWatchList puts the active watchpoints on the clipboard, one per line.
func (o *MonitorOverlay) copyWatchList() {
	if !o.initClipboard() {
		return
	}
	var sb strings.Builder
	for _, wp := range o.monitor.watches.List() {
		fmt.Fprintf(&sb, "%d\t%s\t$%08X\t$%08X\n", wp.ID, wp.Expr, wp.Value, wp.OldValue)
	}
	clipboard.Write(clipboard.FmtText, []byte(sb.String()))
}
