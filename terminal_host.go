// terminal_host.go - Interactive terminal front end for the Machine Monitor

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
	"bufio"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"
)

const monitorPrompt = "(sdb) "

// TerminalHost drives the monitor from a terminal. On a real TTY it uses
// raw mode with x/term line editing and history; otherwise it reads plain
// lines, which keeps pipes and scripted input working.
type TerminalHost struct {
	mon *MachineMonitor
	in  *os.File
	out io.Writer

	fd           int
	oldTermState *term.State
}

// NewTerminalHost creates a host bound to stdin/stdout.
func NewTerminalHost(mon *MachineMonitor) *TerminalHost {
	return &TerminalHost{mon: mon, in: os.Stdin, out: os.Stdout}
}

// Run reads commands until q, EOF, or an input error.
func (h *TerminalHost) Run() error {
	h.fd = int(h.in.Fd())
	if !term.IsTerminal(h.fd) {
		return h.runPlain()
	}

	// Put terminal in raw mode; term.Terminal does echo and editing itself.
	oldState, err := term.MakeRaw(h.fd)
	if err != nil {
		fmt.Fprintf(os.Stderr, "terminal_host: failed to set raw mode: %v\n", err)
		return h.runPlain()
	}
	h.oldTermState = oldState
	defer h.restore()

	t := term.NewTerminal(struct {
		io.Reader
		io.Writer
	}{h.in, h.out}, monitorPrompt)
	if w, hgt, err := term.GetSize(h.fd); err == nil {
		_ = t.SetSize(w, hgt)
	}

	h.mon.AttachOutput(func(line OutputLine) {
		fmt.Fprintf(t, "%s%s%s\n", escapeFor(t.Escape, line.Color), line.Text, t.Escape.Reset)
	})
	defer h.mon.SetOutputCallback(nil)

	for {
		line, err := t.ReadLine()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if h.mon.ExecuteCommand(line) {
			return nil
		}
	}
}

func (h *TerminalHost) runPlain() error {
	h.mon.AttachOutput(func(line OutputLine) {
		fmt.Fprintln(h.out, line.Text)
	})
	defer h.mon.SetOutputCallback(nil)

	sc := bufio.NewScanner(h.in)
	for {
		fmt.Fprint(h.out, monitorPrompt)
		if !sc.Scan() {
			fmt.Fprintln(h.out)
			return sc.Err()
		}
		if h.mon.ExecuteCommand(sc.Text()) {
			return nil
		}
	}
}

// restore puts the terminal back the way Run found it.
func (h *TerminalHost) restore() {
	if h.oldTermState != nil {
		_ = term.Restore(h.fd, h.oldTermState)
		h.oldTermState = nil
	}
}

// escapeFor maps a packed scrollback color to the nearest VT100 color.
func escapeFor(e *term.EscapeCodes, color uint32) []byte {
	switch color {
	case colorRed:
		return e.Red
	case colorGreen:
		return e.Green
	case colorYellow:
		return e.Yellow
	case colorCyan:
		return e.Cyan
	case colorDim:
		return e.Blue
	}
	return e.White
}
