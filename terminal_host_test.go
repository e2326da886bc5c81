package main

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"golang.org/x/term"
)

func TestTerminalHostPlainInput(t *testing.T) {
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	if _, err := w.WriteString("w $pc\nsi\np 1+1\nq\np 3\n"); err != nil {
		t.Fatal(err)
	}
	w.Close()

	mon, _ := newTestMonitor()
	var out bytes.Buffer
	host := &TerminalHost{mon: mon, in: r, out: &out}
	if err := host.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}

	got := out.String()
	for _, want := range []string{monitorPrompt, "Watchpoint 1: $pc", "1+1 = $00000002 (2)"} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
	if strings.Contains(got, "3 = $00000003") {
		t.Error("commands after q were executed")
	}
	if mon.State() != MonitorQuit {
		t.Errorf("State() = %v, want quit", mon.State())
	}
}

func TestTerminalHostPlainEOF(t *testing.T) {
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	w.WriteString("p 5")
	w.Close()

	mon, _ := newTestMonitor()
	var out bytes.Buffer
	if err := (&TerminalHost{mon: mon, in: r, out: &out}).Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !strings.Contains(out.String(), "5 = $00000005 (5)") {
		t.Errorf("unterminated last line was not executed:\n%s", out.String())
	}
}

func TestTerminalHostReplaysEarlierOutput(t *testing.T) {
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	w.WriteString("q\n")
	w.Close()

	mon, _ := newTestMonitor()
	mon.ExecuteCommand("help")
	var out bytes.Buffer
	if err := (&TerminalHost{mon: mon, in: r, out: &out}).Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	got := out.String()
	help := strings.Index(got, "Machine Monitor Commands:")
	if help < 0 {
		t.Fatalf("startup help was not shown:\n%s", got)
	}
	if prompt := strings.Index(got, monitorPrompt); prompt < help {
		t.Errorf("prompt printed before the help text:\n%s", got)
	}
}

func TestEscapeForColors(t *testing.T) {
	tm := term.NewTerminal(&bytes.Buffer{}, "")
	e := tm.Escape
	tests := []struct {
		color uint32
		want  []byte
	}{
		{colorRed, e.Red},
		{colorGreen, e.Green},
		{colorYellow, e.Yellow},
		{colorCyan, e.Cyan},
		{colorDim, e.Blue},
		{colorWhite, e.White},
		{0x12345678, e.White},
	}
	for _, tt := range tests {
		if got := escapeFor(e, tt.color); !bytes.Equal(got, tt.want) {
			t.Errorf("escapeFor(%08X) = %q, want %q", tt.color, got, tt.want)
		}
	}
}
