// main.go - Main entry point for the RV32 Machine Monitor

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
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
)

// monitorConfig holds the parsed command line.
type monitorConfig struct {
	image    string
	entry    uint32
	batch    bool
	gui      bool
	beep     bool
	script   string
	maxSteps uint64
	logPath  string
	exprTest string
}

func parseFlags(args []string) (monitorConfig, error) {
	var (
		cfg      monitorConfig
		entryStr string
	)

	flagSet := flag.NewFlagSet(args[0], flag.ContinueOnError)
	flagSet.SetOutput(io.Discard)
	flagSet.StringVar(&cfg.image, "image", "", "raw RV32 image loaded at the start of guest memory")
	flagSet.StringVar(&entryStr, "entry", "", "initial pc (hex or decimal, default memory base)")
	flagSet.BoolVar(&cfg.batch, "batch", false, "run to completion without an interactive prompt")
	flagSet.BoolVar(&cfg.gui, "gui", false, "open the monitor in a window")
	flagSet.BoolVar(&cfg.beep, "beep", false, "beep when a watchpoint fires")
	flagSet.StringVar(&cfg.script, "script", "", "Lua script whose step() runs once per instruction")
	flagSet.Uint64Var(&cfg.maxSteps, "max-steps", 1<<24, "instruction limit for a single continue")
	flagSet.StringVar(&cfg.logPath, "log", "", "copy monitor output to this file")
	flagSet.StringVar(&cfg.exprTest, "exprtest", "", "check '<expected> <expr>' lines from this file and exit")

	flagSet.Usage = func() {
		flagSet.SetOutput(os.Stdout)
		fmt.Println("Usage: ./riscvmon [-image file.bin] [-entry 0x80000000] [-batch|-gui] [-script step.lua] [-beep] [-log trace.txt]")
		fmt.Println("       ./riscvmon -exprtest exprs.txt")
		flagSet.PrintDefaults()
	}

	if err := flagSet.Parse(args[1:]); err != nil {
		return cfg, err
	}
	if flagSet.NArg() > 0 {
		if cfg.image != "" {
			return cfg, fmt.Errorf("unexpected argument %q", flagSet.Arg(0))
		}
		cfg.image = flagSet.Arg(0)
	}
	if cfg.batch && cfg.gui {
		return cfg, fmt.Errorf("-batch and -gui are mutually exclusive")
	}
	if cfg.maxSteps == 0 {
		return cfg, fmt.Errorf("-max-steps must be positive")
	}

	cfg.entry = PMEM_BASE
	if entryStr != "" {
		entry, err := parseUint32Flag(entryStr)
		if err != nil {
			return cfg, fmt.Errorf("invalid -entry: %w", err)
		}
		cfg.entry = entry
	}
	return cfg, nil
}

func main() {
	cfg, err := parseFlags(os.Args)
	if err != nil {
		if err == flag.ErrHelp {
			os.Exit(0)
		}
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	regs := NewRegisters(cfg.entry)
	mem := NewPhysBus()
	machine := NewMachine(regs, mem)

	if cfg.exprTest != "" {
		os.Exit(runExprTest(cfg.exprTest, NewEvaluator(regs, mem)))
	}

	if cfg.image != "" {
		n, err := mem.LoadImage(cfg.image, mem.Base())
		if err != nil {
			fmt.Printf("Error loading image: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Loaded %d bytes from %s at $%08X\n", n, cfg.image, mem.Base())
	}

	if cfg.script != "" {
		hook, err := LoadLuaStepHook(machine, cfg.script)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
		defer hook.Close()
		machine.SetStepHook(hook)
	}

	mon := NewMachineMonitor(machine)
	mon.SetMaxSteps(cfg.maxSteps)

	if cfg.logPath != "" {
		f, err := os.Create(cfg.logPath)
		if err != nil {
			fmt.Printf("Error opening log: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		mon.SetLogWriter(f)
	}

	if cfg.beep {
		beeper := NewAlertBeeper()
		mon.SetWatchHitCallback(func([]WatchpointHit) {
			if err := beeper.Beep(); err != nil {
				fmt.Fprintf(os.Stderr, "alert: %v\n", err)
			}
		})
	}

	switch {
	case cfg.batch:
		mon.SetOutputCallback(func(line OutputLine) {
			fmt.Println(line.Text)
		})
		mon.ExecuteCommand("c")
		if mon.State() != MonitorHalted {
			mon.ExecuteCommand("info r")
		}
	case cfg.gui:
		if err := RunMonitorWindow(mon); err != nil {
			fmt.Fprintf(os.Stderr, "monitor window: %v\n", err)
			os.Exit(1)
		}
	default:
		mon.ExecuteCommand("help")
		if err := NewTerminalHost(mon).Run(); err != nil {
			fmt.Fprintf(os.Stderr, "terminal_host: %v\n", err)
			os.Exit(1)
		}
	}
}

// runExprTest checks an expression file and returns the process exit code.
func runExprTest(path string, ev ExprEvaluator) int {
	f, err := os.Open(path)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return 1
	}
	defer f.Close()

	report, err := RunExprCheck(f, ev)
	for _, line := range report.Failures {
		fmt.Println(line)
	}
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return 1
	}
	fmt.Printf("%d passed, %d failed\n", report.Pass, report.Fail)
	if report.Fail > 0 {
		return 1
	}
	return 0
}

func parseUint32Flag(value string) (uint32, error) {
	parsed, err := strconv.ParseUint(value, 0, 32)
	if err != nil {
		return 0, err
	}
	return uint32(parsed), nil
}
