package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/massung/chip-8/chip8"
)

/// Options are the command line settings of the emulator.
///
type Options struct {
	/// Image is the program (or assembly source) to run. May be empty with
	/// the SDL frontend, which then asks for a file.
	///
	Image string

	/// Frontend is "sdl" or "term".
	///
	Frontend string

	/// Speed is the number of instructions executed per second.
	///
	Speed int

	/// TimerRate is how many times per second the timers count down.
	///
	TimerRate int

	Quirks chip8.Quirks
	Seed   int64

	Debug bool
	Quiet bool
	Trace bool
}

/// UsageError is returned by ParseFlags when usage should be shown.
///
type UsageError struct {
	flags *flag.FlagSet
	msg   string
}

func (e *UsageError) Error() string {
	return e.msg
}

/// ShowUsage prints the message and the flag defaults.
///
func (e *UsageError) ShowUsage() {
	if e.msg != "" {
		fmt.Fprintf(os.Stderr, "%s\n\n", e.msg)
	}

	fmt.Fprintf(os.Stderr, "usage: chip-8 [options] [program]\n\n")
	e.flags.PrintDefaults()
}

/// ParseFlags parses the command line arguments into Options.
///
func ParseFlags(args []string) (Options, error) {
	flags := flag.NewFlagSet("chip-8", flag.ContinueOnError)

	opts := Options{}

	flags.StringVar(&opts.Frontend, "frontend", "sdl", "display frontend: sdl or term")
	flags.IntVar(&opts.Speed, "speed", 500, "instructions executed per second")
	flags.IntVar(&opts.TimerRate, "timer", 60, "delay and sound timer rate in Hz")
	flags.BoolVar(&opts.Quirks.ShiftVY, "shift-vy", false, "SHR/SHL shift VY into VX")
	flags.BoolVar(&opts.Quirks.IncrementIndex, "increment-index", false, "LD [I]/LD VX, [I] advance I")
	flags.BoolVar(&opts.Quirks.ResetFlag, "reset-flag", false, "OR/AND/XOR reset VF")
	flags.BoolVar(&opts.Quirks.JumpVX, "jump-vx", false, "BXNN jumps to XNN + VX")
	flags.Int64Var(&opts.Seed, "seed", 0, "random number seed (0 uses the clock)")
	flags.BoolVar(&opts.Debug, "debug", false, "enable debug logging")
	flags.BoolVar(&opts.Quiet, "quiet", false, "only log errors")
	flags.BoolVar(&opts.Trace, "trace", false, "log every executed instruction (implies -debug)")

	if err := flags.Parse(args); err != nil {
		return opts, &UsageError{flags: flags}
	}

	if flags.NArg() > 1 {
		return opts, &UsageError{flags: flags, msg: "only one program may be given"}
	}

	opts.Image = flags.Arg(0)
	opts.Frontend = strings.ToLower(opts.Frontend)

	switch opts.Frontend {
	case "sdl":
	case "term":
		if opts.Image == "" {
			return opts, &UsageError{flags: flags, msg: "the term frontend needs a program"}
		}
	default:
		return opts, &UsageError{flags: flags, msg: fmt.Sprintf("unknown frontend: %s", opts.Frontend)}
	}

	if opts.Speed <= 0 || opts.TimerRate <= 0 {
		return opts, &UsageError{flags: flags, msg: "speed and timer rate must be positive"}
	}

	if opts.Trace {
		opts.Debug = true
	}

	return opts, nil
}

/// Config returns the virtual machine configuration for the options.
///
func (opts Options) Config() chip8.Config {
	cfg := chip8.DefaultConfig()

	cfg.Quirks = opts.Quirks
	cfg.Seed = opts.Seed

	return cfg
}
