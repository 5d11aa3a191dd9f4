package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"

	"github.com/retroenv/retrogolib/app"
	"github.com/retroenv/retrogolib/log"
	"github.com/sqweek/dialog"
	"github.com/veandco/go-sdl2/sdl"
)

const (
	/// WindowWidth and WindowHeight are the logical size of the window;
	/// the window itself is WindowScale times larger.
	///
	WindowWidth  = 550
	WindowHeight = 348
	WindowScale  = 2
)

var (
	/// The SDL Window and Renderer.
	///
	Window   *sdl.Window
	Renderer *sdl.Renderer
)

func init() {
	runtime.LockOSThread()
}

func main() {
	ctx := app.Context()

	opts, err := ParseFlags(os.Args[1:])
	if err != nil {
		var usageErr *UsageError
		if errors.As(err, &usageErr) {
			usageErr.ShowUsage()
		}

		os.Exit(2)
	}

	logger := CreateLogger(opts.Debug, opts.Quiet)

	m := NewMachine(opts, logger)

	switch opts.Frontend {
	case "term":
		err = RunTerminal(ctx, m, opts)
	default:
		err = RunSDL(ctx, m, opts)
	}

	if err != nil {
		logger.Error("Emulation failed", log.Err(err))
		os.Exit(1)
	}
}

/// RunTerminal loads the program and runs it in the terminal.
///
func RunTerminal(ctx context.Context, m *Machine, opts Options) error {
	if err := m.Load(opts.Image); err != nil {
		return err
	}

	t, err := NewTerminal()
	if err != nil {
		return err
	}

	// a fault while single stepping quits without Run seeing it
	if err = Run(ctx, m, t); err == nil {
		err = t.Err()
	}

	return errors.Join(err, t.Close())
}

/// SDL is the windowed frontend with a debugger.
///
type SDL struct{}

func (SDL) ProcessEvents(m *Machine) bool { return ProcessEvents(m) }

func (SDL) Refresh(m *Machine) { Refresh(m) }

func (SDL) Fault(m *Machine, err error) bool { return Fault(m, err) }

/// RunSDL opens the window, loads the program (asking for one if none was
/// given) and runs it.
///
func RunSDL(ctx context.Context, m *Machine, opts Options) error {
	var err error

	// initialize SDL
	if err = sdl.Init(sdl.INIT_VIDEO); err != nil {
		return fmt.Errorf("initializing SDL: %w", err)
	}

	defer sdl.Quit()

	// create the main window and renderer
	flags := sdl.WINDOW_OPENGL | sdl.WINDOW_RESIZABLE
	if Window, Renderer, err = sdl.CreateWindowAndRenderer(WindowWidth*WindowScale, WindowHeight*WindowScale, uint32(flags)); err != nil {
		return fmt.Errorf("creating window: %w", err)
	}

	defer Window.Destroy()
	defer Renderer.Destroy()

	// draw everything at the logical size, SDL scales it to the window
	if err = Renderer.SetLogicalSize(WindowWidth, WindowHeight); err != nil {
		return fmt.Errorf("setting logical size: %w", err)
	}

	// set the title
	Window.SetTitle("CHIP-8")

	file := opts.Image
	if file == "" {
		if file, err = OpenDialog(); err != nil {
			if errors.Is(err, dialog.ErrCancelled) {
				return nil
			}

			return err
		}
	}

	if err = m.Load(file); err != nil {
		return err
	}

	Window.SetTitle("CHIP-8 - " + file)

	Console.Log("Loaded", file)
	Console.Log("Press F1 for help")

	return Run(ctx, m, SDL{})
}

/// Refresh redraws the whole window.
///
func Refresh(m *Machine) {
	Renderer.SetDrawColor(32, 42, 53, 255)
	Renderer.Clear()

	// frame various portions of the app
	Frame(8, 8, 322, 162)
	Frame(338, 8, 204, 162)
	Frame(8, 176, 146, 164)
	Frame(162, 176, 380, 164)

	// the video screen
	DrawScreen(m.VM, 9, 9)

	// debug assembly, virtual registers and the log
	DebugAssembly(m, 344, 14)
	DebugRegisters(m, 14, 182)
	DebugLog(168, 182, 74)

	// show the new frame
	Renderer.Present()
}

/// Frame draws a sunken border around an area of the window.
///
func Frame(x, y, w, h int32) {
	Renderer.SetDrawColor(0, 0, 0, 255)
	Renderer.DrawLine(x, y, x+w, y)
	Renderer.DrawLine(x, y, x, y+h)

	// highlight
	Renderer.SetDrawColor(95, 112, 120, 255)
	Renderer.DrawLine(x+w, y, x+w, y+h)
	Renderer.DrawLine(x, y+h, x+w, y+h)
}
