package main

import (
	"context"
	"time"

	"github.com/massung/chip-8/chip8"
	"github.com/retroenv/retrogolib/log"
)

const (
	/// MinSpeed and MaxSpeed bound the instructions per second.
	///
	MinSpeed = 60
	MaxSpeed = 50000

	/// RefreshRate is how many frames per second are presented.
	///
	RefreshRate = 60
)

/// Frontend presents the machine and feeds it input. All methods are called
/// from the goroutine running Run.
///
type Frontend interface {
	/// ProcessEvents polls input. Returns false when the user quits.
	///
	ProcessEvents(m *Machine) bool

	/// Refresh presents the current display.
	///
	Refresh(m *Machine)

	/// Fault is called when the program halts with an error. Returns true
	/// to keep the frontend running.
	///
	Fault(m *Machine, err error) bool
}

/// Machine drives a CHIP-8 virtual machine in real time: it owns the VM and
/// decides when instructions execute and when timers count down.
///
type Machine struct {
	VM *chip8.CHIP_8

	/// File is the path of the loaded program, if any.
	///
	File string

	/// Image is the loaded program image.
	///
	Image []byte

	/// Paused stops the clock. Single steps are still allowed.
	///
	Paused bool

	/// Speed is the number of instructions executed per second.
	///
	Speed int

	/// TimerRate is how many times per second the timers count down.
	///
	TimerRate int

	/// Fault is the error that last halted the program.
	///
	Fault error

	// time emulation (re)started and instructions accounted for since
	clock time.Time
	steps int64

	log *log.Logger
}

/// NewMachine creates a machine for the options.
///
func NewMachine(opts Options, logger *log.Logger) *Machine {
	cfg := opts.Config()

	if opts.Trace {
		cfg.Logger = logger
	}

	return &Machine{
		VM:        chip8.NewWithConfig(cfg),
		Speed:     opts.Speed,
		TimerRate: opts.TimerRate,
		log:       logger,
		clock:     time.Now(),
	}
}

/// Load reads a program from disk and boots it.
///
func (m *Machine) Load(file string) error {
	image, err := ReadImage(file)
	if err != nil {
		return err
	}

	m.File = file
	m.Image = image

	m.log.Info("Loaded program",
		log.String("file", file),
		log.Int("size", len(image)))

	return m.Boot()
}

/// Boot resets the virtual machine and reloads the program image.
///
func (m *Machine) Boot() error {
	m.VM.Reset()
	m.Fault = nil

	if err := m.VM.LoadProgram(m.Image); err != nil {
		return err
	}

	m.resync(time.Now())

	return nil
}

/// Step executes a single instruction, regardless of the clock.
///
func (m *Machine) Step() error {
	if m.Fault != nil {
		return m.Fault
	}

	if err := m.VM.Step(); err != nil {
		m.Fault = err
		return err
	}

	return nil
}

/// Process executes instructions until the machine has caught up with the
/// clock at now. While paused or halted the clock moves without execution.
///
func (m *Machine) Process(now time.Time) error {
	elapsed := now.Sub(m.clock)

	// whole seconds and the remainder are scaled apart to avoid overflow
	count := int64(elapsed/time.Second)*int64(m.Speed) +
		int64(elapsed%time.Second)*int64(m.Speed)/int64(time.Second)

	if m.Paused || m.Fault != nil {
		m.steps = count
		return nil
	}

	// never try to catch up more than a second of emulation
	if count-m.steps > int64(m.Speed) {
		m.steps = count - int64(m.Speed)
	}

	for m.steps < count {
		m.steps++

		if err := m.Step(); err != nil {
			return err
		}
	}

	return nil
}

/// Tick counts the timers down once, unless paused.
///
func (m *Machine) Tick() {
	if !m.Paused && m.Fault == nil {
		m.VM.DecrementTimers(1)
	}
}

/// SetSpeed changes the instructions per second, within limits.
///
func (m *Machine) SetSpeed(speed int) {
	switch {
	case speed < MinSpeed:
		speed = MinSpeed
	case speed > MaxSpeed:
		speed = MaxSpeed
	}

	m.Speed = speed
	m.resync(time.Now())

	m.log.Info("Speed changed", log.Int("speed", speed))
}

/// IncSpeed doubles the speed.
///
func (m *Machine) IncSpeed() {
	m.SetSpeed(m.Speed * 2)
}

/// DecSpeed halves the speed.
///
func (m *Machine) DecSpeed() {
	m.SetSpeed(m.Speed / 2)
}

/// TogglePause pauses or resumes the clock.
///
func (m *Machine) TogglePause() {
	m.Paused = !m.Paused
}

func (m *Machine) halted(err error) {
	m.log.Error("Program halted",
		log.Err(err),
		log.Hex("pc", m.VM.PC),
		log.Int("cycles", int(m.VM.Cycles)))
}

func (m *Machine) resync(now time.Time) {
	m.clock = now
	m.steps = 0
}

/// Run the machine with a frontend until the user quits, the context is
/// cancelled or the frontend gives up after a fault.
///
func Run(ctx context.Context, m *Machine, fe Frontend) error {
	video := time.NewTicker(time.Second / RefreshRate)
	timer := time.NewTicker(time.Second / time.Duration(m.TimerRate))
	clock := time.NewTicker(time.Millisecond)

	defer video.Stop()
	defer timer.Stop()
	defer clock.Stop()

	for fe.ProcessEvents(m) {
		select {
		case <-ctx.Done():
			return nil
		case <-video.C:
			fe.Refresh(m)
		case <-timer.C:
			m.Tick()
		case now := <-clock.C:
			if err := m.Process(now); err != nil {
				m.halted(err)

				if !fe.Fault(m, err) {
					return err
				}
			}
		}
	}

	return nil
}
