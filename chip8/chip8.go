package chip8

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/retroenv/retrogolib/log"
)

const (
	/// MemorySize is the number of addressable bytes.
	///
	MemorySize = 0x1000

	/// ProgramStart is where images are loaded and execution begins.
	///
	ProgramStart = 0x200

	/// MaxImageSize is the largest image that fits at ProgramStart.
	///
	MaxImageSize = MemorySize - ProgramStart
)

/// Key is one of the 16 keypad keys (0-F), or NoKey.
///
type Key int

/// NoKey means no key is pressed.
///
const NoKey Key = -1

/// CHIP_8 virtual machine emulator. A single owner drives it; no method is
/// safe for concurrent use.
///
type CHIP_8 struct {
	/// Memory addressable by CHIP-8. The font sprites live at 0x050 and
	/// programs are loaded at 0x200.
	///
	Memory [MemorySize]byte

	/// Video is the 64x32 display.
	///
	Video Display

	/// PC is the program counter. All programs begin at 0x200.
	///
	PC uint16

	/// I is the address register.
	///
	I uint16

	/// V are the 16 virtual registers. VF doubles as the flag register.
	///
	V [16]byte

	/// Stack holds return addresses, the most recent call last.
	///
	Stack []uint16

	/// DT and ST are the delay and sound timers. They only count down
	/// when the host calls DecrementTimers.
	///
	DT byte
	ST byte

	/// Keys hold the current state for the 16-key pad keys.
	///
	Keys [16]bool

	/// Cycles is how many instructions have been executed since Reset.
	///
	Cycles int64

	quirks     Quirks
	stackDepth int
	rng        *rand.Rand
	log        *log.Logger
}

/// New returns a reset virtual machine using DefaultConfig.
///
func New() *CHIP_8 {
	return NewWithConfig(DefaultConfig())
}

/// NewWithConfig returns a reset virtual machine.
///
func NewWithConfig(cfg Config) *CHIP_8 {
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UTC().UnixNano()
	}

	depth := cfg.StackDepth
	if depth <= 0 {
		depth = DefaultConfig().StackDepth
	}

	vm := &CHIP_8{
		quirks:     cfg.Quirks,
		stackDepth: depth,
		rng:        rand.New(rand.NewSource(seed)),
		log:        cfg.Logger,
	}

	vm.Reset()

	return vm
}

/// Reset the CHIP-8 virtual machine to its power-on state. Any loaded
/// image is erased.
///
func (vm *CHIP_8) Reset() {
	vm.Memory = [MemorySize]byte{}

	// install the hex digit sprites
	copy(vm.Memory[FontAddress:], Font[:])

	// reset video memory
	vm.Video.Clear()

	// reset keys
	vm.Keys = [16]bool{}

	// reset program counter, address register and call stack
	vm.PC = ProgramStart
	vm.I = 0
	vm.Stack = make([]uint16, 0, vm.stackDepth)

	// reset virtual registers
	vm.V = [16]byte{}

	// reset timer registers
	vm.DT = 0
	vm.ST = 0

	vm.Cycles = 0
}

/// LoadImage copies an image into memory at address.
///
func (vm *CHIP_8) LoadImage(image []byte, address uint16) error {
	if int(address)+len(image) > MemorySize {
		return fmt.Errorf("%w: %d bytes at %04X", ErrImageTooLarge, len(image), address)
	}

	copy(vm.Memory[address:], image)

	return nil
}

/// LoadProgram copies an image into memory at ProgramStart.
///
func (vm *CHIP_8) LoadProgram(image []byte) error {
	return vm.LoadImage(image, ProgramStart)
}

/// SetInputKey makes key the only pressed key. NoKey releases all keys.
///
func (vm *CHIP_8) SetInputKey(key Key) {
	vm.Keys = [16]bool{}

	vm.PressKey(key)
}

/// PressKey emulates a CHIP-8 key being pressed.
///
func (vm *CHIP_8) PressKey(key Key) {
	if key >= 0 && key < 16 {
		vm.Keys[key] = true
	}
}

/// ReleaseKey emulates a CHIP-8 key being released.
///
func (vm *CHIP_8) ReleaseKey(key Key) {
	if key >= 0 && key < 16 {
		vm.Keys[key] = false
	}
}

/// Pressed returns true if key is held down.
///
func (vm *CHIP_8) Pressed(key Key) bool {
	return key >= 0 && key < 16 && vm.Keys[key]
}

/// DecrementTimers counts both timers down by amount, stopping at zero.
/// The host calls this at its own cadence, usually 60 Hz.
///
func (vm *CHIP_8) DecrementTimers(amount byte) {
	vm.DT = countdown(vm.DT, amount)
	vm.ST = countdown(vm.ST, amount)
}

func countdown(t, amount byte) byte {
	if t < amount {
		return 0
	}

	return t - amount
}

/// DelayTimer returns the current delay timer value.
///
func (vm *CHIP_8) DelayTimer() byte {
	return vm.DT
}

/// SoundTimer returns the current sound timer value.
///
func (vm *CHIP_8) SoundTimer() byte {
	return vm.ST
}

/// Sounding is true while the sound timer is running.
///
func (vm *CHIP_8) Sounding() bool {
	return vm.ST > 0
}

/// Pixel returns whether the display pixel at row, col is lit.
///
func (vm *CHIP_8) Pixel(row, col int) bool {
	return vm.Video.Get(row, col)
}

/// Step the CHIP-8 virtual machine a single instruction: fetch, decode and
/// execute.
///
func (vm *CHIP_8) Step() error {
	address := vm.PC

	// fetch the next instruction, this advances the program counter
	ins := Decode(vm.fetch())

	if vm.log != nil {
		vm.log.Debug("Step",
			log.Hex("pc", address),
			log.Hex("opcode", ins.Inst),
			log.String("instruction", Mnemonic(ins)))
	}

	if err := vm.execute(address, ins); err != nil {
		return err
	}

	// increment the cycle count
	vm.Cycles += 1

	return nil
}

/// Fetch the next 16-bit instruction to execute.
///
func (vm *CHIP_8) fetch() uint16 {
	i := vm.PC

	// advance the program counter, wrapping at the end of memory
	vm.PC = (vm.PC + 2) & 0xFFF

	// return the 16-bit instruction
	return uint16(vm.Memory[i&0xFFF])<<8 | uint16(vm.Memory[(i+1)&0xFFF])
}
