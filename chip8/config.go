package chip8

import (
	"github.com/retroenv/retrogolib/log"
)

/// Quirks select between historical behaviors of a few instructions. The
/// zero value is the CHIP-48/SCHIP behavior.
///
type Quirks struct {
	/// ShiftVY makes SHR/SHL shift VY into VX instead of shifting VX in
	/// place (COSMAC VIP).
	///
	ShiftVY bool

	/// IncrementIndex leaves I pointing past the last register copied by
	/// LD [I], VX and LD VX, [I].
	///
	IncrementIndex bool

	/// ResetFlag zeroes VF after OR, AND and XOR.
	///
	ResetFlag bool

	/// JumpVX makes BXNN jump to XNN + VX instead of NNN + V0.
	///
	JumpVX bool
}

/// Config for a new virtual machine.
///
type Config struct {
	Quirks Quirks

	/// StackDepth is the maximum number of nested calls.
	///
	StackDepth int

	/// Seed for RND. Zero seeds from the clock.
	///
	Seed int64

	/// Logger receives a debug trace of executed instructions. May be nil.
	///
	Logger *log.Logger
}

/// DefaultConfig returns the configuration used by New.
///
func DefaultConfig() Config {
	return Config{
		StackDepth: 16,
	}
}
