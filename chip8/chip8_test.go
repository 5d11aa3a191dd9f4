package chip8

import (
	"bytes"
	"errors"
	"testing"

	"github.com/retroenv/retrogolib/assert"
	"github.com/retroenv/retrogolib/log"
)

func newTestVM(t *testing.T, quirks Quirks) *CHIP_8 {
	t.Helper()

	cfg := DefaultConfig()
	cfg.Quirks = quirks
	cfg.Seed = 1
	cfg.Logger = log.NewTestLogger(t)

	return NewWithConfig(cfg)
}

// program loads instruction words at ProgramStart.
func program(t *testing.T, vm *CHIP_8, words ...uint16) {
	t.Helper()

	image := make([]byte, 0, len(words)*2)
	for _, w := range words {
		image = append(image, byte(w>>8), byte(w))
	}

	assert.NoError(t, vm.LoadProgram(image))
}

func steps(t *testing.T, vm *CHIP_8, n int) {
	t.Helper()

	for i := 0; i < n; i++ {
		assert.NoError(t, vm.Step())
	}
}

func TestReset(t *testing.T) {
	vm := newTestVM(t, Quirks{})

	vm.Memory[0x300] = 0xAA
	vm.V[3] = 7
	vm.I = 0x123
	vm.PC = 0x400
	vm.DT, vm.ST = 5, 6
	vm.Stack = append(vm.Stack, 0x202)
	vm.Keys[4] = true
	vm.Video.Toggle(1, 1)

	vm.Reset()

	assert.Equal(t, uint16(ProgramStart), vm.PC)
	assert.Equal(t, uint16(0), vm.I)
	assert.Equal(t, [16]byte{}, vm.V)
	assert.Equal(t, byte(0), vm.DT)
	assert.Equal(t, byte(0), vm.ST)
	assert.Equal(t, 0, len(vm.Stack))
	assert.Equal(t, [16]bool{}, vm.Keys)
	assert.Equal(t, 0, vm.Video.Lit())
	assert.Equal(t, byte(0), vm.Memory[0x300])
	assert.True(t, bytes.Equal(Font[:], vm.Memory[FontAddress:FontAddress+len(Font)]))
	assert.Equal(t, int64(0), vm.Cycles)
}

func TestLoadImage(t *testing.T) {
	vm := New()

	assert.NoError(t, vm.LoadImage([]byte{1, 2, 3}, 0x300))
	assert.True(t, bytes.Equal([]byte{1, 2, 3}, vm.Memory[0x300:0x303]))

	// exactly filling memory is allowed
	assert.NoError(t, vm.LoadImage(make([]byte, MaxImageSize), ProgramStart))

	err := vm.LoadImage(make([]byte, MaxImageSize+1), ProgramStart)
	assert.True(t, errors.Is(err, ErrImageTooLarge))

	err = vm.LoadImage([]byte{1, 2}, 0xFFF)
	assert.True(t, errors.Is(err, ErrImageTooLarge))
}

func TestStoreImmediate(t *testing.T) {
	for i := uint16(0); i < 16; i++ {
		for _, v := range []uint16{0x00, 0x01, 0x7F, 0x80, 0xFE, 0xFF} {
			vm := newTestVM(t, Quirks{})
			program(t, vm, 0x6000|i<<8|v)
			steps(t, vm, 1)

			for r := uint16(0); r < 16; r++ {
				if r == i {
					assert.Equal(t, byte(v), vm.V[r])
				} else {
					assert.Equal(t, byte(0), vm.V[r])
				}
			}
		}
	}
}

func TestScenarioLoadRegister(t *testing.T) {
	vm := New()
	assert.NoError(t, vm.LoadImage([]byte{0x63, 0x12}, vm.PC))

	assert.NoError(t, vm.Step())
	assert.Equal(t, byte(0x12), vm.V[3])
	assert.Equal(t, uint16(0x202), vm.PC)
}

func TestScenarioLoadIndex(t *testing.T) {
	vm := New()
	assert.NoError(t, vm.LoadProgram([]byte{0xA1, 0x23}))

	assert.NoError(t, vm.Step())
	assert.Equal(t, uint16(0x123), vm.I)
}

func TestScenarioSkip(t *testing.T) {
	vm := New()
	vm.V[2] = 0xFA
	assert.NoError(t, vm.LoadProgram([]byte{0x32, 0xFA}))

	pc := vm.PC
	assert.NoError(t, vm.Step())
	assert.Equal(t, pc+4, vm.PC)
}

func TestAddImmediateWraps(t *testing.T) {
	vm := newTestVM(t, Quirks{})
	vm.V[5] = 0xF0
	vm.V[0xF] = 0x42

	program(t, vm, 0x7520, 0x75F0)
	steps(t, vm, 2)

	assert.Equal(t, byte((0xF0+0x20+0xF0)%256), vm.V[5])

	// no carry for add-immediate
	assert.Equal(t, byte(0x42), vm.V[0xF])
}

func TestJump(t *testing.T) {
	for _, target := range []uint16{0x000, 0x200, 0x2A4, 0xFFE} {
		vm := newTestVM(t, Quirks{})
		program(t, vm, 0x1000|target)
		steps(t, vm, 1)

		assert.Equal(t, target, vm.PC)
	}
}

func TestJumpV0(t *testing.T) {
	vm := newTestVM(t, Quirks{})
	vm.V[0] = 0x10
	vm.V[3] = 0x20
	program(t, vm, 0xB300)
	steps(t, vm, 1)
	assert.Equal(t, uint16(0x310), vm.PC)

	vm = newTestVM(t, Quirks{JumpVX: true})
	vm.V[0] = 0x10
	vm.V[3] = 0x20
	program(t, vm, 0xB300)
	steps(t, vm, 1)
	assert.Equal(t, uint16(0x320), vm.PC)
}

func TestCallReturn(t *testing.T) {
	vm := newTestVM(t, Quirks{})

	// 0x200: CALL 0x300
	program(t, vm, 0x2300)
	vm.Memory[0x300] = 0x00
	vm.Memory[0x301] = 0xEE

	steps(t, vm, 1)
	assert.Equal(t, uint16(0x300), vm.PC)
	assert.Equal(t, 1, len(vm.Stack))
	assert.Equal(t, uint16(0x202), vm.Stack[0])

	steps(t, vm, 1)
	assert.Equal(t, uint16(0x202), vm.PC)
	assert.Equal(t, 0, len(vm.Stack))
}

func TestStackUnderflow(t *testing.T) {
	vm := newTestVM(t, Quirks{})
	program(t, vm, 0x00EE)

	err := vm.Step()
	assert.Error(t, err)
	assert.True(t, errors.Is(err, ErrStackUnderflow))
}

func TestStackOverflow(t *testing.T) {
	vm := newTestVM(t, Quirks{})

	// 0x200: CALL 0x200, forever
	program(t, vm, 0x2200)
	steps(t, vm, DefaultConfig().StackDepth)

	err := vm.Step()
	assert.True(t, errors.Is(err, ErrStackOverflow))
	assert.Equal(t, DefaultConfig().StackDepth, len(vm.Stack))
}

func TestSkips(t *testing.T) {
	tests := []struct {
		name string
		inst uint16
		vx   byte
		vy   byte
		skip bool
	}{
		{"SE byte equal", 0x3122, 0x22, 0, true},
		{"SE byte not equal", 0x3122, 0x23, 0, false},
		{"SNE byte equal", 0x4122, 0x22, 0, false},
		{"SNE byte not equal", 0x4122, 0x23, 0, true},
		{"SE reg equal", 0x5120, 0x10, 0x10, true},
		{"SE reg not equal", 0x5120, 0x10, 0x11, false},
		{"SNE reg equal", 0x9120, 0x10, 0x10, false},
		{"SNE reg not equal", 0x9120, 0x10, 0x11, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vm := newTestVM(t, Quirks{})
			vm.V[1] = tt.vx
			vm.V[2] = tt.vy
			program(t, vm, tt.inst)

			pc := vm.PC
			steps(t, vm, 1)

			if tt.skip {
				assert.Equal(t, pc+4, vm.PC)
			} else {
				assert.Equal(t, pc+2, vm.PC)
			}
		})
	}
}

func TestKeySkips(t *testing.T) {
	vm := newTestVM(t, Quirks{})
	vm.V[4] = 0xA

	// SKP V4, SKNP V4
	program(t, vm, 0xE49E, 0x0000, 0xE4A1)

	vm.SetInputKey(0xA)
	steps(t, vm, 1)
	assert.Equal(t, uint16(0x204), vm.PC)

	steps(t, vm, 1)
	assert.Equal(t, uint16(0x206), vm.PC)

	vm.SetInputKey(NoKey)
	vm.PC = 0x200
	steps(t, vm, 1)
	assert.Equal(t, uint16(0x202), vm.PC)
}

func TestInputKeys(t *testing.T) {
	vm := New()

	vm.SetInputKey(3)
	assert.True(t, vm.Pressed(3))

	// setting a key releases all others
	vm.SetInputKey(7)
	assert.False(t, vm.Pressed(3))
	assert.True(t, vm.Pressed(7))

	vm.PressKey(1)
	assert.True(t, vm.Pressed(1))
	assert.True(t, vm.Pressed(7))

	vm.ReleaseKey(7)
	assert.False(t, vm.Pressed(7))

	// out of range keys are ignored
	vm.PressKey(16)
	vm.PressKey(NoKey)
	assert.False(t, vm.Pressed(16))

	vm.SetInputKey(NoKey)
	assert.Equal(t, [16]bool{}, vm.Keys)
}

func TestWaitKey(t *testing.T) {
	vm := newTestVM(t, Quirks{})

	// LD V5, K
	program(t, vm, 0xF50A)

	// no key, so the instruction repeats
	steps(t, vm, 3)
	assert.Equal(t, uint16(0x200), vm.PC)

	vm.SetInputKey(0xC)
	steps(t, vm, 1)
	assert.Equal(t, uint16(0x202), vm.PC)
	assert.Equal(t, byte(0xC), vm.V[5])
}

func TestTimers(t *testing.T) {
	vm := newTestVM(t, Quirks{})
	vm.V[1] = 10
	vm.V[2] = 3

	// LD DT, V1; LD ST, V2; LD V3, DT
	program(t, vm, 0xF115, 0xF218, 0xF307)
	steps(t, vm, 2)

	assert.Equal(t, byte(10), vm.DelayTimer())
	assert.Equal(t, byte(3), vm.SoundTimer())
	assert.True(t, vm.Sounding())

	// timers never change on their own
	assert.Equal(t, byte(10), vm.DT)

	vm.DecrementTimers(4)
	assert.Equal(t, byte(6), vm.DT)
	assert.Equal(t, byte(0), vm.ST)
	assert.False(t, vm.Sounding())

	steps(t, vm, 1)
	assert.Equal(t, byte(6), vm.V[3])

	vm.DecrementTimers(255)
	assert.Equal(t, byte(0), vm.DT)
}

func TestLogic(t *testing.T) {
	tests := []struct {
		name   string
		inst   uint16
		quirks Quirks
		vx     byte
		vf     byte
	}{
		{"LD", 0x8120, Quirks{}, 0x0F, 0x55},
		{"OR", 0x8121, Quirks{}, 0x3F, 0x55},
		{"AND", 0x8122, Quirks{}, 0x0C, 0x55},
		{"XOR", 0x8123, Quirks{}, 0x33, 0x55},
		{"OR reset flag", 0x8121, Quirks{ResetFlag: true}, 0x3F, 0x00},
		{"AND reset flag", 0x8122, Quirks{ResetFlag: true}, 0x0C, 0x00},
		{"XOR reset flag", 0x8123, Quirks{ResetFlag: true}, 0x33, 0x00},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vm := newTestVM(t, tt.quirks)
			vm.V[1] = 0x3C
			vm.V[2] = 0x0F
			vm.V[0xF] = 0x55
			program(t, vm, tt.inst)
			steps(t, vm, 1)

			assert.Equal(t, tt.vx, vm.V[1])
			assert.Equal(t, tt.vf, vm.V[0xF])
		})
	}
}

func TestArithmeticFlags(t *testing.T) {
	tests := []struct {
		name string
		inst uint16
		x, y byte
		want byte
		flag byte
	}{
		{"ADD no carry", 0x8124, 0x10, 0x20, 0x30, 0},
		{"ADD carry", 0x8124, 0xF0, 0x20, 0x10, 1},
		{"ADD exactly 256", 0x8124, 0x80, 0x80, 0x00, 1},
		{"ADD 255", 0x8124, 0xF0, 0x0F, 0xFF, 0},
		{"SUB no borrow", 0x8125, 0x30, 0x10, 0x20, 1},
		{"SUB equal", 0x8125, 0x30, 0x30, 0x00, 1},
		{"SUB borrow", 0x8125, 0x10, 0x30, 0xE0, 0},
		{"SUBN no borrow", 0x8127, 0x10, 0x30, 0x20, 1},
		{"SUBN equal", 0x8127, 0x30, 0x30, 0x00, 1},
		{"SUBN borrow", 0x8127, 0x30, 0x10, 0xE0, 0},
		{"SHR odd", 0x8126, 0x05, 0xFF, 0x02, 1},
		{"SHR even", 0x8126, 0x04, 0xFF, 0x02, 0},
		{"SHL high", 0x812E, 0x81, 0x00, 0x02, 1},
		{"SHL low", 0x812E, 0x41, 0xFF, 0x82, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vm := newTestVM(t, Quirks{})
			vm.V[1] = tt.x
			vm.V[2] = tt.y
			program(t, vm, tt.inst)
			steps(t, vm, 1)

			assert.Equal(t, tt.want, vm.V[1])
			assert.Equal(t, tt.flag, vm.V[0xF])
		})
	}
}

func TestFlagWrittenAfterResult(t *testing.T) {
	tests := []struct {
		name string
		inst uint16
		vf   byte
		vy   byte
		want byte
	}{
		{"ADD VF, V1 carry", 0x8F14, 0xFF, 0x01, 1},
		{"ADD VF, V1 no carry", 0x8F14, 0x01, 0x01, 0},
		{"SUB VF, V1", 0x8F15, 0x05, 0x01, 1},
		{"SUBN VF, V1", 0x8F17, 0x05, 0x01, 0},
		{"SHR VF", 0x8FF6, 0x03, 0x00, 1},
		{"SHL VF", 0x8FFE, 0x40, 0x00, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vm := newTestVM(t, Quirks{})
			vm.V[0xF] = tt.vf
			vm.V[1] = tt.vy
			program(t, vm, tt.inst)
			steps(t, vm, 1)

			assert.Equal(t, tt.want, vm.V[0xF])
		})
	}
}

func TestShiftQuirk(t *testing.T) {
	// SHR V1, V2
	vm := newTestVM(t, Quirks{})
	vm.V[1] = 0x08
	vm.V[2] = 0x03
	program(t, vm, 0x8126)
	steps(t, vm, 1)
	assert.Equal(t, byte(0x04), vm.V[1])
	assert.Equal(t, byte(0), vm.V[0xF])

	vm = newTestVM(t, Quirks{ShiftVY: true})
	vm.V[1] = 0x08
	vm.V[2] = 0x03
	program(t, vm, 0x8126)
	steps(t, vm, 1)
	assert.Equal(t, byte(0x01), vm.V[1])
	assert.Equal(t, byte(0x03), vm.V[2])
	assert.Equal(t, byte(1), vm.V[0xF])
}

func TestIndex(t *testing.T) {
	vm := newTestVM(t, Quirks{})
	vm.V[3] = 0x10

	// LD I, #FF8; ADD I, V3
	program(t, vm, 0xAFF8, 0xF31E)
	steps(t, vm, 2)

	// the address register stays within memory
	assert.Equal(t, uint16(0x008), vm.I)
}

func TestFontAddress(t *testing.T) {
	for d := byte(0); d < 16; d++ {
		vm := newTestVM(t, Quirks{})
		vm.V[7] = d
		program(t, vm, 0xF729)
		steps(t, vm, 1)

		assert.Equal(t, uint16(FontAddress)+uint16(d)*GlyphSize, vm.I)
		assert.True(t, bytes.Equal(Glyph(d), vm.Memory[vm.I:vm.I+GlyphSize]))
	}
}

func TestBCD(t *testing.T) {
	tests := []struct {
		v    byte
		want []byte
	}{
		{0, []byte{0, 0, 0}},
		{7, []byte{0, 0, 7}},
		{42, []byte{0, 4, 2}},
		{100, []byte{1, 0, 0}},
		{199, []byte{1, 9, 9}},
		{255, []byte{2, 5, 5}},
	}

	for _, tt := range tests {
		vm := newTestVM(t, Quirks{})
		vm.V[2] = tt.v
		program(t, vm, 0xA400, 0xF233)
		steps(t, vm, 2)

		assert.True(t, bytes.Equal(tt.want, vm.Memory[0x400:0x403]))
	}
}

func TestRegisterDumpLoad(t *testing.T) {
	for k := uint16(0); k < 16; k++ {
		vm := newTestVM(t, Quirks{})
		for i := range vm.V {
			vm.V[i] = byte(i*17 + 3)
		}

		want := vm.V

		// LD I, #500; LD [I], Vk
		program(t, vm, 0xA500, 0xF055|k<<8)
		steps(t, vm, 2)

		vm.V = [16]byte{}

		// LD Vk, [I] from the same address
		vm.Memory[vm.PC] = 0xF0 | byte(k)
		vm.Memory[vm.PC+1] = 0x65
		steps(t, vm, 1)

		for i := uint16(0); i <= k; i++ {
			assert.Equal(t, want[i], vm.V[i])
		}

		for i := k + 1; i < 16; i++ {
			assert.Equal(t, byte(0), vm.V[i])
		}

		assert.Equal(t, uint16(0x500), vm.I)
	}
}

func TestIncrementIndexQuirk(t *testing.T) {
	vm := newTestVM(t, Quirks{IncrementIndex: true})

	// LD I, #500; LD [I], V3; LD V1, [I]
	program(t, vm, 0xA500, 0xF355, 0xF165)
	steps(t, vm, 2)
	assert.Equal(t, uint16(0x504), vm.I)

	steps(t, vm, 1)
	assert.Equal(t, uint16(0x506), vm.I)
}

func TestRandom(t *testing.T) {
	vm := newTestVM(t, Quirks{})

	// RND V0, #0F many times
	for i := 0; i < 32; i++ {
		program(t, vm, 0xC00F)
		vm.PC = ProgramStart
		steps(t, vm, 1)

		assert.Equal(t, byte(0), vm.V[0]&0xF0)
	}

	// the same seed gives the same sequence
	a, b := newTestVM(t, Quirks{}), newTestVM(t, Quirks{})
	program(t, a, 0xC0FF)
	program(t, b, 0xC0FF)
	steps(t, a, 1)
	steps(t, b, 1)
	assert.Equal(t, a.V[0], b.V[0])
}

func TestClearScreen(t *testing.T) {
	vm := newTestVM(t, Quirks{})
	for i := 0; i < 100; i++ {
		vm.Video.Toggle(i%Height, (i*7)%Width)
	}

	program(t, vm, 0x00E0)
	steps(t, vm, 1)

	for row := 0; row < Height; row++ {
		for col := 0; col < Width; col++ {
			assert.False(t, vm.Pixel(row, col))
		}
	}
}

func TestDrawTwice(t *testing.T) {
	vm := newTestVM(t, Quirks{})
	vm.V[1] = 10
	vm.V[2] = 5

	// LD I, #400; DRW V1, V2, 3 twice
	program(t, vm, 0xA400, 0xD123, 0xD123)
	copy(vm.Memory[0x400:], []byte{0xFF, 0x81, 0xA5})

	steps(t, vm, 2)
	assert.Equal(t, byte(0), vm.V[0xF])
	assert.Equal(t, 8+2+4, vm.Video.Lit())
	assert.True(t, vm.Pixel(5, 10))
	assert.True(t, vm.Pixel(6, 17))
	assert.False(t, vm.Pixel(6, 11))

	steps(t, vm, 1)
	assert.Equal(t, byte(1), vm.V[0xF])
	assert.Equal(t, 0, vm.Video.Lit())
}

func TestDrawCollision(t *testing.T) {
	vm := newTestVM(t, Quirks{})

	// a pixel already lit elsewhere is no collision
	vm.Video.Toggle(0, 20)

	program(t, vm, 0xA400, 0xD011)
	vm.Memory[0x400] = 0x80

	steps(t, vm, 2)
	assert.Equal(t, byte(0), vm.V[0xF])
	assert.True(t, vm.Pixel(0, 0))
}

func TestDrawClipAndWrap(t *testing.T) {
	vm := newTestVM(t, Quirks{})

	// x wraps to 60 (124 mod 64), y starts at row 30
	vm.V[1] = 124
	vm.V[2] = 30

	program(t, vm, 0xA400, 0xD124)
	copy(vm.Memory[0x400:], []byte{0xFF, 0xFF, 0xFF, 0xFF})

	steps(t, vm, 2)

	// 4 columns (60..63) on each of the rows 30, 31, 0 and 1
	assert.Equal(t, 16, vm.Video.Lit())

	for _, row := range []int{30, 31, 0, 1} {
		for col := 60; col < Width; col++ {
			assert.True(t, vm.Pixel(row, col))
		}

		// clipped, never wrapped to the left edge
		for col := 0; col < 4; col++ {
			assert.False(t, vm.Pixel(row, col))
		}
	}
}

func TestDrawLargeY(t *testing.T) {
	vm := newTestVM(t, Quirks{})
	vm.V[2] = 0xFF

	program(t, vm, 0xA400, 0xD121)
	vm.Memory[0x400] = 0x80

	steps(t, vm, 2)

	// 255 mod 32
	assert.True(t, vm.Pixel(31, 0))
}

func TestDrawIndexWraps(t *testing.T) {
	vm := newTestVM(t, Quirks{})

	// sprite rows read from 0xFFF then 0x000
	program(t, vm, 0xAFFF, 0xD002)
	vm.Memory[0xFFF] = 0x80
	vm.Memory[0x000] = 0x40

	steps(t, vm, 2)
	assert.True(t, vm.Pixel(0, 0))
	assert.True(t, vm.Pixel(1, 1))
}

func TestUnsupportedOpcode(t *testing.T) {
	for _, inst := range []uint16{0x0123, 0x5121, 0x8128, 0x912F, 0xE100, 0xF1FF} {
		vm := newTestVM(t, Quirks{})
		program(t, vm, inst)

		err := vm.Step()
		assert.Error(t, err)

		var opErr *UnsupportedOpcodeError
		assert.True(t, errors.As(err, &opErr))
		assert.Equal(t, inst, opErr.Opcode)
		assert.Equal(t, uint16(ProgramStart), opErr.Address)
		assert.Equal(t, uint16(ProgramStart+2), vm.PC)
		assert.Equal(t, int64(0), vm.Cycles)
	}
}

func TestUnsupportedOpcodeMessage(t *testing.T) {
	vm := New()
	program(t, vm, 0x0ABC)

	assert.ErrorContains(t, vm.Step(), "unsupported opcode 0ABC at 0200")
}

func TestCycles(t *testing.T) {
	vm := newTestVM(t, Quirks{})
	program(t, vm, 0x6001, 0x6102, 0x6203)
	steps(t, vm, 3)

	assert.Equal(t, int64(3), vm.Cycles)
}

func TestFetchWrapsMemory(t *testing.T) {
	vm := newTestVM(t, Quirks{})
	vm.PC = 0xFFE
	vm.Memory[0xFFE] = 0x61
	vm.Memory[0xFFF] = 0x77

	steps(t, vm, 1)
	assert.Equal(t, byte(0x77), vm.V[1])
	assert.Equal(t, uint16(0x000), vm.PC)

	// the next fault is reported inside memory
	err := vm.Step()

	var unsupported *UnsupportedOpcodeError
	assert.True(t, errors.As(err, &unsupported))
	assert.Equal(t, uint16(0x000), unsupported.Address)
}
