// ula_engine_test.go - ZX Spectrum ULA video decoder test suite

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

import "testing"

func TestULA_NewDecoder(t *testing.T) {
	u := NewULADecoder()
	if u == nil {
		t.Fatal("NewULADecoder returned nil")
	}
	if u.Border() != 0 {
		t.Errorf("expected default border 0, got %d", u.Border())
	}
	if u.flashState {
		t.Error("expected flashState false initially")
	}
}

func TestULA_BorderColorWrite(t *testing.T) {
	u := NewULADecoder()

	u.SetBorder(0xFF) // only bits 0-2 used
	if u.Border() != 7 {
		t.Errorf("expected border=7, got %d", u.Border())
	}

	u.SetBorder(3)
	if u.Border() != 3 {
		t.Errorf("expected border=3, got %d", u.Border())
	}
}

func TestULA_BitmapAddress_Formula(t *testing.T) {
	u := NewULADecoder()

	testCases := []struct {
		y, x         int
		expectedAddr uint16
	}{
		{0, 0, 0x0000},     // Top-left
		{0, 8, 0x0001},     // Second byte, first row
		{1, 0, 0x0100},     // y=1 shifts by 256
		{8, 0, 0x0020},     // y=8 shifts by 32
		{64, 0, 0x0800},    // y=64 shifts by 2048
		{191, 248, 0x17FF}, // Bottom-right
	}

	for _, tc := range testCases {
		addr := u.GetBitmapAddress(tc.y, tc.x)
		if addr != tc.expectedAddr {
			t.Errorf("GetBitmapAddress(%d, %d) = 0x%04X, expected 0x%04X",
				tc.y, tc.x, addr, tc.expectedAddr)
		}
	}
}

func TestULA_AttributeAddress(t *testing.T) {
	u := NewULADecoder()

	testCases := []struct {
		y, x         int
		expectedAddr uint16
	}{
		{0, 0, 0x1800},   // First attribute
		{0, 31, 0x181F},  // End of first row
		{1, 0, 0x1820},   // Start of second row
		{23, 31, 0x1AFF}, // Last attribute
	}

	for _, tc := range testCases {
		addr := u.GetAttributeAddress(tc.y, tc.x)
		if addr != tc.expectedAddr {
			t.Errorf("GetAttributeAddress(%d, %d) = 0x%04X, expected 0x%04X",
				tc.y, tc.x, addr, tc.expectedAddr)
		}
	}
}

func TestULA_AttributeParsing(t *testing.T) {
	testCases := []struct {
		attr          uint8
		ink, paper    uint8
		bright, flash bool
	}{
		{0x00, 0, 0, false, false}, // All black, no effects
		{0x07, 7, 0, false, false}, // White ink, black paper
		{0x38, 0, 7, false, false}, // Black ink, white paper
		{0x3F, 7, 7, false, false}, // White on white
		{0x47, 7, 0, true, false},  // Bright white ink
		{0x87, 7, 0, false, true},  // Flash white ink
		{0xC7, 7, 0, true, true},   // Bright + flash white ink
		{0xFF, 7, 7, true, true},   // Everything on
	}

	for _, tc := range testCases {
		ink, paper, bright, flash := ParseAttribute(tc.attr)
		if ink != tc.ink {
			t.Errorf("ParseAttribute(0x%02X): ink=%d, expected %d", tc.attr, ink, tc.ink)
		}
		if paper != tc.paper {
			t.Errorf("ParseAttribute(0x%02X): paper=%d, expected %d", tc.attr, paper, tc.paper)
		}
		if bright != tc.bright {
			t.Errorf("ParseAttribute(0x%02X): bright=%v, expected %v", tc.attr, bright, tc.bright)
		}
		if flash != tc.flash {
			t.Errorf("ParseAttribute(0x%02X): flash=%v, expected %v", tc.attr, flash, tc.flash)
		}
	}
}

func TestULA_Palette_Normal(t *testing.T) {
	expectedColors := [][3]uint8{
		{0, 0, 0},       // 0: Black
		{0, 0, 205},     // 1: Blue
		{205, 0, 0},     // 2: Red
		{205, 0, 205},   // 3: Magenta
		{0, 205, 0},     // 4: Green
		{0, 205, 205},   // 5: Cyan
		{205, 205, 0},   // 6: Yellow
		{205, 205, 205}, // 7: White
	}

	for i, expected := range expectedColors {
		r, g, b := GetColor(uint8(i), false)
		if r != expected[0] || g != expected[1] || b != expected[2] {
			t.Errorf("Normal color %d: got (%d,%d,%d), expected (%d,%d,%d)",
				i, r, g, b, expected[0], expected[1], expected[2])
		}
	}
}

func TestULA_Palette_Bright(t *testing.T) {
	expectedColors := [][3]uint8{
		{0, 0, 0},       // 0: Black (same)
		{0, 0, 255},     // 1: Bright Blue
		{255, 0, 0},     // 2: Bright Red
		{255, 0, 255},   // 3: Bright Magenta
		{0, 255, 0},     // 4: Bright Green
		{0, 255, 255},   // 5: Bright Cyan
		{255, 255, 0},   // 6: Bright Yellow
		{255, 255, 255}, // 7: Bright White
	}

	for i, expected := range expectedColors {
		r, g, b := GetColor(uint8(i), true)
		if r != expected[0] || g != expected[1] || b != expected[2] {
			t.Errorf("Bright color %d: got (%d,%d,%d), expected (%d,%d,%d)",
				i, r, g, b, expected[0], expected[1], expected[2])
		}
	}
}

func TestULA_DecodeCell_InkPaper(t *testing.T) {
	u := NewULADecoder()
	var vram [0x10000]byte

	// Pixel at x=0 of cell (0,0) set.
	vram[ULA_VRAM_BASE+u.GetBitmapAddress(0, 0)] = 0x80
	// Bright white ink (7) on black paper (0): FBPPPIII = 0_1_000_111 = 0x47
	vram[ULA_VRAM_BASE+u.GetAttributeAddress(0, 0)] = 0x47

	cell := u.DecodeCell(&vram, 0, 0)

	if cell.Rows[0] != 0x80 {
		t.Errorf("Rows[0] = 0x%02X, want 0x80", cell.Rows[0])
	}
	if cell.FgR != 255 || cell.FgG != 255 || cell.FgB != 255 {
		t.Errorf("fg = (%d,%d,%d), want bright white", cell.FgR, cell.FgG, cell.FgB)
	}
	if cell.BgR != 0 || cell.BgG != 0 || cell.BgB != 0 {
		t.Errorf("bg = (%d,%d,%d), want black", cell.BgR, cell.BgG, cell.BgB)
	}
}

func TestULA_DecodeCell_FlashSwapsFgBg(t *testing.T) {
	u := NewULADecoder()
	var vram [0x10000]byte

	// White ink (7) on black paper (0) with FLASH set: 1_0_000_111 = 0x87
	vram[ULA_VRAM_BASE+u.GetAttributeAddress(0, 0)] = 0x87

	cellOff := u.DecodeCell(&vram, 0, 0)
	if cellOff.FgR != 205 || cellOff.FgG != 205 || cellOff.FgB != 205 {
		t.Errorf("flash off fg: got (%d,%d,%d), want normal white", cellOff.FgR, cellOff.FgG, cellOff.FgB)
	}

	u.flashState = true
	cellOn := u.DecodeCell(&vram, 0, 0)
	if cellOn.FgR != 0 || cellOn.FgG != 0 || cellOn.FgB != 0 {
		t.Errorf("flash on fg: got (%d,%d,%d), want black (swapped)", cellOn.FgR, cellOn.FgG, cellOn.FgB)
	}
}

func TestULA_FlashTiming(t *testing.T) {
	u := NewULADecoder()

	if u.flashed() {
		t.Error("initial flashed() should be false")
	}

	for i := 0; i < ULA_FLASH_FRAMES-1; i++ {
		u.Tick()
	}
	if u.flashed() {
		t.Errorf("flashed() should still be false after %d frames", ULA_FLASH_FRAMES-1)
	}

	u.Tick()
	if !u.flashed() {
		t.Errorf("flashed() should be true after %d frames", ULA_FLASH_FRAMES)
	}

	for i := 0; i < ULA_FLASH_FRAMES; i++ {
		u.Tick()
	}
	if u.flashed() {
		t.Error("flashed() should toggle back to false after another full cycle")
	}
}
