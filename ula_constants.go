// ula_constants.go - ZX Spectrum ULA register addresses and constants

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

/*
ula_constants.go - ZX Spectrum ULA video chip constants.

Resolution: 256x192 pixels, 32x24 character cells of 8x8 pixels. VRAM is
6144 bytes of bitmap plus 768 bytes of attributes, both living in the
CPU's normal 64KB address space at 0x4000 - there is no separate bus or
register space; port 0xFE is the ULA's only I/O-mapped surface.

Attribute byte format:
  Bit 7: FLASH (swap INK/PAPER when set, toggles at ~1.6Hz)
  Bit 6: BRIGHT (intensify both INK and PAPER)
  Bits 5-3: PAPER (background color, 0-7)
  Bits 2-0: INK (foreground color, 0-7)
*/

package main

const (
	// VRAM base address within the 64KB Z80 address space.
	ULA_VRAM_BASE = 0x4000

	// Bitmap section: 6144 bytes (256x192 pixels / 8 bits per byte)
	ULA_BITMAP_SIZE = 6144

	// Attribute section offset from VRAM base
	ULA_ATTR_OFFSET = 0x1800

	// Attribute section: 768 bytes (32x24 cells)
	ULA_ATTR_SIZE = 768

	// Total VRAM size
	ULA_VRAM_SIZE = ULA_BITMAP_SIZE + ULA_ATTR_SIZE // 6912 bytes
)

const (
	ULA_DISPLAY_WIDTH  = 256
	ULA_DISPLAY_HEIGHT = 192

	ULA_CELL_WIDTH  = 8
	ULA_CELL_HEIGHT = 8
	ULA_CELLS_X     = 32 // 256 / 8
	ULA_CELLS_Y     = 24 // 192 / 8
)

const (
	// Flash toggle interval (in frames at 50Hz refresh)
	ULA_FLASH_FRAMES = 32
)

// Z80_ULA_PORT is the authentic Spectrum I/O port: writing sets bits 0-2
// (border color), bit 3 (MIC) and bit 4 (speaker); reading returns the
// keyboard row selected by the high address byte in bits 0-4, EAR input in
// bit 6.
const Z80_ULA_PORT = 0xFE

// Normal colors (RGB values when BRIGHT bit is 0)
var ULAColorNormal = [8][3]uint8{
	{0, 0, 0},       // 0: Black
	{0, 0, 205},     // 1: Blue
	{205, 0, 0},     // 2: Red
	{205, 0, 205},   // 3: Magenta
	{0, 205, 0},     // 4: Green
	{0, 205, 205},   // 5: Cyan
	{205, 205, 0},   // 6: Yellow
	{205, 205, 205}, // 7: White
}

// Bright colors (RGB values when BRIGHT bit is 1)
var ULAColorBright = [8][3]uint8{
	{0, 0, 0},       // 0: Black (same, can't brighten)
	{0, 0, 255},     // 1: Bright Blue
	{255, 0, 0},     // 2: Bright Red
	{255, 0, 255},   // 3: Bright Magenta
	{0, 255, 0},     // 4: Bright Green
	{0, 255, 255},   // 5: Bright Cyan
	{255, 255, 0},   // 6: Bright Yellow
	{255, 255, 255}, // 7: Bright White
}
