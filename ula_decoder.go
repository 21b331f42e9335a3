// ula_decoder.go - ZX Spectrum ULA video chip emulation

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
ula_decoder.go - ZX Spectrum ULA video decoding.

Decodes the bitmap+attribute VRAM living at 0x4000 in the Z80's own
address space into per-cell ink/paper/bright/flash state. There is no
compositor and no RGBA framebuffer here: the decoder hands cells to
terminal_renderer.go, which is the only consumer, and owns just the
border latch and the flash timer.
*/

package main

import "sync"

// ULADecoder decodes ZX Spectrum VRAM into display cells.
type ULADecoder struct {
	mu sync.Mutex

	border uint8

	flashState   bool
	flashCounter int

	// rowStartAddr precomputes the non-linear ZX Spectrum bitmap row
	// addressing, relative to ULA_VRAM_BASE, indexed by Y (0-191).
	rowStartAddr [ULA_DISPLAY_HEIGHT]uint16
}

// NewULADecoder builds a decoder with its address lookup table precomputed.
func NewULADecoder() *ULADecoder {
	u := &ULADecoder{}
	for y := range ULA_DISPLAY_HEIGHT {
		highY := (y & 0xC0) << 5 // top 2 bits of Y * 32
		lowY := (y & 0x07) << 8  // bottom 3 bits of Y * 256
		midY := (y & 0x38) << 2  // middle 3 bits of Y * 4
		u.rowStartAddr[y] = uint16(highY + lowY + midY)
	}
	return u
}

// SetBorder latches the border color from an OUT to port 0xFE (bits 0-2).
func (u *ULADecoder) SetBorder(value uint8) {
	u.mu.Lock()
	u.border = value & 0x07
	u.mu.Unlock()
}

// Border returns the current border color index (0-7).
func (u *ULADecoder) Border() uint8 {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.border
}

// Tick advances the flash timer by one video frame. Call once per frame
// at the emulator's ~50Hz refresh rate.
func (u *ULADecoder) Tick() {
	u.mu.Lock()
	u.flashCounter++
	if u.flashCounter >= ULA_FLASH_FRAMES {
		u.flashCounter = 0
		u.flashState = !u.flashState
	}
	u.mu.Unlock()
}

func (u *ULADecoder) flashed() bool {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.flashState
}

// GetBitmapAddress calculates the VRAM address for a pixel coordinate.
// The ZX Spectrum uses a peculiar non-linear addressing scheme:
// Address = ((y & 0xC0) << 5) + ((y & 0x07) << 8) + ((y & 0x38) << 2) + (x >> 3)
func (u *ULADecoder) GetBitmapAddress(y, x int) uint16 {
	highY := (y & 0xC0) << 5
	lowY := (y & 0x07) << 8
	midY := (y & 0x38) << 2
	xByte := x >> 3
	return uint16(highY + lowY + midY + xByte)
}

// GetAttributeAddress calculates the attribute address for a character cell.
// Attributes are stored linearly: row * 32 + column, starting at ULA_ATTR_OFFSET.
func (u *ULADecoder) GetAttributeAddress(cellY, cellX int) uint16 {
	return uint16(ULA_ATTR_OFFSET + cellY*ULA_CELLS_X + cellX)
}

// ParseAttribute extracts INK, PAPER, BRIGHT, and FLASH from an attribute byte.
func ParseAttribute(attr uint8) (ink, paper uint8, bright, flash bool) {
	ink = attr & 0x07           // Bits 0-2
	paper = (attr >> 3) & 0x07  // Bits 3-5
	bright = (attr & 0x40) != 0 // Bit 6
	flash = (attr & 0x80) != 0  // Bit 7
	return
}

// GetColor returns the RGB values for a color index with brightness.
func GetColor(colorIndex uint8, bright bool) (r, g, b uint8) {
	index := colorIndex & 0x07
	if bright {
		c := ULAColorBright[index]
		return c[0], c[1], c[2]
	}
	c := ULAColorNormal[index]
	return c[0], c[1], c[2]
}

// Cell is the decoded state of one 8x8 character cell: the eight bitmap
// rows that fall inside it, plus its resolved foreground/background colors
// with FLASH already applied for the current frame.
type Cell struct {
	Rows          [8]byte
	FgR, FgG, FgB uint8
	BgR, BgG, BgB uint8
}

// DecodeCell reads VRAM out of a 64KB RAM image (the bus's own memory
// array) and returns the fully decoded cell at character position
// (cellY, cellX) in the 32x24 grid.
func (u *ULADecoder) DecodeCell(vram *[0x10000]byte, cellY, cellX int) Cell {
	attrAddr := ULA_VRAM_BASE + u.GetAttributeAddress(cellY, cellX)
	attr := vram[attrAddr]
	ink, paper, bright, flash := ParseAttribute(attr)

	fg, bg := ink, paper
	if flash && u.flashed() {
		fg, bg = bg, fg
	}

	var cell Cell
	cell.FgR, cell.FgG, cell.FgB = GetColor(fg, bright)
	cell.BgR, cell.BgG, cell.BgB = GetColor(bg, bright)

	for row := 0; row < 8; row++ {
		y := cellY*8 + row
		addr := ULA_VRAM_BASE + u.rowStartAddr[y] + uint16(cellX)
		cell.Rows[row] = vram[addr]
	}
	return cell
}
