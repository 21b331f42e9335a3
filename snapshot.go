// snapshot.go - .z80 snapshot decoder/encoder (versions 1, 2, and 3).

package main

import "fmt"

// z80Parser wraps a raw .z80 file with bounds-checked accessors, the same
// shape ay_z80_parser.go uses for its own binary formats.
type z80Parser struct {
	data []byte
}

func (p *z80Parser) readU8(offset int) byte {
	if offset < 0 || offset >= len(p.data) {
		return 0
	}
	return p.data[offset]
}

func (p *z80Parser) readU16(offset int) uint16 {
	if offset < 0 || offset+1 >= len(p.data) {
		return 0
	}
	return uint16(p.data[offset]) | uint16(p.data[offset+1])<<8
}

// Snapshot is the decoded state of a .z80 file: CPU registers plus a fully
// expanded 48K RAM image ready to load at 0x4000.
type Snapshot struct {
	A, F, B, C, D, E, H, L       byte
	A2, F2, B2, C2, D2, E2, H2, L2 byte
	IX, IY                       uint16
	SP, PC                       uint16
	I, R                         byte
	IFF1, IFF2                   bool
	IM                           byte
	Border                       byte
	RAM                          [0xC000]byte // 0x4000-0xFFFF, 48K
}

const (
	z80HeaderV1Size = 30
	z80EndMarker    = 0x00
	z80EscByte      = 0xED
)

// LoadSnapshot decodes a .z80 v1, v2, or v3 file.
func LoadSnapshot(raw []byte) (*Snapshot, error) {
	if len(raw) < z80HeaderV1Size {
		return nil, fmt.Errorf("z80 snapshot: file too short for header (%d bytes)", len(raw))
	}
	p := &z80Parser{data: raw}
	snap := &Snapshot{}

	snap.A = p.readU8(0)
	snap.F = p.readU8(1)
	snap.C = p.readU8(2)
	snap.B = p.readU8(3)
	snap.L = p.readU8(4)
	snap.H = p.readU8(5)
	pc := p.readU16(6)
	snap.SP = p.readU16(8)
	snap.I = p.readU8(10)
	rLow := p.readU8(11)
	flags1 := p.readU8(12)
	if flags1 == 0xFF {
		flags1 = 1
	}
	snap.R = (rLow & 0x7F) | (flags1&0x01)<<7
	snap.Border = (flags1 >> 1) & 0x07
	compressed := flags1&0x20 != 0

	snap.E = p.readU8(13)
	snap.D = p.readU8(14)
	snap.C2 = p.readU8(15)
	snap.B2 = p.readU8(16)
	snap.E2 = p.readU8(17)
	snap.D2 = p.readU8(18)
	snap.L2 = p.readU8(19)
	snap.H2 = p.readU8(20)
	snap.A2 = p.readU8(21)
	snap.F2 = p.readU8(22)
	snap.IY = p.readU16(23)
	snap.IX = p.readU16(25)
	iff1 := p.readU8(27)
	iff2 := p.readU8(28)
	snap.IFF1 = iff1 != 0
	snap.IFF2 = iff2 != 0
	snap.IM = p.readU8(29) & 0x03

	if pc != 0 {
		// v1: PC is valid here and the rest of the file is one RAM block.
		snap.PC = pc
		body := raw[z80HeaderV1Size:]
		if compressed {
			if err := decompressZ80Block(body, snap.RAM[:]); err != nil {
				return nil, fmt.Errorf("z80 snapshot: %w", err)
			}
		} else {
			if len(body) < len(snap.RAM) {
				return nil, fmt.Errorf("z80 snapshot: uncompressed body too short (%d bytes)", len(body))
			}
			copy(snap.RAM[:], body)
		}
		return snap, nil
	}

	// v2/v3: an extended header follows, then page-tagged memory blocks.
	extLen := int(p.readU16(30))
	if extLen == 0 {
		return nil, fmt.Errorf("z80 snapshot: zero-length extended header")
	}
	extStart := 32
	if extStart+extLen > len(raw) {
		return nil, fmt.Errorf("z80 snapshot: extended header runs past end of file")
	}
	snap.PC = p.readU16(32)

	pageStart := extStart + extLen
	for pageStart+3 <= len(raw) {
		blockLen := int(p.readU16(pageStart))
		pageNum := p.readU8(pageStart + 2)
		pageStart += 3

		var dest []byte
		switch pageNum {
		case 4:
			dest = snap.RAM[0x4000:0x8000]
		case 5:
			dest = snap.RAM[0x8000:0xC000]
		case 8:
			dest = snap.RAM[0x0000:0x4000]
		default:
			// Other pages belong to 128K paged memory, out of scope for a
			// 48K-only snapshot; skip the block.
			if blockLen == 0xFFFF {
				pageStart += 0x4000
			} else {
				pageStart += blockLen
			}
			continue
		}

		if blockLen == 0xFFFF {
			if pageStart+0x4000 > len(raw) {
				return nil, fmt.Errorf("z80 snapshot: uncompressed page %d truncated", pageNum)
			}
			copy(dest, raw[pageStart:pageStart+0x4000])
			pageStart += 0x4000
			continue
		}
		if pageStart+blockLen > len(raw) {
			return nil, fmt.Errorf("z80 snapshot: page %d block truncated", pageNum)
		}
		if err := decompressZ80Block(raw[pageStart:pageStart+blockLen], dest); err != nil {
			return nil, fmt.Errorf("z80 snapshot: page %d: %w", pageNum, err)
		}
		pageStart += blockLen
	}

	return snap, nil
}

// decompressZ80Block expands the `ED ED n b` repeat-run RLE scheme used by
// .z80 memory blocks into dest, stopping either at the `00 ED ED 00` v1 end
// marker or when dest is full (v2/v3 single-page blocks carry no marker).
func decompressZ80Block(src []byte, dest []byte) error {
	si, di := 0, 0
	for si < len(src) && di < len(dest) {
		if src[si] == z80EndMarker && si+3 < len(src) && src[si+1] == z80EscByte &&
			src[si+2] == z80EscByte && src[si+3] == z80EndMarker {
			return nil
		}
		if src[si] == z80EscByte && si+1 < len(src) && src[si+1] == z80EscByte {
			if si+3 >= len(src) {
				return fmt.Errorf("RLE escape truncated at offset %d", si)
			}
			count := int(src[si+2])
			value := src[si+3]
			if di+count > len(dest) {
				return fmt.Errorf("RLE run overflows destination at offset %d", si)
			}
			for i := 0; i < count; i++ {
				dest[di] = value
				di++
			}
			si += 4
			continue
		}
		dest[di] = src[si]
		di++
		si++
	}
	return nil
}

// compressZ80Block RLE-encodes src (a full memory page) using the same
// `ED ED n b` scheme, run-length-encoding any repeat of 5 or more identical
// bytes and always escaping literal 0xED bytes so they can't be mistaken
// for the start of a run on decode.
func compressZ80Block(src []byte) []byte {
	var out []byte
	i := 0
	for i < len(src) {
		b := src[i]
		runLen := 1
		for i+runLen < len(src) && src[i+runLen] == b && runLen < 255 {
			runLen++
		}
		if runLen >= 5 || b == z80EscByte {
			out = append(out, z80EscByte, z80EscByte, byte(runLen), b)
			i += runLen
			continue
		}
		out = append(out, b)
		i++
	}
	return out
}

// SaveSnapshotV1 encodes a Snapshot as a v1 .z80 file: the 30-byte header
// followed by one RLE-compressed 48K memory block terminated by the v1 end
// marker. A snapshot whose PC is genuinely 0x0000 cannot round-trip through
// this format - the real .z80 spec overloads PC==0 in the header to mean
// "this is actually a v2/v3 file", a limitation of the format itself.
func SaveSnapshotV1(snap *Snapshot) []byte {
	header := make([]byte, z80HeaderV1Size)
	header[0] = snap.A
	header[1] = snap.F
	header[2] = snap.C
	header[3] = snap.B
	header[4] = snap.L
	header[5] = snap.H
	header[6], header[7] = byte(snap.PC), byte(snap.PC>>8)
	header[8], header[9] = byte(snap.SP), byte(snap.SP>>8)
	header[10] = snap.I
	header[11] = snap.R & 0x7F

	flags1 := (snap.Border & 0x07) << 1
	flags1 |= 0x20 // always write the compressed memory block
	flags1 |= (snap.R >> 7) & 0x01
	header[12] = flags1

	header[13] = snap.E
	header[14] = snap.D
	header[15] = snap.C2
	header[16] = snap.B2
	header[17] = snap.E2
	header[18] = snap.D2
	header[19] = snap.L2
	header[20] = snap.H2
	header[21] = snap.A2
	header[22] = snap.F2
	header[23], header[24] = byte(snap.IY), byte(snap.IY>>8)
	header[25], header[26] = byte(snap.IX), byte(snap.IX>>8)
	if snap.IFF1 {
		header[27] = 1
	}
	if snap.IFF2 {
		header[28] = 1
	}
	header[29] = snap.IM & 0x03

	body := compressZ80Block(snap.RAM[:])
	body = append(body, 0x00, z80EscByte, z80EscByte, 0x00)

	return append(header, body...)
}
