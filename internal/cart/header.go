package cart

import (
	"bytes"
	"encoding/binary"
	"errors"
	"strings"
)

// ErrShortROM means the image ends before the cartridge header does.
var ErrShortROM = errors.New("cart: ROM too small to contain header")

// last byte of the header (global checksum low byte)
const headerEnd = 0x014F

var nintendoLogo = [48]byte{
	0xCE, 0xED, 0x66, 0x66, 0xCC, 0x0D, 0x00, 0x0B, 0x03, 0x73, 0x00, 0x83, 0x00, 0x0C, 0x00, 0x0D,
	0x00, 0x08, 0x11, 0x1F, 0x88, 0x89, 0x00, 0x0E, 0xDC, 0xCC, 0x6E, 0xE6, 0xDD, 0xDD, 0xD9, 0x99,
	0xBB, 0xBB, 0x67, 0x63, 0x6E, 0x0E, 0xEC, 0xCC, 0xDD, 0xDC, 0x99, 0x9F, 0xBB, 0xB9, 0x33, 0x3E,
}

// Mapper is the family of banking hardware named by the cartridge type byte.
type Mapper uint8

const (
	MapperNone Mapper = iota
	MapperMBC1
	MapperMBC2
	MapperMBC3
	MapperMBC5
	MapperOther
)

type Header struct {
	Title          string // trimmed ASCII, 0x0134-0x0143
	CGBFlag        byte   // 0x0143
	NewLicensee    string // 0x0144-0x0145, used when OldLicensee is 0x33
	SGBFlag        byte   // 0x0146
	CartType       byte   // 0x0147
	ROMSizeCode    byte   // 0x0148
	RAMSizeCode    byte   // 0x0149
	Destination    byte   // 0x014A
	OldLicensee    byte   // 0x014B
	ROMVersion     byte   // 0x014C
	HeaderChecksum byte   // 0x014D
	GlobalChecksum uint16 // 0x014E-0x014F

	// LogoOK is false for images without the boot logo, which many test
	// and homebrew ROMs omit.
	LogoOK bool

	// Decoded helpers for logs
	ROMSizeBytes int
	ROMBanks     int
	RAMSizeBytes int
	CartTypeStr  string
}

func ParseHeader(rom []byte) (*Header, error) {
	if len(rom) <= headerEnd {
		return nil, ErrShortROM
	}

	// the title overlaps the CGB flag on newer carts
	title := strings.TrimRight(string(rom[0x0134:0x0144]), "\x00")

	h := &Header{
		Title:          title,
		CGBFlag:        rom[0x0143],
		NewLicensee:    string(rom[0x0144:0x0146]),
		SGBFlag:        rom[0x0146],
		CartType:       rom[0x0147],
		ROMSizeCode:    rom[0x0148],
		RAMSizeCode:    rom[0x0149],
		Destination:    rom[0x014A],
		OldLicensee:    rom[0x014B],
		ROMVersion:     rom[0x014C],
		HeaderChecksum: rom[0x014D],
		GlobalChecksum: binary.BigEndian.Uint16(rom[0x014E:0x0150]),
		LogoOK:         bytes.Equal(rom[0x0104:0x0134], nintendoLogo[:]),
	}

	h.ROMSizeBytes, h.ROMBanks = decodeROMSize(h.ROMSizeCode)
	h.RAMSizeBytes = decodeRAMSize(h.RAMSizeCode)
	h.CartTypeStr = cartTypeString(h.CartType)

	return h, nil
}

// Mapper classifies CartType.
func (h *Header) Mapper() Mapper { return mapperOf(h.CartType) }

func mapperOf(code byte) Mapper {
	switch code {
	case 0x00, 0x08, 0x09:
		return MapperNone
	case 0x01, 0x02, 0x03:
		return MapperMBC1
	case 0x05, 0x06:
		return MapperMBC2
	case 0x0F, 0x10, 0x11, 0x12, 0x13:
		return MapperMBC3
	case 0x19, 0x1A, 0x1B, 0x1C, 0x1D, 0x1E:
		return MapperMBC5
	}
	return MapperOther
}

// HeaderChecksumOK checks the byte at 0x014D that the boot ROM verifies.
func HeaderChecksumOK(rom []byte) bool {
	if len(rom) < 0x014E {
		return false
	}
	var sum byte
	for addr := 0x0134; addr <= 0x014C; addr++ {
		sum = sum - rom[addr] - 1
	}
	return sum == rom[0x014D]
}

func decodeROMSize(code byte) (size, banks int) {
	switch code {
	case 0x52:
		return 1152 * 1024, 72
	case 0x53:
		return 1280 * 1024, 80
	case 0x54:
		return 1536 * 1024, 96
	}
	if code <= 0x08 {
		banks = 2 << code
		return banks * romBankSize, banks
	}
	return 0, 0
}

func decodeRAMSize(code byte) int {
	switch code {
	case 0x02:
		return 8 * 1024
	case 0x03:
		return 32 * 1024
	case 0x04:
		return 128 * 1024
	case 0x05:
		return 64 * 1024
	}
	return 0
}

var cartTypeNames = map[Mapper]string{
	MapperNone:  "ROM ONLY",
	MapperMBC1:  "MBC1 (variants)",
	MapperMBC2:  "MBC2 (variants)",
	MapperMBC3:  "MBC3 (variants)",
	MapperMBC5:  "MBC5 (variants)",
	MapperOther: "Other/unknown",
}

func cartTypeString(code byte) string {
	return cartTypeNames[mapperOf(code)]
}
