package encoding

import (
	"unicode/utf8"

	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// anselTable maps each ANSEL byte to a rune. Bytes below 0x80 are ASCII
// and never looked up here; a zero entry marks an undefined byte.
var anselTable = [256]rune{
	0x8D: 0x200D, // zero width joiner
	0x8E: 0x200C, // zero width non-joiner

	0xA1: 0x0141, // Ł
	0xA2: 0x00D8, // Ø
	0xA3: 0x0110, // Đ
	0xA4: 0x00DE, // Þ
	0xA5: 0x00C6, // Æ
	0xA6: 0x0152, // Œ
	0xA7: 0x02B9, // modifier letter prime
	0xA8: 0x00B7, // middle dot
	0xA9: 0x266D, // music flat sign
	0xAA: 0x00AE, // ®
	0xAB: 0x00B1, // ±
	0xAC: 0x01A0, // Ơ
	0xAD: 0x01AF, // Ư
	0xAE: 0x02BC, // modifier letter apostrophe
	0xB0: 0x02BB, // modifier letter turned comma
	0xB1: 0x0142, // ł
	0xB2: 0x00F8, // ø
	0xB3: 0x0111, // đ
	0xB4: 0x00FE, // þ
	0xB5: 0x00E6, // æ
	0xB6: 0x0153, // œ
	0xB7: 0x02BA, // modifier letter double prime
	0xB8: 0x0131, // dotless i
	0xB9: 0x00A3, // £
	0xBA: 0x00F0, // ð
	0xBC: 0x01A1, // ơ
	0xBD: 0x01B0, // ư
	0xBE: 0x25A1, // empty box (GEDCOM)
	0xBF: 0x25A0, // black box (GEDCOM)
	0xC0: 0x00B0, // °
	0xC1: 0x2113, // script small l
	0xC2: 0x2117, // sound recording copyright
	0xC3: 0x00A9, // ©
	0xC4: 0x266F, // music sharp sign
	0xC5: 0x00BF, // ¿
	0xC6: 0x00A1, // ¡
	0xC7: 0x00DF, // ß
	0xC8: 0x20AC, // €
	0xCD: 0x0065, // midline e (GEDCOM)
	0xCE: 0x006F, // midline o (GEDCOM)
	0xCF: 0x00DF, // ß (GEDCOM)

	// Non-spacing diacritics. These precede the character they modify.
	0xE0: 0x0309, // hook above
	0xE1: 0x0300, // grave
	0xE2: 0x0301, // acute
	0xE3: 0x0302, // circumflex
	0xE4: 0x0303, // tilde
	0xE5: 0x0304, // macron
	0xE6: 0x0306, // breve
	0xE7: 0x0307, // dot above
	0xE8: 0x0308, // diaeresis
	0xE9: 0x030C, // caron
	0xEA: 0x030A, // ring above
	0xEB: 0xFE20, // ligature left half
	0xEC: 0xFE21, // ligature right half
	0xED: 0x0315, // comma above right
	0xEE: 0x030B, // double acute
	0xEF: 0x0310, // candrabindu
	0xF0: 0x0327, // cedilla
	0xF1: 0x0328, // ogonek
	0xF2: 0x0323, // dot below
	0xF3: 0x0324, // diaeresis below
	0xF4: 0x0325, // ring below
	0xF5: 0x0333, // double low line
	0xF6: 0x0332, // low line
	0xF7: 0x0326, // comma below
	0xF8: 0x031C, // left half ring below
	0xF9: 0x032E, // breve below
	0xFA: 0xFE22, // double tilde left half
	0xFB: 0xFE23, // double tilde right half
	0xFE: 0x0313, // comma above
}

func isANSELDiacritic(c byte) bool {
	return c >= 0xE0 && anselTable[c] != 0
}

// anselDecoder decodes ANSEL. pending holds the diacritic waiting for
// its base character; zero means none is pending.
type anselDecoder struct {
	offset  int64
	pending rune

	// pendingAt is the stream offset of the pending diacritic byte.
	pendingAt int64

	// pendingBreak is the last line break byte seen while a diacritic
	// was pending, or 0.
	pendingBreak byte

	scratch [16]byte
}

func (d *anselDecoder) Reset() {
	d.offset = 0
	d.pending = 0
	d.pendingAt = 0
	d.pendingBreak = 0
}

func (d *anselDecoder) Transform(dst, src []byte, atEOF bool) (nDst, nSrc int, err error) {
	for nSrc < len(src) {
		c := src[nSrc]

		var r rune
		switch {
		case c == '\r' || c == '\n':
			// A diacritic before a line break applies to the first
			// character of the next line, but only across one break.
			if d.pending != 0 && d.pendingBreak != 0 && !(d.pendingBreak == '\r' && c == '\n') {
				return nDst, nSrc, d.advance(nSrc, decodeError(ANSEL, d.offset+int64(nSrc),
					"diacritic U+%04X carried across more than one line break", d.pending))
			}
			if nDst >= len(dst) {
				return nDst, nSrc, d.advance(nSrc, transform.ErrShortDst)
			}
			dst[nDst] = c
			nDst++
			nSrc++
			if d.pending != 0 {
				d.pendingBreak = c
			}
			continue
		case c < utf8.RuneSelf:
			r = rune(c)
		case isANSELDiacritic(c):
			if d.pending != 0 {
				return nDst, nSrc, d.advance(nSrc, decodeError(ANSEL, d.offset+int64(nSrc),
					"diacritic 0x%02X follows another diacritic with no base character between them", c))
			}
			d.pending = anselTable[c]
			d.pendingAt = d.offset + int64(nSrc)
			nSrc++
			continue
		default:
			r = anselTable[c]
			if r == 0 {
				return nDst, nSrc, d.advance(nSrc, decodeError(ANSEL, d.offset+int64(nSrc),
					"byte 0x%02X is not defined in ANSEL", c))
			}
		}

		out := d.emit(r)
		if nDst+len(out) > len(dst) {
			return nDst, nSrc, d.advance(nSrc, transform.ErrShortDst)
		}
		nDst += copy(dst[nDst:], out)
		nSrc++
		d.pending = 0
		d.pendingBreak = 0
	}

	if atEOF && d.pending != 0 {
		return nDst, nSrc, d.advance(nSrc, decodeError(ANSEL, d.pendingAt,
			"diacritic U+%04X at end of input has no base character", d.pending))
	}
	return nDst, nSrc, d.advance(nSrc, nil)
}

// emit encodes r, composed with the pending diacritic if there is one.
// The result aliases d.scratch and is only valid until the next call.
func (d *anselDecoder) emit(r rune) []byte {
	n := utf8.EncodeRune(d.scratch[:], r)
	if d.pending == 0 {
		return d.scratch[:n]
	}
	var pair [2 * utf8.UTFMax]byte
	copy(pair[:], d.scratch[:n])
	n += utf8.EncodeRune(pair[n:], d.pending)
	return norm.NFC.Append(d.scratch[:0], pair[:n]...)
}

func (d *anselDecoder) advance(nSrc int, err error) error {
	d.offset += int64(nSrc)
	return err
}
