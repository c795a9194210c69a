package encoding

import (
	"unicode/utf16"
	"unicode/utf8"

	"golang.org/x/text/transform"
)

const (
	byteOrderMark     = 0xFEFF
	reversedOrderMark = 0xFFFE
)

// utf16Decoder decodes two-byte code units of a fixed byte order. The
// order is chosen at construction and never renegotiated by the stream.
type utf16Decoder struct {
	enc       Encoding
	bigEndian bool
	offset    int64
	started   bool
}

func (d *utf16Decoder) Reset() {
	d.offset = 0
	d.started = false
}

func (d *utf16Decoder) unit(p []byte) rune {
	if d.bigEndian {
		return rune(p[0])<<8 | rune(p[1])
	}
	return rune(p[1])<<8 | rune(p[0])
}

func (d *utf16Decoder) Transform(dst, src []byte, atEOF bool) (nDst, nSrc int, err error) {
	if !d.started {
		if len(src) < 2 && !atEOF {
			return 0, 0, transform.ErrShortSrc
		}
		if len(src) >= 2 {
			switch d.unit(src) {
			case byteOrderMark:
				nSrc = 2
			case reversedOrderMark:
				d.started = true
				return 0, 0, decodeError(d.enc, d.offset, "byte-order mark is for the opposite endianness")
			}
		}
		d.started = true
	}

	for nSrc < len(src) {
		if len(src)-nSrc < 2 {
			if !atEOF {
				err = transform.ErrShortSrc
				break
			}
			err = decodeError(d.enc, d.offset+int64(nSrc), "lone trailing byte 0x%02X", src[nSrc])
			break
		}

		r := d.unit(src[nSrc:])
		size := 2
		if utf16.IsSurrogate(r) {
			if r >= 0xDC00 {
				err = decodeError(d.enc, d.offset+int64(nSrc), "unpaired low surrogate U+%04X", r)
				break
			}
			if len(src)-nSrc < 4 {
				if !atEOF {
					err = transform.ErrShortSrc
					break
				}
				err = decodeError(d.enc, d.offset+int64(nSrc), "high surrogate U+%04X at end of input", r)
				break
			}
			low := d.unit(src[nSrc+2:])
			if low < 0xDC00 || low > 0xDFFF {
				err = decodeError(d.enc, d.offset+int64(nSrc), "high surrogate U+%04X not followed by a low surrogate", r)
				break
			}
			r = utf16.DecodeRune(r, low)
			size = 4
		}

		if nDst+utf8.RuneLen(r) > len(dst) {
			err = transform.ErrShortDst
			break
		}
		nDst += utf8.EncodeRune(dst[nDst:], r)
		nSrc += size
	}
	d.offset += int64(nSrc)
	return nDst, nSrc, err
}
