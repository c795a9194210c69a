package encoding

import (
	"bytes"
	"unicode/utf8"

	"golang.org/x/text/transform"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// utf8Decoder validates UTF-8 and drops a leading byte-order mark.
type utf8Decoder struct {
	offset  int64
	started bool
}

func (d *utf8Decoder) Reset() {
	d.offset = 0
	d.started = false
}

func (d *utf8Decoder) Transform(dst, src []byte, atEOF bool) (nDst, nSrc int, err error) {
	if !d.started {
		if !atEOF && len(src) < len(utf8BOM) && bytes.HasPrefix(utf8BOM, src) {
			return 0, 0, transform.ErrShortSrc
		}
		if bytes.HasPrefix(src, utf8BOM) {
			nSrc = len(utf8BOM)
		}
		d.started = true
	}

	for nSrc < len(src) {
		c := src[nSrc]
		if c < utf8.RuneSelf {
			if nDst >= len(dst) {
				err = transform.ErrShortDst
				break
			}
			dst[nDst] = c
			nDst++
			nSrc++
			continue
		}

		if !utf8.FullRune(src[nSrc:]) {
			if !atEOF {
				err = transform.ErrShortSrc
				break
			}
			err = decodeError(UTF8, d.offset+int64(nSrc),
				"sequence starting with 0x%02X is truncated by end of input", c)
			break
		}

		r, size := utf8.DecodeRune(src[nSrc:])
		if r == utf8.RuneError && size == 1 {
			if c&0xC0 == 0x80 {
				err = decodeError(UTF8, d.offset+int64(nSrc), "continuation byte 0x%02X out of sequence", c)
			} else {
				err = decodeError(UTF8, d.offset+int64(nSrc), "invalid sequence starting with 0x%02X", c)
			}
			break
		}
		if nDst+size > len(dst) {
			err = transform.ErrShortDst
			break
		}
		nDst += copy(dst[nDst:], src[nSrc:nSrc+size])
		nSrc += size
	}
	d.offset += int64(nSrc)
	return nDst, nSrc, err
}
