package encoding

import (
	"unicode/utf8"

	"golang.org/x/text/transform"
)

// asciiDecoder passes 7-bit bytes through unchanged.
type asciiDecoder struct {
	offset int64
}

func (d *asciiDecoder) Reset() {
	d.offset = 0
}

func (d *asciiDecoder) Transform(dst, src []byte, atEOF bool) (nDst, nSrc int, err error) {
	for nSrc < len(src) {
		c := src[nSrc]
		if c >= utf8.RuneSelf {
			err = decodeError(ASCII, d.offset+int64(nSrc), "byte 0x%02X has the high bit set", c)
			break
		}
		if nDst >= len(dst) {
			err = transform.ErrShortDst
			break
		}
		dst[nDst] = c
		nDst++
		nSrc++
	}
	d.offset += int64(nSrc)
	return nDst, nSrc, err
}
