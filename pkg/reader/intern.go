package reader

import "unsafe"

// internTable holds whole lines that recur so often in GEDCOM files that
// sharing one copy of each saves a noticeable amount of memory.
var internTable = func() map[string]string {
	lines := []string{
		"3 DATA",
		"1 BIRT",
		"1 SEX M",
		"1 SEX F",
		"1 DEAT",
		"1 MARR",
		"1 BURI",
		"1 EVEN",
		"1 RESI",
	}
	m := make(map[string]string, len(lines))
	for _, l := range lines {
		m[l] = l
	}
	return m
}()

// Intern returns line as a string, reusing the canonical copy when the
// content is one of the common interned lines.
func Intern(line []byte) string {
	if s, ok := internTable[string(line)]; ok {
		return s
	}
	return string(line)
}

// Interned reports whether s is the canonical copy of an interned line,
// not merely equal to one.
func Interned(s string) bool {
	c, ok := internTable[s]
	return ok && unsafe.StringData(c) == unsafe.StringData(s)
}
