package access

import (
	"os"
	"strings"
)

// Writes reports whether rs requests anything beyond reading, i.e. writing,
// removing or executing.
func (rs FS) Writes() bool {
	return rs&^FS_READ != 0
}

// FromFlag maps [os.OpenFile] flags to the access rights the open requests.
func FromFlag(flag int) FS {
	var rs FS

	switch flag & (os.O_RDONLY | os.O_WRONLY | os.O_RDWR) {
	case os.O_WRONLY:
		rs = FS_WRITE
	case os.O_RDWR:
		rs = FS_READ_WRITE
	default:
		rs = FS_READ
	}

	if flag&os.O_CREATE != 0 {
		rs |= fsCreate
	}

	if flag&(os.O_TRUNC|os.O_APPEND) != 0 {
		rs |= FS_WRITE
	}

	return rs
}

// String lists the right groups present in rs, e.g. "read,write".
func (rs FS) String() string {
	if rs == 0 {
		return "none"
	}

	var parts []string
	if rs&FS_READ != 0 {
		parts = append(parts, "read")
	}

	if rs&FS_WRITE != 0 {
		parts = append(parts, "write")
	}

	if rs&FS_REMOVE != 0 {
		parts = append(parts, "remove")
	}

	if rs&FS_EXECUTE != 0 {
		parts = append(parts, "execute")
	}

	return strings.Join(parts, ",")
}
