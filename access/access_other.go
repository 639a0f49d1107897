// nolint
//go:build !linux
// +build !linux

package access

// Landlock is Linux-only; the bit values below mirror its ABI so FS keeps the
// same layout on every platform.

// FS represents filesystem access rights requested by a file operation.
type FS uint64

const (
	fsExecute FS = 1 << iota
	fsWriteFile
	fsReadFile
	fsReadDir
	fsRemoveDir
	fsRemoveFile
	fsMakeChar
	fsMakeDir
	fsMakeReg
	fsMakeSock
	fsMakeFifo
	fsMakeBlock
	fsMakeSym
	fsRefer
	fsTruncate
	fsIoctlDev
)

const (
	// FS_EXECUTE requests executing a file.
	FS_EXECUTE FS = fsExecute

	// FS_READ requests reading file contents or directory entries.
	FS_READ FS = fsReadFile | fsReadDir

	// FS_READ_EXEC requests reading and executing files.
	FS_READ_EXEC FS = FS_READ | FS_EXECUTE

	// FS_WRITE requests creating, modifying or truncating filesystem entries.
	FS_WRITE FS = fsWriteFile | fsTruncate | fsIoctlDev | fsMakeChar | fsMakeDir | fsMakeReg |
		fsMakeSock | fsMakeFifo | fsMakeBlock | fsMakeSym | fsRefer

	// FS_REMOVE requests deleting files or directories.
	FS_REMOVE FS = fsRemoveDir | fsRemoveFile

	// FS_READ_WRITE requests read and write access without execute.
	FS_READ_WRITE FS = FS_READ | FS_WRITE

	fsCreate FS = fsMakeReg
)
