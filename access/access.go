// nolint
//go:build linux
// +build linux

package access

import "github.com/landlock-lsm/go-landlock/landlock/syscall"

// FS represents filesystem access rights requested by a file operation.
//
// The bit layout is shared with Landlock so the same set can describe both a
// checkpoint request and a kernel rule.
type FS uint64

const (
	// FS_EXECUTE requests executing a file.
	FS_EXECUTE FS = syscall.AccessFSExecute

	// FS_READ requests reading file contents or directory entries.
	FS_READ FS = syscall.AccessFSReadFile | syscall.AccessFSReadDir

	// FS_READ_EXEC requests reading and executing files.
	FS_READ_EXEC FS = FS_READ | FS_EXECUTE

	// FS_WRITE requests creating, modifying or truncating filesystem entries.
	FS_WRITE FS = syscall.AccessFSWriteFile | syscall.AccessFSTruncate | syscall.AccessFSIoctlDev |
		syscall.AccessFSMakeChar | syscall.AccessFSMakeDir | syscall.AccessFSMakeReg | syscall.AccessFSMakeSock |
		syscall.AccessFSMakeFifo | syscall.AccessFSMakeBlock | syscall.AccessFSMakeSym |
		syscall.AccessFSRefer

	// FS_REMOVE requests deleting files or directories.
	FS_REMOVE FS = syscall.AccessFSRemoveDir | syscall.AccessFSRemoveFile

	// FS_READ_WRITE requests read and write access without execute.
	FS_READ_WRITE FS = FS_READ | FS_WRITE

	fsCreate FS = syscall.AccessFSMakeReg
)
