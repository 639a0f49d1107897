// Package guard wraps the system calls a render host exposes to custom view
// code, presenting each one to [rendersec.Check] first.
//
// Every wrapper takes the context of the calling thread. A denial is returned
// as the unmodified [*rendersec.DeniedError] and the underlying call is not
// made. Outside any sandbox the wrappers behave like their os, os/exec and
// time counterparts.
//
// [File] prefers memory-mapped I/O via [mmapfile], falling back to [os.File]
// when mmap is unavailable or unsuitable (append mode, or create/truncate
// without a size).
package guard
