// Package access defines the typed filesystem access rights carried by
// rendersec file operations.
//
// The constants share Landlock's bit layout (taken from go-landlock on Linux)
// so a request can be described with the same vocabulary a kernel rule would
// use. Any right outside FS_READ is treated as a write by the classifier.
package access
