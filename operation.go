package rendersec

import "go.dw1.io/x/exp/rendersec/access"

// Operation is a request presented to [Check]. The set of operations is
// closed; see the types below.
type Operation interface {
	operation()
}

// FileAccess requests Rights on Path.
type FileAccess struct {
	Path   string
	Rights access.FS
}

// Exec requests spawning an external program.
type Exec struct {
	Command string
}

// LoadLibrary requests loading a dynamic library by name or path.
type LoadLibrary struct {
	Name string
}

// SetProperty requests writing a single process property (environment
// variable or host setting).
type SetProperty struct {
	Key string
}

// ReadProperties requests reading every process property at once.
type ReadProperties struct{}

// SetTimezone requests changing the process default timezone.
type SetTimezone struct {
	Name string
}

// Exit requests terminating the process.
type Exit struct {
	Code int
}

// ReplaceInterceptor requests replacing or inspecting the process-wide
// interceptor outside the activation protocol.
type ReplaceInterceptor struct{}

// Reflect requests bypassing access control through reflection or unsafe.
type Reflect struct {
	Target string
}

// ThreadControl requests stopping, interrupting or reconfiguring a thread.
type ThreadControl struct {
	Target string
}

func (FileAccess) operation()         {}
func (Exec) operation()               {}
func (LoadLibrary) operation()        {}
func (SetProperty) operation()        {}
func (ReadProperties) operation()     {}
func (SetTimezone) operation()        {}
func (Exit) operation()               {}
func (ReplaceInterceptor) operation() {}
func (Reflect) operation()            {}
func (ThreadControl) operation()      {}
