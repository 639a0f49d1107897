// Package logging adapts structured loggers and metrics to
// [rendersec.Logger].
//
// The sandbox reports two kinds of events: denials, whose error is a
// [*rendersec.DeniedError], and displacement, whose error is
// [rendersec.ErrDisplaced].
package logging
