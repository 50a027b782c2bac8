// Package worker runs blocking work off the caller's goroutine.
//
// A Pool bounds how many tasks execute at once. Submit hands back a Task the
// caller can wait on; panics inside a task are recovered and reported as
// errors wrapping ErrPanicked so a misbehaving collaborator cannot take down
// the RPC reader.
package worker
