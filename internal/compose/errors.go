package compose

import "fmt"

type ErrorKind string

// SubmitFailed means the remote collaborator rejected a write.
const SubmitFailed ErrorKind = "SubmitFailed"

type SubmitError struct {
	Kind     ErrorKind
	Entry    EntryKind
	TargetID string
	Err      error
}

func (e *SubmitError) Error() string {
	if e.Entry == EntryReply {
		return fmt.Sprintf("reply to %s failed: %v", e.TargetID, e.Err)
	}
	return fmt.Sprintf("%s failed: %v", e.Entry, e.Err)
}

func (e *SubmitError) Unwrap() error { return e.Err }
