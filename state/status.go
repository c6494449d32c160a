package state

// Status is the exhaustive result taxonomy for publisher operations.
// Transient failures of the shared dataset collaborator surface as Failed.
type Status int

const (
	StatusOk Status = iota
	StatusInvalidArgs
	StatusAlready
	StatusNoBufs
	StatusNotFound
	StatusInvalidState
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusOk:
		return "ok"
	case StatusInvalidArgs:
		return "invalid args"
	case StatusAlready:
		return "already"
	case StatusNoBufs:
		return "no bufs"
	case StatusNotFound:
		return "not found"
	case StatusInvalidState:
		return "invalid state"
	case StatusFailed:
		return "failed"
	}
	return "unknown status"
}

func (s Status) Error() string {
	return s.String()
}
