package session

// Status is the outcome of a session, used as the process exit code.
type Status int

const (
	// StatusOK means the session ran to completion as requested.
	StatusOK Status = 0
	// StatusSyntax means the configuration was rejected and nothing was done.
	StatusSyntax Status = 1
	// StatusDegraded means the session completed but deviated from the
	// request: input discarded, a size capped, a resize or dump failed.
	StatusDegraded Status = 2
)

// Merge combines two outcomes. The first non-OK status wins and is never
// replaced by a later one.
func (s Status) Merge(other Status) Status {
	if s != StatusOK {
		return s
	}
	return other
}

// degradedIf returns StatusDegraded when cond is true.
func degradedIf(cond bool) Status {
	if cond {
		return StatusDegraded
	}
	return StatusOK
}

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusSyntax:
		return "syntax"
	case StatusDegraded:
		return "degraded"
	default:
		return "unknown"
	}
}
