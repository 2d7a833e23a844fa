package workflow

import "github.com/google/uuid"

// NewID generates a workflow identity. V7 ids are time-ordered, matching the
// convention used for message ids elsewhere in this codebase's lineage.
func NewID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// NewLogID generates a LogEntry identity.
func NewLogID() string {
	return uuid.New().String()
}
