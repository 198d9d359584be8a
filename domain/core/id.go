package core

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ID represents a locally generated identifier
type ID string

// NewID creates a new unique identifier using UUID v7 for time-ordered generation
func NewID() ID {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return ID(id.String())
}

// String returns the string representation
func (id ID) String() string {
	return string(id)
}

// IsEmpty checks if the ID is empty
func (id ID) IsEmpty() bool {
	return id == ""
}

// Domain-specific ID types
type (
	// PolicyID is assigned by the catalog server and only ever echoed back.
	PolicyID string
	RunID    ID
)

func (id PolicyID) String() string { return string(id) }
func (id RunID) String() string    { return ID(id).String() }

// NewRunID creates an identifier for a stored simulation run
func NewRunID() RunID { return RunID(NewID()) }

// ParsePolicyID parses a route parameter into a PolicyID
func ParsePolicyID(s string) (PolicyID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("policy ID cannot be empty")
	}
	return PolicyID(s), nil
}

// ParseRunID parses a string into RunID
func ParseRunID(s string) (RunID, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("run ID cannot be empty")
	}
	if _, err := uuid.Parse(s); err != nil {
		return "", fmt.Errorf("run ID %q is not a UUID: %w", s, err)
	}
	return RunID(s), nil
}
