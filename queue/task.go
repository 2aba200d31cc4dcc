package queue

import (
	"fmt"
	"time"

	"github.com/mageshboopath1/live-esg/core"
)

// Kind identifies which pipeline stage a task belongs to.
type Kind int

const (
	// KindEmbed is the chunk-embedding stage.
	KindEmbed Kind = iota + 1
	// KindExtract is the indicator-extraction stage.
	KindExtract
)

// Valid reports whether k names a known stage. The zero Kind is invalid so
// that uninitialized tasks are caught at the enqueue boundary.
func (k Kind) Valid() bool {
	return k == KindEmbed || k == KindExtract
}

func (k Kind) String() string {
	switch k {
	case KindEmbed:
		return "embed"
	case KindExtract:
		return "extract"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Payload carries the report tuple alongside the document key, so handlers
// and dead-letter listings can log context without a storage lookup.
type Payload struct {
	Company    string
	ReportYear int
}

// Task is one unit of stage work. Attempt state rides on the message:
// Attempts counts readiness deferrals and Failures counts executor errors.
// The two budgets are tracked separately and exhausting either dead-letters
// the task.
type Task struct {
	Kind        Kind
	DocumentKey core.ID
	Payload     Payload
	Attempts    int
	Failures    int
	EnqueuedAt  time.Time
}

// ValidateTask checks a task at the enqueue and deserialization boundaries.
// A task that fails validation never reaches a handler.
func ValidateTask(t *Task) error {
	if t == nil {
		return fmt.Errorf("%w: task is nil", ErrInvalidTask)
	}
	if !t.Kind.Valid() {
		return fmt.Errorf("%w: unknown kind %d", ErrInvalidTask, int(t.Kind))
	}
	if t.DocumentKey == 0 {
		return fmt.Errorf("%w: document key is zero", ErrInvalidTask)
	}
	if t.Payload.Company == "" {
		return fmt.Errorf("%w: %w", ErrInvalidTask, core.ErrEmptyCompany)
	}
	if err := core.ValidateReportYear(t.Payload.ReportYear); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidTask, err)
	}
	if t.Attempts < 0 || t.Failures < 0 {
		return fmt.Errorf("%w: negative attempt counter", ErrInvalidTask)
	}
	return nil
}
