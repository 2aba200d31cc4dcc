package queue

import (
	"github.com/mageshboopath1/live-esg/core"
	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/varint"
)

// MUS serializers for queue records. Field order follows struct order,
// matching the domain serializers in core.

var (
	TaskMUS             = taskSer{}
	DeadLetteredTaskMUS = deadLetterSer{}
)

type taskSer struct{}

func (taskSer) Marshal(t Task, bs []byte) (n int) {
	n = varint.Int.Marshal(int(t.Kind), bs)
	n += core.IDMUS.Marshal(t.DocumentKey, bs[n:])
	n += ord.String.Marshal(t.Payload.Company, bs[n:])
	n += varint.Int.Marshal(t.Payload.ReportYear, bs[n:])
	n += varint.Int.Marshal(t.Attempts, bs[n:])
	n += varint.Int.Marshal(t.Failures, bs[n:])
	n += core.TimeMUS.Marshal(t.EnqueuedAt, bs[n:])
	return n
}

func (taskSer) Unmarshal(bs []byte) (t Task, n int, err error) {
	var n1 int
	var kind int
	if kind, n, err = varint.Int.Unmarshal(bs); err != nil {
		return t, n, err
	}
	t.Kind = Kind(kind)
	if t.DocumentKey, n1, err = core.IDMUS.Unmarshal(bs[n:]); err != nil {
		return t, n + n1, err
	}
	n += n1
	if t.Payload.Company, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return t, n + n1, err
	}
	n += n1
	if t.Payload.ReportYear, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return t, n + n1, err
	}
	n += n1
	if t.Attempts, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return t, n + n1, err
	}
	n += n1
	if t.Failures, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return t, n + n1, err
	}
	n += n1
	if t.EnqueuedAt, n1, err = core.TimeMUS.Unmarshal(bs[n:]); err != nil {
		return t, n + n1, err
	}
	n += n1
	return t, n, nil
}

func (taskSer) Size(t Task) (size int) {
	size = varint.Int.Size(int(t.Kind))
	size += core.IDMUS.Size(t.DocumentKey)
	size += ord.String.Size(t.Payload.Company)
	size += varint.Int.Size(t.Payload.ReportYear)
	size += varint.Int.Size(t.Attempts)
	size += varint.Int.Size(t.Failures)
	size += core.TimeMUS.Size(t.EnqueuedAt)
	return size
}

type deadLetterSer struct{}

func (deadLetterSer) Marshal(d DeadLetteredTask, bs []byte) (n int) {
	n = TaskMUS.Marshal(d.Task, bs)
	n += ord.String.Marshal(d.Reason, bs[n:])
	n += core.ReadinessMUS.Marshal(d.Readiness, bs[n:])
	n += core.TimeMUS.Marshal(d.DeadAt, bs[n:])
	return n
}

func (deadLetterSer) Unmarshal(bs []byte) (d DeadLetteredTask, n int, err error) {
	var n1 int
	if d.Task, n, err = TaskMUS.Unmarshal(bs); err != nil {
		return d, n, err
	}
	if d.Reason, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return d, n + n1, err
	}
	n += n1
	if d.Readiness, n1, err = core.ReadinessMUS.Unmarshal(bs[n:]); err != nil {
		return d, n + n1, err
	}
	n += n1
	if d.DeadAt, n1, err = core.TimeMUS.Unmarshal(bs[n:]); err != nil {
		return d, n + n1, err
	}
	n += n1
	return d, n, nil
}

func (deadLetterSer) Size(d DeadLetteredTask) (size int) {
	size = TaskMUS.Size(d.Task)
	size += ord.String.Size(d.Reason)
	size += core.ReadinessMUS.Size(d.Readiness)
	size += core.TimeMUS.Size(d.DeadAt)
	return size
}

// MarshalTask serializes a Task to bytes.
func MarshalTask(t *Task) []byte {
	buf := make([]byte, TaskMUS.Size(*t))
	TaskMUS.Marshal(*t, buf)
	return buf
}

// UnmarshalTask deserializes and validates a Task from bytes. Malformed or
// invalid tasks are rejected here, before they can reach a handler.
func UnmarshalTask(data []byte) (*Task, error) {
	t, _, err := TaskMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	if err := ValidateTask(&t); err != nil {
		return nil, err
	}
	return &t, nil
}

// MarshalDeadLetter serializes a DeadLetteredTask to bytes.
func MarshalDeadLetter(d *DeadLetteredTask) []byte {
	buf := make([]byte, DeadLetteredTaskMUS.Size(*d))
	DeadLetteredTaskMUS.Marshal(*d, buf)
	return buf
}

// UnmarshalDeadLetter deserializes a DeadLetteredTask from bytes.
func UnmarshalDeadLetter(data []byte) (*DeadLetteredTask, error) {
	d, _, err := DeadLetteredTaskMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &d, nil
}
