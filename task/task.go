package task

import (
	"github.com/google/uuid"
)

type Kind string

const (
	KindTranscode Kind = "transcode"
	KindCopy      Kind = "copy"
)

type Category string

const (
	CategoryImage Category = "image"
	CategoryFont  Category = "font"
)

// Task describes one unit of work. It is immutable once built by the
// scanner; workers only read it.
type Task struct {
	ID            uuid.UUID
	Kind          Kind
	Category      Category
	SourcePath    string
	TargetPath    string
	Quality       int
	PreserveAlpha bool
}

// Outcome is created exactly once, by the worker that executed the task.
type Outcome struct {
	TaskID      uuid.UUID
	Kind        Kind
	SourcePath  string
	TargetPath  string
	Success     bool
	SourceBytes int64
	TargetBytes int64
	Err         string
}

// Reduction returns the size reduction in percent. A zero-byte source
// reports 0 rather than dividing by zero.
func (o Outcome) Reduction() float64 {
	if o.SourceBytes <= 0 {
		return 0
	}
	return (1 - float64(o.TargetBytes)/float64(o.SourceBytes)) * 100
}

// Summary aggregates one finished run. Built after the pool drains,
// read-only thereafter.
type Summary struct {
	Images   uint64
	Fonts    uint64
	Outcomes []Outcome
}

func (s *Summary) Succeeded() int {
	n := 0
	for _, o := range s.Outcomes {
		if o.Success {
			n++
		}
	}
	return n
}

func (s *Summary) Failed() []Outcome {
	var failed []Outcome
	for _, o := range s.Outcomes {
		if !o.Success {
			failed = append(failed, o)
		}
	}
	return failed
}

// TotalBytes returns aggregate source and target byte counts over
// successful outcomes.
func (s *Summary) TotalBytes() (source, target int64) {
	for _, o := range s.Outcomes {
		if o.Success {
			source += o.SourceBytes
			target += o.TargetBytes
		}
	}
	return source, target
}
