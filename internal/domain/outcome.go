package domain

// OutcomeKind tags the result of a single-record write.
type OutcomeKind uint8

const (
	OutcomeInserted OutcomeKind = iota + 1
	OutcomeAlreadyExisted
	OutcomeFailed
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeInserted:
		return "inserted"
	case OutcomeAlreadyExisted:
		return "already_existed"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Outcome is the result of writing one record.
//
// Row is always set for Inserted. For AlreadyExisted it is nil when the
// caller did not ask for a readback or when an ignorable driver error was
// swallowed. Err is set only for Failed.
type Outcome[T any] struct {
	Kind OutcomeKind
	Row  *T
	Err  error
}

// Inserted builds an outcome for a freshly written row.
func Inserted[T any](row *T) Outcome[T] {
	return Outcome[T]{Kind: OutcomeInserted, Row: row}
}

// AlreadyExisted builds an outcome for a row whose natural key was present.
func AlreadyExisted[T any](row *T) Outcome[T] {
	return Outcome[T]{Kind: OutcomeAlreadyExisted, Row: row}
}

// Failed builds an outcome for a write that did not succeed.
func Failed[T any](err error) Outcome[T] {
	return Outcome[T]{Kind: OutcomeFailed, Err: err}
}

func (o Outcome[T]) IsInserted() bool       { return o.Kind == OutcomeInserted }
func (o Outcome[T]) IsAlreadyExisted() bool { return o.Kind == OutcomeAlreadyExisted }
func (o Outcome[T]) IsFailed() bool         { return o.Kind == OutcomeFailed }

// Result unpacks the outcome into the (row, error) pair most callers want.
func (o Outcome[T]) Result() (*T, error) {
	if o.Kind == OutcomeFailed {
		return nil, o.Err
	}
	return o.Row, nil
}
