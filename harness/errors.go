package harness

import (
	"errors"
	"fmt"

	"github.com/sarchlab/xfertest/dmaengine"
)

// ErrRegionTooSmall is returned when the backing reservation of the
// fixed window cannot hold a full test buffer.
var ErrRegionTooSmall = errors.New("reserved region smaller than buffer size")

// An AcquisitionError reports a failed resource acquisition step. It
// is fatal to the run and triggers a full unwind of everything acquired
// before it.
type AcquisitionError struct {
	Step string
	Err  error
}

func (e *AcquisitionError) Error() string {
	return fmt.Sprintf("acquiring %s: %v", e.Step, e.Err)
}

func (e *AcquisitionError) Unwrap() error {
	return e.Err
}

// Retryable reports whether the error only reflects a transient lack of
// engine channels, so the caller may retry the activation later.
func Retryable(err error) bool {
	return errors.Is(err, dmaengine.ErrNoChannel)
}

// A TransferError reports a failed hop. It is not fatal to the run:
// the failed section is cut short and the run proceeds with the next
// configured section.
type TransferError struct {
	Hop    string
	Status dmaengine.Status
	Err    error
}

func (e *TransferError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("transfer %s: %v", e.Hop, e.Err)
	}
	return fmt.Sprintf("transfer %s: engine reported %s", e.Hop, e.Status)
}

func (e *TransferError) Unwrap() error {
	return e.Err
}
