package preprocess

import "fmt"

// StageError wraps a failure with the identity of the pipeline stage that
// produced it. The "load" stage covers image decoding failures.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("stage %s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// DimensionError reports a zero-width or zero-height buffer reaching a stage.
// It is fatal for the image being processed; the pipeline writes no partial
// output once it occurs.
type DimensionError struct {
	Stage  string
	Width  int
	Height int
}

func (e *DimensionError) Error() string {
	return fmt.Sprintf("stage %s: invalid %dx%d buffer", e.Stage, e.Width, e.Height)
}
