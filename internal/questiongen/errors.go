package questiongen

import "fmt"

// GenerationError reports that no usable question set could be produced.
// The session cannot start; the caller may offer a retry.
type GenerationError struct {
	Stage     string // "request", "decode" or "validate"
	Retryable bool
	Err       error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("question generation failed (%s): %v", e.Stage, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }
