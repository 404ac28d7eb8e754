package dialogue

import "fmt"

// UnknownStageError reports a reference to a stage the graph does not
// contain.
type UnknownStageError struct {
	Stage string
}

func (e *UnknownStageError) Error() string {
	return fmt.Sprintf("unknown stage: %q", e.Stage)
}
