package causal

import "errors"

// ErrNotebookNotFound is returned when the notebook a position is being
// assigned for, or queried against, does not exist.
var ErrNotebookNotFound = errors.New("causal: notebook not found")
