package extract

import "errors"

// ErrAllocation indicates that no identifier could be allocated. Nothing is
// created when it is returned.
var ErrAllocation = errors.New("identifier allocation failed")
