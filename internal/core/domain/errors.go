package domain

import "errors"

// ErrNotFound indicates a survey document that does not exist.
var ErrNotFound = errors.New("domain: not found")

// ErrNoExpressionData indicates a fusion request for a session with zero
// buffered frames. At least one frame must be pushed before fusing.
var ErrNoExpressionData = errors.New("domain: session has no expression data")
