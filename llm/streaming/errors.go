package streaming

import "errors"

// ErrClosed is returned by Send once the relay has been closed, and by Recv
// once the relay has been closed and its buffered deltas have been drained.
var ErrClosed = errors.New("streaming: relay closed")
