package constants

import "time"

// Loop & Frame Timing
const (
	// FrameUpdateInterval is the rendering frame rate interval (~60 FPS)
	FrameUpdateInterval = 16 * time.Millisecond

	// LoopQueueSize is the buffered capacity of the run-loop job channel
	LoopQueueSize = 256

	// InputQueueSize is the buffered capacity of the terminal event channel
	InputQueueSize = 100
)
