package tui

import "time"

// tickMsg is sent every second while the quiz is running.
type tickMsg time.Time

// recordedMsg reports the outcome of sending the result to the sink.
type recordedMsg struct {
	rec *recorder
	Err error
}
