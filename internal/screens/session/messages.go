package session

import (
	sess "github.com/piscinadeentropia/mrquizzer/internal/session"
)

// sessionInitMsg is sent when the current quiz has been loaded and its
// saved progress restored.
type sessionInitMsg struct {
	Session *sess.Session
	Err     error
}

// timerTickMsg is sent every second while the screen is active. id ties
// the tick to the screen instance that scheduled it.
type timerTickMsg struct {
	id int
}
