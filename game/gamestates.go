package game

import "time"

type GamePlayState int

const (
	gameNotStarted GamePlayState = iota
	gameInProgress
	gameOver
)

func (gps GamePlayState) String() string {
	switch gps {
	case gameNotStarted:
		return "notStarted"
	case gameInProgress:
		return "inProgress"
	case gameOver:
		return "gameOver"
	}
	return ""
}

// discardWindow is the interval after a discard in which other players
// may ask for the discarded card. ID changes with every discard.
type discardWindow struct {
	ID          int
	Open        bool
	DiscarderID string
	Requests    []string
	Deadline    time.Time
}
