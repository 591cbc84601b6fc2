// Package matchday holds the lifecycle rules of a zone's rounds. It decides
// status transitions; storing them is the caller's job.
package matchday

import (
	"errors"
	"fmt"
)

type Status string

const (
	StatusPending    Status = "PENDING"
	StatusInProgress Status = "IN_PROGRESS"
	StatusPlayed     Status = "PLAYED"
	StatusIncomplete Status = "INCOMPLETE"
)

var (
	ErrRoundLocked    = errors.New("round has not been unlocked yet")
	ErrNoMatches      = errors.New("round has no matches")
	ErrInvalidStatus  = errors.New("invalid matchday status")
	ErrRoundOutOfSpan = errors.New("round must be 1 or greater")
)

func ParseStatus(raw string) (Status, error) {
	s := Status(raw)
	if !s.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, raw)
	}
	return s, nil
}

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusPlayed, StatusIncomplete:
		return true
	}
	return false
}

// Terminal reports whether the status never changes without an explicit
// finalize call.
func (s Status) Terminal() bool {
	return s == StatusPlayed || s == StatusIncomplete
}

type Entry struct {
	Round  int
	Status Status
}

// Initial returns the ledger for a freshly generated fixture: round 1 is
// playable, every later round waits.
func Initial(totalRounds int) []Entry {
	entries := make([]Entry, 0, totalRounds)
	for round := 1; round <= totalRounds; round++ {
		status := StatusPending
		if round == 1 {
			status = StatusInProgress
		}
		entries = append(entries, Entry{Round: round, Status: status})
	}
	return entries
}

// Transition is the set of ledger writes produced by finalizing one round.
type Transition struct {
	Round    int
	From     Status
	To       Status
	Unlocked int // next round moved to IN_PROGRESS, 0 when none
}

// Finished reports whether the transition completes the round for the first
// time, which is when downstream aggregation has to run.
func (t Transition) Finished() bool {
	return t.To == StatusPlayed && t.From != StatusPlayed
}

// Finalize evaluates round given the current status, the status of the next
// round (nil when it does not exist) and whether each match of the round has
// finished. The next round is only unlocked when this one is fully played.
func Finalize(round int, current Status, next *Status, matchesFinished []bool) (Transition, error) {
	if round < 1 {
		return Transition{}, ErrRoundOutOfSpan
	}
	if !current.Valid() {
		return Transition{}, fmt.Errorf("%w: %q", ErrInvalidStatus, current)
	}
	if current == StatusPending {
		return Transition{}, ErrRoundLocked
	}
	if len(matchesFinished) == 0 {
		return Transition{}, ErrNoMatches
	}

	tr := Transition{Round: round, From: current, To: StatusPlayed}
	for _, finished := range matchesFinished {
		if !finished {
			tr.To = StatusIncomplete
			return tr, nil
		}
	}

	if next != nil && *next == StatusPending {
		tr.Unlocked = round + 1
	}
	return tr, nil
}
