package matchday

import (
	"errors"
	"testing"
)

func statusPtr(s Status) *Status { return &s }

func TestInitialLedger(t *testing.T) {
	entries := Initial(4)
	if len(entries) != 4 {
		t.Fatalf("expected 4 entries, got %d", len(entries))
	}
	if entries[0].Round != 1 || entries[0].Status != StatusInProgress {
		t.Fatalf("expected round 1 in progress, got %+v", entries[0])
	}
	for _, e := range entries[1:] {
		if e.Status != StatusPending {
			t.Fatalf("expected round %d pending, got %s", e.Round, e.Status)
		}
	}
}

func TestFinalizeAllFinishedUnlocksNext(t *testing.T) {
	tr, err := Finalize(1, StatusInProgress, statusPtr(StatusPending), []bool{true, true})
	if err != nil {
		t.Fatalf("finalize: %v", err)
	}
	if tr.To != StatusPlayed {
		t.Fatalf("expected PLAYED, got %s", tr.To)
	}
	if tr.Unlocked != 2 {
		t.Fatalf("expected round 2 unlocked, got %d", tr.Unlocked)
	}
	if !tr.Finished() {
		t.Fatalf("expected transition to report finished")
	}
}

func TestFinalizeUnfinishedMatchLeavesOthersAlone(t *testing.T) {
	tr, err := Finalize(2, StatusInProgress, statusPtr(StatusPending), []bool{true, false, true})
	if err != nil {
		t.Fatalf("finalize: %v", err)
	}
	if tr.To != StatusIncomplete {
		t.Fatalf("expected INCOMPLETE, got %s", tr.To)
	}
	if tr.Unlocked != 0 {
		t.Fatalf("expected no unlock, got %d", tr.Unlocked)
	}
	if tr.Finished() {
		t.Fatalf("incomplete round must not report finished")
	}
}

func TestFinalizeNextRoundAlreadyOpen(t *testing.T) {
	tests := []struct {
		name string
		next *Status
	}{
		{name: "last round", next: nil},
		{name: "next in progress", next: statusPtr(StatusInProgress)},
		{name: "next played", next: statusPtr(StatusPlayed)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr, err := Finalize(3, StatusInProgress, tt.next, []bool{true})
			if err != nil {
				t.Fatalf("finalize: %v", err)
			}
			if tr.Unlocked != 0 {
				t.Fatalf("expected no unlock, got %d", tr.Unlocked)
			}
		})
	}
}

func TestFinalizeRefinalizeIncomplete(t *testing.T) {
	tr, err := Finalize(1, StatusIncomplete, statusPtr(StatusPending), []bool{true})
	if err != nil {
		t.Fatalf("finalize: %v", err)
	}
	if tr.To != StatusPlayed || tr.Unlocked != 2 || !tr.Finished() {
		t.Fatalf("unexpected transition %+v", tr)
	}

	again, err := Finalize(1, StatusPlayed, statusPtr(StatusInProgress), []bool{true})
	if err != nil {
		t.Fatalf("finalize: %v", err)
	}
	if again.Finished() {
		t.Fatalf("re-finalizing a played round must not report finished again")
	}
}

func TestFinalizeErrors(t *testing.T) {
	tests := []struct {
		name    string
		round   int
		current Status
		matches []bool
		want    error
	}{
		{name: "pending", round: 2, current: StatusPending, matches: []bool{true}, want: ErrRoundLocked},
		{name: "no matches", round: 1, current: StatusInProgress, matches: nil, want: ErrNoMatches},
		{name: "bad round", round: 0, current: StatusInProgress, matches: []bool{true}, want: ErrRoundOutOfSpan},
		{name: "bad status", round: 1, current: Status("DONE"), matches: []bool{true}, want: ErrInvalidStatus},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Finalize(tt.round, tt.current, nil, tt.matches)
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestParseStatus(t *testing.T) {
	if s, err := ParseStatus("PLAYED"); err != nil || s != StatusPlayed {
		t.Fatalf("expected PLAYED, got %q (%v)", s, err)
	}
	if _, err := ParseStatus("played"); !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("expected invalid status error, got %v", err)
	}
	if !StatusIncomplete.Terminal() || StatusInProgress.Terminal() {
		t.Fatalf("terminal flags are wrong")
	}
}
