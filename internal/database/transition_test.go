package database

import (
	"testing"
	"time"
)

func openSession(entry time.Time) *AccessSession {
	return &AccessSession{
		SubjectID: 1,
		EntryTime: entry,
		Status:    StatusOpen,
	}
}

func TestDecideTransition_NoSession(t *testing.T) {
	now := time.Now()

	d := DecideTransition(nil, now, 10*time.Second)

	if d.Kind != TransitionEntry {
		t.Errorf("expected entry, got %s", d.Kind)
	}
	if d.Stay != 0 {
		t.Errorf("expected zero stay on entry, got %v", d.Stay)
	}
}

func TestDecideTransition_ClosedSession(t *testing.T) {
	now := time.Now()
	exit := now.Add(-time.Hour)
	latest := &AccessSession{
		SubjectID:   1,
		EntryTime:   now.Add(-2 * time.Hour),
		ExitTime:    &exit,
		Accumulated: time.Hour,
		Status:      StatusClosed,
	}

	d := DecideTransition(latest, now, 10*time.Second)

	if d.Kind != TransitionEntry {
		t.Errorf("expected entry after closed session, got %s", d.Kind)
	}
}

func TestDecideTransition_OpenPastDwell(t *testing.T) {
	now := time.Now()

	d := DecideTransition(openSession(now.Add(-30*time.Second)), now, 10*time.Second)

	if d.Kind != TransitionExit {
		t.Errorf("expected exit, got %s", d.Kind)
	}
	if d.Stay != 30*time.Second {
		t.Errorf("expected stay 30s, got %v", d.Stay)
	}
}

func TestDecideTransition_OpenInsideDwell(t *testing.T) {
	now := time.Now()

	d := DecideTransition(openSession(now.Add(-3*time.Second)), now, 10*time.Second)

	if d.Kind != TransitionBounce {
		t.Errorf("expected bounce inside dwell, got %s", d.Kind)
	}
}

func TestDecideTransition_ExactlyAtDwell(t *testing.T) {
	now := time.Now()

	// now - entry_time >= min_dwell closes the session, boundary included.
	d := DecideTransition(openSession(now.Add(-10*time.Second)), now, 10*time.Second)

	if d.Kind != TransitionExit {
		t.Errorf("expected exit at exact dwell boundary, got %s", d.Kind)
	}
}

func TestDecideTransition_ZeroDwellDisablesDebounce(t *testing.T) {
	now := time.Now()

	d := DecideTransition(openSession(now), now, 0)

	if d.Kind != TransitionExit {
		t.Errorf("expected immediate exit with zero dwell, got %s", d.Kind)
	}
}

func TestDecideTransition_MixedTimezones(t *testing.T) {
	// Transition decisions compare instants, so the wall-clock zone of the
	// inputs must not matter.
	loc, err := time.LoadLocation("America/Manaus")
	if err != nil {
		t.Skipf("timezone database not available: %v", err)
	}
	entry := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	now := entry.Add(42 * time.Second).In(loc)

	d := DecideTransition(openSession(entry), now, 10*time.Second)

	if d.Kind != TransitionExit {
		t.Errorf("expected exit, got %s", d.Kind)
	}
	if d.Stay != 42*time.Second {
		t.Errorf("expected stay 42s, got %v", d.Stay)
	}
}

func TestStayDuration(t *testing.T) {
	entry := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	exit := entry.Add(90 * time.Minute)

	tests := []struct {
		name string
		row  SessionRow
		want time.Duration
	}{
		{
			name: "finalized duration wins",
			row: SessionRow{AccessSession: AccessSession{
				EntryTime: entry, ExitTime: &exit, Accumulated: time.Hour, Status: StatusClosed,
			}},
			want: time.Hour,
		},
		{
			name: "falls back to exit minus entry",
			row: SessionRow{AccessSession: AccessSession{
				EntryTime: entry, ExitTime: &exit, Status: StatusClosed,
			}},
			want: 90 * time.Minute,
		},
		{
			name: "open session contributes nothing",
			row: SessionRow{AccessSession: AccessSession{
				EntryTime: entry, Status: StatusOpen,
			}},
			want: 0,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.row.StayDuration(); got != tc.want {
				t.Errorf("expected %v, got %v", tc.want, got)
			}
		})
	}
}
