package state

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestEvaluateDecisionTable(t *testing.T) {
	now := time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC)
	staleness := 12 * time.Hour

	cases := []struct {
		name     string
		prev     ChangeState
		hash     string
		fetchErr error
		want     bool
	}{
		{
			name:     "fetch error fails open",
			prev:     ChangeState{ContentHash: "abc", LastUpdated: now.Add(-time.Hour)},
			hash:     "",
			fetchErr: errors.New("connection refused"),
			want:     true,
		},
		{
			name: "hash changed",
			prev: ChangeState{ContentHash: "abc", LastUpdated: now.Add(-time.Hour)},
			hash: "def",
			want: true,
		},
		{
			name: "no prior state",
			prev: ChangeState{},
			hash: "",
			want: true,
		},
		{
			name: "same hash but stale",
			prev: ChangeState{ContentHash: "abc", LastUpdated: now.Add(-13 * time.Hour)},
			hash: "abc",
			want: true,
		},
		{
			name: "same hash exactly at threshold",
			prev: ChangeState{ContentHash: "abc", LastUpdated: now.Add(-12 * time.Hour)},
			hash: "abc",
			want: true,
		},
		{
			name: "same hash and fresh",
			prev: ChangeState{ContentHash: "abc", LastUpdated: now.Add(-time.Hour)},
			hash: "abc",
			want: false,
		},
		{
			name: "hash matches but no update time",
			prev: ChangeState{ContentHash: "abc"},
			hash: "abc",
			want: true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := Evaluate(tc.prev, tc.hash, tc.fetchErr, now, staleness)
			if d.Regenerate != tc.want {
				t.Errorf("Regenerate = %v, want %v (reason: %s)", d.Regenerate, tc.want, d.Reason)
			}
			if d.Reason == "" {
				t.Error("decision must carry a reason")
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	st := Load(filepath.Join(t.TempDir(), "nope.json"))
	if st != (ChangeState{}) {
		t.Errorf("missing file should yield zero state, got %+v", st)
	}
}

func TestLoadCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}
	st := Load(path)
	if st != (ChangeState{}) {
		t.Errorf("corrupt file should yield zero state, got %+v", st)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	want := ChangeState{
		ContentHash: "0123456789abcdef",
		LastUpdated: time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC),
		EventCount:  7,
	}
	if err := Save(path, want); err != nil {
		t.Fatal(err)
	}

	got := Load(path)
	if got.ContentHash != want.ContentHash || got.EventCount != want.EventCount {
		t.Errorf("round trip mismatch: got %+v, want %+v", got, want)
	}
	if !got.LastUpdated.Equal(want.LastUpdated) {
		t.Errorf("LastUpdated = %v, want %v", got.LastUpdated, want.LastUpdated)
	}
}

func TestSaveCreatesParentDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "deep", "state.json")
	if err := Save(path, ChangeState{ContentHash: "x"}); err != nil {
		t.Fatal(err)
	}
	if Load(path).ContentHash != "x" {
		t.Error("state not readable after save into nested dir")
	}
}
