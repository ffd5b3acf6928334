// Package state persists the change-detection record between runs and
// decides whether a regeneration is warranted. It never touches event
// data: it is a pure decision gate evaluated before the pipeline runs,
// and its state write happens only after a full successful run.
package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	appLog "makersite/internal/log"
)

// ChangeState is the persisted record of the last successful run.
// Read once at pipeline entry, written once at pipeline exit; never
// partially updated.
type ChangeState struct {
	ContentHash string    `json:"content_hash"`
	LastUpdated time.Time `json:"last_updated"`
	EventCount  int       `json:"event_count"`
}

// Load reads the state file. A missing or corrupt file degrades to the
// zero state ("no prior state"), which forces regeneration downstream.
func Load(path string) ChangeState {
	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			appLog.Warn("state file unreadable, treating as no prior state", "path", path, "reason", err.Error())
		}
		return ChangeState{}
	}

	var st ChangeState
	if err := json.Unmarshal(data, &st); err != nil {
		appLog.Warn("state file corrupt, treating as no prior state", "path", path, "reason", err.Error())
		return ChangeState{}
	}
	return st
}

// Save writes the state atomically (temp file + rename), matching the
// config writer's discipline.
func Save(path string, st ChangeState) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := json.MarshalIndent(&st, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".makersite-state-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	return os.Rename(tmpName, path)
}

// Decision is the gate's verdict plus a loggable reason.
type Decision struct {
	Regenerate bool
	Reason     string
}

// Evaluate applies the decision table:
//
//	hash differs                          -> regenerate
//	hashes equal, no prior last_updated   -> regenerate
//	hashes equal, elapsed >= staleness    -> regenerate
//	hashes equal, elapsed < staleness     -> skip
//	fingerprint unobtainable (fetch err)  -> regenerate (fail open)
func Evaluate(prev ChangeState, currentHash string, fetchErr error, now time.Time, staleness time.Duration) Decision {
	if fetchErr != nil {
		return Decision{Regenerate: true, Reason: "fingerprint unobtainable: " + fetchErr.Error()}
	}

	if currentHash != prev.ContentHash {
		return Decision{Regenerate: true, Reason: "content hash changed"}
	}

	if prev.LastUpdated.IsZero() {
		return Decision{Regenerate: true, Reason: "no prior update time recorded"}
	}

	elapsed := now.Sub(prev.LastUpdated)
	if elapsed >= staleness {
		return Decision{
			Regenerate: true,
			Reason:     fmt.Sprintf("stale: %.1fh since last update", elapsed.Hours()),
		}
	}

	return Decision{
		Regenerate: false,
		Reason:     fmt.Sprintf("fresh: %.1fh since last update", elapsed.Hours()),
	}
}
