package hidsvc

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/dgraph-io/badger"
)

// Assignment is one applied configuration change, kept as operational
// bookkeeping so `turbo-keys history` can show what was written when. It is
// not a profile: the device's flash remains the only source of truth.
type Assignment struct {
	Device    string    `json:"device"`
	Slot      string    `json:"slot"`
	Mapping   string    `json:"mapping"`
	Layer     int       `json:"layer,omitempty"`
	AppliedAt time.Time `json:"appliedAt"`
}

var assignmentPrefix = []byte("hid/assignments/")

// Fixed-width timestamp so keys sort chronologically; RFC3339Nano trims
// trailing zeros and would not.
const assignmentKeyLayout = "2006-01-02T15:04:05.000000000Z"

func assignmentKey(t time.Time) []byte {
	return append(assignmentPrefix, t.UTC().Format(assignmentKeyLayout)...)
}

// RecordAssignment appends an assignment to the history log.
func (s *Service) RecordAssignment(a Assignment) error {
	if a.AppliedAt.IsZero() {
		a.AppliedAt = s.now()
	}
	err := s.db.Update(func(txn *badger.Txn) error {
		b, err := json.Marshal(a)
		if err != nil {
			return fmt.Errorf("failed to marshal assignment: %w", err)
		}
		return txn.Set(assignmentKey(a.AppliedAt), b)
	})
	if err != nil {
		return fmt.Errorf("failed to record assignment: %w", err)
	}
	return nil
}

// ListAssignments returns the history log in application order.
func (s *Service) ListAssignments() ([]Assignment, error) {
	var assignments []Assignment
	err := s.db.View(func(txn *badger.Txn) error {
		iter := txn.NewIterator(badger.DefaultIteratorOptions)
		defer iter.Close()
		for iter.Seek(assignmentPrefix); iter.ValidForPrefix(assignmentPrefix); iter.Next() {
			var a Assignment
			err := iter.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &a)
			})
			if err != nil {
				return err
			}
			assignments = append(assignments, a)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list assignments: %w", err)
	}
	return assignments, nil
}
