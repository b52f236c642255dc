package context

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/genomectl/repogenome/internal/genome"
)

var (
	bucketSessions = []byte("context_sessions")
	bucketTraces   = []byte("context_traces")
	bucketFeedback = []byte("context_feedback")
)

// Session is per-session memory: ids the caller pinned earlier in the
// conversation that should keep contributing to must_include on later
// build_context calls against the same session.
type Session struct {
	ID        string          `json:"id"`
	PinnedIDs []genome.NodeId `json:"pinned_ids"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Feedback is the hit/miss tally the serving layer accumulates for a
// context id whenever a subsequent query references one of its
// returned node ids (a hit) or explicitly reports one as unused (a
// miss).
type Feedback struct {
	ContextID string `json:"context_id"`
	Hits      int    `json:"hits"`
	Misses    int    `json:"misses"`
}

// Store persists session memory, decision traces, and feedback
// counters across process restarts.
type Store interface {
	GetSession(ctx context.Context, id string) (Session, bool, error)
	SaveSession(ctx context.Context, sess Session) error

	GetTrace(ctx context.Context, contextID string) (DecisionTrace, bool, error)
	SaveTrace(ctx context.Context, trace DecisionTrace) error

	GetFeedback(ctx context.Context, contextID string) (Feedback, error)
	RecordFeedback(ctx context.Context, contextID string, hit bool) error
}

// BoltStore is the durable Store backing production serving, one
// bucket per record kind in a single on-disk file.
type BoltStore struct {
	db *bolt.DB
}

// OpenBoltStore opens (creating if absent) a bbolt database at path
// and ensures all buckets this package needs exist.
func OpenBoltStore(path string) (*BoltStore, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("context: open bolt store: %w", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		for _, b := range [][]byte{bucketSessions, bucketTraces, bucketFeedback} {
			if _, err := tx.CreateBucketIfNotExists(b); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("context: init buckets: %w", err)
	}
	return &BoltStore{db: db}, nil
}

// Close releases the underlying database file.
func (s *BoltStore) Close() error {
	return s.db.Close()
}

func (s *BoltStore) GetSession(_ context.Context, id string) (Session, bool, error) {
	var sess Session
	found := false
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(bucketSessions).Get([]byte(id))
		if data == nil {
			return nil
		}
		found = true
		return json.Unmarshal(data, &sess)
	})
	return sess, found, err
}

func (s *BoltStore) SaveSession(_ context.Context, sess Session) error {
	sess.UpdatedAt = time.Now()
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("context: marshal session: %w", err)
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketSessions).Put([]byte(sess.ID), data)
	})
}

func (s *BoltStore) GetTrace(_ context.Context, contextID string) (DecisionTrace, bool, error) {
	var trace DecisionTrace
	found := false
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(bucketTraces).Get([]byte(contextID))
		if data == nil {
			return nil
		}
		found = true
		return json.Unmarshal(data, &trace)
	})
	return trace, found, err
}

func (s *BoltStore) SaveTrace(_ context.Context, trace DecisionTrace) error {
	data, err := json.Marshal(trace)
	if err != nil {
		return fmt.Errorf("context: marshal decision trace: %w", err)
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketTraces).Put([]byte(trace.ContextID), data)
	})
}

func (s *BoltStore) GetFeedback(_ context.Context, contextID string) (Feedback, error) {
	fb := Feedback{ContextID: contextID}
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(bucketFeedback).Get([]byte(contextID))
		if data == nil {
			return nil
		}
		return json.Unmarshal(data, &fb)
	})
	return fb, err
}

func (s *BoltStore) RecordFeedback(_ context.Context, contextID string, hit bool) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(bucketFeedback)
		var fb Feedback
		if data := bucket.Get([]byte(contextID)); data != nil {
			if err := json.Unmarshal(data, &fb); err != nil {
				return err
			}
		}
		fb.ContextID = contextID
		if hit {
			fb.Hits++
		} else {
			fb.Misses++
		}
		data, err := json.Marshal(fb)
		if err != nil {
			return err
		}
		return bucket.Put([]byte(contextID), data)
	})
}
