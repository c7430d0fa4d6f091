// Package store persists recorded test cases and replay reports in a local
// bbolt database.
package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/qaforge/replaykit/pkg/action"
	"github.com/qaforge/replaykit/pkg/verify"
)

// Bucket names.
const (
	bucketTestCases = "testcases" // recorded test cases keyed by name
	bucketReports   = "reports"   // verification reports keyed by test case + timestamp
)

// Store provides persistent storage for test cases and reports.
type Store interface {
	SaveTestCase(tc action.TestCase) error
	GetTestCase(name string) (action.TestCase, error)
	ListTestCases() ([]string, error)
	DeleteTestCase(name string) error
	SaveReport(report verify.Report) error
	ListReports(testCase string) ([]verify.Report, error)
	Close() error
}

// BoltStore is a bbolt-backed implementation of Store.
type BoltStore struct {
	db *bolt.DB
	mu sync.RWMutex
}

// NewBoltStore opens (or creates) a store at the given path.
func NewBoltStore(path string) (*BoltStore, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bolt db: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range []string{bucketTestCases, bucketReports} {
			if _, err := tx.CreateBucketIfNotExists([]byte(bucket)); err != nil {
				return fmt.Errorf("create bucket %s: %w", bucket, err)
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("init buckets: %w", err)
	}

	return &BoltStore{db: db}, nil
}

// SaveTestCase stores a test case under its name, overwriting any previous
// version.
func (s *BoltStore) SaveTestCase(tc action.TestCase) error {
	if tc.Name == "" {
		return fmt.Errorf("test case has no name")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.db.Update(func(tx *bolt.Tx) error {
		data, err := json.Marshal(tc)
		if err != nil {
			return fmt.Errorf("marshal test case: %w", err)
		}
		return tx.Bucket([]byte(bucketTestCases)).Put([]byte(tc.Name), data)
	})
}

// GetTestCase loads a test case by name.
func (s *BoltStore) GetTestCase(name string) (action.TestCase, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var tc action.TestCase
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket([]byte(bucketTestCases)).Get([]byte(name))
		if data == nil {
			return fmt.Errorf("test case not found: %s", name)
		}
		return json.Unmarshal(data, &tc)
	})
	if err != nil {
		return action.TestCase{}, err
	}
	return tc, nil
}

// ListTestCases returns the names of all stored test cases in key order.
func (s *BoltStore) ListTestCases() ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var names []string
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucketTestCases)).ForEach(func(k, v []byte) error {
			names = append(names, string(k))
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return names, nil
}

// DeleteTestCase removes a test case. Deleting a missing case is not an
// error.
func (s *BoltStore) DeleteTestCase(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucketTestCases)).Delete([]byte(name))
	})
}

// SaveReport stores a verification report keyed by test case and
// generation time, so repeated runs accumulate.
func (s *BoltStore) SaveReport(report verify.Report) error {
	if report.TestCase == "" {
		return fmt.Errorf("report has no test case name")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := fmt.Sprintf("%s/%s", report.TestCase, report.GeneratedAt.UTC().Format(time.RFC3339Nano))
	return s.db.Update(func(tx *bolt.Tx) error {
		data, err := json.Marshal(report)
		if err != nil {
			return fmt.Errorf("marshal report: %w", err)
		}
		return tx.Bucket([]byte(bucketReports)).Put([]byte(key), data)
	})
}

// ListReports returns all stored reports for a test case, oldest first.
func (s *BoltStore) ListReports(testCase string) ([]verify.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	prefix := []byte(testCase + "/")
	var reports []verify.Report
	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket([]byte(bucketReports)).Cursor()
		for k, v := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, v = c.Next() {
			var report verify.Report
			if err := json.Unmarshal(v, &report); err != nil {
				return fmt.Errorf("unmarshal report %s: %w", string(k), err)
			}
			reports = append(reports, report)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return reports, nil
}

// Close releases the underlying database.
func (s *BoltStore) Close() error {
	return s.db.Close()
}
