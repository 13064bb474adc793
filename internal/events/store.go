package events

import "sync"

// DefaultCapacity is the number of records retained by a Store unless
// configured otherwise.
const DefaultCapacity = 1000

// Stats describes the current buffer contents.
type Stats struct {
	Total       int      `json:"total"`
	WorkflowIDs []string `json:"workflowIds"`
}

// Store is a bounded in-memory buffer of progress records. Appends evict the
// oldest record once the capacity is reached; reads return copies, so callers
// can iterate without holding any lock. The consumer is the single writer,
// except for the direct-push HTTP path which shares the same mutex.
type Store struct {
	mu    sync.Mutex
	buf   []Record
	head  int
	count int
}

func NewStore(capacity int) *Store {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}

	return &Store{
		buf: make([]Record, capacity),
	}
}

// Append adds a record, evicting the oldest one when the buffer is full.
// Eviction is the intended steady-state behavior under sustained load, not an
// error.
func (s *Store) Append(r Record) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.count == len(s.buf) {
		s.buf[s.head] = r
		s.head = (s.head + 1) % len(s.buf)
		return
	}

	s.buf[(s.head+s.count)%len(s.buf)] = r
	s.count++
}

// All returns a copy of the retained records in insertion order.
func (s *Store) All() []Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.snapshot()
}

// ByWorkflowID returns the retained records for the given workflow id, in
// insertion order.
func (s *Store) ByWorkflowID(id string) []Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := make([]Record, 0)
	for i := 0; i < s.count; i++ {
		r := s.buf[(s.head+i)%len(s.buf)]
		if r.WorkflowID == id {
			result = append(result, r)
		}
	}

	return result
}

// Stats returns the record count and the distinct non-empty workflow ids
// currently retained, in order of first appearance.
func (s *Store) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := map[string]bool{}
	ids := make([]string, 0)
	for i := 0; i < s.count; i++ {
		id := s.buf[(s.head+i)%len(s.buf)].WorkflowID
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}

	return Stats{
		Total:       s.count,
		WorkflowIDs: ids,
	}
}

func (s *Store) snapshot() []Record {
	result := make([]Record, s.count)
	for i := 0; i < s.count; i++ {
		result[i] = s.buf[(s.head+i)%len(s.buf)]
	}

	return result
}
