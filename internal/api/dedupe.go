package api

import "sync"

// ProcessedEventSet remembers event ids seen during this process lifetime.
// It only short-circuits obvious duplicate redeliveries within one warm
// process. It is not durable and correctness never depends on it; the
// orchestrator's observable side-effect checks carry that load.
type ProcessedEventSet struct {
	mu    sync.Mutex
	seen  map[string]struct{}
	order []string
	limit int
}

// NewProcessedEventSet builds a set holding at most limit ids.
func NewProcessedEventSet(limit int) *ProcessedEventSet {
	if limit <= 0 {
		limit = 1024
	}
	return &ProcessedEventSet{
		seen:  make(map[string]struct{}, limit),
		limit: limit,
	}
}

// Seen marks id as processed, reporting whether it was already present.
// Empty ids are never deduplicated.
func (s *ProcessedEventSet) Seen(id string) bool {
	if id == "" {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.seen[id]; ok {
		return true
	}
	if len(s.order) >= s.limit {
		oldest := s.order[0]
		s.order = s.order[1:]
		delete(s.seen, oldest)
	}
	s.seen[id] = struct{}{}
	s.order = append(s.order, id)
	return false
}
