package api

import "sync"

// ReportStore keeps the most recent reports in memory. When full, the
// oldest report is evicted.
type ReportStore struct {
	mu      sync.Mutex
	limit   int
	order   []string
	reports map[string]Report
}

func NewReportStore(limit int) *ReportStore {
	if limit <= 0 {
		limit = DefaultReportLimit
	}
	return &ReportStore{
		limit:   limit,
		reports: make(map[string]Report),
	}
}

func (s *ReportStore) Put(r Report) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.reports[r.ID]; !ok {
		s.order = append(s.order, r.ID)
	}
	s.reports[r.ID] = r
	for len(s.order) > s.limit {
		delete(s.reports, s.order[0])
		s.order = s.order[1:]
	}
}

func (s *ReportStore) Get(id string) (Report, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.reports[id]
	return r, ok
}

func (s *ReportStore) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.reports[id]; !ok {
		return false
	}
	delete(s.reports, id)
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return true
}

func (s *ReportStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.reports)
}
