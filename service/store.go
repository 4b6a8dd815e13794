package service

import (
	"errors"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/abaevpavel/pdfer-base/config"
	"github.com/abaevpavel/pdfer-base/model"
)

// ErrReportNotFound is returned when a report id is unknown to the store.
var ErrReportNotFound = errors.New("report not found")

// ReportStore is an in-memory index of generated reports.
// Reports are lost on restart; the artifacts themselves live in Storage.
type ReportStore struct {
	reports    map[string]*model.Report
	mu         sync.RWMutex
	maxReports int // Maximum reports to keep, <= 0 = unlimited
}

var (
	globalStore *ReportStore
	storeOnce   sync.Once
)

// NewReportStore creates a store that keeps at most maxReports entries.
func NewReportStore(maxReports int) *ReportStore {
	return &ReportStore{
		reports:    make(map[string]*model.Report),
		maxReports: maxReports,
	}
}

// InitReportStore initializes the global report store with configuration
func InitReportStore(cfg *config.StoreConfig) {
	storeOnce.Do(func() {
		globalStore = NewReportStore(cfg.MaxReports)
		slog.Info("report store initialized", "max_reports", cfg.MaxReports)
	})
}

// GetReportStore returns the global report store
func GetReportStore() *ReportStore {
	storeOnce.Do(func() {
		globalStore = NewReportStore(100)
	})
	return globalStore
}

// Save adds or replaces a report. Evicted reports are returned so their
// artifacts can be removed.
func (s *ReportStore) Save(report *model.Report) []*model.Report {
	s.mu.Lock()
	defer s.mu.Unlock()

	if report.CreatedAt.IsZero() {
		report.CreatedAt = time.Now()
	}
	s.reports[report.ID] = report

	return s.evictIfNeeded()
}

func (s *ReportStore) Get(id string) (*model.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	report, ok := s.reports[id]
	if !ok {
		return nil, ErrReportNotFound
	}
	return report, nil
}

// ListByTenant returns the tenant's reports, newest first.
func (s *ReportStore) ListByTenant(tenant string) []*model.Report {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*model.Report
	for _, r := range s.reports {
		if r.Tenant == tenant {
			result = append(result, r)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result
}

func (s *ReportStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.reports[id]; !ok {
		return ErrReportNotFound
	}
	delete(s.reports, id)
	return nil
}

// evictIfNeeded removes oldest reports if store exceeds maxReports
// Must be called with lock held
func (s *ReportStore) evictIfNeeded() []*model.Report {
	if s.maxReports <= 0 || len(s.reports) <= s.maxReports {
		return nil
	}

	reports := make([]*model.Report, 0, len(s.reports))
	for _, r := range s.reports {
		reports = append(reports, r)
	}
	sort.Slice(reports, func(i, j int) bool {
		return reports[i].CreatedAt.Before(reports[j].CreatedAt)
	})

	evicted := reports[:len(reports)-s.maxReports]
	for _, r := range evicted {
		slog.Info("evicting old report",
			"report_id", r.ID,
			"created_at", r.CreatedAt,
		)
		delete(s.reports, r.ID)
	}
	return evicted
}

// Count returns the number of reports in the store
func (s *ReportStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.reports)
}
