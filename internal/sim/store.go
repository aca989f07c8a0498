package sim

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MonitorRecord is a stored monitor in the shape the Kener API returns it:
// the typed configuration lives in TypeData as its compact JSON encoding.
type MonitorRecord struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Tag          string    `json:"tag"`
	Status       string    `json:"status"`
	Cron         string    `json:"cron"`
	CategoryName string    `json:"category_name"`
	MonitorType  string    `json:"monitor_type"`
	TypeData     string    `json:"type_data"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// MonitorInput carries the writable monitor fields of a create or update.
type MonitorInput struct {
	Name         string
	Tag          string
	Status       string
	Cron         string
	CategoryName string
	MonitorType  string
	TypeData     string
}

// ErrMonitorNotFound signals that no monitor exists under the requested id.
var ErrMonitorNotFound = errors.New("monitor not found")

// Store exposes the persistence operations behind the monitor API.
type Store interface {
	ListMonitors(ctx context.Context, tag string) ([]MonitorRecord, error)
	GetMonitor(ctx context.Context, id string) (MonitorRecord, error)
	CreateMonitor(ctx context.Context, input MonitorInput) (MonitorRecord, error)
	UpdateMonitor(ctx context.Context, id string, input MonitorInput) (MonitorRecord, error)
	DeleteMonitor(ctx context.Context, id string) error
}

func validateInput(input MonitorInput) error {
	if strings.TrimSpace(input.Tag) == "" {
		return errors.New("tag required")
	}
	if strings.TrimSpace(input.Name) == "" {
		return errors.New("name required")
	}
	if strings.TrimSpace(input.MonitorType) == "" {
		return errors.New("monitor_type required")
	}
	return nil
}

// NewMemoryStore returns an in-memory implementation used by default.
// Monitors list in insertion order, matching how Kener orders records
// created over time.
func NewMemoryStore() Store {
	return &memoryStore{monitors: map[string]MonitorRecord{}}
}

type memoryStore struct {
	mu       sync.RWMutex
	monitors map[string]MonitorRecord
	order    []string
}

func (m *memoryStore) ListMonitors(ctx context.Context, tag string) ([]MonitorRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var results []MonitorRecord
	for _, id := range m.order {
		rec := m.monitors[id]
		if tag == "" || rec.Tag == tag {
			results = append(results, rec)
		}
	}
	return results, nil
}

func (m *memoryStore) GetMonitor(ctx context.Context, id string) (MonitorRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.monitors[id]
	if !ok {
		return MonitorRecord{}, ErrMonitorNotFound
	}
	return rec, nil
}

func (m *memoryStore) CreateMonitor(ctx context.Context, input MonitorInput) (MonitorRecord, error) {
	if err := validateInput(input); err != nil {
		return MonitorRecord{}, err
	}

	now := time.Now().UTC()
	rec := MonitorRecord{
		ID:           uuid.NewString(),
		Name:         input.Name,
		Tag:          input.Tag,
		Status:       input.Status,
		Cron:         input.Cron,
		CategoryName: input.CategoryName,
		MonitorType:  input.MonitorType,
		TypeData:     input.TypeData,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.monitors[rec.ID] = rec
	m.order = append(m.order, rec.ID)
	return rec, nil
}

func (m *memoryStore) UpdateMonitor(ctx context.Context, id string, input MonitorInput) (MonitorRecord, error) {
	if err := validateInput(input); err != nil {
		return MonitorRecord{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.monitors[id]
	if !ok {
		return MonitorRecord{}, ErrMonitorNotFound
	}
	rec.Name = input.Name
	rec.Tag = input.Tag
	rec.Status = input.Status
	rec.Cron = input.Cron
	rec.CategoryName = input.CategoryName
	rec.MonitorType = input.MonitorType
	rec.TypeData = input.TypeData
	rec.UpdatedAt = time.Now().UTC()
	m.monitors[id] = rec
	return rec, nil
}

func (m *memoryStore) DeleteMonitor(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.monitors[id]; !ok {
		return ErrMonitorNotFound
	}
	delete(m.monitors, id)
	for i, v := range m.order {
		if v == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}
