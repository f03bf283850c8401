// Package storage persists shipping method instance settings.
// Supports two backends: file (one JSON document per instance) and memory.
package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"shipping-rules/core/settings"
	"shipping-rules/internal/config"
	"shipping-rules/internal/errors"
)

// Backend is a storage backend type
type Backend string

const (
	BackendFile   Backend = "file"
	BackendMemory Backend = "memory"
)

// Store is the storage interface
type Store interface {
	// Get returns the saved settings of an instance, or the defaults when none are saved
	Get(ctx context.Context, instanceID string) (*Record, error)

	// Save stores the settings of an instance
	Save(ctx context.Context, instanceID string, inst settings.Instance) (*Record, error)

	// Update applies fn to the current settings and saves the result atomically
	Update(ctx context.Context, instanceID string, fn UpdateFunc) (*Record, error)

	// List returns every saved instance, sorted by id
	List(ctx context.Context) ([]*Record, error)

	// Delete removes an instance's saved settings
	Delete(ctx context.Context, instanceID string) error

	// Close closes the store
	Close() error
}

// UpdateFunc derives new settings from the current ones. An error aborts the update.
type UpdateFunc func(current settings.Instance) (settings.Instance, error)

// Record is a stored instance document
type Record struct {
	// InstanceID identifies the method instance
	InstanceID string `json:"instance_id"`

	// Revision changes on every save
	Revision string `json:"revision,omitempty"`

	// Settings are the saved values
	Settings settings.Instance `json:"settings"`

	// UpdatedAt is the time of the last save (zero for defaults)
	UpdatedAt time.Time `json:"updated_at"`

	// Saved is false when the record was synthesized from defaults
	Saved bool `json:"saved"`
}

func defaultRecord(instanceID string) *Record {
	return &Record{
		InstanceID: instanceID,
		Settings:   settings.Defaults(),
	}
}

var validID = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_.-]{0,127}$`)

// ValidateInstanceID rejects ids that are empty or unsafe as file names
func ValidateInstanceID(id string) error {
	if !validID.MatchString(id) || strings.Contains(id, "..") {
		return errors.Inputf("invalid instance id %q", id)
	}
	return nil
}

// New creates the store selected by cfg
func New(cfg config.StoreConfig) (Store, error) {
	switch Backend(cfg.Backend) {
	case BackendFile:
		return NewFileStore(cfg.Directory)
	case BackendMemory:
		return NewMemoryStore(), nil
	}
	return nil, errors.NotSupported("store backend " + cfg.Backend)
}

// FileStore is a file-based storage backend
type FileStore struct {
	basePath string
	mu       sync.RWMutex
}

// NewFileStore creates a file store
func NewFileStore(basePath string) (*FileStore, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, errors.Storage("create storage directory", err)
	}
	return &FileStore{basePath: basePath}, nil
}

func (s *FileStore) path(instanceID string) string {
	return filepath.Join(s.basePath, instanceID+".json")
}

func (s *FileStore) Get(ctx context.Context, instanceID string) (*Record, error) {
	if err := ValidateInstanceID(instanceID); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.load(instanceID)
}

func (s *FileStore) load(instanceID string) (*Record, error) {
	data, err := os.ReadFile(s.path(instanceID))
	if os.IsNotExist(err) {
		return defaultRecord(instanceID), nil
	}
	if err != nil {
		return nil, errors.Storage("read settings", err)
	}

	var record Record
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, errors.Storage(fmt.Sprintf("decode settings of %s", instanceID), err)
	}
	record.Saved = true
	return &record, nil
}

func (s *FileStore) Save(ctx context.Context, instanceID string, inst settings.Instance) (*Record, error) {
	if err := ValidateInstanceID(instanceID); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.write(instanceID, inst)
}

func (s *FileStore) Update(ctx context.Context, instanceID string, fn UpdateFunc) (*Record, error) {
	if err := ValidateInstanceID(instanceID); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.load(instanceID)
	if err != nil {
		return nil, err
	}
	updated, err := fn(current.Settings)
	if err != nil {
		return nil, err
	}
	return s.write(instanceID, updated)
}

func (s *FileStore) write(instanceID string, inst settings.Instance) (*Record, error) {
	record := newRecord(instanceID, inst)

	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return nil, errors.Storage("encode settings", err)
	}

	// write-then-rename so readers never see a partial document
	tmp := s.path(instanceID) + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return nil, errors.Storage("write settings", err)
	}
	if err := os.Rename(tmp, s.path(instanceID)); err != nil {
		_ = os.Remove(tmp)
		return nil, errors.Storage("write settings", err)
	}

	return record, nil
}

func (s *FileStore) List(ctx context.Context) ([]*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.basePath)
	if err != nil {
		return nil, errors.Storage("read storage", err)
	}

	var records []*Record
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}

		data, err := os.ReadFile(filepath.Join(s.basePath, entry.Name()))
		if err != nil {
			continue
		}

		var record Record
		if err := json.Unmarshal(data, &record); err != nil {
			continue
		}
		record.Saved = true
		records = append(records, &record)
	}

	sortRecords(records)
	return records, nil
}

func (s *FileStore) Delete(ctx context.Context, instanceID string) error {
	if err := ValidateInstanceID(instanceID); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.path(instanceID))
	if os.IsNotExist(err) {
		return errors.NotFound("instance", instanceID)
	}
	if err != nil {
		return errors.Storage("delete settings", err)
	}
	return nil
}

func (s *FileStore) Close() error {
	return nil
}

// MemoryStore is an in-memory storage backend
type MemoryStore struct {
	records map[string]*Record
	mu      sync.RWMutex
}

// NewMemoryStore creates a memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[string]*Record),
	}
}

func (s *MemoryStore) Get(ctx context.Context, instanceID string) (*Record, error) {
	if err := ValidateInstanceID(instanceID); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.records[instanceID]
	if !ok {
		return defaultRecord(instanceID), nil
	}
	return cloneRecord(record), nil
}

func (s *MemoryStore) Save(ctx context.Context, instanceID string, inst settings.Instance) (*Record, error) {
	if err := ValidateInstanceID(instanceID); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	record := newRecord(instanceID, inst)
	s.records[instanceID] = cloneRecord(record)
	return record, nil
}

func (s *MemoryStore) Update(ctx context.Context, instanceID string, fn UpdateFunc) (*Record, error) {
	if err := ValidateInstanceID(instanceID); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current := defaultRecord(instanceID)
	if record, ok := s.records[instanceID]; ok {
		current = cloneRecord(record)
	}
	updated, err := fn(current.Settings)
	if err != nil {
		return nil, err
	}

	record := newRecord(instanceID, updated)
	s.records[instanceID] = cloneRecord(record)
	return record, nil
}

func (s *MemoryStore) List(ctx context.Context) ([]*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := make([]*Record, 0, len(s.records))
	for _, record := range s.records {
		records = append(records, cloneRecord(record))
	}
	sortRecords(records)
	return records, nil
}

func (s *MemoryStore) Delete(ctx context.Context, instanceID string) error {
	if err := ValidateInstanceID(instanceID); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[instanceID]; !ok {
		return errors.NotFound("instance", instanceID)
	}
	delete(s.records, instanceID)
	return nil
}

func (s *MemoryStore) Close() error {
	return nil
}

func newRecord(instanceID string, inst settings.Instance) *Record {
	return &Record{
		InstanceID: instanceID,
		Revision:   uuid.New().String(),
		Settings:   inst,
		UpdatedAt:  time.Now().UTC(),
		Saved:      true,
	}
}

func cloneRecord(r *Record) *Record {
	c := *r
	c.Settings.Values = make(map[string]string, len(r.Settings.Values))
	for k, v := range r.Settings.Values {
		c.Settings.Values[k] = v
	}
	return &c
}

func sortRecords(records []*Record) {
	sort.Slice(records, func(i, j int) bool {
		return records[i].InstanceID < records[j].InstanceID
	})
}
