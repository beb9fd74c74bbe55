package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"TempQuant/internal/domain/models"
	"TempQuant/internal/domain/repository"
)

// readJSONFile loads a JSON file into dest, reporting ok=false on a missing
// file so callers can substitute defaults.
func readJSONFile(path string, dest interface{}) (bool, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	return true, nil
}

// writeJSONFile writes dest atomically via a temp file rename.
func writeJSONFile(path string, v interface{}) error {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", filepath.Base(path), err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replace %s: %w", filepath.Base(path), err)
	}
	return nil
}

// FileConfigStore persists the runtime trading config as JSON.
type FileConfigStore struct {
	mu   sync.Mutex
	path string
}

func NewFileConfigStore(dataDir string) *FileConfigStore {
	return &FileConfigStore{path: filepath.Join(dataDir, "trading_config.json")}
}

func (s *FileConfigStore) Load(_ context.Context) (models.TradingConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cfg := models.DefaultTradingConfig()
	ok, err := readJSONFile(s.path, &cfg)
	if err != nil {
		return models.TradingConfig{}, err
	}
	if !ok {
		return models.DefaultTradingConfig(), nil
	}
	cfg.Normalize()
	return cfg, nil
}

func (s *FileConfigStore) Save(_ context.Context, cfg models.TradingConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return writeJSONFile(s.path, cfg)
}

// FileBudgetStore persists the daily spend counter with calendar-day
// rollover: loading under a new day key resets the counter.
type FileBudgetStore struct {
	mu   sync.Mutex
	path string
}

func NewFileBudgetStore(dataDir string) *FileBudgetStore {
	return &FileBudgetStore{path: filepath.Join(dataDir, "budget.json")}
}

func (s *FileBudgetStore) Load(_ context.Context, today string) (models.BudgetState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(today)
}

func (s *FileBudgetStore) RecordSpend(_ context.Context, today string, cents int64) (models.BudgetState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, err := s.load(today)
	if err != nil {
		return models.BudgetState{}, err
	}
	st.SpentCents += cents
	if err := writeJSONFile(s.path, st); err != nil {
		return models.BudgetState{}, err
	}
	return st, nil
}

func (s *FileBudgetStore) load(today string) (models.BudgetState, error) {
	var st models.BudgetState
	ok, err := readJSONFile(s.path, &st)
	if err != nil {
		return models.BudgetState{}, err
	}
	if !ok || st.Date != today {
		return models.BudgetState{Date: today}, nil
	}
	return st, nil
}

// FilePaperStore persists the paper trading world as JSON.
type FilePaperStore struct {
	mu   sync.Mutex
	path string
}

func NewFilePaperStore(dataDir string) *FilePaperStore {
	return &FilePaperStore{path: filepath.Join(dataDir, "paper.json")}
}

func (s *FilePaperStore) Load(_ context.Context) (models.PaperState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var st models.PaperState
	ok, err := readJSONFile(s.path, &st)
	if err != nil {
		return models.PaperState{}, err
	}
	if !ok {
		return models.NewPaperState(), nil
	}
	if st.BalanceCents == 0 && len(st.Open) == 0 && len(st.Settled) == 0 {
		return models.NewPaperState(), nil
	}
	return st, nil
}

func (s *FilePaperStore) Save(_ context.Context, st models.PaperState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return writeJSONFile(s.path, st)
}

var (
	_ repository.ConfigStore = (*FileConfigStore)(nil)
	_ repository.BudgetStore = (*FileBudgetStore)(nil)
	_ repository.PaperStore  = (*FilePaperStore)(nil)
)
