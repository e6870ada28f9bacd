package repository

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"MarketClose/internal/domain/repository"
)

// FileSubscribers keeps one chat id per line in a plain-text file.
type FileSubscribers struct {
	mu     sync.Mutex
	path   string
	loaded bool
	ids    []string
	seen   map[string]struct{}
}

func NewFileSubscribers(path string) repository.SubscriberRepository {
	return &FileSubscribers{path: path, seen: make(map[string]struct{})}
}

func (s *FileSubscribers) Add(_ context.Context, id string) (bool, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return false, errors.New("subscriber id is empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.load(); err != nil {
		return false, err
	}
	if _, ok := s.seen[id]; ok {
		return false, nil
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return false, fmt.Errorf("subscribers dir: %w", err)
	}
	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return false, fmt.Errorf("open subscribers: %w", err)
	}
	_, werr := f.WriteString(id + "\n")
	cerr := f.Close()
	if err := errors.Join(werr, cerr); err != nil {
		return false, fmt.Errorf("append subscriber: %w", err)
	}

	s.seen[id] = struct{}{}
	s.ids = append(s.ids, id)
	return true, nil
}

func (s *FileSubscribers) ListAll(_ context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.load(); err != nil {
		return nil, err
	}
	out := make([]string, len(s.ids))
	copy(out, s.ids)
	return out, nil
}

// load reads the file once; later changes go through Add.
func (s *FileSubscribers) load() error {
	if s.loaded {
		return nil
	}
	f, err := os.Open(s.path)
	if errors.Is(err, os.ErrNotExist) {
		s.loaded = true
		return nil
	}
	if err != nil {
		return fmt.Errorf("open subscribers: %w", err)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		id := strings.TrimSpace(sc.Text())
		if id == "" {
			continue
		}
		if _, ok := s.seen[id]; ok {
			continue
		}
		s.seen[id] = struct{}{}
		s.ids = append(s.ids, id)
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("read subscribers: %w", err)
	}
	s.loaded = true
	return nil
}
