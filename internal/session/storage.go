package session

import (
	"context"
	"fmt"
	"os"
)

// Storage persists the one credential string that survives restarts.
// Load returns "" when no credential is stored.
type Storage interface {
	Load(ctx context.Context) (string, error)
	Save(ctx context.Context, token string) error
	Clear(ctx context.Context) error
}

// FileStorage keeps the credential in a single local file.
type FileStorage struct {
	path string
}

func NewFileStorage(path string) *FileStorage {
	return &FileStorage{path: path}
}

func (f *FileStorage) Load(_ context.Context) (string, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("session: read credential file: %w", err)
	}
	return string(data), nil
}

func (f *FileStorage) Save(_ context.Context, token string) error {
	if err := os.WriteFile(f.path, []byte(token), 0o600); err != nil {
		return fmt.Errorf("session: write credential file: %w", err)
	}
	return nil
}

func (f *FileStorage) Clear(_ context.Context) error {
	if err := os.Remove(f.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("session: remove credential file: %w", err)
	}
	return nil
}

// MemoryStorage holds the credential in memory only. Used in tests and
// when persistence across restarts is not wanted.
type MemoryStorage struct {
	token string
}

func NewMemoryStorage() *MemoryStorage { return &MemoryStorage{} }

func (m *MemoryStorage) Load(_ context.Context) (string, error) { return m.token, nil }

func (m *MemoryStorage) Save(_ context.Context, token string) error {
	m.token = token
	return nil
}

func (m *MemoryStorage) Clear(_ context.Context) error {
	m.token = ""
	return nil
}
