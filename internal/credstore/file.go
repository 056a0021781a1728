package credstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/vamshidandi/jobportal/internal/crypto"
	"github.com/vamshidandi/jobportal/internal/domain"
)

// FileStore persists the token pair as a JSON file, tokens passed through a
// cipher before hitting disk. Writes are atomic (tmp + rename) so a crash
// never leaves a half-written pair behind.
type FileStore struct {
	path   string
	cipher crypto.Cipher
}

type storedPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

func NewFileStore(path string, cipher crypto.Cipher) *FileStore {
	if cipher == nil {
		cipher = crypto.Noop{}
	}
	return &FileStore{path: path, cipher: cipher}
}

func (s *FileStore) Save(_ context.Context, pair domain.TokenPair) error {
	if !pair.Complete() {
		return fmt.Errorf("refusing to save partial token pair")
	}

	access, err := s.cipher.Encrypt(pair.Access)
	if err != nil {
		return fmt.Errorf("failed to encrypt access token: %w", err)
	}
	refresh, err := s.cipher.Encrypt(pair.Refresh)
	if err != nil {
		return fmt.Errorf("failed to encrypt refresh token: %w", err)
	}

	payload, err := json.Marshal(storedPair{Access: access, Refresh: refresh})
	if err != nil {
		return fmt.Errorf("failed to marshal credentials: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("failed to create credentials dir: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, payload, 0o600); err != nil {
		return fmt.Errorf("failed to write credentials: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to commit credentials: %w", err)
	}
	return nil
}

// Load returns the stored pair. Unreadable, corrupt, or partial files are
// treated as absent: the session resolver turns absence into an
// unauthenticated session, which is always a safe answer.
func (s *FileStore) Load(_ context.Context) (domain.TokenPair, bool, error) {
	payload, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			slog.Warn("Credential file unreadable, treating as absent", "path", s.path, "error", err)
		}
		return domain.TokenPair{}, false, nil
	}

	var stored storedPair
	if err := json.Unmarshal(payload, &stored); err != nil {
		slog.Warn("Credential file corrupt, treating as absent", "path", s.path, "error", err)
		return domain.TokenPair{}, false, nil
	}

	access, err := s.cipher.Decrypt(stored.Access)
	if err != nil {
		slog.Warn("Credential decrypt failed, treating as absent", "path", s.path, "error", err)
		return domain.TokenPair{}, false, nil
	}
	refresh, err := s.cipher.Decrypt(stored.Refresh)
	if err != nil {
		slog.Warn("Credential decrypt failed, treating as absent", "path", s.path, "error", err)
		return domain.TokenPair{}, false, nil
	}

	pair := domain.TokenPair{Access: access, Refresh: refresh}
	if !pair.Complete() {
		// Half a pair is worse than none.
		slog.Warn("Partial token pair on disk, treating as absent", "path", s.path)
		return domain.TokenPair{}, false, nil
	}
	return pair, true, nil
}

func (s *FileStore) Clear(_ context.Context) error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to clear credentials: %w", err)
	}
	return nil
}
