// Package cache persists raw provider payloads so repeated runs skip
// re-fetching. One pretty-printed JSON array per wallet/chain/provider.
package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/brojonat/daoacct/service/ledger"
)

// Store reads and writes raw payload files under a single directory.
type Store struct {
	dir    string
	logger *slog.Logger
}

// NewStore creates a store rooted at dir. The directory is created on first
// write, not here. A nil logger discards output.
func NewStore(dir string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return &Store{dir: dir, logger: logger}
}

// Path returns the cache file location for a wallet/chain/provider triple.
func (s *Store) Path(provider, wallet string, chain ledger.Chain) string {
	name := fmt.Sprintf("%s_%s_%s_history.json", chain, strings.ToLower(wallet), provider)
	return filepath.Join(s.dir, name)
}

// Load reads a cached payload. ok is false when the file is absent or holds
// an empty array — both mean "must fetch". A file that exists but cannot be
// parsed is a run-level error, not a silent refetch.
func (s *Store) Load(provider, wallet string, chain ledger.Chain) (json.RawMessage, bool, error) {
	path := s.Path(provider, wallet, chain)
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("reading cache %s: %w", path, err)
	}

	var probe []json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, false, fmt.Errorf("corrupt cache %s: %w", path, err)
	}
	if len(probe) == 0 {
		return nil, false, nil
	}

	s.logger.Debug("loaded raw payload from cache",
		"path", path, "transactions", len(probe))
	return data, true, nil
}

// Save writes a payload through to disk, pretty-printed so the files stay
// inspectable with ordinary tools.
func (s *Store) Save(provider, wallet string, chain ledger.Chain, v any) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("creating cache dir %s: %w", s.dir, err)
	}
	data, err := json.MarshalIndent(v, "", "    ")
	if err != nil {
		return fmt.Errorf("serializing payload: %w", err)
	}
	path := s.Path(provider, wallet, chain)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing cache %s: %w", path, err)
	}
	s.logger.Info("saved raw payload", "path", path)
	return nil
}

// List returns the cache files currently on disk, for inspection commands.
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading cache dir %s: %w", s.dir, err)
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), "_history.json") {
			names = append(names, filepath.Join(s.dir, e.Name()))
		}
	}
	return names, nil
}
