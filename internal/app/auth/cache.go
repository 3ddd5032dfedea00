package auth

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"golang.org/x/oauth2"
)

// Cache persists the token bundle on disk between runs.
type Cache struct {
	path string
}

// NewCache creates a cache backed by the given file path.
func NewCache(path string) *Cache {
	return &Cache{path: path}
}

// Load reads the cached token. A missing cache file is not an error; it
// returns (nil, nil).
func (c *Cache) Load() (*oauth2.Token, error) {
	data, err := os.ReadFile(c.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "failed to read credential cache")
	}

	var token oauth2.Token
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, errors.Wrap(err, "failed to parse credential cache")
	}
	return &token, nil
}

// Save writes the token with owner-only permissions, replacing any previous
// value wholesale.
func (c *Cache) Save(token *oauth2.Token) error {
	if err := os.MkdirAll(filepath.Dir(c.path), 0o700); err != nil {
		return errors.Wrap(err, "failed to create credential cache directory")
	}

	data, err := json.MarshalIndent(token, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to marshal credentials")
	}

	if err := os.WriteFile(c.path, data, 0o600); err != nil {
		return errors.Wrap(err, "failed to write credential cache")
	}
	return nil
}

// Clear removes the cached token.
func (c *Cache) Clear() error {
	if err := os.Remove(c.path); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "failed to clear credential cache")
	}
	return nil
}
