package storage

import (
	"os"
	"path/filepath"
	"time"

	"github.com/goccy/go-json"
	"github.com/pkg/errors"
)

const credentialsFile = "credentials.json"

// FileTier is the durable tier: a credentials file that survives restarts.
type FileTier struct {
	dir string
}

var _ Tier = (*FileTier)(nil)

// NewFileTier creates a durable tier rooted at dir.
func NewFileTier(dir string) *FileTier {
	return &FileTier{dir: dir}
}

func (f *FileTier) Save(pair TokenPair, _ time.Time) error {
	if err := os.MkdirAll(f.dir, 0o700); err != nil {
		return errors.Wrap(err, "[FileTier.Save] mkdir")
	}
	data, err := json.Marshal(pair)
	if err != nil {
		return errors.Wrap(err, "[FileTier.Save] marshal")
	}
	if err := os.WriteFile(f.path(), data, 0o600); err != nil {
		return errors.Wrap(err, "[FileTier.Save] write")
	}
	return nil
}

func (f *FileTier) Load() (TokenPair, bool) {
	data, err := os.ReadFile(f.path())
	if err != nil {
		return TokenPair{}, false
	}
	var pair TokenPair
	if err := json.Unmarshal(data, &pair); err != nil {
		// A corrupt credentials file is the same as no credentials.
		return TokenPair{}, false
	}
	return pair, !pair.Empty()
}

func (f *FileTier) Clear() {
	_ = os.Remove(f.path())
}

func (f *FileTier) path() string {
	return filepath.Join(f.dir, credentialsFile)
}
