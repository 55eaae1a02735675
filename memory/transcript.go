package memory

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
)

// Turn is a minimal persisted view of a chat turn.
type Turn struct {
	Role string `json:"role"`
	Text string `json:"text,omitempty"`
}

// TranscriptPath returns the per-user transcript file under dir. userID is
// path-escaped, so distinct ids never share a file and none leaves dir.
func TranscriptPath(dir, userID string) string {
	return filepath.Join(dir, "transcript-"+url.PathEscape(userID)+".json")
}

// LoadTranscript reads turns from path. A missing file yields nil, nil.
func LoadTranscript(path string) ([]Turn, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	var turns []Turn
	if err := json.Unmarshal(b, &turns); err != nil {
		return nil, fmt.Errorf("decode transcript %s: %w", path, err)
	}
	return turns, nil
}

// SaveTranscript overwrites path with turns, creating parent directories.
func SaveTranscript(path string, turns []Turn) error {
	b, err := json.MarshalIndent(turns, "", " ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}
