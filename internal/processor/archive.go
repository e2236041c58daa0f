package processor

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Archive writes webhook payloads to disk so calls can be reprocessed
// if analysis or persistence failed at ingest time.
type Archive struct {
	dir string
}

func NewArchive(dir string) *Archive {
	return &Archive{dir: dir}
}

// SaveRaw stores a payload exactly as received, keyed by message type.
func (a *Archive) SaveRaw(msgType string, raw []byte) (string, error) {
	return a.write(msgType, ".json", raw)
}

// SaveProcessed stores the validated form next to its raw counterpart.
func (a *Archive) SaveProcessed(msgType string, v any) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal processed payload: %w", err)
	}
	return a.write(msgType, ".processed.json", data)
}

func (a *Archive) write(msgType, suffix string, data []byte) (string, error) {
	dir := filepath.Join(a.dir, sanitize(msgType))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create archive dir: %w", err)
	}

	name := fmt.Sprintf("%s_%s%s", time.Now().UTC().Format("20060102T150405"), uuid.New().String()[:8], suffix)
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write archive file: %w", err)
	}
	return path, nil
}

// MarkDone renames a raw archive file so ListRaw no longer offers it
// for reprocessing. Called once the pipeline has persisted the call.
func (a *Archive) MarkDone(path string) (string, error) {
	if !strings.HasSuffix(path, ".json") || strings.HasSuffix(path, ".done.json") {
		return "", fmt.Errorf("not a raw archive file: %s", path)
	}
	done := strings.TrimSuffix(path, ".json") + ".done.json"
	if err := os.Rename(path, done); err != nil {
		return "", fmt.Errorf("mark archive file done: %w", err)
	}
	return done, nil
}

// ListRaw returns the unconsumed raw archive files of one message
// type, oldest first. Processed and done siblings are excluded.
func (a *Archive) ListRaw(msgType string) ([]string, error) {
	dir := filepath.Join(a.dir, sanitize(msgType))
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read archive dir: %w", err)
	}

	var out []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if strings.HasSuffix(name, ".processed.json") || strings.HasSuffix(name, ".done.json") || !strings.HasSuffix(name, ".json") {
			continue
		}
		out = append(out, filepath.Join(dir, name))
	}
	return out, nil
}

func sanitize(msgType string) string {
	if msgType == "" {
		return "unknown"
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-' || r == '_':
			return r
		default:
			return '_'
		}
	}, msgType)
}
