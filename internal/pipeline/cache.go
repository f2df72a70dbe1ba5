package pipeline

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"

	"github.com/badger-rl/logreader/internal/value"
)

func init() {
	// Prim holds one of these concrete Go types; gob needs each concrete
	// type registered once before it can encode/decode a Value's interface
	// field.
	gob.Register(false)
	gob.Register(int8(0))
	gob.Register(int16(0))
	gob.Register(int32(0))
	gob.Register(int64(0))
	gob.Register(uint8(0))
	gob.Register(uint16(0))
	gob.Register(uint32(0))
	gob.Register(uint64(0))
	gob.Register(float32(0))
	gob.Register(float64(0))
	gob.Register("")
}

// ReprCachePath returns the on-disk path of the representation cache file
// for the message with the given absolute index, one gob-encoded blob per
// message named by absolute message index (spec §6, substituting
// encoding/gob for the reference's pickle format per SPEC_FULL.md §6).
func ReprCachePath(cacheDir string, absIndex uint64) string {
	return filepath.Join(cacheDir, fmt.Sprintf("repr_%d.gob", absIndex))
}

// HasCachedRepr reports whether a representation cache file already exists
// for absIndex.
func HasCachedRepr(cacheDir string, absIndex uint64) bool {
	_, err := os.Stat(ReprCachePath(cacheDir, absIndex))
	return err == nil
}

// LoadRepr decodes a previously persisted representation from disk.
func LoadRepr(cacheDir string, absIndex uint64) (value.Value, error) {
	b, err := os.ReadFile(ReprCachePath(cacheDir, absIndex))
	if err != nil {
		return value.Value{}, err
	}
	var v value.Value
	if err := gob.NewDecoder(bytes.NewReader(b)).Decode(&v); err != nil {
		return value.Value{}, err
	}
	return v, nil
}

// SaveRepr persists v for absIndex via a temp-file-then-rename sequence,
// giving the atomic rename-over-target guarantee spec §5 requires for
// in-flight representation cache writes.
func SaveRepr(cacheDir string, absIndex uint64, v value.Value) error {
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(v); err != nil {
		return err
	}
	target := ReprCachePath(cacheDir, absIndex)
	tmp := target + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, target)
}
