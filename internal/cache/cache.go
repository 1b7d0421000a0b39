// Package cache stores compile results on disk, keyed by the template text
// and a fingerprint of everything else that affects the output.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"tmplc/internal/compiler"
	"tmplc/internal/diag"
)

// schemaVersion увеличивать при изменении формата Entry
const schemaVersion uint16 = 1

// Digest is a SHA-256 cache key.
type Digest [sha256.Size]byte

func (d Digest) String() string {
	return hex.EncodeToString(d[:])
}

// Key derives the cache key of template compiled under fingerprint.
func Key(template, fingerprint string) Digest {
	h := sha256.New()
	h.Write([]byte(fingerprint))
	h.Write([]byte{0})
	h.Write([]byte(template))
	var d Digest
	copy(d[:], h.Sum(nil))
	return d
}

// Entry is one cached compile result. The AST is not stored.
type Entry struct {
	Schema          uint16            `msgpack:"schema"`
	Render          string            `msgpack:"render"`
	StaticRenderFns []string          `msgpack:"static"`
	Errors          []diag.Diagnostic `msgpack:"errors"`
	Tips            []diag.Diagnostic `msgpack:"tips"`
	Stored          int64             `msgpack:"stored"`
}

// FromResult captures the cacheable part of res.
func FromResult(res *compiler.Result) *Entry {
	return &Entry{
		Schema:          schemaVersion,
		Render:          res.Render,
		StaticRenderFns: res.StaticRenderFns,
		Errors:          res.Errors,
		Tips:            res.Tips,
		Stored:          time.Now().Unix(),
	}
}

// Result rebuilds a compile result without AST.
func (e *Entry) Result() *compiler.Result {
	res := &compiler.Result{
		Render:          e.Render,
		StaticRenderFns: e.StaticRenderFns,
		Errors:          e.Errors,
		Tips:            e.Tips,
	}
	if res.StaticRenderFns == nil {
		res.StaticRenderFns = []string{}
	}
	if res.Errors == nil {
		res.Errors = []diag.Diagnostic{}
	}
	if res.Tips == nil {
		res.Tips = []diag.Diagnostic{}
	}
	return res
}

// DiskCache is a directory of msgpack entries. Safe for concurrent use.
// A nil *DiskCache is a valid cache that never hits.
type DiskCache struct {
	mu  sync.RWMutex
	dir string
}

// Open returns a cache rooted at dir, creating it if needed.
func Open(dir string) (*DiskCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}
	return &DiskCache{dir: dir}, nil
}

// OpenDefault opens the cache under $XDG_CACHE_HOME/app or ~/.cache/app.
func OpenDefault(app string) (*DiskCache, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		base = filepath.Join(home, ".cache")
	}
	return Open(filepath.Join(base, app))
}

// Dir returns the cache root.
func (c *DiskCache) Dir() string {
	if c == nil {
		return ""
	}
	return c.dir
}

func (c *DiskCache) pathFor(key Digest) string {
	hexKey := key.String()
	return filepath.Join(c.dir, "tpl", hexKey[:2], hexKey+".mp")
}

// Put writes e under key, replacing any previous entry atomically.
func (c *DiskCache) Put(key Digest, e *Entry) error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	tmp := f.Name()

	e.Schema = schemaVersion
	if err := msgpack.NewEncoder(f).Encode(e); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("encode cache entry: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	// атомарная замена
	if err := os.Rename(tmp, p); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}

// Get reads the entry under key. Missing entries and entries written with
// another schema report ok=false without error.
func (c *DiskCache) Get(key Digest) (*Entry, bool, error) {
	if c == nil {
		return nil, false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	f, err := os.Open(c.pathFor(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, err
	}
	defer f.Close()

	var e Entry
	if err := msgpack.NewDecoder(f).Decode(&e); err != nil {
		return nil, false, fmt.Errorf("decode cache entry %s: %w", key, err)
	}
	if e.Schema != schemaVersion {
		return nil, false, nil
	}
	return &e, true, nil
}

// DropAll removes every entry.
func (c *DiskCache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	// переименовываем, чтобы параллельный Open не увидел полупустой каталог
	old := c.dir + ".old-" + time.Now().Format("20060102150405")
	if err := os.Rename(c.dir, old); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return os.MkdirAll(c.dir, 0o755)
		}
		return err
	}
	if err := os.RemoveAll(old); err != nil {
		return err
	}
	return os.MkdirAll(c.dir, 0o755)
}
