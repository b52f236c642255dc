package query

import (
	"bytes"
	"compress/gzip"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"

	"github.com/genomectl/repogenome/internal/cache"
)

const compressThreshold = 10 * 1024

// Cache wraps a cache.Store with Page-aware encode/decode and
// transparent gzip compression above compressThreshold bytes, so the
// Query Engine doesn't have to think about the underlying backend
// (in-process or shared Redis).
type Cache struct {
	store cache.Store
}

// NewCache wraps store for query result caching.
func NewCache(store cache.Store) *Cache {
	return &Cache{store: store}
}

// Key builds the cache key for one query: genome generation, predicate,
// and options, hashed to a fixed-width string. Bumping genomeGeneration
// on every Genome mutation makes every prior key unreachable without an
// explicit flush, per spec.md's generation-number invalidation design.
func Key(genomeGeneration uint64, predicate Predicate, opts Options) string {
	h := sha256.New()
	fmt.Fprintf(h, "%d|", genomeGeneration)
	enc := json.NewEncoder(h)
	_ = enc.Encode(predicate)
	_ = enc.Encode(opts)
	return hex.EncodeToString(h.Sum(nil))
}

// Get returns the cached Page for key, if present and unexpired.
func (c *Cache) Get(ctx context.Context, key string) (Page, bool) {
	raw, found, err := c.store.Get(ctx, key)
	if err != nil || !found {
		return Page{}, false
	}
	page, err := decodePage(raw)
	if err != nil {
		return Page{}, false
	}
	return page, true
}

// Set stores page under key, compressing the encoded payload when it
// exceeds compressThreshold.
func (c *Cache) Set(ctx context.Context, key string, page Page) error {
	encoded, err := encodePage(page)
	if err != nil {
		return err
	}
	return c.store.Set(ctx, key, encoded)
}

// Flush discards every cached entry, used on Genome generation bump.
func (c *Cache) Flush(ctx context.Context) error {
	return c.store.Flush(ctx)
}

func encodePage(page Page) ([]byte, error) {
	raw, err := json.Marshal(page)
	if err != nil {
		return nil, fmt.Errorf("query: encode cached page: %w", err)
	}
	if len(raw) <= compressThreshold {
		return append([]byte{0}, raw...), nil
	}

	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(raw); err != nil {
		return nil, fmt.Errorf("query: gzip cached page: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("query: gzip close: %w", err)
	}
	return append([]byte{1}, buf.Bytes()...), nil
}

func decodePage(data []byte) (Page, error) {
	if len(data) == 0 {
		return Page{}, fmt.Errorf("query: empty cache entry")
	}
	flag, body := data[0], data[1:]

	var raw []byte
	if flag == 1 {
		zr, err := gzip.NewReader(bytes.NewReader(body))
		if err != nil {
			return Page{}, fmt.Errorf("query: gzip reader: %w", err)
		}
		defer zr.Close()
		decompressed, err := io.ReadAll(zr)
		if err != nil {
			return Page{}, fmt.Errorf("query: gzip read: %w", err)
		}
		raw = decompressed
	} else {
		raw = body
	}

	var page Page
	if err := json.Unmarshal(raw, &page); err != nil {
		return Page{}, fmt.Errorf("query: decode cached page: %w", err)
	}
	return page, nil
}
