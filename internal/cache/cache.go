// Package cache keeps upstream answers in a single size-bounded blob
// persisted through a store.KV.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/gatzby-git/shuowenjiezi/internal/store"
)

// StorageKey is the KV key holding the serialized cache.
const StorageKey = "aiCharacterCache"

const (
	// DefaultCeiling is the serialized size above which recommendations are
	// dropped before a write.
	DefaultCeiling = 4_718_592 // 4.5 MiB

	// DefaultRecommendationTTL is how long recommendation entries stay fresh.
	DefaultRecommendationTTL = 24 * time.Hour
)

// Bucket names a partition of the cache.
type Bucket string

const (
	Characters      Bucket = "characters"
	Recommendations Bucket = "recommendations"
	Analyses        Bucket = "analyses"
	Evolutions      Bucket = "evolutions"
)

// Buckets lists every known bucket in a stable order.
var Buckets = []Bucket{Characters, Recommendations, Analyses, Evolutions}

// ParseBucket maps a bucket name to a Bucket.
func ParseBucket(name string) (Bucket, error) {
	for _, b := range Buckets {
		if string(b) == name {
			return b, nil
		}
	}
	return "", fmt.Errorf("unknown cache bucket %q", name)
}

// Options tunes a Cache. Zero values select the defaults.
type Options struct {
	Ceiling           int
	RecommendationTTL time.Duration
	Logger            *slog.Logger
	Now               func() time.Time
}

// Cache is a bucketed key-value cache written through to a store.KV on
// every mutation. All persistence failures are logged and absorbed.
type Cache struct {
	kv      store.KV
	ceiling int
	ttl     time.Duration
	logger  *slog.Logger
	now     func() time.Time

	mu     sync.Mutex
	loaded bool
	data   map[Bucket]map[string]json.RawMessage
}

// envelope wraps entries of buckets that expire.
type envelope struct {
	Timestamp int64           `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
}

// New creates a Cache backed by kv. Nothing is read until first use.
func New(kv store.KV, opts Options) *Cache {
	c := &Cache{
		kv:      kv,
		ceiling: opts.Ceiling,
		ttl:     opts.RecommendationTTL,
		logger:  opts.Logger,
		now:     opts.Now,
	}
	if c.ceiling <= 0 {
		c.ceiling = DefaultCeiling
	}
	if c.ttl <= 0 {
		c.ttl = DefaultRecommendationTTL
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	if c.now == nil {
		c.now = time.Now
	}
	return c
}

// Get decodes the entry for bucket/key into dst. It reports false when the
// entry is missing, expired or undecodable.
func (c *Cache) Get(ctx context.Context, bucket Bucket, key string, dst any) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.load(ctx) {
		return false
	}

	raw, ok := c.data[bucket][key]
	if !ok {
		return false
	}

	if expires(bucket) {
		var env envelope
		if err := json.Unmarshal(raw, &env); err != nil {
			return false
		}
		storedAt := time.UnixMilli(env.Timestamp)
		if c.now().Sub(storedAt) > c.ttl {
			return false
		}
		raw = env.Data
	}

	if err := json.Unmarshal(raw, dst); err != nil {
		c.logger.Warn("cache entry undecodable", "bucket", bucket, "key", key, "err", err)
		return false
	}
	return true
}

// Put stores value under bucket/key, replacing any previous entry, and
// writes the whole cache back.
func (c *Cache) Put(ctx context.Context, bucket Bucket, key string, value any) {
	raw, err := json.Marshal(value)
	if err != nil {
		c.logger.Error("cache encode", "bucket", bucket, "key", key, "err", err)
		return
	}
	if expires(bucket) {
		raw, err = json.Marshal(envelope{Timestamp: c.now().UnixMilli(), Data: raw})
		if err != nil {
			c.logger.Error("cache encode", "bucket", bucket, "key", key, "err", err)
			return
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.load(ctx) {
		c.logger.Warn("cache unreadable, skipping write", "bucket", bucket, "key", key)
		return
	}

	entries, ok := c.data[bucket]
	if !ok {
		entries = map[string]json.RawMessage{}
		c.data[bucket] = entries
	}
	entries[key] = raw
	c.persist(ctx)
}

// Clear empties the given buckets, or every bucket when none are named.
func (c *Cache) Clear(ctx context.Context, buckets ...Bucket) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.load(ctx) {
		c.logger.Warn("cache unreadable, skipping clear")
		return
	}

	if len(buckets) == 0 {
		buckets = Buckets
	}
	for _, b := range buckets {
		c.data[b] = map[string]json.RawMessage{}
	}
	c.persist(ctx)
}

// Stats describes the cache contents.
type Stats struct {
	Entries map[Bucket]int `json:"entries"`
	Bytes   int            `json:"bytes"`
	Ceiling int            `json:"ceiling"`
}

func (s Stats) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "size: %s of %s\n", humanize.Bytes(uint64(s.Bytes)), humanize.Bytes(uint64(s.Ceiling)))
	names := make([]string, 0, len(s.Entries))
	for name := range s.Entries {
		names = append(names, string(name))
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(&b, "  %-16s %s\n", name, humanize.Comma(int64(s.Entries[Bucket(name)])))
	}
	return b.String()
}

// Stats counts entries per bucket and measures the serialized size.
func (c *Cache) Stats(ctx context.Context) Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.load(ctx)

	st := Stats{Entries: map[Bucket]int{}, Ceiling: c.ceiling}
	for b, entries := range c.data {
		st.Entries[b] = len(entries)
	}
	if blob, err := json.Marshal(c.data); err == nil {
		st.Bytes = len(blob)
	}
	return st
}

// load reads the persisted blob once. Missing or corrupt data leaves an
// empty cache. A read error leaves the cache unloaded so the next call reads
// again, and load reports false. Callers hold c.mu.
func (c *Cache) load(ctx context.Context) bool {
	if c.loaded {
		return true
	}
	c.data = emptyData()

	blob, ok, err := c.kv.GetItem(ctx, StorageKey)
	if err != nil {
		c.logger.Warn("cache load", "err", err)
		return false
	}
	c.loaded = true
	if !ok {
		return true
	}

	var data map[Bucket]map[string]json.RawMessage
	if err := json.Unmarshal([]byte(blob), &data); err != nil {
		c.logger.Warn("cache blob corrupt, starting empty", "err", err)
		return true
	}
	for b, entries := range data {
		if entries != nil {
			c.data[b] = entries
		}
	}
	return true
}

// persist writes the cache through to the KV store. Callers hold c.mu.
func (c *Cache) persist(ctx context.Context) {
	blob, err := json.Marshal(c.data)
	if err != nil {
		c.logger.Error("cache encode", "err", err)
		return
	}

	if len(blob) > c.ceiling {
		c.logger.Info("cache over ceiling, clearing recommendations",
			"size", humanize.Bytes(uint64(len(blob))), "ceiling", humanize.Bytes(uint64(c.ceiling)))
		c.data[Recommendations] = map[string]json.RawMessage{}
		if blob, err = json.Marshal(c.data); err != nil {
			c.logger.Error("cache encode", "err", err)
			return
		}
	}

	err = c.kv.SetItem(ctx, StorageKey, string(blob))
	if err == nil {
		return
	}
	if !isQuota(err) {
		c.logger.Error("cache write", "err", err)
		return
	}

	c.logger.Warn("cache quota exceeded, clearing recommendations and analyses", "err", err)
	c.data[Recommendations] = map[string]json.RawMessage{}
	c.data[Analyses] = map[string]json.RawMessage{}
	if blob, err = json.Marshal(c.data); err != nil {
		c.logger.Error("cache encode", "err", err)
		return
	}
	if err := c.kv.SetItem(ctx, StorageKey, string(blob)); err != nil {
		c.logger.Error("cache write after eviction", "err", err)
	}
}

func isQuota(err error) bool {
	return errors.Is(err, store.ErrQuotaExceeded) ||
		strings.Contains(strings.ToLower(err.Error()), "quota")
}

func expires(b Bucket) bool {
	return b == Recommendations
}

func emptyData() map[Bucket]map[string]json.RawMessage {
	data := make(map[Bucket]map[string]json.RawMessage, len(Buckets))
	for _, b := range Buckets {
		data[b] = map[string]json.RawMessage{}
	}
	return data
}
