package query

import (
	"fmt"
	"sync"

	"github.com/shibukawa/modelexpr"
	"github.com/shibukawa/modelexpr/model"
	"golang.org/x/sync/singleflight"
)

type cacheKey struct {
	root     *model.Type
	text     string
	expected string
	dialect  modelexpr.Dialect
	maxDepth int
}

func (k cacheKey) String() string {
	return fmt.Sprintf("%p\x00%s\x00%s\x00%s\x00%d", k.root, k.text, k.expected, k.dialect, k.maxDepth)
}

// Cache maps (root type, text, expected type, dialect) to parsed
// expressions. Entries live for the life of the cache and are never
// evicted. Readers never block each other; concurrent misses for the same
// key parse once and every caller receives the same Expression. Parse
// errors are not cached.
type Cache struct {
	entries sync.Map // cacheKey -> *Expression
	group   singleflight.Group
}

var defaultCache = NewCache()

// DefaultCache returns the process-wide cache used by Parse.
func DefaultCache() *Cache {
	return defaultCache
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{}
}

// Parse returns the cached expression for the key derived from root, text
// and opts, parsing it on a miss. opts.Values and opts.Functions are not
// part of the key.
func (c *Cache) Parse(root *model.Type, text string, opts Options) (*Expression, error) {
	dialect := opts.Dialect
	if dialect == "" {
		dialect = modelexpr.DialectNative
	}

	key := cacheKey{root: root, text: text, dialect: dialect, maxDepth: opts.MaxDepth}
	if opts.Expected.IsValid() {
		key.expected = opts.Expected.String()
	}

	entry := modelexpr.LogEntry{RootType: typeName(root), Text: text, Dialect: dialect}

	if cached, ok := c.entries.Load(key); ok {
		entry.Event = modelexpr.LogEventCacheHit
		opts.Logger.Log(entry)

		return cached.(*Expression), nil
	}

	entry.Event = modelexpr.LogEventCacheMiss
	opts.Logger.Log(entry)

	v, err, _ := c.group.Do(key.String(), func() (any, error) {
		if cached, ok := c.entries.Load(key); ok {
			return cached, nil
		}

		expr, err := parse(root, text, opts)
		if err != nil {
			return nil, err
		}

		actual, _ := c.entries.LoadOrStore(key, expr)

		return actual, nil
	})
	if err != nil {
		return nil, err
	}

	return v.(*Expression), nil
}

// Len returns the number of cached expressions.
func (c *Cache) Len() int {
	n := 0

	c.entries.Range(func(_, _ any) bool {
		n++
		return true
	})

	return n
}

// Clear drops every entry.
func (c *Cache) Clear() {
	c.entries.Clear()
}
