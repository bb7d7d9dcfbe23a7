package path

import (
	"fmt"
	"sync"

	"github.com/shibukawa/modelexpr/model"
	"golang.org/x/sync/singleflight"
)

type cacheKey struct {
	root *model.Type
	text string
}

// Cache memoizes parsed path strings per root type, including "no path"
// results. Entries are never evicted. Concurrent misses for the same key
// parse once.
type Cache struct {
	entries sync.Map // cacheKey -> *Path
	group   singleflight.Group
	opts    Options
}

// NewCache creates a cache that parses with opts.
func NewCache(opts Options) *Cache {
	return &Cache{opts: opts}
}

// Parse returns the cached path for (root, text), parsing it on a miss.
// Errors are not cached.
func (c *Cache) Parse(root *model.Type, text string) (*Path, error) {
	key := cacheKey{root: root, text: text}

	if cached, ok := c.entries.Load(key); ok {
		return cached.(*Path), nil
	}

	v, err, _ := c.group.Do(fmt.Sprintf("%p\x00%s", root, text), func() (any, error) {
		if cached, ok := c.entries.Load(key); ok {
			return cached, nil
		}

		p, err := Parse(root, text, c.opts)
		if err != nil {
			return nil, err
		}

		actual, _ := c.entries.LoadOrStore(key, p)

		return actual, nil
	})
	if err != nil {
		return nil, err
	}

	return v.(*Path), nil
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	n := 0

	c.entries.Range(func(_, _ any) bool {
		n++
		return true
	})

	return n
}
