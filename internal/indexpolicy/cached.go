package indexpolicy

import (
	"strconv"
	"strings"

	"github.com/RichardKnop/docplan/internal/planner"
	"github.com/RichardKnop/docplan/pkg/lrucache"
)

const DefaultCacheSize = 1000

// Cached memoises the selections of another selector. This is safe because
// selectors are deterministic and free of side effects.
type Cached struct {
	selector planner.IndexSelector
	cache    *lrucache.Cache[string, planner.Selection]
}

func NewCached(selector planner.IndexSelector, size int) *Cached {
	if size <= 0 {
		size = DefaultCacheSize
	}
	return &Cached{
		selector: selector,
		cache:    lrucache.New[string, planner.Selection](size),
	}
}

func (c *Cached) Select(candidates []string, ordered bool) (planner.Selection, error) {
	key := cacheKey(candidates, ordered)
	if selection, ok := c.cache.Get(key); ok {
		return cloneSelection(selection), nil
	}

	selection, err := c.selector.Select(candidates, ordered)
	if err != nil {
		return planner.Selection{}, err
	}
	c.cache.Put(key, cloneSelection(selection))
	return selection, nil
}

func cacheKey(candidates []string, ordered bool) string {
	return strconv.FormatBool(ordered) + "\x00" + strings.Join(candidates, "\x00")
}

// cloneSelection keeps callers from mutating cached slices.
func cloneSelection(selection planner.Selection) planner.Selection {
	if selection.Uncovered != nil {
		selection.Uncovered = append([]string(nil), selection.Uncovered...)
	}
	return selection
}
