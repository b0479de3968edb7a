package ocr

import (
	"container/list"
	"context"
	"encoding/hex"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/crypto/blake2b"
)

// NoopEngine recognizes nothing. Useful for dry runs.
type NoopEngine struct{}

func (NoopEngine) Name() string { return "noop" }

func (NoopEngine) Recognize(ctx context.Context, input Input) (Result, error) {
	return Result{InputID: input.ID, ImageWidth: input.Width, ImageHeight: input.Height}, nil
}

// CachingEngine memoizes results of an inner engine by image content.
// Scanned documents often repeat the same image (logos, blank separators).
type CachingEngine struct {
	inner Engine
	size  int

	mu      sync.Mutex
	order   *list.List
	entries map[string]*list.Element
	hits    int
}

type cacheEntry struct {
	key    string
	result Result
}

// NewCachingEngine keeps up to size results. size <= 0 disables caching.
func NewCachingEngine(inner Engine, size int) *CachingEngine {
	return &CachingEngine{
		inner:   inner,
		size:    size,
		order:   list.New(),
		entries: make(map[string]*list.Element),
	}
}

func (c *CachingEngine) Name() string { return c.inner.Name() }

// Ping forwards to the inner engine when it supports it.
func (c *CachingEngine) Ping(ctx context.Context) error {
	if p, ok := c.inner.(Pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}

// Hits returns how many requests were served from the cache.
func (c *CachingEngine) Hits() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits
}

func (c *CachingEngine) Recognize(ctx context.Context, input Input) (Result, error) {
	if c.size <= 0 {
		return c.inner.Recognize(ctx, input)
	}
	key := cacheKey(input)

	c.mu.Lock()
	if el, ok := c.entries[key]; ok {
		c.order.MoveToFront(el)
		c.hits++
		res := el.Value.(*cacheEntry).result
		c.mu.Unlock()
		res.InputID = input.ID
		return res, nil
	}
	c.mu.Unlock()

	res, err := c.inner.Recognize(ctx, input)
	if err != nil {
		return Result{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[key]; !ok {
		c.entries[key] = c.order.PushFront(&cacheEntry{key: key, result: res})
		for c.order.Len() > c.size {
			last := c.order.Back()
			c.order.Remove(last)
			delete(c.entries, last.Value.(*cacheEntry).key)
		}
	}
	return res, nil
}

func cacheKey(in Input) string {
	h, _ := blake2b.New256(nil)
	h.Write(in.Image)
	h.Write([]byte{0})
	h.Write([]byte(strings.Join(in.Languages, ",")))
	if in.Region != nil {
		h.Write([]byte{1})
		h.Write([]byte(regionKey(*in.Region)))
	}
	return hex.EncodeToString(h.Sum(nil))
}

func regionKey(r Region) string {
	var b strings.Builder
	for _, v := range []float64{r.X, r.Y, r.Width, r.Height} {
		b.WriteString(strconv.FormatFloat(v, 'f', -1, 64))
		b.WriteByte(' ')
	}
	return b.String()
}
