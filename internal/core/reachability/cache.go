package reachability

import (
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// resultCache 带过期时间的探测结果缓存
//
// 值为探测错误，nil 表示可达。每次 Purge 递增代数，
// 探测开始前记录的代数已过期时结果不再写入。
type resultCache struct {
	lru *expirable.LRU[string, cachedResult]

	mu  sync.Mutex
	gen uint64
}

type cachedResult struct {
	err error
}

func newResultCache(size int, ttl time.Duration) *resultCache {
	return &resultCache{
		lru: expirable.NewLRU[string, cachedResult](size, nil, ttl),
	}
}

// Get 返回缓存的探测结果
func (c *resultCache) Get(key string) (cachedResult, bool) {
	return c.lru.Get(key)
}

// Generation 当前代数，探测开始前读取
func (c *resultCache) Generation() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gen
}

// Add 缓存探测结果，gen 已过期时丢弃并返回 false
func (c *resultCache) Add(gen uint64, key string, err error) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen {
		return false
	}
	c.lru.Add(key, cachedResult{err: err})
	return true
}

// Purge 清空缓存并使进行中的探测结果失效
func (c *resultCache) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	c.lru.Purge()
}

// Len 缓存条目数
func (c *resultCache) Len() int {
	return c.lru.Len()
}
