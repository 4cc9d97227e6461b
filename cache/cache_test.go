package cache

import "github.com/CreativeUnicorns/prefhook"

var (
	_ prefhook.Cache = (*MemoryCache)(nil)
	_ prefhook.Cache = (*RedisCache)(nil)
)
