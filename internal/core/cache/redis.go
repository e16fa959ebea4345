package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// Cache 读穿缓存。nil *Cache 直接回源，调用方不用判空
type Cache struct {
	RDB    *redis.Client
	Prefix string
	sf     singleflight.Group
}

func New(addr, pass string, db int) *Cache {
	return &Cache{
		RDB:    redis.NewClient(&redis.Options{Addr: addr, Password: pass, DB: db}),
		Prefix: "menus-api:",
	}
}

// 每个 key 配一个代数 <key>:gen，Invalidate 时 INCR。
// 回源结果只有在代数没变时才写回，回源期间发生的失效不会被旧数据覆盖
var setIfGen = redis.NewScript(`
local gen = redis.call('GET', KEYS[2]) or '0'
if gen ~= ARGV[1] then
  return 0
end
if tonumber(ARGV[3]) > 0 then
  redis.call('SET', KEYS[1], ARGV[2], 'PX', ARGV[3])
else
  redis.call('SET', KEYS[1], ARGV[2])
end
return 1
`)

func (c *Cache) Ping(ctx context.Context) error {
	if c == nil {
		return nil
	}
	return c.RDB.Ping(ctx).Err()
}

func (c *Cache) GetOrLoad(ctx context.Context, key string, ttl time.Duration, load func(context.Context) ([]byte, error)) ([]byte, error) {
	if c == nil {
		return load(ctx)
	}
	k := c.Prefix + key
	if b, err := c.RDB.Get(ctx, k).Bytes(); err == nil {
		return b, nil
	}
	gen, err := c.generation(ctx, k)
	if err != nil {
		// redis 不可用：直接回源，不写缓存
		return load(ctx)
	}
	// 同一代的回源合并；失效之后来的请求另起一次
	v, err, _ := c.sf.Do(k+"@"+gen, func() (any, error) {
		b, e := load(ctx)
		if e != nil {
			return nil, e
		}
		_ = setIfGen.Run(ctx, c.RDB, []string{k, genKey(k)}, gen, b, ttl.Milliseconds()).Err()
		return b, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

// Invalidate 写操作之后调用：先推进代数再删 key
func (c *Cache) Invalidate(ctx context.Context, keys ...string) error {
	if c == nil || len(keys) == 0 {
		return nil
	}
	_, err := c.RDB.TxPipelined(ctx, func(p redis.Pipeliner) error {
		for _, key := range keys {
			k := c.Prefix + key
			p.Incr(ctx, genKey(k))
			p.Del(ctx, k)
		}
		return nil
	})
	return err
}

func (c *Cache) Close() error {
	if c == nil {
		return nil
	}
	return c.RDB.Close()
}

func (c *Cache) generation(ctx context.Context, k string) (string, error) {
	gen, err := c.RDB.Get(ctx, genKey(k)).Result()
	if errors.Is(err, redis.Nil) {
		return "0", nil
	}
	return gen, err
}

func genKey(k string) string { return k + ":gen" }
