package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/kojitaniguchi/schedule-arranger/config"
)

// Client Redis 客户端封装
// 当前用于 CSRF 一次性令牌与速率限制；后续可扩展缓存等场景
type Client struct {
	rdb    *goredis.Client
	logger *zap.Logger
}

// NewClient 创建 Redis 连接并执行 Ping 健康检查
func NewClient(cfg *config.RedisConfig, logger *zap.Logger) (*Client, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("Redis 连接失败: %w", err)
	}

	logger.Info("Redis 连接成功", zap.String("addr", cfg.Addr))

	return &Client{rdb: rdb, logger: logger}, nil
}

// ── CSRF 一次性令牌 ──

const csrfPrefix = "csrf:"

// IssueCSRFToken 为指定用户签发一次性 CSRF 令牌，TTL 到期自动失效
func (c *Client) IssueCSRFToken(ctx context.Context, userID int64, ttl time.Duration) (string, error) {
	token := uuid.New().String()
	key := csrfPrefix + token
	if err := c.rdb.Set(ctx, key, strconv.FormatInt(userID, 10), ttl).Err(); err != nil {
		return "", fmt.Errorf("签发 CSRF 令牌失败: %w", err)
	}
	return token, nil
}

// ConsumeCSRFToken 校验并消费令牌（一次性：校验成功即删除）
// 返回 true 仅当令牌存在且绑定的是同一用户
func (c *Client) ConsumeCSRFToken(ctx context.Context, token string, userID int64) (bool, error) {
	if token == "" {
		return false, nil
	}
	val, err := c.rdb.GetDel(ctx, csrfPrefix+token).Result()
	if err == goredis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	bound, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return false, nil
	}
	return bound == userID, nil
}

// ── 速率限制 ──

const rateLimitPrefix = "rate_limit:"

// CheckRateLimit 基于 ZSET 滑动窗口的速率检查
// 返回 true 表示放行
func (c *Client) CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	now := time.Now()
	fullKey := rateLimitPrefix + key
	windowStart := now.Add(-window)

	pipe := c.rdb.TxPipeline()
	pipe.ZRemRangeByScore(ctx, fullKey,
		"0", strconv.FormatInt(windowStart.UnixNano(), 10))
	count := pipe.ZCard(ctx, fullKey)
	pipe.ZAdd(ctx, fullKey, goredis.Z{
		Score:  float64(now.UnixNano()),
		Member: now.UnixNano(),
	})
	pipe.Expire(ctx, fullKey, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, err
	}

	return count.Val() < int64(limit), nil
}

// Close 关闭 Redis 连接
func (c *Client) Close() error {
	return c.rdb.Close()
}
