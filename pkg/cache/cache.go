package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// TTL 상수 정의
const (
	TTLProduct = 10 * time.Minute
	TTLSearch  = 2 * time.Minute
	TTLDefault = 5 * time.Minute
)

// 캐시 키 접두사
const (
	PrefixProduct = "product:"
	PrefixSearch  = "search:"
	PrefixRevoked = "auth:revoked:"
)

// ErrMiss is returned by the typed getters when the key is absent or Redis is not configured.
var ErrMiss = errors.New("cache miss")

// Service Redis 캐시 서비스 인터페이스
type Service interface {
	// 기본 캐시 연산
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	Exists(ctx context.Context, key string) (bool, error)

	// 상품 시세 캐시
	GetProduct(ctx context.Context, productID string, dest interface{}) error
	SetProduct(ctx context.Context, productID string, data interface{}, ttl time.Duration) error
	InvalidateProduct(ctx context.Context, productID string) error

	// 검색 결과 캐시
	GetSearch(ctx context.Context, fingerprint string, dest interface{}) error
	SetSearch(ctx context.Context, fingerprint string, data interface{}, ttl time.Duration) error

	// 로그아웃된 토큰 (jti 기준)
	RevokeToken(ctx context.Context, jti string, ttl time.Duration) error
	IsTokenRevoked(ctx context.Context, jti string) (bool, error)

	// 유틸리티
	IsAvailable() bool
	Ping(ctx context.Context) error
}

// redisCache Redis 기반 캐시 구현
type redisCache struct {
	client *redis.Client
}

// NewService 새로운 캐시 서비스 생성. client may be nil, in which case every read misses.
func NewService(client *redis.Client) Service {
	return &redisCache{client: client}
}

// SearchFingerprint hashes the parts of a search request into a stable cache key suffix.
func SearchFingerprint(parts ...string) string {
	h := sha256.New()
	for _, p := range parts {
		h.Write([]byte(p))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))[:32]
}

// IsAvailable Redis 연결 가능 여부
func (c *redisCache) IsAvailable() bool {
	return c.client != nil
}

// Ping Redis 연결 테스트
func (c *redisCache) Ping(ctx context.Context) error {
	if c.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	return c.client.Ping(ctx).Err()
}

// Get 캐시에서 값 조회
func (c *redisCache) Get(ctx context.Context, key string, dest interface{}) error {
	if c.client == nil {
		return ErrMiss
	}

	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrMiss
	}
	if err != nil {
		return err
	}

	return json.Unmarshal(data, dest)
}

// Set 캐시에 값 저장
func (c *redisCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if c.client == nil {
		return nil // Redis 없으면 무시
	}

	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	return c.client.Set(ctx, key, data, ttl).Err()
}

// Delete 캐시 삭제
func (c *redisCache) Delete(ctx context.Context, keys ...string) error {
	if c.client == nil {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}

// Exists 캐시 존재 여부 확인
func (c *redisCache) Exists(ctx context.Context, key string) (bool, error) {
	if c.client == nil {
		return false, nil
	}
	n, err := c.client.Exists(ctx, key).Result()
	return n > 0, err
}

// ========================================
// 상품 시세 캐시
// ========================================

func (c *redisCache) productKey(productID string) string {
	return PrefixProduct + productID
}

func (c *redisCache) GetProduct(ctx context.Context, productID string, dest interface{}) error {
	return c.Get(ctx, c.productKey(productID), dest)
}

func (c *redisCache) SetProduct(ctx context.Context, productID string, data interface{}, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = TTLProduct
	}
	return c.Set(ctx, c.productKey(productID), data, ttl)
}

func (c *redisCache) InvalidateProduct(ctx context.Context, productID string) error {
	return c.Delete(ctx, c.productKey(productID))
}

// ========================================
// 검색 결과 캐시
// ========================================

func (c *redisCache) GetSearch(ctx context.Context, fingerprint string, dest interface{}) error {
	return c.Get(ctx, PrefixSearch+fingerprint, dest)
}

func (c *redisCache) SetSearch(ctx context.Context, fingerprint string, data interface{}, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = TTLSearch
	}
	return c.Set(ctx, PrefixSearch+fingerprint, data, ttl)
}

// ========================================
// 토큰 폐기 목록
// ========================================

func (c *redisCache) RevokeToken(ctx context.Context, jti string, ttl time.Duration) error {
	if c.client == nil || jti == "" {
		return nil
	}
	if ttl <= 0 {
		ttl = TTLDefault
	}
	return c.client.Set(ctx, PrefixRevoked+jti, "1", ttl).Err()
}

func (c *redisCache) IsTokenRevoked(ctx context.Context, jti string) (bool, error) {
	if jti == "" {
		return false, nil
	}
	return c.Exists(ctx, PrefixRevoked+jti)
}
