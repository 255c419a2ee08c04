package cache

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"

	"github.com/khoahotran/program-catalog/pkg/logger"
)

type RedisCacheIntegrationTestSuite struct {
	suite.Suite
	container *tcredis.RedisContainer
	client    *redis.Client
	cache     *redisCache
}

func (s *RedisCacheIntegrationTestSuite) SetupSuite() {
	ctx := context.Background()

	container, err := tcredis.Run(ctx, "redis:7-alpine")
	if err != nil {
		s.T().Fatalf("Failed to start redis container: %s", err)
	}
	s.container = container

	uri, err := container.ConnectionString(ctx)
	if err != nil {
		s.T().Fatalf("Failed to get connection string: %s", err)
	}
	opts, err := redis.ParseURL(uri)
	if err != nil {
		s.T().Fatalf("Failed to parse redis url: %s", err)
	}
	s.client = redis.NewClient(opts)
	s.cache = newRedisCache(s.client, time.Second, logger.NewNopLogger())
}

func (s *RedisCacheIntegrationTestSuite) TearDownSuite() {
	if s.client != nil {
		s.client.Close()
	}
	if s.container != nil {
		if err := s.container.Terminate(context.Background()); err != nil {
			s.T().Fatalf("Failed to terminate redis container: %s", err)
		}
	}
}

func (s *RedisCacheIntegrationTestSuite) SetupTest() {
	s.Require().NoError(s.client.FlushDB(context.Background()).Err())
}

func TestRedisCacheIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode.")
	}
	suite.Run(t, new(RedisCacheIntegrationTestSuite))
}

type cachedPage struct {
	IDs   []int64 `json:"ids"`
	Total int     `json:"total"`
}

func (s *RedisCacheIntegrationTestSuite) Test_SetGet_WithTTL() {
	ctx := context.Background()

	s.cache.Set(ctx, "programs:list:a", cachedPage{IDs: []int64{3, 2, 1}, Total: 3}, 5*time.Minute)

	var got cachedPage
	s.True(s.cache.Get(ctx, "programs:list:a", &got))
	s.Equal([]int64{3, 2, 1}, got.IDs)
	s.Equal(3, got.Total)

	ttl, err := s.client.TTL(ctx, "programs:list:a").Result()
	s.NoError(err)
	s.Greater(ttl, time.Duration(0))
	s.LessOrEqual(ttl, 5*time.Minute)
}

func (s *RedisCacheIntegrationTestSuite) Test_TTLIsBounded() {
	ctx := context.Background()

	s.cache.Set(ctx, "program:1", "x", 0)
	s.cache.Set(ctx, "program:2", "x", 48*time.Hour)

	ttl1, _ := s.client.TTL(ctx, "program:1").Result()
	ttl2, _ := s.client.TTL(ctx, "program:2").Result()
	s.Greater(ttl1, time.Duration(0))
	s.LessOrEqual(ttl2, time.Hour)
}

func (s *RedisCacheIntegrationTestSuite) Test_Miss() {
	var got cachedPage
	s.False(s.cache.Get(context.Background(), "programs:list:none", &got))
}

func (s *RedisCacheIntegrationTestSuite) Test_CorruptEntryIsMiss() {
	ctx := context.Background()
	s.Require().NoError(s.client.Set(ctx, "program:9", "{not json", time.Minute).Err())

	var got cachedPage
	s.False(s.cache.Get(ctx, "program:9", &got))
}

func (s *RedisCacheIntegrationTestSuite) Test_InvalidatePrefix() {
	ctx := context.Background()
	for _, k := range []string{"programs:list:1", "programs:list:2", "programs:search:1", "program:1", "languages:all"} {
		s.cache.Set(ctx, k, 1, time.Minute)
	}

	removed := s.cache.InvalidatePrefix(ctx, "programs:")
	s.Equal(3, removed)

	var v int
	s.True(s.cache.Get(ctx, "program:1", &v))
	s.True(s.cache.Get(ctx, "languages:all", &v))
	s.False(s.cache.Get(ctx, "programs:list:1", &v))

	s.Equal(0, s.cache.InvalidatePrefix(ctx, "programs:"))
}

func (s *RedisCacheIntegrationTestSuite) Test_InvalidatePrefix_ManyKeys() {
	ctx := context.Background()
	pipe := s.client.Pipeline()
	for i := 0; i < 1200; i++ {
		pipe.Set(ctx, "programs:list:"+strconv.Itoa(i), "1", time.Minute)
	}
	_, err := pipe.Exec(ctx)
	s.Require().NoError(err)

	s.Equal(1200, s.cache.InvalidatePrefix(ctx, "programs:list:"))
}

func (s *RedisCacheIntegrationTestSuite) Test_DeleteIsExact() {
	ctx := context.Background()
	s.cache.Set(ctx, "program:5", 1, time.Minute)
	s.cache.Set(ctx, "program:50", 1, time.Minute)

	s.cache.Delete(ctx, "program:5")

	var v int
	s.False(s.cache.Get(ctx, "program:5", &v))
	s.True(s.cache.Get(ctx, "program:50", &v))
}
