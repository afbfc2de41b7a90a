package redislayer

import (
	"context"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/suite"

	"github.com/erasmus-gp/egpcore/egperr"
)

type payload struct {
	Note string
	N    int
}

// RedisLayerTestSuite exercises Store against a real Redis instance on
// DB 15. Skipped when Redis is not reachable.
type RedisLayerTestSuite struct {
	suite.Suite
	client *redis.Client
	store  *Store[payload]
}

func (s *RedisLayerTestSuite) SetupSuite() {
	s.client = redis.NewClient(&redis.Options{Addr: "localhost:6379", DB: 15})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.client.Ping(ctx).Err(); err != nil {
		s.T().Skip("redis not available for testing:", err)
		return
	}
	s.store = New[payload](s.client, "egpcore_test")
}

func (s *RedisLayerTestSuite) TearDownSuite() {
	if s.client != nil {
		s.client.FlushDB(context.Background())
		s.client.Close()
	}
}

func (s *RedisLayerTestSuite) TestSetGetRoundTrip() {
	var key [32]byte
	key[0] = 1
	want := payload{Note: "seeded", N: 7}
	s.Require().NoError(s.store.Set(context.Background(), key, want))

	got, err := s.store.Get(context.Background(), key)
	s.Require().NoError(err)
	s.Equal(want, got)
}

func (s *RedisLayerTestSuite) TestGetMissingKeyReturnsNotFound() {
	var key [32]byte
	key[0] = 2
	_, err := s.store.Get(context.Background(), key)
	s.Require().Error(err)
	s.True(egperr.IsNotFound(err))
}

func (s *RedisLayerTestSuite) TestDeleteRemovesKey() {
	var key [32]byte
	key[0] = 3
	s.Require().NoError(s.store.Set(context.Background(), key, payload{Note: "x"}))
	s.Require().NoError(s.store.Delete(context.Background(), key))
	_, err := s.store.Get(context.Background(), key)
	s.True(egperr.IsNotFound(err))
}

func TestRedisLayerSuite(t *testing.T) {
	suite.Run(t, new(RedisLayerTestSuite))
}
