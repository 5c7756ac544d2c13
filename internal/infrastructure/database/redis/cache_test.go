package redis

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	pkgerrors "github.com/turtacn/TextCoder/pkg/errors"
	"github.com/turtacn/TextCoder/pkg/types/coding"
)

type CacheTestSuite struct {
	suite.Suite
	mock  redismock.ClientMock
	cache Cache
}

func (s *CacheTestSuite) SetupTest() {
	db, mock := redismock.NewClientMock()
	s.mock = mock
	s.cache = NewRedisCache(NewClientFromUniversal(db, nil), nil,
		WithPrefix("test:"), WithDefaultTTL(time.Minute), WithJitter(false))
}

func (s *CacheTestSuite) TearDownTest() {
	assert.NoError(s.T(), s.mock.ExpectationsWereMet())
}

type payload struct {
	Name string `json:"name"`
	N    int    `json:"n"`
}

func (s *CacheTestSuite) TestGet_Hit() {
	raw, _ := json.Marshal(payload{Name: "a", N: 1})
	s.mock.ExpectGet("test:k").SetVal(string(raw))

	var dest payload
	s.Require().NoError(s.cache.Get(context.Background(), "k", &dest))
	s.Equal(payload{Name: "a", N: 1}, dest)
}

func (s *CacheTestSuite) TestGet_Miss() {
	s.mock.ExpectGet("test:k").RedisNil()

	var dest payload
	err := s.cache.Get(context.Background(), "k", &dest)
	s.Equal(ErrCacheMiss, err)
}

func (s *CacheTestSuite) TestGet_BackendError() {
	s.mock.ExpectGet("test:k").SetErr(errors.New("boom"))

	var dest payload
	err := s.cache.Get(context.Background(), "k", &dest)
	s.True(pkgerrors.IsCode(err, pkgerrors.ErrCodeCacheError))
	s.NotEqual(ErrCacheMiss, err)
}

func (s *CacheTestSuite) TestSet_UsesDefaultTTL() {
	raw, _ := json.Marshal(payload{Name: "b"})
	s.mock.ExpectSet("test:k", raw, time.Minute).SetVal("OK")
	s.NoError(s.cache.Set(context.Background(), "k", payload{Name: "b"}, 0))
}

func (s *CacheTestSuite) TestDelete() {
	s.mock.ExpectDel("test:a", "test:b").SetVal(2)
	s.NoError(s.cache.Delete(context.Background(), "a", "b"))
	s.NoError(s.cache.Delete(context.Background()))
}

func (s *CacheTestSuite) TestExists() {
	s.mock.ExpectExists("test:k").SetVal(1)
	ok, err := s.cache.Exists(context.Background(), "k")
	s.NoError(err)
	s.True(ok)
}

func (s *CacheTestSuite) TestGetOrSet_LoadsOnMiss() {
	raw, _ := json.Marshal(payload{Name: "loaded"})
	s.mock.ExpectGet("test:k").RedisNil()
	s.mock.ExpectSet("test:k", raw, time.Minute).SetVal("OK")

	calls := 0
	var dest payload
	err := s.cache.GetOrSet(context.Background(), "k", &dest, 0, func(context.Context) (interface{}, error) {
		calls++
		return payload{Name: "loaded"}, nil
	})
	s.NoError(err)
	s.Equal(1, calls)
	s.Equal("loaded", dest.Name)
}

func (s *CacheTestSuite) TestDeleteByPrefix() {
	s.mock.ExpectScan(0, "test:result:*", 100).SetVal([]string{"test:result:1", "test:result:2"}, 7)
	s.mock.ExpectDel("test:result:1", "test:result:2").SetVal(2)
	s.mock.ExpectScan(7, "test:result:*", 100).SetVal([]string{}, 0)

	n, err := s.cache.DeleteByPrefix(context.Background(), "result:")
	s.NoError(err)
	s.Equal(int64(2), n)
}

func TestCacheTestSuite(t *testing.T) {
	suite.Run(t, new(CacheTestSuite))
}

func TestResultCache_RoundTrip(t *testing.T) {
	db, mock := redismock.NewClientMock()
	rc := NewResultCache(NewRedisCache(NewClientFromUniversal(db, nil), nil, WithJitter(false)), time.Hour)

	key := ResultKey("abc", "0.3.0", "I felt gross")
	res := coding.Result{Conf: 2, ReasonSetting: "lex", Sensorimotor: 1, ReasonSensorimotor: "gross"}
	raw, _ := json.Marshal(res)

	mock.ExpectGet("textcoder:" + key).RedisNil()
	mock.ExpectSet("textcoder:"+key, raw, time.Hour).SetVal("OK")
	mock.ExpectGet("textcoder:" + key).SetVal(string(raw))

	_, ok, err := rc.Get(context.Background(), key)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, rc.Set(context.Background(), key, res))

	got, ok, err := rc.Get(context.Background(), key)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, res, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResultCache_PurgeIdentity(t *testing.T) {
	db, mock := redismock.NewClientMock()
	rc := NewResultCache(NewRedisCache(NewClientFromUniversal(db, nil), nil), time.Hour)

	mock.ExpectScan(0, "textcoder:result:preset:*", 100).SetVal([]string{"textcoder:result:preset:ab:0.3.0:ff"}, 0)
	mock.ExpectDel("textcoder:result:preset:ab:0.3.0:ff").SetVal(1)

	n, err := rc.PurgeIdentity(context.Background(), "preset:")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResultKey_DependsOnAllParts(t *testing.T) {
	base := ResultKey("id", "v1", "text")
	assert.NotEqual(t, base, ResultKey("id2", "v1", "text"))
	assert.NotEqual(t, base, ResultKey("id", "v2", "text"))
	assert.NotEqual(t, base, ResultKey("id", "v1", "text!"))
	assert.Contains(t, base, "result:id:v1:")
}

//Personal.AI order the ending
