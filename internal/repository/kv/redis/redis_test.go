package redis_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"taskList/internal/repository"
	kvredis "taskList/internal/repository/kv/redis"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// RedisTestSuite для интеграционных тестов с Redis
type RedisTestSuite struct {
	suite.Suite
	container testcontainers.Container
	storage   *kvredis.Storage
	addr      string
	ctx       context.Context
}

func (s *RedisTestSuite) SetupSuite() {
	s.ctx = context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(30 * time.Second),
	}

	container, err := testcontainers.GenericContainer(s.ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(s.T(), err)
	s.container = container

	host, err := container.Host(s.ctx)
	require.NoError(s.T(), err)

	port, err := container.MappedPort(s.ctx, "6379")
	require.NoError(s.T(), err)

	s.addr = fmt.Sprintf("%s:%s", host, port.Port())
	s.storage, err = kvredis.New(s.ctx, kvredis.Config{Addr: s.addr, Prefix: "test:"})
	require.NoError(s.T(), err)
}

func (s *RedisTestSuite) TearDownSuite() {
	if s.storage != nil {
		s.storage.Close()
	}
	if s.container != nil {
		s.container.Terminate(s.ctx)
	}
}

func TestRedisTestSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("Пропускаем интеграционные тесты в коротком режиме")
	}
	suite.Run(t, new(RedisTestSuite))
}

func (s *RedisTestSuite) TestStorage_GetMissing() {
	_, err := s.storage.Get(s.ctx, "missing")
	assert.ErrorIs(s.T(), err, repository.ErrNotFound)
}

func (s *RedisTestSuite) TestStorage_SetGet() {
	require.NoError(s.T(), s.storage.Set(s.ctx, "tasksState", `{"showDoneTasks":true}`))
	require.NoError(s.T(), s.storage.Set(s.ctx, "tasksState", `{"showDoneTasks":false}`))

	value, err := s.storage.Get(s.ctx, "tasksState")
	require.NoError(s.T(), err)
	assert.Equal(s.T(), `{"showDoneTasks":false}`, value)
}

func (s *RedisTestSuite) TestStorage_PrefixIsolation() {
	other, err := kvredis.New(s.ctx, kvredis.Config{Addr: s.addr, Prefix: "other:"})
	require.NoError(s.T(), err)
	defer other.Close()

	require.NoError(s.T(), s.storage.Set(s.ctx, "shared", "mine"))

	_, err = other.Get(s.ctx, "shared")
	assert.ErrorIs(s.T(), err, repository.ErrNotFound)
}

func (s *RedisTestSuite) TestStorage_HealthCheck() {
	assert.NoError(s.T(), s.storage.HealthCheck(s.ctx))
}

func TestNew_Unreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err := kvredis.New(ctx, kvredis.Config{Addr: "127.0.0.1:1"})
	assert.Error(t, err)
}
