package cache

import (
	"testing"

	"bus-tracker/pkg/utils"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitRedisEmptyAddr(t *testing.T) {
	client, err := InitRedis(utils.RedisConfig{})
	require.NoError(t, err)
	assert.Nil(t, client)
}

func TestInitRedisConnects(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := InitRedis(utils.RedisConfig{Addr: mr.Addr()})
	require.NoError(t, err)
	require.NotNil(t, client)
	defer client.Close()
}

func TestInitRedisUnreachable(t *testing.T) {
	client, err := InitRedis(utils.RedisConfig{Addr: "127.0.0.1:1"})
	assert.Error(t, err)
	assert.Nil(t, client)
}
