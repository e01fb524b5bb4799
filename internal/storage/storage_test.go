package storage

import (
	"context"
	"os"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenRedis(t *testing.T) {
	mr := miniredis.RunT(t)

	rdb, err := OpenRedis(context.Background(), mr.Addr(), "", 0)
	require.NoError(t, err)
	defer rdb.Close()
	require.NoError(t, rdb.Set(context.Background(), "k", "v", 0).Err())
	assert.Equal(t, "v", rdb.Get(context.Background(), "k").Val())
}

// ✅ 连接失败时返回错误
func TestOpenRedisUnreachable(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	addr := mr.Addr()
	mr.Close()

	_, err = OpenRedis(context.Background(), addr, "", 0)
	assert.Error(t, err)
}

func TestOpenPostgresEmptyDSN(t *testing.T) {
	_, err := OpenPostgres(context.Background(), "")
	assert.Error(t, err)
}

func TestOpenPostgres(t *testing.T) {
	dsn := os.Getenv("ADVISOR_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("ADVISOR_TEST_POSTGRES_DSN not set")
	}
	db, err := OpenPostgres(context.Background(), dsn)
	require.NoError(t, err)
	defer db.Close()
	var one int
	require.NoError(t, db.QueryRow("SELECT 1").Scan(&one))
	assert.Equal(t, 1, one)
}
