package redis

import (
	"context"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/turtacn/TextCoder/pkg/errors"
)

func TestMutex_TryLock(t *testing.T) {
	db, mock := redismock.NewClientMock()
	m := NewMutex(NewClientFromUniversal(db, nil), "job:1", nil, WithLockTTL(time.Minute))

	mock.Regexp().ExpectSetNX(m.Key(), `.+`, time.Minute).SetVal(true)
	ok, err := m.TryLock(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "textcoder:lock:job:1", m.Key())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMutex_Unlock(t *testing.T) {
	db, mock := redismock.NewClientMock()
	m := NewMutex(NewClientFromUniversal(db, nil), "job:3", nil)

	mock.ExpectEvalSha(unlockScript.Hash(), []string{m.Key()}, m.value).SetVal(int64(1))
	require.NoError(t, m.Unlock(context.Background()))

	mock.ExpectEvalSha(unlockScript.Hash(), []string{m.Key()}, m.value).SetVal(int64(0))
	err := m.Unlock(context.Background())
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.ErrCodeConflict))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClient_ClosedRejectsCommands(t *testing.T) {
	db, _ := redismock.NewClientMock()
	c := NewClientFromUniversal(db, nil)
	require.NoError(t, c.Close())
	assert.Equal(t, ErrClientClosed, c.Ping(context.Background()))
	assert.Equal(t, ErrClientClosed, c.Get(context.Background(), "k").Err())
	assert.NoError(t, c.Close())
}

//Personal.AI order the ending
