package db

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"competitor_backend/internal/platform/config"
)

// TestBuildDSN はDSN文字列が設定から正しく生成されることを検証します。
func TestBuildDSN(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		cfg  config.DatabaseConfig
		want string
	}{
		{
			name: "tcp",
			cfg:  config.DatabaseConfig{User: "testuser", Password: "testpass", Name: "testdb", Host: "localhost", Port: "5432"},
			want: "host=localhost port=5432 user=testuser password=testpass dbname=testdb sslmode=disable",
		},
		{
			name: "cloud sql takes precedence",
			cfg:  config.DatabaseConfig{User: "testuser", Password: "testpass", Name: "testdb", Host: "localhost", Port: "5432", InstanceName: "project:region:instance"},
			want: "host=/cloudsql/project:region:instance user=testuser password=testpass dbname=testdb sslmode=disable",
		},
		{
			name: "explicit dsn",
			cfg:  config.DatabaseConfig{DSN: "postgres://u:p@db/x", Host: "ignored"},
			want: "postgres://u:p@db/x",
		},
		{
			name: "sqlite default",
			cfg:  config.DatabaseConfig{Driver: DriverSQLite},
			want: "competitor.db",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, BuildDSN(tt.cfg))
		})
	}
}

func TestNewOpener_UnknownDriver(t *testing.T) {
	t.Parallel()

	_, err := NewOpener("mysql")

	assert.ErrorContains(t, err, "unsupported database driver")
}

// TestConnectWithRetry_SuccessOnFirstTry は初回接続成功時にリトライせずDBを返すことを検証します。
func TestConnectWithRetry_SuccessOnFirstTry(t *testing.T) {
	t.Parallel()

	mockDB := &gorm.DB{}
	attempts := 0
	opener := func(dsn string) (*gorm.DB, error) {
		attempts++
		return mockDB, nil
	}

	db, err := ConnectWithRetry("test-dsn", 5*time.Second, opener)

	require.NoError(t, err)
	assert.Same(t, mockDB, db)
	assert.Equal(t, 1, attempts)
}

// TestConnectWithRetry_RetriesOnFailure は接続失敗時にリトライして最終的に成功することを検証します。
func TestConnectWithRetry_RetriesOnFailure(t *testing.T) {
	// retryInterval is package state
	old := retryInterval
	retryInterval = 10 * time.Millisecond
	t.Cleanup(func() { retryInterval = old })

	mockDB := &gorm.DB{}
	attempts := 0
	opener := func(dsn string) (*gorm.DB, error) {
		attempts++
		if attempts < 3 {
			return nil, errors.New("connection refused")
		}
		return mockDB, nil
	}

	db, err := ConnectWithRetry("test-dsn", 5*time.Second, opener)

	require.NoError(t, err)
	assert.Same(t, mockDB, db)
	assert.Equal(t, 3, attempts)
}

// TestConnectWithRetry_TimeoutAfterRetries はタイムアウト後にエラーが返されることを検証します。
func TestConnectWithRetry_TimeoutAfterRetries(t *testing.T) {
	t.Parallel()

	attempts := 0
	opener := func(dsn string) (*gorm.DB, error) {
		attempts++
		return nil, errors.New("connection refused")
	}

	// an already expired deadline allows exactly one attempt
	_, err := ConnectWithRetry("test-dsn", -time.Second, opener)

	require.Error(t, err)
	assert.ErrorContains(t, err, "connection refused")
	assert.Equal(t, 1, attempts)
}

// TestOpen_SQLite はSQLiteで接続しマイグレーションが実行されることを検証します。
func TestOpen_SQLite(t *testing.T) {
	t.Parallel()

	db, err := Open(config.DatabaseConfig{Driver: DriverSQLite, DSN: ":memory:"})

	require.NoError(t, err)
	for _, table := range []string{"organizations", "updates", "tracking_runs"} {
		assert.True(t, db.Migrator().HasTable(table), table)
	}
}
