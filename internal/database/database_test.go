package database

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"userapi/internal/config"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildPostgresDSN(t *testing.T) {
	tests := []struct {
		name    string
		config  config.DatabaseConfig
		want    string
		wantErr string
	}{
		{
			name: "full config",
			config: config.DatabaseConfig{
				Host:     "db",
				Port:     "5432",
				User:     "users_rw",
				Password: "s3cret",
				Name:     "users",
				SSLMode:  "disable",
			},
			want: "postgres://users_rw:s3cret@db:5432/users?application_name=userapi&sslmode=disable",
		},
		{
			name: "password with reserved characters is escaped",
			config: config.DatabaseConfig{
				Host:     "db",
				Port:     "5432",
				User:     "users_rw",
				Password: "p@ss/word",
				Name:     "users",
			},
			want: "postgres://users_rw:p%40ss%2Fword@db:5432/users?application_name=userapi",
		},
		{
			name: "no password",
			config: config.DatabaseConfig{
				Host:    "db",
				Port:    "5432",
				User:    "users_rw",
				Name:    "users",
				SSLMode: "require",
			},
			want: "postgres://users_rw@db:5432/users?application_name=userapi&sslmode=require",
		},
		{
			name:   "ipv6 host is bracketed",
			config: config.DatabaseConfig{Host: "::1", Port: "5432", User: "u", Name: "users"},
			want:   "postgres://u@[::1]:5432/users?application_name=userapi",
		},
		{
			name:    "missing host",
			config:  config.DatabaseConfig{Port: "5432", User: "users_rw", Name: "users"},
			wantErr: "POSTGRES_HOST",
		},
		{
			name:    "missing name and user",
			config:  config.DatabaseConfig{Host: "db", Port: "5432"},
			wantErr: "POSTGRES_USER, POSTGRES_DB",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := BuildPostgresDSN(tt.config)
			if tt.wantErr != "" {
				assert.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewPostgres(t *testing.T) {
	conf := config.DatabaseConfig{
		Host:               "localhost",
		Port:               "5432",
		User:               "user",
		Password:           "pass",
		Name:               "users",
		MaxOpenConns:       10,
		MaxIdleConns:       5,
		ConnMaxLifetimeSec: 300,
	}

	var buf bytes.Buffer
	log := slog.New(slog.NewJSONHandler(&buf, nil))

	stubOpen := func(t *testing.T, db *sql.DB, err error) {
		t.Helper()
		orig := sqlOpen
		sqlOpen = func(driverName, dataSourceName string) (*sql.DB, error) {
			return db, err
		}
		t.Cleanup(func() { sqlOpen = orig })
	}

	t.Run("success", func(t *testing.T) {
		db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
		require.NoError(t, err)
		defer db.Close()
		stubOpen(t, db, nil)

		mock.ExpectPing()
		buf.Reset()

		got, err := NewPostgres(context.Background(), conf, log)
		assert.NoError(t, err)
		assert.Same(t, db, got)
		assert.NoError(t, mock.ExpectationsWereMet())
		assert.Equal(t, 10, db.Stats().MaxOpenConnections)

		var line map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
		assert.Equal(t, "database_connected", line["msg"])
		assert.Equal(t, float64(10), line["max_open_conns"])
		assert.Equal(t, "5m0s", line["conn_max_lifetime"])
		assert.NotContains(t, buf.String(), "pass")
	})

	t.Run("open error", func(t *testing.T) {
		stubOpen(t, nil, errors.New("open error"))

		got, err := NewPostgres(context.Background(), conf, log)
		assert.ErrorContains(t, err, "sql open: open error")
		assert.Nil(t, got)
	})

	t.Run("ping error closes the pool", func(t *testing.T) {
		db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
		require.NoError(t, err)
		stubOpen(t, db, nil)

		mock.ExpectPing().WillReturnError(errors.New("ping failed"))
		mock.ExpectClose()

		got, err := NewPostgres(context.Background(), conf, log)
		assert.ErrorContains(t, err, "db ping: ping failed")
		assert.Nil(t, got)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("invalid config", func(t *testing.T) {
		got, err := NewPostgres(context.Background(), config.DatabaseConfig{}, log)
		assert.Error(t, err)
		assert.Nil(t, got)
	})
}
