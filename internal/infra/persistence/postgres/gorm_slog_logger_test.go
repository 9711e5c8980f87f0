package postgres

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"credcheck/config"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestCredentialStoreLogger_Trace(t *testing.T) {
	var buf bytes.Buffer
	l := newGormSlogLogger(slog.New(slog.NewTextHandler(&buf, nil)), &config.Config{})
	sqlFn := func() (string, int64) { return "SELECT * FROM admin_credentials", 1 }

	l.Trace(context.Background(), time.Now(), sqlFn, gorm.ErrRecordNotFound)
	assert.Empty(t, buf.String())

	l.Trace(context.Background(), time.Now(), sqlFn, errors.New("connection reset"))
	assert.Contains(t, buf.String(), "Credential store query failed")
	assert.Contains(t, buf.String(), "connection reset")
	assert.Contains(t, buf.String(), "store=postgres")

	buf.Reset()
	l.Trace(context.Background(), time.Now().Add(-time.Second), sqlFn, nil)
	assert.Contains(t, buf.String(), "Credential store query slow")

	buf.Reset()
	l.Trace(context.Background(), time.Now(), sqlFn, nil)
	assert.Empty(t, buf.String())

	buf.Reset()
	l.LogMode(logger.Silent).Trace(context.Background(), time.Now(), sqlFn, errors.New("ignored"))
	assert.Empty(t, buf.String())
}

func TestCredentialStoreLogger_DebugLogsEveryQuery(t *testing.T) {
	var buf bytes.Buffer
	cfg := &config.Config{}
	cfg.Env.Debug = true
	l := newGormSlogLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})), cfg)

	l.Trace(context.Background(), time.Now(), func() (string, int64) { return "SELECT 1", 1 }, nil)

	assert.Contains(t, buf.String(), "Credential store query")
	assert.Contains(t, buf.String(), "SELECT 1")
}

func TestCredentialStoreLogger_Messages(t *testing.T) {
	var buf bytes.Buffer
	l := newGormSlogLogger(slog.New(slog.NewTextHandler(&buf, nil)), nil)

	l.Info(context.Background(), "ignored at warn level")
	assert.Empty(t, buf.String())

	l.Warn(context.Background(), "pool %s", "exhausted")
	assert.Contains(t, buf.String(), "pool exhausted")
}

func TestCredentialStoreLogger_ParamsFilterDropsValues(t *testing.T) {
	l := newGormSlogLogger(slog.Default(), nil).(*credentialStoreLogger)

	sql, params := l.ParamsFilter(context.Background(), "UPDATE admin_credentials SET password_hash = ?", "$2a$10$secret")

	assert.Equal(t, "UPDATE admin_credentials SET password_hash = ?", sql)
	assert.Empty(t, params)
}
