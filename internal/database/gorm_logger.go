package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// maxSQLLength is the length past which SQL in logs is elided in the middle.
const maxSQLLength = 200

// zapGormLogger adapts zap to GORM's logger.Interface. Queries are traced at
// debug level; the SQL is only formatted when debug is enabled.
type zapGormLogger struct {
	log *zap.Logger
}

func newZapGormLogger(l *zap.Logger) zapGormLogger {
	return zapGormLogger{log: l.Named("gorm").WithOptions(zap.AddCallerSkip(3))}
}

// LogMode is a no-op; level filtering is handled by zap.
func (l zapGormLogger) LogMode(logger.LogLevel) logger.Interface { return l }

// Info logs informational messages from GORM.
func (l zapGormLogger) Info(_ context.Context, msg string, args ...any) {
	l.log.Info(fmt.Sprintf(msg, args...))
}

// Warn logs warning messages from GORM.
func (l zapGormLogger) Warn(_ context.Context, msg string, args ...any) {
	l.log.Warn(fmt.Sprintf(msg, args...))
}

// Error logs error messages from GORM.
func (l zapGormLogger) Error(_ context.Context, msg string, args ...any) {
	l.log.Error(fmt.Sprintf(msg, args...))
}

// Trace is called by GORM after every SQL operation. ErrRecordNotFound is
// the normal "no rows" result and is traced like a successful query.
func (l zapGormLogger) Trace(_ context.Context, begin time.Time, fc func() (string, int64), err error) {
	elapsed := time.Since(begin)

	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		sql, rows := fc()
		l.log.Error("gorm query error",
			zap.String("sql", truncateSQL(sql)),
			zap.Int64("rows", rows),
			zap.Duration("duration", elapsed),
			zap.Error(err))
		return
	}

	if !l.log.Core().Enabled(zapcore.DebugLevel) {
		return
	}
	sql, rows := fc()
	l.log.Debug("gorm query",
		zap.String("sql", truncateSQL(sql)),
		zap.Int64("rows", rows),
		zap.Duration("duration", elapsed))
}

func truncateSQL(sql string) string {
	if len(sql) <= maxSQLLength {
		return sql
	}
	half := (maxSQLLength - 3) / 2
	return sql[:half] + "..." + sql[len(sql)-half:]
}
