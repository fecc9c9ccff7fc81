package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/Evthron/Increvise-sub000/internal/database"
	"github.com/Evthron/Increvise-sub000/internal/engine/ranges"
	"github.com/Evthron/Increvise-sub000/internal/store/vfs"
)

// DefaultLoadConcurrency bounds concurrent child reads.
const DefaultLoadConcurrency = 8

const (
	dirPerm  = 0o755
	filePerm = 0o644
)

// Library is a folder of documents plus the database of their Range Records.
type Library struct {
	fs          vfs.VFS
	db          database.Database
	logger      *zap.Logger
	concurrency int
	now         func() time.Time
}

// Option configures a Library.
type Option func(*Library)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(lib *Library) {
		lib.logger = l
	}
}

// WithLoadConcurrency bounds concurrent child reads in ReadRangeRecords.
func WithLoadConcurrency(n int) Option {
	return func(lib *Library) {
		if n > 0 {
			lib.concurrency = n
		}
	}
}

// WithClock sets the time source for creation and due times.
func WithClock(now func() time.Time) Option {
	return func(lib *Library) {
		lib.now = now
	}
}

// Ensure Library implements both interfaces.
var (
	_ Store       = (*Library)(nil)
	_ Extractions = (*Library)(nil)
)

// Open creates a Library over files and db and migrates its tables.
func Open(ctx context.Context, files vfs.VFS, db database.Database, opts ...Option) (*Library, error) {
	lib := &Library{
		fs:          files,
		db:          db,
		logger:      zap.NewNop(),
		concurrency: DefaultLoadConcurrency,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(lib)
	}
	lib.logger = lib.logger.Named("store")

	if err := db.AutoMigrate(ctx, &RangeRecordModel{}, &ReviewItemModel{}); err != nil {
		return nil, fmt.Errorf("open library: %w", err)
	}
	return lib, nil
}

// FS returns the library file system.
func (l *Library) FS() vfs.VFS {
	return l.fs
}

// ListSiblings returns the entry names of folder sorted by name.
func (l *Library) ListSiblings(_ context.Context, folder string) ([]string, error) {
	entries, err := l.fs.ReadDir(folder)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", folder, err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names, nil
}

// ReadHostContent returns the text of a host document.
func (l *Library) ReadHostContent(_ context.Context, host string) (string, error) {
	return l.readText(host)
}

// ReadChildContent returns the text of a child document.
func (l *Library) ReadChildContent(_ context.Context, childPath string) (string, error) {
	return l.readText(childPath)
}

func (l *Library) readText(p string) (string, error) {
	data, err := l.fs.ReadFile(p)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", p, err)
	}
	text, err := vfs.DecodeText(data)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", p, err)
	}
	return text, nil
}

// WriteHostContent replaces the text of a host document.
func (l *Library) WriteHostContent(_ context.Context, host string, text string) error {
	if err := l.fs.WriteFile(host, []byte(text), filePerm); err != nil {
		return fmt.Errorf("write %s: %w", host, err)
	}
	return nil
}

// ReadRangeRecords returns the records of host ordered by start line. Child
// content is read concurrently. A child whose file is missing is returned
// unloaded, so it keeps the height of its interval.
func (l *Library) ReadRangeRecords(ctx context.Context, host string) ([]ranges.Record, error) {
	var models []RangeRecordModel
	err := l.db.Session(ctx).
		Where("host_path = ?", host).
		Order("start_line ASC").
		Find(&models).Error
	if err != nil {
		return nil, fmt.Errorf("read range records of %s: %w", host, err)
	}

	records := make([]ranges.Record, len(models))
	for i, m := range models {
		records[i] = recordToDomain(m)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.concurrency)
	for i := range records {
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			text, err := l.readText(records[i].ChildPath)
			if errors.Is(err, fs.ErrNotExist) {
				l.logger.Warn("child missing", zap.String("child", records[i].ChildPath))
				return nil
			}
			if err != nil {
				return err
			}
			records[i].SetContent(text)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("load children of %s: %w", host, err)
	}

	l.logger.Debug("range records read", zap.String("host", host), zap.Int("count", len(records)))
	return records, nil
}

// WriteRangeCoordinateUpdates persists moved intervals in one transaction.
func (l *Library) WriteRangeCoordinateUpdates(ctx context.Context, host string, updates []ranges.CoordinateUpdate) error {
	if len(updates) == 0 {
		return nil
	}
	now := l.now()
	err := database.WithTransaction(ctx, l.db, func(tx *gorm.DB) error {
		for _, u := range updates {
			res := tx.Model(&RangeRecordModel{}).
				Where("host_path = ? AND child_path = ? AND start_line = ? AND end_line = ?",
					host, u.ChildPath, u.OriginalStart, u.OriginalEnd).
				Updates(map[string]any{
					"start_line": u.NewStart,
					"end_line":   u.NewEnd,
					"updated_at": now,
				})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return fmt.Errorf("%w: %s", ErrStaleRecord, u)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("write coordinates of %s: %w", host, err)
	}
	l.logger.Debug("coordinates written", zap.String("host", host), zap.Int("updates", len(updates)))
	return nil
}

// CreateChild writes a new child document, creating its folder.
func (l *Library) CreateChild(_ context.Context, childPath string, content string) error {
	if l.fs.Exists(childPath) {
		return fmt.Errorf("%w: %s", ErrChildExists, childPath)
	}
	if dir := path.Dir(childPath); dir != "." {
		if err := l.fs.MkdirAll(dir, dirPerm); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	if err := l.fs.WriteFile(childPath, []byte(content), filePerm); err != nil {
		return fmt.Errorf("create %s: %w", childPath, err)
	}
	return nil
}

// RemoveChild deletes a child document.
func (l *Library) RemoveChild(_ context.Context, childPath string) error {
	if err := l.fs.Remove(childPath); err != nil {
		return fmt.Errorf("remove %s: %w", childPath, err)
	}
	return nil
}

// CreateRangeRecord stores r and a review item due now.
func (l *Library) CreateRangeRecord(ctx context.Context, host string, r ranges.Record) (ranges.Record, error) {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = l.now()
	}
	r.HostPath = host

	record := recordToModel(host, r)
	review := ReviewItemModel{
		ID:         uuid.NewString(),
		ChildPath:  r.ChildPath,
		HostPath:   host,
		Identifier: r.Identifier,
		DueAt:      r.CreatedAt,
		CreatedAt:  r.CreatedAt,
	}
	err := database.WithTransaction(ctx, l.db, func(tx *gorm.DB) error {
		if err := tx.Create(&record).Error; err != nil {
			return err
		}
		return tx.Create(&review).Error
	})
	if err != nil {
		return ranges.Record{}, fmt.Errorf("create range record for %s: %w", r.ChildPath, err)
	}

	l.logger.Info("range record created",
		zap.String("host", host),
		zap.String("child", r.ChildPath),
		zap.Stringer("interval", r.Original()))
	return r, nil
}

// RemoveRangeRecord deletes a record and the review item of its child.
func (l *Library) RemoveRangeRecord(ctx context.Context, id string) error {
	return database.WithTransaction(ctx, l.db, func(tx *gorm.DB) error {
		var m RangeRecordModel
		if err := tx.Where("id = ?", id).First(&m).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: %s", ErrNotFound, id)
			}
			return err
		}
		if err := tx.Where("child_path = ?", m.ChildPath).Delete(&ReviewItemModel{}).Error; err != nil {
			return err
		}
		return tx.Delete(&m).Error
	})
}

// ReviewItems returns all review items, soonest due first, then by rank.
func (l *Library) ReviewItems(ctx context.Context) ([]ReviewItem, error) {
	var models []ReviewItemModel
	err := l.db.Session(ctx).Order("due_at ASC").Order("rank ASC").Find(&models).Error
	if err != nil {
		return nil, fmt.Errorf("read review items: %w", err)
	}
	items := make([]ReviewItem, len(models))
	for i, m := range models {
		items[i] = reviewToDomain(m)
	}
	return items, nil
}
