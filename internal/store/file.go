package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/acropolistg/Manager-Bot/internal/logger"
)

// timeLayout is the on-disk timestamp form for new writes: ISO-8601 with
// offset, second precision.
const timeLayout = time.RFC3339

// legacyTimeLayout matches snapshots written by earlier deployments: naive
// local time with optional fractional seconds and no offset.
const legacyTimeLayout = "2006-01-02T15:04:05.999999999"

// subscriberRecord is the wire form of a Subscriber inside the snapshot file.
type subscriberRecord struct {
	ExpirationDate    *string           `json:"expiration_date"`
	Forever           bool              `json:"forever"`
	NotificationsSent NotificationFlags `json:"notifications_sent"`
}

// FileStore reads and writes the full subscriber mapping as one JSON object
// keyed by decimal user id. Single-process, single-writer.
type FileStore struct {
	path string
	log  *slog.Logger
}

// NewFileStore creates a store bound to the given snapshot path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path, log: logger.Store}
}

// Path returns the snapshot file location.
func (f *FileStore) Path() string {
	return f.path
}

// Load reads the snapshot. A missing file yields an empty mapping. Malformed
// content is reported and also yields an empty mapping; the workflow then
// runs with no known subscribers rather than refusing to start.
func (f *FileStore) Load() map[int64]Subscriber {
	start := time.Now()
	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			f.logEvent(slog.LevelInfo, "load", slog.String("status", "empty"))
			return map[int64]Subscriber{}
		}
		f.logEvent(slog.LevelError, "load",
			slog.String("status", "fail"),
			slog.String("err", err.Error()),
		)
		return map[int64]Subscriber{}
	}

	var records map[int64]subscriberRecord
	if err := json.Unmarshal(data, &records); err != nil {
		f.logEvent(slog.LevelError, "load",
			slog.String("status", "fail"),
			slog.String("err", fmt.Sprintf("malformed snapshot: %v", err)),
		)
		return map[int64]Subscriber{}
	}

	users := make(map[int64]Subscriber, len(records))
	for id, rec := range records {
		sub, err := rec.toSubscriber()
		if err != nil {
			f.logEvent(slog.LevelError, "load",
				slog.String("status", "fail"),
				slog.Int64("user_id", id),
				slog.String("err", err.Error()),
			)
			return map[int64]Subscriber{}
		}
		users[id] = sub
	}

	f.logEvent(slog.LevelInfo, "load",
		slog.String("status", "ok"),
		slog.Int("subscribers", len(users)),
		slog.Duration("duration", logger.Took(start)),
	)
	return users
}

// Save serializes the full mapping and replaces the snapshot file via a
// temporary file and atomic rename, so a crash mid-write never leaves a
// truncated snapshot behind.
func (f *FileStore) Save(users map[int64]Subscriber) error {
	start := time.Now()
	records := make(map[int64]subscriberRecord, len(users))
	for id, sub := range users {
		records[id] = toRecord(sub)
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(f.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(f.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp snapshot: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp snapshot: %w", err)
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace snapshot: %w", err)
	}

	f.logEvent(slog.LevelDebug, "save",
		slog.String("status", "ok"),
		slog.Int("subscribers", len(users)),
		slog.Duration("duration", logger.Took(start)),
	)
	return nil
}

func (f *FileStore) logEvent(level slog.Level, event string, attrs ...slog.Attr) {
	log := f.log
	if log == nil {
		log = logger.Store
	}
	if log == nil {
		return
	}
	attrs = append([]slog.Attr{slog.String("path", f.path)}, attrs...)
	logger.LogEvent(logger.Background(), log, level, "snapshot."+event, attrs...)
}

func toRecord(sub Subscriber) subscriberRecord {
	rec := subscriberRecord{
		Forever:           sub.Forever,
		NotificationsSent: sub.Notifications,
	}
	if sub.ExpiresAt != nil {
		s := sub.ExpiresAt.Truncate(time.Second).Format(timeLayout)
		rec.ExpirationDate = &s
	}
	return rec
}

func (r subscriberRecord) toSubscriber() (Subscriber, error) {
	sub := Subscriber{
		Forever:       r.Forever,
		Notifications: r.NotificationsSent,
	}
	if r.ExpirationDate != nil {
		t, err := parseExpiration(*r.ExpirationDate)
		if err != nil {
			return Subscriber{}, err
		}
		sub.ExpiresAt = &t
	}
	return sub, nil
}

func parseExpiration(s string) (time.Time, error) {
	if t, err := time.Parse(timeLayout, s); err == nil {
		return t, nil
	}
	t, err := time.ParseInLocation(legacyTimeLayout, s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse expiration_date %q: %w", s, err)
	}
	return t, nil
}
