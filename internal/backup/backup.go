package backup

import (
	"compress/gzip"
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

const filePrefix = "eventreg-db-"

type BackupInfo struct {
	Name      string
	Path      string
	Size      int64
	CreatedAt time.Time
}

type Manager struct {
	backupDir string
	db        *sql.DB
	maxAge    time.Duration
	now       func() time.Time
}

func NewManager(backupDir string, db *sql.DB, retentionDays int) (*Manager, error) {
	if err := os.MkdirAll(backupDir, 0750); err != nil {
		return nil, fmt.Errorf("create backup dir: %w", err)
	}
	if retentionDays <= 0 {
		retentionDays = 30
	}
	return &Manager{
		backupDir: backupDir,
		db:        db,
		maxAge:    time.Duration(retentionDays) * 24 * time.Hour,
		now:       time.Now,
	}, nil
}

// BackupDatabase snapshots the live database with VACUUM INTO, which is
// consistent under WAL, and stores it gzip-compressed.
func (m *Manager) BackupDatabase(ctx context.Context) (*BackupInfo, error) {
	ts := m.now().Format("20060102-150405.000")
	name := fmt.Sprintf("%s%s.sqlite.gz", filePrefix, ts)
	outPath := filepath.Join(m.backupDir, name)

	snapshot := filepath.Join(m.backupDir, ".snapshot-"+ts)
	if _, err := m.db.ExecContext(ctx, "VACUUM INTO ?", snapshot); err != nil {
		return nil, fmt.Errorf("snapshot db: %w", err)
	}
	defer os.Remove(snapshot)

	if err := gzipFile(snapshot, outPath); err != nil {
		os.Remove(outPath)
		return nil, err
	}

	info, err := os.Stat(outPath)
	if err != nil {
		return nil, fmt.Errorf("stat backup: %w", err)
	}
	return &BackupInfo{
		Name:      name,
		Path:      outPath,
		Size:      info.Size(),
		CreatedAt: info.ModTime(),
	}, nil
}

func gzipFile(srcPath, dstPath string) error {
	src, err := os.Open(srcPath)
	if err != nil {
		return fmt.Errorf("open snapshot: %w", err)
	}
	defer src.Close()

	dst, err := os.Create(dstPath)
	if err != nil {
		return fmt.Errorf("create backup: %w", err)
	}
	defer dst.Close()

	gz, err := gzip.NewWriterLevel(dst, gzip.BestCompression)
	if err != nil {
		return fmt.Errorf("gzip writer: %w", err)
	}
	if _, err := io.Copy(gz, src); err != nil {
		gz.Close()
		return fmt.Errorf("copy snapshot: %w", err)
	}
	if err := gz.Close(); err != nil {
		return fmt.Errorf("flush gzip: %w", err)
	}
	return nil
}

// ListBackups returns database backups, newest first.
func (m *Manager) ListBackups() ([]BackupInfo, error) {
	entries, err := os.ReadDir(m.backupDir)
	if err != nil {
		return nil, fmt.Errorf("read backup dir: %w", err)
	}

	var backups []BackupInfo
	for _, e := range entries {
		if e.IsDir() || !strings.HasPrefix(e.Name(), filePrefix) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		backups = append(backups, BackupInfo{
			Name:      e.Name(),
			Path:      filepath.Join(m.backupDir, e.Name()),
			Size:      info.Size(),
			CreatedAt: info.ModTime(),
		})
	}

	sort.Slice(backups, func(i, j int) bool {
		return backups[i].Name > backups[j].Name
	})
	return backups, nil
}

// CleanOldBackups removes backups older than the retention period and
// returns how many were deleted.
func (m *Manager) CleanOldBackups() int {
	backups, err := m.ListBackups()
	if err != nil {
		log.Warn().Err(err).Str("component", "backup").Msg("could not list backups for cleanup")
		return 0
	}

	cutoff := m.now().Add(-m.maxAge)
	removed := 0
	for _, b := range backups {
		if b.CreatedAt.Before(cutoff) {
			if err := os.Remove(b.Path); err == nil {
				removed++
			}
		}
	}
	return removed
}

// FormatSize returns a human-readable file size.
func FormatSize(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
