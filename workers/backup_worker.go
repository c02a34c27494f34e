package workers

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"time"

	"earn-bot-system/config"
	"earn-bot-system/utils"

	"github.com/gosimple/slug"
)

// BackupRunner snapshots the sqlite database file on an interval, keeps the
// newest N copies locally and, when R2 is configured, ships each snapshot
// off-site.
type BackupRunner struct {
	DatabasePath string
	Dir          string
	Keep         int
	KeyPrefix    string
	R2Enabled    bool
}

func NewBackupRunner(cfg *config.Config, r2Enabled bool) *BackupRunner {
	path := strings.TrimPrefix(cfg.DatabaseURL, "file:")
	return &BackupRunner{
		DatabasePath: path,
		Dir:          cfg.BackupDir,
		Keep:         cfg.BackupKeep,
		KeyPrefix:    slug.Make(cfg.BotName),
		R2Enabled:    r2Enabled,
	}
}

// RunOnce takes one snapshot and prunes old ones.
func (r *BackupRunner) RunOnce(ctx context.Context) error {
	if err := utils.EnsureBackupDir(r.Dir); err != nil {
		return fmt.Errorf("failed to ensure backup dir: %w", err)
	}

	name := fmt.Sprintf("earnbot_%s.db", time.Now().Format("20060102_150405"))
	dst := filepath.Join(r.Dir, name)
	if err := utils.CopyFile(r.DatabasePath, dst); err != nil {
		return fmt.Errorf("failed to copy database: %w", err)
	}

	if err := utils.PruneOldBackups(r.Dir, r.Keep); err != nil {
		log.Printf("⚠️  Failed to prune old backups: %v", err)
	}

	if r.R2Enabled {
		key := r.KeyPrefix + "/" + name
		if err := utils.UploadBackupToR2(ctx, dst, key); err != nil {
			return err
		}
		log.Printf("📦 Backup uploaded to R2: %s", key)
	}
	return nil
}

// PollBackups runs snapshots on the configured interval until ctx is done.
// Postgres deployments rely on managed snapshots instead; only the sqlite
// file is backed up here.
func PollBackups(ctx context.Context, runner *BackupRunner, interval time.Duration) {
	if strings.Contains(runner.DatabasePath, "://") {
		log.Println("Backups skipped: DATABASE_URL is not a sqlite file")
		return
	}
	log.Println("Starting database backups...")

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Backups stopped.")
			return
		case <-ticker.C:
			if err := runner.RunOnce(ctx); err != nil {
				log.Printf("❌ Backup failed: %v", err)
			}
		}
	}
}
