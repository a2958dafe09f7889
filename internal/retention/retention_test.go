package retention

import (
	"fmt"
	"testing"
	"time"

	"github.com/nft-socials/nft-socials-app-sub000/pkg/config"
	"github.com/nft-socials/nft-socials-app-sub000/pkg/models"
	"github.com/nft-socials/nft-socials-app-sub000/pkg/store"
)

func openStore(t *testing.T) {
	t.Helper()
	if err := store.Open(t.TempDir()); err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
}

func seedNotification(t *testing.T, id string, age time.Duration, read bool) {
	t.Helper()
	n := models.Notification{
		ID:        id,
		Recipient: "bob",
		Type:      models.NotifyBuy,
		Title:     "NFT Purchased",
		CreatedTS: time.Now().UTC().Add(-age).UnixNano(),
	}
	if err := store.SaveNotification(n); err != nil {
		t.Fatalf("save notification %s: %v", id, err)
	}
	if read {
		if err := store.MarkNotificationRead(id); err != nil {
			t.Fatalf("mark read %s: %v", id, err)
		}
	}
}

func retentionCfg() config.RetentionConfig {
	return config.RetentionConfig{
		Enabled: true,
		Period:  config.Duration(24 * time.Hour),
	}
}

func TestRunOncePurgesOldReadOnly(t *testing.T) {
	openStore(t)

	seedNotification(t, "old-read", 48*time.Hour, true)
	seedNotification(t, "old-unread", 48*time.Hour, false)
	seedNotification(t, "fresh-read", time.Hour, true)

	deleted, err := RunOnce(retentionCfg())
	if err != nil {
		t.Fatalf("run once: %v", err)
	}
	if deleted != 1 {
		t.Fatalf("expected 1 deleted; got %d", deleted)
	}

	if _, err := store.GetNotification("old-read"); err != store.ErrNotFound {
		t.Fatalf("old-read should be gone; got %v", err)
	}
	if _, err := store.GetNotification("old-unread"); err != nil {
		t.Fatalf("old-unread should survive: %v", err)
	}
	if _, err := store.GetNotification("fresh-read"); err != nil {
		t.Fatalf("fresh-read should survive: %v", err)
	}
}

func TestRunOnceDryRunDeletesNothing(t *testing.T) {
	openStore(t)

	seedNotification(t, "old-read", 48*time.Hour, true)

	cfg := retentionCfg()
	cfg.DryRun = true
	deleted, err := RunOnce(cfg)
	if err != nil {
		t.Fatalf("run once: %v", err)
	}
	if deleted != 0 {
		t.Fatalf("dry run deleted %d", deleted)
	}
	if _, err := store.GetNotification("old-read"); err != nil {
		t.Fatalf("dry run should not delete: %v", err)
	}
}

func TestRunOncePausedSkips(t *testing.T) {
	openStore(t)

	seedNotification(t, "old-read", 48*time.Hour, true)

	cfg := retentionCfg()
	cfg.Paused = true
	deleted, err := RunOnce(cfg)
	if err != nil {
		t.Fatalf("run once: %v", err)
	}
	if deleted != 0 {
		t.Fatalf("paused run deleted %d", deleted)
	}
}

func TestRunOnceBatches(t *testing.T) {
	openStore(t)

	for i := 0; i < 7; i++ {
		seedNotification(t, fmt.Sprintf("n-%d", i), 48*time.Hour, true)
	}

	cfg := retentionCfg()
	cfg.BatchSize = 3
	deleted, err := RunOnce(cfg)
	if err != nil {
		t.Fatalf("run once: %v", err)
	}
	if deleted != 7 {
		t.Fatalf("expected 7 deleted across batches; got %d", deleted)
	}
}

func TestStartValidation(t *testing.T) {
	if _, err := Start(t.Context(), config.RetentionConfig{Enabled: true}); err == nil {
		t.Fatalf("expected error for missing period")
	}
	cfg := retentionCfg()
	cfg.Cron = "not a cron"
	if _, err := Start(t.Context(), cfg); err == nil {
		t.Fatalf("expected error for invalid cron")
	}

	cancel, err := Start(t.Context(), config.RetentionConfig{})
	if err != nil {
		t.Fatalf("disabled retention should start as no-op: %v", err)
	}
	cancel()
}
