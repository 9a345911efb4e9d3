package backend

import (
	"context"
	"testing"

	"github.com/spf13/afero"

	"github.com/atomicstack/runstrip/internal/frequency"
)

const freqPath = "/data/freq.txt"

func TestRefreshMergesNewNames(t *testing.T) {
	fs := afero.NewMemMapFs()
	if err := frequency.Write(fs, freqPath, map[string]uint32{"vim": 4}); err != nil {
		t.Fatalf("seed store: %v", err)
	}

	r := StartRefresh(context.Background(), fs, freqPath, func() []string {
		return []string{"vim", "ls", "cat"}
	})
	r.Wait()

	if !r.Done() {
		t.Fatalf("expected done flag after Wait")
	}
	if r.Added() != 2 {
		t.Fatalf("expected 2 new names, got %d", r.Added())
	}
	store, err := frequency.Load(fs, freqPath)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if store.Get("vim") != 4 {
		t.Fatalf("expected vim count preserved, got %d", store.Get("vim"))
	}
	if store.Len() != 3 {
		t.Fatalf("expected 3 names after merge, got %v", store.Names())
	}
}

func TestRefreshKeepsLaunchesRecordedMeanwhile(t *testing.T) {
	fs := afero.NewMemMapFs()
	if err := frequency.Write(fs, freqPath, map[string]uint32{"vim": 1}); err != nil {
		t.Fatalf("seed store: %v", err)
	}

	release := make(chan struct{})
	r := StartRefresh(context.Background(), fs, freqPath, func() []string {
		<-release
		return []string{"ls"}
	})
	if r.Done() {
		t.Fatalf("expected worker to still be scanning")
	}

	// A launch saved by the session while the scan is in flight.
	if err := frequency.Write(fs, freqPath, map[string]uint32{"vim": 2}); err != nil {
		t.Fatalf("write: %v", err)
	}
	close(release)
	r.Wait()

	store, _ := frequency.Load(fs, freqPath)
	if store.Get("vim") != 2 {
		t.Fatalf("expected vim=2 to survive the refresh, got %d", store.Get("vim"))
	}
	if _, ok := store.Snapshot()["ls"]; !ok {
		t.Fatalf("expected ls to be merged")
	}
}

func TestRefreshCancelledSkipsWrite(t *testing.T) {
	fs := afero.NewMemMapFs()
	ctx, cancel := context.WithCancel(context.Background())
	r := StartRefresh(ctx, fs, freqPath, func() []string {
		cancel()
		return []string{"ls"}
	})
	r.Wait()

	if ok, _ := afero.Exists(fs, freqPath); ok {
		t.Fatalf("expected no store file after cancellation")
	}
	if !r.Done() {
		t.Fatalf("expected done flag after cancellation")
	}
}
