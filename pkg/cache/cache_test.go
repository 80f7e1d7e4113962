package cache

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dtnitsch/linkcheck/models"
)

func TestFirstVerdictWins(t *testing.T) {
	c := New()
	c.Put("https://a.io/", models.CacheStatus{OK: true, Code: 200})
	c.Put("https://a.io/", models.CacheStatus{OK: false, Code: 500})

	entry, ok := c.Get("https://a.io/", time.Hour, time.Hour)
	if !ok {
		t.Fatal("expected a cache hit")
	}
	if !entry.Status.OK || entry.Status.Code != 200 {
		t.Errorf("second Put overwrote the first verdict: %+v", entry.Status)
	}
}

func TestGetHonoursMaxAge(t *testing.T) {
	c := New()
	c.entries["https://old.io/"] = Entry{
		Status:    models.CacheStatus{OK: true, Code: 200},
		CheckedAt: time.Now().Add(-2 * time.Hour),
	}
	c.entries["https://olderr.io/"] = Entry{
		Status:    models.CacheStatus{OK: false, Code: 404},
		CheckedAt: time.Now().Add(-30 * time.Minute),
	}

	if _, ok := c.Get("https://old.io/", time.Hour, time.Hour); ok {
		t.Error("stale success entry should miss")
	}
	if _, ok := c.Get("https://old.io/", 3*time.Hour, time.Hour); !ok {
		t.Error("fresh success entry should hit")
	}
	if _, ok := c.Get("https://olderr.io/", time.Hour, time.Hour); !ok {
		t.Error("fresh error entry should hit")
	}
	if _, ok := c.Get("https://olderr.io/", time.Hour, 10*time.Minute); ok {
		t.Error("stale error entry should miss")
	}
	// Error entries are only served while max_cache_age_error is set.
	if _, ok := c.Get("https://olderr.io/", time.Hour, 0); ok {
		t.Error("error entry with zero error age should miss")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.csv")

	c := New()
	c.Put("https://a.io/", models.CacheStatus{OK: true, Code: 200})
	c.Put("https://b.io/x", models.CacheStatus{OK: false, Code: 404})
	c.Put("https://c.io/", models.CacheStatus{OK: false})
	if err := c.Save(path); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}

	loaded := New()
	if err := loaded.Load(path); err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if loaded.Len() != c.Len() {
		t.Fatalf("round trip lost entries: got %d, want %d", loaded.Len(), c.Len())
	}
	for key, want := range c.Snapshot() {
		got, ok := loaded.Snapshot()[key]
		if !ok {
			t.Errorf("entry %q missing after round trip", key)
			continue
		}
		if got.Status.OK != want.Status.OK {
			t.Errorf("entry %q verdict changed: got %+v, want %+v", key, got.Status, want.Status)
		}
	}
}

func TestLoadSkipsMalformedLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.csv")
	content := "https://good.io/,200,1700000000\n" +
		"not-enough-fields\n" +
		"https://bad-epoch.io/,200,notanumber\n" +
		"https://bad-status.io/,twohundred,1700000000\n" +
		"https://error.io/,error,1700000000\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	c := New()
	if err := c.Load(path); err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if c.Len() != 2 {
		t.Errorf("Len() = %d, want 2 (good + error entries)", c.Len())
	}
}

func TestLoadMergeKeepsNewer(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.csv")
	content := "https://a.io/,404,1700000000\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	c := New()
	c.Put("https://a.io/", models.CacheStatus{OK: true, Code: 200})
	if err := c.Load(path); err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	entry, ok := c.Get("https://a.io/", time.Hour, time.Hour)
	if !ok {
		t.Fatal("expected a hit")
	}
	if !entry.Status.OK {
		t.Error("older file entry replaced the newer in-memory verdict")
	}
}

func TestLoadMissingFileIsNotAnError(t *testing.T) {
	c := New()
	if err := c.Load(filepath.Join(t.TempDir(), "absent.csv")); err != nil {
		t.Errorf("Load() on a missing file = %v, want nil", err)
	}
}
