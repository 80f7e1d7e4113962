// Package cache deduplicates verdicts by request fingerprint within a
// run and persists them across runs as a CSV snapshot.
package cache

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/dtnitsch/linkcheck/models"
)

// Entry is one cached verdict.
type Entry struct {
	Status    models.CacheStatus
	CheckedAt time.Time
}

// Cache maps request fingerprints to terminal verdicts. Many readers,
// serialised writers; the first terminal verdict for a fingerprint
// wins within a run.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

// New returns an empty cache.
func New() *Cache {
	return &Cache{entries: make(map[string]Entry)}
}

// Get returns the entry for key when it is still fresh. Success
// entries expire after maxAge, error entries after maxAgeError.
func (c *Cache) Get(key string, maxAge, maxAgeError time.Duration) (Entry, bool) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return Entry{}, false
	}
	age := time.Since(entry.CheckedAt)
	if entry.Status.OK {
		if maxAge > 0 && age > maxAge {
			return Entry{}, false
		}
	} else {
		if maxAgeError <= 0 || age > maxAgeError {
			return Entry{}, false
		}
	}
	return entry, true
}

// Put records the verdict for key. An existing entry is kept
// untouched, so concurrent checkers for the same fingerprint stay
// idempotent.
func (c *Cache) Put(key string, status models.CacheStatus) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.entries[key]; exists {
		return
	}
	c.entries[key] = Entry{Status: status, CheckedAt: time.Now()}
}

// Len returns the number of cached fingerprints.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Snapshot copies the current entries.
func (c *Cache) Snapshot() map[string]Entry {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[string]Entry, len(c.entries))
	for key, entry := range c.entries {
		out[key] = entry
	}
	return out
}

// Load merges a CSV snapshot into the cache. Lines are
// url,status_code,last_checked_epoch; malformed lines are skipped.
// On key collision the newer entry wins.
func (c *Cache) Load(path string) error {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to open cache file: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return fmt.Errorf("failed to read cache file: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for _, record := range records {
		if len(record) < 3 {
			continue
		}
		status, err := models.ParseCacheStatus(record[1])
		if err != nil {
			continue
		}
		epoch, err := strconv.ParseInt(record[2], 10, 64)
		if err != nil {
			continue
		}
		key := record[0]
		entry := Entry{Status: status, CheckedAt: time.Unix(epoch, 0)}
		if existing, ok := c.entries[key]; ok && existing.CheckedAt.After(entry.CheckedAt) {
			continue
		}
		c.entries[key] = entry
	}
	return nil
}

// Save writes the cache as a CSV snapshot, one entry per line.
func (c *Cache) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create cache file: %w", err)
	}
	defer f.Close()

	writer := csv.NewWriter(f)
	for key, entry := range c.Snapshot() {
		record := []string{
			key,
			entry.Status.CSVField(),
			strconv.FormatInt(entry.CheckedAt.Unix(), 10),
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write cache entry: %w", err)
		}
	}
	writer.Flush()
	return writer.Error()
}
