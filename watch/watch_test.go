package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/etnz/findash"
	"github.com/etnz/findash/date"
	"go.uber.org/goleak"
)

func generate(t *testing.T, days int) *findash.Dataset {
	t.Helper()
	ds, err := findash.Generator{Days: days, End: date.New(2025, time.January, 1), Seed: uint64(days)}.Generate()
	if err != nil {
		t.Fatal(err)
	}
	return ds
}

func waitRevision(t *testing.T, ch <-chan findash.Revision) findash.Revision {
	t.Helper()
	select {
	case rev := <-ch:
		return rev
	case <-time.After(5 * time.Second):
		t.Fatal("timeout waiting for a new revision")
		return findash.Revision{}
	}
}

func TestWatcherReloadsOnChange(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	file := findash.CSVFile{Path: filepath.Join(dir, "data.csv"), Currency: "USD"}
	if err := file.Save(context.Background(), generate(t, 10)); err != nil {
		t.Fatal(err)
	}

	store := findash.NewStore(findash.DefaultOptions(), nil)
	defer store.Close()
	if _, err := store.Reload(context.Background(), file); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	w := New(file, store, nil)
	w.SetDebounce(20 * time.Millisecond)
	done := make(chan error)
	go func() { done <- w.Run(ctx) }()
	defer func() {
		cancel()
		if err := <-done; err != nil {
			t.Errorf("Run() failed: %v", err)
		}
	}()

	revs := store.Subscribe(ctx)
	// give the watcher time to register the directory.
	time.Sleep(100 * time.Millisecond)

	if err := file.Save(ctx, generate(t, 20)); err != nil {
		t.Fatal(err)
	}
	waitRevision(t, revs)
	if ds, _ := store.Dataset(); ds.Len() != 20 {
		t.Errorf("store holds %d records, want 20", ds.Len())
	}

	// a broken file keeps the previous dataset.
	before := store.Revision()
	if err := os.WriteFile(file.Path, []byte("not,a,dataset\n"), 0644); err != nil {
		t.Fatal(err)
	}
	time.Sleep(300 * time.Millisecond)
	if got := store.Revision(); got != before {
		t.Errorf("a broken file created revision %d", got.N)
	}

	// unrelated files in the same directory are ignored.
	if err := os.WriteFile(filepath.Join(dir, "other.csv"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	time.Sleep(200 * time.Millisecond)
	if got := store.Revision(); got != before {
		t.Errorf("an unrelated file created revision %d", got.N)
	}
}
