package filecache

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func writeFile(t *testing.T, path, content string, mtime time.Time) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := os.Chtimes(path, mtime, mtime); err != nil {
		t.Fatalf("chtimes: %v", err)
	}
}

func readLen(calls *int32) LoadFunc[int] {
	return func(path string) (int, error) {
		atomic.AddInt32(calls, 1)
		data, err := os.ReadFile(path)
		return len(data), err
	}
}

func TestSlot_CachesUntilMtimeChanges(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vendas_bd.csv")
	base := time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC)
	writeFile(t, path, "abc", base)

	var slot Slot[int]
	var calls int32

	v, hit, err := slot.Get(path, readLen(&calls))
	if err != nil || hit || v != 3 {
		t.Fatalf("first get: v=%d hit=%v err=%v", v, hit, err)
	}

	// same mtime: content change is not observed
	writeFile(t, path, "abcdef", base)
	v, hit, err = slot.Get(path, readLen(&calls))
	if err != nil || !hit || v != 3 {
		t.Fatalf("cached get: v=%d hit=%v err=%v", v, hit, err)
	}

	writeFile(t, path, "abcdef", base.Add(time.Minute))
	v, hit, err = slot.Get(path, readLen(&calls))
	if err != nil || hit || v != 6 {
		t.Fatalf("reload: v=%d hit=%v err=%v", v, hit, err)
	}
	if calls != 2 {
		t.Fatalf("loader calls = %d, want 2", calls)
	}
}

func TestSlot_Invalidate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Segmentos_bd.csv")
	writeFile(t, path, "a", time.Now())

	var slot Slot[int]
	var calls int32
	if _, _, err := slot.Get(path, readLen(&calls)); err != nil {
		t.Fatalf("get: %v", err)
	}
	slot.Invalidate()
	if _, ok := slot.Peek(); ok {
		t.Fatalf("peek after invalidate should miss")
	}
	if _, hit, _ := slot.Get(path, readLen(&calls)); hit {
		t.Fatalf("get after invalidate should reload")
	}
	if calls != 2 {
		t.Fatalf("loader calls = %d, want 2", calls)
	}
}

func TestSlot_PathChangeReloads(t *testing.T) {
	dir := t.TempDir()
	mtime := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	a := filepath.Join(dir, "vendas_bd.xlsx")
	b := filepath.Join(dir, "vendas_bd.csv")
	writeFile(t, a, "aa", mtime)
	writeFile(t, b, "bbbb", mtime)

	var slot Slot[int]
	var calls int32
	slot.Get(a, readLen(&calls))
	v, hit, _ := slot.Get(b, readLen(&calls))
	if hit || v != 4 {
		t.Fatalf("different path must reload: v=%d hit=%v", v, hit)
	}
}

func TestSlot_ErrorsAreNotCached(t *testing.T) {
	path := filepath.Join(t.TempDir(), "x.csv")
	writeFile(t, path, "x", time.Now())

	var slot Slot[int]
	boom := errors.New("boom")
	if _, _, err := slot.Get(path, func(string) (int, error) { return 0, boom }); !errors.Is(err, boom) {
		t.Fatalf("want boom, got %v", err)
	}
	if _, ok := slot.Peek(); ok {
		t.Fatalf("failed load must not populate the slot")
	}

	_, _, err := slot.Get(filepath.Join(t.TempDir(), "missing.csv"), readLen(new(int32)))
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("want not-exist, got %v", err)
	}
}

func TestSlot_ConcurrentGet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "c.csv")
	writeFile(t, path, "12345", time.Now())

	var slot Slot[int]
	var calls int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, _, err := slot.Get(path, readLen(&calls))
			if err != nil || v != 5 {
				t.Errorf("v=%d err=%v", v, err)
			}
		}()
	}
	wg.Wait()

	if calls < 1 {
		t.Fatalf("loader never ran")
	}
	if _, hit, _ := slot.Get(path, readLen(&calls)); !hit {
		t.Fatalf("settled slot should hit")
	}
}
