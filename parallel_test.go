package corsair

import (
	"errors"
	"sync/atomic"
	"testing"
)

// ============================================================================
// ParallelConfig Tests
// ============================================================================

func TestDefaultParallelConfig(t *testing.T) {
	cfg := DefaultParallelConfig()

	if cfg == nil {
		t.Fatal("DefaultParallelConfig returned nil")
	}
	if cfg.MinRowsForParallel <= 0 {
		t.Errorf("MinRowsForParallel should be positive, got %d", cfg.MinRowsForParallel)
	}
	if cfg.MorselSize <= 0 {
		t.Errorf("MorselSize should be positive, got %d", cfg.MorselSize)
	}
	if !cfg.Enabled {
		t.Error("Enabled should be true by default")
	}
}

func TestSetGetParallelConfig(t *testing.T) {
	// Save original config
	original := GetParallelConfig()
	defer SetParallelConfig(original)

	custom := &ParallelConfig{
		MinRowsForParallel: 1000,
		MorselSize:         512,
		MaxWorkers:         2,
		Enabled:            false,
	}
	SetParallelConfig(custom)

	got := GetParallelConfig()
	if got.MinRowsForParallel != 1000 {
		t.Errorf("MinRowsForParallel = %d, want 1000", got.MinRowsForParallel)
	}
	if got.Enabled {
		t.Error("Enabled should be false")
	}

	// Setting nil should not change config
	SetParallelConfig(nil)
	if GetParallelConfig() != custom {
		t.Error("SetParallelConfig(nil) should not change config")
	}
}

func TestParallelConfig_ShouldParallelize(t *testing.T) {
	cfg := &ParallelConfig{
		MinRowsForParallel: 1000,
		Enabled:            true,
	}

	if cfg.shouldParallelize(500) {
		t.Error("Should not parallelize 500 rows when min is 1000")
	}
	if !cfg.shouldParallelize(2000) {
		t.Error("Should parallelize 2000 rows when min is 1000")
	}

	cfg.Enabled = false
	if cfg.shouldParallelize(2000) {
		t.Error("Should not parallelize when disabled")
	}
}

// ============================================================================
// Morsel Iterator Tests
// ============================================================================

func TestMorselIterator_Next(t *testing.T) {
	mi := NewMorselIterator(25, 10)

	m1 := mi.Next()
	if m1 == nil || m1.Start != 0 || m1.End != 10 {
		t.Errorf("First morsel = %v, want {0, 10}", m1)
	}

	m2 := mi.Next()
	if m2 == nil || m2.Start != 10 || m2.End != 20 {
		t.Errorf("Second morsel = %v, want {10, 20}", m2)
	}

	m3 := mi.Next()
	if m3 == nil || m3.Start != 20 || m3.End != 25 {
		t.Errorf("Third morsel = %v, want {20, 25}", m3)
	}

	m4 := mi.Next()
	if m4 != nil {
		t.Errorf("Fourth morsel should be nil, got %v", m4)
	}
}

func TestMorselIterator_Empty(t *testing.T) {
	mi := NewMorselIterator(0, 10)
	if m := mi.Next(); m != nil {
		t.Errorf("Empty iterator should return nil, got %v", m)
	}
}

// ============================================================================
// Parallel Execution Tests
// ============================================================================

func TestParallelFor_Sequential(t *testing.T) {
	original := GetParallelConfig()
	defer SetParallelConfig(original)

	// Force sequential execution
	SetParallelConfig(&ParallelConfig{
		MinRowsForParallel: 10000,
		MorselSize:         100,
		Enabled:            true,
	})

	sum := int64(0)
	ParallelFor(100, func(start, end int) {
		for i := start; i < end; i++ {
			atomic.AddInt64(&sum, int64(i))
		}
	})

	expected := int64(99 * 100 / 2)
	if sum != expected {
		t.Errorf("Sum = %d, want %d", sum, expected)
	}
}

func TestParallelFor_Parallel(t *testing.T) {
	original := GetParallelConfig()
	defer SetParallelConfig(original)

	// Force parallel execution
	SetParallelConfig(&ParallelConfig{
		MinRowsForParallel: 10,
		MorselSize:         100,
		MaxWorkers:         4,
		Enabled:            true,
	})

	sum := int64(0)
	ParallelFor(1000, func(start, end int) {
		localSum := int64(0)
		for i := start; i < end; i++ {
			localSum += int64(i)
		}
		atomic.AddInt64(&sum, localSum)
	})

	expected := int64(999 * 1000 / 2)
	if sum != expected {
		t.Errorf("Sum = %d, want %d", sum, expected)
	}
}

func TestParallelForErr_PropagatesFirstError(t *testing.T) {
	original := GetParallelConfig()
	defer SetParallelConfig(original)

	SetParallelConfig(&ParallelConfig{
		MinRowsForParallel: 10,
		MorselSize:         50,
		MaxWorkers:         4,
		Enabled:            true,
	})

	boom := errors.New("boom")
	err := ParallelForErr(1000, func(start, end int) error {
		if start >= 500 {
			return boom
		}
		return nil
	})
	if !errors.Is(err, boom) {
		t.Errorf("err = %v, want boom", err)
	}
}

func TestParallelForErr_NoError(t *testing.T) {
	original := GetParallelConfig()
	defer SetParallelConfig(original)

	SetParallelConfig(&ParallelConfig{
		MinRowsForParallel: 10,
		MorselSize:         10,
		MaxWorkers:         2,
		Enabled:            true,
	})

	var covered int64
	err := ParallelForErr(100, func(start, end int) error {
		atomic.AddInt64(&covered, int64(end-start))
		return nil
	})
	if err != nil {
		t.Fatalf("ParallelForErr failed: %v", err)
	}
	if covered != 100 {
		t.Errorf("covered %d rows, want 100", covered)
	}
}

// Strict validation runs under ParallelForErr: a large input with one bad
// row must still fail the whole call, parallel or not.
func TestParallelStrictGetFailsWhole(t *testing.T) {
	original := GetParallelConfig()
	defer SetParallelConfig(original)

	SetParallelConfig(&ParallelConfig{
		MinRowsForParallel: 100,
		MorselSize:         256,
		MaxWorkers:         4,
		Enabled:            true,
	})

	rows := make([][]int64, 10000)
	for i := range rows {
		rows[i] = []int64{1, 2, 3}
	}
	rows[7777] = []int64{1} // index 2 is out of bounds here
	l := NewListSeriesFromSlicesI64("a", rows)

	if _, err := l.Get(ScalarParam(2), false); !errors.Is(err, ErrCompute) {
		t.Errorf("err = %v, want ErrCompute", err)
	}

	got, err := l.Get(ScalarParam(2), true)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Get(7777) != nil {
		t.Errorf("short row = %v, want null", got.Get(7777))
	}
	if got.Get(0) != int64(3) {
		t.Errorf("row 0 = %v, want 3", got.Get(0))
	}
}
