package job

import (
	"errors"
	"testing"
	"time"

	"github.com/tidemark/tidemark/internal/core"
)

func TestStore_CreateAndGet(t *testing.T) {
	store := NewStore(10, time.Hour)

	created := store.Create("backtest")
	if created.ID == "" {
		t.Fatal("Create() returned empty ID")
	}
	if created.Status != StatusPending {
		t.Errorf("Status = %v, want pending", created.Status)
	}

	got, err := store.Get(created.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.ID != created.ID || got.Type != "backtest" {
		t.Errorf("Get() = %+v, want created job", got)
	}
}

func TestStore_GetMissing(t *testing.T) {
	store := NewStore(10, time.Hour)
	if _, err := store.Get("nope"); !errors.Is(err, core.ErrJobNotFound) {
		t.Errorf("Get(missing) error = %v, want ErrJobNotFound", err)
	}
}

func TestStore_GetReturnsCopy(t *testing.T) {
	store := NewStore(10, time.Hour)
	created := store.Create("backtest")

	got, _ := store.Get(created.ID)
	got.Status = StatusFailed

	fresh, _ := store.Get(created.ID)
	if fresh.Status != StatusPending {
		t.Error("mutating a Get() result leaked into the store")
	}
}

func TestStore_Update(t *testing.T) {
	store := NewStore(10, time.Hour)
	created := store.Create("backtest")

	err := store.Update(created.ID, func(j *Job) {
		j.Status = StatusComplete
		j.Progress = 100
	})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	got, _ := store.Get(created.ID)
	if got.Status != StatusComplete || got.Progress != 100 {
		t.Errorf("job after update = %+v, want complete/100", got)
	}
	if !got.UpdatedAt.After(got.CreatedAt) && !got.UpdatedAt.Equal(got.CreatedAt) {
		t.Error("UpdatedAt not refreshed by Update()")
	}
}

func TestStore_UpdateMissing(t *testing.T) {
	store := NewStore(10, time.Hour)
	err := store.Update("nope", func(j *Job) {})
	if !errors.Is(err, core.ErrJobNotFound) {
		t.Errorf("Update(missing) error = %v, want ErrJobNotFound", err)
	}
}

func TestStore_EvictsOldestAtCapacity(t *testing.T) {
	store := NewStore(2, time.Hour)

	first := store.Create("backtest")
	store.Create("backtest")
	store.Create("backtest") // exceeds capacity, evicts first

	if _, err := store.Get(first.ID); !errors.Is(err, core.ErrJobNotFound) {
		t.Errorf("oldest job still present after capacity eviction, err = %v", err)
	}
	if got := len(store.List()); got != 2 {
		t.Errorf("List() has %d jobs, want 2", got)
	}
}

func TestStore_EvictsExpired(t *testing.T) {
	store := NewStore(10, time.Millisecond)

	old := store.Create("backtest")
	time.Sleep(5 * time.Millisecond)
	store.Create("backtest") // triggers the TTL sweep

	if _, err := store.Get(old.ID); !errors.Is(err, core.ErrJobNotFound) {
		t.Errorf("expired job still present, err = %v", err)
	}
}

func TestStore_List(t *testing.T) {
	store := NewStore(10, time.Hour)
	store.Create("backtest")
	store.Create("backtest")

	if got := len(store.List()); got != 2 {
		t.Errorf("List() has %d jobs, want 2", got)
	}
}
