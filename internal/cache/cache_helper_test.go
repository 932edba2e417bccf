package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestHelper(t *testing.T) (*CacheHelper, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewCacheHelper(client, "report:"), mr
}

type payload struct {
	ID     string `json:"id"`
	Amount int    `json:"amount"`
}

func TestCacheHelper_SetGet(t *testing.T) {
	helper, _ := newTestHelper(t)
	ctx := context.Background()

	in := payload{ID: "r1", Amount: 500}
	if err := helper.Set(ctx, "id:r1", in, time.Minute); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	var out payload
	if err := helper.Get(ctx, "id:r1", &out); err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if out != in {
		t.Errorf("Get() = %+v, want %+v", out, in)
	}
}

func TestCacheHelper_GetMiss(t *testing.T) {
	helper, _ := newTestHelper(t)

	var out payload
	err := helper.Get(context.Background(), "id:missing", &out)
	if !errors.Is(err, ErrCacheNotFound) {
		t.Errorf("Get() error = %v, want ErrCacheNotFound", err)
	}
}

func TestCacheHelper_DeletePattern(t *testing.T) {
	helper, mr := newTestHelper(t)
	ctx := context.Background()

	helper.Set(ctx, "owner:u1:page:1", payload{ID: "a"}, time.Minute)
	helper.Set(ctx, "owner:u1:page:2", payload{ID: "b"}, time.Minute)
	helper.Set(ctx, "owner:u2:page:1", payload{ID: "c"}, time.Minute)

	if err := helper.DeletePattern(ctx, "owner:u1:*"); err != nil {
		t.Fatalf("DeletePattern() error = %v", err)
	}

	if mr.Exists("report:owner:u1:page:1") || mr.Exists("report:owner:u1:page:2") {
		t.Error("pattern-matched keys still present")
	}
	if !mr.Exists("report:owner:u2:page:1") {
		t.Error("unrelated key was deleted")
	}
}

func TestCacheHelper_CacheOrExecute(t *testing.T) {
	helper, _ := newTestHelper(t)
	ctx := context.Background()

	calls := 0
	load := func() (interface{}, error) {
		calls++
		return payload{ID: "r9", Amount: 700}, nil
	}

	var first payload
	if err := helper.CacheOrExecute(ctx, "id:r9", &first, time.Minute, load); err != nil {
		t.Fatalf("CacheOrExecute() error = %v", err)
	}

	var second payload
	if err := helper.CacheOrExecute(ctx, "id:r9", &second, time.Minute, load); err != nil {
		t.Fatalf("CacheOrExecute() error = %v", err)
	}

	if calls != 1 {
		t.Errorf("loader calls = %d, want 1", calls)
	}
	if second != first {
		t.Errorf("cached value = %+v, want %+v", second, first)
	}
}

func TestCacheHelper_NilClient(t *testing.T) {
	helper := NewCacheHelper(nil, "report:")
	ctx := context.Background()

	if err := helper.Set(ctx, "id:r1", payload{}, time.Minute); err != nil {
		t.Errorf("Set() with nil client error = %v", err)
	}

	var out payload
	if err := helper.Get(ctx, "id:r1", &out); !errors.Is(err, ErrCacheNotAvailable) {
		t.Errorf("Get() error = %v, want ErrCacheNotAvailable", err)
	}

	// CacheOrExecute must still execute the loader.
	err := helper.CacheOrExecute(ctx, "id:r1", &out, time.Minute, func() (interface{}, error) {
		return payload{ID: "live"}, nil
	})
	if err != nil {
		t.Fatalf("CacheOrExecute() error = %v", err)
	}
	if out.ID != "live" {
		t.Errorf("CacheOrExecute() dest = %+v, want loader result", out)
	}
}
