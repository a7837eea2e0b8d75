package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

type fakeLockClient struct {
	held     map[string]string
	setNXErr error
	evals    int
}

func newFakeLockClient() *fakeLockClient {
	return &fakeLockClient{held: make(map[string]string)}
}

func (f *fakeLockClient) SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd {
	if f.setNXErr != nil {
		return redis.NewBoolResult(false, f.setNXErr)
	}
	if _, ok := f.held[key]; ok {
		return redis.NewBoolResult(false, nil)
	}
	f.held[key] = value.(string)
	return redis.NewBoolResult(true, nil)
}

func (f *fakeLockClient) Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd {
	f.evals++
	if f.held[keys[0]] == args[0].(string) {
		delete(f.held, keys[0])
		return redis.NewCmdResult(int64(1), nil)
	}
	return redis.NewCmdResult(int64(0), nil)
}

func TestRunLockExclusive(t *testing.T) {
	client := newFakeLockClient()
	first := NewRunLock(client, "lock:balance-run", time.Minute)
	second := NewRunLock(client, "lock:balance-run", time.Minute)
	ctx := context.Background()

	ok, err := first.TryAcquire(ctx)
	if err != nil || !ok {
		t.Fatalf("expected first acquire to succeed, got %v %v", ok, err)
	}
	ok, err = second.TryAcquire(ctx)
	if err != nil || ok {
		t.Fatalf("expected second acquire to fail, got %v %v", ok, err)
	}

	if err := second.Release(ctx); err != nil {
		t.Fatalf("unexpected release error: %v", err)
	}
	if client.evals != 0 {
		t.Fatal("release without holding the lock should not touch redis")
	}
	if err := first.Release(ctx); err != nil {
		t.Fatalf("unexpected release error: %v", err)
	}
	if len(client.held) != 0 {
		t.Fatalf("expected lock released, still held: %v", client.held)
	}

	ok, _ = second.TryAcquire(ctx)
	if !ok {
		t.Fatal("expected acquire after release")
	}
}

func TestRunLockAcquireError(t *testing.T) {
	client := newFakeLockClient()
	client.setNXErr = errors.New("down")
	lock := NewRunLock(client, "k", time.Second)

	if _, err := lock.TryAcquire(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}
