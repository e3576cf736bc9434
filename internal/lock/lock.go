// Package lock 提供按键互斥，用于串行化同一项目上的资金操作。
package lock

import (
	"context"
	"sync"

	"github.com/blues/launchpad/internal/errs"
)

// Locker 按键加锁，返回的 unlock 必须调用
type Locker interface {
	Lock(ctx context.Context, key string) (unlock func(), err error)
}

// Local 进程内锁，键在无人持有或等待时回收
type Local struct {
	mu   sync.Mutex
	keys map[string]*slot
}

type slot struct {
	ch   chan struct{}
	refs int
}

// NewLocal 创建进程内锁
func NewLocal() *Local {
	return &Local{keys: make(map[string]*slot)}
}

func (l *Local) acquire(key string) *slot {
	l.mu.Lock()
	defer l.mu.Unlock()
	s, ok := l.keys[key]
	if !ok {
		s = &slot{ch: make(chan struct{}, 1)}
		l.keys[key] = s
	}
	s.refs++
	return s
}

func (l *Local) release(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	s := l.keys[key]
	s.refs--
	if s.refs == 0 {
		delete(l.keys, key)
	}
}

func (l *Local) Lock(ctx context.Context, key string) (func(), error) {
	s := l.acquire(key)
	select {
	case s.ch <- struct{}{}:
		var once sync.Once
		return func() {
			once.Do(func() {
				<-s.ch
				l.release(key)
			})
		}, nil
	case <-ctx.Done():
		l.release(key)
		return nil, errs.Wrap(errs.CodeLockUnavailable, "acquire lock "+key, ctx.Err())
	}
}
