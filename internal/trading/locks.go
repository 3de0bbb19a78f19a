package trading

import "sync" // Mutexes

// accountLocks serializes trades per account inside one process.
type accountLocks struct {
	mu    sync.Mutex            // Guards locks
	locks map[uint]*accountLock // Live locks by user id
}

type accountLock struct {
	sync.Mutex
	refs int // Holders and waiters
}

func newAccountLocks() *accountLocks {
	return &accountLocks{locks: make(map[uint]*accountLock)}
}

// Lock blocks until the lock for key is held and returns its release func.
func (l *accountLocks) Lock(key uint) func() {
	l.mu.Lock()
	lk, ok := l.locks[key]
	if !ok {
		lk = &accountLock{}
		l.locks[key] = lk
	}
	lk.refs++
	l.mu.Unlock()

	lk.Lock()
	return func() {
		lk.Unlock()
		l.mu.Lock()
		lk.refs--
		if lk.refs == 0 {
			delete(l.locks, key) // Last user drops the entry
		}
		l.mu.Unlock()
	}
}

func (l *accountLocks) len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
