package database

import "sync"

// KeyLock sérialise les accès à un même (namespace, clé). Les entrées sont
// comptées et libérées dès qu'aucune goroutine ne les utilise.
type KeyLock struct {
	mu    sync.Mutex
	locks map[string]*keyLockEntry
}

type keyLockEntry struct {
	mu   sync.Mutex
	refs int
}

func NewKeyLock() *KeyLock {
	return &KeyLock{locks: make(map[string]*keyLockEntry)}
}

// Lock bloque jusqu'à obtenir le verrou et renvoie la fonction de libération.
func (l *KeyLock) Lock(ns Namespace, key string) (unlock func()) {
	id := redisKey(ns, key)

	l.mu.Lock()
	e, ok := l.locks[id]
	if !ok {
		e = &keyLockEntry{}
		l.locks[id] = e
	}
	e.refs++
	l.mu.Unlock()

	e.mu.Lock()

	var once sync.Once
	return func() {
		once.Do(func() {
			e.mu.Unlock()
			l.mu.Lock()
			e.refs--
			if e.refs == 0 {
				delete(l.locks, id)
			}
			l.mu.Unlock()
		})
	}
}

// size sert aux tests.
func (l *KeyLock) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
