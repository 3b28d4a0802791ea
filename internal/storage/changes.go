package storage

import "sync"

type broadcaster struct {
	mu     sync.Mutex
	subs   []chan int64
	closed bool
}

func (b *broadcaster) Subscribe() <-chan int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	ch := make(chan int64, 16)
	if b.closed {
		close(ch)
		return ch
	}
	b.subs = append(b.subs, ch)
	return ch
}

func (b *broadcaster) publish(userID int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.subs {
		select {
		case ch <- userID:
		default:
		}
	}
}

func (b *broadcaster) close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for _, ch := range b.subs {
		close(ch)
	}
	b.subs = nil
}
