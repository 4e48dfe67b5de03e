package main

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func newTestBot() *Bot {
	return &Bot{
		cfg:      &Config{RadiusNearKm: 2.5, RadiusFarKm: 7.5},
		log:      zap.NewNop().Sugar(),
		sessions: make(map[int64]*session),
		locks:    make(map[int64]*sync.Mutex),
	}
}

func TestLockChatIsPerChat(t *testing.T) {
	b := newTestBot()

	assert.Same(t, b.lockChat(1), b.lockChat(1))
	assert.NotSame(t, b.lockChat(1), b.lockChat(2))
}

func TestConcurrentSessionUpdatesAreSerialized(t *testing.T) {
	b := newTestBot()
	const chatID = int64(42)
	const updates = 64

	// Mimics concurrently dispatched updates for one chat: each goroutine
	// takes the chat lock, then does a handler-style read-modify-write on
	// the shared session.
	var wg sync.WaitGroup
	for i := 0; i < updates; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			lock := b.lockChat(chatID)
			lock.Lock()
			defer lock.Unlock()

			sess := b.session(chatID)
			sess.step = stepFindLocation
			sess.favName += "x"
		}()
	}
	wg.Wait()

	sess := b.session(chatID)
	assert.Equal(t, stepFindLocation, sess.step)
	assert.Len(t, sess.favName, updates, "every update must observe the previous one")
}

func TestResetSessionReturnsToIdle(t *testing.T) {
	b := newTestBot()

	sess := b.session(7)
	sess.step = stepFavoriteName
	sess.favName = "Casa"

	b.resetSession(7)

	fresh := b.session(7)
	assert.Equal(t, stepIdle, fresh.step)
	assert.Empty(t, fresh.favName)
}
