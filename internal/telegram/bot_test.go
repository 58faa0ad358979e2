package telegram

import (
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBot() *Bot {
	return &Bot{session: make(map[int64]*session)}
}

func TestSessionForReturnsSnapshot(t *testing.T) {
	b := newTestBot()
	userID := uuid.New()
	b.session[1] = &session{userID: userID}

	sess, linked := b.sessionFor(1)
	require.True(t, linked)
	assert.Equal(t, userID, sess.userID)
	assert.Nil(t, sess.conversationID)

	// Mutating the copy must not touch the stored binding.
	bogus := int64(99)
	sess.conversationID = &bogus
	assert.Nil(t, b.session[1].conversationID)

	_, linked = b.sessionFor(2)
	assert.False(t, linked)
}

func TestSetConversationUpdatesLinkedChat(t *testing.T) {
	b := newTestBot()
	b.session[1] = &session{userID: uuid.New()}

	b.setConversation(1, 7)

	sess, linked := b.sessionFor(1)
	require.True(t, linked)
	require.NotNil(t, sess.conversationID)
	assert.Equal(t, int64(7), *sess.conversationID)
}

func TestSetConversationIgnoresUnlinkedChat(t *testing.T) {
	b := newTestBot()

	b.setConversation(1, 7)

	_, linked := b.sessionFor(1)
	assert.False(t, linked)
}

func TestConcurrentSessionAccess(t *testing.T) {
	b := newTestBot()
	b.session[1] = &session{userID: uuid.New()}

	// Rapid messages from one chat read and write the binding from
	// separate goroutines; the race detector flags any unguarded access.
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(id int64) {
			defer wg.Done()
			b.setConversation(1, id)
		}(int64(i))
		go func() {
			defer wg.Done()
			if sess, linked := b.sessionFor(1); linked && sess.conversationID != nil {
				_ = *sess.conversationID
			}
		}()
	}
	wg.Wait()

	sess, linked := b.sessionFor(1)
	require.True(t, linked)
	require.NotNil(t, sess.conversationID)
}
