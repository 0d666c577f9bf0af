package store

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmytrop/nbu-agent/internal/domain"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(":memory:", 20)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestGetOrCreate(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	t.Run("empty id mints a fresh session", func(t *testing.T) {
		id, err := s.GetOrCreate(ctx, "")
		require.NoError(t, err)
		assert.NotEmpty(t, id)

		exists, err := s.Exists(ctx, id)
		require.NoError(t, err)
		assert.True(t, exists)
	})

	t.Run("existing id is returned unchanged", func(t *testing.T) {
		id, err := s.GetOrCreate(ctx, "")
		require.NoError(t, err)

		again, err := s.GetOrCreate(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, id, again)
	})

	t.Run("unknown id mints a fresh session", func(t *testing.T) {
		id, err := s.GetOrCreate(ctx, "no-such-session")
		require.NoError(t, err)
		assert.NotEqual(t, "no-such-session", id)
	})
}

func TestAppendAndHistory(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	id, err := s.GetOrCreate(ctx, "")
	require.NoError(t, err)

	require.NoError(t, s.Append(ctx, id, "what is the USD rate?", "41.50 UAH"))

	history, err := s.History(ctx, id)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, domain.Turn{Role: domain.RoleUser, Content: "what is the USD rate?"}, history[0])
	assert.Equal(t, domain.Turn{Role: domain.RoleAssistant, Content: "41.50 UAH"}, history[1])
}

func TestHistoryUnknownSessionIsEmpty(t *testing.T) {
	s := newTestStore(t)

	history, err := s.History(context.Background(), "nope")
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestAppendEvictsOldestTurns(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	id, err := s.GetOrCreate(ctx, "")
	require.NoError(t, err)

	// 11 exchanges is 22 turns against a cap of 20.
	for i := 0; i < 11; i++ {
		require.NoError(t, s.Append(ctx, id,
			fmt.Sprintf("question %d", i),
			fmt.Sprintf("answer %d", i)))
	}

	history, err := s.History(ctx, id)
	require.NoError(t, err)
	require.Len(t, history, 20)

	// The first exchange is gone, the second now leads.
	assert.Equal(t, "question 1", history[0].Content)
	assert.Equal(t, "answer 10", history[19].Content)
}

func TestAppendConcurrentSameSession(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	id, err := s.GetOrCreate(ctx, "")
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			assert.NoError(t, s.Append(ctx, id,
				fmt.Sprintf("q%d", i), fmt.Sprintf("a%d", i)))
		}(i)
	}
	wg.Wait()

	history, err := s.History(ctx, id)
	require.NoError(t, err)
	require.Len(t, history, 20)

	// Pairs never interleave: user and assistant turns strictly alternate.
	for i, turn := range history {
		if i%2 == 0 {
			assert.Equal(t, domain.RoleUser, turn.Role)
		} else {
			assert.Equal(t, domain.RoleAssistant, turn.Role)
		}
	}
}

func TestDelete(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	id, err := s.GetOrCreate(ctx, "")
	require.NoError(t, err)
	require.NoError(t, s.Append(ctx, id, "hello", "hi"))

	deleted, err := s.Delete(ctx, id)
	require.NoError(t, err)
	assert.True(t, deleted)

	exists, err := s.Exists(ctx, id)
	require.NoError(t, err)
	assert.False(t, exists)

	history, err := s.History(ctx, id)
	require.NoError(t, err)
	assert.Empty(t, history)

	deleted, err = s.Delete(ctx, id)
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestList(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	empty, err := s.GetOrCreate(ctx, "")
	require.NoError(t, err)

	busy, err := s.GetOrCreate(ctx, "")
	require.NoError(t, err)
	require.NoError(t, s.Append(ctx, busy, "USD rate?", "41.50 UAH per USD"))

	long, err := s.GetOrCreate(ctx, "")
	require.NoError(t, err)
	require.NoError(t, s.Append(ctx, long, "EUR rate?", strings.Repeat("x", 150)))

	summaries, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, summaries, 3)

	byID := map[string]domain.SessionSummary{}
	for _, sum := range summaries {
		byID[sum.SessionID] = sum
	}

	assert.Equal(t, 0, byID[empty].MessageCount)
	assert.Equal(t, "No messages", byID[empty].LastMessage)

	assert.Equal(t, 2, byID[busy].MessageCount)
	assert.Equal(t, "41.50 UAH per USD...", byID[busy].LastMessage)

	assert.Equal(t, 2, byID[long].MessageCount)
	assert.Equal(t, strings.Repeat("x", 100)+"...", byID[long].LastMessage)
}
