package messages

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ripple-social/ripple/internal/platform/httpx"
)

type memoryRepo struct {
	friendships map[[2]int64]bool
	messages    []Message
	nextID      int64
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{friendships: map[[2]int64]bool{}, nextID: 1}
}

func (m *memoryRepo) befriend(a, b int64) {
	m.friendships[[2]int64{a, b}] = true
	m.friendships[[2]int64{b, a}] = true
}

func (m *memoryRepo) IsFriend(ctx context.Context, userID, otherID int64) (bool, error) {
	return m.friendships[[2]int64{userID, otherID}], nil
}

func (m *memoryRepo) ListThreads(ctx context.Context, userID int64) ([]Thread, error) {
	threads := []Thread{}
	for pair := range m.friendships {
		if pair[0] != userID {
			continue
		}
		t := Thread{FriendID: pair[1]}
		for i := range m.messages {
			msg := m.messages[i]
			if (msg.FromUserID == userID && msg.ToUserID == pair[1]) ||
				(msg.FromUserID == pair[1] && msg.ToUserID == userID) {
				if t.LastMessageAt == nil || msg.CreatedAt.After(*t.LastMessageAt) {
					at := msg.CreatedAt
					t.LastMessageAt = &at
				}
			}
		}
		threads = append(threads, t)
	}
	return threads, nil
}

func (m *memoryRepo) ListConversation(ctx context.Context, userID, friendID int64) ([]Message, error) {
	out := []Message{}
	for _, msg := range m.messages {
		if (msg.FromUserID == userID && msg.ToUserID == friendID) ||
			(msg.FromUserID == friendID && msg.ToUserID == userID) {
			out = append(out, msg)
		}
	}
	return out, nil
}

func (m *memoryRepo) Insert(ctx context.Context, fromID, toID int64, content string) (*Message, error) {
	msg := Message{ID: m.nextID, FromUserID: fromID, ToUserID: toID, Content: content, CreatedAt: time.Now()}
	m.nextID++
	m.messages = append(m.messages, msg)
	return &msg, nil
}

var _ Repository = (*memoryRepo)(nil)

func TestSendBetweenFriends(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryRepo()
	repo.befriend(1, 2)
	svc := NewService(repo, nil)

	msg, err := svc.Send(ctx, 1, 2, "hey")
	require.NoError(t, err)
	require.Equal(t, int64(1), msg.FromUserID)
	require.Equal(t, int64(2), msg.ToUserID)
	require.Equal(t, "hey", msg.Content)
}

func TestSendRejectsNonFriends(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newMemoryRepo(), nil)

	_, err := svc.Send(ctx, 1, 2, "hey stranger")
	require.ErrorIs(t, err, httpx.ErrForbidden)
}

func TestSendValidatesInput(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryRepo()
	repo.befriend(1, 2)
	svc := NewService(repo, nil)

	_, err := svc.Send(ctx, 1, 2, "   ")
	require.ErrorIs(t, err, httpx.ErrValidation)

	_, err = svc.Send(ctx, 1, 0, "hey")
	require.ErrorIs(t, err, httpx.ErrValidation)
}

func TestConversationRequiresFriendship(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryRepo()
	repo.befriend(1, 2)
	svc := NewService(repo, nil)

	_, err := svc.Send(ctx, 1, 2, "first")
	require.NoError(t, err)
	_, err = svc.Send(ctx, 2, 1, "second")
	require.NoError(t, err)

	msgs, err := svc.Conversation(ctx, 1, 2)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	require.Equal(t, "first", msgs[0].Content)

	_, err = svc.Conversation(ctx, 3, 1)
	require.ErrorIs(t, err, httpx.ErrForbidden)
}

func TestListThreads(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryRepo()
	repo.befriend(1, 2)
	repo.befriend(1, 3)
	svc := NewService(repo, nil)

	_, err := svc.Send(ctx, 1, 2, "hello")
	require.NoError(t, err)

	threads, err := svc.ListThreads(ctx, 1)
	require.NoError(t, err)
	require.Len(t, threads, 2)

	var withMessage, without int
	for _, th := range threads {
		if th.LastMessageAt != nil {
			withMessage++
		} else {
			without++
		}
	}
	require.Equal(t, 1, withMessage)
	require.Equal(t, 1, without)
}
