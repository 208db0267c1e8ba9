package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistoryRecordAndList(t *testing.T) {
	db := newTestDB(t)
	auth := NewAuthService(db, newTestConfig())
	svc := NewHistoryService(db)

	user, _, err := auth.Register("alice", "password")
	require.NoError(t, err)

	require.NoError(t, svc.Record(user.ID, "hello", "hi there", "gemini-3-pro-preview", nil))
	require.NoError(t, svc.Record(user.ID, "draw a cat", "", "gemini-3-pro-image-preview",
		[]map[string]string{{"mimeType": "image/png", "data": "aGVsbG8="}}))

	messages, err := svc.List(user.ID, 0)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, "draw a cat", messages[0].UserMessage)
	assert.NotEmpty(t, messages[0].Images)
	assert.Equal(t, "hello", messages[1].UserMessage)
	assert.Empty(t, messages[1].Images)
}

func TestHistoryIsPerUser(t *testing.T) {
	db := newTestDB(t)
	auth := NewAuthService(db, newTestConfig())
	svc := NewHistoryService(db)

	alice, _, err := auth.Register("alice", "password")
	require.NoError(t, err)
	bob, _, err := auth.Register("bob", "password")
	require.NoError(t, err)

	require.NoError(t, svc.Record(alice.ID, "q1", "a1", "m", nil))
	require.NoError(t, svc.Record(bob.ID, "q2", "a2", "m", nil))

	messages, err := svc.List(alice.ID, 0)
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.Equal(t, "q1", messages[0].UserMessage)

	require.NoError(t, svc.Clear(alice.ID))

	messages, err = svc.List(alice.ID, 0)
	require.NoError(t, err)
	assert.Empty(t, messages)

	messages, err = svc.List(bob.ID, 0)
	require.NoError(t, err)
	assert.Len(t, messages, 1)
}
