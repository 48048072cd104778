package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Vasu1592004/campus-ai-chatbot/internal/session"
)

func TestCommandTree(t *testing.T) {
	want := map[string][]string{
		"chats":      {"list", "new", "switch", "rename", "delete", "show"},
		"send":       nil,
		"regenerate": nil,
		"ui":         nil,
	}

	for name, subs := range want {
		cmd, _, err := rootCmd.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, cmd.Name())
		for _, sub := range subs {
			found, _, err := rootCmd.Find([]string{name, sub})
			require.NoError(t, err, name+" "+sub)
			assert.Equal(t, sub, found.Name())
		}
	}

	assert.NotNil(t, sendCmd.Flags().Lookup("file"))
}

func TestReadFiles(t *testing.T) {
	dir := t.TempDir()
	png := filepath.Join(dir, "board.png")
	txt := filepath.Join(dir, "notes")
	require.NoError(t, os.WriteFile(png, []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}, 0o600))
	require.NoError(t, os.WriteFile(txt, []byte("plain notes"), 0o600))

	files, err := readFiles([]string{png, txt})
	require.NoError(t, err)
	require.Len(t, files, 2)

	assert.Equal(t, "board.png", files[0].Name)
	assert.True(t, files[0].IsImage())
	assert.Equal(t, "notes", files[1].Name)
	assert.Equal(t, "text/plain; charset=utf-8", files[1].ContentType)

	_, err = readFiles([]string{filepath.Join(dir, "missing.pdf")})
	assert.Error(t, err)
}

func TestNewReply(t *testing.T) {
	state := session.NewState()
	state.Chats = []*session.Chat{{
		ID: "chat_1",
		Messages: []*session.Message{
			{ID: "u1", Role: session.RoleUser, Text: "q"},
			{ID: "b1", Role: session.RoleAssistant, Text: "old"},
			{ID: "b2", Role: session.RoleAssistant, Text: "new"},
		},
	}}

	reply := newReply(state, "chat_1", map[string]bool{"u1": true, "b1": true})
	require.NotNil(t, reply)
	assert.Equal(t, "b2", reply.ID)

	assert.Nil(t, newReply(state, "chat_1", map[string]bool{"u1": true, "b1": true, "b2": true}))
	assert.Nil(t, newReply(state, "chat_missing", nil))
}
