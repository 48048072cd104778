package main

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Vasu1592004/campus-ai-chatbot/internal/client"
	"github.com/Vasu1592004/campus-ai-chatbot/internal/session"
)

var sendFiles []string

var replyHeader = color.New(color.FgGreen, color.Bold)

// sendCmd posts a message to the active chat
var sendCmd = &cobra.Command{
	Use:   "send [message]",
	Short: "Send a message to the active chat",
	Long: `Sends a message, with optional files, to the active chat and prints the
reply as it is revealed.

Example:
  campusai send "Explain Kirchhoff's laws"
  campusai send --file circuit.png --file notes.pdf "What is wrong here?"`,
	RunE: runSend,
}

var regenerateCmd = &cobra.Command{
	Use:   "regenerate [message-id]",
	Short: "Ask again for an assistant reply in the active chat",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, closeClient, err := openClient(cmd.Context())
		if err != nil {
			return err
		}
		defer closeClient()

		return streamTurn(cmd, c, func() (<-chan struct{}, error) {
			return c.Regenerate(args[0])
		})
	},
}

func init() {
	sendCmd.Flags().StringArrayVarP(&sendFiles, "file", "f", nil, "Attach a file (repeatable)")
	rootCmd.AddCommand(sendCmd, regenerateCmd)
}

func runSend(cmd *cobra.Command, args []string) error {
	text := strings.Join(args, " ")
	if strings.TrimSpace(text) == "" && len(sendFiles) == 0 {
		return errors.New("nothing to send: give a message or --file")
	}

	files, err := readFiles(sendFiles)
	if err != nil {
		return err
	}

	c, closeClient, err := openClient(cmd.Context())
	if err != nil {
		return err
	}
	defer closeClient()

	if len(files) > 0 {
		if err := c.Attach(files...); err != nil {
			return err
		}
	}
	return streamTurn(cmd, c, func() (<-chan struct{}, error) {
		return c.Send(text)
	})
}

// streamTurn starts a turn in the active chat and prints the reply while it
// is revealed. Replies that arrive without a reveal are printed at the end.
func streamTurn(cmd *cobra.Command, c *client.Client, start func() (<-chan struct{}, error)) error {
	out := cmd.OutOrStdout()
	before := c.Snapshot()
	chatID := before.ActiveChatID
	known := map[string]bool{}
	if chat := findChat(before, chatID); chat != nil {
		for _, m := range chat.Messages {
			known[m.ID] = true
		}
	}

	var (
		mu      sync.Mutex
		replyID string
		printed int
	)
	unsubscribe := c.Subscribe(func(e client.Event) {
		if e.Type != client.EventReveal || e.ChatID != chatID {
			return
		}
		mu.Lock()
		defer mu.Unlock()
		if replyID == "" {
			replyID = e.MessageID
			replyHeader.Fprintln(out, "CampusAI")
		}
		if e.MessageID == replyID && len(e.Text) > printed {
			io.WriteString(out, e.Text[printed:])
			printed = len(e.Text)
		}
	})
	defer unsubscribe()

	done, err := start()
	if err != nil {
		return err
	}
	select {
	case <-done:
	case <-cmd.Context().Done():
		c.Close()
		<-done
		return cmd.Context().Err()
	}

	reply := newReply(c.Snapshot(), chatID, known)
	mu.Lock()
	defer mu.Unlock()
	if reply == nil {
		return nil
	}
	if replyID == "" {
		replyHeader.Fprintln(out, "CampusAI")
	}
	if reply.ID == replyID && printed <= len(reply.Text) {
		io.WriteString(out, reply.Text[printed:])
	} else if reply.ID != replyID {
		io.WriteString(out, reply.Text)
	}
	fmt.Fprintln(out)
	return nil
}

// newReply finds the assistant message the turn added to chatID.
func newReply(state *session.State, chatID string, known map[string]bool) *session.Message {
	chat := findChat(state, chatID)
	if chat == nil {
		return nil
	}
	for i := len(chat.Messages) - 1; i >= 0; i-- {
		m := chat.Messages[i]
		if m.Role == session.RoleAssistant && !known[m.ID] {
			return m
		}
	}
	return nil
}

func readFiles(paths []string) ([]session.PendingFile, error) {
	files := make([]session.PendingFile, 0, len(paths))
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", p, err)
		}
		contentType := mime.TypeByExtension(strings.ToLower(filepath.Ext(p)))
		if contentType == "" {
			contentType = http.DetectContentType(data)
		}
		if logger != nil {
			logger.Debug("attaching file",
				zap.String("name", filepath.Base(p)),
				zap.String("content_type", contentType),
				zap.String("size", humanize.Bytes(uint64(len(data)))),
			)
		}
		files = append(files, session.PendingFile{
			Name:        filepath.Base(p),
			ContentType: contentType,
			Data:        data,
		})
	}
	return files, nil
}
