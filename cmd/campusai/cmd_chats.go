package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Vasu1592004/campus-ai-chatbot/internal/render"
	"github.com/Vasu1592004/campus-ai-chatbot/internal/session"
)

// chatsCmd groups the chat list operations
var chatsCmd = &cobra.Command{
	Use:   "chats",
	Short: "Manage saved chats",
	Long: `List, create, switch, rename, delete and read saved chats.

Available subcommands:
  list   - Show every chat, the active one marked with *
  new    - Start a new chat and make it active
  switch - Make another chat active
  rename - Change a chat title
  delete - Remove a chat
  show   - Print a chat transcript`,
}

var chatsListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show every chat",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, closeClient, err := openClient(cmd.Context())
		if err != nil {
			return err
		}
		defer closeClient()

		snap := render.Project(c.Snapshot(), time.Now().In(cfg.Location()))
		render.NewTerminal(0).History(cmd.OutOrStdout(), snap)
		return nil
	},
}

var chatsNewCmd = &cobra.Command{
	Use:   "new",
	Short: "Start a new chat",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, closeClient, err := openClient(cmd.Context())
		if err != nil {
			return err
		}
		defer closeClient()

		id, err := c.CreateChat()
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), id)
		return nil
	},
}

var chatsSwitchCmd = &cobra.Command{
	Use:   "switch [chat-id]",
	Short: "Make a chat active",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, closeClient, err := openClient(cmd.Context())
		if err != nil {
			return err
		}
		defer closeClient()

		if findChat(c.Snapshot(), args[0]) == nil {
			return fmt.Errorf("chat %q not found", args[0])
		}
		return c.SwitchChat(args[0])
	},
}

var chatsRenameCmd = &cobra.Command{
	Use:   "rename [chat-id] [title]",
	Short: "Change a chat title",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, closeClient, err := openClient(cmd.Context())
		if err != nil {
			return err
		}
		defer closeClient()

		if findChat(c.Snapshot(), args[0]) == nil {
			return fmt.Errorf("chat %q not found", args[0])
		}
		return c.RenameChat(args[0], strings.Join(args[1:], " "))
	},
}

var chatsDeleteCmd = &cobra.Command{
	Use:   "delete [chat-id]",
	Short: "Remove a chat",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, closeClient, err := openClient(cmd.Context())
		if err != nil {
			return err
		}
		defer closeClient()

		if findChat(c.Snapshot(), args[0]) == nil {
			return fmt.Errorf("chat %q not found", args[0])
		}
		return c.DeleteChat(args[0])
	},
}

var chatsShowCmd = &cobra.Command{
	Use:   "show [chat-id]",
	Short: "Print a chat transcript (the active chat by default)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, closeClient, err := openClient(cmd.Context())
		if err != nil {
			return err
		}
		defer closeClient()

		state := c.Snapshot()
		id := state.ActiveChatID
		if len(args) == 1 {
			id = args[0]
		}
		chat := findChat(state, id)
		if chat == nil && len(args) == 1 {
			return fmt.Errorf("chat %q not found", id)
		}
		render.NewTerminal(0).Transcript(cmd.OutOrStdout(), chat, time.Now().In(cfg.Location()))
		return nil
	},
}

func init() {
	chatsCmd.AddCommand(chatsListCmd, chatsNewCmd, chatsSwitchCmd, chatsRenameCmd, chatsDeleteCmd, chatsShowCmd)
	rootCmd.AddCommand(chatsCmd)
}

func findChat(state *session.State, id string) *session.Chat {
	for _, c := range state.Chats {
		if c.ID == id {
			return c
		}
	}
	return nil
}
