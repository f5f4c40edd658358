package main

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/soumyacodes007/social-media-backend/internal/chat"
	"github.com/soumyacodes007/social-media-backend/internal/handlers"
	"github.com/soumyacodes007/social-media-backend/internal/models"
	"github.com/soumyacodes007/social-media-backend/internal/websocket"
	"github.com/spf13/cobra"
)

var chatsCmd = &cobra.Command{
	Use:   "chats",
	Short: "Browse and manage direct-message chats",
}

var listChatsCmd = &cobra.Command{
	Use:   "list <identity>",
	Short: "List the chats a user takes part in",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var summaries []chat.Summary
		body, err := callInto(http.MethodGet, "/api/chats/user/"+url.PathEscape(args[0]), nil, nil, &summaries)
		if err != nil {
			return err
		}
		if printJSON(body) {
			return nil
		}
		if len(summaries) == 0 {
			fmt.Println("No chats")
			return nil
		}
		for _, s := range summaries {
			fmt.Printf("%-24s %s (updated %s)\n", s.With, s.RoomID, s.UpdatedAt.Format("2006-01-02 15:04"))
		}
		return nil
	},
}

type historyResponse struct {
	RoomID   string               `json:"roomId"`
	Messages []models.ChatMessage `json:"messages"`
}

var historyCmd = &cobra.Command{
	Use:   "history <user1> <user2>",
	Short: "Print the messages between two users",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		var history historyResponse
		path := "/api/chats/" + url.PathEscape(args[0]) + "/" + url.PathEscape(args[1])
		body, err := callInto(http.MethodGet, path, nil, nil, &history)
		if err != nil {
			return err
		}
		if printJSON(body) {
			return nil
		}
		for i, m := range history.Messages {
			fmt.Printf("[%d] %s %s: %s\n", i, m.CreatedAt.Format("15:04:05"), m.Sender, m.Text)
		}
		return nil
	},
}

var sendCmd = &cobra.Command{
	Use:   "send <sender> <receiver> <text>",
	Short: "Send a message; open sockets in the room receive it live",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		var sent websocket.ReceiveMessagePayload
		body, err := callInto(http.MethodPost, "/api/chats", nil, websocket.SendMessagePayload{
			Sender:   args[0],
			Receiver: args[1],
			Text:     args[2],
		}, &sent)
		if err != nil {
			return err
		}
		if printJSON(body) {
			return nil
		}
		fmt.Printf("✓ Sent #%d to %s\n", sent.Seq, sent.RoomID)
		return nil
	},
}

var deleteMessageCmd = &cobra.Command{
	Use:   "delete-message <user1> <user2> <index|messageId>",
	Short: "Delete one message by position or ID",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := "/api/chats/" + url.PathEscape(args[0]) + "/" + url.PathEscape(args[1])
		if _, err := strconv.Atoi(args[2]); err == nil {
			path += "/" + args[2]
		} else {
			path += "/messages/" + url.PathEscape(args[2])
		}
		body, err := call(http.MethodDelete, path, nil, nil)
		if err != nil {
			return err
		}
		if !printJSON(body) {
			fmt.Println("✓ Message deleted")
		}
		return nil
	},
}

var confirmDeleteAll bool

var deleteAllCmd = &cobra.Command{
	Use:   "delete-all",
	Short: "Delete every chat on the server",
	Long: `Delete every chat and message on the server.
The server must run with ENABLE_CHAT_BULK_DELETE=true and the --yes flag is required.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !confirmDeleteAll {
			return fmt.Errorf("refusing to delete all chats without --yes")
		}
		var result struct {
			Deleted int64 `json:"deleted"`
		}
		query := url.Values{"confirm": {handlers.BulkDeleteConfirmation}}
		body, err := callInto(http.MethodDelete, "/api/chats/delete-all", query, nil, &result)
		if err != nil {
			return err
		}
		if !printJSON(body) {
			fmt.Printf("✓ Deleted %d chats\n", result.Deleted)
		}
		return nil
	},
}

func init() {
	deleteAllCmd.Flags().BoolVar(&confirmDeleteAll, "yes", false, "Confirm deletion of all chats")

	chatsCmd.AddCommand(listChatsCmd)
	chatsCmd.AddCommand(historyCmd)
	chatsCmd.AddCommand(sendCmd)
	chatsCmd.AddCommand(deleteMessageCmd)
	chatsCmd.AddCommand(deleteAllCmd)
}
