package main

import (
	"fmt"
	"net/http"

	"github.com/soumyacodes007/social-media-backend/internal/models"
	"github.com/spf13/cobra"
)

type healthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Error    string `json:"error"`
	Online   int    `json:"online"`
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check that the server and its database are up",
	RunE: func(cmd *cobra.Command, args []string) error {
		var health healthResponse
		body, err := callInto(http.MethodGet, "/health", nil, nil, &health)
		if printJSON(body) {
			return err
		}
		if err != nil {
			if health.Status != "" {
				return fmt.Errorf("server is %s: database %s (%s)", health.Status, health.Database, health.Error)
			}
			return err
		}
		fmt.Printf("✓ Server is %s, database %s, %d users online\n", health.Status, health.Database, health.Online)
		return nil
	},
}

var statusOnline bool

var statusCmd = &cobra.Command{
	Use:   "status <phone>",
	Short: "Set a user's stored online status",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var user models.User
		body, err := callInto(http.MethodPost, "/api/user/status", nil, map[string]interface{}{
			"phone":    args[0],
			"isOnline": statusOnline,
		}, &user)
		if err != nil {
			return err
		}
		if printJSON(body) {
			return nil
		}
		state := "offline"
		if user.IsOnline {
			state = "online"
		}
		fmt.Printf("✓ %s is now %s\n", user.Phone, state)
		return nil
	},
}

func init() {
	statusCmd.Flags().BoolVar(&statusOnline, "online", false, "Mark the user online instead of offline")
}
