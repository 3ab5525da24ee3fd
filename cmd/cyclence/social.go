package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/emilianohg/cyclence/internal/models"
)

var shareCmd = &cobra.Command{
	Use:   "share TASK EMAIL",
	Short: "Offer a task to a friend",
	Args:  cobra.ExactArgs(2),
	RunE: run(func(e *env, cmd *cobra.Command, args []string) error {
		if err := e.tracker.Share(e.cfg.User, args[0], args[1]); err != nil {
			return err
		}
		fmt.Printf("Sent the task to %s.\n", args[1])
		return nil
	}),
}

var friendsCmd = &cobra.Command{
	Use:   "friends",
	Short: "List your friends",
	Args:  cobra.NoArgs,
	RunE: run(func(e *env, cmd *cobra.Command, args []string) error {
		friends, err := e.tracker.Friends(e.cfg.User)
		if err != nil {
			return err
		}
		if len(friends) == 0 {
			fmt.Println("No friends yet. Send a request with 'cyclence invite'.")
			return nil
		}
		for _, f := range friends {
			if f.Name != "" {
				fmt.Printf("%s <%s>\n", f.Name, f.Email)
			} else {
				fmt.Println(f.Email)
			}
		}
		return nil
	}),
}

var inviteCmd = &cobra.Command{
	Use:   "invite EMAIL",
	Short: "Send a friend request",
	Args:  cobra.ExactArgs(1),
	RunE: run(func(e *env, cmd *cobra.Command, args []string) error {
		if err := e.tracker.Invite(e.cfg.User, args[0]); err != nil {
			return err
		}
		fmt.Printf("Friend request sent to %s.\n", args[0])
		return nil
	}),
}

var notificationsCmd = &cobra.Command{
	Use:     "notifications",
	Aliases: []string{"inbox"},
	Short:   "List your notifications, newest first",
	Args:    cobra.NoArgs,
	RunE: run(func(e *env, cmd *cobra.Command, args []string) error {
		notes, err := e.tracker.Notifications(e.cfg.User)
		if err != nil {
			return err
		}
		if len(notes) == 0 {
			fmt.Println("Nothing new.")
			return nil
		}
		for _, n := range notes {
			marker := " "
			if n.Kind.Actionable() {
				marker = "*"
			}
			fmt.Printf("%s %s  %s  %-8s %s\n",
				marker, shortID(n.ID), n.CreatedAt.Local().Format("Jan 02 15:04"), n.Kind, n.Message)
		}
		fmt.Println("\n* can be accepted with 'cyclence respond ID --accept'")
		return nil
	}),
}

var respondCmd = &cobra.Command{
	Use:   "respond ID",
	Short: "Accept or dismiss a notification",
	Args:  cobra.ExactArgs(1),
	RunE: run(func(e *env, cmd *cobra.Command, args []string) error {
		accept, _ := cmd.Flags().GetBool("accept")
		dismiss, _ := cmd.Flags().GetBool("dismiss")
		if accept == dismiss {
			return fmt.Errorf("pass exactly one of --accept or --dismiss")
		}

		notes, err := e.tracker.Notifications(e.cfg.User)
		if err != nil {
			return err
		}
		note, err := findNotification(notes, args[0])
		if err != nil {
			return err
		}
		if accept && !note.Kind.Actionable() {
			return fmt.Errorf("%s notifications can only be dismissed", note.Kind)
		}

		if err := e.tracker.Respond(e.cfg.User, note.ID, accept); err != nil {
			return err
		}
		if accept {
			fmt.Println("Accepted.")
		} else {
			fmt.Println("Dismissed.")
		}
		return nil
	}),
}

// findNotification matches an ID or unique ID prefix.
func findNotification(notes []models.Notification, ref string) (models.Notification, error) {
	ref = strings.ToLower(strings.TrimSpace(ref))
	var matches []models.Notification
	for _, n := range notes {
		if n.ID == ref {
			return n, nil
		}
		if ref != "" && strings.HasPrefix(n.ID, ref) {
			matches = append(matches, n)
		}
	}
	switch len(matches) {
	case 0:
		return models.Notification{}, fmt.Errorf("no notification matches %q", ref)
	case 1:
		return matches[0], nil
	default:
		return models.Notification{}, fmt.Errorf("%q matches more than one notification", ref)
	}
}

func init() {
	respondCmd.Flags().Bool("accept", false, "Accept a friend request or shared task")
	respondCmd.Flags().Bool("dismiss", false, "Dismiss the notification")
}
