// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package main

import (
	"context"
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/danielhkuo/stackit/client"
	"github.com/danielhkuo/stackit/models"
	"github.com/danielhkuo/stackit/notifications"
	"github.com/danielhkuo/stackit/optimistic"
)

// inboxPage is how many notifications the commands load at once.
const inboxPage = 100

func newNotificationsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "notifications",
		Aliases: []string{"n"},
		Short:   "Read and manage your notifications",
	}
	cmd.AddCommand(
		newNotificationsListCmd(a),
		newNotificationsReadCmd(a),
		newNotificationsReadAllCmd(a),
		newNotificationsDeleteCmd(a),
		newNotificationsWatchCmd(a),
	)
	return cmd
}

// openInbox loads the first page of the logged-in user's notifications.
func (a *app) openInbox(ctx context.Context, unreadOnly bool) (*notifications.Inbox, error) {
	if err := a.requireLogin(); err != nil {
		return nil, err
	}
	inbox := notifications.NewInbox(a.api, a.sess.Unread(), a.mutatorOptions()...)
	f := client.NotificationFilter{Page: client.Page{Limit: inboxPage}, UnreadOnly: unreadOnly}
	if err := inbox.Load(ctx, f); err != nil {
		return nil, err
	}
	a.sess.SetUnread(ctx, inbox.UnreadCount())
	return inbox, nil
}

// notFound turns the mutator's miss into a message naming the notification.
func notFound(err error, id int64) error {
	if errors.Is(err, optimistic.ErrNotFound) {
		return fmt.Errorf("notification %d not found", id)
	}
	return err
}

func newNotificationsListCmd(a *app) *cobra.Command {
	var unread bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List notifications, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			inbox, err := a.openInbox(cmd.Context(), unread)
			if err != nil {
				return err
			}
			items := inbox.Items()
			return a.emit(items, func(tw *tabwriter.Writer) {
				stats := inbox.Stats()
				fmt.Fprintf(tw, "%d unread of %d\n", stats.UnreadCount, stats.TotalCount)
				fmt.Fprintln(tw, "ID\tTYPE\tWHEN\tMESSAGE")
				for _, n := range items {
					id := fmt.Sprint(n.ID)
					if !n.IsRead {
						id = a.paint(colorBold, "* "+id)
					}
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", id, n.Type, ago(n.CreatedAt), truncate(n.Content, 80))
				}
			})
		},
	}
	cmd.Flags().BoolVar(&unread, "unread", false, "Only unread notifications")
	return cmd
}

func newNotificationsReadCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "read NOTIFICATION_ID",
		Short: "Mark a notification as read",
		Args:  exactIDs(1, "notification id"),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			inbox, err := a.openInbox(ctx, false)
			if err != nil {
				return err
			}
			id := mustID(args[0])
			if _, err := inbox.MarkRead(ctx, id); err != nil {
				return notFound(err, id)
			}
			a.sess.SetUnread(ctx, inbox.UnreadCount())
			a.printf("Marked %d as read, %d unread\n", id, inbox.UnreadCount())
			return nil
		},
	}
}

func newNotificationsReadAllCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "read-all",
		Short: "Mark every notification as read",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			inbox, err := a.openInbox(ctx, false)
			if err != nil {
				return err
			}
			if err := inbox.MarkAllRead(ctx); err != nil {
				return err
			}
			a.sess.SetUnread(ctx, inbox.UnreadCount())
			a.printf("All notifications marked as read\n")
			return nil
		},
	}
}

func newNotificationsDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete NOTIFICATION_ID",
		Short: "Delete a notification",
		Args:  exactIDs(1, "notification id"),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			inbox, err := a.openInbox(ctx, false)
			if err != nil {
				return err
			}
			id := mustID(args[0])
			if err := inbox.Delete(ctx, id); err != nil {
				return notFound(err, id)
			}
			a.sess.SetUnread(ctx, inbox.UnreadCount())
			a.printf("Deleted notification %d\n", id)
			return nil
		},
	}
}

func newNotificationsWatchCmd(a *app) *cobra.Command {
	var once bool
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Print the unread count whenever it changes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireLogin(); err != nil {
				return err
			}
			ctx := cmd.Context()
			poller := notifications.NewPoller(a.api, a.sess, a.cfg.PollInterval, a.logger)

			if once {
				n, err := poller.Poll(ctx)
				if err != nil {
					return err
				}
				return a.emit(models.UnreadCount{Count: n}, func(tw *tabwriter.Writer) {
					fmt.Fprintf(tw, "%d unread\n", n)
				})
			}

			counts, cancel := a.sess.Unread().Subscribe()
			defer cancel()
			go func() {
				for n := range counts {
					a.printf("%d unread\n", n)
				}
			}()

			err := poller.Run(ctx)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}
	cmd.Flags().BoolVar(&once, "once", false, "Poll once and exit")
	return cmd
}
