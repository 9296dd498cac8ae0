// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package client

import (
	"context"
	"fmt"
	"net/http"

	"github.com/danielhkuo/stackit/models"
)

// NotificationFilter narrows GET /notifications/.
type NotificationFilter struct {
	Page
	UnreadOnly bool
}

// Notifications handles GET /notifications/
func (c *Client) Notifications(ctx context.Context, f NotificationFilter) ([]models.Notification, error) {
	q := f.Page.values()
	if f.UnreadOnly {
		q.Set("unread_only", "true")
	}
	var out []models.Notification
	err := c.do(ctx, call{method: http.MethodGet, path: "/notifications/", query: q, out: &out, auth: true, optional: true})
	return out, err
}

// NotificationStats handles GET /notifications/stats
func (c *Client) NotificationStats(ctx context.Context) (models.NotificationStats, error) {
	var out models.NotificationStats
	err := c.do(ctx, call{method: http.MethodGet, path: "/notifications/stats", out: &out, auth: true})
	return out, err
}

// UnreadCount handles GET /notifications/unread-count
func (c *Client) UnreadCount(ctx context.Context) (int, error) {
	var out models.UnreadCount
	err := c.do(ctx, call{method: http.MethodGet, path: "/notifications/unread-count", out: &out, auth: true})
	return out.Count, err
}

// MarkNotificationRead handles PUT /notifications/{id}/read
func (c *Client) MarkNotificationRead(ctx context.Context, id int64) error {
	return c.do(ctx, call{method: http.MethodPut, path: fmt.Sprintf("/notifications/%d/read", id), auth: true})
}

// MarkAllNotificationsRead handles PUT /notifications/mark-all-read
func (c *Client) MarkAllNotificationsRead(ctx context.Context) error {
	return c.do(ctx, call{method: http.MethodPut, path: "/notifications/mark-all-read", auth: true})
}

// DeleteNotification handles DELETE /notifications/{id}
func (c *Client) DeleteNotification(ctx context.Context, id int64) error {
	return c.do(ctx, call{method: http.MethodDelete, path: fmt.Sprintf("/notifications/%d", id), auth: true})
}
