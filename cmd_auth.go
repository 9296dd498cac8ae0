// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package main

import (
	"bufio"
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/danielhkuo/stackit/models"
	"github.com/danielhkuo/stackit/session"
)

// reader wraps stdin once so prompts and quiz answers share its buffer.
func (a *app) reader() *bufio.Reader {
	if a.stdin == nil {
		a.stdin = bufio.NewReader(a.in)
	}
	return a.stdin
}

// prompt asks for a value on stdin when the flag was left empty.
func (a *app) prompt(label, value string) (string, error) {
	if value != "" {
		return value, nil
	}
	fmt.Fprintf(a.errOut, "%s: ", label)
	line, _ := a.reader().ReadString('\n')
	line = strings.TrimSpace(line)
	if line == "" {
		return "", fmt.Errorf("%s is required", strings.ToLower(label))
	}
	return line, nil
}

func newLoginCmd(a *app) *cobra.Command {
	var username, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and remember the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if username, err = a.prompt("Username", username); err != nil {
				return err
			}
			if password, err = a.prompt("Password", password); err != nil {
				return err
			}

			user, err := session.Login(cmd.Context(), a.api, a.sess, username, password)
			if err != nil {
				return err
			}
			a.printf("Logged in as %s\n", user.Username)
			return nil
		},
	}
	cmd.Flags().StringVarP(&username, "username", "u", "", "Username")
	cmd.Flags().StringVarP(&password, "password", "p", "", "Password (prompted when omitted)")
	return cmd
}

func newRegisterCmd(a *app) *cobra.Command {
	var req models.RegisterRequest
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and log in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if req.Username, err = a.prompt("Username", req.Username); err != nil {
				return err
			}
			if req.Email, err = a.prompt("Email", req.Email); err != nil {
				return err
			}
			if req.Password, err = a.prompt("Password", req.Password); err != nil {
				return err
			}

			if _, err := a.api.Register(cmd.Context(), req); err != nil {
				return err
			}
			user, err := session.Login(cmd.Context(), a.api, a.sess, req.Username, req.Password)
			if err != nil {
				return fmt.Errorf("registered, but login failed: %w", err)
			}
			a.printf("Welcome, %s\n", user.Username)
			return nil
		},
	}
	cmd.Flags().StringVarP(&req.Username, "username", "u", "", "Username")
	cmd.Flags().StringVar(&req.Email, "email", "", "Email address")
	cmd.Flags().StringVarP(&req.Password, "password", "p", "", "Password (prompted when omitted)")
	return cmd
}

func newLogoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the saved session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !a.sess.LoggedIn() {
				a.printf("Not logged in\n")
				return nil
			}
			if err := a.sess.End(cmd.Context()); err != nil {
				return err
			}
			a.printf("Logged out\n")
			return nil
		},
	}
}

func newWhoamiCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireLogin(); err != nil {
				return err
			}
			user, err := a.api.Me(cmd.Context())
			if err != nil {
				return err
			}
			if user.ID != a.sess.UserID() {
				return errors.New("saved session does not match the server, please login again")
			}
			return a.emit(user, func(tw *tabwriter.Writer) {
				fmt.Fprintf(tw, "ID\t%d\n", user.ID)
				fmt.Fprintf(tw, "Username\t%s\n", user.Username)
				fmt.Fprintf(tw, "Email\t%s\n", user.Email)
				fmt.Fprintf(tw, "Joined\t%s\n", ago(user.CreatedAt))
				fmt.Fprintf(tw, "Unread\t%d\n", a.sess.Unread().Get())
			})
		},
	}
}
