// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/danielhkuo/stackit/client"
	"github.com/danielhkuo/stackit/cliparse"
)

func main() {
	// Ctrl-C cancels the command context; in-flight calls fail and roll back
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run executes one command line and returns the process exit code.
func run(ctx context.Context, args []string, in io.Reader, out, errOut io.Writer) int {
	a := newApp(in, out, errOut)
	defer a.close()

	root := newRootCmd(a)
	root.SetArgs(args)
	root.SetIn(in)
	root.SetOut(out)
	root.SetErr(errOut)

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(errOut, "Error:", client.Message(err))
		return 1
	}
	return 0
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:               "stackit",
		Short:             "Command-line client for the StackIt Q&A platform",
		Long:              "stackit browses questions, posts answers, votes, reads notifications and takes quizzes\non a StackIt server. Changes show up immediately and are rolled back if the server refuses them.",
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}
	cliparse.RegisterFlags(root.PersistentFlags(), &a.cfg)

	root.AddCommand(
		newLoginCmd(a),
		newRegisterCmd(a),
		newLogoutCmd(a),
		newWhoamiCmd(a),
		newQuestionsCmd(a),
		newAnswersCmd(a),
		newVoteCmd(a),
		newNotificationsCmd(a),
		newTagsCmd(a),
		newQuizCmd(a),
		newDevServerCmd(a),
	)
	return root
}
