// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package main

import (
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/danielhkuo/stackit/acceptance"
	"github.com/danielhkuo/stackit/client"
	"github.com/danielhkuo/stackit/models"
	"github.com/danielhkuo/stackit/voting"
)

func newQuestionsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "questions",
		Aliases: []string{"q"},
		Short:   "Browse and ask questions",
	}
	cmd.AddCommand(
		newQuestionsListCmd(a),
		newQuestionsShowCmd(a),
		newQuestionsAskCmd(a),
		newQuestionsEditCmd(a),
		newQuestionsDeleteCmd(a),
		newQuestionsMineCmd(a),
	)
	return cmd
}

func (a *app) emitQuestions(qs []models.Question) error {
	return a.emit(qs, func(tw *tabwriter.Writer) {
		fmt.Fprintln(tw, "ID\tTITLE\tTAGS\tANSWERS\tBY\tASKED")
		for _, q := range qs {
			answers := fmt.Sprint(q.AnswerCount)
			if q.HasAcceptedAnswer() {
				answers = a.paint(colorGreen, answers+" ✓")
			}
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n",
				q.ID, truncate(q.Title, 60), strings.Join(q.Tags, ","), answers, q.Username, ago(q.CreatedAt))
		}
	})
}

func newQuestionsListCmd(a *app) *cobra.Command {
	var f client.QuestionFilter
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List questions, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			qs, err := a.api.ListQuestions(cmd.Context(), f)
			if err != nil {
				return err
			}
			return a.emitQuestions(qs)
		},
	}
	cmd.Flags().StringVar(&f.Search, "search", "", "Search titles and descriptions")
	cmd.Flags().StringSliceVar(&f.Tags, "tag", nil, "Only questions with this tag (repeatable)")
	cmd.Flags().IntVar(&f.Skip, "skip", 0, "Results to skip")
	cmd.Flags().IntVar(&f.Limit, "limit", 20, "Maximum results")
	return cmd
}

// threadView is the structured form of `questions show`.
type threadView struct {
	Question models.Question    `json:"question" yaml:"question"`
	Answers  []models.Answer    `json:"answers" yaml:"answers"`
	Votes    []voting.VoteState `json:"votes" yaml:"votes"`
}

func newQuestionsShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show QUESTION_ID",
		Short: "Show a question with its answers and scores",
		Args:  exactIDs(1, "question id"),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			thread, err := acceptance.OpenThread(ctx, a.api, mustID(args[0]), a.sess.UserID, a.mutatorOptions()...)
			if err != nil {
				return err
			}

			answers := thread.Answers()
			board := voting.NewBoard(a.api, a.sess.LoggedIn, a.mutatorOptions()...)
			board.Seed(answers)
			ids := make([]int64, len(answers))
			for i, ans := range answers {
				ids[i] = ans.ID
			}
			if err := board.LoadAll(ctx, ids); err != nil {
				a.logger.Warn("showing cached scores", "error", err)
			}

			q := thread.Question()
			view := threadView{Question: q, Answers: answers, Votes: board.States()}
			return a.emit(view, func(tw *tabwriter.Writer) {
				fmt.Fprintf(tw, "%s\n", a.paint(colorBold, q.Title))
				fmt.Fprintf(tw, "asked %s by %s\ttags: %s\n\n", ago(q.CreatedAt), q.Username, strings.Join(q.Tags, ", "))
				fmt.Fprintf(tw, "%s\n\n", q.Description)
				fmt.Fprintf(tw, "%d answers (%s)\n", q.AnswerCount, thread.Machine().State())
				fmt.Fprintln(tw, "ID\tSCORE\tYOU\tBY\tANSWER")
				for _, ans := range answers {
					st, _ := board.State(ans.ID)
					mark := ""
					if ans.IsAccepted {
						mark = a.paint(colorGreen, "✓ ")
					}
					you := ""
					switch st.UserVote {
					case models.VoteUp:
						you = "▲"
					case models.VoteDown:
						you = "▼"
					}
					fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s%s\n", ans.ID, signed(st.Score), you, ans.Username, mark, truncate(ans.Description, 80))
				}
			})
		},
	}
}

func newQuestionsAskCmd(a *app) *cobra.Command {
	var req models.CreateQuestionRequest
	cmd := &cobra.Command{
		Use:   "ask",
		Short: "Ask a question",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireLogin(); err != nil {
				return err
			}
			q, err := a.api.CreateQuestion(cmd.Context(), req)
			if err != nil {
				return err
			}
			return a.emit(q, func(tw *tabwriter.Writer) {
				fmt.Fprintf(tw, "Asked question %d: %s\n", q.ID, q.Title)
			})
		},
	}
	cmd.Flags().StringVar(&req.Title, "title", "", "Question title")
	cmd.Flags().StringVar(&req.Description, "body", "", "Question body")
	cmd.Flags().StringSliceVar(&req.Tags, "tag", nil, "Tag (repeatable, 1 to 5)")
	cmd.MarkFlagRequired("title")
	cmd.MarkFlagRequired("body")
	return cmd
}

func newQuestionsEditCmd(a *app) *cobra.Command {
	var (
		title, body string
		tags        []string
	)
	cmd := &cobra.Command{
		Use:   "edit QUESTION_ID",
		Short: "Edit one of your questions",
		Args:  exactIDs(1, "question id"),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireLogin(); err != nil {
				return err
			}
			var req models.UpdateQuestionRequest
			if cmd.Flags().Changed("title") {
				req.Title = &title
			}
			if cmd.Flags().Changed("body") {
				req.Description = &body
			}
			req.Tags = tags
			if req.Title == nil && req.Description == nil && len(req.Tags) == 0 {
				return errors.New("nothing to change (use --title, --body or --tag)")
			}
			q, err := a.api.UpdateQuestion(cmd.Context(), mustID(args[0]), req)
			if err != nil {
				return err
			}
			return a.emit(q, func(tw *tabwriter.Writer) {
				fmt.Fprintf(tw, "Updated question %d: %s\n", q.ID, q.Title)
			})
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "New title")
	cmd.Flags().StringVar(&body, "body", "", "New body")
	cmd.Flags().StringSliceVar(&tags, "tag", nil, "Replace the tags (repeatable)")
	return cmd
}

func newQuestionsMineCmd(a *app) *cobra.Command {
	var p client.Page
	cmd := &cobra.Command{
		Use:   "mine",
		Short: "List the questions you asked",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireLogin(); err != nil {
				return err
			}
			qs, err := a.api.QuestionsByUser(cmd.Context(), a.sess.UserID(), p)
			if err != nil {
				return err
			}
			return a.emitQuestions(qs)
		},
	}
	cmd.Flags().IntVar(&p.Skip, "skip", 0, "Results to skip")
	cmd.Flags().IntVar(&p.Limit, "limit", 20, "Maximum results")
	return cmd
}

func newQuestionsDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete QUESTION_ID",
		Short: "Delete one of your questions",
		Args:  exactIDs(1, "question id"),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireLogin(); err != nil {
				return err
			}
			id := mustID(args[0])
			if err := a.api.DeleteQuestion(cmd.Context(), id); err != nil {
				return err
			}
			a.printf("Deleted question %d\n", id)
			return nil
		},
	}
}

func newAnswersCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "answers",
		Short: "Post, accept and delete answers",
	}
	cmd.AddCommand(
		newAnswersPostCmd(a),
		newAnswersEditCmd(a),
		newAnswersAcceptCmd(a),
		newAnswersDeleteCmd(a),
		newAnswersMineCmd(a),
	)
	return cmd
}

// openThread loads the question for an answer command run by the logged-in user.
func (a *app) openThread(cmd *cobra.Command, questionID int64) (*acceptance.Thread, error) {
	if err := a.requireLogin(); err != nil {
		return nil, err
	}
	return acceptance.OpenThread(cmd.Context(), a.api, questionID, a.sess.UserID, a.mutatorOptions()...)
}

func newAnswersPostCmd(a *app) *cobra.Command {
	var body string
	cmd := &cobra.Command{
		Use:   "post QUESTION_ID",
		Short: "Answer a question",
		Args:  exactIDs(1, "question id"),
		RunE: func(cmd *cobra.Command, args []string) error {
			thread, err := a.openThread(cmd, mustID(args[0]))
			if err != nil {
				return err
			}
			ans, err := thread.PostAnswer(cmd.Context(), body)
			if err != nil {
				return err
			}
			return a.emit(ans, func(tw *tabwriter.Writer) {
				fmt.Fprintf(tw, "Posted answer %d (%d answers now)\n", ans.ID, thread.Question().AnswerCount)
			})
		},
	}
	cmd.Flags().StringVar(&body, "body", "", "Answer text")
	cmd.MarkFlagRequired("body")
	return cmd
}

func newAnswersEditCmd(a *app) *cobra.Command {
	var req models.UpdateAnswerRequest
	cmd := &cobra.Command{
		Use:   "edit ANSWER_ID",
		Short: "Edit one of your answers",
		Args:  exactIDs(1, "answer id"),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireLogin(); err != nil {
				return err
			}
			ans, err := a.api.UpdateAnswer(cmd.Context(), mustID(args[0]), req)
			if err != nil {
				return err
			}
			return a.emit(ans, func(tw *tabwriter.Writer) {
				fmt.Fprintf(tw, "Updated answer %d\n", ans.ID)
			})
		},
	}
	cmd.Flags().StringVar(&req.Description, "body", "", "New answer text")
	cmd.MarkFlagRequired("body")
	return cmd
}

func newAnswersMineCmd(a *app) *cobra.Command {
	var p client.Page
	cmd := &cobra.Command{
		Use:   "mine",
		Short: "List the answers you posted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireLogin(); err != nil {
				return err
			}
			answers, err := a.api.AnswersByUser(cmd.Context(), a.sess.UserID(), p)
			if err != nil {
				return err
			}
			return a.emit(answers, func(tw *tabwriter.Writer) {
				fmt.Fprintln(tw, "ID\tQUESTION\tSCORE\tANSWER")
				for _, ans := range answers {
					text := truncate(ans.Description, 60)
					if ans.IsAccepted {
						text = a.paint(colorGreen, "✓ ") + text
					}
					fmt.Fprintf(tw, "%d\t%d\t%s\t%s\n", ans.ID, ans.QuestionID, signed(ans.VoteScore), text)
				}
			})
		},
	}
	cmd.Flags().IntVar(&p.Skip, "skip", 0, "Results to skip")
	cmd.Flags().IntVar(&p.Limit, "limit", 20, "Maximum results")
	return cmd
}

func newAnswersAcceptCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "accept QUESTION_ID ANSWER_ID",
		Short: "Accept an answer to your question",
		Args:  exactIDs(2, "question id", "answer id"),
		RunE: func(cmd *cobra.Command, args []string) error {
			thread, err := a.openThread(cmd, mustID(args[0]))
			if err != nil {
				return err
			}
			ans, err := thread.Accept(cmd.Context(), mustID(args[1]))
			if err != nil {
				return err
			}
			return a.emit(ans, func(tw *tabwriter.Writer) {
				fmt.Fprintf(tw, "Accepted answer %d by %s\n", ans.ID, ans.Username)
			})
		},
	}
}

func newAnswersDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete QUESTION_ID ANSWER_ID",
		Short: "Delete one of your answers",
		Args:  exactIDs(2, "question id", "answer id"),
		RunE: func(cmd *cobra.Command, args []string) error {
			thread, err := a.openThread(cmd, mustID(args[0]))
			if err != nil {
				return err
			}
			id := mustID(args[1])
			if err := thread.DeleteAnswer(cmd.Context(), id); err != nil {
				return err
			}
			a.printf("Deleted answer %d (%d left)\n", id, len(thread.Answers()))
			return nil
		},
	}
}

func newVoteCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "vote",
		Short: "Vote on answers; voting the same way twice removes the vote",
	}
	for _, dir := range []struct {
		use   string
		value int
	}{
		{"up", models.VoteUp},
		{"down", models.VoteDown},
	} {
		cmd.AddCommand(&cobra.Command{
			Use:   dir.use + " ANSWER_ID",
			Short: "Vote " + dir.use,
			Args:  exactIDs(1, "answer id"),
			RunE: func(cmd *cobra.Command, args []string) error {
				board := voting.NewBoard(a.api, a.sess.LoggedIn, a.mutatorOptions()...)
				st, err := board.Vote(cmd.Context(), mustID(args[0]), dir.value)
				if err != nil {
					return err
				}
				return a.emit(st, func(tw *tabwriter.Writer) {
					switch st.UserVote {
					case models.VoteNone:
						fmt.Fprintf(tw, "Vote removed, score %s\n", signed(st.Score))
					default:
						fmt.Fprintf(tw, "Voted %s, score %s\n", dir.use, signed(st.Score))
					}
				})
			},
		})
	}
	return cmd
}
