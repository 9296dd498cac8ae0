// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package main

import (
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/danielhkuo/stackit/client"
	"github.com/danielhkuo/stackit/models"
	"github.com/danielhkuo/stackit/quiz"
)

func newQuizCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "quiz",
		Short: "Take multiple-choice quizzes",
	}
	cmd.AddCommand(
		newQuizTopicsCmd(a),
		newQuizTakeCmd(a),
		newQuizShowCmd(a),
		newQuizMineCmd(a),
		newQuizStatsCmd(a),
		newQuizLeaderboardCmd(a),
	)
	return cmd
}

func newQuizTopicsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "topics",
		Short: "List quiz topics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			topics, err := a.api.Topics(cmd.Context())
			if err != nil {
				return err
			}
			return a.emit(topics, func(tw *tabwriter.Writer) {
				fmt.Fprintln(tw, "TOPIC\tNAME")
				for _, t := range topics {
					fmt.Fprintf(tw, "%s\t%s\n", t, quiz.TopicName(t))
				}
			})
		},
	}
}

func (a *app) gradeColor(pct float64) string {
	switch quiz.GradeOf(int(pct)) {
	case quiz.Good:
		return colorGreen
	case quiz.Fair:
		return colorYellow
	default:
		return colorRed
	}
}

// takeView is the structured form of `quiz take`.
type takeView struct {
	Result models.QuizResult `json:"result" yaml:"result"`
	Review []quiz.ReviewItem `json:"review" yaml:"review"`
}

func newQuizTakeCmd(a *app) *cobra.Command {
	var (
		n          int
		difficulty string
	)
	cmd := &cobra.Command{
		Use:   "take TOPIC",
		Short: "Generate a quiz and answer it interactively",
		Long: "Each question is read from stdin: type the option number, an empty line to skip,\n" +
			"or q to stop and submit. The quiz is submitted when its time limit passes.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireLogin(); err != nil {
				return err
			}
			ctx := cmd.Context()
			att, err := quiz.Generate(ctx, a.api, args[0], n, difficulty)
			if err != nil {
				return err
			}

			qz := att.Quiz()
			deadline := att.Deadline()
			fmt.Fprintf(a.errOut, "%s quiz: %d questions, %s to finish\n",
				quiz.TopicName(qz.Topic), len(qz.Questions), time.Until(deadline).Round(time.Second))

			r := a.reader()
			lines := make(chan inputLine)
			done := make(chan struct{})
			defer close(done)
			go func() {
				for {
					text, err := r.ReadString('\n')
					select {
					case lines <- inputLine{text: text, err: err}:
					case <-done:
						return
					}
					if err != nil {
						return
					}
				}
			}()

			timer := time.NewTimer(time.Until(deadline))
			defer timer.Stop()
			expired := false

		questions:
			for i, q := range qz.Questions {
				fmt.Fprintf(a.errOut, "\n%d. %s\n", i+1, q.Question)
				for j, opt := range q.Options {
					fmt.Fprintf(a.errOut, "   %d) %s\n", j+1, opt)
				}
				for {
					fmt.Fprint(a.errOut, "> ")
					var in inputLine
					select {
					case in = <-lines:
					case <-timer.C:
						expired = true
						fmt.Fprintln(a.errOut, "\nTime is up")
						break questions
					}
					line := strings.TrimSpace(in.text)
					switch {
					case line == "q":
						break questions
					case line == "":
						if in.err != nil {
							break questions
						}
						continue questions
					}
					opt, convErr := strconv.Atoi(line)
					if convErr == nil {
						convErr = att.Choose(q.ID, opt-1)
					}
					if convErr == nil {
						break
					}
					fmt.Fprintf(a.errOut, "Choose 1 to %d\n", len(q.Options))
					if in.err != nil {
						break questions
					}
				}
			}

			submit := att.Submit
			if expired || att.Expired() {
				submit = att.SubmitExpired
			}
			res, err := submit(ctx)
			if err != nil {
				return err
			}
			review, err := att.Review()
			if err != nil {
				return err
			}

			return a.emit(takeView{Result: res, Review: review}, func(tw *tabwriter.Writer) {
				score := fmt.Sprintf("%d/%d (%.0f%%)", res.Score, res.TotalQuestions, res.Percentage)
				fmt.Fprintf(tw, "\nScore: %s\n\n", a.paint(a.gradeColor(res.Percentage), score))
				for i, item := range review {
					mark := a.paint(colorRed, "✗")
					if item.IsCorrect {
						mark = a.paint(colorGreen, "✓")
					}
					fmt.Fprintf(tw, "%s %d. %s\n", mark, i+1, item.Question.Question)
					if item.Chosen != nil {
						fmt.Fprintf(tw, "    you:\t%s\n", optionText(item.Question, *item.Chosen))
					} else {
						fmt.Fprintln(tw, "    you:\t(skipped)")
					}
					if item.Correct != nil && !item.IsCorrect {
						fmt.Fprintf(tw, "    answer:\t%s\n", optionText(item.Question, *item.Correct))
					}
					if item.Explanation != "" {
						fmt.Fprintf(tw, "    why:\t%s\n", item.Explanation)
					}
				}
			})
		},
	}
	cmd.Flags().IntVarP(&n, "questions", "n", quiz.DefaultQuestions, "Number of questions")
	cmd.Flags().StringVar(&difficulty, "difficulty", quiz.DefaultDifficulty, "easy, medium, hard or mixed")
	return cmd
}

// inputLine is one line read from stdin while a quiz is running.
type inputLine struct {
	text string
	err  error
}

func optionText(q models.QuizQuestion, i int) string {
	if i < 0 || i >= len(q.Options) {
		return fmt.Sprintf("option %d", i+1)
	}
	return q.Options[i]
}

func newQuizShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show QUIZ_ID",
		Short: "Show one of your quizzes",
		Args:  exactIDs(1, "quiz id"),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireLogin(); err != nil {
				return err
			}
			q, err := a.api.GetQuiz(cmd.Context(), mustID(args[0]))
			if err != nil {
				return err
			}
			return a.emit(q, func(tw *tabwriter.Writer) {
				fmt.Fprintf(tw, "%s quiz (%s)\t%s\n", quiz.TopicName(q.Topic), q.Difficulty, ago(q.CreatedAt))
				if q.Completed && q.Score != nil {
					pct := float64(quiz.Percentage(*q.Score, q.TotalQuestions))
					fmt.Fprintf(tw, "Score\t%s\n", a.paint(a.gradeColor(pct), fmt.Sprintf("%d/%d", *q.Score, q.TotalQuestions)))
				} else {
					fmt.Fprintln(tw, "Not submitted")
				}
				for i, qq := range q.Questions {
					fmt.Fprintf(tw, "%d.\t%s\n", i+1, qq.Question)
				}
			})
		},
	}
}

func newQuizMineCmd(a *app) *cobra.Command {
	var p client.Page
	cmd := &cobra.Command{
		Use:   "mine",
		Short: "List your quizzes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireLogin(); err != nil {
				return err
			}
			quizzes, err := a.api.MyQuizzes(cmd.Context(), p)
			if err != nil {
				return err
			}
			return a.emit(quizzes, func(tw *tabwriter.Writer) {
				fmt.Fprintln(tw, "ID\tTOPIC\tDIFFICULTY\tSCORE\tTAKEN")
				for _, q := range quizzes {
					score := "-"
					if q.Completed && q.Score != nil {
						score = fmt.Sprintf("%d/%d", *q.Score, q.TotalQuestions)
					}
					fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", q.ID, quiz.TopicName(q.Topic), q.Difficulty, score, ago(q.CreatedAt))
				}
			})
		},
	}
	cmd.Flags().IntVar(&p.Skip, "skip", 0, "Results to skip")
	cmd.Flags().IntVar(&p.Limit, "limit", 20, "Maximum results")
	return cmd
}

func newQuizStatsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stats TOPIC",
		Short: "Show how everyone does on a topic",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := a.api.TopicStats(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return a.emit(st, func(tw *tabwriter.Writer) {
				fmt.Fprintf(tw, "Topic\t%s\n", quiz.TopicName(st.Topic))
				fmt.Fprintf(tw, "Quizzes taken\t%s\n", humanize.Comma(int64(st.TotalQuizzes)))
				fmt.Fprintf(tw, "Average\t%.1f%%\n", st.AverageScore)
				fmt.Fprintf(tw, "Best\t%s\n", a.paint(a.gradeColor(st.BestScore), fmt.Sprintf("%.1f%%", st.BestScore)))
			})
		},
	}
}

func newQuizLeaderboardCmd(a *app) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "leaderboard TOPIC",
		Short: "Show the best attempts on a topic",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := a.api.Leaderboard(cmd.Context(), args[0], client.Page{Limit: limit})
			if err != nil {
				return err
			}
			return a.emit(entries, func(tw *tabwriter.Writer) {
				fmt.Fprintln(tw, "RANK\tUSER\tSCORE\tPERCENT")
				for i, e := range entries {
					fmt.Fprintf(tw, "%s\t%s\t%d/%d\t%.0f%%\n",
						humanize.Ordinal(i+1), e.Username, e.Score, e.TotalQuestions, e.Percentage)
				}
			})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 10, "Maximum entries")
	return cmd
}
