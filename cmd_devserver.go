// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/danielhkuo/stackit/handlers"
	"github.com/danielhkuo/stackit/models"
	"github.com/danielhkuo/stackit/router"
)

func newDevServerCmd(a *app) *cobra.Command {
	var (
		port   int
		secret string
		seed   bool
	)
	cmd := &cobra.Command{
		Use:   "dev-server",
		Short: "Run an in-memory StackIt API for local testing",
		Long: "dev-server serves the StackIt API from memory. Nothing is persisted and every\n" +
			"restart starts empty, so tokens issued by a previous run are rejected.",
		Args: cobra.NoArgs,
		// No session is needed to serve
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if a.cfgErr != nil {
				return a.cfgErr
			}
			a.logger = a.newLogger()
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if secret == "" {
				secret = uuid.NewString()
			}
			store := handlers.NewStore([]byte(secret))
			if seed {
				seedDemo(store)
			}

			// Request logs are the point of a dev server
			logger := slog.New(slog.NewTextHandler(a.errOut, &slog.HandlerOptions{Level: slog.LevelInfo}))
			server := http.Server{
				Handler:           router.NewRouter(store, logger),
				Addr:              ":" + strconv.Itoa(port),
				ReadHeaderTimeout: 10 * time.Second,
			}

			ctx := cmd.Context()
			go func() {
				// Wait for Ctrl-C
				<-ctx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				server.Shutdown(shutdownCtx)
			}()

			logger.Info("Listening", "port", port, "api", "http://localhost:"+strconv.Itoa(port)+router.Prefix)
			err := server.ListenAndServe()
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("Server closed", "error", err)
				return err
			}
			logger.Info("Server closed")
			return nil
		},
	}
	cmd.Flags().IntVar(&port, "port", 8000, "Port to listen on")
	cmd.Flags().StringVar(&secret, "secret", "", "Token signing secret (random when empty)")
	cmd.Flags().BoolVar(&seed, "seed", false, "Start with a demo user, questions and a quiz topic")
	return cmd
}

// DemoPassword is the password of the users --seed creates.
const DemoPassword = "password123"

func seedDemo(store *handlers.Store) {
	alice := store.AddUser("alice", "alice@example.com", DemoPassword)
	bob := store.AddUser("bob", "bob@example.com", DemoPassword)

	q := store.AddQuestion(alice.ID, "How do I cancel a context?",
		"I start a goroutine with context.Background and cannot stop it.", "go", "context")
	store.AddAnswer(q.ID, bob.ID, "Derive it with context.WithCancel and call cancel when you are done.")
	store.AddQuestion(bob.ID, "When should I use a sync.Mutex over a channel?",
		"Both seem to protect shared state.", "go", "concurrency")

	correct := func(i int) *int { return &i }
	store.AddQuizQuestions("go-basics",
		models.QuizQuestion{
			Question:      "Which keyword starts a goroutine?",
			Options:       []string{"go", "async", "spawn", "thread"},
			CorrectOption: correct(0),
			Explanation:   "`go f()` runs f concurrently.",
		},
		models.QuizQuestion{
			Question:      "What does a nil map panic on?",
			Options:       []string{"Reads", "Writes", "len", "range"},
			CorrectOption: correct(1),
			Explanation:   "Reading a nil map returns the zero value; writing panics.",
		},
		models.QuizQuestion{
			Question:      "Which package provides errors.Is?",
			Options:       []string{"fmt", "os", "errors", "log"},
			CorrectOption: correct(2),
		},
	)
}
