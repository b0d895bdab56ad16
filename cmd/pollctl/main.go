// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Command pollctl manages questions, choices and users from the shell.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/danielhkuo/quickly-polls/auth"
	"github.com/danielhkuo/quickly-polls/cliparse"
	"github.com/danielhkuo/quickly-polls/db"
	"github.com/danielhkuo/quickly-polls/store"
)

func main() {
	if err := cliparse.LoadDotEnv(".env"); err != nil {
		slog.Error("Error loading .env", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp(os.Stdout).Run(ctx, os.Args); err != nil {
		slog.Error("pollctl failed", "error", err)
		os.Exit(1)
	}
}

func newApp(out io.Writer) *cli.Command {
	return &cli.Command{
		Name:   "pollctl",
		Usage:  "administer the polls database",
		Writer: out,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "database-url",
				Aliases: []string{"d"},
				Usage:   "connection string or SQLite file path",
				Sources: cli.EnvVars("DATABASE_URL"),
				Value:   "polls.db",
			},
			&cli.StringFlag{
				Name:    "database-type",
				Aliases: []string{"t"},
				Usage:   "sqlite or postgres",
				Sources: cli.EnvVars("DATABASE_TYPE"),
				Value:   cliparse.DatabaseSQLite,
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "migrate",
				Usage: "create missing tables",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return withStore(cmd, func(*store.Store) error {
						slog.Info("Database schema ready")
						return nil
					})
				},
			},
			{
				Name:      "create-user",
				Usage:     "add a user account",
				ArgsUsage: "<username>",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "password",
						Usage:    "initial password (at least 8 characters)",
						Sources:  cli.EnvVars("POLLCTL_PASSWORD"),
						Required: true,
					},
					&cli.BoolFlag{Name: "staff", Usage: "grant staff rights"},
				},
				Action: createUser,
			},
			{
				Name:  "add-question",
				Usage: "add a question and print its ID",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "text", Usage: "question text", Required: true},
					&cli.StringFlag{Name: "pub-date", Usage: "publication time (RFC 3339, default now)"},
					&cli.StringFlag{Name: "end-date", Usage: "voting deadline (RFC 3339)"},
				},
				Action: addQuestion,
			},
			{
				Name:  "add-choice",
				Usage: "append a choice to a question and print its ID",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "question", Usage: "question ID", Required: true},
					&cli.StringFlag{Name: "text", Usage: "choice text", Required: true},
				},
				Action: addChoice,
			},
			{
				Name:   "list-questions",
				Usage:  "list every question, newest first",
				Action: listQuestions,
			},
			{
				Name:  "set-end-date",
				Usage: "change or clear a question's voting deadline",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "question", Usage: "question ID", Required: true},
					&cli.StringFlag{Name: "end-date", Usage: "voting deadline (RFC 3339), empty to clear"},
				},
				Action: setEndDate,
			},
		},
	}
}

// withStore opens the database named by the root flags and makes sure the
// schema exists before running fn
func withStore(cmd *cli.Command, fn func(*store.Store) error) error {
	conn, err := db.Open(cliparse.Config{
		DatabaseType: cmd.String("database-type"),
		DatabaseURL:  cmd.String("database-url"),
	})
	if err != nil {
		return err
	}
	defer conn.Close()

	if err := db.CreateSchema(conn); err != nil {
		return err
	}
	return fn(store.New(conn))
}

func createUser(ctx context.Context, cmd *cli.Command) error {
	username := cmd.Args().First()
	if username == "" {
		return errors.New("username argument required")
	}

	hash, err := auth.HashPassword(cmd.String("password"))
	if err != nil {
		return err
	}

	return withStore(cmd, func(s *store.Store) error {
		user, err := s.CreateUser(ctx, username, hash, cmd.Bool("staff"), time.Now())
		if err != nil {
			return fmt.Errorf("create user %q: %w", username, err)
		}
		slog.Info("User created", "user_id", user.ID, "username", user.Username, "staff", user.IsStaff)
		fmt.Fprintln(cmd.Root().Writer, user.ID)
		return nil
	})
}

func addQuestion(ctx context.Context, cmd *cli.Command) error {
	pubDate := time.Now()
	if raw := cmd.String("pub-date"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return fmt.Errorf("invalid --pub-date: %w", err)
		}
		pubDate = t
	}
	endDate, err := parseOptionalTime(cmd.String("end-date"))
	if err != nil {
		return fmt.Errorf("invalid --end-date: %w", err)
	}
	if endDate != nil && endDate.Before(pubDate) {
		return errors.New("--end-date must not be before --pub-date")
	}

	return withStore(cmd, func(s *store.Store) error {
		q, err := s.CreateQuestion(ctx, cmd.String("text"), pubDate, endDate)
		if err != nil {
			return err
		}
		slog.Info("Question created", "question_id", q.ID)
		fmt.Fprintln(cmd.Root().Writer, q.ID)
		return nil
	})
}

func addChoice(ctx context.Context, cmd *cli.Command) error {
	return withStore(cmd, func(s *store.Store) error {
		c, err := s.AddChoice(ctx, cmd.String("question"), cmd.String("text"))
		if err != nil {
			return fmt.Errorf("add choice: %w", err)
		}
		slog.Info("Choice added", "question_id", c.QuestionID, "choice_id", c.ID, "position", c.Position)
		fmt.Fprintln(cmd.Root().Writer, c.ID)
		return nil
	})
}

func listQuestions(ctx context.Context, cmd *cli.Command) error {
	return withStore(cmd, func(s *store.Store) error {
		questions, err := s.ListQuestions(ctx)
		if err != nil {
			return err
		}

		now := time.Now()
		tw := tabwriter.NewWriter(cmd.Root().Writer, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tPUBLISHED\tRECENT\tOPEN\tTEXT")
		for _, q := range questions {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
				q.ID, q.PubDate.Format(time.RFC3339),
				yesNo(q.WasPublishedRecently(now)), yesNo(q.CanVote(now)), q.Text)
		}
		return tw.Flush()
	})
}

func setEndDate(ctx context.Context, cmd *cli.Command) error {
	endDate, err := parseOptionalTime(cmd.String("end-date"))
	if err != nil {
		return fmt.Errorf("invalid --end-date: %w", err)
	}

	return withStore(cmd, func(s *store.Store) error {
		if err := s.SetEndDate(ctx, cmd.String("question"), endDate); err != nil {
			return fmt.Errorf("set end date: %w", err)
		}
		slog.Info("End date updated", "question_id", cmd.String("question"), "end_date", endDate)
		return nil
	})
}

func parseOptionalTime(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
