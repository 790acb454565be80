package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/agrolink/agrolink/internal/app"
	"github.com/agrolink/agrolink/internal/storage"
	"github.com/spf13/cobra"
)

func newNewsCommand(deps commandDeps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "news",
		Short: "News feed",
	}
	cmd.AddCommand(
		newNewsAddCommand(deps),
		newNewsListCommand(deps),
		newNewsRemoveCommand(deps),
	)
	return cmd
}

func newNewsAddCommand(deps commandDeps) *cobra.Command {
	var req app.CreateNewsRequest

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Publish a news item",
		Args:  noPositionalArgs("news add"),
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(req.Title) == "" {
				return usageErrorf("news add requires --title")
			}
			return withServices(cmd.Context(), deps, func(ctx context.Context, env *runtimeEnv) error {
				id, err := env.services.News.Create(ctx, req)
				if err != nil {
					return err
				}
				if id == 0 {
					return errors.New("news item was not saved; see log for details")
				}
				if deps.globals.JSON {
					return printJSON(deps.out, map[string]any{"id": id, "title": req.Title})
				}
				if deps.globals.Quiet {
					_, err := fmt.Fprintln(deps.out, id)
					return err
				}
				_, err = fmt.Fprintf(deps.out, "published news %d\n", id)
				return err
			})
		},
	}
	cmd.Flags().StringVar(&req.Title, "title", "", "Headline")
	cmd.Flags().StringVar(&req.Content, "content", "", "Body text")
	return cmd
}

func newNewsListCommand(deps commandDeps) *cobra.Command {
	return &cobra.Command{
		Use:   "ls",
		Short: "List news, newest first",
		Args:  noPositionalArgs("news ls"),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withServices(cmd.Context(), deps, func(ctx context.Context, env *runtimeEnv) error {
				return printNewsList(deps, env.services.News.List(ctx))
			})
		},
	}
}

func newNewsRemoveCommand(deps commandDeps) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id>",
		Short: "Remove a news item",
		Args:  exactlyOneID("news rm"),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return withServices(cmd.Context(), deps, func(ctx context.Context, env *runtimeEnv) error {
				if !env.services.News.Delete(ctx, id) {
					return notFoundErrorf("news item %d not found", id)
				}
				return printRemoved(deps, "news", id)
			})
		},
	}
}

func printNewsList(deps commandDeps, items []storage.NewsItem) error {
	if deps.globals.JSON {
		views := make([]newsView, 0, len(items))
		for _, item := range items {
			views = append(views, newNewsView(item))
		}
		return printJSON(deps.out, views)
	}
	if deps.globals.Quiet {
		for _, item := range items {
			if _, err := fmt.Fprintln(deps.out, item.ID); err != nil {
				return err
			}
		}
		return nil
	}

	rows := make([][]string, 0, len(items))
	for _, item := range items {
		rows = append(rows, []string{
			formatID(item.ID),
			formatTime(item.Timestamp),
			truncate(item.Title, 48),
			truncate(item.Content, 60),
		})
	}
	return renderTable(deps.out, []string{"ID", "PUBLISHED", "TITLE", "CONTENT"}, rows)
}
