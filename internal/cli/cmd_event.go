package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/agrolink/agrolink/internal/app"
	"github.com/agrolink/agrolink/internal/storage"
	"github.com/spf13/cobra"
)

func newEventCommand(deps commandDeps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "event",
		Short: "Farm calendar events",
	}
	cmd.AddCommand(
		newEventAddCommand(deps),
		newEventListCommand(deps),
		newEventRemoveCommand(deps),
	)
	return cmd
}

func newEventAddCommand(deps commandDeps) *cobra.Command {
	var (
		req  app.CreateEventRequest
		date string
	)

	cmd := &cobra.Command{
		Use:     "add",
		Short:   "Add a calendar event",
		Example: "  agrolink event add --title 'Spring sowing' --date 2026-04-15 --type sowing",
		Args:    noPositionalArgs("event add"),
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(req.Title) == "" {
				return usageErrorf("event add requires --title")
			}
			if strings.TrimSpace(date) == "" {
				return usageErrorf("event add requires --date")
			}
			eventDate, err := parseDate(date)
			if err != nil {
				return err
			}
			req.EventDate = eventDate

			return withServices(cmd.Context(), deps, func(ctx context.Context, env *runtimeEnv) error {
				id, err := env.services.Calendar.Create(ctx, req)
				if err != nil {
					return err
				}
				if id == 0 {
					return errors.New("event was not saved; see log for details")
				}
				return printEventList(deps, []storage.CalendarEvent{{
					ID:          id,
					Title:       req.Title,
					Description: req.Description,
					EventDate:   req.EventDate.UTC().Truncate(time.Millisecond),
					EventType:   req.EventType,
				}})
			})
		},
	}

	cmd.Flags().StringVar(&req.Title, "title", "", "Title")
	cmd.Flags().StringVar(&req.Description, "description", "", "Description")
	cmd.Flags().StringVar(&date, "date", "", "Event date (YYYY-MM-DD or RFC 3339)")
	cmd.Flags().StringVar(&req.EventType, "type", "", "Event type, e.g. sowing, harvest, market")
	return cmd
}

func newEventListCommand(deps commandDeps) *cobra.Command {
	var from, to string

	cmd := &cobra.Command{
		Use:   "ls",
		Short: "List events in date order",
		Long:  "List events, earliest first. With --from and --to only events dated in [from, to) are shown.",
		Args:  noPositionalArgs("event ls"),
		RunE: func(cmd *cobra.Command, args []string) error {
			if (from == "") != (to == "") {
				return usageErrorf("event ls needs both --from and --to, or neither")
			}
			var start, end time.Time
			if from != "" {
				var err error
				if start, err = parseDate(from); err != nil {
					return err
				}
				if end, err = parseDate(to); err != nil {
					return err
				}
				if !end.After(start) {
					return usageErrorf("event ls --to must be after --from")
				}
			}

			return withServices(cmd.Context(), deps, func(ctx context.Context, env *runtimeEnv) error {
				if from == "" {
					return printEventList(deps, env.services.Calendar.List(ctx))
				}
				return printEventList(deps, env.services.Calendar.ListBetween(ctx, start, end))
			})
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "Range start, inclusive")
	cmd.Flags().StringVar(&to, "to", "", "Range end, exclusive")
	return cmd
}

func newEventRemoveCommand(deps commandDeps) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id>",
		Short: "Remove an event",
		Args:  exactlyOneID("event rm"),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return withServices(cmd.Context(), deps, func(ctx context.Context, env *runtimeEnv) error {
				if !env.services.Calendar.Delete(ctx, id) {
					return notFoundErrorf("event %d not found", id)
				}
				return printRemoved(deps, "event", id)
			})
		},
	}
}

func printEventList(deps commandDeps, events []storage.CalendarEvent) error {
	if deps.globals.JSON {
		views := make([]eventView, 0, len(events))
		for _, event := range events {
			views = append(views, newEventView(event))
		}
		return printJSON(deps.out, views)
	}
	if deps.globals.Quiet {
		for _, event := range events {
			if _, err := fmt.Fprintln(deps.out, event.ID); err != nil {
				return err
			}
		}
		return nil
	}

	rows := make([][]string, 0, len(events))
	for _, event := range events {
		rows = append(rows, []string{
			formatID(event.ID),
			formatDate(event.EventDate),
			truncate(event.Title, 40),
			event.EventType,
			truncate(event.Description, 48),
		})
	}
	return renderTable(deps.out, []string{"ID", "DATE", "TITLE", "TYPE", "DESCRIPTION"}, rows)
}
