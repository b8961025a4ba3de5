package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/muesli/reflow/truncate"
	"github.com/mykisan/kisan/internal/history"
	"github.com/spf13/cobra"
)

var (
	historyLimit int

	historyCmd = &cobra.Command{
		Use:   "history",
		Short: "Show your past questions and answers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := openHistory()
			if err != nil {
				return err
			}
			defer s.Close() //nolint:errcheck
			return listHistory(cmd.Context(), cmd.OutOrStdout(), s, historyLimit, time.Now())
		},
	}

	historyClearCmd = &cobra.Command{
		Use:   "clear",
		Short: "Delete your history",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := openHistory()
			if err != nil {
				return err
			}
			defer s.Close() //nolint:errcheck
			return clearHistory(cmd.Context(), cmd.OutOrStdout(), s)
		},
	}
)

func listHistory(ctx context.Context, w io.Writer, s *history.Store, limit int, now time.Time) error {
	items, err := s.List(ctx, limit)
	if err != nil {
		return fmt.Errorf("unable to load history: %w", err)
	}
	if len(items) == 0 {
		_, err := fmt.Fprintln(w, "No history yet.")
		return err //nolint:wrapcheck
	}

	lineWidth := max(width, 40)
	for i, g := range history.GroupByDay(items, now) {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintln(w, keyword(g.Label))
		for _, it := range g.Items {
			fmt.Fprintf(w, "  %s, %s\n", it.Tool, it.Ago(now))
			fmt.Fprintf(w, "    Q: %s\n", truncate.StringWithTail(it.Query, lineWidth-7, "…"))
			fmt.Fprintf(w, "    A: %s\n", truncate.StringWithTail(it.Response, lineWidth-7, "…"))
		}
	}
	return nil
}

func clearHistory(ctx context.Context, w io.Writer, s *history.Store) error {
	n, err := s.Count(ctx)
	if err != nil {
		return fmt.Errorf("unable to count history: %w", err)
	}
	if err := s.Clear(ctx); err != nil {
		return fmt.Errorf("unable to clear history: %w", err)
	}
	removed := pluralize(uint64(n), "item", "items") //nolint:gosec

	_, err = fmt.Fprintf(w, "Removed %s.\n", removed)
	return err //nolint:wrapcheck
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "number of items to show (0 for all)")
	historyCmd.AddCommand(historyClearCmd)
}
