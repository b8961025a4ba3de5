package main

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/mykisan/kisan/internal/cache"
	"github.com/spf13/cobra"
)

var (
	cacheCmd = &cobra.Command{
		Use:   "cache",
		Short: "Inspect or clear cached answers",
		Long:  paragraph(fmt.Sprintf("\nMarket prices, scheme lookups and synthesized speech are %s so repeated questions work offline.", keyword("cached on disk"))),
		Args:  cobra.NoArgs,
	}

	cacheListCmd = &cobra.Command{
		Use:   "list",
		Short: "List cached entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, store, err := openCache()
			if err != nil {
				return err
			}
			defer store.Close() //nolint:errcheck
			fmt.Fprintf(cmd.OutOrStdout(), "%s\n\n", store.Path())
			return listCache(cmd.OutOrStdout(), c, time.Now())
		},
	}

	cacheClearCmd = &cobra.Command{
		Use:   "clear",
		Short: "Remove every cached entry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, store, err := openCache()
			if err != nil {
				return err
			}
			defer store.Close() //nolint:errcheck
			return clearCache(cmd.OutOrStdout(), c)
		},
	}
)

// listCache prints the live entries. Expired and corrupt entries are
// dropped as they are read.
func listCache(w io.Writer, c *cache.Cache, now time.Time) error {
	keys, err := c.Keys()
	if err != nil {
		return err //nolint:wrapcheck
	}
	sort.Strings(keys)

	before := c.Stats()
	var live, total uint64
	for _, k := range keys {
		e, err := c.GetEntry(k)
		if err != nil {
			if errors.Is(err, cache.ErrCacheCorrupted) {
				fmt.Fprintf(w, "%s  %s\n", keyword(k), errorStyle("corrupt, removed"))
			}
			continue
		}
		live++
		size := uint64(len(e.Data))
		total += size
		fmt.Fprintf(w, "%s  %s  cached %s, expires %s\n",
			keyword(k),
			humanize.Bytes(size),
			humanize.RelTime(e.CreatedAt(), now, "ago", "from now"),
			humanize.RelTime(e.ExpiresAt(), now, "ago", "from now"),
		)
	}

	after := c.Stats()
	if n := after.Expired - before.Expired; n > 0 {
		fmt.Fprintf(w, "Dropped %s.\n", pluralize(uint64(n), "expired entry", "expired entries")) //nolint:gosec
	}
	if n := after.Corrupt - before.Corrupt; n > 0 {
		fmt.Fprintf(w, "Dropped %s.\n", pluralize(uint64(n), "corrupt entry", "corrupt entries")) //nolint:gosec
	}

	if live == 0 {
		_, err := fmt.Fprintln(w, "Cache is empty.")
		return err //nolint:wrapcheck
	}
	_, err = fmt.Fprintf(w, "\n%s in %s\n", humanize.Bytes(total), pluralize(live, "entry", "entries"))
	return err //nolint:wrapcheck
}

func clearCache(w io.Writer, c *cache.Cache) error {
	keys, err := c.Keys()
	if err != nil {
		return err //nolint:wrapcheck
	}
	if err := c.Clear(); err != nil {
		return fmt.Errorf("unable to clear cache: %w", err)
	}
	_, err = fmt.Fprintf(w, "Removed %s.\n", pluralize(uint64(len(keys)), "entry", "entries"))
	return err //nolint:wrapcheck
}

func pluralize(n uint64, one, many string) string {
	if n == 1 {
		return "1 " + one
	}
	return humanize.Comma(int64(n)) + " " + many //nolint:gosec
}

func init() {
	cacheCmd.AddCommand(cacheListCmd, cacheClearCmd)
}
