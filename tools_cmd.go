package main

import (
	"cmp"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/mykisan/kisan/internal/api"
	"github.com/mykisan/kisan/internal/content"
	"github.com/mykisan/kisan/internal/history"
	"github.com/mykisan/kisan/ui"
	"github.com/mykisan/kisan/utils"
	"github.com/spf13/cobra"
)

var (
	marketLocation      string
	diagnoseDescription string

	marketCmd = &cobra.Command{
		Use:     "market CROP",
		Short:   "Show current market prices for a crop",
		Example: paragraph("kisan market rice\nkisan market tomato --location Mysuru"),
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOneShot(cmd.OutOrStdout(), func(ctx context.Context, t ui.Tools) (answer, error) {
				return marketAnswer(ctx, t, args[0], cmp.Or(marketLocation, location)), nil
			})
		},
	}

	schemesCmd = &cobra.Command{
		Use:     "schemes QUERY",
		Short:   "Find government schemes you may be eligible for",
		Example: paragraph("kisan schemes \"drip irrigation subsidy\""),
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOneShot(cmd.OutOrStdout(), func(ctx context.Context, t ui.Tools) (answer, error) {
				return schemesAnswer(ctx, t, strings.Join(args, " ")), nil
			})
		},
	}

	diagnoseCmd = &cobra.Command{
		Use:     "diagnose IMAGE",
		Short:   "Diagnose a crop disease from a photo",
		Example: paragraph("kisan diagnose leaf.jpg --description \"yellow spots\""),
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOneShot(cmd.OutOrStdout(), func(ctx context.Context, t ui.Tools) (answer, error) {
				return diagnoseAnswer(ctx, t, args[0], diagnoseDescription)
			})
		},
	}
)

// answer is a rendered tool reply together with what gets recorded in
// history.
type answer struct {
	tool     string
	query    string
	kind     history.Kind
	markdown string
	summary  string
}

func toolName(id string) string {
	if t, ok := content.ToolByID(id); ok {
		return t.Name
	}
	return id
}

func marketAnswer(ctx context.Context, t ui.Tools, crop, location string) answer {
	if location == "" {
		location = api.DefaultLocation
	}
	r := t.GetMarketPrices(ctx, crop, location)
	return answer{
		tool:     toolName(content.ToolMarketAdvisory),
		query:    crop,
		kind:     history.KindText,
		markdown: r.Markdown(),
		summary:  r.Summary(),
	}
}

func schemesAnswer(ctx context.Context, t ui.Tools, query string) answer {
	r := t.GetSchemeInfo(ctx, query, nil)
	return answer{
		tool:     toolName(content.ToolSubsidyNavigator),
		query:    query,
		kind:     history.KindText,
		markdown: r.Markdown(),
		summary:  r.Summary(),
	}
}

func diagnoseAnswer(ctx context.Context, t ui.Tools, path, description string) (answer, error) {
	img, err := ui.ReadImage(utils.ExpandPath(path))
	if err != nil {
		return answer{}, err //nolint:wrapcheck
	}
	r := t.DiagnoseCrop(ctx, filepath.Base(path), img, description)
	return answer{
		tool:     toolName(content.ToolCropDiagnosis),
		query:    filepath.Base(path),
		kind:     history.KindImage,
		markdown: r.Markdown(),
		summary:  r.Summary(),
	}, nil
}

// respond renders a into w and records it in h when h is not nil.
func respond(ctx context.Context, w io.Writer, h ui.History, a answer) error {
	out, err := renderMarkdown(a.markdown, style, width)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprint(w, out); err != nil {
		return fmt.Errorf("unable to write to writer: %w", err)
	}
	if h != nil {
		if _, err := h.Add(ctx, history.Item{
			Tool:     a.tool,
			Query:    a.query,
			Response: a.summary,
			Kind:     a.kind,
		}); err != nil {
			log.Warn("Could not record history", "error", err)
		}
	}
	return nil
}

func renderMarkdown(md, style string, width uint) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithColorProfile(lipgloss.ColorProfile()),
		utils.GlamourStyle(style),
		glamour.WithWordWrap(int(width)), //nolint:gosec
	)
	if err != nil {
		return "", fmt.Errorf("unable to create renderer: %w", err)
	}
	out, err := r.Render(md)
	if err != nil {
		return "", fmt.Errorf("unable to render markdown: %w", err)
	}
	return out, nil
}

func runOneShot(w io.Writer, ask func(context.Context, ui.Tools) (answer, error)) error {
	b, err := openBackends(false)
	if err != nil {
		return err
	}
	defer b.Close() //nolint:errcheck

	ctx := context.Background()
	a, err := ask(ctx, b.client)
	if err != nil {
		return err
	}
	return respond(ctx, w, b.recorder(), a)
}

func init() {
	marketCmd.Flags().StringVarP(&marketLocation, "location", "L", "", "where to look up prices (default from config)")
	diagnoseCmd.Flags().StringVarP(&diagnoseDescription, "description", "d", "", "describe the symptoms")
}
