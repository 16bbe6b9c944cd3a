package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/mithrel/homepage/internal/blog"
	"github.com/mithrel/homepage/internal/config"
	"github.com/mithrel/homepage/internal/db"
	"github.com/mithrel/homepage/internal/present"
	"github.com/mithrel/homepage/internal/server"
	"github.com/mithrel/homepage/internal/util"
	"github.com/mithrel/homepage/internal/wire"
	"github.com/mithrel/homepage/pkg/api"
)

const maxCompletions = 20

func newPostCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "post",
		Short: "Inspect blog posts",
	}
	cmd.AddCommand(newPostListCmd())
	cmd.AddCommand(newPostShowCmd())
	cmd.AddCommand(newPostResolveCmd())
	return cmd
}

func newPostListCmd() *cobra.Command {
	var outputMode string
	var tag string
	var noHeaders bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List posts in display order",
		RunE: func(cmd *cobra.Command, args []string) error {
			app := getApp(cmd)
			live, err := app.Live(cmd.Context())
			if err != nil {
				return err
			}
			if outputMode == "" {
				outputMode = defaultListMode(cmd)
			}
			mode, ok := present.ParseMode(strings.ToLower(outputMode))
			if !ok || mode == present.ModeHTML || mode == present.ModePretty {
				return fmt.Errorf("invalid --output: %s", outputMode)
			}
			reg := live.Site().Posts
			posts := reg.Posts()
			if tag != "" {
				posts = reg.WithTag(tag)
			}
			opts := present.Options{
				Mode:    mode,
				Headers: !noHeaders,
				Style:   app.Cfg.GetString("render.highlight_style"),
				Width:   terminalWidth(cmd),
			}
			return renderPosts(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), posts, opts)
		},
	}
	cmd.Flags().StringVar(&outputMode, "output", "", "output mode: plain|json|ndjson|tui (default tui on a terminal, plain otherwise)")
	cmd.Flags().StringVar(&tag, "tag", "", "only posts carrying this tag")
	cmd.Flags().BoolVar(&noHeaders, "noheaders", false, "omit column headers")
	_ = cmd.RegisterFlagCompletionFunc("tag", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		live, err := getApp(cmd).Live(cmd.Context())
		if err != nil {
			return nil, cobra.ShellCompDirectiveError
		}
		return util.ScoreCompletions(toComplete, live.Site().Posts.Tags(), maxCompletions), cobra.ShellCompDirectiveNoFileComp
	})
	return cmd
}

func newPostShowCmd() *cobra.Command {
	var outputMode string
	var noHeaders bool
	cmd := &cobra.Command{
		Use:               "show <slug>",
		Short:             "Display a post",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeSlugs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app := getApp(cmd)
			mode, ok := present.ParseMode(strings.ToLower(outputMode))
			if !ok || mode == present.ModeTUI {
				return fmt.Errorf("invalid --output: %s", outputMode)
			}
			p, err := findPost(cmd.Context(), app, args[0])
			if err != nil {
				return err
			}
			opts := present.Options{
				Mode:     mode,
				Headers:  !noHeaders,
				Style:    app.Cfg.GetString("render.highlight_style"),
				Width:    terminalWidth(cmd),
				Renderer: app.Renderer,
			}
			return renderPost(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), p, opts)
		},
	}
	cmd.Flags().StringVar(&outputMode, "output", "pretty", "output mode: pretty|plain|json|ndjson|html")
	cmd.Flags().BoolVar(&noHeaders, "noheaders", false, "omit the metadata header in plain output")
	return cmd
}

func newPostResolveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <path>",
		Short: "Show which page a URL path maps to",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			live, err := getApp(cmd).Live(cmd.Context())
			if err != nil {
				return err
			}
			m := server.Resolve(live.Site().Posts, args[0])
			out := cmd.OutOrStdout()
			switch m.Kind {
			case server.PagePost:
				_, _ = fmt.Fprintf(out, "%s\t%s\t%s\n", m.Kind, m.Post.Slug, m.Post.Title)
			case server.PageNotFound:
				_, _ = fmt.Fprintf(out, "%s\t%s\n", m.Kind, m.Path)
				for _, s := range m.Suggestions {
					_, _ = fmt.Fprintf(out, "  did you mean /blog/%s\n", s)
				}
			default:
				_, _ = fmt.Fprintln(out, m.Kind)
			}
			return nil
		},
	}
}

// withSuggestions appends "did you mean" lines to a resolver miss while
// keeping it matchable with errors.Is.
// findPost resolves slug. With the sqlite source it reads the single stored
// row; misses go through the registry so the error carries suggestions.
func findPost(ctx context.Context, app *wire.App, slug string) (api.Post, error) {
	if config.ContentSource(app.Cfg) == config.SourceSQLite {
		store, err := app.Store(ctx)
		if err != nil {
			return api.Post{}, err
		}
		p, err := store.GetPost(ctx, slug)
		if err == nil {
			return p, nil
		}
		if !errors.Is(err, db.ErrNotFound) {
			return api.Post{}, fmt.Errorf("get post %s: %w", slug, err)
		}
	}
	live, err := app.Live(ctx)
	if err != nil {
		return api.Post{}, err
	}
	reg := live.Site().Posts
	p, err := reg.Resolve(slug)
	if err != nil {
		return api.Post{}, withSuggestions(err, reg.Suggest(slug, 3))
	}
	return p, nil
}

func withSuggestions(err error, suggestions []string) error {
	if !errors.Is(err, blog.ErrPostNotFound) || len(suggestions) == 0 {
		return err
	}
	return fmt.Errorf("%w\n\nDid you mean?\n\t%s", err, strings.Join(suggestions, "\n\t"))
}

func completeSlugs(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	live, err := getApp(cmd).Live(cmd.Context())
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	return util.ScoreCompletions(toComplete, live.Site().Posts.Slugs(), maxCompletions), cobra.ShellCompDirectiveNoFileComp
}

func defaultListMode(cmd *cobra.Command) string {
	if f, ok := cmd.OutOrStdout().(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return "tui"
	}
	return "plain"
}

func terminalWidth(cmd *cobra.Command) int {
	if f, ok := cmd.OutOrStdout().(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		if w, _, err := term.GetSize(int(f.Fd())); err == nil && w > 0 {
			return min(w, 100)
		}
	}
	return 80
}
