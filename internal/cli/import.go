package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/mithrel/homepage/internal/blog"
	"github.com/mithrel/homepage/internal/content"
	"github.com/mithrel/homepage/pkg/api"
)

// importStats counts how an import changed the stored posts.
type importStats struct {
	Added, Changed, Unchanged, Removed int
}

func diffPosts(stored, incoming []api.Post) importStats {
	old := make(map[string]string, len(stored))
	for _, p := range stored {
		old[p.Slug] = p.Hash()
	}
	var st importStats
	for _, p := range incoming {
		h, ok := old[p.Slug]
		switch {
		case !ok:
			st.Added++
		case h == p.Hash():
			st.Unchanged++
		default:
			st.Changed++
		}
		delete(old, p.Slug)
	}
	st.Removed = len(old)
	return st
}

func newImportCmd() *cobra.Command {
	var from string
	var yes bool
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Load posts from a content directory into the sqlite store",
		RunE: func(cmd *cobra.Command, args []string) error {
			app := getApp(cmd)
			ctx := cmd.Context()

			var fsys fs.FS
			if dir := strings.TrimSpace(from); dir != "" {
				fsys = os.DirFS(dir)
			} else {
				fsys = app.ContentFS()
			}
			posts, err := content.NewFSSource(fsys).LoadPosts(ctx)
			if err != nil {
				return err
			}
			if _, err := blog.NewRegistry(posts); err != nil {
				return err
			}

			store, err := app.Store(ctx)
			if err != nil {
				return err
			}
			stored, err := store.ListPosts(ctx)
			if err != nil {
				return err
			}
			st := diffPosts(stored, posts)
			if st.Removed > 0 {
				desc := fmt.Sprintf("%d stored posts are missing from the source and will be removed.", st.Removed)
				if err := confirmImport("Replace stored posts?", desc, yes); err != nil {
					return err
				}
			}
			if err := store.ReplacePosts(ctx, posts); err != nil {
				return err
			}
			app.Log.Printf("imported posts added=%d changed=%d unchanged=%d removed=%d", st.Added, st.Changed, st.Unchanged, st.Removed)
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Imported: %d\nAdded: %d\nChanged: %d\nUnchanged: %d\nRemoved: %d\n",
				len(posts), st.Added, st.Changed, st.Unchanged, st.Removed)
			return nil
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "content directory (defaults to content_dir or the built-in content)")
	cmd.Flags().BoolVar(&yes, "yes", false, "skip the confirmation prompt when posts would be removed")
	return cmd
}

var errConfirmationRequired = errors.New("confirmation required; rerun with --yes")

var stdinIsTerminal = func() bool { return term.IsTerminal(int(os.Stdin.Fd())) }

func confirmImport(title, desc string, yes bool) error {
	if yes {
		return nil
	}
	if !stdinIsTerminal() {
		return errConfirmationRequired
	}
	confirm := false
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Description(desc).
				Value(&confirm),
		),
	)
	if err := form.Run(); err != nil {
		return err
	}
	if !confirm {
		return fmt.Errorf("aborted")
	}
	return nil
}
