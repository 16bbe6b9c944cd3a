package cli

import (
	"context"
	"io"
	"os"
	"os/exec"
	"strings"

	"golang.org/x/term"

	"github.com/mithrel/homepage/internal/present"
	"github.com/mithrel/homepage/pkg/api"
)

const defaultPager = "less -FRSX"

func renderPosts(ctx context.Context, out, errOut io.Writer, posts []api.Post, opts present.Options) error {
	if opts.Mode == present.ModeTUI {
		return present.RenderPosts(ctx, out, posts, opts)
	}
	return withPager(ctx, out, errOut, func(w io.Writer) error {
		return present.RenderPosts(ctx, w, posts, opts)
	})
}

func renderPost(ctx context.Context, out, errOut io.Writer, p api.Post, opts present.Options) error {
	return withPager(ctx, out, errOut, func(w io.Writer) error {
		return present.RenderPost(ctx, w, p, opts)
	})
}

// pagerCommand returns the pager to run, or "" when paging is disabled.
// HOMEPAGE_PAGER wins over PAGER; "cat" turns paging off.
func pagerCommand() string {
	for _, key := range []string{"HOMEPAGE_PAGER", "PAGER"} {
		if v, ok := os.LookupEnv(key); ok {
			v = strings.TrimSpace(v)
			if v == "cat" {
				return ""
			}
			return v
		}
	}
	return defaultPager
}

// withPager pipes output through the pager when out is a terminal. Any
// failure to start the pager falls back to writing out directly.
func withPager(ctx context.Context, out, errOut io.Writer, write func(io.Writer) error) error {
	tty, ok := out.(*os.File)
	pager := pagerCommand()
	if !ok || pager == "" || !term.IsTerminal(int(tty.Fd())) {
		return write(out)
	}

	pc := exec.CommandContext(ctx, "sh", "-c", pager)
	pc.Stdout = tty
	pc.Stderr = os.Stderr
	if f, ok := errOut.(*os.File); ok {
		pc.Stderr = f
	}
	pipe, err := pc.StdinPipe()
	if err == nil {
		err = pc.Start()
	}
	if err != nil {
		return write(out)
	}

	werr := write(pipe)
	_ = pipe.Close()
	if err := pc.Wait(); werr == nil {
		return err
	}
	return werr
}
