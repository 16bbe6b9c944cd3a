// Package wire builds the application's services from configuration.
package wire

import (
	"context"
	"io/fs"
	"log"
	"os"
	"sync"

	"github.com/spf13/viper"

	"github.com/mithrel/homepage/internal/config"
	"github.com/mithrel/homepage/internal/content"
	"github.com/mithrel/homepage/internal/db"
	"github.com/mithrel/homepage/internal/render"
	"github.com/mithrel/homepage/internal/server"
)

// App aggregates the major services for easy injection. The post store and
// the site are opened on first use so commands that need neither stay cheap.
type App struct {
	Cfg      *viper.Viper
	Log      *log.Logger
	Renderer render.HTML

	mu    sync.Mutex
	store db.PostStore
	live  *content.Live
}

// BuildApp wires dependencies with the provided config.
func BuildApp(ctx context.Context, v *viper.Viper) (*App, error) {
	logger := log.New(os.Stderr, "homepage ", log.LstdFlags)
	md := render.NewMarkdown(render.Options{
		HighlightStyle: v.GetString("render.highlight_style"),
		HardWraps:      v.GetBool("render.hard_wraps"),
		Unsafe:         v.GetBool("render.unsafe"),
		Sanitize:       v.GetBool("render.sanitize"),
	})
	return &App{Cfg: v, Log: logger, Renderer: md}, nil
}

// Store opens the sqlite post store under data_dir on first call.
func (a *App) Store(ctx context.Context) (db.PostStore, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.store != nil {
		return a.store, nil
	}
	store, err := db.Open(ctx, "sqlite://"+config.ResolveDBPath(a.Cfg))
	if err != nil {
		return nil, err
	}
	a.store = store
	return store, nil
}

// ContentFS returns content_dir as a file system, or the built-in content.
func (a *App) ContentFS() fs.FS {
	if dir := config.ResolveContentDir(a.Cfg); dir != "" {
		return os.DirFS(dir)
	}
	return content.Embedded()
}

// Source picks the content source named by content.source.
func (a *App) Source(ctx context.Context) (content.Source, error) {
	files := content.NewFSSource(a.ContentFS())
	if config.ContentSource(a.Cfg) != config.SourceSQLite {
		return files, nil
	}
	home, err := files.Home()
	if err != nil {
		return nil, err
	}
	store, err := a.Store(ctx)
	if err != nil {
		return nil, err
	}
	return content.NewStoreSource(store, home), nil
}

// Live loads the site once and returns the same holder on later calls.
func (a *App) Live(ctx context.Context) (*content.Live, error) {
	a.mu.Lock()
	live := a.live
	a.mu.Unlock()
	if live != nil {
		return live, nil
	}
	src, err := a.Source(ctx)
	if err != nil {
		return nil, err
	}
	live, err = content.NewLive(ctx, src)
	if err != nil {
		return nil, err
	}
	a.Log.Printf("loaded content source=%s posts=%d", config.ContentSource(a.Cfg), live.Site().Posts.Len())
	a.mu.Lock()
	a.live = live
	a.mu.Unlock()
	return live, nil
}

// Server builds the HTTP server over the live site.
func (a *App) Server(ctx context.Context) (*server.Server, error) {
	live, err := a.Live(ctx)
	if err != nil {
		return nil, err
	}
	return server.New(live, a.Renderer, server.Options{
		Title:   a.Cfg.GetString("site.title"),
		BaseURL: a.Cfg.GetString("site.base_url"),
		Logger:  a.Log,
		TLS: server.TLSOptions{
			Domain:   a.Cfg.GetString("tls.domain"),
			Email:    a.Cfg.GetString("tls.email"),
			HTTPAddr: a.Cfg.GetString("tls.http_addr"),
			CertFile: a.Cfg.GetString("tls.cert_file"),
			KeyFile:  a.Cfg.GetString("tls.key_file"),
		},
	})
}

// Close releases the post store if it was opened.
func (a *App) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.store == nil {
		return nil
	}
	err := a.store.Close()
	a.store = nil
	return err
}
