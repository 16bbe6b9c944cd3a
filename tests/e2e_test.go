package tests

import (
	"bytes"
	"context"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mithrel/homepage/internal/cli"
)

// runCLI executes the CLI with the given args and returns stdout, stderr, and error.
func runCLI(ctx context.Context, t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := cli.NewRootCmd()
	var outBuf, errBuf bytes.Buffer
	cmd.SetOut(&outBuf)
	cmd.SetErr(&errBuf)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(ctx)
	return outBuf.String(), errBuf.String(), err
}

func freeAddr(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())
	return addr
}

func fetch(t *testing.T, url string) (int, string) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(b)
}

func TestE2E_ServeBlog(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmpDir, "config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(tmpDir, "data"))

	cfgPath := filepath.Join(tmpDir, "config.yaml")
	cfgContent := "site:\n  title: \"E2E Home\"\n"
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfgContent), 0o600))

	addr := freeAddr(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		_, _, err := runCLI(ctx, t, "--config", cfgPath, "serve", "--listen", addr)
		done <- err
	}()

	base := "http://" + addr
	require.Eventually(t, func() bool {
		resp, err := http.Get(base + "/healthz")
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 25*time.Millisecond)

	status, body := fetch(t, base+"/")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "Welcome to my Personal Page!")
	assert.Contains(t, body, "<title>E2E Home</title>")

	status, body = fetch(t, base+"/blog/going-femboy")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "Top Reasons of why Femboy is the Best")

	status, body = fetch(t, base+"/blog/nonexistent-slug")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Contains(t, body, "/nonexistent-slug")

	status, body = fetch(t, base+"/api/posts")
	assert.Equal(t, http.StatusOK, status)
	assert.Less(t, bytes.Index([]byte(body), []byte("building-tetris-in-bevy")), bytes.Index([]byte(body), []byte("going-femboy")))

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("serve did not stop")
	}
}

func TestE2E_BuildMatchesServe(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmpDir, "config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(tmpDir, "data"))
	cfgPath := filepath.Join(tmpDir, "config.toml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("[export]\nout_dir = \""+filepath.ToSlash(filepath.Join(tmpDir, "site"))+"\"\n"), 0o600))

	_, _, err := runCLI(context.Background(), t, "--config", cfgPath, "build")
	require.NoError(t, err)

	b, err := os.ReadFile(filepath.Join(tmpDir, "site", "blog", "building-tetris-in-bevy", "index.html"))
	require.NoError(t, err)
	assert.Contains(t, string(b), "My journey with bevy")
	assert.Contains(t, string(b), `id="why-tetris"`)
}
