package main

import (
	"bytes"
	stderrors "errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/vango-dev/vstream/internal/config"
	"github.com/vango-dev/vstream/internal/errors"
)

// execute runs the CLI with args against a default config file in a
// temp dir and returns stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	delay := demoDelay
	demoDelay = 5 * time.Millisecond
	t.Cleanup(func() { demoDelay = delay })

	cfgPath := filepath.Join(t.TempDir(), config.ConfigFileName)
	if err := config.New().SaveTo(cfgPath); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(append(args, "--config", cfgPath))
	err := root.Execute()
	return out.String(), err
}

func errorCode(err error) string {
	var e *errors.Error
	if stderrors.As(err, &e) {
		return e.Code
	}
	return ""
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version", "--short")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if out != version+"\n" {
		t.Errorf("version --short = %q, want %q", out, version+"\n")
	}

	out, _ = execute(t, "version")
	if !strings.Contains(out, "Go version:") {
		t.Errorf("version output missing Go version:\n%s", out)
	}
}

func TestRenderCommand(t *testing.T) {
	out, err := execute(t, "render", "suspense")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	shell := strings.Index(out, "--- shell 0")
	patch := strings.Index(out, "--- patch 1")
	if shell < 0 || patch < shell {
		t.Fatalf("expected shell then patch, got:\n%s", out)
	}
	if !strings.Contains(out[shell:patch], "<div>loading...</div>") {
		t.Errorf("shell should carry the fallback:\n%s", out)
	}
	if !strings.Contains(out[patch:], "<div>Done!</div>") {
		t.Errorf("patch should carry the resolved content:\n%s", out)
	}
}

func TestRenderCommandReconstruct(t *testing.T) {
	out, err := execute(t, "render", "suspense", "--reconstruct")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	want := "<!DOCTYPE html><html><body><div>Done!</div></body></html>\n"
	if out != want {
		t.Errorf("render --reconstruct = %q, want %q", out, want)
	}
}

func TestRenderCommandErrors(t *testing.T) {
	_, err := execute(t, "render", "nope")
	if errorCode(err) != "E142" {
		t.Errorf("unknown page: err = %v, want E142", err)
	}

	if _, err := execute(t, "render"); err == nil {
		t.Error("render without a page should fail")
	}
}

func TestConfigErrors(t *testing.T) {
	root := newRootCmd()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs([]string{"render", "index", "--config", filepath.Join(t.TempDir(), "missing.json")})
	if err := root.Execute(); errorCode(err) != "E141" {
		t.Errorf("missing config: err = %v, want E141", err)
	}

	bad := filepath.Join(t.TempDir(), config.ConfigFileName)
	if err := os.WriteFile(bad, []byte(`{"log": {"format": "xml"}}`), 0644); err != nil {
		t.Fatal(err)
	}
	root = newRootCmd()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs([]string{"render", "index", "--config", bad})
	if err := root.Execute(); errorCode(err) != "E122" {
		t.Errorf("invalid config: err = %v, want E122", err)
	}
}

func TestExportCommand(t *testing.T) {
	dir := t.TempDir()
	out, err := execute(t, "export", "--out", dir, "-j", "2")
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if !strings.Contains(out, "Exported") {
		t.Errorf("missing summary:\n%s", out)
	}

	for _, name := range newDemoSite(0).names() {
		if _, err := os.Stat(filepath.Join(dir, name+".html")); err != nil {
			t.Errorf("page %s not exported: %v", name, err)
		}
	}

	data, err := os.ReadFile(filepath.Join(dir, "index.html"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "<li>Good Morning!!</li>") {
		t.Errorf("index.html = %s", data)
	}
	data, _ = os.ReadFile(filepath.Join(dir, "dashboard.html"))
	if strings.Contains(string(data), "loading") {
		t.Errorf("exported documents should have every boundary resolved:\n%s", data)
	}
}

func TestExportCommandNoTarget(t *testing.T) {
	_, err := execute(t, "export", "--out", "")
	if errorCode(err) != "E171" {
		t.Errorf("err = %v, want E171", err)
	}
}

func TestServeWiring(t *testing.T) {
	cfg := config.New()
	cfg.Tracing.Enabled = true
	srv := newServer(cfg, cfg.NewLogger(io.Discard), newDemoSite(5*time.Millisecond))

	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	body := get(t, ts.URL+"/suspense", http.StatusOK)
	if !strings.Contains(body, "loading...") || !strings.Contains(body, "Done!") {
		t.Errorf("streamed body = %s", body)
	}

	metrics := get(t, ts.URL+cfg.Metrics.Path, http.StatusOK)
	for _, name := range []string{
		`vstream_streams_total{result="ok"} 1`,
		`vstream_chunks_total{kind="patch"} 1`,
		"go_goroutines",
	} {
		if !strings.Contains(metrics, name) {
			t.Errorf("metrics missing %s", name)
		}
	}
}

func TestServeMetricsDisabled(t *testing.T) {
	cfg := config.New()
	cfg.Metrics.Enabled = false
	srv := newServer(cfg, cfg.NewLogger(io.Discard), newDemoSite(0))

	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	get(t, ts.URL+"/metrics", http.StatusNotFound)
}

func get(t *testing.T, url string, status int) string {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read %s: %v", url, err)
	}
	if resp.StatusCode != status {
		t.Fatalf("GET %s: status %d, want %d", url, resp.StatusCode, status)
	}
	return string(data)
}
