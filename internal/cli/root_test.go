package cmd_test

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	cmd "github.com/rohmanhakim/vnlaw-crawler/internal/cli"
	"github.com/rohmanhakim/vnlaw-crawler/internal/config"
	"github.com/rohmanhakim/vnlaw-crawler/internal/document"
	"github.com/rohmanhakim/vnlaw-crawler/internal/outline"
	"github.com/rohmanhakim/vnlaw-crawler/internal/storage"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setBaseURLs(t *testing.T) {
	t.Helper()
	t.Setenv("VBPL_BASE_URL", "https://vbpl.vn")
	t.Setenv("ANLE_BASE_URL", "https://anle.toaan.gov.vn")
	t.Setenv("CONCETTI_BASE_URL", "https://api.concetti.vn")
	t.Setenv("STORE_DRIVER", "memory")
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd.ResetFlags()
	t.Cleanup(cmd.ResetFlags)

	root := cmd.RootCommandForTest()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func day(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func TestInitConfigWithError_FlagsOverrideEnvironment(t *testing.T) {
	setBaseURLs(t)
	t.Setenv("CRAWL_CONCURRENCY", "2")
	t.Setenv("OUTPUT_DIR", "/data/env")
	cmd.ResetFlags()

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.Int("concurrency", 0, "")
	flags.String("output-dir", "", "")
	require.NoError(t, flags.Set("concurrency", "6"))

	cfg, err := cmd.InitConfigWithError(flags)
	require.NoError(t, err)
	assert.Equal(t, 6, cfg.Concurrency())
	// not given on the command line, so the environment wins
	assert.Equal(t, "/data/env", cfg.OutputDir())
}

func TestInitConfigWithError_ConfigFile(t *testing.T) {
	setBaseURLs(t)
	path := filepath.Join(t.TempDir(), "crawler.yaml")
	require.NoError(t, os.WriteFile(path, []byte("crawl:\n  concurrency: 3\noutput:\n  dir: /data/file\n"), 0o644))
	cmd.ResetFlags()
	t.Cleanup(cmd.ResetFlags)
	cmd.SetConfigFileForTest(path)

	cfg, err := cmd.InitConfigWithError(pflag.NewFlagSet("test", pflag.ContinueOnError))
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Concurrency())
	assert.Equal(t, "/data/file", cfg.OutputDir())
}

func TestInitConfigWithError_MissingBaseURL(t *testing.T) {
	t.Setenv("VBPL_BASE_URL", "")
	t.Setenv("ANLE_BASE_URL", "")
	t.Setenv("CONCETTI_BASE_URL", "")
	cmd.ResetFlags()

	_, err := cmd.InitConfigWithError(pflag.NewFlagSet("test", pflag.ContinueOnError))
	assert.ErrorIs(t, err, config.ErrMissingBaseURL)
}

func TestCrawlCommand_RefusesToStartWithoutBaseURLs(t *testing.T) {
	t.Setenv("VBPL_BASE_URL", "")
	t.Setenv("ANLE_BASE_URL", "https://anle.toaan.gov.vn")
	t.Setenv("CONCETTI_BASE_URL", "https://api.concetti.vn")

	_, err := run(t, "crawl", "phapquy")
	assert.ErrorIs(t, err, config.ErrMissingBaseURL)
}

func TestCrawlCommand_UnknownCollection(t *testing.T) {
	setBaseURLs(t)
	_, err := run(t, "crawl", "luat")
	assert.Error(t, err)
}

func TestCrawlIDCommand_CaseLaw(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/webcenter/portal/anle/chitietanle", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "TAND123", r.URL.Query().Get("dDocName"))
		fmt.Fprint(w, `<div id="thuoctinh"><table>
			<tr><th>Số án lệ</th><td>01/2016/AL</td></tr>
		</table></div>
		<div id="filetaive"><a href="/UCMServer/TAND123">Tải về</a></div>`)
	})
	mux.HandleFunc("/UCMServer/TAND123", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Disposition", `attachment; filename="AL01.pdf"`)
		_, _ = w.Write([]byte("%PDF-1.4"))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	setBaseURLs(t)
	t.Setenv("ANLE_BASE_URL", server.URL)
	out := t.TempDir()
	t.Setenv("OUTPUT_DIR", out)

	stdout, err := run(t, "crawl-id", "anle", "TAND123")
	require.NoError(t, err)
	assert.Contains(t, stdout, "stored anle:TAND123")

	_, statErr := os.Stat(filepath.Join(out, "pdf", "anle_pdf", "(TAND123)-AL01.pdf"))
	assert.NoError(t, statErr)
}

func TestCrawlGraphCommand_RejectsCaseLaw(t *testing.T) {
	setBaseURLs(t)
	_, err := run(t, "crawl-graph", "anle", "TAND1")
	assert.ErrorContains(t, err, "no relation graph")
}

func TestFetchCommand_NotStored(t *testing.T) {
	setBaseURLs(t)
	_, err := run(t, "fetch", "vbpl", "96172")
	require.Error(t, err)
	assert.True(t, storage.IsNotFound(err))
}

func TestPreviewCommand_InvalidIssuedFrom(t *testing.T) {
	setBaseURLs(t)
	_, err := run(t, "preview", "vbpl", "--issued-from", "29/11/2013")
	assert.ErrorContains(t, err, "invalid --issued-from")
}

func TestVersionCommand(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "vnlaw-crawler dev+none")
}

func TestFetchOne_PromotesEffectiveDocument(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	doc := &document.Document{
		Source: document.SourceVBPL,
		ID:     "96172",
		Title:  "Luật Đất đai",
		State:  document.StatusNotYetEffective,
		Dates:  document.Dates{Effective: day(2014, time.July, 1)},
	}
	require.Nil(t, store.Save(ctx, doc))
	edge := document.Edge{Source: document.SourceVBPL, Space: document.SpaceRelated, SourceID: "96172", TargetID: "11", Label: "Văn bản căn cứ"}
	_, saveErr := store.SaveEdge(ctx, edge)
	require.Nil(t, saveErr)

	got, edges, promoted, err := cmd.FetchOne(ctx, store, doc.Key(), time.Date(2015, time.January, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.True(t, promoted)
	assert.Equal(t, document.StatusInEffect, got.State)
	assert.Equal(t, []document.Edge{edge}, edges)

	stored, getErr := store.Get(ctx, doc.Key())
	require.Nil(t, getErr)
	assert.Equal(t, document.StatusInEffect, stored.State)
}

func TestFetchOne_KeepsFutureDocument(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	doc := &document.Document{
		Source: document.SourceVBPL,
		ID:     "200",
		State:  document.StatusNotYetEffective,
		Dates:  document.Dates{Effective: day(2030, time.January, 1)},
	}
	require.Nil(t, store.Save(ctx, doc))

	got, _, promoted, err := cmd.FetchOne(ctx, store, doc.Key(), time.Date(2026, time.October, 15, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.False(t, promoted)
	assert.Equal(t, document.StatusNotYetEffective, got.State)
}

func TestRenderDocument(t *testing.T) {
	name := "Phạm vi điều chỉnh"
	doc := &document.Document{
		Source:       document.SourceVBPL,
		ID:           "96172",
		Title:        "Luật Đất đai",
		SerialNumber: "45/2013/QH13",
		State:        document.StatusInEffect,
		Dates:        document.Dates{Issuance: day(2013, time.November, 29)},
		Attachments: []document.AttachmentRef{
			{LocalName: "(1)-luat.pdf", Kind: document.BinaryPDF, Status: document.AttachmentDownloaded, RemoteURL: "https://vbpl.vn/luat.pdf"},
		},
		Outline: []outline.Article{{Number: 1, Name: &name, Body: "Luật này quy định."}},
	}
	edges := []document.Edge{{Space: document.SpaceCrossRef, Label: "Văn bản sửa đổi", TargetID: "150"}}

	var out bytes.Buffer
	cmd.RenderDocument(&out, doc, edges)

	text := out.String()
	assert.Contains(t, text, "vbpl:96172")
	assert.Contains(t, text, "45/2013/QH13")
	assert.Contains(t, text, "29/11/2013")
	assert.Contains(t, text, "(1)-luat.pdf")
	assert.Contains(t, text, "Điều 1")
	assert.Contains(t, text, "Văn bản sửa đổi")
	assert.NotContains(t, text, "Expiration")
}
