package cli

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/binpack3d/packview/pkg/document"
)

const packRequest = `{
	"bin_config": {"width": 10, "height": 5, "depth": 5, "name": "test bin"},
	"items": [
		{"id": "box-1", "name": "Box 1", "width": 2, "height": 2, "depth": 2}
	]
}`

const packResponse = `{
	"bins": [
		{
			"bin_id": "bin-0",
			"dimensions": [10, 5, 5],
			"items": [
				{
					"id": "box-1",
					"position": [0, 0, 0],
					"rotation": [0, 0, 0],
					"dimensions": [2, 2, 2],
					"color": "#FF0000",
					"original_name": "Box 1"
				}
			],
			"utilization": 3.2
		}
	],
	"statistics": {"success": true, "items_packed": 1, "total_items": 1},
	"unpacked_items": []
}`

func TestRunPack(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(packResponse))
	}))
	t.Cleanup(srv.Close)

	dir := t.TempDir()
	input := filepath.Join(dir, "request.json")
	if err := os.WriteFile(input, []byte(packRequest), 0644); err != nil {
		t.Fatalf("write request: %v", err)
	}
	output := filepath.Join(dir, "out.json")

	c := New(io.Discard, LogDebug)
	c.Config.Packing.ServiceURL = srv.URL
	if err := c.runPack(context.Background(), input, output, false, true); err != nil {
		t.Fatalf("runPack: %v", err)
	}

	doc, err := document.ReadFile(output)
	if err != nil {
		t.Fatalf("read result: %v", err)
	}
	if len(doc.Items) != 1 || doc.Items[0].ID != "box-1" {
		t.Errorf("unexpected result items: %+v", doc.Items)
	}
	if doc.Container.Width != 10 {
		t.Errorf("container width = %g, want 10", doc.Container.Width)
	}
}

func TestRunPackDefaultOutputPath(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(packResponse))
	}))
	t.Cleanup(srv.Close)

	dir := t.TempDir()
	input := filepath.Join(dir, "request.json")
	if err := os.WriteFile(input, []byte(packRequest), 0644); err != nil {
		t.Fatalf("write request: %v", err)
	}

	c := New(io.Discard, LogDebug)
	c.Config.Packing.ServiceURL = srv.URL
	if err := c.runPack(context.Background(), input, "", false, true); err != nil {
		t.Fatalf("runPack: %v", err)
	}

	want := filepath.Join(dir, "request.result.json")
	if _, err := os.Stat(want); err != nil {
		t.Errorf("expected result at %s: %v", want, err)
	}
}

func TestRunPackBadRequestFile(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "request.json")
	if err := os.WriteFile(input, []byte("{"), 0644); err != nil {
		t.Fatalf("write request: %v", err)
	}

	c := New(io.Discard, LogDebug)
	if err := c.runPack(context.Background(), input, "", false, true); err == nil {
		t.Fatal("expected an error for a malformed request file")
	}
}
