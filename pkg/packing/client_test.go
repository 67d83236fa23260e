package packing

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/binpack3d/packview/pkg/cache"
	"github.com/binpack3d/packview/pkg/config"
	"github.com/binpack3d/packview/pkg/errors"
)

func testRequest() Request {
	return Request{
		Container: ContainerSpec{Width: 10, Height: 5, Depth: 5},
		Items: []ItemSpec{
			{ID: "box-1", Name: "Box 1", Width: 2, Height: 2, Depth: 2},
			{ID: "box-2", Name: "Box 2", Width: 20, Height: 20, Depth: 20},
		},
	}
}

func successResult() result {
	return result{
		Bins: []packedBin{{
			BinID:      "bin-0",
			Dimensions: []float32{10, 5, 5},
			Items: []packedItem{{
				ID:           "box-1",
				OriginalName: "Box 1",
				Dimensions:   []float32{2, 2, 2},
				Position:     []float32{0, 0, 0},
				Rotation:     []float32{0, 90, 0},
				Color:        "red",
			}},
			Utilization: 6.4,
		}},
		Statistics: statistics{Success: true, SpaceUtilization: 6.4, ItemsPacked: 1, TotalItems: 2},
		Unpacked: []unpackedItem{{
			ID:         "box-2",
			Name:       "Box 2",
			Dimensions: []float32{20, 20, 20},
			Reason:     "Too large for container",
		}},
	}
}

func testClient(t *testing.T, baseURL string, opts ...Option) *Client {
	t.Helper()
	c, err := NewClient(config.PackingConfig{ServiceURL: baseURL, TimeoutSeconds: 5}, opts...)
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	return c
}

func TestClient_Pack(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != PackPath {
			http.NotFound(w, r)
			return
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("got Content-Type %q, want application/json", ct)
		}
		var req Request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.Container.Width != 10 {
			t.Errorf("got container width %v, want 10", req.Container.Width)
		}
		json.NewEncoder(w).Encode(successResult())
	}))
	defer server.Close()

	c := testClient(t, server.URL)

	doc, err := c.Pack(context.Background(), testRequest(), false)
	if err != nil {
		t.Fatalf("Pack failed: %v", err)
	}

	if doc.Container.Width != 10 || doc.Container.Height != 5 || doc.Container.Depth != 5 {
		t.Errorf("got container %+v, want 10x5x5", doc.Container)
	}
	if len(doc.Items) != 1 {
		t.Fatalf("got %d placed items, want 1", len(doc.Items))
	}
	item := doc.Items[0]
	if item.ID != "box-1" || item.Name != "Box 1" {
		t.Errorf("got item %q/%q, want box-1/Box 1", item.ID, item.Name)
	}
	if item.Rotation.Y != 90 {
		t.Errorf("got rotation.Y %v, want 90", item.Rotation.Y)
	}
	if item.Color != "#FF0000" {
		t.Errorf("got color %q, want normalized #FF0000", item.Color)
	}
	if len(doc.Unpacked) != 1 || doc.Unpacked[0].Reason != "Too large for container" {
		t.Errorf("got unpacked %+v, want box-2 with reason", doc.Unpacked)
	}
	if doc.Fingerprint() == "" {
		t.Error("expected non-empty document fingerprint")
	}
}

func TestClient_Pack_EmptyBins(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		res := result{
			Statistics: statistics{Success: true},
			Unpacked: []unpackedItem{{
				ID:         "box-1",
				Dimensions: []float32{2, 2, 2},
				Reason:     "No space",
			}},
		}
		json.NewEncoder(w).Encode(res)
	}))
	defer server.Close()

	c := testClient(t, server.URL)

	doc, err := c.Pack(context.Background(), testRequest(), false)
	if err != nil {
		t.Fatalf("Pack failed: %v", err)
	}

	// Container dimensions fall back to the request when no bin came back.
	if doc.Container.Width != 10 {
		t.Errorf("got container width %v, want request width 10", doc.Container.Width)
	}
	if len(doc.Items) != 0 || len(doc.Unpacked) != 1 {
		t.Errorf("got %d placed / %d unpacked, want 0 / 1", len(doc.Items), len(doc.Unpacked))
	}
}

func TestClient_Pack_ServiceFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		res := result{Statistics: statistics{Success: false, Error: "items exceed container volume"}}
		json.NewEncoder(w).Encode(res)
	}))
	defer server.Close()

	c := testClient(t, server.URL)

	_, err := c.Pack(context.Background(), testRequest(), false)
	if err == nil {
		t.Fatal("expected error for unsuccessful packing")
	}
	if !errors.Is(err, errors.ErrCodeInvalidDocument) {
		t.Errorf("got code %v, want ErrCodeInvalidDocument", errors.GetCode(err))
	}
	if errors.UserMessage(err) != "items exceed container volume" {
		t.Errorf("got message %q, want service detail", errors.UserMessage(err))
	}
}

func TestClient_Pack_BadRequestNotRetried(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"detail": "item IDs must be unique"})
	}))
	defer server.Close()

	c := testClient(t, server.URL)

	_, err := c.Pack(context.Background(), testRequest(), false)
	if err == nil {
		t.Fatal("expected error for 400 response")
	}
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("got code %v, want ErrCodeInvalidInput", errors.GetCode(err))
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("got %d requests, want 1 (client errors must not retry)", got)
	}
}

func TestClient_Pack_RetriesServerError(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(successResult())
	}))
	defer server.Close()

	c := testClient(t, server.URL)

	doc, err := c.Pack(context.Background(), testRequest(), false)
	if err != nil {
		t.Fatalf("Pack failed after retry: %v", err)
	}
	if got := calls.Load(); got != 2 {
		t.Errorf("got %d requests, want 2 (one retry)", got)
	}
	if len(doc.Items) != 1 {
		t.Errorf("got %d items after retry, want 1", len(doc.Items))
	}
}

func TestClient_Pack_UsesCache(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		json.NewEncoder(w).Encode(successResult())
	}))
	defer server.Close()

	backend, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache failed: %v", err)
	}
	c := testClient(t, server.URL, WithCache(backend, cache.NewDefaultKeyer()))

	first, err := c.Pack(context.Background(), testRequest(), false)
	if err != nil {
		t.Fatalf("first Pack failed: %v", err)
	}
	second, err := c.Pack(context.Background(), testRequest(), false)
	if err != nil {
		t.Fatalf("second Pack failed: %v", err)
	}

	if got := calls.Load(); got != 1 {
		t.Errorf("got %d requests, want 1 (second call from cache)", got)
	}
	if first.Fingerprint() != second.Fingerprint() {
		t.Error("cached document fingerprint differs from fresh one")
	}

	// refresh bypasses the cache
	if _, err := c.Pack(context.Background(), testRequest(), true); err != nil {
		t.Fatalf("refresh Pack failed: %v", err)
	}
	if got := calls.Load(); got != 2 {
		t.Errorf("got %d requests after refresh, want 2", got)
	}
}

func TestRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Request)
		wantErr bool
	}{
		{"valid", func(r *Request) {}, false},
		{"no items", func(r *Request) { r.Items = nil }, true},
		{"zero container width", func(r *Request) { r.Container.Width = 0 }, true},
		{"negative item height", func(r *Request) { r.Items[0].Height = -1 }, true},
		{"empty item id", func(r *Request) { r.Items[0].ID = "" }, true},
		{"duplicate item ids", func(r *Request) { r.Items[1].ID = r.Items[0].ID }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testRequest()
			tt.mutate(&req)
			err := req.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
