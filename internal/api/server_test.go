package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"stackreel/internal/api"
	"stackreel/internal/history"
	"stackreel/internal/layout"
	"stackreel/internal/logging"
	"stackreel/internal/metrics"
	"stackreel/internal/project"
	"stackreel/internal/render"
	"stackreel/internal/services"
	"stackreel/internal/testsupport"
)

type fakeRenderer struct {
	store     *history.Store
	plan      *layout.Plan
	planErr   error
	renderErr error
}

func (f *fakeRenderer) Plan(context.Context, *project.Project) (*layout.Plan, error) {
	return f.plan, f.planErr
}

func (f *fakeRenderer) Render(ctx context.Context, proj *project.Project) (*render.Result, error) {
	session, _ := services.RequestIDFromContext(ctx)
	rec, err := f.store.Begin(ctx, history.Render{SessionID: session, Project: proj.Name, Output: proj.Output, Sources: len(proj.Sources)})
	if err != nil {
		return nil, err
	}
	status := history.StatusSucceeded
	if f.renderErr != nil {
		status = services.FailureStatus(f.renderErr)
	}
	if _, err := f.store.Finish(ctx, rec.ID, history.Outcome{Status: status, Resolution: "608x1080", Err: f.renderErr}); err != nil {
		return nil, err
	}
	return &render.Result{}, f.renderErr
}

type harness struct {
	srv      *httptest.Server
	store    *history.Store
	renderer *fakeRenderer
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	cfg := testsupport.NewConfig(t, testsupport.WithCaptions(false))
	store := testsupport.MustOpenHistory(t, cfg)
	renderer := &fakeRenderer{
		store: store,
		plan: &layout.Plan{
			Orientation: layout.Portrait,
			TargetRatio: 9.0 / 16.0,
			TotalWeight: 10,
			Resolution:  layout.Size{Width: 607, Height: 1080},
			Canvas:      layout.Size{Width: 607, Height: 1080},
			Duration:    12,
			Elements: []layout.Element{
				{Kind: layout.KindSource, Name: "a.mp4", Weight: 9, Crop: layout.Rect{Width: 608, Height: 1080}, Size: layout.Size{Width: 607, Height: 972}},
				{Kind: layout.KindDivider, Name: "divider-1", Weight: 1, Size: layout.Size{Width: 607, Height: 4}},
			},
		},
	}
	server := api.NewServer(cfg, renderer, store, metrics.New(), logging.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	server.StartWorker(ctx)
	srv := httptest.NewServer(server.Handler())
	t.Cleanup(func() {
		srv.Close()
		cancel()
		server.Wait()
	})
	return &harness{srv: srv, store: store, renderer: renderer}
}

const projectBody = `{"name":"reel","output":"/tmp/out/reel.mp4","audio":"/tmp/voice.m4a","sources":[{"path":"/tmp/a.mp4","weight":9}]}`

func (h *harness) do(t *testing.T, method, path, body string) (*http.Response, []byte) {
	t.Helper()
	req, err := http.NewRequest(method, h.srv.URL+path, strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	data, _ := io.ReadAll(resp.Body)
	return resp, data
}

func decode[T any](t *testing.T, data []byte) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		t.Fatalf("decode %s: %v", data, err)
	}
	return v
}

func TestHealth(t *testing.T) {
	h := newHarness(t)
	resp, data := h.do(t, http.MethodGet, "/api/health", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if got := decode[api.HealthResponse](t, data); got.Status != "ok" {
		t.Fatalf("health = %+v", got)
	}
	if resp.Header.Get("X-Request-ID") == "" {
		t.Fatal("missing request id header")
	}
}

func TestPlanEndpoint(t *testing.T) {
	h := newHarness(t)
	resp, data := h.do(t, http.MethodPost, "/api/plan", projectBody)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d: %s", resp.StatusCode, data)
	}
	plan := decode[api.Plan](t, data)
	if plan.Resolution != (api.Size{Width: 607, Height: 1080}) || len(plan.Elements) != 2 {
		t.Fatalf("unexpected plan %+v", plan)
	}
	if plan.Elements[0].Crop == nil || plan.Elements[1].Crop != nil {
		t.Fatalf("crop should be set for sources only: %+v", plan.Elements)
	}
	if plan.Orientation != "portrait" {
		t.Fatalf("orientation = %q", plan.Orientation)
	}
}

func TestPlanEndpointErrors(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		planErr error
		status  int
		code    string
		stage   string
	}{
		{name: "malformed json", body: `{"sources":`, status: http.StatusBadRequest, code: "INVALID_PROJECT", stage: "project"},
		{name: "unknown field", body: `{"output":"x","bogus":true}`, status: http.StatusBadRequest, code: "INVALID_PROJECT", stage: "project"},
		{
			name:    "insufficient source",
			body:    projectBody,
			planErr: &layout.InsufficientSourceError{Clip: "a.mp4", Reason: "too narrow"},
			status:  http.StatusUnprocessableEntity,
			code:    "INSUFFICIENT_SOURCE",
		},
		{
			name:    "probe failure",
			body:    projectBody,
			planErr: services.Wrap(services.ErrExternalTool, "open", "ffprobe", "crashed", nil),
			status:  http.StatusBadGateway,
			code:    "EXTERNAL_TOOL_FAILED",
			stage:   "open",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			h.renderer.planErr = tt.planErr
			resp, data := h.do(t, http.MethodPost, "/api/plan", tt.body)
			if resp.StatusCode != tt.status {
				t.Fatalf("status = %d, want %d: %s", resp.StatusCode, tt.status, data)
			}
			got := decode[api.ErrorResponse](t, data)
			if got.Code != tt.code {
				t.Fatalf("code = %q, want %q", got.Code, tt.code)
			}
			if got.Stage != tt.stage {
				t.Fatalf("stage = %q, want %q", got.Stage, tt.stage)
			}
		})
	}
}

func TestSubmitRenderRunsOnWorker(t *testing.T) {
	h := newHarness(t)
	resp, data := h.do(t, http.MethodPost, "/api/renders", projectBody)
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("status = %d: %s", resp.StatusCode, data)
	}
	accepted := decode[api.RenderAccepted](t, data)
	if accepted.SessionID == "" || resp.Header.Get("Location") != accepted.Location {
		t.Fatalf("unexpected accepted body %+v", accepted)
	}

	deadline := time.Now().Add(5 * time.Second)
	for {
		resp, data := h.do(t, http.MethodGet, accepted.Location, "")
		if resp.StatusCode == http.StatusOK {
			view := decode[api.Render](t, data)
			if view.Status == string(history.StatusSucceeded) {
				if view.SessionID != accepted.SessionID || view.Resolution != "608x1080" {
					t.Fatalf("unexpected render %+v", view)
				}
				break
			}
		}
		if time.Now().After(deadline) {
			t.Fatalf("render did not finish: %d %s", resp.StatusCode, data)
		}
		time.Sleep(10 * time.Millisecond)
	}

	resp, data = h.do(t, http.MethodGet, "/api/renders?status=succeeded", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list status = %d", resp.StatusCode)
	}
	list := decode[api.RenderList](t, data)
	if len(list.Renders) != 1 || list.Stats["succeeded"] != 1 {
		t.Fatalf("unexpected list %+v", list)
	}

	resp, data = h.do(t, http.MethodGet, "/api/renders/"+strconv.FormatInt(list.Renders[0].ID, 10), "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get by id status = %d: %s", resp.StatusCode, data)
	}
}

func TestSubmitRenderRejectsInvalidProject(t *testing.T) {
	h := newHarness(t)
	resp, data := h.do(t, http.MethodPost, "/api/renders", `{"output":"/tmp/x.mp4","audio":"/tmp/a.m4a"}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d: %s", resp.StatusCode, data)
	}
	rows, err := h.store.List(context.Background(), history.ListOptions{})
	if err != nil || len(rows) != 0 {
		t.Fatalf("rejected submissions must not create history rows: %v %d", err, len(rows))
	}
}

func TestRenderLookupErrors(t *testing.T) {
	h := newHarness(t)
	tests := []struct {
		path   string
		status int
	}{
		{path: "/api/renders/999", status: http.StatusNotFound},
		{path: "/api/renders/no-such-session", status: http.StatusNotFound},
		{path: "/api/renders?status=bogus", status: http.StatusBadRequest},
		{path: "/api/renders?limit=-1", status: http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp, data := h.do(t, http.MethodGet, tt.path, "")
			if resp.StatusCode != tt.status {
				t.Fatalf("status = %d, want %d: %s", resp.StatusCode, tt.status, data)
			}
		})
	}
}

func TestMetricsEndpoint(t *testing.T) {
	h := newHarness(t)
	h.do(t, http.MethodGet, "/api/health", "")
	resp, data := h.do(t, http.MethodGet, "/metrics", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if !bytes.Contains(data, []byte("stackreel_http_requests_total")) {
		t.Fatalf("metrics output missing request counter:\n%s", data)
	}
}
