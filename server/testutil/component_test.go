package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/gokv/component"
	"github.com/kbukum/gokv/testutil"
)

var (
	_ component.Component    = (*Component)(nil)
	_ testutil.TestComponent = (*Component)(nil)
)

func pong(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"reply": "PONG"}) }

func TestComponent_NotStarted(t *testing.T) {
	comp := NewComponent()
	ctx := testutil.Context(t, time.Second)

	if comp.BaseURL() != "" {
		t.Error("BaseURL should be empty before Start")
	}
	if h := comp.Health(ctx); h.Status != component.StatusUnhealthy {
		t.Errorf("expected unhealthy before Start, got %s", h.Status)
	}
	if _, err := comp.GetJSON(ctx, "/ping", nil); err == nil {
		t.Error("GetJSON should fail before Start")
	}
	if err := comp.Reset(ctx); err == nil {
		t.Error("Reset should fail before Start")
	}
	if err := comp.Stop(ctx); err != nil {
		t.Errorf("Stop before Start should be a no-op, got %v", err)
	}
}

func TestComponent_Lifecycle(t *testing.T) {
	comp := NewComponent()
	comp.Engine().GET("/ping", pong)
	ctx := testutil.Context(t, 5*time.Second)

	if err := comp.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := comp.Start(ctx); err == nil {
		t.Error("second Start should fail")
	}
	if h := comp.Health(ctx); h.Status != component.StatusHealthy {
		t.Errorf("expected healthy, got %s", h.Status)
	}

	var body struct {
		Reply string `json:"reply"`
	}
	code, err := comp.GetJSON(ctx, "/ping", &body)
	if err != nil || code != http.StatusOK || body.Reply != "PONG" {
		t.Fatalf("GET /ping: code=%d reply=%q err=%v", code, body.Reply, err)
	}

	if err := comp.Stop(ctx); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if comp.BaseURL() != "" {
		t.Error("BaseURL should be empty after Stop")
	}
}

func TestComponent_Reset(t *testing.T) {
	tests := []struct {
		name     string
		opts     []Option
		path     string
		wantCode int
	}{
		{
			name:     "drops ad hoc routes",
			path:     "/adhoc",
			wantCode: http.StatusNotFound,
		},
		{
			name:     "keeps configured routes",
			opts:     []Option{WithRoutes(func(r *gin.Engine) { r.GET("/kept", pong) })},
			path:     "/kept",
			wantCode: http.StatusOK,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			comp := NewComponent(tt.opts...)
			comp.Engine().GET("/adhoc", pong)
			testutil.T(t).Setup(comp)
			ctx := testutil.Context(t, 5*time.Second)

			if err := comp.Reset(ctx); err != nil {
				t.Fatalf("Reset: %v", err)
			}
			code, err := comp.GetJSON(ctx, tt.path, nil)
			if err != nil {
				t.Fatalf("GET %s: %v", tt.path, err)
			}
			if code != tt.wantCode {
				t.Errorf("GET %s after Reset: got %d, want %d", tt.path, code, tt.wantCode)
			}
		})
	}
}

func TestComponent_MiddlewareStack(t *testing.T) {
	comp := NewComponent(WithRoutes(func(r *gin.Engine) { r.GET("/ping", pong) }))
	testutil.T(t).Setup(comp)

	req, _ := http.NewRequestWithContext(context.Background(), http.MethodGet, comp.BaseURL()+"/ping", http.NoBody)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET /ping: %v", err)
	}
	resp.Body.Close()
	if resp.Header.Get("X-Request-Id") == "" {
		t.Error("expected the middleware stack to set X-Request-Id")
	}
}
