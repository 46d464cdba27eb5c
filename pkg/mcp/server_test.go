package mcp

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/quotawatch/quotawatch/pkg/adapter"
	"github.com/quotawatch/quotawatch/pkg/history"
	"github.com/quotawatch/quotawatch/pkg/kv"
	"github.com/quotawatch/quotawatch/pkg/monitor"
	"github.com/quotawatch/quotawatch/pkg/scheduler"
)

type memStore struct {
	mu   sync.Mutex
	data map[string][]byte
}

func (m *memStore) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return nil, kv.ErrNotFound
	}
	return v, nil
}

func (m *memStore) Set(ctx context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *memStore) Delete(ctx context.Context, key string) error { return nil }
func (m *memStore) Close() error                                 { return nil }

func newTestMCPServer(t *testing.T) (*Server, *adapter.Registry, *history.Store) {
	t.Helper()

	hist := history.NewStore(context.Background(), &memStore{data: make(map[string][]byte)}, func() int { return 7 })
	registry := adapter.NewRegistry()
	board := monitor.NewStatusBoard()
	mon := monitor.New(registry, hist)
	mon.AddListener(board)

	sched := scheduler.New(func() time.Duration { return 0 })
	sched.Start(context.Background(), mon.RefreshAll)
	t.Cleanup(sched.Stop)

	return NewServer(board, mon, sched), registry, hist
}

func callToolRequest(args map[string]any) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

func TestHandleReadStatus(t *testing.T) {
	s, registry, _ := newTestMCPServer(t)

	a, err := adapter.NewMockAdapter(adapter.AccountRecord{
		ID: "m", PlatformType: "mock", Enabled: true,
	})
	if err != nil {
		t.Fatalf("NewMockAdapter failed: %v", err)
	}
	registry.Register(a)
	if err := s.sched.Trigger(); err != nil {
		t.Fatalf("refresh failed: %v", err)
	}

	req := mcp.ReadResourceRequest{}
	req.Params.URI = "quotawatch://status"
	result, err := s.handleReadStatus(context.Background(), req)
	if err != nil {
		t.Fatalf("handleReadStatus failed: %v", err)
	}
	if len(result) != 1 {
		t.Fatalf("expected 1 resource content, got %d", len(result))
	}
	content, ok := result[0].(mcp.TextResourceContents)
	if !ok {
		t.Fatal("expected TextResourceContents")
	}
	if !strings.Contains(content.Text, `"account_id": "m"`) {
		t.Errorf("expected account in status payload: %s", content.Text)
	}
}

func TestHandleGetPrediction_Unavailable(t *testing.T) {
	s, _, _ := newTestMCPServer(t)

	result, err := s.handleGetPrediction(context.Background(), callToolRequest(map[string]any{"account_id": "ghost"}))
	if err != nil {
		t.Fatalf("handleGetPrediction failed: %v", err)
	}
	text := toolText(t, result)
	if !strings.Contains(text, "No prediction available") {
		t.Errorf("expected unavailable message, got %q", text)
	}
}

func TestHandleGetPrediction_MissingAccountID(t *testing.T) {
	s, _, _ := newTestMCPServer(t)

	result, err := s.handleGetPrediction(context.Background(), callToolRequest(nil))
	if err != nil {
		t.Fatalf("handleGetPrediction failed: %v", err)
	}
	if !result.IsError {
		t.Error("expected a tool error without account_id")
	}
}

func TestHandleRefreshNow(t *testing.T) {
	s, _, _ := newTestMCPServer(t)

	result, err := s.handleRefreshNow(context.Background(), callToolRequest(nil))
	if err != nil {
		t.Fatalf("handleRefreshNow failed: %v", err)
	}
	if result.IsError {
		t.Errorf("expected clean refresh, got error result")
	}
}

func toolText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if len(result.Content) == 0 {
		t.Fatal("empty tool result")
	}
	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("expected TextContent, got %T", result.Content[0])
	}
	return text.Text
}
