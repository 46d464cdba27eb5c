// Package mcp adapts the quota monitor to the Model Context Protocol so
// agents can inspect remaining quotas and depletion estimates.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/quotawatch/quotawatch/pkg/monitor"
	"github.com/quotawatch/quotawatch/pkg/scheduler"
)

// Server adapts the monitor to MCP over stdio.
type Server struct {
	mcpServer *server.MCPServer
	board     *monitor.StatusBoard
	mon       *monitor.Monitor
	sched     *scheduler.Scheduler
}

// NewServer creates a new MCP server instance over the running monitor.
func NewServer(board *monitor.StatusBoard, mon *monitor.Monitor, sched *scheduler.Scheduler) *Server {
	s := &Server{
		mcpServer: server.NewMCPServer(
			"quotawatch",
			"1.0.0",
		),
		board: board,
		mon:   mon,
		sched: sched,
	}
	s.registerResources()
	s.registerTools()
	return s
}

// Serve starts the MCP server on stdio.
func (s *Server) Serve() error {
	return server.ServeStdio(s.mcpServer)
}

func (s *Server) registerResources() {
	// quotawatch://status
	s.mcpServer.AddResource(mcp.NewResource(
		"quotawatch://status",
		"Account Quota Status",
		mcp.WithResourceDescription("Latest fetch result and depletion prediction per account"),
		mcp.WithMIMEType("application/json"),
	), s.handleReadStatus)
}

func (s *Server) registerTools() {
	// get_prediction
	s.mcpServer.AddTool(mcp.NewTool(
		"get_prediction",
		mcp.WithDescription("Return the depletion prediction for one account, recomputed from its current history."),
		mcp.WithString("account_id", mcp.Required(), mcp.Description("The account to predict for")),
	), s.handleGetPrediction)

	// refresh_now
	s.mcpServer.AddTool(mcp.NewTool(
		"refresh_now",
		mcp.WithDescription("Trigger one refresh cycle across all active accounts, outside the timer schedule."),
	), s.handleRefreshNow)
}

func (s *Server) handleReadStatus(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	data, err := json.MarshalIndent(s.board.All(), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal status: %w", err)
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      request.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

func (s *Server) handleGetPrediction(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	accountID := mcp.ParseString(request, "account_id", "")
	if accountID == "" {
		return mcp.NewToolResultError("account_id is required"), nil
	}

	p := s.mon.Predict(accountID)
	if !p.Available {
		return mcp.NewToolResultText(fmt.Sprintf("No prediction available for %s: insufficient history or usage not decreasing.", accountID)), nil
	}

	msg := fmt.Sprintf("Account %s burns %.2f per day; depletion in %.1f days (around %s).",
		accountID, p.DailyUsageRate, p.DaysUntilDepletion,
		p.EstimatedDepletionDate.Format(time.RFC3339))
	return mcp.NewToolResultText(msg), nil
}

func (s *Server) handleRefreshNow(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if err := s.sched.Trigger(); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("refresh failed: %v", err)), nil
	}
	return mcp.NewToolResultText("Refresh completed."), nil
}
