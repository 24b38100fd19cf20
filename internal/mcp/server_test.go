package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/ldi/focusbloom/internal/db"
)

func TestServerInitialization(t *testing.T) {
	database, err := db.Open(":memory:")
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	defer database.Close()

	if err := database.Init(context.Background()); err != nil {
		t.Fatalf("Failed to initialize database: %v", err)
	}

	s := NewServer(database)
	stdio := server.NewStdioServer(s)

	r, w := io.Pipe()
	stdout := &bytes.Buffer{}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	errChan := make(chan error, 1)
	go func() {
		errChan <- stdio.Listen(ctx, r, stdout)
	}()

	// Send initialize request
	initReq := mcp.InitializeRequest{}
	initReq.Method = "initialize"
	initReq.Params.ProtocolVersion = mcp.LATEST_PROTOCOL_VERSION
	initReq.Params.ClientInfo = mcp.Implementation{
		Name:    "test-client",
		Version: "1.0.0",
	}

	rawReq := map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      1,
		"method":  "initialize",
		"params":  initReq.Params,
	}

	data, err := json.Marshal(rawReq)
	if err != nil {
		t.Fatalf("Failed to marshal request: %v", err)
	}
	w.Write(data)
	w.Write([]byte("\n"))

	// Give it a moment to process
	time.Sleep(200 * time.Millisecond)

	if stdout.Len() == 0 {
		t.Fatal("Expected response from server, got none")
	}

	var resp struct {
		JSONRPC string `json:"jsonrpc"`
		ID      int    `json:"id"`
		Result  struct {
			ProtocolVersion string `json:"protocolVersion"`
			ServerInfo      struct {
				Name    string `json:"name"`
				Version string `json:"version"`
			} `json:"serverInfo"`
		} `json:"result"`
	}

	if err := json.Unmarshal(stdout.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to unmarshal response: %v\nOutput: %s", err, stdout.String())
	}

	if resp.ID != 1 {
		t.Errorf("Expected id 1, got %v", resp.ID)
	}

	if resp.Result.ServerInfo.Name != "FocusBloom" {
		t.Errorf("Expected server name FocusBloom, got %v", resp.Result.ServerInfo.Name)
	}
}

func callTool(t *testing.T, ctx context.Context, s *server.MCPServer, name string, args map[string]interface{}) *mcp.CallToolResult {
	t.Helper()

	tool := s.GetTool(name)
	if tool == nil {
		t.Fatalf("Tool %s not found", name)
	}

	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args

	result, err := tool.Handler(ctx, req)
	if err != nil {
		t.Fatalf("Handler failed: %v", err)
	}
	return result
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if len(result.Content) == 0 {
		t.Fatal("Result has no content")
	}
	return result.Content[0].(mcp.TextContent).Text
}

func TestToolHandlers(t *testing.T) {
	database, err := db.Open(":memory:")
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	defer database.Close()

	ctx := context.Background()
	if err := database.Init(ctx); err != nil {
		t.Fatalf("Failed to initialize database: %v", err)
	}

	s := NewServer(database)

	t.Run("create_template", func(t *testing.T) {
		result := callTool(t, ctx, s, "create_template", map[string]interface{}{
			"name":           "morning-focus",
			"task_name":      "Morning focus block",
			"type":           "work",
			"start_time":     "08:30",
			"focus_sessions": 4.0,
		})
		if result.IsError {
			t.Fatalf("Tool returned error: %v", result.Content[0])
		}

		// Not visible until committed
		tpl, err := database.GetTemplateByName(ctx, "morning-focus")
		if err != nil {
			t.Fatalf("Failed to get template: %v", err)
		}
		if tpl != nil {
			t.Fatal("Template should not be persisted before commit")
		}

		result = callTool(t, ctx, s, "commit_staged_changes", map[string]interface{}{
			"session_id": "default",
		})
		if result.IsError {
			t.Fatalf("Commit returned error: %v", result.Content[0])
		}

		tpl, err = database.GetTemplateByName(ctx, "morning-focus")
		if err != nil {
			t.Fatalf("Failed to get template: %v", err)
		}
		if tpl == nil {
			t.Fatal("Template not found in DB after commit")
		}
		if tpl.FocusSessions != 4 {
			t.Errorf("Expected 4 focus sessions, got %d", tpl.FocusSessions)
		}
	})

	t.Run("create_template rejects bad start_time", func(t *testing.T) {
		result := callTool(t, ctx, s, "create_template", map[string]interface{}{
			"name":       "broken",
			"task_name":  "x",
			"start_time": "25:99",
		})
		if !result.IsError {
			t.Fatal("Expected error for invalid start_time")
		}
	})

	t.Run("list_templates", func(t *testing.T) {
		result := callTool(t, ctx, s, "list_templates", map[string]interface{}{})
		if result.IsError {
			t.Fatalf("Tool returned error: %v", result.Content[0])
		}

		var resp struct {
			Templates []interface{} `json:"templates"`
		}
		if err := json.Unmarshal([]byte(resultText(t, result)), &resp); err != nil {
			t.Fatalf("Failed to unmarshal response: %v", err)
		}
		if len(resp.Templates) != 1 {
			t.Errorf("Expected 1 template, got %d", len(resp.Templates))
		}
	})

	t.Run("create_task linked to template", func(t *testing.T) {
		result := callTool(t, ctx, s, "create_task", map[string]interface{}{
			"name":           "Write report",
			"template_name":  "morning-focus",
			"type":           "work",
			"start":          "2026-04-02T09:00:00Z",
			"focus_sessions": 5.0,
		})
		if result.IsError {
			t.Fatalf("Tool returned error: %v", result.Content[0])
		}

		callTool(t, ctx, s, "commit_staged_changes", map[string]interface{}{
			"session_id": "default",
		})

		tasks, err := database.ListTasks(ctx, nil, nil)
		if err != nil {
			t.Fatalf("ListTasks failed: %v", err)
		}
		found := false
		for _, task := range tasks {
			if task.Name == "Write report" {
				found = true
				if task.TemplateID == nil {
					t.Error("Expected task linked to template")
				}
				// 5 sessions with defaults end 155 minutes after start
				want := time.Date(2026, 4, 2, 11, 35, 0, 0, time.UTC)
				if !task.End.Equal(want) {
					t.Errorf("Expected end %v, got %v", want, task.End)
				}
				break
			}
		}
		if !found {
			t.Fatal("Task not found in DB")
		}
	})

	t.Run("apply_template", func(t *testing.T) {
		result := callTool(t, ctx, s, "apply_template", map[string]interface{}{
			"template_name": "morning-focus",
			"date":          "2026-04-03",
		})
		if result.IsError {
			t.Fatalf("Tool returned error: %v", result.Content[0])
		}

		var task struct {
			Start time.Time `json:"start"`
			End   time.Time `json:"end"`
		}
		if err := json.Unmarshal([]byte(resultText(t, result)), &task); err != nil {
			t.Fatalf("Failed to unmarshal task: %v", err)
		}
		// 4 sessions from 08:30 end 115 minutes later
		if got := task.End.Sub(task.Start); got != 115*time.Minute {
			t.Errorf("Expected 115 minute span, got %v", got)
		}
	})

	t.Run("compute_end_time", func(t *testing.T) {
		result := callTool(t, ctx, s, "compute_end_time", map[string]interface{}{
			"start":          "2026-04-02T09:00:00Z",
			"focus_sessions": 5.0,
		})
		if result.IsError {
			t.Fatalf("Tool returned error: %v", result.Content[0])
		}

		var resp struct {
			End          time.Time `json:"end"`
			TotalMinutes int       `json:"total_minutes"`
		}
		if err := json.Unmarshal([]byte(resultText(t, result)), &resp); err != nil {
			t.Fatalf("Failed to unmarshal response: %v", err)
		}
		if resp.TotalMinutes != 155 {
			t.Errorf("Expected 155 total minutes, got %d", resp.TotalMinutes)
		}
		want := time.Date(2026, 4, 2, 11, 35, 0, 0, time.UTC)
		if !resp.End.Equal(want) {
			t.Errorf("Expected end %v, got %v", want, resp.End)
		}
	})

	t.Run("update_task_status", func(t *testing.T) {
		tasks, _ := database.ListTasks(ctx, nil, nil)
		if len(tasks) == 0 {
			t.Fatal("Expected at least one task")
		}

		result := callTool(t, ctx, s, "update_task_status", map[string]interface{}{
			"id":     tasks[0].ID,
			"status": "in_progress",
		})
		if result.IsError {
			t.Fatalf("Tool returned error: %v", result.Content[0])
		}

		updated, _ := database.GetTask(ctx, tasks[0].ID)
		if updated.Status != "in_progress" {
			t.Errorf("Expected status in_progress, got %s", updated.Status)
		}
	})

	t.Run("session config roundtrip", func(t *testing.T) {
		result := callTool(t, ctx, s, "set_session_config", map[string]interface{}{
			"session_minutes":     50.0,
			"short_break_minutes": 10.0,
			"long_break_minutes":  20.0,
		})
		if result.IsError {
			t.Fatalf("Tool returned error: %v", result.Content[0])
		}

		result = callTool(t, ctx, s, "get_session_config", map[string]interface{}{})
		if !strings.Contains(resultText(t, result), "50") {
			t.Errorf("Expected config to contain session minutes 50, got %s", resultText(t, result))
		}
	})

	t.Run("set_session_config rejects zero", func(t *testing.T) {
		result := callTool(t, ctx, s, "set_session_config", map[string]interface{}{
			"session_minutes":     0.0,
			"short_break_minutes": 10.0,
			"long_break_minutes":  20.0,
		})
		if !result.IsError {
			t.Fatal("Expected error for zero session minutes")
		}
	})

	t.Run("list_staged_changes", func(t *testing.T) {
		callTool(t, ctx, s, "create_template", map[string]interface{}{
			"name":       "staged-only",
			"task_name":  "Staged",
			"start_time": "14:00",
			"session_id": "review",
		})

		result := callTool(t, ctx, s, "list_staged_changes", map[string]interface{}{
			"session_id": "review",
		})
		if result.IsError {
			t.Fatalf("Tool returned error: %v", result.Content[0])
		}

		var resp struct {
			Templates []interface{} `json:"templates"`
			Tasks     []interface{} `json:"tasks"`
		}
		if err := json.Unmarshal([]byte(resultText(t, result)), &resp); err != nil {
			t.Fatalf("Failed to unmarshal response: %v", err)
		}
		if len(resp.Templates) != 1 {
			t.Errorf("Expected 1 staged template, got %d", len(resp.Templates))
		}
	})

	t.Run("delete_template", func(t *testing.T) {
		result := callTool(t, ctx, s, "delete_template", map[string]interface{}{
			"name": "morning-focus",
		})
		if result.IsError {
			t.Fatalf("Tool returned error: %v", result.Content[0])
		}

		tpl, _ := database.GetTemplateByName(ctx, "morning-focus")
		if tpl != nil {
			t.Error("Template still present after delete")
		}
	})

	t.Run("delete_template missing", func(t *testing.T) {
		result := callTool(t, ctx, s, "delete_template", map[string]interface{}{
			"name": "no-such-template",
		})
		if !result.IsError {
			t.Fatal("Expected error for missing template")
		}
	})
}
