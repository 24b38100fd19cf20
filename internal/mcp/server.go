package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/ldi/focusbloom/internal/db"
	"github.com/ldi/focusbloom/internal/schedule"
	"github.com/ldi/focusbloom/pkg/models"
)

// NewServer creates a new MCP server.
func NewServer(database *db.DB) *server.MCPServer {
	s := server.NewMCPServer("FocusBloom", "0.1.0")

	// Template Management
	s.AddTool(mcp.NewTool("create_template",
		mcp.WithDescription("Propose a new task template. Changes are staged and must be committed to take effect."),
		mcp.WithString("name", mcp.Description("Template name (unique)"), mcp.Required()),
		mcp.WithString("task_name", mcp.Description("Name of tasks created from this template"), mcp.Required()),
		mcp.WithString("task_description", mcp.Description("Task description")),
		mcp.WithString("type", mcp.Description("Task type (work|study|personal|health|other)")),
		mcp.WithString("start_time", mcp.Description("Wall-clock start time HH:MM"), mcp.Required()),
		mcp.WithNumber("focus_sessions", mcp.Description("Number of focus sessions (non-negative)")),
		mcp.WithString("session_id", mcp.Description("Session ID for staging changes (defaults to 'default').")),
	), createTemplateHandler(database))

	s.AddTool(mcp.NewTool("update_template",
		mcp.WithDescription("Update an existing template."),
		mcp.WithString("name", mcp.Description("Template name"), mcp.Required()),
		mcp.WithString("new_name", mcp.Description("New name")),
		mcp.WithString("task_name", mcp.Description("New task name")),
		mcp.WithString("task_description", mcp.Description("New task description")),
		mcp.WithString("type", mcp.Description("New task type")),
		mcp.WithString("start_time", mcp.Description("New start time HH:MM")),
		mcp.WithNumber("focus_sessions", mcp.Description("New focus session count")),
	), updateTemplateHandler(database))

	s.AddTool(mcp.NewTool("delete_template",
		mcp.WithDescription("Delete a template. Tasks created from it are kept."),
		mcp.WithString("name", mcp.Description("Template name"), mcp.Required()),
	), deleteTemplateHandler(database))

	s.AddTool(mcp.NewTool("list_templates",
		mcp.WithDescription("List all task templates."),
	), listTemplatesHandler(database))

	s.AddTool(mcp.NewTool("get_template",
		mcp.WithDescription("Get a single template by name."),
		mcp.WithString("name", mcp.Description("Template name"), mcp.Required()),
	), getTemplateHandler(database))

	// Task Management
	s.AddTool(mcp.NewTool("apply_template",
		mcp.WithDescription("Create a scheduled task from a template on a given day."),
		mcp.WithString("template_name", mcp.Description("Template name"), mcp.Required()),
		mcp.WithString("date", mcp.Description("Calendar day YYYY-MM-DD (defaults to today)")),
	), applyTemplateHandler(database))

	s.AddTool(mcp.NewTool("create_task",
		mcp.WithDescription("Propose a new scheduled task. Changes are staged and must be committed to take effect."),
		mcp.WithString("name", mcp.Description("Task name"), mcp.Required()),
		mcp.WithString("description", mcp.Description("Task description")),
		mcp.WithString("type", mcp.Description("Task type (work|study|personal|health|other)")),
		mcp.WithString("start", mcp.Description("Start date-time RFC3339"), mcp.Required()),
		mcp.WithNumber("focus_sessions", mcp.Description("Number of focus sessions (non-negative)")),
		mcp.WithString("template_name", mcp.Description("Optional template to link the task to")),
		mcp.WithString("session_id", mcp.Description("Session ID for staging changes (defaults to 'default').")),
	), createTaskHandler(database))

	s.AddTool(mcp.NewTool("list_tasks",
		mcp.WithDescription("List tasks with optional filters."),
		mcp.WithString("status", mcp.Description("Filter by status (pending|in_progress|completed|cancelled)")),
		mcp.WithString("template_name", mcp.Description("Filter by template name")),
	), listTasksHandler(database))

	s.AddTool(mcp.NewTool("update_task_status",
		mcp.WithDescription("Move a task through its lifecycle."),
		mcp.WithString("id", mcp.Description("Task ID"), mcp.Required()),
		mcp.WithString("status", mcp.Description("New status (pending|in_progress|completed|cancelled)"), mcp.Required()),
	), updateTaskStatusHandler(database))

	s.AddTool(mcp.NewTool("delete_task",
		mcp.WithDescription("Delete a task."),
		mcp.WithString("id", mcp.Description("Task ID"), mcp.Required()),
	), deleteTaskHandler(database))

	// Scheduling
	s.AddTool(mcp.NewTool("compute_end_time",
		mcp.WithDescription("Compute when a block of focus sessions ends, using the configured durations."),
		mcp.WithString("start", mcp.Description("Start date-time RFC3339"), mcp.Required()),
		mcp.WithNumber("focus_sessions", mcp.Description("Number of focus sessions (non-negative)"), mcp.Required()),
	), computeEndTimeHandler(database))

	s.AddTool(mcp.NewTool("get_session_config",
		mcp.WithDescription("Get the configured session and break durations."),
	), getSessionConfigHandler(database))

	s.AddTool(mcp.NewTool("set_session_config",
		mcp.WithDescription("Set the session and break durations (minutes, positive)."),
		mcp.WithNumber("session_minutes", mcp.Description("Focus session length"), mcp.Required()),
		mcp.WithNumber("short_break_minutes", mcp.Description("Short break length"), mcp.Required()),
		mcp.WithNumber("long_break_minutes", mcp.Description("Long break length"), mcp.Required()),
	), setSessionConfigHandler(database))

	// Staging
	s.AddTool(mcp.NewTool("commit_staged_changes",
		mcp.WithDescription("Commit all staged templates and tasks for a session in one transaction."),
		mcp.WithString("session_id", mcp.Description("Session ID (defaults to 'default').")),
	), commitStagedChangesHandler(database))

	s.AddTool(mcp.NewTool("list_staged_changes",
		mcp.WithDescription("List all staged changes for a session. Use this to review a proposed plan before committing."),
		mcp.WithString("session_id", mcp.Description("Session ID (defaults to 'default').")),
	), listStagedChangesHandler(database))

	return s
}

// Serve starts the MCP server on stdio.
func Serve(s *server.MCPServer) error {
	return server.ServeStdio(s)
}

func createTemplateHandler(database *db.DB) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		name := mcp.ParseString(request, "name", "")
		sessionID := mcp.ParseString(request, "session_id", "default")

		taskType := models.TaskType(mcp.ParseString(request, "type", string(models.TaskTypeOther)))
		if !taskType.Valid() {
			return mcp.NewToolResultError(fmt.Sprintf("Unknown task type '%s'", taskType)), nil
		}

		startTime := mcp.ParseString(request, "start_time", "")
		if _, err := time.Parse("15:04", startTime); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Invalid start_time '%s', expected HH:MM", startTime)), nil
		}

		focusSessions := mcp.ParseInt(request, "focus_sessions", 0)
		if focusSessions < 0 {
			return mcp.NewToolResultError("focus_sessions must be non-negative"), nil
		}

		t := &models.TaskTemplate{
			Name:            name,
			TaskName:        mcp.ParseString(request, "task_name", ""),
			TaskDescription: mcp.ParseString(request, "task_description", ""),
			Type:            taskType,
			StartTime:       startTime,
			FocusSessions:   focusSessions,
		}

		database.Staging.AddTemplate(sessionID, t)
		return mcp.NewToolResultText(fmt.Sprintf("Template '%s' staged for session '%s'. Propose another or call 'commit_staged_changes' to apply.", name, sessionID)), nil
	}
}

func updateTemplateHandler(database *db.DB) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		name := mcp.ParseString(request, "name", "")

		t, err := database.GetTemplateByName(ctx, name)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if t == nil {
			return mcp.NewToolResultError(fmt.Sprintf("Template with name '%s' not found", name)), nil
		}

		args, _ := request.Params.Arguments.(map[string]any)
		if newName, ok := args["new_name"].(string); ok {
			t.Name = newName
		}
		if taskName, ok := args["task_name"].(string); ok {
			t.TaskName = taskName
		}
		if taskDescription, ok := args["task_description"].(string); ok {
			t.TaskDescription = taskDescription
		}
		if taskType, ok := args["type"].(string); ok {
			tt := models.TaskType(taskType)
			if !tt.Valid() {
				return mcp.NewToolResultError(fmt.Sprintf("Unknown task type '%s'", taskType)), nil
			}
			t.Type = tt
			t.Color = tt.Color()
		}
		if startTime, ok := args["start_time"].(string); ok {
			if _, err := time.Parse("15:04", startTime); err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("Invalid start_time '%s', expected HH:MM", startTime)), nil
			}
			t.StartTime = startTime
		}
		if focusSessions, ok := args["focus_sessions"].(float64); ok {
			if focusSessions < 0 {
				return mcp.NewToolResultError("focus_sessions must be non-negative"), nil
			}
			t.FocusSessions = int(focusSessions)
		}

		if err := database.UpdateTemplate(ctx, t); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		return mcp.NewToolResultText("Template updated successfully"), nil
	}
}

func deleteTemplateHandler(database *db.DB) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		name := mcp.ParseString(request, "name", "")

		t, err := database.GetTemplateByName(ctx, name)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if t == nil {
			return mcp.NewToolResultError(fmt.Sprintf("Template with name '%s' not found", name)), nil
		}

		if err := database.DeleteTemplate(ctx, t.ID); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		return mcp.NewToolResultText("Template deleted successfully"), nil
	}
}

func listTemplatesHandler(database *db.DB) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		templates, err := database.ListTemplates(ctx)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		data, err := json.Marshal(map[string]interface{}{"templates": templates})
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		return mcp.NewToolResultText(string(data)), nil
	}
}

func getTemplateHandler(database *db.DB) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		name := mcp.ParseString(request, "name", "")

		t, err := database.GetTemplateByName(ctx, name)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if t == nil {
			return mcp.NewToolResultError(fmt.Sprintf("Template with name '%s' not found", name)), nil
		}

		data, err := json.Marshal(t)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		return mcp.NewToolResultText(string(data)), nil
	}
}

func applyTemplateHandler(database *db.DB) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		templateName := mcp.ParseString(request, "template_name", "")

		day := time.Now()
		if date := mcp.ParseString(request, "date", ""); date != "" {
			parsed, err := time.ParseInLocation("2006-01-02", date, time.Local)
			if err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("Invalid date '%s', expected YYYY-MM-DD", date)), nil
			}
			day = parsed
		}

		task, err := database.ApplyTemplate(ctx, templateName, day)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		data, err := json.Marshal(task)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		return mcp.NewToolResultText(string(data)), nil
	}
}

func createTaskHandler(database *db.DB) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		name := mcp.ParseString(request, "name", "")
		sessionID := mcp.ParseString(request, "session_id", "default")

		taskType := models.TaskType(mcp.ParseString(request, "type", string(models.TaskTypeOther)))
		if !taskType.Valid() {
			return mcp.NewToolResultError(fmt.Sprintf("Unknown task type '%s'", taskType)), nil
		}

		start, err := time.Parse(time.RFC3339, mcp.ParseString(request, "start", ""))
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Invalid start: %v", err)), nil
		}

		focusSessions := mcp.ParseInt(request, "focus_sessions", 0)
		if focusSessions < 0 {
			return mcp.NewToolResultError("focus_sessions must be non-negative"), nil
		}

		t := &models.Task{
			TemplateName:  mcp.ParseString(request, "template_name", ""), // Store name for staging resolution
			Name:          name,
			Description:   mcp.ParseString(request, "description", ""),
			Type:          taskType,
			Start:         start,
			FocusSessions: focusSessions,
			Status:        models.TaskStatusPending,
		}

		database.Staging.AddTask(sessionID, t)
		return mcp.NewToolResultText(fmt.Sprintf("Task '%s' staged for session '%s'. Propose another or call 'commit_staged_changes' to apply.", name, sessionID)), nil
	}
}

func listTasksHandler(database *db.DB) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var status *models.TaskStatus
		if v := mcp.ParseString(request, "status", ""); v != "" {
			st := models.TaskStatus(v)
			status = &st
		}

		var templateName *string
		if v := mcp.ParseString(request, "template_name", ""); v != "" {
			templateName = &v
		}

		tasks, err := database.ListTasks(ctx, status, templateName)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		data, err := json.Marshal(map[string]interface{}{"tasks": tasks})
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		return mcp.NewToolResultText(string(data)), nil
	}
}

func updateTaskStatusHandler(database *db.DB) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id := mcp.ParseString(request, "id", "")
		status := models.TaskStatus(mcp.ParseString(request, "status", ""))

		if err := database.UpdateTaskStatus(ctx, id, status); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		return mcp.NewToolResultText("Task status updated successfully"), nil
	}
}

func deleteTaskHandler(database *db.DB) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id := mcp.ParseString(request, "id", "")

		if err := database.DeleteTask(ctx, id); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		return mcp.NewToolResultText("Task deleted successfully"), nil
	}
}

func computeEndTimeHandler(database *db.DB) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		start, err := time.Parse(time.RFC3339, mcp.ParseString(request, "start", ""))
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Invalid start: %v", err)), nil
		}

		focusSessions := mcp.ParseInt(request, "focus_sessions", 0)
		if focusSessions < 0 {
			return mcp.NewToolResultError("focus_sessions must be non-negative"), nil
		}

		cfg, err := database.GetSessionConfig(ctx)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		data, err := json.Marshal(map[string]interface{}{
			"start":         start,
			"end":           schedule.EndTime(start, focusSessions, cfg),
			"total_minutes": schedule.TotalMinutes(focusSessions, cfg),
		})
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		return mcp.NewToolResultText(string(data)), nil
	}
}

func getSessionConfigHandler(database *db.DB) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		cfg, err := database.GetSessionConfig(ctx)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		data, err := json.Marshal(cfg)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		return mcp.NewToolResultText(string(data)), nil
	}
}

func setSessionConfigHandler(database *db.DB) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		cfg := models.SessionConfig{
			SessionMinutes:    mcp.ParseInt(request, "session_minutes", 0),
			ShortBreakMinutes: mcp.ParseInt(request, "short_break_minutes", 0),
			LongBreakMinutes:  mcp.ParseInt(request, "long_break_minutes", 0),
		}

		if err := database.SaveSessionConfig(ctx, cfg); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		return mcp.NewToolResultText("Session config updated successfully"), nil
	}
}

func commitStagedChangesHandler(database *db.DB) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		sessionID := mcp.ParseString(request, "session_id", "default")

		if err := database.CommitBatch(ctx, sessionID); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		return mcp.NewToolResultText(fmt.Sprintf("Staged changes for session '%s' committed successfully", sessionID)), nil
	}
}

func listStagedChangesHandler(database *db.DB) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		sessionID := mcp.ParseString(request, "session_id", "default")

		items := database.Staging.Peek(sessionID)
		data, err := json.Marshal(map[string]interface{}{
			"templates": items.Templates,
			"tasks":     items.Tasks,
		})
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		return mcp.NewToolResultText(string(data)), nil
	}
}
