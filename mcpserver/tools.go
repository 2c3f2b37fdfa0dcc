package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/xiaoyuanzhu-com/tasktree/tasks"
	"github.com/xiaoyuanzhu-com/tasktree/workinfo"
)

// taskItemSchema describes one element of update_tasks' tasks array
var taskItemSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"id": map[string]any{
			"type":        "string",
			"description": "Task id. Omit to create a task with a generated id; reuse an existing id to update that task in place",
		},
		"description": map[string]any{
			"type":        "string",
			"description": "What the task is",
		},
		"status": map[string]any{
			"type":        "string",
			"enum":        []string{"TODO", "DONE"},
			"description": "Defaults to TODO for new tasks and is left unchanged for existing ones",
		},
		"children": map[string]any{
			"type":        "array",
			"items":       map[string]any{"type": "object"},
			"description": "Omit to keep existing subtasks, pass [] to remove them all",
		},
	},
	"required": []string{"description"},
}

func (s *Server) registerTools() {
	s.mcp.AddTool(mcp.NewTool("update_tasks",
		mcp.WithDescription("Replace the task list at a path in the session's task tree. Tasks whose ids already exist keep their subtasks unless children is given"),
		mcp.WithString("sessionId", mcp.Required(), mcp.Description("Session the task tree belongs to")),
		mcp.WithString("path", mcp.Description("Slash-separated task ids naming the parent whose children are replaced. Empty or / means the root level")),
		mcp.WithArray("tasks", mcp.Required(), mcp.Description("New task list for that level"), mcp.Items(taskItemSchema)),
	), s.updateTasks)

	s.mcp.AddTool(mcp.NewTool("mark_task_done",
		mcp.WithDescription("Mark a single task as DONE. Its subtasks are not changed"),
		mcp.WithString("sessionId", mcp.Required(), mcp.Description("Session the task tree belongs to")),
		mcp.WithString("taskId", mcp.Required(), mcp.Description("Id of the task to complete")),
	), s.markTaskDone)

	s.mcp.AddTool(mcp.NewTool("get_all_tasks",
		mcp.WithDescription("Show the whole task tree for a session"),
		mcp.WithString("sessionId", mcp.Required(), mcp.Description("Session the task tree belongs to")),
	), s.getAllTasks)

	s.mcp.AddTool(mcp.NewTool("save_work_info",
		mcp.WithDescription("Save a short summary of the current work so another agent can pick it up. Saving again from the same session overwrites the previous entry"),
		mcp.WithString("description", mcp.Required(), mcp.Description(fmt.Sprintf("One-line description, at most %d characters", workinfo.MaxDescriptionLength))),
		mcp.WithString("summary", mcp.Required(), mcp.Description("Summary of the work done so far")),
		mcp.WithString("sessionId", mcp.Description("Session whose task tree is attached as a snapshot")),
	), s.saveWorkInfo)

	s.mcp.AddTool(mcp.NewTool("get_recent_works",
		mcp.WithDescription("List saved work entries, most recently used first"),
	), s.getRecentWorks)

	s.mcp.AddTool(mcp.NewTool("get_work_by_id",
		mcp.WithDescription("Get a saved work entry including its task snapshot"),
		mcp.WithString("workId", mcp.Required(), mcp.Description("8-digit work id")),
	), s.getWorkByID)
}

type updateTasksArgs struct {
	SessionID string            `json:"sessionId"`
	Path      string            `json:"path"`
	Tasks     []tasks.NodeInput `json:"tasks"`
}

// saveWorkOutput is what save_work_info reports back to the agent
type saveWorkOutput struct {
	WorkID      string `json:"workId"`
	Timestamp   string `json:"timestamp"`
	Overwritten bool   `json:"overwritten"`
	Warning     string `json:"warning,omitempty"`
}

func (s *Server) updateTasks(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args updateTasksArgs
	if err := req.BindArguments(&args); err != nil {
		return mcp.NewToolResultError("invalid arguments: " + err.Error()), nil
	}
	if args.Tasks == nil {
		return mcp.NewToolResultError((&tasks.ValidationError{Field: "tasks", Message: "is required"}).Error()), nil
	}

	roots, err := s.core.UpdateTasks(args.SessionID, args.Path, args.Tasks)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText("Tasks updated.\n\n" + tasks.Render(roots)), nil
}

func (s *Server) markTaskDone(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	taskID := req.GetString("taskId", "")

	roots, err := s.core.MarkTaskDone(req.GetString("sessionId", ""), taskID)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Task %s marked as done.\n\n%s", taskID, tasks.Render(roots))), nil
}

func (s *Server) getAllTasks(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	roots, err := s.core.GetAllTasks(req.GetString("sessionId", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(tasks.Render(roots)), nil
}

func (s *Server) saveWorkInfo(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	res, err := s.core.SaveWorkInfo(
		req.GetString("description", ""),
		req.GetString("summary", ""),
		req.GetString("sessionId", ""),
	)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	out := saveWorkOutput{
		WorkID:      res.WorkID,
		Timestamp:   res.Timestamp,
		Overwritten: res.Overwritten,
	}
	if res.Warning != nil {
		out.Warning = res.Warning.Error()
	}
	return jsonResult(out)
}

func (s *Server) getRecentWorks(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(s.core.GetRecentWorks())
}

func (s *Server) getWorkByID(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	w, err := s.core.GetWorkByID(req.GetString("workId", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(w)
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal tool result: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}
