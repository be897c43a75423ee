package todoist

import (
	"context"
	"fmt"

	"github.com/connradolisboa/todoist-vault-sync/internal/vaultmodel"
)

type createTaskRequest struct {
	Content     string   `json:"content"`
	Description string   `json:"description,omitempty"`
	ProjectID   string   `json:"project_id,omitempty"`
	SectionID   string   `json:"section_id,omitempty"`
	ParentID    string   `json:"parent_id,omitempty"`
	Priority    int      `json:"priority,omitempty"`
	Labels      []string `json:"labels,omitempty"`
	DueDate     string   `json:"due_date,omitempty"`
	DueString   string   `json:"due_string,omitempty"`
}

type taskResponse struct {
	ID string `json:"id"`
}

// CreateTask creates a new task via the REST API and returns its
// server-assigned ID, which the caller immediately records in the vault
// note's pending_remote_id field and then promotes to remote_task_id
// (§4.5's idempotency-mark sequence —
// the create must be confirmed in the vault before the pending-local-
// create mark is cleared).
func (c *Client) CreateTask(ctx context.Context, payload vaultmodel.TaskPayload) (string, error) {
	req := createTaskRequest{
		Content:     payload.Title,
		Description: payload.Description,
		ProjectID:   payload.ProjectID,
		SectionID:   payload.SectionID,
		ParentID:    payload.ParentID,
		Priority:    payload.Priority,
		Labels:      payload.Labels,
		DueDate:     payload.Due.Date,
		DueString:   payload.Due.String,
	}

	var resp taskResponse

	if err := c.doJSON(ctx, "POST", c.restBaseURL+"/tasks", req, &resp); err != nil {
		return "", fmt.Errorf("todoist: create task: %w", err)
	}

	return resp.ID, nil
}

// updateTaskRequest mirrors the REST API's partial-update body: only
// fields actually present are sent, matching TaskPatch's pointer-based
// nil-vs-clear semantics (§6) — a present-but-zero-value field clears
// that field remotely, while an absent field leaves it untouched.
type updateTaskRequest struct {
	Content     *string  `json:"content,omitempty"`
	Description *string  `json:"description,omitempty"`
	Priority    *int     `json:"priority,omitempty"`
	Labels      *[]string `json:"labels,omitempty"`
	DueString   *string  `json:"due_string,omitempty"`
}

// UpdateTask applies patch's non-nil fields to the remote task. Content
// fields go in one REST POST to the task; a project/section/parent move
// (through the Sync API, see moveTask) and the done flag are each sent
// as a separate call after it.
func (c *Client) UpdateTask(ctx context.Context, patch vaultmodel.TaskPatch) error {
	req := updateTaskRequest{
		Content:     patch.Title,
		Description: patch.Description,
		Priority:    patch.Priority,
		Labels:      patch.Labels,
	}

	if patch.Due != nil {
		req.DueString = &patch.Due.String
	}

	if hasContentUpdate(req) {
		if err := c.doJSON(ctx, "POST", c.restBaseURL+"/tasks/"+patch.ID, req, nil); err != nil {
			return fmt.Errorf("todoist: update task %s: %w", patch.ID, err)
		}
	}

	if patch.ProjectID != nil || patch.SectionID != nil || patch.ParentID != nil {
		if err := c.moveTask(ctx, patch); err != nil {
			return err
		}
	}

	if patch.IsDone != nil {
		if err := c.setDone(ctx, patch.ID, *patch.IsDone); err != nil {
			return err
		}
	}

	return nil
}

func hasContentUpdate(req updateTaskRequest) bool {
	return req.Content != nil || req.Description != nil || req.Priority != nil ||
		req.Labels != nil || req.DueString != nil
}

type moveTaskRequest struct {
	ProjectID string `json:"project_id,omitempty"`
	SectionID string `json:"section_id,omitempty"`
	ParentID  string `json:"parent_id,omitempty"`
}

// moveTask uses the Sync API's "item_move" command — the REST API has
// no endpoint for changing a task's project/section/parent, so this is
// the one call in this file that goes through the Sync endpoint rather
// than REST v2.
func (c *Client) moveTask(ctx context.Context, patch vaultmodel.TaskPatch) error {
	args := map[string]any{"id": patch.ID}

	if patch.ProjectID != nil {
		args["project_id"] = *patch.ProjectID
	}

	if patch.SectionID != nil {
		args["section_id"] = *patch.SectionID
	}

	if patch.ParentID != nil {
		args["parent_id"] = *patch.ParentID
	}

	return c.sendSyncCommand(ctx, "item_move", args)
}

func (c *Client) setDone(ctx context.Context, taskID string, done bool) error {
	endpoint := c.restBaseURL + "/tasks/" + taskID + "/close"
	if !done {
		endpoint = c.restBaseURL + "/tasks/" + taskID + "/reopen"
	}

	if err := c.doJSON(ctx, "POST", endpoint, nil, nil); err != nil {
		return fmt.Errorf("todoist: set task %s done=%v: %w", taskID, done, err)
	}

	return nil
}

type syncCommand struct {
	Type   string         `json:"type"`
	UUID   string         `json:"uuid"`
	Args   map[string]any `json:"args"`
}

// sendSyncCommand posts a single Sync API command. uuid is a per-call
// idempotency token Todoist uses to detect a retried command that
// already succeeded.
func (c *Client) sendSyncCommand(ctx context.Context, cmdType string, args map[string]any) error {
	cmd := syncCommand{Type: cmdType, UUID: syncCommandUUID(cmdType, args), Args: args}

	req := struct {
		Commands []syncCommand `json:"commands"`
	}{Commands: []syncCommand{cmd}}

	if err := c.doJSON(ctx, "POST", c.syncBaseURL+"/sync", req, nil); err != nil {
		return fmt.Errorf("todoist: sync command %s: %w", cmdType, err)
	}

	return nil
}
