package todoist

import (
	"context"
	"errors"
	"fmt"

	"github.com/connradolisboa/todoist-vault-sync/internal/vaultmodel"
)

// ErrRequestFailed wraps any non-retryable 4xx/unexpected response from
// the Todoist API; callers classify further with errors.Is/errors.As as
// needed.
var ErrRequestFailed = errors.New("todoist: request failed")

// syncResponse is the subset of the Sync API v9 "full sync" response
// this client cares about.
type syncResponse struct {
	Projects []rawProject `json:"projects"`
	Sections []rawSection `json:"sections"`
	Items    []rawItem    `json:"items"`
	User     *rawUser     `json:"user"`
}

type rawUser struct {
	ID string `json:"id"`
}

type rawProject struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	ParentID string `json:"parent_id"`
	IsDeleted bool  `json:"is_deleted"`
	IsArchived bool `json:"is_archived"`
}

type rawSection struct {
	ID         string `json:"id"`
	ProjectID  string `json:"project_id"`
	Name       string `json:"name"`
	IsDeleted  bool   `json:"is_deleted"`
	IsArchived bool   `json:"is_archived"`
}

type rawDue struct {
	Date      string `json:"date"`
	String    string `json:"string"`
	IsRecurring bool `json:"is_recurring"`
}

type rawItem struct {
	ID             string   `json:"id"`
	Content        string   `json:"content"`
	Description    string   `json:"description"`
	ProjectID      string   `json:"project_id"`
	SectionID      string   `json:"section_id"`
	ParentID       string   `json:"parent_id"`
	Priority       int      `json:"priority"`
	Due            *rawDue  `json:"due"`
	Labels         []string `json:"labels"`
	Checked        bool     `json:"checked"`
	IsDeleted      bool     `json:"is_deleted"`
	ResponsibleUID string   `json:"responsible_uid"`
	Deadline       *struct {
		Date string `json:"date"`
	} `json:"deadline"`
}

// FetchSnapshot performs a full Sync API read (resource_types covering
// items, projects, sections) and maps it onto vaultmodel's remote
// vocabulary.
func (c *Client) FetchSnapshot(ctx context.Context) (*vaultmodel.RemoteSnapshot, error) {
	url := c.syncBaseURL + "/sync?sync_token=*&resource_types=%5B%22items%22%2C%22projects%22%2C%22sections%22%2C%22user%22%5D"

	var resp syncResponse
	if err := c.doJSON(ctx, "GET", url, nil, &resp); err != nil {
		return nil, fmt.Errorf("todoist: fetch snapshot: %w", err)
	}

	snapshot := &vaultmodel.RemoteSnapshot{}

	if resp.User != nil {
		snapshot.UserID = resp.User.ID
	}

	for _, p := range resp.Projects {
		if p.IsDeleted {
			continue
		}

		snapshot.Projects = append(snapshot.Projects, vaultmodel.RemoteProject{
			ID:         p.ID,
			Name:       p.Name,
			ParentID:   p.ParentID,
			IsArchived: p.IsArchived,
		})
	}

	for _, s := range resp.Sections {
		if s.IsDeleted {
			continue
		}

		snapshot.Sections = append(snapshot.Sections, vaultmodel.RemoteSection{
			ID:         s.ID,
			ProjectID:  s.ProjectID,
			Name:       s.Name,
			IsArchived: s.IsArchived,
		})
	}

	for _, it := range resp.Items {
		if it.IsDeleted {
			continue
		}

		item := vaultmodel.RemoteItem{
			ID:             it.ID,
			Content:        it.Content,
			Description:    it.Description,
			ProjectID:      it.ProjectID,
			SectionID:      it.SectionID,
			ParentID:       it.ParentID,
			Priority:       it.Priority,
			Labels:         it.Labels,
			Checked:        it.Checked,
			ResponsibleUID: it.ResponsibleUID,
		}

		if it.Due != nil {
			item.Due = vaultmodel.Due{
				Date:        it.Due.Date,
				String:      it.Due.String,
				IsRecurring: it.Due.IsRecurring,
			}
		}

		if it.Deadline != nil {
			item.DeadlineDate = it.Deadline.Date
		}

		snapshot.Items = append(snapshot.Items, item)
	}

	return snapshot, nil
}

// FetchRecentlyDeletedIDs returns the set of item IDs Todoist's
// activity log reports as deleted, bounded to limit entries. No cursor is
// kept between calls; every call requests up to limit deleted-item events. Todoist's Sync API does not expose a
// dedicated "recently deleted" resource the way some APIs do, so this
// is implemented against the activity log's "deleted" event type,
// filtered to item events.
func (c *Client) FetchRecentlyDeletedIDs(ctx context.Context, limit int) (map[string]struct{}, error) {
	url := fmt.Sprintf(
		"%s/activity/get?event_type=deleted&object_type=item&limit=%d",
		c.syncBaseURL, limit,
	)

	var resp struct {
		Events []struct {
			ObjectID string `json:"object_id"`
		} `json:"events"`
	}

	if err := c.doJSON(ctx, "GET", url, nil, &resp); err != nil {
		return nil, fmt.Errorf("todoist: fetch recently deleted ids: %w", err)
	}

	out := make(map[string]struct{}, len(resp.Events))
	for _, e := range resp.Events {
		out[e.ObjectID] = struct{}{}
	}

	return out, nil
}
