package database

import "time"

// Visibility controls who may see a board. Policy is enforced elsewhere;
// the store only keeps the value.
type Visibility string

const (
	VisibilityPrivate   Visibility = "private"
	VisibilityWorkspace Visibility = "workspace"
	VisibilityPublic    Visibility = "public"
)

type Board struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	Visibility    Visibility `json:"visibility"`
	BackgroundURL *string    `json:"backgroundUrl,omitempty"`
	WorkspaceID   *string    `json:"workspaceId,omitempty"`
	CreatedBy     string     `json:"createdBy"`
	CreatedAt     time.Time  `json:"createdAt"`
}

type List struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	BoardID   string    `json:"boardId"`
	Index     int       `json:"index"`
	CreatedAt time.Time `json:"createdAt"`
}

type Card struct {
	ID               string     `json:"id"`
	Title            string     `json:"title"`
	Description      *string    `json:"description,omitempty"`
	ListID           string     `json:"listId"`
	Index            int        `json:"index"`
	CreatedBy        string     `json:"createdBy"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
	DueDate          *time.Time `json:"dueDate,omitempty"`
	DueDateCompleted bool       `json:"dueDateCompleted"`
	StartDate        *time.Time `json:"startDate,omitempty"`
	EndDate          *time.Time `json:"endDate,omitempty"`
	DependsOn        []string   `json:"dependsOn"`
	LabelIDs         []string   `json:"labelIds"`
	AssigneeIDs      []string   `json:"assigneeIds"`
}

// CardPatch carries the mutable card fields. Nil means "leave unchanged".
type CardPatch struct {
	Title            *string    `json:"title,omitempty"`
	Description      *string    `json:"description,omitempty"`
	DueDate          *time.Time `json:"dueDate,omitempty"`
	DueDateCompleted *bool      `json:"dueDateCompleted,omitempty"`
	StartDate        *time.Time `json:"startDate,omitempty"`
	EndDate          *time.Time `json:"endDate,omitempty"`
	DependsOn        *[]string  `json:"dependsOn,omitempty"`
	LabelIDs         *[]string  `json:"labelIds,omitempty"`
	AssigneeIDs      *[]string  `json:"assigneeIds,omitempty"`
}

// Fields returns the json names of the fields set on the patch, in a
// stable order.
func (p CardPatch) Fields() []string {
	fields := make([]string, 0, 9)
	if p.AssigneeIDs != nil {
		fields = append(fields, "assigneeIds")
	}
	if p.DependsOn != nil {
		fields = append(fields, "dependsOn")
	}
	if p.Description != nil {
		fields = append(fields, "description")
	}
	if p.DueDate != nil {
		fields = append(fields, "dueDate")
	}
	if p.DueDateCompleted != nil {
		fields = append(fields, "dueDateCompleted")
	}
	if p.EndDate != nil {
		fields = append(fields, "endDate")
	}
	if p.LabelIDs != nil {
		fields = append(fields, "labelIds")
	}
	if p.StartDate != nil {
		fields = append(fields, "startDate")
	}
	if p.Title != nil {
		fields = append(fields, "title")
	}
	return fields
}

type Label struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	ColorCode string `json:"colorCode"`
	BoardID   string `json:"boardId"`
}

type Checklist struct {
	ID     string          `json:"id"`
	Name   string          `json:"name"`
	CardID string          `json:"cardId"`
	Order  int             `json:"order"`
	Items  []ChecklistItem `json:"items"`
}

type ChecklistItem struct {
	ID          string `json:"id"`
	Content     string `json:"content"`
	ChecklistID string `json:"checklistId"`
	Completed   bool   `json:"completed"`
	Order       int    `json:"order"`
}

type Activity struct {
	ID        string         `json:"id"`
	CardID    string         `json:"cardId"`
	UserID    string         `json:"userId"`
	Action    string         `json:"action"`
	Details   map[string]any `json:"details,omitempty"`
	CreatedAt time.Time      `json:"createdAt"`
}
