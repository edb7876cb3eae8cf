package services

// Event types published after a mutation commits.
const (
	EventBoardCreated  = "board.created"
	EventBoardUpdated  = "board.updated"
	EventBoardDeleted  = "board.deleted"
	EventListCreated   = "list.created"
	EventListUpdated   = "list.updated"
	EventListReordered = "list.reordered"
	EventListDeleted   = "list.deleted"
	EventCardCreated   = "card.created"
	EventCardUpdated   = "card.updated"
	EventCardMoved     = "card.moved"
	EventCardDeleted   = "card.deleted"
	EventLabelCreated  = "label.created"
	EventLabelDeleted  = "label.deleted"
)

// Event tells subscribers of a board that committed state changed. It
// carries ids only; subscribers re-read what they need.
type Event struct {
	Type     string `json:"type"`
	BoardID  string `json:"boardId"`
	EntityID string `json:"entityId"`
	UserID   string `json:"userId,omitempty"`
}

// Publisher receives events after commit. Implementations must not block.
type Publisher interface {
	Publish(Event)
}
