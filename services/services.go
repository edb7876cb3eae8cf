package services

import (
	"log/slog"
	"sort"
	"strings"

	"github.com/CrowderSoup/kanban/database"
)

// Services bundles the board engine's managers over one store.
type Services struct {
	Boards     *BoardService
	Lists      *ListService
	Cards      *CardService
	Labels     *LabelService
	Checklists *ChecklistService
	Activities *ActivityService
}

// New wires every manager to store. publisher may be nil.
func New(store *database.Store, logger *slog.Logger, publisher Publisher) *Services {
	if logger == nil {
		logger = slog.Default()
	}
	b := base{store: store, logger: logger, publisher: publisher}
	activities := &ActivityService{base: b}
	return &Services{
		Boards:     &BoardService{base: b},
		Lists:      &ListService{base: b},
		Cards:      &CardService{base: b, activities: activities},
		Labels:     &LabelService{base: b},
		Checklists: &ChecklistService{base: b},
		Activities: activities,
	}
}

type base struct {
	store     *database.Store
	logger    *slog.Logger
	publisher Publisher
}

func (b base) publish(e Event) {
	if b.publisher == nil {
		return
	}
	b.publisher.Publish(e)
}

// normalizeIDs trims, drops empties and duplicates, and sorts an id set.
func normalizeIDs(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, v := range in {
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			continue
		}
		if _, ok := seen[trimmed]; ok {
			continue
		}
		seen[trimmed] = struct{}{}
		out = append(out, trimmed)
	}
	sort.Strings(out)
	return out
}
