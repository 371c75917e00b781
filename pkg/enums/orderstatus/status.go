package orderstatus

import "strings"

type Status struct {
	Name  string
	Emoji string
	Title string
}

func (s Status) Code() string {
	return s.Name
}

// Label is the line shown in the order history, e.g. "✅ Готов".
func (s Status) Label() string {
	if s.Title == "" {
		return strings.ToUpper(s.Name[:1]) + s.Name[1:]
	}
	return s.Emoji + " " + s.Title
}

// Final reports whether the order can no longer change.
func (s Status) Final() bool {
	return s.Name == Statuses.Completed.Name || s.Name == Statuses.Cancelled.Name
}

type Enum struct {
	New       Status
	Preparing Status
	Ready     Status
	Completed Status
	Cancelled Status
}

var Statuses = Enum{
	New:       Status{Name: "new", Emoji: "🆕", Title: "Новый"},
	Preparing: Status{Name: "preparing", Emoji: "👨‍🍳", Title: "Готовится"},
	Ready:     Status{Name: "ready", Emoji: "✅", Title: "Готов"},
	Completed: Status{Name: "completed", Emoji: "🏁", Title: "Выполнен"},
	Cancelled: Status{Name: "cancelled", Emoji: "❌", Title: "Отменён"},
}

var All = []Status{
	Statuses.New,
	Statuses.Preparing,
	Statuses.Ready,
	Statuses.Completed,
	Statuses.Cancelled,
}

// ByName returns the status for a given name, or nil if not found
func ByName(name string) *Status {
	for _, s := range All {
		if s.Name == name {
			return &s
		}
	}
	return nil
}

// LabelFor renders any status name; unknown names keep the backend's raw value.
func LabelFor(name string) string {
	if s := ByName(name); s != nil {
		return s.Label()
	}
	if name == "" {
		return ""
	}
	return "📝 " + name
}
