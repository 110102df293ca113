package model

type TaskKind string

const (
	TaskKindFree   TaskKind = "free"
	TaskKindParent TaskKind = "parent"
	TaskKindChild  TaskKind = "child"
)

// KindOf derives the presentation kind from relationship state.
// A nested task that also has children is drawn as a parent.
func KindOf(t *Task) TaskKind {
	if t == nil {
		return TaskKindFree
	}
	if len(t.ChildrenIDs) > 0 {
		return TaskKindParent
	}
	if t.HasParent() {
		return TaskKindChild
	}
	return TaskKindFree
}

func StyleFor(kind TaskKind) TaskStyle {
	switch kind {
	case TaskKindParent:
		return TaskStyle{BgColor: "#E3F2FD", TextColor: "#1976D2", BorderColor: "#1976D2"}
	case TaskKindChild:
		return TaskStyle{BgColor: "#E8F5E9", TextColor: "#2E7D32", BorderColor: "#A5D6A7"}
	default:
		return TaskStyle{BgColor: "#FFF0F5", TextColor: "#C2185B", BorderColor: "#F8BBD9"}
	}
}

func DefaultCategoryStyle() CategoryStyle {
	return CategoryStyle{
		BorderColor: "#999",
		BgColor:     "rgba(200, 200, 200, 0.15)",
		BorderWidth: 2,
	}
}
