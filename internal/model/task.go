package model

// Task is a to-do entry as served by the remote collection.
// ID is assigned by the server.
type Task struct {
	ID        int    `json:"id"`
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
}

// Filter selects which sub-resource of the collection is fetched.
type Filter int

const (
	FilterAll Filter = iota
	FilterCompleted
	FilterNotCompleted
)

// FilterFrom derives the active filter from the two display flags.
// The completed flag takes precedence when both are set.
func FilterFrom(completed, not bool) Filter {
	switch {
	case completed:
		return FilterCompleted
	case not:
		return FilterNotCompleted
	default:
		return FilterAll
	}
}

// Query returns the value of the `completed` query parameter, or "" for all tasks.
func (f Filter) Query() string {
	switch f {
	case FilterCompleted:
		return "true"
	case FilterNotCompleted:
		return "false"
	default:
		return ""
	}
}

func (f Filter) String() string {
	switch f {
	case FilterCompleted:
		return "completed"
	case FilterNotCompleted:
		return "not completed"
	default:
		return "all"
	}
}
