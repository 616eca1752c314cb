package request

// CreateTodoRequest keeps Title as a pointer so an absent field can be told
// apart from an empty one.
type CreateTodoRequest struct {
	Title   *string `json:"title" validate:"required"`
	DueDate string  `json:"dueDate,omitempty"`
}
