package category

// CategoryItem is the public DTO returned by the category API.
type CategoryItem struct {
	ID          int     `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Image       *string `json:"image,omitempty"`
}
