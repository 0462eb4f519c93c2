package domain

import "errors"

// CategoryAll is the filter sentinel that matches every category code.
const CategoryAll = "all"

// Category groups entries under a short code.
// Both Name and Code are unique across the category list.
type Category struct {
	Name      string `json:"category"`
	Code      string `json:"denotedby"`
	PinToHome bool   `json:"pintohome"`
}

// Check reports structural problems in a stored category.
func (c *Category) Check() error {
	if c.Name == "" || c.Code == "" {
		return errors.New("category requires name and code")
	}
	return nil
}

// DefaultCategories is the list installed on first run.
func DefaultCategories() []Category {
	return []Category{
		{Name: "Bengali", Code: "B"},
		{Name: "Hindi", Code: "H"},
		{Name: "English", Code: "E"},
		{Name: "Others", Code: "O"},
	}
}

// IndexOfCategory returns the position of the category called name, or -1.
func IndexOfCategory(cats []Category, name string) int {
	for i := range cats {
		if cats[i].Name == name {
			return i
		}
	}
	return -1
}
