package domain

import "time"

// UserProfile is the locally registered user.
type UserProfile struct {
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Sinked   int    `json:"sinked"`
	SinkedOn string `json:"sinkedon"` // YYYY-MM-DD
}

// NewUserProfile creates a profile registered on the given day.
func NewUserProfile(name, phone string, now time.Time) UserProfile {
	return UserProfile{Name: name, Phone: phone, SinkedOn: now.Format(time.DateOnly)}
}

// StartupRoute names the first screen a client should show.
type StartupRoute string

// Startup routes, in the order they are checked.
const (
	RouteAuth       StartupRoute = "auth"
	RouteCategories StartupRoute = "categories"
	RouteHome       StartupRoute = "home"
)
