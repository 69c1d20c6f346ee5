package domain

type User struct {
	ID    string `json:"userId"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
	Token string `json:"token"`
}

// AdminProfile is persisted independently of User; a visitor can hold
// both, but the navigation chrome is driven by at most one at a time.
type AdminProfile struct {
	Name  string `json:"name"`
	Token string `json:"token"`
}
