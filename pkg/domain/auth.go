package domain

// LoginRequest is the payload of POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterRequest is the payload of POST /auth/register.
type RegisterRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

// AuthResponse is returned by both login and register.
type AuthResponse struct {
	Token string `json:"token"`
	Email string `json:"email"`
}
