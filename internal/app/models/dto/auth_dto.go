package dto

// LoginRequest is the login payload. The email field doubles as the login
// key: it accepts either an account email or a student matricula, the two
// share one namespace.
type LoginRequest struct {
	LoginKey string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginUser is the account summary returned with a token.
type LoginUser struct {
	ID        int64   `json:"id"`
	Email     string  `json:"email"`
	Role      string  `json:"role"`
	StudentID *string `json:"studentId,omitempty"`
}

// TokenResponse is returned on successful login.
type TokenResponse struct {
	Token     string    `json:"token"`
	ExpiresIn int       `json:"expiresIn"`
	User      LoginUser `json:"user"`
}
