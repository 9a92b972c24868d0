package dto

// CreateUserRequest creates a new account. Only coordinator accounts may be
// created through the API; students come from the enrollment roster and the
// single admin is seeded.
type CreateUserRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	Role     string `json:"role" binding:"required"`
}

// UserResponse is the public representation of an account.
type UserResponse struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}
