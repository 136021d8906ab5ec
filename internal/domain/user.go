package domain

// Role values assigned by the remote API.
const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

// User is an account as returned by the profile and admin endpoints.
type User struct {
	ID           int    `json:"id"`
	Email        string `json:"email,omitempty"`
	FullName     string `json:"fullname"`
	Role         string `json:"role"`
	IsVerified   bool   `json:"is_verified,omitempty"`
	IsGoogleUser bool   `json:"is_google_user,omitempty"`
}

// IsAdmin reports whether the user holds the admin role.
func (u User) IsAdmin() bool { return u.Role == RoleAdmin }

// Credentials is a login request.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Registration is a sign-up request; admins also create users through it.
type Registration struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"fullname"`
	Role     string `json:"role,omitempty"`
}

// Tokens is the login, register and refresh response.
type Tokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type,omitempty"`
	Role         string `json:"role"`
	UserID       int    `json:"user_id"`
	FullName     string `json:"fullname"`
}

// User returns the account described by the token response.
func (t Tokens) User() User {
	return User{ID: t.UserID, FullName: t.FullName, Role: t.Role}
}

// UserUpdate changes an account; nil fields are left untouched.
type UserUpdate struct {
	FullName *string `json:"fullname,omitempty"`
	Role     *string `json:"role,omitempty"`
}

// Message is the generic {"message": "..."} acknowledgement.
type Message struct {
	Message string `json:"message"`
}
