package model

// RegisterRequest represents sign-up parameters
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Name     string `json:"name" binding:"required"`
}

// LoginRequest represents sign-in parameters
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// TokenResponse carries the session token pair
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// AuthResponse is returned from register and login: the account, its
// profile and a fresh token pair.
type AuthResponse struct {
	User    *User           `json:"user"`
	Profile *PatientProfile `json:"profile"`
	Tokens  *TokenResponse  `json:"tokens"`
}
