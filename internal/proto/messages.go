package proto

import "time"

type User struct {
	Id            string            `json:"id"`
	Email         string            `json:"email"`
	Username      string            `json:"username"`
	DisplayName   string            `json:"display_name"`
	Title         string            `json:"title,omitempty"`
	Bio           string            `json:"bio,omitempty"`
	Avatar        string            `json:"avatar,omitempty"`
	SocialLinks   map[string]string `json:"social_links,omitempty"`
	EmailVerified bool              `json:"email_verified"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
}

type RegisterUserRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Username string `json:"username"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse answers both RegisterUser and Login.
type AuthResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	User         *User  `json:"user"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type RefreshTokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type LogoutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type LogoutResponse struct{}

type PasswordResetRequest struct {
	Email string `json:"email"`
}

type PasswordResetResponse struct{}

type ResetPasswordRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

type ResetPasswordResponse struct{}

type GetProfileRequest struct{}

type ProfileResponse struct {
	User *User `json:"user"`
}

// UpdateProfileRequest carries only the fields to change; nil means unchanged.
type UpdateProfileRequest struct {
	DisplayName *string           `json:"display_name,omitempty"`
	Title       *string           `json:"title,omitempty"`
	Bio         *string           `json:"bio,omitempty"`
	Avatar      *string           `json:"avatar,omitempty"`
	SocialLinks map[string]string `json:"social_links,omitempty"`
}

type AvatarUploadUrlRequest struct {
	ContentType string `json:"content_type"`
}

type AvatarUploadUrlResponse struct {
	Key string `json:"key"`
	Url string `json:"url"`
}

type PingRequest struct{}

type PingResponse struct {
	Status string `json:"status"`
}
