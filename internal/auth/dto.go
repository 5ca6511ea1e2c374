package auth

import "strings"

type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return e.Message
}

type LoginDTO struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (d LoginDTO) Validate() error {
	if strings.TrimSpace(d.Email) == "" {
		return ValidationError{Field: "email", Message: "email is required"}
	}
	if !strings.Contains(d.Email, "@") {
		return ValidationError{Field: "email", Message: "email is invalid"}
	}
	if d.Password == "" {
		return ValidationError{Field: "password", Message: "password is required"}
	}
	return nil
}

type RefreshTokenDTO struct {
	RefreshToken string `json:"refresh_token"`
}

func (d RefreshTokenDTO) Validate() error {
	if strings.TrimSpace(d.RefreshToken) == "" {
		return ValidationError{Field: "refresh_token", Message: "refresh token is required"}
	}
	return nil
}
