package models

import (
	"regexp"
	"time"
)

var emailPattern = regexp.MustCompile(`^\S+@\S+\.\S+$`)

type User struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	Mobile       string `json:"mobile"`
	PasswordHash string `json:"-"`

	// Profile images travel as base64 strings on the wire and in storage.
	ProfileImage     string    `json:"profileImage,omitempty"`
	ProfileImageType string    `json:"profileImageType,omitempty"`
	CreatedAt        time.Time `json:"createdAt"`
}

// UserSummary is the subset of user fields exposed on matches and search
// results.
type UserSummary struct {
	ID    string `json:"_id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (u *User) Summary() *UserSummary {
	return &UserSummary{ID: u.ID, Name: u.Name, Email: u.Email}
}

type RegisterRequest struct {
	Name             string `json:"name"`
	Email            string `json:"email"`
	Mobile           string `json:"mobile"`
	Password         string `json:"password"`
	ProfileImage     string `json:"profileImage"`
	ProfileImageType string `json:"profileImageType"`
}

func (r *RegisterRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if r.Name == "" {
		errors["name"] = "Name is required"
	}
	if r.Email == "" {
		errors["email"] = "Email is required"
	} else if !emailPattern.MatchString(r.Email) {
		errors["email"] = "Please enter a valid email"
	}
	if r.Mobile == "" {
		errors["mobile"] = "Mobile number is required"
	}
	if r.Password == "" {
		errors["password"] = "Password is required"
	}

	return errors
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r *LoginRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if r.Email == "" {
		errors["email"] = "Email is required"
	}
	if r.Password == "" {
		errors["password"] = "Password is required"
	}

	return errors
}

type UpdateProfileRequest struct {
	Name             string `json:"name"`
	Email            string `json:"email"`
	Mobile           string `json:"mobile"`
	ProfileImage     string `json:"profileImage"`
	ProfileImageType string `json:"profileImageType"`
}
