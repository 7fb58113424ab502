package models

import "time"

// UserForRegister is the request body for user registration.
type UserForRegister struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// UserForLogin is the request body for user login.
type UserForLogin struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// UserForList is the compact user representation returned alongside tokens.
type UserForList struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	PhotoURL string `json:"photoUrl,omitempty"`
}

// UserForDetail is the full user representation, including photos.
type UserForDetail struct {
	ID        uint             `json:"id"`
	Username  string           `json:"username"`
	CreatedAt time.Time        `json:"createdAt"`
	Photos    []PhotoForReturn `json:"photos"`
}

// PhotoForReturn is the photo representation returned by the API.
type PhotoForReturn struct {
	ID      uint      `json:"id"`
	URL     string    `json:"url"`
	IsMain  bool      `json:"isMain"`
	AddedAt time.Time `json:"addedAt"`
}

// LoginResponse carries the signed token and the authenticated user.
type LoginResponse struct {
	Token string      `json:"token"`
	User  UserForList `json:"user"`
}
