package model

import "github.com/golang-jwt/jwt/v5"

// UserClaims identifies an authenticated principal. Role is not encoded
// in the token: teacher vs. student is decided per classroom from course
// data on every operation, since connections are long-lived and state is
// mutable.
type UserClaims struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}
