package service

import "errors"

var (
	ErrInvalidID          = errors.New("invalid id")
	ErrUserNotFound       = errors.New("user not found")
	ErrChatNotFound       = errors.New("chat not found")
	ErrNotMember          = errors.New("not a member of this chat")
	ErrEmailTaken         = errors.New("email already registered")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidCode        = errors.New("invalid or expired code")
	ErrNotVerified        = errors.New("account not verified")
	ErrResendLimit        = errors.New("resend limit reached")
	ErrSelfFollow         = errors.New("cannot follow yourself")
	ErrNotFollowing       = errors.New("not following this user")
	ErrNotGroupChat       = errors.New("not a group chat")
	ErrGroupTooSmall      = errors.New("a group needs at least three members")
)
