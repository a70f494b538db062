package model

// UserRecord is an account to create on the target service. It doubles as
// the /register request body.
type UserRecord struct {
	Email    string `json:"email" toml:"email"`
	Username string `json:"username" toml:"username"`
	Password string `json:"password" toml:"password"`
}

// LoginRequest is the /login request body.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// TweetPayload is the /tweets request body.
type TweetPayload struct {
	Message string `json:"message"`
}

// SubscriptionRequest is the /subscribe request body. Nickname is the
// username of the user to follow.
type SubscriptionRequest struct {
	Nickname string `json:"nickname"`
}
