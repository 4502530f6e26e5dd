package types

// LoginResponse 是 POST /api/v1/auth/login 的响应体。
type LoginResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	User        LoginUser `json:"user"`
}

// LoginUser 是登录响应里的用户信息。
type LoginUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}
