package api

type Credentials struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type Session struct {
	Authenticated bool `json:"authenticated"`
	// Token is set on login for clients that send it as a bearer header.
	Token string `json:"token,omitempty"`
}

type SweepResult struct {
	Removed int `json:"removed"`
}

type StorageInfo struct {
	Version string `json:"version"`
	Posts   int    `json:"posts"`
}

type Error struct {
	Error string `json:"error"`
}
