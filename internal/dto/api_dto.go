package dto

type ErrorResponse struct {
	Error   bool   `json:"error"`
	Message string `json:"message"`
}

type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	DB        string `json:"db"`
	Queue     int    `json:"queue"`
}

type UpdateRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=USER MODERATOR NGO"`
}

type BroadcastResponse struct {
	Recipients int `json:"recipients"`
	Failed     int `json:"failed"`
	Posts      int `json:"posts"`
}
