package dto

// System Log DTOs for the admin dashboard.
// Log IDs are MD5 hashes of the raw log line, not UUIDs.

type LogListResponse struct {
	Id        string `json:"id"`
	Level     string `json:"level"`
	Module    string `json:"module"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

type LogDetailResponse struct {
	LogListResponse
	Details map[string]interface{} `json:"details"`
}
