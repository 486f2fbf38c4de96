package models

// APIResponse is the generic response envelope: status is "success" or
// "error"; Errors carries per-field validation messages.
type APIResponse struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Errors  interface{} `json:"errors,omitempty"`
}

func NewErrorResponse(message string) APIResponse {
	return APIResponse{
		Status:  "error",
		Message: message,
	}
}

func NewValidationErrorResponse(errors map[string]string) APIResponse {
	return APIResponse{
		Status:  "error",
		Message: "Validation failed",
		Errors:  errors,
	}
}

// DashboardStats is the read-side aggregate for the dashboard screen.
type DashboardStats struct {
	LostItems     int64          `json:"lostItems"`
	FoundItems    int64          `json:"foundItems"`
	TotalMatches  int64          `json:"totalMatches"`
	ReturnedItems int64          `json:"returnedItems"`
	PendingItems  int64          `json:"pendingItems"`
	MonthlyData   []MonthlyStats `json:"monthlyData"`
}

type MonthlyStats struct {
	Month   int   `json:"month"`
	Lost    int64 `json:"lost"`
	Found   int64 `json:"found"`
	Matches int64 `json:"matches"`
}
