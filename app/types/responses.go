package types

type ErrorResponse struct {
	Error string `json:"error"`
}

type HealthResponse struct {
	Status string `json:"status"`
}

type OrderResponse struct {
	ID string `json:"id"`
}

type CaptureResponse struct {
	Status string `json:"status"`
}

type WebhookResponse struct {
	Received bool `json:"received"`
}

type RegistrationResponse struct {
	Success        bool   `json:"success"`
	RegistrationID int    `json:"registrationId"`
	SheetName      string `json:"sheetName"`
	Message        string `json:"message"`
}

type DirectoryEntry struct {
	Name     string `json:"name"`
	Category string `json:"category"`
	City     string `json:"city,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Email    string `json:"email,omitempty"`
	Website  string `json:"website,omitempty"`
}

type DirectoryResponse struct {
	Entries []DirectoryEntry `json:"entries"`
}
