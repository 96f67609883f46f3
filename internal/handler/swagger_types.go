package handler

// Swagger type definitions for API documentation.
// These types are used by swag to generate OpenAPI documentation.

// --- Request Types ---

// FromStorageRequest names the four source documents by object key.
type FromStorageRequest struct {
	Documents map[string]string `json:"documents" binding:"required" example:"invoice:uploads/invoice.pdf"`
}

// --- Response Types ---

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status string `json:"status" example:"ok"`
	Error  string `json:"error,omitempty" example:"extractor: api key not configured"`
}

// ChunksResponse carries the combined report split into chat-sized messages.
type ChunksResponse struct {
	ID       string   `json:"id" example:"5b7c3f7e-8a62-4c1e-9d0a-2f0e3b1c9a11"`
	Messages []string `json:"messages"`
}

// LinkResponse points at a report stored in object storage.
type LinkResponse struct {
	ID        string `json:"id" example:"5b7c3f7e-8a62-4c1e-9d0a-2f0e3b1c9a11"`
	Key       string `json:"key" example:"reports/5b7c3f7e-8a62-4c1e-9d0a-2f0e3b1c9a11/dt_mapping__hs_classification.txt"`
	URL       string `json:"url" example:"https://s3.amazonaws.com/customsdesk-reports/...?X-Amz-Signature=..."`
	ExpiresIn int64  `json:"expires_in" example:"3600"`
}

// --- Generic Response Wrappers ---

// Response wraps a successful response with data.
type Response struct {
	Success bool        `json:"success" example:"true"`
	Data    interface{} `json:"data,omitempty"`
}

// ErrorResponseBody wraps an error response.
type ErrorResponseBody struct {
	Success bool      `json:"success" example:"false"`
	Error   *APIError `json:"error"`
}
