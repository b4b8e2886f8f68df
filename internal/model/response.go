package model

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Detail  string `json:"detail,omitempty"`
}

// SuccessResponse wraps acknowledgements that have no resource to return
type SuccessResponse struct {
	Success bool        `json:"success"`
	Detail  string      `json:"detail"`
	Data    interface{} `json:"data,omitempty"`
}

func NewErrorResponse(err, detail string) ErrorResponse {
	return ErrorResponse{Success: false, Error: err, Detail: detail}
}

func NewSuccessResponse(detail string, data interface{}) SuccessResponse {
	return SuccessResponse{Success: true, Detail: detail, Data: data}
}
