package serverutils

// Response is the envelope of every JSON body returned by the API.
type Response[T any] struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    T      `json:"data,omitempty"`
}

type ErrorResponseBody struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Errors  map[string]string `json:"errors,omitempty"`
}

func SuccessResponse[T any](message string, data T) Response[T] {
	return Response[T]{
		Success: true,
		Message: message,
		Data:    data,
	}
}

func ErrorResponse(message string, errs map[string]string) ErrorResponseBody {
	return ErrorResponseBody{
		Success: false,
		Message: message,
		Errors:  errs,
	}
}
