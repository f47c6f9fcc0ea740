package client

import "fmt"

// TransportError описывает неудачный вызов Bot API: сетевую ошибку,
// неожиданный HTTP статус или ответ с ok=false.
type TransportError struct {
	Method      string
	StatusCode  int
	Description string
	Err         error
}

func (e *TransportError) Error() string {
	switch {
	case e.Err != nil && e.StatusCode != 0:
		return fmt.Sprintf("client api %s: status %d: %v", e.Method, e.StatusCode, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("client api %s: %v", e.Method, e.Err)
	case e.Description != "":
		return fmt.Sprintf("client api %s: status %d: %s", e.Method, e.StatusCode, e.Description)
	default:
		return fmt.Sprintf("client api %s: status %d", e.Method, e.StatusCode)
	}
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
