package httpclient

import (
	"encoding/json"
	"net/http"
	"strings"
	"unicode/utf8"

	coreerrors "github.com/angelospk/subfetch/pkg/core/errors"
)

// errorBody is the provider's error payload. Either field may be set.
type errorBody struct {
	Errors  []string `json:"errors"`
	Message string   `json:"message"`
}

// Classify maps a non-2xx response to the error taxonomy:
// 401 is an authentication failure, 429 a rate limit, anything else
// (503 included) a provider error carrying the status.
func Classify(op string, status int, body []byte) error {
	msg := errorMessage(body)
	switch status {
	case http.StatusUnauthorized:
		return coreerrors.New(coreerrors.ErrAuthentication, op, status, msg, nil)
	case http.StatusTooManyRequests:
		return coreerrors.New(coreerrors.ErrTooManyRequests, op, status, msg, nil)
	default:
		return coreerrors.New(coreerrors.ErrProvider, op, status, msg, nil)
	}
}

func errorMessage(body []byte) string {
	var eb errorBody
	if len(body) == 0 || json.Unmarshal(body, &eb) != nil {
		s := strings.TrimSpace(string(body))
		return truncate(s, 200)
	}
	if eb.Message != "" {
		return eb.Message
	}
	return strings.Join(eb.Errors, "; ")
}

// truncate cuts s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
