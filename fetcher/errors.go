package fetcher

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
)

// TransportError reports a failed outbound call: network failure, timeout,
// an unusable status code, or an empty body
type TransportError struct {
	URL     string
	Status  int
	Message string
	Err     error
}

func (e *TransportError) Error() string {
	msg := e.Message
	if e.Status != 0 {
		msg = fmt.Sprintf("%s (HTTP %d)", msg, e.Status)
	}
	if e.Err != nil {
		msg = msg + ": " + e.Err.Error()
	}
	return fmt.Sprintf("fetch %s: %s", e.URL, msg)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsNotFound reports whether err is a 404 from the source
func IsNotFound(err error) bool {
	var te *TransportError
	return errors.As(err, &te) && te.Status == http.StatusNotFound
}

// checkResponse applies the shared success rule: status in [200,400) and a non-blank body
func checkResponse(rawURL string, resp *Response) error {
	if resp.Status < 200 || resp.Status >= 400 {
		return &TransportError{URL: rawURL, Status: resp.Status, Message: "source returned an error status"}
	}
	if len(bytes.TrimSpace(resp.Body)) == 0 {
		return &TransportError{URL: rawURL, Status: resp.Status, Message: "empty response body"}
	}
	return nil
}
