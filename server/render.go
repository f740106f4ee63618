package server

import (
	"errors"
	"net/http"

	"apkmirror/fetcher"
	"apkmirror/models"
	"apkmirror/scraper/apkfab"

	"github.com/gin-gonic/gin"
	json "github.com/goccy/go-json"
)

type errorBody struct {
	Error        string `json:"error"`
	Message      string `json:"message"`
	RecoveryLink string `json:"recovery_link"`
}

func writeJSON(c *gin.Context, status int, v interface{}) {
	b, err := json.Marshal(v)
	if err != nil {
		c.Data(http.StatusInternalServerError, "application/json; charset=utf-8",
			[]byte(`{"error":"encode_failed","message":"could not encode the response","recovery_link":"/"}`))
		return
	}
	c.Data(status, "application/json; charset=utf-8", b)
}

// statusFor maps a domain error kind to the HTTP status of its error page
func statusFor(kind models.ErrorKind) int {
	switch kind {
	case models.ErrNone:
		return http.StatusOK
	case models.ErrDownloadNotAvailable:
		return http.StatusBadGateway
	default:
		return http.StatusNotFound
	}
}

// writeError renders err as a JSON error page; recovery is where the
// visitor is offered to go next
func writeError(c *gin.Context, err error, recovery string) {
	if recovery == "" {
		recovery = "/"
	}
	body := errorBody{Error: "source_unavailable", Message: "the source site could not be reached, please try again", RecoveryLink: recovery}
	status := http.StatusBadGateway

	var te *fetcher.TransportError
	switch {
	case errors.Is(err, apkfab.ErrUnknownSection):
		status, body.Error, body.Message = http.StatusNotFound, "not_found", err.Error()
	case fetcher.IsNotFound(err):
		status, body.Error, body.Message = http.StatusNotFound, "not_found", "the page does not exist on the source"
	case errors.As(err, &te):
	default:
		if de, ok := models.AsDomainError(err); ok {
			status, body.Error, body.Message = statusFor(de.Kind), string(de.Kind), de.Message
		}
	}
	writeJSON(c, status, body)
}

func isAJAX(c *gin.Context) bool {
	return c.GetHeader("X-Requested-With") == "XMLHttpRequest" || c.Query("ajax") == "1"
}
