package server

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"apkmirror/models"
	"apkmirror/storage"

	"github.com/gin-gonic/gin"
	json "github.com/goccy/go-json"
	"github.com/google/uuid"
)

type visitPayload struct {
	Action            string `json:"action"`
	SessionID         string `json:"session_id"`
	VisitedURL        string `json:"visited_url"`
	Referrer          string `json:"referrer"`
	Browser           string `json:"browser"`
	OS                string `json:"os"`
	DeviceType        string `json:"device_type"`
	ScreenResolution  string `json:"screen_resolution"`
	TimeOnPageSeconds int    `json:"time_on_page_seconds"`
}

type visitResponse struct {
	Status    string `json:"status"`
	Message   string `json:"message"`
	SessionID string `json:"session_id,omitempty"`
}

func orDefault(s, def string) string {
	if s = strings.TrimSpace(s); s == "" {
		return def
	}
	return s
}

func (s *Server) logVisit(c *gin.Context) {
	if s.visits == nil {
		c.Status(http.StatusNoContent)
		return
	}

	raw, err := c.GetRawData()
	var p visitPayload
	if err == nil {
		err = json.Unmarshal(raw, &p)
	}
	if err != nil {
		writeJSON(c, http.StatusBadRequest, visitResponse{Status: "error", Message: "Invalid or missing data."})
		return
	}

	ctx := c.Request.Context()
	switch orDefault(p.Action, "page_load") {
	case "page_load":
		v := &models.Visit{
			SessionID:        orDefault(p.SessionID, uuid.NewString()),
			IPAddress:        orDefault(c.ClientIP(), "Unknown"),
			UserAgent:        c.GetHeader("User-Agent"),
			VisitedURL:       p.VisitedURL,
			Referrer:         p.Referrer,
			Browser:          orDefault(p.Browser, "Unknown"),
			OS:               orDefault(p.OS, "Unknown"),
			DeviceType:       orDefault(p.DeviceType, "Unknown"),
			ScreenResolution: p.ScreenResolution,
			Country:          "N/A",
			City:             "N/A",
			Timezone:         "N/A",
			VisitTime:        time.Now().UTC(),
		}
		if _, err := s.visits.LogPageLoad(ctx, v); err != nil {
			s.logger.Error("log visit: %v", err)
			writeJSON(c, http.StatusInternalServerError, visitResponse{Status: "error", Message: "Failed to log visit."})
			return
		}
		writeJSON(c, http.StatusOK, visitResponse{Status: "success", Message: "Visit logged.", SessionID: v.SessionID})

	case "page_unload":
		if strings.TrimSpace(p.SessionID) == "" {
			writeJSON(c, http.StatusBadRequest, visitResponse{Status: "error", Message: "Invalid or missing data."})
			return
		}
		err := s.visits.LogPageUnload(ctx, p.SessionID, p.TimeOnPageSeconds)
		if err != nil && !errors.Is(err, storage.ErrUnknownSession) {
			s.logger.Error("update time on page: %v", err)
			writeJSON(c, http.StatusInternalServerError, visitResponse{Status: "error", Message: "Failed to update time."})
			return
		}
		writeJSON(c, http.StatusOK, visitResponse{Status: "success", Message: "Time updated.", SessionID: p.SessionID})

	default:
		writeJSON(c, http.StatusBadRequest, visitResponse{Status: "error", Message: "Unknown action."})
	}
}
