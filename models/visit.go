package models

import "time"

// Visit is one page view recorded by the analytics endpoint
type Visit struct {
	ID                int64     `json:"id"`
	SessionID         string    `json:"session_id"`
	IPAddress         string    `json:"ip_address"`
	UserAgent         string    `json:"user_agent"`
	VisitedURL        string    `json:"visited_url"`
	Referrer          string    `json:"referrer"`
	Browser           string    `json:"browser"`
	OS                string    `json:"os"`
	DeviceType        string    `json:"device_type"`
	ScreenResolution  string    `json:"screen_resolution"`
	Country           string    `json:"country"`
	City              string    `json:"city"`
	Timezone          string    `json:"timezone"`
	TimeOnPageSeconds int       `json:"time_on_page_seconds"`
	VisitTime         time.Time `json:"visit_time"`
}
