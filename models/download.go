package models

// FileType is the package format served by the source
type FileType string

const (
	FileAPK  FileType = "APK"
	FileXAPK FileType = "XAPK"
)

// DownloadInfo describes the binary a download view points at
type DownloadInfo struct {
	FinalURL           string   `json:"final_url"`
	FileSize           string   `json:"file_size"`
	FileType           FileType `json:"file_type"`
	SHA1               string   `json:"sha1"`
	AndroidRequirement string   `json:"android_requirement"`
	DPI                string   `json:"dpi"`
	Arch               string   `json:"arch"`
	VersionName        string   `json:"version_name"`
	UpdateDate         string   `json:"update_date"`
}

// Variant is one row of a version's variant table
type Variant struct {
	VariantID          string   `json:"variant_id"`
	Date               string   `json:"date"`
	Arch               string   `json:"arch"`
	AndroidRequirement string   `json:"android_requirement"`
	DPI                string   `json:"dpi"`
	Size               string   `json:"size"`
	Type               FileType `json:"type"`
	SHA1               string   `json:"sha1"`
	BaseAPK            string   `json:"base_apk,omitempty"`
	SplitAPKs          string   `json:"split_apks,omitempty"`
	DownloadLink       string   `json:"download_link"`
}

// VersionHistoryEntry is one version block on the versions page, newest first
type VersionHistoryEntry struct {
	Version      string    `json:"version"`
	Date         string    `json:"date"`
	Size         string    `json:"size"`
	Type         FileType  `json:"type"`
	HasOBB       bool      `json:"has_obb"`
	WhatsNewHTML string    `json:"whats_new_html"`
	Variants     []Variant `json:"variants"`
}

// DownloadView is everything the download page renders
type DownloadView struct {
	App           *AppDetail            `json:"app"`
	Download      DownloadInfo          `json:"download"`
	Versions      []VersionHistoryEntry `json:"versions"`
	IsLatest      bool                  `json:"is_latest"`
	RequestedSHA1 string                `json:"requested_sha1,omitempty"`
	DownloadTitle string                `json:"download_title"`
	Filename      string                `json:"filename"`
	ProxyLink     string                `json:"proxy_link"`
	WaitSeconds   int                   `json:"wait_seconds"`
	Error         ErrorKind             `json:"error"`
	ErrorMessage  string                `json:"error_message,omitempty"`
	RecoveryLink  string                `json:"recovery_link,omitempty"`

	UpdateDateDisplay string `json:"update_date_display,omitempty"`
}
