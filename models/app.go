package models

import "strconv"

// MoreInfoItem is one row of the "more info" table on a detail page
type MoreInfoItem struct {
	Text string `json:"text"`
	Link string `json:"link"`
}

// AppDetail is the full record scraped from an app's main page
type AppDetail struct {
	Name                 string  `json:"name"`
	IconURL              string  `json:"icon_url"`
	Rating               string  `json:"rating"`
	ReviewCountRaw       string  `json:"review_count_raw"`
	ReviewCountFormatted string  `json:"review_count_formatted"`
	ReviewCountNumeric   float64 `json:"review_count_numeric"`
	PackageName          string  `json:"package_name"`
	Slug                 string  `json:"slug"`
	InternalLink         string  `json:"internal_link"`

	DescriptionHTML    string   `json:"description_html"`
	Screenshots        []string `json:"screenshots"`
	DeveloperName      string   `json:"developer_name"`
	DeveloperLink      string   `json:"developer_link"`
	CategoryName       string   `json:"category_name"`
	CategoryLink       string   `json:"category_link"`
	Price              string   `json:"price"`
	PriceCurrency      string   `json:"price_currency"`
	VersionName        string   `json:"version_name"`
	UpdateDateRaw      string   `json:"update_date_raw"`
	UpdateDate         string   `json:"update_date,omitempty"`
	AndroidRequirement string   `json:"android_requirement"`
	FileSize           string   `json:"file_size"`
	FileType           FileType `json:"file_type,omitempty"`
	Installs           string   `json:"installs"`
	ContentRating      string   `json:"content_rating"`
	PlayStoreLink      string   `json:"play_store_link"`

	MoreInfo      map[string]MoreInfoItem `json:"more_info"`
	RelatedApps   []AppSummary            `json:"related_apps"`
	DeveloperApps []AppSummary            `json:"developer_apps"`

	MatchedSHA1 string `json:"matched_sha1"`
	MatchedArch string `json:"matched_arch"`

	// Set by the detail view from the download page; empty for paid apps
	LatestDownloadLink string `json:"latest_download_link,omitempty"`
}

// IsPaid reports whether the scraped price is a positive amount
func (d *AppDetail) IsPaid() bool {
	p, err := strconv.ParseFloat(d.Price, 64)
	return err == nil && p > 0
}
