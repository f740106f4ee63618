package models

// AppSummary is one app card scraped from a listing page (category, hot, latest, developer, search)
type AppSummary struct {
	Title                string  `json:"title"`
	IconURL              string  `json:"icon_url"`
	Rating               string  `json:"rating"`
	ReviewCountRaw       string  `json:"review_count_raw"`
	ReviewCountFormatted string  `json:"review_count_formatted"`
	ReviewCountNumeric   float64 `json:"review_count_numeric"`
	PackageName          string  `json:"package_name"`
	Slug                 string  `json:"slug"`
	InternalLink         string  `json:"internal_link"`
	Description          string  `json:"description,omitempty"`
	Developer            string  `json:"developer,omitempty"`
}

// PageKind selects the container selectors used for a listing page
type PageKind string

const (
	PageCategory  PageKind = "category"
	PageHot       PageKind = "hot"
	PageLatest    PageKind = "latest"
	PageDeveloper PageKind = "developer"
	PageSearch    PageKind = "search"
)

// CategoryLink is a single entry of the category index
type CategoryLink struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
	Link string `json:"link"`
}

// CategoryIndex groups category links by section
type CategoryIndex struct {
	Apps  []CategoryLink `json:"apps"`
	Games []CategoryLink `json:"games"`
}

// DeveloperInfo is the banner block shown on the first page of a developer listing
type DeveloperInfo struct {
	Name        string `json:"name"`
	Banner      string `json:"banner"`
	Icon        string `json:"icon"`
	Description string `json:"description"`
}

// DeveloperPage is a developer listing, with Info set only on page 1
type DeveloperPage struct {
	Info *DeveloperInfo `json:"info,omitempty"`
	Apps []AppSummary   `json:"apps"`
}

// SearchResult holds search hits, or related keywords when nothing matched
type SearchResult struct {
	Keyword         string       `json:"keyword"`
	Apps            []AppSummary `json:"apps"`
	RelatedKeywords []string     `json:"related_keywords,omitempty"`
}

// Suggestion is the compact shape returned by the autocomplete endpoint
type Suggestion struct {
	Title string `json:"title"`
	Icon  string `json:"icon"`
	URL   string `json:"url"`
}

// RankingReport holds computed statistics over a scraped listing
type RankingReport struct {
	TotalApps      int
	WithReviews    int
	MaxReviewCount float64
	MostReviewed   *AppSummary
	TopReviewed    []AppSummary
	AppsByDev      map[string]int
}
