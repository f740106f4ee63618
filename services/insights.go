package services

import (
	"sort"

	"apkmirror/models"
	"apkmirror/utils"
)

// RankingService computes review-based statistics over a scraped listing
type RankingService struct {
	logger *utils.Logger
}

// NewRankingService creates a new RankingService
func NewRankingService(logger *utils.Logger) *RankingService {
	return &RankingService{logger: logger}
}

// Generate computes the report; apps is not modified
func (s *RankingService) Generate(apps []models.AppSummary, top int) *models.RankingReport {
	report := &models.RankingReport{AppsByDev: make(map[string]int)}
	if len(apps) == 0 {
		s.logger.Warn("No apps to rank")
		return report
	}

	for i := range apps {
		a := &apps[i]
		report.TotalApps++
		if a.ReviewCountNumeric > 0 {
			report.WithReviews++
		}
		if a.ReviewCountNumeric > report.MaxReviewCount {
			report.MaxReviewCount = a.ReviewCountNumeric
			report.MostReviewed = a
		}
		if a.Developer != "" {
			report.AppsByDev[a.Developer]++
		}
	}

	ranked := SortByReviews(apps)
	if top > len(ranked) {
		top = len(ranked)
	}
	report.TopReviewed = ranked[:top]
	return report
}

// SortByReviews returns a copy of apps ordered by numeric review count,
// highest first; ties keep document order
func SortByReviews(apps []models.AppSummary) []models.AppSummary {
	out := make([]models.AppSummary, len(apps))
	copy(out, apps)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ReviewCountNumeric > out[j].ReviewCountNumeric
	})
	return out
}
