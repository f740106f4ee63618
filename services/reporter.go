package services

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"apkmirror/models"
)

// PrintRankingReport formats the ranking report for a terminal
func PrintRankingReport(w io.Writer, title string, report *models.RankingReport) {
	border := strings.Repeat("═", 55)
	thin := strings.Repeat("─", 55)

	fmt.Fprintf(w, "\n╔%s╗\n", border)
	fmt.Fprintf(w, "║%s║\n", center(strings.ToUpper(title), 55))
	fmt.Fprintf(w, "╚%s╝\n", border)

	fmt.Fprintf(w, "\n OVERVIEW\n%s\n", thin)
	fmt.Fprintf(w, "  Apps Scraped        : %d\n", report.TotalApps)
	fmt.Fprintf(w, "  Apps With Reviews   : %d\n", report.WithReviews)
	fmt.Fprintf(w, "  Max Review Count    : %s\n", AbbreviateNumber(report.MaxReviewCount))

	if report.MostReviewed != nil {
		fmt.Fprintf(w, "\n MOST REVIEWED\n%s\n", thin)
		fmt.Fprintf(w, "  Title   : %s\n", report.MostReviewed.Title)
		fmt.Fprintf(w, "  Package : %s\n", report.MostReviewed.PackageName)
		fmt.Fprintf(w, "  Link    : %s\n", report.MostReviewed.InternalLink)
	}

	if len(report.AppsByDev) > 0 {
		fmt.Fprintf(w, "\n APPS PER DEVELOPER\n%s\n", thin)
		type devCount struct {
			dev   string
			count int
		}
		var devs []devCount
		for d, c := range report.AppsByDev {
			devs = append(devs, devCount{d, c})
		}
		sort.Slice(devs, func(i, j int) bool {
			if devs[i].count == devs[j].count {
				return devs[i].dev < devs[j].dev
			}
			return devs[i].count > devs[j].count
		})
		for _, dc := range devs {
			fmt.Fprintf(w, "  %-25s %3d  %s\n", truncate(dc.dev, 24)+":", dc.count, strings.Repeat("▓", dc.count))
		}
	}

	if len(report.TopReviewed) > 0 {
		fmt.Fprintf(w, "\n TOP %d BY REVIEWS\n%s\n", len(report.TopReviewed), thin)
		for i, a := range report.TopReviewed {
			bar := ""
			if report.MaxReviewCount > 0 {
				bar = strings.Repeat("█", int(10*a.ReviewCountNumeric/report.MaxReviewCount))
			}
			fmt.Fprintf(w, "  %2d. %-35s %6s %s\n", i+1, truncate(a.Title, 35), a.ReviewCountFormatted, bar)
		}
	}

	fmt.Fprintf(w, "\n%s\n\n", border)
}

func center(s string, width int) string {
	runes := []rune(s)
	if len(runes) >= width {
		return s
	}
	pad := (width - len(runes)) / 2
	return strings.Repeat(" ", pad) + s + strings.Repeat(" ", width-len(runes)-pad)
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-3]) + "..."
}
