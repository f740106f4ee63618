// Command scrape runs one pipeline operation against the source and prints
// the result, for checking selectors without starting the server.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"apkmirror/config"
	"apkmirror/fetcher"
	"apkmirror/models"
	"apkmirror/scraper/apkfab"
	"apkmirror/services"
	"apkmirror/storage"
	"apkmirror/utils"

	json "github.com/goccy/go-json"
)

func main() {
	kind := flag.String("kind", "hot", "hot|latest|category|developer|search|categories|app|download")
	arg := flag.String("arg", "apps", "section, category path, developer, keyword or app path")
	page := flag.Int("page", 1, "listing page")
	sha1 := flag.String("sha1", "", "variant hash for -kind download")
	format := flag.String("format", "tsv", "tsv|csv for listings")
	out := flag.String("out", "", "write listings to this file instead of stdout")
	top := flag.Int("top", 5, "apps in the ranking report")
	flag.Parse()

	// ================== Bootstrap ====================
	cfg := config.Load()
	logger := utils.NewLogger(cfg.LogLevel)

	f, release := fetcher.New(cfg, logger)
	defer release()
	scraper := apkfab.NewScraper(cfg, logger, f)
	ctx := context.Background()

	// =============== Single records ===================================
	switch *kind {
	case "categories":
		idx, err := scraper.Categories(ctx)
		exitOn(logger, err)
		printJSON(idx)
		return
	case "app":
		d, err := scraper.AppDetail(ctx, apkfab.ExtractSlugAndPackage(*arg))
		exitOn(logger, err)
		d.UpdateDate = services.FormatDisplayDate(d.UpdateDateRaw)
		printJSON(d)
		return
	case "download":
		view := scraper.ResolveDownload(ctx, apkfab.DownloadRequest{ID: apkfab.ExtractSlugAndPackage(*arg), SHA1: *sha1})
		printJSON(view)
		if view.Error != models.ErrNone {
			os.Exit(1)
		}
		return
	}

	// =============== Listings ===================================
	apps, err := listing(ctx, scraper, *kind, *arg, *page)
	exitOn(logger, err)
	if len(apps) == 0 {
		logger.Warn("No apps scraped, check the source page structure")
		return
	}

	var writer storage.ListingWriter
	if *out != "" {
		writer = storage.NewCSVWriter(*out, logger)
	} else {
		writer = storage.NewStreamWriter(os.Stdout, *format != "csv", logger)
	}
	if err := writer.WriteApps(apps); err != nil {
		logger.Error("Failed to write listings: %v", err)
	}

	// ==== Ranking ============================
	report := services.NewRankingService(logger).Generate(apps, *top)
	var w io.Writer = os.Stderr
	if *out != "" {
		w = os.Stdout
	}
	services.PrintRankingReport(w, strings.ToUpper(*kind)+" "+*arg, report)
}

func listing(ctx context.Context, s *apkfab.Scraper, kind, arg string, page int) ([]models.AppSummary, error) {
	switch kind {
	case "hot":
		return s.Hot(ctx, arg)
	case "latest":
		return s.Latest(ctx, arg, page)
	case "category":
		section, sub, _ := strings.Cut(strings.Trim(arg, "/"), "/")
		return s.Category(ctx, section, sub, page)
	case "developer":
		dev, err := s.Developer(ctx, arg, page)
		if err != nil {
			return nil, err
		}
		return dev.Apps, nil
	case "search":
		res, err := s.Search(ctx, arg)
		if err != nil {
			return nil, err
		}
		if len(res.Apps) == 0 && len(res.RelatedKeywords) > 0 {
			fmt.Fprintln(os.Stderr, "Related searches:", strings.Join(res.RelatedKeywords, ", "))
		}
		return res.Apps, nil
	}
	return nil, fmt.Errorf("unknown kind %q", kind)
}

func printJSON(v interface{}) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Println(string(b))
}

func exitOn(logger *utils.Logger, err error) {
	if err != nil {
		logger.Error("%v", err)
		os.Exit(1)
	}
}
