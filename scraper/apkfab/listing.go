package apkfab

import (
	"net/url"
	"regexp"
	"strings"

	"apkmirror/models"
	"apkmirror/parser"
	"apkmirror/services"
	"apkmirror/utils"

	"github.com/PuerkitoBio/goquery"
)

type (
	css   = parser.CSS
	xpath = parser.XPath
)

var listingContainers = map[models.PageKind][]parser.Selector{
	models.PageCategory: {
		css("div.list-item"),
		css("div.category_top_list"),
		xpath("//div[@class='list' and .//a/div[@class='icon']]"),
	},
	models.PageHot: {
		css("div.list-template > div.list"),
		css("div.list:has(a > div.icon)"),
	},
	models.PageLatest: {
		css("div.list:has(a > div.icon)"),
		xpath("//div[contains(@class,'list') and .//a/div[contains(@class,'icon')]]"),
	},
	models.PageDeveloper: {
		css("div.list:has(a > div.icon)"),
		xpath("//div[contains(@class,'list') and .//a/div[contains(@class,'icon')]]"),
	},
	models.PageSearch: {
		css("div.list-template > div.list"),
		css("div.list"),
	},
}

var (
	listingIconAttrs = []string{"data-src", "src", "data-original", "data-lazy-src"}
	reviewText       = regexp.MustCompile(`(?i)[\d.,]+[KMBT]?\+?`)
)

// ExtractListing parses a listing page into app summaries in document
// order. Items without a resolvable package, or repeating an earlier
// package, are skipped; limit > 0 caps the number of kept items.
func ExtractListing(root *goquery.Selection, kind models.PageKind, n *Normalizer, limit int) []models.AppSummary {
	chain, ok := listingContainers[kind]
	if !ok {
		chain = listingContainers[models.PageSearch]
	}

	seen := utils.NewSeenSet()
	apps := []models.AppSummary{}
	parser.All(root, chain...).EachWithBreak(func(_ int, item *goquery.Selection) bool {
		if limit > 0 && len(apps) >= limit {
			return false
		}
		app, ok := extractSummary(item, n)
		if !ok || !seen.Add(app.PackageName) {
			return true
		}
		apps = append(apps, app)
		return true
	})
	return apps
}

func extractSummary(item *goquery.Selection, n *Normalizer) (models.AppSummary, bool) {
	anchor := item.Find("a[href]").First()
	if goquery.NodeName(item) == "a" {
		anchor = item
	}
	id := ExtractSlugAndPackage(anchor.AttrOr("href", ""))
	if id.PackageName == "" {
		return models.AppSummary{}, false
	}

	title := parser.FirstValue(item,
		parser.Text(css("div.title")),
		parser.Text(css("p.title")),
		parser.Text(css(".title")),
		parser.Attr(css("a[title]"), "title"),
	)
	if title == "" {
		title = anchor.AttrOr("title", "")
	}
	if title == "" {
		title = id.PackageName
	}

	icon := parser.ImageSrc(parser.First(item, css("div.icon img"), css("img")), listingIconAttrs...)

	rating := services.ExtractRating(parser.FirstValue(item,
		parser.Text(css("span.rating")),
		parser.Text(css("[class*='rating']")),
		parser.Text(css("[class*='score']")),
		parser.Attr(css("[data-rating]"), "data-rating"),
	))

	rawReviews := reviewText.FindString(parser.FirstValue(item,
		parser.Text(css("span.review")),
		parser.Text(css("[class*='review']")),
	))

	slug := services.Slugify(id.Slug)
	if slug == "" {
		slug = services.Slugify(title)
	}
	if slug == "" {
		slug = "app"
	}

	return models.AppSummary{
		Title:                title,
		IconURL:              n.Normalize(icon),
		Rating:               rating,
		ReviewCountRaw:       rawReviews,
		ReviewCountFormatted: services.FormatReviewCount(rawReviews),
		ReviewCountNumeric:   services.ReviewCountToNumber(rawReviews),
		PackageName:          id.PackageName,
		Slug:                 slug,
		InternalLink:         AppLink(slug, id.PackageName),
		Description: parser.FirstValue(item,
			parser.Text(css("div.short_description")),
			parser.Text(css("div.desc")),
			parser.Text(css("p.description")),
		),
		Developer: parser.FirstValue(item,
			parser.Text(css("div.developer")),
			parser.Text(css("p.developer")),
			parser.Text(css("a[href*='/developer/']")),
		),
	}, true
}

// ExtractCategoryIndex reads the category overview page: the first
// section lists app categories, the second game categories
func ExtractCategoryIndex(root *goquery.Selection) models.CategoryIndex {
	index := models.CategoryIndex{Apps: []models.CategoryLink{}, Games: []models.CategoryLink{}}
	root.Find("div.category-page").Each(func(i int, section *goquery.Selection) {
		if i > 1 {
			return
		}
		var links []models.CategoryLink
		section.Find("div.category-tag ul li a").Each(func(_ int, a *goquery.Selection) {
			if link, ok := categoryLinkFrom(a); ok {
				links = append(links, link)
			}
		})
		if i == 0 {
			index.Apps = append(index.Apps, links...)
		} else {
			index.Games = append(index.Games, links...)
		}
	})
	return index
}

func categoryLinkFrom(a *goquery.Selection) (models.CategoryLink, bool) {
	href := a.AttrOr("href", "")
	if u, err := url.Parse(href); err == nil {
		href = u.Path
	}
	parts := strings.Split(strings.Trim(href, "/"), "/")
	// /category/{main}/{sub}
	if len(parts) < 2 || parts[0] != "category" {
		return models.CategoryLink{}, false
	}
	main, sub := parts[1], ""
	if len(parts) > 2 {
		sub = parts[2]
	}
	return models.CategoryLink{
		Name: parser.NodeText(a),
		Slug: sub,
		Link: CategoryLink(main, sub),
	}, true
}

// ExtractDeveloperInfo reads the banner block of a developer page
func ExtractDeveloperInfo(root *goquery.Selection, n *Normalizer) *models.DeveloperInfo {
	intro := root.Find("div.developer_introduce").First()
	info := &models.DeveloperInfo{
		Banner:      n.Normalize(parser.ImageSrc(root.Find("div.developer_banner img").First())),
		Icon:        n.Normalize(parser.ImageSrc(intro.Find("div.icon img").First())),
		Name:        parser.NodeText(intro.Find("h1").First()),
		Description: parser.NodeText(intro.Find("p").First()),
	}
	if *info == (models.DeveloperInfo{}) {
		return nil
	}
	return info
}

// ExtractRelatedKeywords reads the "related searches" links of a search page
func ExtractRelatedKeywords(root *goquery.Selection) []string {
	var out []string
	seen := utils.NewSeenSet()
	root.Find("div.related-searches a").Each(func(_ int, a *goquery.Selection) {
		kw := parser.NodeText(a)
		if kw != "" && seen.Add(strings.ToLower(kw)) {
			out = append(out, kw)
		}
	})
	return out
}
