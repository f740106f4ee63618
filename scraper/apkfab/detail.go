package apkfab

import (
	"strconv"
	"strings"

	"apkmirror/models"
	"apkmirror/parser"
	"apkmirror/services"
	"apkmirror/utils"

	"github.com/PuerkitoBio/goquery"
)

var detailContainers = []parser.Selector{
	css("div.detail_banner"),
	css("div.app_info"),
	css("section.head-widget"),
}

// dd returns the <dd> following a <dt> with the given text, anywhere in the page
func dd(label string) parser.Selector {
	return parser.Global(xpath("//dt[normalize-space(text())='" + label + "']/following-sibling::dd[1]"))
}

// moreInfoP returns the value paragraph of a paragraph-pair "more info" row
func moreInfoP(label string) parser.Selector {
	return parser.Global(xpath("//div[contains(@class,'detail_more_info')]//p[contains(text(),'" + label + "')]/following-sibling::p[1]"))
}

// ExtractAppDetail parses an app's main page. A missing detail container, or
// a page yielding neither a name nor a package, is an app_details_error.
// fallback supplies the package when the page does not state one.
func ExtractAppDetail(root *goquery.Selection, n *Normalizer, fallback Identifier) (*models.AppDetail, error) {
	container := parser.First(root, detailContainers...)
	if container.Length() == 0 {
		return nil, models.NewDomainError(models.ErrAppDetails, "could not find the app details container on the source page")
	}

	d := &models.AppDetail{
		Screenshots:   []string{},
		RelatedApps:   []models.AppSummary{},
		DeveloperApps: []models.AppSummary{},
	}

	// Name, without any inline version badge
	if h1 := parser.First(container, css("h1"), css("div.title")); h1.Length() > 0 {
		clone := h1.Clone()
		clone.Find("small").Remove()
		d.Name = parser.NodeText(clone)
	}

	d.IconURL = n.Normalize(parser.ImageSrc(parser.First(container,
		css("img.icon"),
		css("div.icon img"),
		css("img[class*='icon']"),
	)))

	d.Rating = services.ExtractRating(parser.FirstValue(container,
		parser.Text(parser.Global(xpath("//span[contains(@class,'rating')]//span[contains(@class,'star_icon')]"))),
		parser.Attr(parser.Global(css("div.stars[data-rating]")), "data-rating"),
		parser.Text(css("[class*='score_num']")),
		parser.Text(css("div.score span.num")),
	))

	reviews := parser.FirstValue(container,
		parser.Text(parser.Global(xpath("//span[contains(@class,'review_icon')]"))),
		parser.Text(parser.Global(css("a[href='#reviews'] span.num"))),
		parser.Text(css("span.num_reviews")),
		parser.Text(css("span.reviews_count")),
		parser.Text(css("div.score span.reviews")),
	)
	if m := reviewText.FindString(reviews); m != "" {
		reviews = m
	}
	d.ReviewCountRaw = reviews
	d.ReviewCountFormatted = services.FormatReviewCount(reviews)
	d.ReviewCountNumeric = services.ReviewCountToNumber(reviews)

	d.Price, d.PriceCurrency = extractPrice(root)

	d.VersionName = firstAccepted(container, services.CleanVersion,
		parser.Text(css("span[style*='color: #0284fe']")),
		parser.Text(xpath(".//span[contains(text(),'Version:')]")),
		parser.Text(dd("Version")),
		parser.Text(moreInfoP("Latest Version")),
	)

	d.UpdateDateRaw = services.StripDateLabel(parser.FirstValue(container,
		parser.Text(xpath(".//span[contains(text(),'Update on:')]")),
		parser.Text(dd("Update Date")),
		parser.Text(xpath(".//span[contains(text(),'Updated:')]")),
	))

	d.FileSize = stripLabel(parser.FirstValue(container,
		parser.Text(xpath(".//span[contains(text(),'Size:')]")),
		parser.Text(dd("Size")),
	), "Size:")

	dev := parser.First(container,
		parser.Global(css("span[itemprop='publisher']")),
		css("a.developers span"),
		css("a[href*='/developer/'] span"),
		parser.Global(xpath("//dt[normalize-space(text())='Developer']/following-sibling::dd[1]//a")),
		moreInfoP("Offered By"),
	)
	if name := parser.NodeText(dev); name != "" {
		d.DeveloperName = name
		d.DeveloperLink = DeveloperLink(name)
	}

	d.PackageName = parser.FirstValue(container,
		parser.Text(moreInfoP("Package Name")),
		parser.Text(dd("Package Name")),
	)

	if cat := parser.First(container, css("a[href*='/category/']")); cat.Length() > 0 {
		d.CategoryName = parser.NodeText(cat)
		if link, ok := categoryLinkFrom(cat); ok {
			d.CategoryLink = link.Link
		} else {
			d.CategoryLink = n.Normalize(cat.AttrOr("href", ""))
		}
	}

	d.AndroidRequirement = stripLabel(parser.FirstValue(container,
		parser.Text(parser.Global(xpath("//p[contains(strong,'Requires Android')]/text()[normalize-space(.)]"))),
		parser.Text(dd("Requires Android")),
	), "Requires Android:")

	d.MoreInfo = extractMoreInfo(root, n)
	backfillFromMoreInfo(d)

	desc := parser.First(root,
		css("div.description div.content"),
		css("[itemprop='description']"),
		css("div.description_wrap"),
	)
	d.DescriptionHTML = services.ProcessDescription(parser.InnerHTML(desc), n.SourceDomain())

	d.Screenshots = extractScreenshots(root, n)
	d.RelatedApps, d.DeveloperApps = extractRelatedBlocks(root, n)

	if d.PackageName == "" {
		d.PackageName = fallback.PackageName
	}
	if d.Name == "" && d.PackageName == "" {
		return nil, models.NewDomainError(models.ErrAppDetails, "the source page has neither an app name nor a package name")
	}
	if d.Name == "" {
		d.Name = d.PackageName
	}

	d.Slug = services.Slugify(d.Name)
	if d.Slug == "" {
		d.Slug = services.Slugify(d.PackageName)
	}
	if d.Slug == "" {
		d.Slug = "app"
	}
	d.InternalLink = AppLink(d.Slug, d.PackageName)

	if d.PackageName != "" {
		d.PlayStoreLink = PlayStoreLink(d.PackageName)
		for label := range d.MoreInfo {
			if strings.EqualFold(label, "google play") {
				d.MoreInfo[label] = models.MoreInfoItem{Text: "View on Google Play", Link: d.PlayStoreLink}
			}
		}
	}
	return d, nil
}

// firstAccepted returns the first field value that accept maps to non-empty
func firstAccepted(scope *goquery.Selection, accept func(string) string, fields ...parser.Field) string {
	for _, f := range fields {
		if v := accept(parser.FirstValue(scope, f)); v != "" {
			return v
		}
	}
	return ""
}

func stripLabel(s, label string) string {
	s = strings.TrimSpace(s)
	if len(s) >= len(label) && strings.EqualFold(s[:len(label)], label) {
		s = strings.TrimSpace(s[len(label):])
	}
	return s
}

// extractPrice prefers schema.org microdata and falls back to visible text
func extractPrice(root *goquery.Selection) (string, string) {
	box := root.Find("div.new_detail_price").First()
	if meta := box.Find("meta[itemprop='price']").First(); meta.Length() > 0 {
		price := strings.TrimSpace(meta.AttrOr("content", ""))
		if p, err := strconv.ParseFloat(price, 64); err != nil || p <= 0 {
			return "0", ""
		}
		return price, strings.TrimSpace(box.Find("meta[itemprop='priceCurrency']").AttrOr("content", ""))
	}
	return services.ParsePrice(parser.NodeText(box.Find("span.price").First()))
}

// extractMoreInfo reads the label/value table in both of its layouts. The
// first occurrence of a label wins unless a later one adds a missing link.
func extractMoreInfo(root *goquery.Selection, n *Normalizer) map[string]models.MoreInfoItem {
	info := map[string]models.MoreInfoItem{}

	add := func(label string, value *goquery.Selection) {
		label = strings.TrimRight(parser.CleanText(label), ": ")
		if label == "" || value.Length() == 0 {
			return
		}
		item := models.MoreInfoItem{Text: parser.NodeText(value)}
		a := value.Find("a[href]").First()
		if goquery.NodeName(value) == "a" {
			a = value
		}
		if a.Length() > 0 {
			item.Link = n.Normalize(a.AttrOr("href", ""))
			if item.Text == "" {
				item.Text = parser.NodeText(a)
			}
		}
		if item.Text == "" && item.Link == "" {
			return
		}
		if existing, ok := info[label]; !ok || (existing.Link == "" && item.Link != "") {
			info[label] = item
		}
	}

	root.Find("div.detail_more_info dl dt, div.details-section-contents div.meta-info div.title").Each(func(_ int, label *goquery.Selection) {
		value := label.NextAllFiltered("dd").First()
		if value.Length() == 0 {
			value = label.NextAllFiltered("div.description").First()
		}
		add(parser.NodeText(label), value)
	})

	root.Find("div.detail_more_info div.item, div.app-info div.info").Each(func(_ int, row *goquery.Selection) {
		ps := row.ChildrenFiltered("p")
		if ps.Length() < 2 {
			return
		}
		add(parser.NodeText(ps.Eq(0)), ps.Eq(1))
	})
	return info
}

// backfillFromMoreInfo fills fields the header block did not provide
func backfillFromMoreInfo(d *models.AppDetail) {
	byLabel := make(map[string]models.MoreInfoItem, len(d.MoreInfo))
	for k, v := range d.MoreInfo {
		byLabel[strings.ToLower(k)] = v
	}
	get := func(labels ...string) (models.MoreInfoItem, bool) {
		for _, l := range labels {
			if it, ok := byLabel[l]; ok && it.Text != "" {
				return it, true
			}
		}
		return models.MoreInfoItem{}, false
	}

	if it, ok := get("package name"); ok && d.PackageName == "" {
		d.PackageName = it.Text
	}
	if it, ok := get("category"); ok && d.CategoryName == "" {
		d.CategoryName, d.CategoryLink = it.Text, it.Link
	}
	if it, ok := get("update date", "updated", "update on", "updated on"); ok && d.UpdateDateRaw == "" {
		d.UpdateDateRaw = it.Text
	}
	if d.VersionName == "" {
		if it, ok := get("latest version", "version"); ok {
			d.VersionName = services.CleanVersion(it.Text)
		}
	}
	if it, ok := get("requirements", "requires android"); ok && d.AndroidRequirement == "" {
		d.AndroidRequirement = it.Text
	}
	if it, ok := get("installs"); ok && d.Installs == "" {
		d.Installs = it.Text
	}
	if it, ok := get("content rating"); ok && d.ContentRating == "" {
		d.ContentRating = it.Text
	}
	if it, ok := get("offered by", "developer"); ok && d.DeveloperName == "" {
		d.DeveloperName = it.Text
		d.DeveloperLink = DeveloperLink(it.Text)
	}
	if it, ok := get("size", "file size"); ok && d.FileSize == "" {
		d.FileSize = it.Text
	}
}

func extractScreenshots(root *goquery.Selection, n *Normalizer) []string {
	shots := []string{}
	box := parser.First(root,
		css("div.screenshot"),
		css("div.screenshots"),
		css("div.app_screenshots"),
		css("div[class*='screenshot']"),
	)
	seen := utils.NewSeenSet()
	box.Find("img").Each(func(_ int, img *goquery.Selection) {
		src := n.Normalize(parser.ImageSrc(img))
		if src != "" && seen.Add(src) {
			shots = append(shots, src)
		}
	})
	return shots
}

const relatedBlocks = "div[class*='related'], section[class*='related']"

// extractRelatedBlocks splits the related-app blocks by heading: a block
// titled with "Developer" lists the developer's other apps
func extractRelatedBlocks(root *goquery.Selection, n *Normalizer) (related, developer []models.AppSummary) {
	related, developer = []models.AppSummary{}, []models.AppSummary{}
	var haveRelated, haveDeveloper bool

	root.Find(relatedBlocks).Each(func(_ int, block *goquery.Selection) {
		if block.Find(relatedBlocks).Length() > 0 {
			return
		}
		heading := blockHeading(block)
		if heading == "" {
			heading = blockHeading(block.ParentsFiltered(relatedBlocks).First())
		}
		isDeveloper := strings.Contains(strings.ToLower(heading), "developer")
		if (isDeveloper && haveDeveloper) || (!isDeveloper && haveRelated) {
			return
		}
		items := extractRelatedItems(block, n)
		if len(items) == 0 {
			return
		}
		if isDeveloper {
			developer, haveDeveloper = items, true
		} else {
			related, haveRelated = items, true
		}
	})
	return related, developer
}

func blockHeading(block *goquery.Selection) string {
	if block.Length() == 0 {
		return ""
	}
	return parser.FirstValue(block,
		parser.Text(css("div.title")),
		parser.Text(css(".h3")),
		parser.Text(css("h3")),
		parser.Text(css("h2")),
	)
}

func extractRelatedItems(block *goquery.Selection, n *Normalizer) []models.AppSummary {
	items := []models.AppSummary{}
	seen := utils.NewSeenSet()
	block.Find("a.item, li > a, div.card > a").Each(func(_ int, a *goquery.Selection) {
		id := ExtractSlugAndPackage(a.AttrOr("href", ""))
		if id.PackageName == "" {
			return
		}
		title := strings.TrimSpace(a.AttrOr("title", ""))
		if title == "" {
			title = parser.FirstValue(a,
				parser.Text(css("div.text p:first-of-type")),
				parser.Text(css("div.title")),
				parser.Text(css("span.title")),
			)
		}
		if title == "" || !seen.Add(id.PackageName) {
			return
		}

		rating := services.ExtractRating(parser.FirstValue(a,
			parser.Text(css("span.star_icon")),
			parser.Attr(css("[data-rating]"), "data-rating"),
			parser.Text(css("span.score")),
			parser.Text(css("span.rating-value")),
		))
		if rating != "" {
			rating = services.FormatRating(rating)
		}
		reviews := parser.FirstValue(a,
			parser.Text(css("span.review_icon")),
			parser.Text(css("span.num-ratings")),
			parser.Text(css("span.reviews")),
		)

		slug := services.Slugify(id.Slug)
		if slug == "" {
			slug = services.Slugify(title)
		}
		if slug == "" {
			slug = "app"
		}
		items = append(items, models.AppSummary{
			Title:                title,
			IconURL:              n.Normalize(parser.ImageSrc(parser.First(a, css("div.icon img"), css("img.cover-image"), css("img")))),
			Rating:               rating,
			ReviewCountRaw:       reviews,
			ReviewCountFormatted: services.FormatReviewCount(reviews),
			ReviewCountNumeric:   services.ReviewCountToNumber(reviews),
			PackageName:          id.PackageName,
			Slug:                 slug,
			InternalLink:         AppLink(slug, id.PackageName),
			Description: parser.FirstValue(a,
				parser.Text(css("div.text p:nth-of-type(2)")),
				parser.Text(css(".description")),
				parser.Text(css(".subtitle")),
			),
		})
	})
	return items
}
