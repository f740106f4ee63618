package apkfab

import (
	"strings"

	"apkmirror/models"
	"apkmirror/parser"
	"apkmirror/services"

	"github.com/PuerkitoBio/goquery"
)

// ExtractVersionHistory parses the /versions page, newest first. Entries
// without a version or without any linkable variant are dropped; variants
// need a valid SHA1 plus id's slug and package to be linkable.
func ExtractVersionHistory(root *goquery.Selection, id Identifier) []models.VersionHistoryEntry {
	entries := []models.VersionHistoryEntry{}
	history := root.Find("div.version_history").First()

	history.Find("div.list").Each(func(_ int, block *goquery.Selection) {
		e := models.VersionHistoryEntry{
			Version: parser.NodeText(block.Find("span.version").First()),
		}
		spans := block.Find("div.text").First().ChildrenFiltered("span")
		e.Date = parser.NodeText(spans.Eq(0))
		e.Size = parser.NodeText(spans.Eq(1))

		switch {
		case block.Find("span.xapk").Length() > 0:
			e.Type = models.FileXAPK
		case block.Find("span.apk").Length() > 0:
			e.Type = models.FileAPK
		default:
			e.Type = fileTypeInText(e.Size)
		}
		if e.Type == "" {
			e.Type = models.FileAPK
		}
		e.HasOBB = block.Find("span.obb").Length() > 0

		box := parser.First(block, css("div.info-fix > div.info_box"), css("div.info_box"))
		e.WhatsNewHTML = parser.InnerHTML(box.Find("div.whats_new").First())

		e.Variants = extractVariants(block, box, &e, id)
		if e.Version == "" || len(e.Variants) == 0 {
			return
		}
		entries = append(entries, e)
	})
	return entries
}

func extractVariants(block, box *goquery.Selection, e *models.VersionHistoryEntry, id Identifier) []models.Variant {
	var variants []models.Variant

	rows := block.Find("div.table > div.table-row").Not(".table-head")
	if rows.Length() > 0 {
		rows.Each(func(_ int, row *goquery.Selection) {
			cells := row.ChildrenFiltered("div.table-cell")
			if cells.Length() < 5 {
				return
			}
			v := variantFromRow(cells, e)
			v.DownloadLink = VersionDownloadLink(id.Slug, id.PackageName, v.SHA1)
			if v.DownloadLink != "" {
				variants = append(variants, v)
			}
		})
		return variants
	}

	// Single-variant layout: one button plus labelled paragraphs
	btn := block.Find("div.v_h_button a[class*='down']").First()
	if btn.Length() == 0 {
		return nil
	}
	v := models.Variant{
		Date:               e.Date,
		Size:               firstNonEmpty(parser.LabeledValue(box, "Size:"), e.Size),
		Arch:               parser.LabeledValue(box, "Architecture:"),
		AndroidRequirement: parser.LabeledValue(box, "Requires Android:"),
		DPI:                parser.LabeledValue(box, "Screen DPI:"),
		Type:               e.Type,
	}
	if sha, ok := services.NormalizeSHA1(parser.LabeledValue(box, "SHA1:")); ok {
		v.SHA1 = sha
	} else {
		v.SHA1 = sha1FromHref(btn.AttrOr("href", ""))
	}
	v.DownloadLink = VersionDownloadLink(id.Slug, id.PackageName, v.SHA1)
	if v.DownloadLink == "" {
		return nil
	}
	return []models.Variant{v}
}

// variantFromRow reads cells: info popup, arch, android, dpi, download button.
// The arch, android and dpi cells win over the popup's labels.
func variantFromRow(cells *goquery.Selection, e *models.VersionHistoryEntry) models.Variant {
	first := cells.Eq(0)
	popup := first.Find("div.popup p")
	info := first.Find("div.ver-info").First()
	if info.Length() == 0 {
		info = first
	}

	v := models.Variant{
		VariantID:          parser.NodeText(popup.Eq(0)),
		Date:               firstNonEmpty(parser.NodeText(popup.Eq(1)), e.Date),
		Size:               firstNonEmpty(parser.LabeledValue(info, "Size:"), e.Size),
		BaseAPK:            parser.LabeledValue(info, "Base APK:"),
		SplitAPKs:          parser.LabeledValue(info, "Split APKs:"),
		Arch:               firstNonEmpty(parser.NodeText(cells.Eq(1)), parser.LabeledValue(info, "Architecture:")),
		AndroidRequirement: firstNonEmpty(parser.NodeText(cells.Eq(2)), parser.LabeledValue(info, "Requires Android:")),
		DPI:                firstNonEmpty(parser.NodeText(cells.Eq(3)), parser.LabeledValue(info, "Screen DPI:")),
	}

	btn := cells.Eq(4).Find("a.down_text, a.down-button, a[href]").First()
	v.Type = parseFileType(btn.AttrOr("data-dt-file-type", ""))
	if v.Type == "" {
		v.Type = fileTypeInText(parser.NodeText(btn))
	}
	if v.Type == "" {
		v.Type = e.Type
	}

	if sha, ok := services.NormalizeSHA1(parser.LabeledValue(info, "SHA1:")); ok {
		v.SHA1 = sha
	} else {
		v.SHA1 = sha1FromHref(btn.AttrOr("href", ""))
	}
	return v
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

// VariantMatch is a variant together with the version entry it belongs to
type VariantMatch struct {
	Entry   *models.VersionHistoryEntry
	Variant *models.Variant
}

// MatchLatestBySize finds, in the newest entry only, the first variant whose
// normalized size equals size
func MatchLatestBySize(entries []models.VersionHistoryEntry, size string) (VariantMatch, bool) {
	return matchLatest(entries, func(v *models.Variant) bool {
		return services.NormalizeSize(v.Size) == services.NormalizeSize(size)
	}, size)
}

// MatchLatestBySizeAndRequirement additionally requires the Android
// requirement to agree; used where one size ships for several API levels.
// An unstated requirement matches nothing.
func MatchLatestBySizeAndRequirement(entries []models.VersionHistoryEntry, size, requirement string) (VariantMatch, bool) {
	want := services.NormalizeRequirement(requirement)
	if want == "" {
		return VariantMatch{}, false
	}
	return matchLatest(entries, func(v *models.Variant) bool {
		return services.NormalizeSize(v.Size) == services.NormalizeSize(size) &&
			services.NormalizeRequirement(v.AndroidRequirement) == want
	}, size)
}

func matchLatest(entries []models.VersionHistoryEntry, match func(*models.Variant) bool, size string) (VariantMatch, bool) {
	if len(entries) == 0 || services.NormalizeSize(size) == "" {
		return VariantMatch{}, false
	}
	latest := &entries[0]
	for i := range latest.Variants {
		if match(&latest.Variants[i]) {
			return VariantMatch{Entry: latest, Variant: &latest.Variants[i]}, true
		}
	}
	return VariantMatch{}, false
}

// FindVariantBySHA1 scans every entry for the variant with the given hash
func FindVariantBySHA1(entries []models.VersionHistoryEntry, sha1 string) (VariantMatch, bool) {
	want := strings.ToLower(strings.TrimSpace(sha1))
	if want == "" {
		return VariantMatch{}, false
	}
	for i := range entries {
		for j := range entries[i].Variants {
			if strings.ToLower(entries[i].Variants[j].SHA1) == want {
				return VariantMatch{Entry: &entries[i], Variant: &entries[i].Variants[j]}, true
			}
		}
	}
	return VariantMatch{}, false
}
