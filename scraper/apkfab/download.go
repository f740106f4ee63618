package apkfab

import (
	"net/url"
	"regexp"
	"strings"

	"apkmirror/models"
	"apkmirror/parser"
	"apkmirror/services"

	"github.com/PuerkitoBio/goquery"
)

// DownloadPage is what an app's /download page advertises on its primary button
type DownloadPage struct {
	Href       string
	FileSize   string
	FileType   models.FileType
	Version    string
	UpdateDate string
	SHA1       string
}

var downloadButtons = []parser.Selector{
	css("a.down_btn[href]"),
	css("a#download_link[href]"),
	css("a.download-btn[href]"),
}

var buttonLabel = regexp.MustCompile(`(?i)Download\s+(APK|XAPK)\s*\(?\s*([^)]+?)\s*\)?\s*$`)

// ExtractDownloadPage reads the primary download button; ok is false when
// the page has no usable button
func ExtractDownloadPage(root *goquery.Selection) (page DownloadPage, ok bool) {
	btn := parser.First(root, downloadButtons...)
	href := strings.TrimSpace(btn.AttrOr("href", ""))
	if href == "" || href == "#" {
		return DownloadPage{}, false
	}

	page = DownloadPage{
		Href:     href,
		FileSize: strings.TrimSpace(btn.AttrOr("data-dt-file-size", "")),
		FileType: parseFileType(btn.AttrOr("data-dt-file-type", "")),
	}

	text := parser.NodeText(btn)
	if m := buttonLabel.FindStringSubmatch(text); m != nil {
		if page.FileType == "" {
			page.FileType = parseFileType(m[1])
		}
		if page.FileSize == "" {
			page.FileSize = strings.TrimSpace(m[2])
		}
	}
	if page.FileType == "" {
		page.FileType = fileTypeInText(text)
	}
	if page.FileType == "" {
		page.FileType = models.FileAPK
	}

	page.Version = firstAccepted(root, services.CleanVersion,
		parser.Text(css("h1.app-name small")),
		parser.Text(xpath("//div[contains(@class,'app_info')]//span[contains(text(),'Version:')]")),
	)
	page.UpdateDate = services.StripDateLabel(parser.FirstValue(root,
		parser.Text(xpath("//span[contains(text(),'Update on:') or contains(text(),'Updated on:') or contains(text(),'Updated:') or contains(text(),'Update Date:')]")),
	))

	if sha, ok := services.NormalizeSHA1(parser.LabeledValue(root, "SHA1:")); ok {
		page.SHA1 = sha
	} else {
		page.SHA1 = sha1FromHref(href)
	}
	return page, true
}

func parseFileType(s string) models.FileType {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "XAPK":
		return models.FileXAPK
	case "APK":
		return models.FileAPK
	}
	return ""
}

func fileTypeInText(s string) models.FileType {
	upper := strings.ToUpper(s)
	switch {
	case strings.Contains(upper, "XAPK"):
		return models.FileXAPK
	case strings.Contains(upper, "APK"):
		return models.FileAPK
	}
	return ""
}

// sha1FromHref reads a hash carried in the "h" or "sha1" query parameter
func sha1FromHref(href string) string {
	u, err := url.Parse(href)
	if err != nil {
		return ""
	}
	q := u.Query()
	for _, key := range []string{"h", "sha1"} {
		if sha, ok := services.NormalizeSHA1(q.Get(key)); ok {
			return sha
		}
	}
	return ""
}
