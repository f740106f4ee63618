package server

import (
	"net/http"
	"strconv"
	"strings"

	"apkmirror/models"
	"apkmirror/scraper/apkfab"
	"apkmirror/services"

	"github.com/gin-gonic/gin"
)

type listingResponse struct {
	Kind     models.PageKind     `json:"kind"`
	Page     int                 `json:"page"`
	Apps     []models.AppSummary `json:"apps"`
	NextPage int                 `json:"next_page,omitempty"`
}

type appsOnly struct {
	Apps []models.AppSummary `json:"apps"`
}

func pageParam(c *gin.Context) int {
	if p, err := strconv.Atoi(c.Query("page")); err == nil && p > 1 {
		return p
	}
	return 1
}

// writeListing answers AJAX continuations with the bare app list
func writeListing(c *gin.Context, kind models.PageKind, page int, apps []models.AppSummary, paged bool) {
	if isAJAX(c) {
		writeJSON(c, http.StatusOK, appsOnly{Apps: apps})
		return
	}
	resp := listingResponse{Kind: kind, Page: page, Apps: apps}
	if paged && len(apps) > 0 {
		resp.NextPage = page + 1
	}
	writeJSON(c, http.StatusOK, resp)
}

func (s *Server) categories(c *gin.Context) {
	idx, err := s.scraper.Categories(c.Request.Context())
	if err != nil {
		writeError(c, err, "/")
		return
	}
	writeJSON(c, http.StatusOK, idx)
}

func (s *Server) category(c *gin.Context) {
	page := pageParam(c)
	apps, err := s.scraper.Category(c.Request.Context(), c.Param("main"), c.Param("sub"), page)
	if err != nil {
		writeError(c, err, "/")
		return
	}
	writeListing(c, models.PageCategory, page, apps, true)
}

func (s *Server) hot(c *gin.Context) {
	apps, err := s.scraper.Hot(c.Request.Context(), c.Param("type"))
	if err != nil {
		writeError(c, err, "/")
		return
	}
	writeListing(c, models.PageHot, 1, apps, false)
}

func (s *Server) latest(c *gin.Context) {
	page := pageParam(c)
	apps, err := s.scraper.Latest(c.Request.Context(), c.Param("type"), page)
	if err != nil {
		writeError(c, err, "/")
		return
	}
	writeListing(c, models.PageLatest, page, apps, true)
}

func (s *Server) developer(c *gin.Context) {
	page := pageParam(c)
	dev, err := s.scraper.Developer(c.Request.Context(), c.Param("name"), page)
	if err != nil {
		writeError(c, err, "/")
		return
	}
	if isAJAX(c) {
		writeJSON(c, http.StatusOK, appsOnly{Apps: dev.Apps})
		return
	}
	next := 0
	if len(dev.Apps) > 0 {
		next = page + 1
	}
	writeJSON(c, http.StatusOK, gin.H{"info": dev.Info, "page": page, "apps": dev.Apps, "next_page": next})
}

func (s *Server) search(c *gin.Context) {
	res, err := s.scraper.Search(c.Request.Context(), c.Query("keyword"))
	if err != nil {
		writeError(c, err, "/")
		return
	}
	writeJSON(c, http.StatusOK, res)
}

func (s *Server) suggest(c *gin.Context) {
	out, err := s.scraper.Suggest(c.Request.Context(), c.Query("query"))
	if err != nil {
		// suggestions are best effort
		s.logger.Warn("suggest %q: %v", c.Query("query"), err)
		out = []models.Suggestion{}
	}
	writeJSON(c, http.StatusOK, out)
}

func pathIdentifier(c *gin.Context) apkfab.Identifier {
	return apkfab.Identifier{Slug: c.Param("slug"), PackageName: c.Param("package")}
}

func (s *Server) appDetail(c *gin.Context) {
	d, err := s.scraper.AppDetail(c.Request.Context(), pathIdentifier(c))
	if err != nil {
		writeError(c, err, "/")
		return
	}
	d.UpdateDate = services.FormatDisplayDate(d.UpdateDateRaw)
	writeJSON(c, http.StatusOK, d)
}

func (s *Server) download(c *gin.Context) {
	id := pathIdentifier(c)
	view := s.scraper.ResolveDownload(c.Request.Context(), apkfab.DownloadRequest{ID: id, SHA1: c.Query("sha1")})

	switch view.Error {
	case models.ErrNone:
		view.UpdateDateDisplay = services.FormatDisplayDate(view.Download.UpdateDate)
	case models.ErrAppDetails:
		view.RecoveryLink = "/"
	default:
		view.RecoveryLink = apkfab.LatestDownloadLink(id.Slug, id.PackageName)
	}
	writeJSON(c, statusFor(view.Error), view)
}

func (s *Server) downloadProxy(c *gin.Context) {
	id := apkfab.ExtractSlugAndPackage(c.Query("id"))
	file := c.Query("file")
	if file == "" {
		file = apkfab.DownloadFilename("", id.PackageName, "", c.Query("sha1"), s.cfg.UserDomain, models.FileAPK)
	}

	target, err := s.scraper.ProxyDownload(c.Request.Context(), id, file, strings.TrimSpace(c.Query("sha1")))
	if err != nil {
		recovery := "/"
		if id.PackageName != "" {
			recovery = apkfab.LatestDownloadLink(id.Slug, id.PackageName)
		}
		writeError(c, err, recovery)
		return
	}
	c.Redirect(http.StatusFound, target)
}
