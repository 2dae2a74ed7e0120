package media

import (
	"io"
	"mime"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	appcfg "github.com/DemandifyMedia2022/mail-marketing-app-sub001/internal/config"
	"github.com/DemandifyMedia2022/mail-marketing-app-sub001/internal/pkg/response"
	"github.com/DemandifyMedia2022/mail-marketing-app-sub001/internal/pkg/storage"
)

const maxUploadSize = 10 << 20 // 10 MiB

// Handler serves image uploads for builder elements. Files go to S3 when
// configured, otherwise to the local static directory.
type Handler struct {
	cfg       *appcfg.AppConfig
	uploader  *storage.Uploader
	staticDir string
}

func NewHandler(cfg *appcfg.AppConfig, uploader *storage.Uploader) *Handler {
	dir := cfg.Paths.Static
	if dir == "" {
		dir = filepath.Join(".", "static")
	}
	return &Handler{cfg: cfg, uploader: uploader, staticDir: dir}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	g := rg.Group("/media")
	g.POST("/upload", authMW, h.upload)
	g.GET("", authMW, h.list)
	g.DELETE("/:name", authMW, h.delete)
}

// RegisterPublicRoutes serves locally stored uploads. S3-hosted files are
// served by the bucket itself.
func (h *Handler) RegisterPublicRoutes(r gin.IRoutes) {
	r.GET("/media/:name", h.get)
}

func (h *Handler) upload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, "file is required")
		return
	}
	if fileHeader.Size > maxUploadSize {
		response.BadRequest(c, "file too large")
		return
	}

	filename := buildFileName(fileHeader.Filename)
	contentType := contentTypeFor(filename)

	if h.uploader != nil {
		src, err := fileHeader.Open()
		if err != nil {
			response.InternalError(c, err)
			return
		}
		defer src.Close()
		payload, err := io.ReadAll(src)
		if err != nil {
			response.InternalError(c, err)
			return
		}
		url, err := h.uploader.Upload(c.Request.Context(), "media/"+filename, payload, contentType)
		if err != nil {
			response.InternalError(c, err)
			return
		}
		response.OK(c, gin.H{"url": url, "name": filename, "storage": "s3"})
		return
	}

	if err := os.MkdirAll(h.staticDir, 0o755); err != nil {
		response.InternalError(c, err)
		return
	}
	if err := c.SaveUploadedFile(fileHeader, filepath.Join(h.staticDir, filename)); err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, gin.H{
		"url":     h.cfg.Site.BaseURL + "/media/" + filename,
		"name":    filename,
		"storage": "local",
	})
}

func (h *Handler) list(c *gin.Context) {
	entries, err := os.ReadDir(h.staticDir)
	if err != nil {
		if os.IsNotExist(err) {
			response.OK(c, []gin.H{})
			return
		}
		response.InternalError(c, err)
		return
	}

	items := make([]gin.H, 0, len(entries))
	for _, ent := range entries {
		if ent.IsDir() {
			continue
		}
		info, err := ent.Info()
		if err != nil {
			continue
		}
		items = append(items, gin.H{
			"name":    ent.Name(),
			"url":     h.cfg.Site.BaseURL + "/media/" + ent.Name(),
			"size":    info.Size(),
			"created": info.ModTime().UnixMilli(),
		})
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i]["created"].(int64) > items[j]["created"].(int64)
	})
	response.OK(c, items)
}

func (h *Handler) get(c *gin.Context) {
	name := SafeName(c.Param("name"))
	if name == "" {
		response.NotFound(c)
		return
	}
	path := filepath.Join(h.staticDir, name)
	if _, err := os.Stat(path); err != nil {
		response.NotFound(c)
		return
	}
	c.Header("Cache-Control", "public, max-age=31536000")
	c.File(path)
}

func (h *Handler) delete(c *gin.Context) {
	name := SafeName(c.Param("name"))
	if name == "" {
		response.BadRequest(c, "invalid file name")
		return
	}

	if strings.EqualFold(c.Query("storage"), "s3") && h.uploader != nil {
		if err := h.uploader.Delete(c.Request.Context(), "media/"+name); err != nil {
			response.InternalError(c, err)
			return
		}
		response.NoContent(c)
		return
	}

	if err := os.Remove(filepath.Join(h.staticDir, name)); err != nil && !os.IsNotExist(err) {
		response.InternalError(c, err)
		return
	}
	response.NoContent(c)
}

func buildFileName(original string) string {
	ext := strings.ToLower(filepath.Ext(strings.TrimSpace(original)))
	if ext == "" || len(ext) > 10 {
		ext = ".dat"
	}
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:18] + ext
}

func contentTypeFor(name string) string {
	if ct := mime.TypeByExtension(filepath.Ext(name)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

// SafeName rejects path traversal and anything beyond a plain file name.
func SafeName(raw string) string {
	name := filepath.Base(strings.TrimSpace(raw))
	if name == "" || name == "." || name == string(filepath.Separator) {
		return ""
	}
	for _, r := range name {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') ||
			(r >= '0' && r <= '9') || r == '-' || r == '_' || r == '.' {
			continue
		}
		return ""
	}
	if strings.Contains(name, "..") {
		return ""
	}
	return name
}
