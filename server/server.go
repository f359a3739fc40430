package server

import (
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"strings"

	"ipscope/config"
	"ipscope/formatter"
	"ipscope/lookups"
	"ipscope/model"
	"ipscope/processing"
	"ipscope/validation"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// getBaseTemplateData returns a gin.H with common data for all templates.
func getBaseTemplateData() gin.H {
	return gin.H{
		"App": config.Cfg.Application,
	}
}

// NewRouter builds the Gin engine with all routes registered. The template
// filesystem is the embedded templates/ tree in production.
func NewRouter(embeddedTemplates fs.FS) *gin.Engine {
	router := gin.Default()

	funcMap := template.FuncMap{
		"upper": strings.ToUpper,
	}
	tmpl := template.Must(template.New("").Funcs(funcMap).ParseFS(embeddedTemplates, "templates/*.html"))
	router.SetHTMLTemplate(tmpl)

	router.GET("/", handleIndex)

	api := router.Group("/api")
	{
		api.GET("/current-ip", handleCurrentIP)
		api.POST("/lookup-ip", handleLookupIP)
		api.GET("/test-connection", handleTestConnection)
		api.POST("/export", handleExport)
	}

	return router
}

// Start accepts the embedded filesystem and starts the web server.
func Start(embeddedTemplates fs.FS) {
	gin.SetMode(gin.ReleaseMode)
	router := NewRouter(embeddedTemplates)

	port := config.Cfg.Server.Port
	logrus.WithField("addr", "http://localhost:"+port).Info("Web server running")
	if err := router.Run(":" + port); err != nil {
		logrus.Fatalf("Could not start web server: %v", err)
	}
}

// --- Page Handlers ---

func handleIndex(c *gin.Context) {
	c.HTML(http.StatusOK, "index.html", getBaseTemplateData())
}

// --- API Handlers ---

// handleCurrentIP looks up the server's own public address, mirroring the
// "use my address" request variant.
func handleCurrentIP(c *gin.Context) {
	raw, err := lookups.LookupIP(c.Request.Context(), "")
	if err != nil {
		logrus.WithError(err).Warn("Current-IP lookup failed")
		c.JSON(http.StatusBadGateway, gin.H{"error": fmt.Sprintf("Failed to retrieve IP information: %v", err)})
		return
	}
	respondWithResult(c, raw)
}

type lookupRequest struct {
	IPAddress string `json:"ip_address"`
}

// handleLookupIP validates the submitted literal before any upstream call
// is made; a malformed address never leaves the process.
func handleLookupIP(c *gin.Context) {
	var req lookupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	ip := strings.TrimSpace(req.IPAddress)
	if ip == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No IP address provided"})
		return
	}

	check := validation.Classify(ip)
	if !check.Valid {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("%q is not a valid IPv4 or IPv6 address", ip)})
		return
	}

	raw, err := lookups.LookupIP(c.Request.Context(), ip)
	if err != nil {
		logrus.WithError(err).WithField("ip", ip).Warn("Lookup failed")
		c.JSON(http.StatusBadGateway, gin.H{"error": fmt.Sprintf("Failed to retrieve information for %s: %v", ip, err)})
		return
	}
	respondWithResult(c, raw)
}

func respondWithResult(c *gin.Context, raw model.RawData) {
	result, err := processing.ProcessAll(raw)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": fmt.Sprintf("Failed to process API response: %v", err)})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": result})
}

func handleTestConnection(c *gin.Context) {
	if err := lookups.TestConnection(c.Request.Context()); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"success": false, "message": fmt.Sprintf("API connection failed: %v", err)})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "API connection successful!"})
}

type exportRequest struct {
	Format string              `json:"format"`
	Data   *model.LookupResult `json:"data"`
}

// handleExport writes an export file on explicit user action. The client
// sends back the result it holds; nothing is kept server-side between
// requests.
func handleExport(c *gin.Context) {
	var req exportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if req.Data == nil || req.Data.IsEmpty() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No data available. Please fetch IP information first."})
		return
	}

	dir := config.Cfg.Export.Dir
	var path string
	var err error
	switch req.Format {
	case "json":
		path, err = formatter.SaveJSON(req.Data, dir, "")
	case "text":
		path, err = formatter.SaveText(req.Data, dir, "")
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Unknown export format %q", req.Format)})
		return
	}
	if err != nil {
		logrus.WithError(err).Error("Export failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("Could not write export file: %v", err)})
		return
	}

	logrus.WithField("file", path).Info("Export written")
	c.JSON(http.StatusOK, gin.H{"success": true, "filename": path})
}
