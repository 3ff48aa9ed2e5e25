package router

import (
	"errors"
	"log/slog"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/opencustoms/tradeflow/internal/archive"
	"github.com/opencustoms/tradeflow/internal/auth"
	"github.com/opencustoms/tradeflow/internal/importjob"
	"github.com/opencustoms/tradeflow/internal/sheet"
	"github.com/opencustoms/tradeflow/internal/store"
	"github.com/opencustoms/tradeflow/internal/tradedata"
)

// DataRouter exposes the trade-data API surface.
type DataRouter struct {
	service       *tradedata.DataService
	jobs          *importjob.Store
	runner        *importjob.Runner
	archiver      *archive.Archiver
	maxUploadSize int64
}

func NewDataRouter(service *tradedata.DataService, jobs *importjob.Store, runner *importjob.Runner, archiver *archive.Archiver, maxUploadSize int64) *DataRouter {
	return &DataRouter{
		service:       service,
		jobs:          jobs,
		runner:        runner,
		archiver:      archiver,
		maxUploadSize: maxUploadSize,
	}
}

// Register mounts the API routes. Every route requires a verified scope;
// write operations additionally require an administrator.
func (dr *DataRouter) Register(api *gin.RouterGroup) {
	data := api.Group("/data")
	data.GET("/search", dr.handleSearch)
	data.GET("/customs-codes", dr.handleListCustomsCodes)
	data.GET("/countries", dr.handleListCountries)

	admin := api.Group("", auth.RequireAdmin())
	admin.POST("/data", dr.handleCreateRecord)
	admin.GET("/data/:id", dr.handleGetRecord)
	admin.PUT("/data/:id", dr.handleUpdateRecord)
	admin.DELETE("/data/:id", dr.handleDeleteRecord)
	admin.POST("/data/bulk-delete", dr.handleDeleteByCondition)
	admin.POST("/import/excel", dr.handleImportExcel)
	admin.GET("/import/jobs/:id", dr.handleGetImportJob)
}

func (dr *DataRouter) handleSearch(c *gin.Context) {
	scope, ok := auth.ScopeFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	criteria := tradedata.QueryCriteria{
		CustomsCode:   c.Query("customs_code"),
		ImportCountry: c.Query("import_country"),
		ExportCountry: c.Query("export_country"),
		Importer:      c.Query("importer"),
		Exporter:      c.Query("exporter"),
		StartDate:     c.Query("start_date"),
		EndDate:       c.Query("end_date"),
		Page:          intQuery(c, "page", 1),
		PageSize:      intQuery(c, "page_size", tradedata.DefaultPageSize),
		SortBy:        defaultString(c.Query("sort_by"), tradedata.FieldDate),
		SortOrder:     defaultString(c.Query("sort_order"), "desc"),
	}

	page, err := dr.service.Search(c.Request.Context(), criteria, scope)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (dr *DataRouter) handleListCustomsCodes(c *gin.Context) {
	scope, ok := auth.ScopeFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}
	codes, err := dr.service.ListCustomsCodes(c.Request.Context(), scope)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, codes)
}

func (dr *DataRouter) handleListCountries(c *gin.Context) {
	scope, ok := auth.ScopeFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}
	countries, err := dr.service.ListCountries(c.Request.Context(), scope)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, countries)
}

func (dr *DataRouter) handleCreateRecord(c *gin.Context) {
	var input tradedata.RecordInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	id, err := dr.service.CreateRecord(c.Request.Context(), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id, "result": "created"})
}

func (dr *DataRouter) handleGetRecord(c *gin.Context) {
	record, err := dr.service.GetRecord(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, record)
}

func (dr *DataRouter) handleUpdateRecord(c *gin.Context) {
	var input tradedata.RecordInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if err := dr.service.UpdateRecord(c.Request.Context(), c.Param("id"), input); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": c.Param("id"), "result": "updated"})
}

func (dr *DataRouter) handleDeleteRecord(c *gin.Context) {
	if err := dr.service.DeleteRecord(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": c.Param("id"), "result": "deleted"})
}

func (dr *DataRouter) handleDeleteByCondition(c *gin.Context) {
	var cond tradedata.DeleteCondition
	if err := c.ShouldBindJSON(&cond); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	deleted, err := dr.service.DeleteByCondition(c.Request.Context(), cond)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"result": "success", "deleted": deleted})
}

// handleImportExcel accepts a spreadsheet upload, archives the raw file,
// decodes it, and hands the rows to the background runner. The response
// acknowledges immediately with the job ID to poll.
func (dr *DataRouter) handleImportExcel(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, dr.maxUploadSize)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing file upload"})
		return
	}

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	if ext != ".xlsx" && ext != ".xls" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported file type, expected .xlsx or .xls"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable file upload"})
		return
	}
	defer file.Close()

	mime := fileHeader.Header.Get("Content-Type")
	archived, err := dr.archiver.Archive(c.Request.Context(), fileHeader.Filename, file, fileHeader.Size, mime)
	if err != nil {
		slog.Error("failed to archive source file", "filename", fileHeader.Filename, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to archive source file"})
		return
	}

	// Decode from the archived copy so the upload stream is read only once.
	reader, _, err := dr.archiver.Retrieve(c.Request.Context(), archived.Key)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read archived file"})
		return
	}
	defer reader.Close()

	rows, columns, err := sheet.Decode(reader)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to decode spreadsheet: " + err.Error()})
		return
	}

	jobID, err := dr.runner.Submit(fileHeader.Filename, rows, columns)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"message":  "import started",
		"job_id":   jobID,
		"filename": fileHeader.Filename,
		"rows":     len(rows),
	})
}

func (dr *DataRouter) handleGetImportJob(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid job id"})
		return
	}
	job, err := dr.jobs.Get(id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "import job not found"})
		return
	}
	c.JSON(http.StatusOK, job)
}

func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, tradedata.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "record not found"})
	case errors.Is(err, store.ErrUnavailable):
		slog.Error("document store unavailable", "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "document store unavailable"})
	default:
		slog.Error("request failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func intQuery(c *gin.Context, name string, defaultValue int) int {
	raw := c.Query(name)
	if raw == "" {
		return defaultValue
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return defaultValue
	}
	return v
}

func defaultString(v, defaultValue string) string {
	if v == "" {
		return defaultValue
	}
	return v
}
