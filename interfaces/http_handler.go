package interfaces

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"cv-checker/usecase"
)

// Mime types accepted on upload.
var validUploadTypes = map[string]bool{
	"text/plain":         true,
	"application/pdf":    true,
	"application/msword": true,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true,
}

// usernameHeader carries the authenticated username. Authentication
// itself happens upstream of this service.
const usernameHeader = "X-Username"

type HTTPHandler struct {
	Files        usecase.FileStore
	Processes    usecase.ProcessStore
	Intake       *usecase.Intake
	Orchestrator *usecase.Orchestrator
	Projector    *usecase.Projector
	Log          *logrus.Logger
}

func NewHTTPHandler(
	router *gin.Engine,
	files usecase.FileStore,
	processes usecase.ProcessStore,
	intake *usecase.Intake,
	orchestrator *usecase.Orchestrator,
	projector *usecase.Projector,
	log *logrus.Logger,
) {
	h := &HTTPHandler{
		Files:        files,
		Processes:    processes,
		Intake:       intake,
		Orchestrator: orchestrator,
		Projector:    projector,
		Log:          log,
	}

	router.GET("/", h.Root)
	router.POST("/upload", h.Upload)
	router.POST("/remove", h.Remove)
	router.POST("/parameter/create", h.CreateParameter)
	router.POST("/evaluate", h.Evaluate)
	router.GET("/result/:id", h.GetResult)
}

// Root reports the service name and the current evaluation load.
func (h *HTTPHandler) Root(c *gin.Context) {
	processing, err := h.Processes.CountProcessing(c.Request.Context())
	if err != nil {
		h.Log.WithError(err).Error("failed to count processing evaluations")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "failed to read current load"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"service":    "cv-checker",
		"processing": processing,
	})
}

// Upload stores a single candidate file and returns the name later
// submissions must reference.
func (h *HTTPHandler) Upload(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"success": false, "message": "file is required"})
		return
	}

	if !validUploadTypes[header.Header.Get("Content-Type")] {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"success": false, "message": "file type only supports plain text, pdf, and docx"})
		return
	}

	file, err := header.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "failed to open file"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "failed to read file"})
		return
	}

	storedName, err := h.Files.Save(data, header.Filename)
	if err != nil {
		h.Log.WithError(err).Error("failed to store upload")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "failed to save file"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    gin.H{"file_name": storedName},
	})
}

// Remove physically deletes a stored upload.
func (h *HTTPHandler) Remove(c *gin.Context) {
	var req struct {
		FileName string `json:"file_name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"success": false, "message": "file_name is required"})
		return
	}

	if !h.Files.Exists(req.FileName) {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "file not found"})
		return
	}

	if err := h.Files.Delete(req.FileName); err != nil {
		h.Log.WithError(err).Error("failed to delete upload")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "failed to remove file"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "file removed successfully"})
}

// CreateParameter accepts one evaluation submission and opens a
// pending process for it.
func (h *HTTPHandler) CreateParameter(c *gin.Context) {
	var req struct {
		FileName       string `json:"file_name"`
		FileType       string `json:"file_type"`
		JobDescription string `json:"job_description"`
		StudyCase      string `json:"study_case"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"success": false, "message": err.Error()})
		return
	}

	processID, err := h.Intake.Submit(c.Request.Context(), usecase.SubmissionInput{
		FileName:       req.FileName,
		FileType:       req.FileType,
		JobDescription: req.JobDescription,
		StudyCase:      req.StudyCase,
		Username:       c.GetHeader(usernameHeader),
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    gin.H{"process_id": processID},
	})
}

// Evaluate triggers the evaluation of a pending process. The response
// comes back as soon as the scoring job is queued.
func (h *HTTPHandler) Evaluate(c *gin.Context) {
	var req struct {
		ProcessID uint `json:"process_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"success": false, "message": "process_id is required"})
		return
	}

	resp, err := h.Orchestrator.Evaluate(c.Request.Context(), req.ProcessID, c.GetHeader(usernameHeader))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": resp.ID, "status": resp.Status})
}

// GetResult reports the projected state of a process, with the result
// payload once the evaluation has succeeded.
func (h *HTTPHandler) GetResult(c *gin.Context) {
	id, err := strconv.ParseUint(strings.TrimSpace(c.Param("id")), 10, 32)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"success": false, "message": "invalid id"})
		return
	}

	projection, err := h.Projector.Project(c.Request.Context(), uint(id))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, projection)
}

// respondError maps the pipeline's error taxonomy to HTTP statuses.
// Busy conditions are retryable signals, not failures.
func (h *HTTPHandler) respondError(c *gin.Context, err error) {
	var validationErr *usecase.ValidationError
	var extractionErr *usecase.ExtractionError

	switch {
	case errors.Is(err, usecase.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": err.Error()})
	case errors.Is(err, usecase.ErrAlreadyRunning):
		c.JSON(http.StatusConflict, gin.H{"success": false, "message": err.Error()})
	case errors.Is(err, usecase.ErrSystemBusy):
		c.JSON(http.StatusServiceUnavailable, gin.H{"success": false, "message": err.Error()})
	case errors.As(err, &validationErr), errors.As(err, &extractionErr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"success": false, "message": err.Error()})
	default:
		h.Log.WithError(err).Error("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": err.Error()})
	}
}
