package api

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yashankkothari/Lung-Cancer-Detection-Using-ML/internal/domain"
	"github.com/yashankkothari/Lung-Cancer-Detection-Using-ML/internal/service"
)

// handleHealth reports service, model and store health. The probe returns
// 503 when the model is unloaded or degenerate so orchestration keeps
// traffic away from an instance that cannot classify.
func (s *Server) handleHealth(c *gin.Context) {
	dbErr := s.deps.DB.Health(c.Request.Context())

	status := http.StatusOK
	overall := "healthy"
	if !s.deps.Engine.Healthy() || dbErr != nil {
		status = http.StatusServiceUnavailable
		overall = "unhealthy"
	}

	dbStatus := "up"
	if dbErr != nil {
		dbStatus = "down"
	}

	c.JSON(status, gin.H{
		"status":    overall,
		"timestamp": time.Now().UTC(),
		"model": gin.H{
			"loaded":     s.deps.Engine.Healthy() || s.deps.Engine.Degenerate(),
			"degenerate": s.deps.Engine.Degenerate(),
		},
		"database": dbStatus,
	})
}

type signupRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (s *Server) handleSignup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, fmt.Errorf("%v: %w", err, domain.ErrInvalidInput))
		return
	}

	session, err := s.deps.Accounts.Signup(c.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, session)
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (s *Server) handleLogin(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, fmt.Errorf("%v: %w", err, domain.ErrInvalidInput))
		return
	}

	session, err := s.deps.Accounts.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

// handleVerify confirms the presented token still resolves to an account.
func (s *Server) handleVerify(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"doctor": actingIdentity(c)})
}

// handlePredict classifies an uploaded image without persisting anything.
func (s *Server) handlePredict(c *gin.Context) {
	raw, err := s.readImage(c)
	if err != nil {
		abortWithError(c, err)
		return
	}

	result, err := s.deps.Classifier.Classify(c.Request.Context(), raw)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// handlePredictAndSave classifies an uploaded image and stores the outcome
// under the named patient.
func (s *Server) handlePredictAndSave(c *gin.Context) {
	patientID := c.PostForm("patient_id")
	if patientID == "" {
		abortWithError(c, fmt.Errorf("patient_id is required: %w", domain.ErrInvalidInput))
		return
	}

	raw, err := s.readImage(c)
	if err != nil {
		abortWithError(c, err)
		return
	}

	rec, result, err := s.deps.Classifier.ClassifyAndSave(c.Request.Context(), actingIdentity(c), patientID, raw)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"record": rec,
		"result": result,
	})
}

func (s *Server) handleListScans(c *gin.Context) {
	newestFirst := c.DefaultQuery("sort", "desc") != "asc"
	scans, err := s.deps.Records.ListScans(c.Request.Context(), actingIdentity(c), newestFirst)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"scans": scans, "count": len(scans)})
}

func (s *Server) handleAddPatient(c *gin.Context) {
	var req service.PatientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, fmt.Errorf("%v: %w", err, domain.ErrInvalidInput))
		return
	}

	patient, err := s.deps.Records.AddPatient(c.Request.Context(), actingIdentity(c), &req)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, patient)
}

func (s *Server) handleListPatients(c *gin.Context) {
	patients, err := s.deps.Records.ListPatients(c.Request.Context(), actingIdentity(c))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"patients": patients, "count": len(patients)})
}

func (s *Server) handleGetPatient(c *gin.Context) {
	patient, err := s.deps.Records.GetPatient(c.Request.Context(), actingIdentity(c), c.Param("id"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, patient)
}

func (s *Server) handlePatientScans(c *gin.Context) {
	scans, err := s.deps.Records.PatientScans(c.Request.Context(), actingIdentity(c), c.Param("id"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"scans": scans, "count": len(scans)})
}

func (s *Server) handleStats(c *gin.Context) {
	stats, err := s.deps.Stats.Dashboard(c.Request.Context(), actingIdentity(c).DoctorID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (s *Server) handleGenerateReport(c *gin.Context) {
	var req service.ReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, fmt.Errorf("%v: %w", err, domain.ErrInvalidInput))
		return
	}

	report, err := s.deps.Reports.Generate(c.Request.Context(), actingIdentity(c), &req)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, report)
}

func (s *Server) handleListReports(c *gin.Context) {
	reports, err := s.deps.Reports.List(c.Request.Context(), actingIdentity(c))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reports": reports, "count": len(reports)})
}

func (s *Server) handleGetReport(c *gin.Context) {
	report, err := s.deps.Reports.Get(c.Request.Context(), actingIdentity(c), c.Param("id"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// readImage extracts the uploaded image bytes from the multipart "file"
// field, enforcing the configured size cap.
func (s *Server) readImage(c *gin.Context) ([]byte, error) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		return nil, fmt.Errorf("missing image upload: %w", domain.ErrInvalidImage)
	}
	defer file.Close()

	if max := s.deps.Config.Server.MaxUploadBytes; max > 0 && header.Size > max {
		return nil, fmt.Errorf("upload of %d bytes exceeds limit: %w", header.Size, domain.ErrInvalidImage)
	}

	raw, err := io.ReadAll(io.LimitReader(file, s.deps.Config.Server.MaxUploadBytes+1))
	if err != nil {
		return nil, fmt.Errorf("reading upload: %w", domain.ErrInvalidImage)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("empty upload: %w", domain.ErrInvalidImage)
	}
	return raw, nil
}
