package ui

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"idsampler/adapters/excel"
	"idsampler/domain/core"
	"idsampler/domain/run"
	"idsampler/domain/sampling"
	"idsampler/internal/errors"
	"idsampler/internal/profiling"
)

// inputKind names one of the three uploadable identifier lists
type inputKind string

const (
	inputPool     inputKind = "pool"
	inputRetained inputKind = "retained"
	inputExcluded inputKind = "excluded"
)

func (s *Server) loader(kind inputKind) (func([]sampling.Identifier) error, bool) {
	switch kind {
	case inputPool:
		return s.runs.LoadPool, true
	case inputRetained:
		return s.runs.LoadRetained, true
	case inputExcluded:
		return s.runs.LoadExcluded, true
	}
	return nil, false
}

type uploadResponse struct {
	Kind          inputKind      `json:"kind"`
	Source        string         `json:"source"`
	FileType      excel.FileType `json:"file_type"`
	Count         int            `json:"count"`
	Rows          int            `json:"rows"`
	Dropped       int            `json:"dropped"`
	DroppedSample []string       `json:"dropped_sample,omitempty"`
	HeaderSkipped bool           `json:"header_skipped"`
	Header        string         `json:"header,omitempty"`
	State         run.State      `json:"state"`
}

func (s *Server) handleUpload(c *gin.Context) {
	kind := inputKind(c.Param("kind"))
	load, ok := s.loader(kind)
	if !ok {
		s.respondError(c, errors.NotFound(fmt.Sprintf("input %q", kind)))
		return
	}

	fh, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{
				"error": fmt.Sprintf("File exceeds the %d MB upload limit.", s.config.MaxUploadBytes>>20),
				"code":  errors.CodeInvalidInput,
			})
			return
		}
		s.respondError(c, errors.InvalidInput("Please choose a file to upload."))
		return
	}

	f, err := fh.Open()
	if err != nil {
		s.respondError(c, errors.Wrap(err, "failed to open upload"))
		return
	}
	defer f.Close()

	extraction, err := excel.ExtractIdentifiers(fh.Filename, f, excel.WithLogger(s.logger))
	if err != nil {
		s.respondError(c, err)
		return
	}
	if err := load(extraction.IDs); err != nil {
		s.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, uploadResponse{
		Kind:          kind,
		Source:        extraction.Source,
		FileType:      extraction.FileType,
		Count:         len(extraction.IDs),
		Rows:          extraction.Rows,
		Dropped:       extraction.Dropped,
		DroppedSample: extraction.DroppedSample,
		HeaderSkipped: extraction.HeaderSkipped,
		Header:        extraction.Header,
		State:         s.runs.Snapshot().State,
	})
}

type runRequest struct {
	SampleSize *int   `json:"sample_size"`
	Seed       *int64 `json:"seed"`
	MinID      *int64 `json:"min_id"`
	MaxID      *int64 `json:"max_id"`
}

func (r runRequest) params(defaultSize int) run.Params {
	size := defaultSize
	if r.SampleSize != nil {
		size = *r.SampleSize
	}
	return run.Params{
		SampleSize: size,
		Seed:       r.Seed,
		Range:      sampling.RangeFilter{Min: r.MinID, Max: r.MaxID},
	}
}

type runResponse struct {
	RunID       core.RunID                `json:"run_id,omitempty"`
	State       run.State                 `json:"state"`
	Errors      sampling.ValidationErrors `json:"errors"`
	Summary     profiling.Summary         `json:"summary"`
	Dataset     sampling.FinalDataset     `json:"dataset"`
	Fingerprint core.Hash                 `json:"fingerprint,omitempty"`
	DurationMS  int64                     `json:"duration_ms"`
}

func newRunResponse(rc *run.Context) runResponse {
	dataset := rc.Dataset
	if dataset == nil {
		dataset = sampling.FinalDataset{}
	}
	errs := rc.Errors
	if errs == nil {
		errs = sampling.ValidationErrors{}
	}
	return runResponse{
		RunID:       rc.RunID,
		State:       rc.State,
		Errors:      errs,
		Summary:     profiling.Summarize(rc),
		Dataset:     dataset,
		Fingerprint: rc.Fingerprint.Fingerprint,
		DurationMS:  rc.Duration().Milliseconds(),
	}
}

func (s *Server) handleRun(c *gin.Context) {
	var req runRequest
	if err := c.ShouldBindJSON(&req); err != nil && !stderrors.Is(err, io.EOF) {
		s.respondError(c, errors.InvalidInput("Invalid run parameters: "+err.Error()))
		return
	}

	rc, err := s.runs.Execute(c.Request.Context(), req.params(s.config.DefaultSampleSize))
	if err != nil {
		s.respondError(c, err)
		return
	}

	status := http.StatusOK
	if rc.State == run.StateRejected {
		status = http.StatusUnprocessableEntity
	}
	c.JSON(status, newRunResponse(rc))
}

func (s *Server) handleReset(c *gin.Context) {
	s.runs.Reset()
	c.JSON(http.StatusOK, gin.H{"state": run.StateIdle})
}

type stateResponse struct {
	runResponse
	PoolCount     int        `json:"pool_count"`
	RetainedCount int        `json:"retained_count"`
	ExcludedCount int        `json:"excluded_count"`
	Params        run.Params `json:"params"`
	StartedAt     *time.Time `json:"started_at,omitempty"`
}

func (s *Server) handleState(c *gin.Context) {
	rc := s.runs.Snapshot()
	resp := stateResponse{
		runResponse:   newRunResponse(rc),
		PoolCount:     len(rc.Inputs.Pool),
		RetainedCount: len(rc.Inputs.Retained),
		ExcludedCount: len(rc.Inputs.Excluded),
		Params:        rc.Params,
	}
	if !rc.StartedAt.IsZero() {
		resp.StartedAt = &rc.StartedAt
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleExport(c *gin.Context) {
	format, err := excel.ParseExportFormat(c.Query("format"))
	if err != nil {
		s.respondError(c, err)
		return
	}

	dataset, err := s.runs.Dataset()
	if err != nil {
		s.respondError(c, err)
		return
	}

	var buf bytes.Buffer
	if err := format.Write(&buf, dataset); err != nil {
		s.respondError(c, errors.Wrap(err, "failed to write export"))
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, format.FileName(time.Now())))
	c.Data(http.StatusOK, format.ContentType(), buf.Bytes())
}

func (s *Server) handleHistory(c *gin.Context) {
	limit := 20
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			s.respondError(c, errors.InvalidInput("limit must be a positive integer"))
			return
		}
		limit = n
	}

	manifests, err := s.runs.History(c.Request.Context(), limit)
	if err != nil {
		s.respondError(c, err)
		return
	}
	if manifests == nil {
		manifests = []run.Manifest{}
	}
	c.JSON(http.StatusOK, gin.H{"runs": manifests})
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "version": s.config.Version})
}

// respondError maps error codes onto HTTP statuses
func (s *Server) respondError(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", zap.String("path", c.Request.URL.Path), zap.Error(err))
	}
	_ = c.Error(err)
	c.JSON(status, gin.H{"error": err.Error(), "code": codeFor(err)})
}

func statusFor(err error) int {
	switch {
	case stderrors.Is(err, core.ErrNotSampled):
		return http.StatusConflict
	case core.IsParamError(err):
		return http.StatusBadRequest
	}
	switch errors.GetCode(err) {
	case errors.CodeInvalidInput, errors.CodeValidationError:
		return http.StatusBadRequest
	case errors.CodeUnsupportedFile:
		return http.StatusUnsupportedMediaType
	case errors.CodeMalformedTable:
		return http.StatusUnprocessableEntity
	case errors.CodeNotFound:
		return http.StatusNotFound
	case errors.CodeConflict:
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

func codeFor(err error) string {
	if stderrors.Is(err, core.ErrNotSampled) {
		return errors.CodeConflict
	}
	if errors.IsAppError(err) {
		return errors.GetCode(err)
	}
	return errors.CodeInternalError
}
