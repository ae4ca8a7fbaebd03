package ui

import (
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"

	"idsampler/domain/run"
	"idsampler/internal/profiling"
)

type indexPage struct {
	Title             string
	Version           string
	Run               *run.Context
	Summary           profiling.Summary
	DefaultSampleSize int
	Sampled           bool
	Rejected          bool
}

type aboutPage struct {
	Title   string
	Version string
	Body    template.HTML
}

func (s *Server) handleIndex(c *gin.Context) {
	rc := s.runs.Snapshot()
	sampleSize := s.config.DefaultSampleSize
	if rc.Params.SampleSize > 0 {
		sampleSize = rc.Params.SampleSize
	}

	s.renderTemplate(c, http.StatusOK, "index.html", indexPage{
		Title:             "ID Sampling Tool",
		Version:           s.config.Version,
		Run:               rc,
		Summary:           profiling.Summarize(rc),
		DefaultSampleSize: sampleSize,
		Sampled:           rc.State == run.StateSampled,
		Rejected:          rc.State == run.StateRejected,
	})
}

func (s *Server) handleAbout(c *gin.Context) {
	s.renderTemplate(c, http.StatusOK, "about.html", aboutPage{
		Title:   "About the ID Sampling Tool",
		Version: s.config.Version,
		Body:    s.about,
	})
}
