package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"triage/pkg/core"
)

// indexData feeds the intake form template.
type indexData struct {
	CommonSymptoms []string
}

func (s *Server) handleIndex(c echo.Context) error {
	return c.Render(http.StatusOK, "index.html", indexData{
		CommonSymptoms: s.provider.KB().CommonSymptoms(),
	})
}

func (s *Server) handleSymptoms(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"symptoms": s.provider.KB().CommonSymptoms(),
	})
}

// handleAssess accepts a JSON intake or a (multipart) form submission,
// runs the engine and persists the assessment. Browser form posts are
// redirected to the result page; API callers get the assessment back.
func (s *Server) handleAssess(c echo.Context) error {
	in, err := s.bindIntake(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	a, err := s.svc.Assess(c.Request().Context(), in)
	if err != nil {
		return fmt.Errorf("assessment failed: %w", err)
	}

	if wantsHTML(c) {
		return c.Redirect(http.StatusSeeOther, "/result/"+a.ID)
	}
	return c.JSON(http.StatusCreated, a)
}

// bindIntake extracts an Intake from either a JSON body or form values
// (mirroring the field names of the intake form).
func (s *Server) bindIntake(c echo.Context) (core.Intake, error) {
	contentType := c.Request().Header.Get(echo.HeaderContentType)

	if strings.HasPrefix(contentType, echo.MIMEApplicationJSON) {
		var in core.Intake
		if err := json.NewDecoder(c.Request().Body).Decode(&in); err != nil {
			return core.Intake{}, fmt.Errorf("invalid intake body: %w", err)
		}
		return in, nil
	}

	in := core.Intake{
		Text:     c.FormValue("symptoms_text"),
		Duration: c.FormValue("duration"),
		Severity: c.FormValue("severity"),
		Age:      c.FormValue("age"),
		Sex:      c.FormValue("sex"),
	}
	if form, err := c.FormParams(); err == nil {
		in.Checked = form["symptoms_check"]
	}

	file, err := c.FormFile("image")
	if err == nil && file != nil && file.Filename != "" {
		stored, err := s.saveUpload(file)
		if err != nil {
			return core.Intake{}, err
		}
		in.Image = stored
	}

	return in, nil
}

func (s *Server) handleResultPage(c echo.Context) error {
	a, err := s.svc.GetAssessment(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "assessment not found")
		}
		return err
	}
	return c.Render(http.StatusOK, "result.html", a)
}

func (s *Server) handleListAssessments(c echo.Context) error {
	all, err := s.svc.ListAssessments(c.Request().Context())
	if err != nil {
		return err
	}

	summaries := make([]core.Summary, 0, len(all))
	for _, a := range all {
		summaries = append(summaries, a.Summarize())
	}
	return c.JSON(http.StatusOK, map[string]any{"assessments": summaries})
}

func (s *Server) handleGetAssessment(c echo.Context) error {
	a, err := s.svc.GetAssessment(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "assessment not found")
		}
		return err
	}
	return c.JSON(http.StatusOK, a)
}

func (s *Server) handleDeleteAssessment(c echo.Context) error {
	err := s.svc.DeleteAssessment(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "assessment not found")
		}
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// handleExportAssessment downloads the assessment as a standalone report
// file.
func (s *Server) handleExportAssessment(c echo.Context) error {
	a, err := s.svc.GetAssessment(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "assessment not found")
		}
		return err
	}

	data, err := json.MarshalIndent(a, "", "  ")
	if err != nil {
		return err
	}

	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename="report_%s.json"`, a.ID))
	return c.Blob(http.StatusOK, echo.MIMEApplicationJSON, data)
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"status":         "ok",
		"service":        s.svc.State(),
		"knowledge_base": s.provider.State(),
	})
}

// wantsHTML reports whether the caller is a browser form post rather than
// an API client.
func wantsHTML(c echo.Context) bool {
	return strings.Contains(c.Request().Header.Get("Accept"), echo.MIMETextHTML)
}
