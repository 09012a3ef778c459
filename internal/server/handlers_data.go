package server

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"okrpilot/internal/docx"
	"okrpilot/internal/domain"
	"okrpilot/internal/goalmap"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": "OKR Pilot",
	})
}

type goalListItem struct {
	ID         string  `json:"id"`
	Code       string  `json:"code"`
	Name       string  `json:"name"`
	Priority   string  `json:"priority"`
	Progress   float64 `json:"progress"`
	PeriodName string  `json:"period_name"`
	StatusName string  `json:"status_name"`
}

type dataLoadResponse struct {
	GoalsMap    *domain.GoalsMap `json:"goals_map"`
	DocxContent *string          `json:"docx_content"`
	GoalsList   []goalListItem   `json:"goals_list"`
	MapSummary  string           `json:"map_summary"`
}

func buildDataResponse(m *domain.GoalsMap, docxText *string) dataLoadResponse {
	list := make([]goalListItem, 0, len(m.Nodes))
	for _, n := range m.Nodes {
		list = append(list, goalListItem{
			ID:         n.ID,
			Code:       n.Code,
			Name:       n.Name,
			Priority:   n.Priority,
			Progress:   n.Progress,
			PeriodName: n.PeriodName,
			StatusName: n.StatusName,
		})
	}
	return dataLoadResponse{
		GoalsMap:    m,
		DocxContent: docxText,
		GoalsList:   list,
		MapSummary: fmt.Sprintf("Карта: %s | Целей: %d | Прогресс: %.1f%%",
			m.MapName, len(m.Nodes), m.TotalProgress),
	}
}

// handleTestData loads the bundled sample map (Ario.json plus optional
// Ario.docx) from the data directory.
func (s *Server) handleTestData(w http.ResponseWriter, r *http.Request) {
	jsonPath := filepath.Join(s.cfg.DataDir, "Ario.json")
	data, err := os.ReadFile(jsonPath)
	if err != nil {
		writeError(w, http.StatusNotFound,
			fmt.Sprintf("тестовый файл Ario.json не найден в %s", s.cfg.DataDir))
		return
	}

	m, err := goalmap.Parse(data)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	// The DOCX companion is optional and never blocks loading.
	var docxText *string
	if text, err := docx.ExtractFile(filepath.Join(s.cfg.DataDir, "Ario.docx")); err == nil {
		docxText = &text
	} else {
		s.log.Debug("sample docx unavailable", zap.Error(err))
	}

	s.logUsage(r, "/api/data/test", nil)
	writeJSON(w, http.StatusOK, buildDataResponse(m, docxText))
}

// handleUpload accepts a goals-map JSON (as a file or a form field)
// with an optional DOCX description.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "некорректные форм-данные")
		return
	}

	var rawJSON []byte
	if file, _, err := r.FormFile("json_file"); err == nil {
		rawJSON, err = io.ReadAll(file)
		file.Close()
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, "не удалось прочитать JSON-файл")
			return
		}
	} else if text := r.FormValue("json_text"); text != "" {
		rawJSON = []byte(text)
	}

	if len(rawJSON) == 0 {
		writeError(w, http.StatusUnprocessableEntity,
			"необходимо предоставить JSON-файл или текст карты целей")
		return
	}

	m, err := goalmap.Parse(rawJSON)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	var docxText *string
	if file, _, err := r.FormFile("docx_file"); err == nil {
		docxBytes, readErr := io.ReadAll(file)
		file.Close()
		if readErr == nil {
			if text, extractErr := docx.ExtractBytes(docxBytes); extractErr == nil {
				docxText = &text
			} else {
				s.log.Debug("uploaded docx rejected", zap.Error(extractErr))
			}
		}
	}

	s.logUsage(r, "/api/data/upload", nil)
	writeJSON(w, http.StatusOK, buildDataResponse(m, docxText))
}
