package training

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/suite"

	"qcinsights/database"
	"qcinsights/importer"
	"qcinsights/internal/api/handlers/common"
	trainingapp "qcinsights/internal/application/training"
	"qcinsights/internal/domain/models"
	"qcinsights/internal/domain/repositories"
	trainingdomain "qcinsights/internal/domain/training"
	"qcinsights/internal/infrastructure/persistence"
	"qcinsights/server/middleware"
	"qcinsights/tables"
)

const wisCSV = "PMC Name,Page,QC Feedback,Category,US Team Member,India Team Member,Training Needed\n" +
	"Greystar,Home,Hero image missing on homepage,,Alice,Ravi,No\n" +
	"Greystar,Floor Plans,Apply Now button link goes to a 404 page,Link & URL Issues,Alice,Ravi,Yes\n"

// HandlerTestSuite тесты HTTP обработчиков на реальном сервисе и in-memory SQLite
type HandlerTestSuite struct {
	suite.Suite
	db     *database.TrainingDB
	router *gin.Engine
}

func (s *HandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)

	db, err := database.NewTrainingDB(":memory:")
	s.Require().NoError(err)
	s.db = db

	svc := trainingdomain.NewService(
		persistence.NewTrainingRecordRepository(db),
		persistence.NewPatternRepository(db),
		persistence.NewTrainingDataRepository(db),
		tables.Default(),
	)
	h := NewHandler(common.NewBaseHandlerImpl(), trainingapp.NewUseCase(svc), 1<<20)

	s.router = gin.New()
	s.router.Use(middleware.GinRequestIDMiddleware())
	api := s.router.Group("/api/training")
	api.POST("/import", h.HandleImport)
	api.POST("/import/rows", h.HandleImportRows)
	api.POST("/mine", h.HandleMine)
	api.POST("/classify", h.HandleClassify)
	api.GET("/stats", h.HandleStats)
	api.GET("/patterns", h.HandleListPatterns)
	api.GET("/patterns/:id", h.HandleGetPattern)
	api.GET("/suggestions", h.HandleSuggestions)
	api.DELETE("/data", h.HandleClear)
}

func (s *HandlerTestSuite) TearDownTest() {
	s.Require().NoError(s.db.Close())
}

func (s *HandlerTestSuite) do(method, path string, body []byte, contentType string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *HandlerTestSuite) upload(filename, content string, fields map[string]string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	s.Require().NoError(err)
	_, err = part.Write([]byte(content))
	s.Require().NoError(err)
	for k, v := range fields {
		s.Require().NoError(mw.WriteField(k, v))
	}
	s.Require().NoError(mw.Close())
	return s.do(http.MethodPost, "/api/training/import", buf.Bytes(), mw.FormDataContentType())
}

func (s *HandlerTestSuite) decode(w *httptest.ResponseRecorder, v any) {
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

// TestImportCSV проверяет импорт загруженного CSV и последующую статистику
func (s *HandlerTestSuite) TestImportCSV() {
	w := s.upload("wis_qc.csv", wisCSV, nil)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	var summary trainingdomain.ImportSummary
	s.decode(w, &summary)
	s.Equal(2, summary.TotalProcessed)
	s.Equal(2, summary.Successful)
	s.Equal(2, summary.Breakdown[models.SourceFormatWISQC])
	s.NotEmpty(summary.PatternSummary.TopPatterns)

	w = s.do(http.MethodGet, "/api/training/stats", nil, "")
	s.Require().Equal(http.StatusOK, w.Code)
	var stats trainingdomain.Stats
	s.decode(w, &stats)
	s.Equal(int64(2), stats.TotalRecords)
	s.Positive(stats.TotalPatterns)
}

func (s *HandlerTestSuite) TestImportRejectsUnsupportedExtension() {
	w := s.upload("feedback.pdf", "%PDF-1.4", nil)
	s.Equal(http.StatusBadRequest, w.Code)

	var resp middleware.ErrorResponse
	s.decode(w, &resp)
	s.True(resp.Error)
	s.Contains(resp.Message, ".pdf")
}

// TestImportRejectsOversizedFile проверяет ответ 413
func (s *HandlerTestSuite) TestImportRejectsOversizedFile() {
	big := wisCSV + strings.Repeat("Greystar,Home,"+strings.Repeat("x", 200)+",,A,B,No\n", 6000)
	w := s.upload("wis_qc.csv", big, nil)
	s.Equal(http.StatusRequestEntityTooLarge, w.Code)
}

func (s *HandlerTestSuite) TestImportRequiresFile() {
	w := s.do(http.MethodPost, "/api/training/import", nil, "")
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *HandlerTestSuite) TestImportRejectsUnknownFormatHint() {
	w := s.upload("notes.csv", wisCSV, map[string]string{"format": "XLS_DUMP"})
	s.Equal(http.StatusBadRequest, w.Code)
}

// TestImportRows проверяет JSON импорт с подсказкой формата для нераспознанного листа
func (s *HandlerTestSuite) TestImportRows() {
	body, err := json.Marshal(ImportRowsRequest{
		Name:   "export.json",
		Format: "client_feedback",
		Sheets: []importer.Sheet{{
			Name: "Sheet1",
			Rows: [][]any{
				{"Property", "Feedback", "Category"},
				{"Oak Park", "Please update the pet policy text on the amenities page", ""},
			},
		}},
	})
	s.Require().NoError(err)

	w := s.do(http.MethodPost, "/api/training/import/rows", body, "application/json")
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	var summary trainingdomain.ImportSummary
	s.decode(w, &summary)
	s.Equal(1, summary.Successful)
	s.Equal(1, summary.Breakdown[models.SourceFormatClientFeedback])
}

func (s *HandlerTestSuite) TestImportRowsEmptyWorkbook() {
	w := s.do(http.MethodPost, "/api/training/import/rows", []byte(`{"sheets":[]}`), "application/json")
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *HandlerTestSuite) TestClassify() {
	w := s.do(http.MethodPost, "/api/training/classify",
		[]byte(`{"text":"Hero image missing on homepage"}`), "application/json")
	s.Require().Equal(http.StatusOK, w.Code)

	var preview trainingdomain.ClassificationPreview
	s.decode(w, &preview)
	s.NotEmpty(preview.Category)
	s.NotEmpty(preview.Keywords)

	w = s.do(http.MethodPost, "/api/training/classify", []byte(`{}`), "application/json")
	s.Equal(http.StatusBadRequest, w.Code)

	w = s.do(http.MethodPost, "/api/training/classify", []byte(`{"text":"   "}`), "application/json")
	s.Equal(http.StatusBadRequest, w.Code)
}

// TestPatternsAndDetail проверяет список паттернов и детали по ID
func (s *HandlerTestSuite) TestPatternsAndDetail() {
	s.Require().Equal(http.StatusOK, s.upload("wis_qc.csv", wisCSV, nil).Code)

	w := s.do(http.MethodGet, "/api/training/patterns?active=true&limit=1", nil, "")
	s.Require().Equal(http.StatusOK, w.Code)
	var list PatternsResponse
	s.decode(w, &list)
	s.Require().Equal(1, list.Count)
	s.Require().Len(list.Patterns, 1)

	w = s.do(http.MethodGet, "/api/training/patterns/"+list.Patterns[0].ID, nil, "")
	s.Require().Equal(http.StatusOK, w.Code)
	var detail trainingdomain.PatternDetail
	s.decode(w, &detail)
	s.Equal(list.Patterns[0].ID, detail.Pattern.ID)
	s.NotEmpty(detail.RecentRecords)

	w = s.do(http.MethodGet, "/api/training/patterns/does-not-exist", nil, "")
	s.Equal(http.StatusNotFound, w.Code)
}

func (s *HandlerTestSuite) TestListPatternsValidatesQuery() {
	s.Equal(http.StatusBadRequest, s.do(http.MethodGet, "/api/training/patterns?limit=-1", nil, "").Code)
	s.Equal(http.StatusBadRequest, s.do(http.MethodGet, "/api/training/patterns?active=maybe", nil, "").Code)

	w := s.do(http.MethodGet, "/api/training/patterns", nil, "")
	s.Require().Equal(http.StatusOK, w.Code)
	s.JSONEq(`{"patterns":[],"count":0}`, w.Body.String())
}

func (s *HandlerTestSuite) TestMineAndSuggestions() {
	w := s.do(http.MethodPost, "/api/training/mine", nil, "")
	s.Require().Equal(http.StatusOK, w.Code)
	var result trainingdomain.MiningResult
	s.decode(w, &result)
	s.Zero(result.RecordsProcessed)

	s.Require().Equal(http.StatusOK, s.upload("wis_qc.csv", wisCSV, nil).Code)
	w = s.do(http.MethodGet, "/api/training/suggestions", nil, "")
	s.Require().Equal(http.StatusOK, w.Code)
	var resp SuggestionsResponse
	s.decode(w, &resp)
	s.NotEmpty(resp.Suggestions)
}

// TestClearRequiresConfirmation проверяет, что удаление без confirm=true отклоняется
func (s *HandlerTestSuite) TestClearRequiresConfirmation() {
	s.Require().Equal(http.StatusOK, s.upload("wis_qc.csv", wisCSV, nil).Code)

	w := s.do(http.MethodDelete, "/api/training/data", nil, "")
	s.Equal(http.StatusBadRequest, w.Code)

	w = s.do(http.MethodDelete, "/api/training/data?confirm=true", nil, "")
	s.Require().Equal(http.StatusOK, w.Code)
	var result repositories.ClearResult
	s.decode(w, &result)
	s.Equal(int64(2), result.RecordsDeleted)
	s.Positive(result.PatternsDeleted)
}

func TestHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(HandlerTestSuite))
}
