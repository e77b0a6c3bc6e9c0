package training

import (
	"errors"
	"log/slog"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"qcinsights/importer"
	"qcinsights/internal/api/handlers/common"
	trainingapp "qcinsights/internal/application/training"
	"qcinsights/internal/domain/models"
	trainingdomain "qcinsights/internal/domain/training"
	apperrors "qcinsights/server/errors"
	"qcinsights/server/middleware"
)

// allowedExtensions расширения файлов, принимаемые импортом
var allowedExtensions = map[string]bool{
	".xlsx": true,
	".xlsm": true,
	".xltx": true,
	".csv":  true,
	".json": true,
}

// ImportRowsRequest книга, уже разобранная клиентом на листы и строки
type ImportRowsRequest struct {
	Name   string           `json:"name"`
	Format string           `json:"format,omitempty" example:"WIS_QC"`
	Sheets []importer.Sheet `json:"sheets"`
}

// ClassifyRequest текст для предпросмотра классификации
type ClassifyRequest struct {
	Text string `json:"text" binding:"required" example:"Hero image missing on homepage"`
}

// PatternsResponse список паттернов
type PatternsResponse struct {
	Patterns []models.Pattern `json:"patterns"`
	Count    int              `json:"count"`
}

// SuggestionsResponse список рекомендаций
type SuggestionsResponse struct {
	Suggestions []trainingdomain.Suggestion `json:"suggestions"`
}

// Handler HTTP обработчик пайплайна обучения
type Handler struct {
	baseHandler    common.BaseHandlerInterface
	useCase        *trainingapp.UseCase
	maxUploadBytes int64
}

// NewHandler создает новый HTTP обработчик
func NewHandler(baseHandler common.BaseHandlerInterface, useCase *trainingapp.UseCase, maxUploadBytes int64) *Handler {
	return &Handler{
		baseHandler:    baseHandler,
		useCase:        useCase,
		maxUploadBytes: maxUploadBytes,
	}
}

// HandleImport импортирует загруженный файл книги
// @Summary Импортировать таблицу QC-фидбэка
// @Description Принимает xlsx, csv или json. Листы с нераспознанным форматом пропускаются с предупреждением.
// @Tags training
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Файл книги"
// @Param format formData string false "Формат для нераспознанных листов (WIS_QC, BUILD_REVIEW, CLIENT_FEEDBACK)"
// @Success 200 {object} trainingdomain.ImportSummary "Итог импорта"
// @Failure 400 {object} middleware.ErrorResponse "Неверный файл"
// @Failure 413 {object} middleware.ErrorResponse "Файл слишком большой"
// @Failure 429 {object} middleware.ErrorResponse "Превышен лимит запросов"
// @Failure 500 {object} middleware.ErrorResponse "Внутренняя ошибка сервера"
// @Router /api/training/import [post]
func (h *Handler) HandleImport(c *gin.Context) {
	if h.maxUploadBytes > 0 {
		// Запас на служебные части multipart
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes+1<<20)
	}

	header, err := c.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			h.baseHandler.HandleError(c, apperrors.NewPayloadTooLargeError("file is too large", err))
			return
		}
		h.baseHandler.HandleError(c, apperrors.NewValidationError("file is required", err))
		return
	}
	if h.maxUploadBytes > 0 && header.Size > h.maxUploadBytes {
		h.baseHandler.HandleError(c, apperrors.NewPayloadTooLargeError(
			"file is too large: limit is "+strconv.FormatInt(h.maxUploadBytes>>20, 10)+" MB", nil))
		return
	}
	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !allowedExtensions[ext] {
		h.baseHandler.HandleError(c, apperrors.NewValidationError("unsupported file type "+ext, importer.ErrUnsupportedFile))
		return
	}

	file, err := header.Open()
	if err != nil {
		h.baseHandler.HandleError(c, apperrors.NewInternalError("failed to open uploaded file", err))
		return
	}
	defer file.Close()

	slog.Info("training import received",
		"filename", header.Filename,
		"size", header.Size,
		"request_id", middleware.GetRequestIDFromGin(c),
	)
	summary, err := h.useCase.ImportFile(c.Request.Context(), file, header.Filename, c.PostForm("format"))
	if err != nil {
		h.baseHandler.HandleError(c, mapError(err).WithContext("file="+header.Filename))
		return
	}
	h.baseHandler.SendJSONResponse(c, http.StatusOK, summary)
}

// HandleImportRows импортирует книгу в JSON
// @Summary Импортировать книгу в JSON
// @Description Листы и строки передаются как есть: первая строка листа является заголовком
// @Tags training
// @Accept json
// @Produce json
// @Param request body ImportRowsRequest true "Книга"
// @Success 200 {object} trainingdomain.ImportSummary "Итог импорта"
// @Failure 400 {object} middleware.ErrorResponse "Неверный запрос"
// @Failure 500 {object} middleware.ErrorResponse "Внутренняя ошибка сервера"
// @Router /api/training/import/rows [post]
func (h *Handler) HandleImportRows(c *gin.Context) {
	var req ImportRowsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.baseHandler.HandleError(c, apperrors.NewValidationError("invalid request body", err))
		return
	}

	wb := &importer.Workbook{Name: req.Name, Sheets: req.Sheets}
	summary, err := h.useCase.ImportWorkbook(c.Request.Context(), wb, req.Format)
	if err != nil {
		h.baseHandler.HandleError(c, mapError(err))
		return
	}
	h.baseHandler.SendJSONResponse(c, http.StatusOK, summary)
}

// HandleMine запускает майнинг паттернов
// @Summary Запустить майнинг паттернов
// @Tags training
// @Produce json
// @Success 200 {object} trainingdomain.MiningResult
// @Failure 500 {object} middleware.ErrorResponse
// @Router /api/training/mine [post]
func (h *Handler) HandleMine(c *gin.Context) {
	result, err := h.useCase.MinePatterns(c.Request.Context())
	if err != nil {
		h.baseHandler.HandleError(c, mapError(err))
		return
	}
	h.baseHandler.SendJSONResponse(c, http.StatusOK, result)
}

// HandleClassify показывает категорию и ключевые слова для текста
// @Summary Предпросмотр классификации
// @Tags training
// @Accept json
// @Produce json
// @Param request body ClassifyRequest true "Текст"
// @Success 200 {object} trainingdomain.ClassificationPreview
// @Failure 400 {object} middleware.ErrorResponse
// @Router /api/training/classify [post]
func (h *Handler) HandleClassify(c *gin.Context) {
	var req ClassifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.baseHandler.HandleError(c, apperrors.NewValidationError("text is required", err))
		return
	}
	preview, err := h.useCase.Classify(c.Request.Context(), req.Text)
	if err != nil {
		h.baseHandler.HandleError(c, mapError(err))
		return
	}
	h.baseHandler.SendJSONResponse(c, http.StatusOK, preview)
}

// HandleStats возвращает статистику
// @Summary Статистика записей и паттернов
// @Tags training
// @Produce json
// @Success 200 {object} trainingdomain.Stats
// @Failure 500 {object} middleware.ErrorResponse
// @Router /api/training/stats [get]
func (h *Handler) HandleStats(c *gin.Context) {
	stats, err := h.useCase.GetStats(c.Request.Context())
	if err != nil {
		h.baseHandler.HandleError(c, mapError(err))
		return
	}
	h.baseHandler.SendJSONResponse(c, http.StatusOK, stats)
}

// HandleListPatterns возвращает паттерны по убыванию числа вхождений
// @Summary Список паттернов
// @Tags training
// @Produce json
// @Param active query bool false "Только активные"
// @Param limit query int false "Максимум паттернов"
// @Success 200 {object} PatternsResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Router /api/training/patterns [get]
func (h *Handler) HandleListPatterns(c *gin.Context) {
	activeOnly := false
	if v := c.Query("active"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			h.baseHandler.HandleError(c, apperrors.NewValidationError("invalid active flag", err))
			return
		}
		activeOnly = b
	}
	limit := 0
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			h.baseHandler.HandleError(c, apperrors.NewValidationError("invalid limit", err))
			return
		}
		limit = n
	}

	patterns, err := h.useCase.ListPatterns(c.Request.Context(), activeOnly, limit)
	if err != nil {
		h.baseHandler.HandleError(c, mapError(err))
		return
	}
	h.baseHandler.SendJSONResponse(c, http.StatusOK, PatternsResponse{Patterns: patterns, Count: len(patterns)})
}

// HandleGetPattern возвращает паттерн с последними записями
// @Summary Детали паттерна
// @Tags training
// @Produce json
// @Param id path string true "ID паттерна"
// @Success 200 {object} trainingdomain.PatternDetail
// @Failure 404 {object} middleware.ErrorResponse
// @Router /api/training/patterns/{id} [get]
func (h *Handler) HandleGetPattern(c *gin.Context) {
	detail, err := h.useCase.GetPatternDetail(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.baseHandler.HandleError(c, mapError(err))
		return
	}
	h.baseHandler.SendJSONResponse(c, http.StatusOK, detail)
}

// HandleSuggestions возвращает рекомендации
// @Summary Рекомендации по паттернам
// @Tags training
// @Produce json
// @Success 200 {object} SuggestionsResponse
// @Failure 500 {object} middleware.ErrorResponse
// @Router /api/training/suggestions [get]
func (h *Handler) HandleSuggestions(c *gin.Context) {
	suggestions, err := h.useCase.GetSuggestions(c.Request.Context())
	if err != nil {
		h.baseHandler.HandleError(c, mapError(err))
		return
	}
	h.baseHandler.SendJSONResponse(c, http.StatusOK, SuggestionsResponse{Suggestions: suggestions})
}

// HandleClear удаляет все записи и паттерны. Требует confirm=true.
// @Summary Удалить все данные обучения
// @Description Необратимо удаляет все записи и паттерны
// @Tags training
// @Produce json
// @Param confirm query bool true "Подтверждение удаления"
// @Success 200 {object} repositories.ClearResult
// @Failure 400 {object} middleware.ErrorResponse
// @Router /api/training/data [delete]
func (h *Handler) HandleClear(c *gin.Context) {
	if ok, _ := strconv.ParseBool(c.Query("confirm")); !ok {
		h.baseHandler.SendJSONError(c, http.StatusBadRequest, "confirm=true is required to delete training data")
		return
	}
	result, err := h.useCase.ClearAll(c.Request.Context())
	if err != nil {
		h.baseHandler.HandleError(c, mapError(err))
		return
	}
	h.baseHandler.SendJSONResponse(c, http.StatusOK, result)
}

// mapError переводит ошибки домена в ошибки HTTP
func mapError(err error) *apperrors.AppError {
	switch {
	case errors.Is(err, trainingdomain.ErrPatternNotFound):
		return apperrors.NewNotFoundError("pattern not found", err)
	case errors.Is(err, trainingdomain.ErrInvalidFormat),
		errors.Is(err, trainingdomain.ErrEmptyWorkbook),
		errors.Is(err, trainingdomain.ErrUnreadableWorkbook),
		errors.Is(err, trainingdomain.ErrEmptyText),
		errors.Is(err, importer.ErrUnsupportedFile):
		return apperrors.NewValidationError(err.Error(), err)
	default:
		return apperrors.WrapError(err, "training request failed")
	}
}
