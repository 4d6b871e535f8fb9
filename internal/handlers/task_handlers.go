package handlers

import (
	"encoding/json"
	"fmt"
	"mime"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"tiktask/internal/auth"
	"tiktask/internal/handlers/dto"
	"tiktask/internal/logger"
	"tiktask/internal/middleware"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const maxAttachments = 10
const maxAttachmentSize = 10 << 20 // 10 MB
const maxMultipartMemory = 32 << 20

type TaskHandler struct {
	service TaskService
}

func NewTaskHandler(service TaskService) *TaskHandler {
	return &TaskHandler{service: service}
}

func (h *TaskHandler) GetTasks(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		responseWithError(w, http.StatusUnauthorized, "No token provided")
		return
	}

	tasks, err := h.service.Tasks(r.Context(), claims.UserID, parseFilters(r.URL.Query()))
	if err != nil {
		respondServiceError(w, err, "get_tasks")
		return
	}

	writeJSON(w, http.StatusOK, dto.FromTaskList(tasks))
}

// GetAllTasks — админский список, маршрут закрыт middleware.AdminOnly
func (h *TaskHandler) GetAllTasks(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	tasks, err := h.service.AllTasks(r.Context(), parseFilters(r.URL.Query()))
	if err != nil {
		respondServiceError(w, err, "get_all_tasks")
		return
	}

	writeJSON(w, http.StatusOK, dto.FromTaskList(tasks))
}

func (h *TaskHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		responseWithError(w, http.StatusUnauthorized, "No token provided")
		return
	}

	view := r.URL.Query().Get("view")
	stats, err := h.service.Stats(r.Context(), claims, view, parseFilters(r.URL.Query()))
	if err != nil {
		respondServiceError(w, err, "get_stats")
		return
	}

	writeJSON(w, http.StatusOK, stats)
}

func (h *TaskHandler) PostTask(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		responseWithError(w, http.StatusUnauthorized, "No token provided")
		return
	}

	form, err := readTaskForm(r)
	if err != nil {
		logger.Warn("HTTP: Ошибка разбора формы", zap.Error(err))
		responseWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	created, err := h.service.CreateTask(r.Context(), claims.UserID, form.title, form.description, form.dueDate, form.uploads)
	if err != nil {
		respondServiceError(w, err, "create_task")
		return
	}

	logger.Info("HTTP_OUT: Задача создана",
		zap.Int64("task_id", created.ID),
		zap.Int("attachments", len(form.uploads)),
		zap.Duration("ms", time.Since(start)))

	writeJSON(w, http.StatusCreated, dto.FromTask(created))
}

func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	claims, id, ok := h.actorAndID(w, r)
	if !ok {
		return
	}

	form, err := readTaskForm(r)
	if err != nil {
		logger.Warn("HTTP: Ошибка разбора формы", zap.Error(err))
		responseWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	updated, err := h.service.UpdateTask(r.Context(), claims, id, form.title, form.description, form.dueDate, form.uploads)
	if err != nil {
		respondServiceError(w, err, "update_task")
		return
	}

	logger.Info("HTTP_OUT: Задача обновлена",
		zap.Int64("task_id", id),
		zap.Duration("ms", time.Since(start)))

	writeJSON(w, http.StatusOK, dto.FromTask(updated))
}

func (h *TaskHandler) ToggleComplete(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	claims, id, ok := h.actorAndID(w, r)
	if !ok {
		return
	}

	toggled, err := h.service.ToggleComplete(r.Context(), claims, id)
	if err != nil {
		respondServiceError(w, err, "toggle_complete")
		return
	}

	writeJSON(w, http.StatusOK, dto.FromTask(toggled))
}

func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	claims, id, ok := h.actorAndID(w, r)
	if !ok {
		return
	}

	if err := h.service.DeleteTask(r.Context(), claims, id); err != nil {
		respondServiceError(w, err, "delete_task")
		return
	}

	responseWithJSON(w, http.StatusOK, toPayload("message", "Task deleted successfully"))
}

func (h *TaskHandler) DeleteAttachment(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	claims, id, ok := h.actorAndID(w, r)
	if !ok {
		return
	}

	attachmentID, err := strconv.ParseInt(chi.URLParam(r, "attachmentId"), 10, 64)
	if err != nil {
		responseWithError(w, http.StatusBadRequest, "Invalid attachment id")
		return
	}

	remaining, err := h.service.DeleteAttachment(r.Context(), claims, id, attachmentID)
	if err != nil {
		respondServiceError(w, err, "delete_attachment")
		return
	}

	responseWithJSON(w, http.StatusOK,
		toPayload("message", "Attachment deleted successfully"),
		toPayload("attachments", remaining),
	)
}

func (h *TaskHandler) actorAndID(w http.ResponseWriter, r *http.Request) (*auth.Claims, int64, bool) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		responseWithError(w, http.StatusUnauthorized, "No token provided")
		return nil, 0, false
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		logger.Warn("HTTP: Неверное значение id", zap.String("id", chi.URLParam(r, "id")))
		responseWithError(w, http.StatusBadRequest, "Invalid task id")
		return nil, 0, false
	}

	return claims, id, true
}

type taskForm struct {
	title       string
	description string
	dueDate     string
	uploads     []*multipart.FileHeader
}

// readTaskForm принимает multipart-форму с файлами или обычный JSON.
// Лимиты: не больше 10 файлов по 10 МБ каждый.
func readTaskForm(r *http.Request) (taskForm, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	if mediaType == "multipart/form-data" {
		if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
			return taskForm{}, fmt.Errorf("invalid multipart form")
		}

		uploads := r.MultipartForm.File["attachments"]
		if len(uploads) > maxAttachments {
			return taskForm{}, fmt.Errorf("too many files, maximum is %d", maxAttachments)
		}
		for _, fh := range uploads {
			if fh.Size > maxAttachmentSize {
				return taskForm{}, fmt.Errorf("file %s is too large, maximum is 10 MB", fh.Filename)
			}
		}

		return taskForm{
			title:       r.FormValue("title"),
			description: r.FormValue("description"),
			dueDate:     r.FormValue("due_date"),
			uploads:     uploads,
		}, nil
	}

	var request dto.TaskRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		return taskForm{}, fmt.Errorf("invalid request body")
	}
	return taskForm{
		title:       request.Title,
		description: request.Description,
		dueDate:     request.DueDate,
	}, nil
}
