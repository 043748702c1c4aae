package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"exambank/internal/app"
	"exambank/internal/domain"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

type ExamHandler struct {
	service  *app.ExamService
	validate *validator.Validate
	log      logrus.FieldLogger
}

func NewExamHandler(service *app.ExamService, log logrus.FieldLogger) *ExamHandler {
	return &ExamHandler{
		service:  service,
		validate: validator.New(),
		log:      log.WithField("component", "http"),
	}
}

// Register mounts the exam routes on r.
func (h *ExamHandler) Register(r *mux.Router) {
	r.HandleFunc("/exams", h.list).Methods(http.MethodGet)
	r.HandleFunc("/exams", h.create).Methods(http.MethodPost)
	r.HandleFunc("/exams/{id}", h.get).Methods(http.MethodGet)
	r.HandleFunc("/exams/{id}", h.update).Methods(http.MethodPatch, http.MethodPut)
	r.HandleFunc("/exams/{id}", h.delete).Methods(http.MethodDelete)
}

type questionPayload struct {
	Question string `json:"question" validate:"required"`
	Answer   string `json:"answer" validate:"required"`
}

type createExamRequest struct {
	Name      string            `json:"name" validate:"required"`
	Questions []questionPayload `json:"questions" validate:"required,min=1,max=60,dive"`
}

type updateExamRequest struct {
	Name             *string            `json:"name"`
	Questions        *[]questionPayload `json:"questions"`
	ExpectedRevision *int64             `json:"expectedRevision"`
}

// examView is an exam with the subset of its questions matching Term.
// Questions and QuestionCount still describe the whole exam.
type examView struct {
	domain.Exam
	Term    string            `json:"term"`
	Matches []domain.Question `json:"matches"`
}

type writeResponse struct {
	OK      bool   `json:"ok"`
	Status  string `json:"status"`
	Warning string `json:"warning,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (h *ExamHandler) list(w http.ResponseWriter, r *http.Request) {
	term := r.URL.Query().Get("q")
	if strings.TrimSpace(term) == "" {
		writeJSON(w, http.StatusOK, h.service.ListAll(r.Context()))
		return
	}
	writeJSON(w, http.StatusOK, h.service.Search(r.Context(), term))
}

func (h *ExamHandler) create(w http.ResponseWriter, r *http.Request) {
	var req createExamRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	for i := range req.Questions {
		req.Questions[i] = trimQuestion(req.Questions[i])
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	id, err := h.service.Create(r.Context(), req.Name, toQuestions(req.Questions))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not save exam")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

func (h *ExamHandler) get(w http.ResponseWriter, r *http.Request) {
	exam, err := h.service.GetByID(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	term := r.URL.Query().Get("q")
	if strings.TrimSpace(term) == "" {
		writeJSON(w, http.StatusOK, exam)
		return
	}
	writeJSON(w, http.StatusOK, examView{
		Exam:    exam,
		Term:    term,
		Matches: h.service.FilterQuestions(exam, term),
	})
}

func (h *ExamHandler) update(w http.ResponseWriter, r *http.Request) {
	var req updateExamRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	patch := domain.ExamPatch{ExpectedRevision: req.ExpectedRevision}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			writeError(w, http.StatusBadRequest, "name must not be blank")
			return
		}
		patch.Name = &name
	}
	if req.Questions != nil {
		payload := *req.Questions
		for i := range payload {
			payload[i] = trimQuestion(payload[i])
		}
		if err := h.validate.Var(payload, "min=1,max=60,dive"); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		questions := toQuestions(payload)
		patch.Questions = &questions
	}

	h.writeResult(w, h.service.Update(r.Context(), mux.Vars(r)["id"], patch))
}

func (h *ExamHandler) delete(w http.ResponseWriter, r *http.Request) {
	h.writeResult(w, h.service.Delete(r.Context(), mux.Vars(r)["id"]))
}

func (h *ExamHandler) writeResult(w http.ResponseWriter, result app.WriteResult) {
	if !result.OK() {
		status := http.StatusBadGateway
		switch {
		case errors.Is(result.Err, domain.ErrRevisionConflict):
			status = http.StatusConflict
		case errors.Is(result.Err, domain.ErrExamNotFound):
			status = http.StatusNotFound
		}
		writeError(w, status, result.Err.Error())
		return
	}
	resp := writeResponse{OK: true, Status: string(result.Status)}
	if result.Err != nil {
		resp.Warning = result.Err.Error()
	}
	writeJSON(w, http.StatusOK, resp)
}

func trimQuestion(q questionPayload) questionPayload {
	return questionPayload{
		Question: strings.TrimSpace(q.Question),
		Answer:   strings.TrimSpace(q.Answer),
	}
}

func toQuestions(payload []questionPayload) []domain.Question {
	questions := make([]domain.Question, len(payload))
	for i, q := range payload {
		questions[i] = domain.Question{Question: q.Question, Answer: q.Answer}
	}
	return questions
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
