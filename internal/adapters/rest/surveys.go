package rest

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/moodfuse-labs/moodfuse/internal/core/domain"
)

const errCodeSurveyNotFound = "SURVEY_NOT_FOUND"

type fusionOutcomeRequest struct {
	SurveyDominantEmotion     string    `json:"surveyDominantEmotion"`
	ExpressionDominantEmotion string    `json:"expressionDominantEmotion"`
	DominantEmotion           string    `json:"dominantEmotion"`
	Scores                    []float64 `json:"scores"`
	FrameCount                int       `json:"frameCount"`
}

type createSurveyRequest struct {
	UserID int    `json:"userId"`
	Date   string `json:"date"`
	Name   string `json:"name"`
	Age    int    `json:"age"`
	surveyAnswersRequest
	Result *fusionOutcomeRequest `json:"result,omitempty"`
}

type fusionOutcomeResponse struct {
	SurveyDominantEmotion     string    `json:"surveyDominantEmotion"`
	ExpressionDominantEmotion string    `json:"expressionDominantEmotion"`
	DominantEmotion           string    `json:"dominantEmotion"`
	Scores                    []float64 `json:"scores"`
	FrameCount                int       `json:"frameCount"`
}

type surveyResponse struct {
	ID        string                 `json:"id"`
	UserID    int                    `json:"userId"`
	Date      string                 `json:"date"`
	Name      string                 `json:"name"`
	Age       int                    `json:"age"`
	Question1 int                    `json:"question1"`
	Question2 int                    `json:"question2"`
	Question3 int                    `json:"question3"`
	Question4 int                    `json:"question4"`
	Question5 int                    `json:"question5"`
	Question6 int                    `json:"question6"`
	Question7 int                    `json:"question7"`
	Question8 int                    `json:"question8"`
	IsViewed  bool                   `json:"isViewed"`
	Result    *fusionOutcomeResponse `json:"result,omitempty"`
	CreatedAt time.Time              `json:"createdAt"`
}

type listSurveysResponse struct {
	Surveys    []surveyResponse `json:"surveys"`
	Page       int              `json:"page"`
	Limit      int              `json:"limit"`
	Total      int              `json:"total"`
	TotalPages int              `json:"totalPages"`
}

// parseLabel accepts both the canonical and the presentation channel name.
func parseLabel(label string) (domain.Channel, bool) {
	if strings.EqualFold(label, "angry") {
		return domain.Anger, true
	}
	return domain.ParseChannel(strings.ToLower(label))
}

func (r *fusionOutcomeRequest) toOutcome() (*domain.FusionOutcome, error) {
	out := &domain.FusionOutcome{FrameCount: r.FrameCount}
	var ok bool
	if out.SurveyDominant, ok = parseLabel(r.SurveyDominantEmotion); !ok {
		return nil, errors.New("unknown surveyDominantEmotion")
	}
	if out.ExpressionDominant, ok = parseLabel(r.ExpressionDominantEmotion); !ok {
		return nil, errors.New("unknown expressionDominantEmotion")
	}
	if out.TotalDominant, ok = parseLabel(r.DominantEmotion); !ok {
		return nil, errors.New("unknown dominantEmotion")
	}
	scores, err := domain.NewEmotionVector(r.Scores)
	if err != nil {
		return nil, err
	}
	out.TotalScores = scores
	return out, nil
}

func toSurveyResponse(s domain.Survey) surveyResponse {
	resp := surveyResponse{
		ID:        s.ID,
		UserID:    s.UserID,
		Date:      s.Date,
		Name:      s.Name,
		Age:       s.Age,
		Question1: s.Answers[1],
		Question2: s.Answers[2],
		Question3: s.Answers[3],
		Question4: s.Answers[4],
		Question5: s.Answers[5],
		Question6: s.Answers[6],
		Question7: s.Answers[7],
		Question8: s.Answers[8],
		IsViewed:  s.IsViewed,
		CreatedAt: s.CreatedAt,
	}
	if s.Outcome != nil {
		resp.Result = &fusionOutcomeResponse{
			SurveyDominantEmotion:     channelLabel(s.Outcome.SurveyDominant),
			ExpressionDominantEmotion: channelLabel(s.Outcome.ExpressionDominant),
			DominantEmotion:           channelLabel(s.Outcome.TotalDominant),
			Scores:                    s.Outcome.TotalScores.Slice(),
			FrameCount:                s.Outcome.FrameCount,
		}
	}
	return resp
}

// CreateSurvey handles POST /surveys
func (h *Handler) CreateSurvey(w http.ResponseWriter, r *http.Request) {
	if !isJSONContentType(r) {
		writeError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
		return
	}

	var req createSurveyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	survey := domain.Survey{
		UserID:  req.UserID,
		Date:    req.Date,
		Name:    req.Name,
		Age:     req.Age,
		Answers: req.toAnswers(),
	}
	if req.Result != nil {
		outcome, err := req.Result.toOutcome()
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid fusion result: "+err.Error())
			return
		}
		survey.Outcome = outcome
	}

	saved, err := h.svc.CreateSurvey(r.Context(), survey)
	if err != nil {
		if strings.Contains(err.Error(), "invalid survey") {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Location", "/surveys/"+saved.ID)
	writeJSON(w, http.StatusCreated, toSurveyResponse(saved))
}

// ListSurveys handles GET /surveys
func (h *Handler) ListSurveys(w http.ResponseWriter, r *http.Request) {
	page := queryInt(r, "page", 1)
	limit := queryInt(r, "limit", 10)
	if page < 1 {
		writeError(w, http.StatusBadRequest, "page must be a positive integer")
		return
	}
	if limit < 1 || limit > 100 {
		writeError(w, http.StatusBadRequest, "limit must be between 1 and 100")
		return
	}

	surveys, total, err := h.svc.ListSurveys(r.Context(), page, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	items := make([]surveyResponse, len(surveys))
	for i, s := range surveys {
		items[i] = toSurveyResponse(s)
	}
	totalPages := (total + limit - 1) / limit
	writeJSON(w, http.StatusOK, listSurveysResponse{
		Surveys:    items,
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: totalPages,
	})
}

// GetSurvey handles GET /surveys/{id}
func (h *Handler) GetSurvey(w http.ResponseWriter, r *http.Request) {
	survey, err := h.svc.GetSurvey(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeErrorWithCode(w, http.StatusNotFound, "survey not found", errCodeSurveyNotFound)
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, toSurveyResponse(survey))
}

type setViewedRequest struct {
	IsViewed *bool `json:"isViewed"`
}

// SetSurveyViewed handles PATCH /surveys/{id}/viewed
func (h *Handler) SetSurveyViewed(w http.ResponseWriter, r *http.Request) {
	var req setViewedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.IsViewed == nil {
		writeError(w, http.StatusBadRequest, "isViewed is required")
		return
	}

	if err := h.svc.SetSurveyViewed(r.Context(), r.PathValue("id"), *req.IsViewed); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeErrorWithCode(w, http.StatusNotFound, "survey not found", errCodeSurveyNotFound)
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteSurvey handles DELETE /surveys/{id}
func (h *Handler) DeleteSurvey(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteSurvey(r.Context(), r.PathValue("id")); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeErrorWithCode(w, http.StatusNotFound, "survey not found", errCodeSurveyNotFound)
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	val, err := strconv.Atoi(raw)
	if err != nil {
		return -1
	}
	return val
}
