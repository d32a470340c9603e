package rest

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/moodfuse-labs/moodfuse/internal/core/domain"
	"github.com/moodfuse-labs/moodfuse/internal/core/ports"
	"github.com/moodfuse-labs/moodfuse/internal/worker"
)

const (
	errCodeInvalidVectorShape  = "INVALID_VECTOR_SHAPE"
	errCodeNoExpressionData    = "NO_EXPRESSION_DATA"
	errCodeUpstreamUnavailable = "UPSTREAM_UNAVAILABLE"
	errCodeSessionNotFound     = "SESSION_NOT_FOUND"
)

const maxImageBytes = 10 << 20

// emotionScores is the per-channel score block shared by every emotion
// response. Presentation renames anger to angry; internal vectors never do.
type emotionScores struct {
	Angry    float64 `json:"angry"`
	Sad      float64 `json:"sad"`
	Neutral  float64 `json:"neutral"`
	Happy    float64 `json:"happy"`
	Surprise float64 `json:"surprise"`
}

func scoresFromVector(v domain.EmotionVector) emotionScores {
	return emotionScores{
		Angry:    v[domain.Anger],
		Sad:      v[domain.Sad],
		Neutral:  v[domain.Neutral],
		Happy:    v[domain.Happy],
		Surprise: v[domain.Surprise],
	}
}

// channelLabel renames the anger channel for presentation.
func channelLabel(c domain.Channel) string {
	if c == domain.Anger {
		return "angry"
	}
	return c.String()
}

type modalityResponse struct {
	DominantEmotion string  `json:"dominantEmotion"`
	Weight          float64 `json:"weight,omitempty"`
	emotionScores
}

type frameResponse struct {
	DominantEmotion string    `json:"dominantEmotion"`
	Scores          []float64 `json:"scores"`
}

type fuseResponse struct {
	FrameCount int              `json:"frameCount"`
	Survey     modalityResponse `json:"survey"`
	Expression modalityResponse `json:"expression"`
	Total      modalityResponse `json:"total"`
	Frames     []frameResponse  `json:"frames"`
}

// surveyAnswersRequest carries the eight fixed question slots. Pointer
// fields distinguish absent answers from explicit values.
type surveyAnswersRequest struct {
	Question1 *int `json:"question1"`
	Question2 *int `json:"question2"`
	Question3 *int `json:"question3"`
	Question4 *int `json:"question4"`
	Question5 *int `json:"question5"`
	Question6 *int `json:"question6"`
	Question7 *int `json:"question7"`
	Question8 *int `json:"question8"`
}

func (r surveyAnswersRequest) toAnswers() domain.Answers {
	answers := domain.Answers{}
	for slot, val := range map[int]*int{
		1: r.Question1, 2: r.Question2, 3: r.Question3, 4: r.Question4,
		5: r.Question5, 6: r.Question6, 7: r.Question7, 8: r.Question8,
	} {
		if val != nil {
			answers[slot] = *val
		}
	}
	return answers
}

type startSessionResponse struct {
	SessionID string `json:"sessionId"`
	Status    string `json:"status"`
}

// StartSession handles POST /emotion/sessions
func (h *Handler) StartSession(w http.ResponseWriter, r *http.Request) {
	sessionID, err := h.svc.StartSession(r.Context())
	if err != nil {
		writeErrorWithCode(w, http.StatusServiceUnavailable, err.Error(), errCodeUpstreamUnavailable)
		return
	}
	writeJSON(w, http.StatusCreated, startSessionResponse{
		SessionID: sessionID,
		Status:    "recording_started",
	})
}

// SessionInfo handles GET /emotion/sessions/{id}
func (h *Handler) SessionInfo(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("id")

	info, ok, err := h.svc.SessionInfo(r.Context(), sessionID)
	if err != nil {
		writeErrorWithCode(w, http.StatusServiceUnavailable, err.Error(), errCodeUpstreamUnavailable)
		return
	}
	if !ok {
		writeErrorWithCode(w, http.StatusNotFound, "session not found", errCodeSessionNotFound)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

// DiscardSession handles DELETE /emotion/sessions/{id}
func (h *Handler) DiscardSession(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DiscardSession(r.Context(), r.PathValue("id")); err != nil {
		writeErrorWithCode(w, http.StatusServiceUnavailable, err.Error(), errCodeUpstreamUnavailable)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type pushFrameRequest struct {
	SessionID string    `json:"sessionId"`
	Vector    []float64 `json:"vector"`
}

type pushFrameResponse struct {
	Status     string `json:"status"`
	FrameCount int    `json:"frameCount"`
}

// PushFrame handles POST /emotion/frames
func (h *Handler) PushFrame(w http.ResponseWriter, r *http.Request) {
	if !isJSONContentType(r) {
		writeError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
		return
	}

	var req pushFrameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.SessionID == "" || req.Vector == nil {
		writeError(w, http.StatusBadRequest, "sessionId and vector are required")
		return
	}

	count, err := h.svc.PushFrame(r.Context(), req.SessionID, req.Vector)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidVectorShape) {
			writeErrorWithCode(w, http.StatusBadRequest, err.Error(), errCodeInvalidVectorShape)
			return
		}
		writeErrorWithCode(w, http.StatusServiceUnavailable, err.Error(), errCodeUpstreamUnavailable)
		return
	}

	writeJSON(w, http.StatusOK, pushFrameResponse{Status: "received", FrameCount: count})
}

type fuseRequest struct {
	SessionID     string               `json:"sessionId"`
	SurveyAnswers surveyAnswersRequest `json:"surveyAnswers"`
}

// Fuse handles POST /emotion/fuse
func (h *Handler) Fuse(w http.ResponseWriter, r *http.Request) {
	if !isJSONContentType(r) {
		writeError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
		return
	}

	var req fuseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.SessionID == "" {
		writeError(w, http.StatusBadRequest, "sessionId is required")
		return
	}

	answers := req.SurveyAnswers.toAnswers()
	for _, score := range answers {
		if score < 1 || score > 5 {
			writeError(w, http.StatusBadRequest, "survey answers must be integers between 1 and 5")
			return
		}
	}

	summary, err := h.svc.Fuse(r.Context(), req.SessionID, answers)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNoExpressionData):
			writeErrorWithCode(w, http.StatusBadRequest, "session has no expression data", errCodeNoExpressionData)
		case errors.Is(err, ports.ErrUpstreamUnavailable):
			writeErrorWithCode(w, http.StatusServiceUnavailable, err.Error(), errCodeUpstreamUnavailable)
		default:
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	writeJSON(w, http.StatusOK, toFuseResponse(summary))
}

func toFuseResponse(s domain.FusionSummary) fuseResponse {
	frames := make([]frameResponse, len(s.Frames))
	for i, f := range s.Frames {
		frames[i] = frameResponse{
			DominantEmotion: channelLabel(f.Dominant),
			Scores:          f.Scores.Slice(),
		}
	}
	return fuseResponse{
		FrameCount: s.FrameCount,
		Survey: modalityResponse{
			DominantEmotion: channelLabel(s.Survey.Dominant),
			Weight:          domain.SurveyWeight,
			emotionScores:   scoresFromVector(s.Survey.Scores),
		},
		Expression: modalityResponse{
			DominantEmotion: channelLabel(s.Expression.Dominant),
			Weight:          domain.ExpressionWeight,
			emotionScores:   scoresFromVector(s.Expression.Scores),
		},
		Total: modalityResponse{
			DominantEmotion: channelLabel(s.Total.Dominant),
			emotionScores:   scoresFromVector(s.Total.Scores),
		},
		Frames: frames,
	}
}

type analyzeResponse struct {
	Label     string    `json:"label"`
	Score     float64   `json:"score"`
	Probs     []float64 `json:"probs"`
	Timestamp time.Time `json:"timestamp"`
}

// Analyze handles POST /emotion/analyze: a synchronous single-image
// classification via the expression engine.
func (h *Handler) Analyze(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxImageBytes); err != nil {
		writeError(w, http.StatusBadRequest, "multipart form with an image file is required")
		return
	}
	file, _, err := r.FormFile("image")
	if err != nil {
		writeError(w, http.StatusBadRequest, "image file is required")
		return
	}
	defer file.Close()

	image, err := io.ReadAll(io.LimitReader(file, maxImageBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read image")
		return
	}

	result, err := h.svc.Analyze(r.Context(), image)
	if err != nil {
		writeErrorWithCode(w, http.StatusServiceUnavailable, err.Error(), errCodeUpstreamUnavailable)
		return
	}

	writeJSON(w, http.StatusOK, analyzeResponse{
		Label:     result.Label,
		Score:     result.Score,
		Probs:     result.Probs.Slice(),
		Timestamp: time.Now().UTC(),
	})
}

type analyzeFrameRequest struct {
	SessionID string `json:"sessionId"`
	Image     string `json:"image"` // base64-encoded
}

// AnalyzeFrame handles POST /emotion/analyze-frame: the image is classified
// off the request path and its distribution appended to the session.
func (h *Handler) AnalyzeFrame(w http.ResponseWriter, r *http.Request) {
	if !isJSONContentType(r) {
		writeError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
		return
	}

	var req analyzeFrameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.SessionID == "" || req.Image == "" {
		writeError(w, http.StatusBadRequest, "sessionId and image are required")
		return
	}

	image, err := base64.StdEncoding.DecodeString(req.Image)
	if err != nil {
		writeError(w, http.StatusBadRequest, "image must be base64-encoded")
		return
	}

	h.pool.Submit(worker.Job{SessionID: req.SessionID, Image: image})
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "queued"})
}
