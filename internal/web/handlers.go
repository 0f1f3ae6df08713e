package web

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/hlog"
	"github.com/samber/lo"
	"github.com/xeptore/flaw/v8"

	"github.com/justestif/go-moodify/internal/clustering"
	"github.com/justestif/go-moodify/internal/history"
	"github.com/justestif/go-moodify/internal/log"
	"github.com/justestif/go-moodify/internal/mood"
	"github.com/justestif/go-moodify/internal/recommend"
)

// Fixed confidences reported by the heuristic classifiers.
const (
	TextConfidence  = 0.85
	VoiceConfidence = 0.75
)

// Query limits.
const (
	DefaultRecommendationLimit = 20
	MaxRecommendationLimit     = 100
	DefaultSearchLimit         = 10
	MaxSearchLimit             = 50
	DefaultHistoryLimit        = history.DefaultRecentLimit
	MaxHistoryLimit            = history.MaxRecentLimit
	MaxVoiceClusters           = 10
)

// Recommender fetches tracks from the music provider.
type Recommender interface {
	GetRecommendations(ctx context.Context, label mood.Label, limit int) ([]recommend.Track, error)
	SearchTracks(ctx context.Context, query string, limit int) ([]recommend.Track, error)
}

// Handlers contains HTTP handlers for the API.
type Handlers struct {
	recs    Recommender
	history *history.Service // nil disables history endpoints
}

// NewHandlers creates a new Handlers instance. hist may be nil.
func NewHandlers(recs Recommender, hist *history.Service) *Handlers {
	return &Handlers{
		recs:    recs,
		history: hist,
	}
}

// Health handles GET /api/health.
func (h *Handlers) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"message": "Moodify API is running",
	})
}

type moodResponse struct {
	Value         string   `json:"value"`
	Label         string   `json:"label"`
	Emoji         string   `json:"emoji"`
	Description   string   `json:"description"`
	Color         string   `json:"color"`
	Genres        []string `json:"genres"`
	RelatedGenres []string `json:"relatedGenres"`
}

// Moods handles GET /api/moods.
func (h *Handlers) Moods(w http.ResponseWriter, _ *http.Request) {
	moods := lo.Map(mood.Profiles(), func(p mood.Profile, _ int) moodResponse {
		return moodResponse{
			Value:         p.Label.String(),
			Label:         p.Display.Name,
			Emoji:         p.Display.Emoji,
			Description:   p.Display.Description,
			Color:         p.Display.ColorGradient,
			Genres:        p.Genres,
			RelatedGenres: p.RelatedGenres,
		}
	})
	writeJSON(w, http.StatusOK, map[string]any{"moods": moods})
}

// AnalyzeText handles POST /api/mood/analyze-text.
func (h *Handlers) AnalyzeText(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text string `json:"text"`
	}
	if err := decodeBody(w, r, &req); err != nil {
		writeServerError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeError(w, http.StatusBadRequest, "Text parameter is required")
		return
	}

	label := mood.ClassifyText(req.Text)
	h.record(r, history.SourceText, label, TextConfidence, nil)

	writeJSON(w, http.StatusOK, map[string]any{
		"input":        req.Text,
		"detectedMood": label,
		"confidence":   TextConfidence,
	})
}

// AnalyzeVoice handles POST /api/mood/analyze-voice. Missing features
// default to zero.
func (h *Handlers) AnalyzeVoice(w http.ResponseWriter, r *http.Request) {
	var features mood.VoiceFeatures
	if err := decodeBody(w, r, &features); err != nil {
		writeServerError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	label := mood.ClassifyVoice(features)
	h.record(r, history.SourceVoice, label, VoiceConfidence, &features)

	writeJSON(w, http.StatusOK, map[string]any{
		"detectedMood": label,
		"confidence":   VoiceConfidence,
		"features":     features,
	})
}

// AnalyzeFace handles POST /api/mood/analyze-face.
func (h *Handlers) AnalyzeFace(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Expressions mood.ExpressionVector `json:"expressions"`
	}
	if err := decodeBody(w, r, &req); err != nil {
		writeServerError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	dominant, ok := req.Expressions.Dominant()
	if !ok {
		writeError(w, http.StatusBadRequest, "Expressions parameter is required")
		return
	}

	label := mood.ClassifyFace(req.Expressions)
	h.record(r, history.SourceFace, label, dominant.Confidence, nil)

	writeJSON(w, http.StatusOK, map[string]any{
		"detectedMood":       label,
		"dominantExpression": dominant.Name,
		"confidence":         dominant.Confidence,
	})
}

// Recommendations handles GET /api/recommendations.
func (h *Handlers) Recommendations(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("mood")
	if strings.TrimSpace(raw) == "" {
		writeError(w, http.StatusBadRequest, "Mood parameter is required")
		return
	}
	limit := queryInt(r, "limit", DefaultRecommendationLimit, MaxRecommendationLimit)

	tracks, err := h.recs.GetRecommendations(r.Context(), mood.Label(raw), limit)
	if err != nil {
		h.providerFailure(w, r, err, flaw.P{"mood": raw, "limit": limit})
		return
	}

	label, _ := mood.Parse(raw)
	writeJSON(w, http.StatusOK, map[string]any{
		"mood":   label,
		"count":  len(tracks),
		"tracks": tracks,
	})
}

// Search handles GET /api/search.
func (h *Handlers) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	limit := queryInt(r, "limit", DefaultSearchLimit, MaxSearchLimit)

	tracks, err := h.recs.SearchTracks(r.Context(), q, limit)
	if err != nil {
		h.providerFailure(w, r, err, flaw.P{"query": q, "limit": limit})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"query":  q,
		"count":  len(tracks),
		"tracks": tracks,
	})
}

// History handles GET /api/mood/history.
func (h *Handlers) History(w http.ResponseWriter, r *http.Request) {
	if !h.historyEnabled(w) {
		return
	}
	limit := queryInt(r, "limit", DefaultHistoryLimit, MaxHistoryLimit)

	items, err := h.history.Recent(r.Context(), limit)
	if err != nil {
		h.internalFailure(w, r, err, "Failed to load history")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"count":    len(items),
		"analyses": items,
	})
}

// Stats handles GET /api/mood/stats.
func (h *Handlers) Stats(w http.ResponseWriter, r *http.Request) {
	if !h.historyEnabled(w) {
		return
	}

	stats, err := h.history.Stats(r.Context())
	if err != nil {
		h.internalFailure(w, r, err, "Failed to load mood stats")
		return
	}
	total := lo.SumBy(stats, func(s history.LabelCount) int { return s.Count })
	writeJSON(w, http.StatusOK, map[string]any{
		"total": total,
		"moods": stats,
	})
}

type clusterResponse struct {
	Mood     mood.Label         `json:"mood"`
	Rule     string             `json:"rule"`
	Centroid mood.VoiceFeatures `json:"centroid"`
	Size     int                `json:"size"`
	First    time.Time          `json:"first"`
	Last     time.Time          `json:"last"`
}

// VoiceClusters handles GET /api/mood/voice-clusters.
func (h *Handlers) VoiceClusters(w http.ResponseWriter, r *http.Request) {
	if !h.historyEnabled(w) {
		return
	}

	cfg := clustering.DefaultConfig()
	cfg.NumClusters = queryInt(r, "k", cfg.NumClusters, MaxVoiceClusters)

	clusters, outliers, err := h.history.VoiceClusters(r.Context(), cfg)
	if err != nil {
		h.internalFailure(w, r, err, "Failed to cluster voice samples")
		return
	}

	out := lo.Map(clusters, func(c clustering.Cluster, _ int) clusterResponse {
		return clusterResponse{
			Mood:     c.Mood,
			Rule:     c.Rule,
			Centroid: c.Centroid,
			Size:     len(c.Samples),
			First:    c.First,
			Last:     c.Last,
		}
	})
	writeJSON(w, http.StatusOK, map[string]any{
		"k":        cfg.NumClusters,
		"clusters": out,
		"outliers": len(outliers),
	})
}

func (h *Handlers) historyEnabled(w http.ResponseWriter) bool {
	if h.history == nil {
		writeServerError(w, http.StatusNotFound, "History is not enabled")
		return false
	}
	return true
}

// record stores an analysis. Failures are logged and never reach the caller.
func (h *Handlers) record(r *http.Request, source history.Source, label mood.Label, confidence float64, voice *mood.VoiceFeatures) {
	if h.history == nil {
		return
	}
	if _, err := h.history.Record(r.Context(), source, label, confidence, voice); err != nil {
		hlog.FromRequest(r).Warn().
			Func(log.Flaw(flaw.From(err).Append(flaw.P{"source": source, "mood": label}))).
			Msg("Failed to record analysis")
	}
}

// providerFailure maps service errors onto responses. Provider detail is
// logged, never written.
func (h *Handlers) providerFailure(w http.ResponseWriter, r *http.Request, err error, p flaw.P) {
	if verr := new(recommend.ValidationError); errors.As(err, &verr) {
		if len(verr.Accepted) > 0 {
			writeJSON(w, http.StatusBadRequest, map[string]any{
				"error":      verr.Message,
				"validMoods": verr.Accepted,
			})
			return
		}
		writeError(w, http.StatusBadRequest, verr.Message)
		return
	}

	status := http.StatusBadGateway
	if errors.Is(err, recommend.ErrProviderUnavailable) {
		status = http.StatusServiceUnavailable
	}

	message := "Internal server error"
	if perr := new(recommend.ProviderError); errors.As(err, &perr) {
		message = perr.Error()
	} else {
		status = http.StatusInternalServerError
	}

	hlog.FromRequest(r).Error().
		Func(log.Flaw(flaw.From(err).Append(p))).
		Int("status", status).
		Msg("Provider request failed")
	writeServerError(w, status, message)
}

func (h *Handlers) internalFailure(w http.ResponseWriter, r *http.Request, err error, message string) {
	hlog.FromRequest(r).Error().Func(log.Flaw(err)).Msg(message)
	writeServerError(w, http.StatusInternalServerError, message)
}
