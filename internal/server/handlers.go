package server

import (
	"encoding/json"
	"log"
	"math"
	"net/http"
	"time"

	"golang.org/x/exp/rand"

	"github.com/jeongseonghan/semcom/internal/link"
	"github.com/jeongseonghan/semcom/internal/llm"
	"github.com/jeongseonghan/semcom/internal/semantic"
	"github.com/jeongseonghan/semcom/internal/sweep"
	"github.com/jeongseonghan/semcom/internal/waveform"
)

// Handlers holds the HTTP API handlers. The link is the single source of
// truth for transmission; every endpoint here is a thin adapter over it.
type Handlers struct {
	link        *link.Link
	llmClient   *llm.Client
	scorer      *semantic.Scorer // nil when no embedder is configured
	wsHub       *WSHub
	defaultEbN0 float64
}

// NewHandlers creates new API handlers. scorer may be nil.
func NewHandlers(l *link.Link, llmClient *llm.Client, scorer *semantic.Scorer, defaultEbN0 float64) *Handlers {
	return &Handlers{
		link:        l,
		llmClient:   llmClient,
		scorer:      scorer,
		wsHub:       NewWSHub(),
		defaultEbN0: defaultEbN0,
	}
}

// sourceFor builds the per-request noise source: seeded when the caller
// pins one, time-based otherwise. The core itself never reaches for ambient
// randomness.
func sourceFor(seed *uint64) rand.Source {
	if seed != nil {
		return rand.NewSource(*seed)
	}
	return rand.NewSource(uint64(time.Now().UnixNano()))
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("write response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// HandleWebSocket handles WebSocket upgrade requests.
func (h *Handlers) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade error: %v", err)
		return
	}

	h.wsHub.AddClient(conn)

	// Read messages (for potential commands from client)
	go func() {
		defer h.wsHub.RemoveClient(conn)
		for {
			_, _, err := conn.ReadMessage()
			if err != nil {
				break
			}
		}
	}()
}

type transmitRequest struct {
	Text   string   `json:"text"`
	EbN0dB *float64 `json:"ebno_db"`
	Seed   *uint64  `json:"seed"`
}

type transmitResponse struct {
	ReceivedText string  `json:"received_text"`
	BER          float64 `json:"ber"`
	BitCount     int     `json:"bit_count"`
	ErrorBits    int     `json:"error_bits"`
	EbN0dB       float64 `json:"ebno_db"`
}

// HandleTransmit sends text through the noisy link once and reports the
// outcome. Missing text is the only request error; a heavily corrupted
// reconstruction is still a 200.
func (h *Handlers) HandleTransmit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req transmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Text == "" {
		writeError(w, http.StatusBadRequest, "text is required")
		return
	}

	ebn0 := h.defaultEbN0
	if req.EbN0dB != nil {
		ebn0 = *req.EbN0dB
	}

	res := h.link.Transmit(req.Text, ebn0, sourceFor(req.Seed))
	writeJSON(w, http.StatusOK, transmitResponse{
		ReceivedText: res.Text,
		BER:          res.BER,
		BitCount:     res.BitCount(),
		ErrorBits:    res.ErrorBits(),
		EbN0dB:       ebn0,
	})
}

type sweepRequest struct {
	Text   string    `json:"text"`
	Points []float64 `json:"points"`
	Trials int       `json:"trials"`
	Seed   *uint64   `json:"seed"`
}

// HandleSweep measures averaged BER across Eb/N0 points, broadcasting
// progress over the WebSocket hub as each point completes.
func (h *Handlers) HandleSweep(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req sweepRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Text == "" {
		writeError(w, http.StatusBadRequest, "text is required")
		return
	}

	runner := sweep.NewRunner(h.link, req.Trials)
	runner.OnPoint = h.wsHub.BroadcastSweepPoint

	points := runner.Run(req.Text, req.Points, sourceFor(req.Seed))
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"text":   req.Text,
		"points": points,
	})
}

type waveformRequest struct {
	Text         string   `json:"text"`
	SNRdB        *float64 `json:"snr"`
	SamplingRate int      `json:"sampling_rate"`
	Seed         *uint64  `json:"seed"`
}

// HandleWaveform renders the illustrative noisy sinusoid for a text. This
// endpoint is display-only and shares nothing with the link pipeline.
func (h *Handlers) HandleWaveform(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req waveformRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	snr := float64(waveform.DefaultSNRdB)
	if req.SNRdB != nil {
		snr = *req.SNRdB
	}

	rendering := waveform.Render(waveform.Params{
		Text:         req.Text,
		SamplingRate: req.SamplingRate,
		SNRdB:        snr,
	}, sourceFor(req.Seed))
	writeJSON(w, http.StatusOK, rendering)
}

type similarityRequest struct {
	OriginalText string `json:"original_text"`
	ReceivedText string `json:"received_text"`
}

// HandleSimilarity scores semantic similarity between an original and a
// received text via the embedding service.
func (h *Handlers) HandleSimilarity(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if h.scorer == nil {
		writeError(w, http.StatusServiceUnavailable, "no embedder configured")
		return
	}

	var req similarityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.OriginalText == "" || req.ReceivedText == "" {
		writeError(w, http.StatusBadRequest, "both original_text and received_text are required")
		return
	}

	score, err := h.scorer.Similarity(r.Context(), req.OriginalText, req.ReceivedText)
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"similarity":    score,
		"original_text": req.OriginalText,
		"received_text": req.ReceivedText,
	})
}

type flowRequest struct {
	Text   string   `json:"text"`
	EbN0dB *float64 `json:"ebno_db"`
	Seed   *uint64  `json:"seed"`
}

type flowResponse struct {
	InputText         string   `json:"input_text"`
	LLMProcessed      string   `json:"llm_processed"`
	NoisyText         string   `json:"noisy_text"`
	ReconstructedText string   `json:"reconstructed_text"`
	BER               float64  `json:"ber"`
	EbN0dB            float64  `json:"ebno_db"`
	Similarity        *float64 `json:"similarity,omitempty"`
}

// HandleFlow runs the full semantic pipeline: LLM condensation, noisy
// transmission, LLM reconstruction, and (when an embedder is configured)
// end-to-end similarity scoring.
func (h *Handlers) HandleFlow(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req flowRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Text == "" {
		writeError(w, http.StatusBadRequest, "text is required")
		return
	}

	ebn0 := h.defaultEbN0
	if req.EbN0dB != nil {
		ebn0 = *req.EbN0dB
	}
	ctx := r.Context()

	processed, err := h.llmClient.Process(ctx, req.Text)
	if err != nil {
		writeError(w, http.StatusBadGateway, "llm processing: "+err.Error())
		return
	}
	h.wsHub.BroadcastFlowStep(1, "llm_processed", processed)

	res := h.link.Transmit(processed, ebn0, sourceFor(req.Seed))
	h.wsHub.BroadcastFlowStep(2, "noisy_text", res.Text)

	reconstructed, err := h.llmClient.Reconstruct(ctx, res.Text)
	if err != nil {
		writeError(w, http.StatusBadGateway, "llm reconstruction: "+err.Error())
		return
	}
	h.wsHub.BroadcastFlowStep(3, "reconstructed_text", reconstructed)

	resp := flowResponse{
		InputText:         req.Text,
		LLMProcessed:      processed,
		NoisyText:         res.Text,
		ReconstructedText: reconstructed,
		BER:               res.BER,
		EbN0dB:            ebn0,
	}

	if h.scorer != nil {
		score, err := h.scorer.Similarity(ctx, req.Text, reconstructed)
		if err != nil {
			log.Printf("similarity scoring failed: %v", err)
		} else if !math.IsNaN(score) {
			resp.Similarity = &score
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

// HandleHealth is the liveness endpoint.
func (h *Handlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":   "ok",
		"encoding": h.link.Codec().EncodingName(),
		"llm":      h.llmClient.Provider().String(),
	})
}
