package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/streamclip/clip-media-service/internal/clip"
	"github.com/streamclip/clip-media-service/internal/workspace"
)

// trimRequest is the wire form of a trim operation. Media payloads travel as
// base64 strings inside JSON; encoding/json handles the []byte conversion.
type trimRequest struct {
	Source   []byte  `json:"source"`
	Start    float64 `json:"start"`
	End      float64 `json:"end"`
	ReEncode bool    `json:"re_encode"`
	Format   string  `json:"format"`
}

type concatRequest struct {
	Sources [][]byte `json:"sources"`
	Format  string   `json:"format"`
}

type gainRequest struct {
	Source        []byte  `json:"source"`
	Multiplier    float64 `json:"multiplier"`
	ReEncodeVideo bool    `json:"re_encode_video"`
	Format        string  `json:"format"`
}

type thumbnailsRequest struct {
	Source   []byte  `json:"source"`
	Interval float64 `json:"interval"`
	Quality  int     `json:"quality"`
	MaxCount int     `json:"max_count"`
	Format   string  `json:"format"`
}

type waveformRequest struct {
	Source       []byte `json:"source"`
	SampleRate   int    `json:"sample_rate"`
	TargetLength int    `json:"target_length"`
	Format       string `json:"format"`
}

type bufferResponse struct {
	Output []byte `json:"output"`
	Size   int    `json:"size"`
}

type thumbnailsResponse struct {
	Count      int              `json:"count"`
	Thumbnails []clip.Thumbnail `json:"thumbnails"`
}

type waveformResponse struct {
	Length int       `json:"length"`
	Peaks  []float64 `json:"peaks"`
}

// handleTrim implements POST /api/v1/clips/trim
func (h *HTTPServer) handleTrim(w http.ResponseWriter, r *http.Request) {
	var req trimRequest
	if !h.decodeBody(w, r, &req) {
		return
	}
	if len(req.Source) == 0 {
		h.writeError(w, r, fmt.Errorf("%w: source is required", clip.ErrInvalidRequest))
		return
	}

	data, err := h.processor.Trim(r.Context(), req.Source, clip.TrimOptions{
		Start:    req.Start,
		End:      req.End,
		ReEncode: req.ReEncode,
		Format:   req.Format,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, bufferResponse{Output: data, Size: len(data)})
}

// handleConcat implements POST /api/v1/clips/concat
func (h *HTTPServer) handleConcat(w http.ResponseWriter, r *http.Request) {
	var req concatRequest
	if !h.decodeBody(w, r, &req) {
		return
	}

	data, err := h.processor.Concatenate(r.Context(), req.Sources, clip.ConcatOptions{
		Format: req.Format,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, bufferResponse{Output: data, Size: len(data)})
}

// handleGain implements POST /api/v1/clips/gain
func (h *HTTPServer) handleGain(w http.ResponseWriter, r *http.Request) {
	var req gainRequest
	if !h.decodeBody(w, r, &req) {
		return
	}
	if len(req.Source) == 0 {
		h.writeError(w, r, fmt.Errorf("%w: source is required", clip.ErrInvalidRequest))
		return
	}

	data, err := h.processor.AdjustGain(r.Context(), req.Source, clip.GainOptions{
		Multiplier:    req.Multiplier,
		ReEncodeVideo: req.ReEncodeVideo,
		Format:        req.Format,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, bufferResponse{Output: data, Size: len(data)})
}

// handleThumbnails implements POST /api/v1/clips/thumbnails
func (h *HTTPServer) handleThumbnails(w http.ResponseWriter, r *http.Request) {
	var req thumbnailsRequest
	if !h.decodeBody(w, r, &req) {
		return
	}
	if len(req.Source) == 0 {
		h.writeError(w, r, fmt.Errorf("%w: source is required", clip.ErrInvalidRequest))
		return
	}

	thumbs, err := h.processor.ExtractThumbnails(r.Context(), req.Source, clip.ThumbnailOptions{
		Interval: req.Interval,
		Quality:  req.Quality,
		MaxCount: req.MaxCount,
		Format:   req.Format,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, thumbnailsResponse{Count: len(thumbs), Thumbnails: thumbs})
}

// handleWaveform implements POST /api/v1/clips/waveform
func (h *HTTPServer) handleWaveform(w http.ResponseWriter, r *http.Request) {
	var req waveformRequest
	if !h.decodeBody(w, r, &req) {
		return
	}
	if len(req.Source) == 0 {
		h.writeError(w, r, fmt.Errorf("%w: source is required", clip.ErrInvalidRequest))
		return
	}

	peaks, err := h.processor.ExtractWaveform(r.Context(), req.Source, clip.WaveformOptions{
		SampleRate:   req.SampleRate,
		TargetLength: req.TargetLength,
		Format:       req.Format,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, waveformResponse{Length: len(peaks), Peaks: peaks})
}

// decodeBody decodes a size-limited JSON request body. It writes the error
// response itself and reports whether decoding succeeded.
func (h *HTTPServer) decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, h.config.HTTP.MaxUploadBytes)

	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			http.Error(w, fmt.Sprintf("Request body exceeds %d bytes", maxErr.Limit), http.StatusRequestEntityTooLarge)
			return false
		}
		http.Error(w, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
		return false
	}
	return true
}

// writeError maps processor errors onto HTTP status codes
func (h *HTTPServer) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError

	switch {
	case errors.Is(err, clip.ErrInvalidRequest):
		status = http.StatusBadRequest
	case errors.Is(err, clip.ErrEngineExecution),
		errors.Is(err, workspace.ErrStagingFailed),
		errors.Is(err, workspace.ErrArtifactMissing):
		status = http.StatusBadGateway
	}

	if status >= 500 {
		h.logger.Error("Operation failed",
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()),
		)
	}

	http.Error(w, err.Error(), status)
}
