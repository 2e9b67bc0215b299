package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"imagecredit/attribution"
)

const maxUploadBytes = 10 << 20

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleReverseSearch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	reqID := uuid.NewString()
	log := s.logger.With(zap.String("request_id", reqID))

	req, err := decodeSearchRequest(w, r)
	if err != nil {
		log.Info("rejected request", zap.Error(err))
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	start := time.Now()
	resp, err := s.orchestrator.Resolve(r.Context(), req)
	if err != nil {
		log.Info("rejected request", zap.Error(err))
		writeJSON(w, statusFor(err), errorResponse{Error: err.Error()})
		return
	}
	log.Info("resolved image",
		zap.Bool("found", resp.Found),
		zap.Int("results", len(resp.Results)),
		zap.Strings("engines", resp.SearchEnginesUsed),
		zap.Duration("elapsed", time.Since(start)))
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleBatch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	reqID := uuid.NewString()
	log := s.logger.With(zap.String("request_id", reqID))

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	var reqs []attribution.Request
	if err := json.NewDecoder(r.Body).Decode(&reqs); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body: " + err.Error()})
		return
	}
	defer r.Body.Close()

	start := time.Now()
	resps, err := s.orchestrator.ResolveBatch(r.Context(), reqs)
	if err != nil {
		log.Info("rejected batch", zap.Error(err))
		writeJSON(w, statusFor(err), errorResponse{Error: err.Error()})
		return
	}
	log.Info("resolved batch",
		zap.Int("images", len(reqs)),
		zap.Duration("elapsed", time.Since(start)))
	writeJSON(w, http.StatusOK, resps)
}

type attributionRequest struct {
	URL string `json:"url"`
}

func (s *Server) handleGetAttribution(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	reqID := uuid.NewString()
	log := s.logger.With(zap.String("request_id", reqID))

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	var req attributionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body: " + err.Error()})
		return
	}
	defer r.Body.Close()

	resp, err := s.orchestrator.Attribute(r.Context(), req.URL)
	if err != nil {
		log.Info("rejected request", zap.Error(err))
		writeJSON(w, statusFor(err), errorResponse{Error: err.Error()})
		return
	}
	log.Info("resolved attribution",
		zap.String("url", req.URL),
		zap.Bool("found", resp.Found))
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"service":      "imagecredit",
		"capabilities": s.caps,
	})
}

// decodeSearchRequest accepts either a JSON body or a multipart form with a
// "file" field carrying the image bytes. Both shapes are bounded by the
// upload limit.
func decodeSearchRequest(w http.ResponseWriter, r *http.Request) (attribution.Request, error) {
	var req attribution.Request
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes+1<<20)

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			return req, errors.New("invalid multipart form: " + err.Error())
		}
		req.ImageURL = r.FormValue("image_url")
		if v := r.FormValue("max_results"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return req, errors.New("max_results must be an integer")
			}
			req.MaxResults = n
		}
		if v := r.FormValue("timeout"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return req, errors.New("timeout must be an integer")
			}
			req.Timeout = n
		}
		for _, v := range r.MultipartForm.Value["engines"] {
			for _, name := range strings.Split(v, ",") {
				if name = strings.TrimSpace(name); name != "" {
					req.Engines = append(req.Engines, name)
				}
			}
		}
		if file, _, err := r.FormFile("file"); err == nil {
			defer file.Close()
			data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes+1))
			if err != nil {
				return req, errors.New("reading upload: " + err.Error())
			}
			req.ImageData = data
		}
		return req, nil
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return req, errors.New("invalid request body: " + err.Error())
	}
	defer r.Body.Close()
	return req, nil
}

func statusFor(err error) int {
	if errors.Is(err, attribution.ErrInvalidInput) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
