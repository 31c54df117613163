package api

import (
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/synaptica-ai/healthlab/pkg/common/logger"
	"github.com/synaptica-ai/healthlab/pkg/common/models"
	"github.com/synaptica-ai/healthlab/pkg/common/outcome"
	"github.com/synaptica-ai/healthlab/pkg/staging"
)

const (
	uploadField      = "file"
	multipartMemory  = 4 << 20
	noUploadMessage  = "请上传数据文件"
	notStagedMessage = "数据集不存在或已过期"
)

type HTTPHandler struct {
	service *Service
}

func NewHTTPHandler(service *Service) *HTTPHandler {
	return &HTTPHandler{service: service}
}

func (h *HTTPHandler) Register(router *mux.Router) {
	router.HandleFunc("/risk/score", h.handleScore).Methods(http.MethodPost)
	router.HandleFunc("/datasets", h.handleStage).Methods(http.MethodPost)
	router.HandleFunc("/datasets/{id}/analysis", h.handleAnalyzeStaged).Methods(http.MethodPost)
	router.HandleFunc("/analysis", h.handleAnalyze).Methods(http.MethodPost)
	router.HandleFunc("/text/classify", h.handleClassify).Methods(http.MethodPost)
	router.HandleFunc("/text/categories", h.handleCategories).Methods(http.MethodGet)
}

func (h *HTTPHandler) handleScore(w http.ResponseWriter, r *http.Request) {
	var profile models.RiskProfile
	if err := json.NewDecoder(r.Body).Decode(&profile); err != nil {
		writeError(w, decodeError(err))
		return
	}

	result, err := h.service.ScoreRisk(r.Context(), profile)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *HTTPHandler) handleStage(w http.ResponseWriter, r *http.Request) {
	file, header, err := uploadedFile(r)
	if err != nil {
		writeError(w, err)
		return
	}
	defer file.Close()

	staged, err := h.service.StageDataset(r.Context(), header.Filename, file)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, staged)
}

func (h *HTTPHandler) handleAnalyzeStaged(w http.ResponseWriter, r *http.Request) {
	var cfg models.AnalysisConfig
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, decodeError(err))
		return
	}

	result, err := h.service.AnalyzeStaged(r.Context(), mux.Vars(r)["id"], cfg)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *HTTPHandler) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	file, header, err := uploadedFile(r)
	if err != nil {
		writeError(w, err)
		return
	}
	defer file.Close()

	cfg, err := formConfig(r)
	if err != nil {
		writeError(w, err)
		return
	}

	result, err := h.service.Analyze(r.Context(), header.Filename, file, cfg)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

type classifyRequest struct {
	Text     string `json:"text"`
	Category string `json:"category"`
}

func (h *HTTPHandler) handleClassify(w http.ResponseWriter, r *http.Request) {
	var req classifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, decodeError(err))
		return
	}

	result, err := h.service.ClassifyText(r.Context(), req.Text, req.Category)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *HTTPHandler) handleCategories(w http.ResponseWriter, r *http.Request) {
	names, fallback := h.service.Categories()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"categories": names,
		"default":    fallback,
	})
}

func uploadedFile(r *http.Request) (multipart.File, *multipart.FileHeader, error) {
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, nil, err
		}
		if errors.Is(err, http.ErrNotMultipart) || errors.Is(err, http.ErrMissingBoundary) {
			return nil, nil, outcome.EmptyInput(noUploadMessage)
		}
		return nil, nil, outcome.InvalidInput("无法解析上传内容: %v", err)
	}
	file, header, err := r.FormFile(uploadField)
	if err != nil {
		return nil, nil, outcome.EmptyInput(noUploadMessage)
	}
	return file, header, nil
}

func formConfig(r *http.Request) (models.AnalysisConfig, error) {
	federated, err := formBool(r, "federated_learning")
	if err != nil {
		return models.AnalysisConfig{}, err
	}
	privacy, err := formBool(r, "privacy_protection")
	if err != nil {
		return models.AnalysisConfig{}, err
	}
	return models.AnalysisConfig{
		FederatedLearning: federated,
		PrivacyProtection: privacy,
		PrivacyLevel:      models.PrivacyLevel(r.FormValue("privacy_level")),
	}, nil
}

// formBool reads checkbox-style fields: absent is false, "on" is true.
func formBool(r *http.Request, field string) (bool, error) {
	raw := strings.TrimSpace(r.FormValue(field))
	switch strings.ToLower(raw) {
	case "":
		return false, nil
	case "on", "yes":
		return true, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, outcome.InvalidInput("%s 必须是布尔值: %q", field, raw)
	}
	return v, nil
}

func decodeError(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return err
	}
	return outcome.InvalidInput("请求格式错误: %v", err)
}

func writeError(w http.ResponseWriter, err error) {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		writeJSON(w, http.StatusRequestEntityTooLarge, models.SoftFailure{
			Kind:    string(outcome.KindInvalidInput),
			Message: "上传内容过大",
		})
		return
	case errors.Is(err, staging.ErrNotFound):
		writeJSON(w, http.StatusNotFound, models.SoftFailure{Kind: "not_found", Message: notStagedMessage})
		return
	}

	failure := outcome.SoftFailure(err)
	status := http.StatusInternalServerError
	switch outcome.Kind(failure.Kind) {
	case outcome.KindInvalidInput:
		status = http.StatusBadRequest
	case outcome.KindEmptyInput, outcome.KindUnsupportedFormat:
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, status, failure)
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Log.WithError(err).Warn("failed to encode response")
	}
}
