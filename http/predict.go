package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"bridgedemo/ml"
)

// PredictRequest 鸢尾花特征：花萼长、花萼宽、花瓣长、花瓣宽
type PredictRequest struct {
	Features []float64 `json:"features" validate:"required,len=4"`
}

// PredictResponse 推理结果
type PredictResponse struct {
	Label      int     `json:"label"`
	Class      string  `json:"class"`
	Confidence float64 `json:"confidence"`
}

// PredictAPI 使用缓存的模型进行推理
type PredictAPI struct {
	models    *ml.ModelCache
	modelType string
	modelPath string
	validate  *validator.Validate
	logger    *zap.Logger
}

func NewPredictAPI(models *ml.ModelCache, modelType, modelPath string, logger *zap.Logger) *PredictAPI {
	return &PredictAPI{
		models:    models,
		modelType: modelType,
		modelPath: modelPath,
		validate:  validator.New(validator.WithRequiredStructEnabled()),
		logger:    logger,
	}
}

func RegisterPredictHandlers(mux *http.ServeMux, api *PredictAPI) {
	mux.HandleFunc("POST /api/predict", api.handlePredict)
}

func (a *PredictAPI) handlePredict(w http.ResponseWriter, r *http.Request) {
	var req PredictRequest
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := a.validate.Struct(req); err != nil {
		respondError(w, http.StatusBadRequest, validationMessage(err))
		return
	}

	model, err := a.models.Get(a.modelType, a.modelPath)
	if err != nil {
		a.logger.Warn("model unavailable",
			zap.String("model_type", a.modelType),
			zap.String("model_path", a.modelPath),
			zap.String("request_id", GetRequestID(r.Context())),
			zap.Error(err),
		)
		respondError(w, http.StatusServiceUnavailable, "model not available")
		return
	}

	label, confidence, err := model.Predict(req.Features)
	if err != nil {
		if errors.Is(err, ml.ErrFeatureMismatch) || errors.Is(err, ml.ErrOutOfRange) {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		a.logger.Error("predict failed", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "prediction failed")
		return
	}

	class := ""
	if names := ml.IrisClassNames(); label >= 0 && label < len(names) {
		class = names[label]
	}
	respondJSON(w, http.StatusOK, PredictResponse{Label: label, Class: class, Confidence: confidence})
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		switch fe.Tag() {
		case "required":
			return "features is required"
		case "len":
			return "features must contain exactly " + fe.Param() + " values"
		}
		return fe.Error()
	}
	return err.Error()
}
