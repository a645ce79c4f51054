package ml

import "errors"

var (
	ErrNotTrained       = errors.New("model not trained")
	ErrEmptyDataset     = errors.New("features or labels empty")
	ErrFeatureMismatch  = errors.New("feature count mismatch")
	ErrUnsupportedModel = errors.New("unsupported model type")
	ErrOutOfRange       = errors.New("features out of model range")
)

const (
	ModelTypeGaussianNB   = "gaussian_nb"
	ModelTypeDecisionTree = "decision_tree"
)

type MLModel interface {
	Train(features [][]float64, labels []int) error
	// Predict returns the predicted label and the model's confidence in it.
	Predict(features []float64) (int, float64, error)
	Save(path string) error
	Load(path string) error
}

func validateTrainingSet(features [][]float64, labels []int) (int, error) {
	if len(features) == 0 || len(labels) == 0 {
		return 0, ErrEmptyDataset
	}
	if len(features) != len(labels) {
		return 0, errors.New("features and labels size mismatch")
	}
	width := len(features[0])
	if width == 0 {
		return 0, ErrEmptyDataset
	}
	for _, row := range features {
		if len(row) != width {
			return 0, ErrFeatureMismatch
		}
	}
	return width, nil
}
