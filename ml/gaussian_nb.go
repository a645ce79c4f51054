package ml

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"sort"
)

const DefaultVarSmoothing = 1e-9

type GaussianNB struct {
	VarSmoothing float64     `json:"var_smoothing"`
	Classes      []int       `json:"classes"`
	ClassCount   []float64   `json:"class_count"`
	ClassPrior   []float64   `json:"class_prior"`
	Theta        [][]float64 `json:"theta"`
	Var          [][]float64 `json:"var"`
	Epsilon      float64     `json:"epsilon"`
}

func NewGaussianNB() *GaussianNB {
	return &GaussianNB{VarSmoothing: DefaultVarSmoothing}
}

func (nb *GaussianNB) Train(features [][]float64, labels []int) error {
	width, err := validateTrainingSet(features, labels)
	if err != nil {
		return err
	}
	if nb.VarSmoothing <= 0 {
		nb.VarSmoothing = DefaultVarSmoothing
	}

	classes := uniqueLabels(labels)
	index := make(map[int]int, len(classes))
	for i, c := range classes {
		index[c] = i
	}

	counts := make([]float64, len(classes))
	theta := make([][]float64, len(classes))
	variance := make([][]float64, len(classes))
	for i := range classes {
		theta[i] = make([]float64, width)
		variance[i] = make([]float64, width)
	}

	for i, row := range features {
		c := index[labels[i]]
		counts[c]++
		for j, v := range row {
			theta[c][j] += v
		}
	}
	for c := range classes {
		for j := range theta[c] {
			theta[c][j] /= counts[c]
		}
	}
	for i, row := range features {
		c := index[labels[i]]
		for j, v := range row {
			d := v - theta[c][j]
			variance[c][j] += d * d
		}
	}

	epsilon := nb.VarSmoothing * maxColumnVariance(features, width)
	priors := make([]float64, len(classes))
	for c := range classes {
		for j := range variance[c] {
			variance[c][j] = variance[c][j]/counts[c] + epsilon
		}
		priors[c] = counts[c] / float64(len(labels))
	}

	nb.Classes = classes
	nb.ClassCount = counts
	nb.ClassPrior = priors
	nb.Theta = theta
	nb.Var = variance
	nb.Epsilon = epsilon
	return nil
}

func (nb *GaussianNB) Predict(features []float64) (int, float64, error) {
	probs, err := nb.PredictProba(features)
	if err != nil {
		return 0, 0, err
	}
	best := 0
	for c := range probs {
		if probs[c] > probs[best] {
			best = c
		}
	}
	return nb.Classes[best], probs[best], nil
}

func (nb *GaussianNB) PredictProba(features []float64) ([]float64, error) {
	jll, err := nb.jointLogLikelihood(features)
	if err != nil {
		return nil, err
	}
	norm := logSumExp(jll)
	if math.IsInf(norm, 0) || math.IsNaN(norm) {
		return nil, fmt.Errorf("%w: %v", ErrOutOfRange, features)
	}
	probs := make([]float64, len(jll))
	for c, v := range jll {
		probs[c] = math.Exp(v - norm)
		if math.IsNaN(probs[c]) {
			return nil, fmt.Errorf("%w: %v", ErrOutOfRange, features)
		}
	}
	return probs, nil
}

func (nb *GaussianNB) jointLogLikelihood(features []float64) ([]float64, error) {
	if len(nb.Classes) == 0 {
		return nil, ErrNotTrained
	}
	if len(features) != len(nb.Theta[0]) {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrFeatureMismatch, len(features), len(nb.Theta[0]))
	}
	jll := make([]float64, len(nb.Classes))
	for c := range nb.Classes {
		var logNorm, sq float64
		for j, x := range features {
			v := nb.Var[c][j]
			logNorm += math.Log(2 * math.Pi * v)
			d := x - nb.Theta[c][j]
			sq += d * d / v
		}
		jll[c] = math.Log(nb.ClassPrior[c]) - 0.5*logNorm - 0.5*sq
	}
	return jll, nil
}

func (nb *GaussianNB) Save(path string) error {
	if len(nb.Classes) == 0 {
		return ErrNotTrained
	}
	return saveEnvelope(path, ModelTypeGaussianNB, nb)
}

func (nb *GaussianNB) Load(path string) error {
	var loaded GaussianNB
	if err := loadEnvelope(path, ModelTypeGaussianNB, &loaded); err != nil {
		return err
	}
	if len(loaded.Classes) == 0 || len(loaded.Theta) != len(loaded.Classes) || len(loaded.Var) != len(loaded.Classes) {
		return fmt.Errorf("%s: %w", path, ErrNotTrained)
	}
	*nb = loaded
	return nil
}

type envelope struct {
	ModelType string          `json:"model_type"`
	Model     json.RawMessage `json:"model"`
}

func saveEnvelope(path, modelType string, model any) error {
	body, err := json.Marshal(model)
	if err != nil {
		return err
	}
	payload, err := json.Marshal(envelope{ModelType: modelType, Model: body})
	if err != nil {
		return err
	}
	// Rename into place so readers never see a half-written model.
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, payload, 0o600); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}

func loadEnvelope(path, modelType string, model any) error {
	payload, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var env envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	if env.ModelType != modelType {
		return fmt.Errorf("%s holds %q, want %q: %w", path, env.ModelType, modelType, ErrUnsupportedModel)
	}
	return json.Unmarshal(env.Model, model)
}

func uniqueLabels(labels []int) []int {
	seen := make(map[int]struct{})
	classes := make([]int, 0)
	for _, l := range labels {
		if _, ok := seen[l]; ok {
			continue
		}
		seen[l] = struct{}{}
		classes = append(classes, l)
	}
	sort.Ints(classes)
	return classes
}

func maxColumnVariance(features [][]float64, width int) float64 {
	n := float64(len(features))
	best := 0.0
	for j := 0; j < width; j++ {
		var mean float64
		for _, row := range features {
			mean += row[j]
		}
		mean /= n
		var v float64
		for _, row := range features {
			d := row[j] - mean
			v += d * d
		}
		v /= n
		if v > best {
			best = v
		}
	}
	return best
}

func logSumExp(values []float64) float64 {
	peak := math.Inf(-1)
	for _, v := range values {
		if v > peak {
			peak = v
		}
	}
	if math.IsInf(peak, -1) {
		return peak
	}
	var sum float64
	for _, v := range values {
		sum += math.Exp(v - peak)
	}
	return peak + math.Log(sum)
}
