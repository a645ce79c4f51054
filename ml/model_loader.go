package ml

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
)

func NewModel(modelType string, maxDepth int) (MLModel, error) {
	switch modelType {
	case ModelTypeGaussianNB:
		return NewGaussianNB(), nil
	case ModelTypeDecisionTree:
		return NewDecisionTree(maxDepth), nil
	default:
		return nil, fmt.Errorf("%q: %w", modelType, ErrUnsupportedModel)
	}
}

func LoadModel(modelType, path string) (MLModel, error) {
	model, err := NewModel(modelType, 0)
	if err != nil {
		return nil, err
	}
	if err := model.Load(path); err != nil {
		return nil, err
	}
	return model, nil
}

type cacheKey struct {
	modelType string
	path      string
}

type ModelCache struct {
	cache *lru.Cache[cacheKey, MLModel]
	load  func(modelType, path string) (MLModel, error)
}

func NewModelCache(size int) (*ModelCache, error) {
	if size <= 0 {
		size = 1
	}
	cache, err := lru.New[cacheKey, MLModel](size)
	if err != nil {
		return nil, err
	}
	return &ModelCache{cache: cache, load: LoadModel}, nil
}

// failed loads are not cached
func (c *ModelCache) Get(modelType, path string) (MLModel, error) {
	key := cacheKey{modelType: modelType, path: path}
	if model, ok := c.cache.Get(key); ok {
		return model, nil
	}
	model, err := c.load(modelType, path)
	if err != nil {
		return nil, err
	}
	c.cache.Add(key, model)
	return model, nil
}

func (c *ModelCache) Invalidate(modelType, path string) {
	c.cache.Remove(cacheKey{modelType: modelType, path: path})
}

func (c *ModelCache) Len() int {
	return c.cache.Len()
}
