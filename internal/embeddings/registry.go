package embeddings

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrUnknownModel is returned when an embedding model key is not in the catalog.
var ErrUnknownModel = errors.New("unknown embedding model")

// ModelSpec describes one entry of the embedding model catalog.
type ModelSpec struct {
	// ID is the pretrained model identifier the serving backend knows,
	// e.g. a Hugging Face repo name.
	ID string
	// Dimensions is the output vector dimension of the model.
	Dimensions int
}

// catalog maps the user-facing model keys to pretrained model identifiers.
// The mapping is configuration: the backend serving these models is chosen
// by the factory, not here.
var catalog = map[string]ModelSpec{
	"ernie-tiny":    {ID: "nghuyong/ernie-3.0-nano-zh", Dimensions: 312},
	"ernie-base":    {ID: "nghuyong/ernie-3.0-xbase-zh", Dimensions: 1024},
	"text2vec-base": {ID: "shibing624/text2vec-base-chinese", Dimensions: 768},
}

// Lookup resolves a catalog key to its model spec.
func Lookup(key string) (ModelSpec, error) {
	spec, ok := catalog[key]
	if !ok {
		return ModelSpec{}, fmt.Errorf("%w: %q", ErrUnknownModel, key)
	}
	return spec, nil
}

// Models returns the catalog keys in sorted order.
func Models() []string {
	keys := make([]string, 0, len(catalog))
	for k := range catalog {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Factory constructs an Embedder for a catalog entry. Construction may be
// expensive (model weights are loaded by the backend on first use), which
// is why the Registry caches the result.
type Factory func(spec ModelSpec) (Embedder, error)

// Registry lazily constructs embedders by catalog key and caches them for
// the lifetime of the process. Cached embedders are read-only after
// construction and safe to share across concurrent requests.
type Registry struct {
	factory Factory

	mu    sync.Mutex
	cache map[string]Embedder
}

// NewRegistry creates a Registry backed by the given factory.
func NewRegistry(factory Factory) *Registry {
	return &Registry{
		factory: factory,
		cache:   make(map[string]Embedder),
	}
}

// Resolve returns the embedder for the given catalog key, constructing it
// on first use. Unknown keys fail with ErrUnknownModel.
func (r *Registry) Resolve(key string) (Embedder, error) {
	spec, err := Lookup(key)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if e, ok := r.cache[key]; ok {
		return e, nil
	}

	e, err := r.factory(spec)
	if err != nil {
		return nil, fmt.Errorf("constructing embedder %q: %w", key, err)
	}
	r.cache[key] = e
	return e, nil
}
