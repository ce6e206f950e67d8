package registry

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/vk/socketgrid/internal/config"
	"github.com/vk/socketgrid/internal/dynamic"
)

// Registry holds the node definitions for a single application instance.
type Registry struct {
	definitions map[string]*config.NodeDefinition
	engine      *dynamic.Engine
}

// New creates an empty registry whose nodes are driven by engine.
func New(engine *dynamic.Engine) *Registry {
	if engine == nil {
		engine = dynamic.NewEngine(nil)
	}
	return &Registry{
		definitions: make(map[string]*config.NodeDefinition),
		engine:      engine,
	}
}

// Register adds a definition. Registering the same type twice is a
// programming error and panics.
func (r *Registry) Register(def *config.NodeDefinition) {
	if _, exists := r.definitions[def.Type]; exists {
		panic(fmt.Sprintf("node definition with type '%s' already registered", def.Type))
	}
	slog.Debug("Registering node definition.", "type", def.Type)
	r.definitions[def.Type] = def
}

// PopulateDefinitionsFromModel copies the loaded node definitions from the
// config model into the registry.
func (r *Registry) PopulateDefinitionsFromModel(model *config.Model) {
	for _, name := range sortedKeys(model.Nodes) {
		r.Register(model.Nodes[name])
	}
}

// Definition returns the definition of a node type.
func (r *Registry) Definition(nodeType string) (*config.NodeDefinition, bool) {
	def, ok := r.definitions[nodeType]
	return def, ok
}

// Types lists the registered node types in sorted order.
func (r *Registry) Types() []string {
	return sortedKeys(r.definitions)
}

// Engine returns the dynamic engine used by Build.
func (r *Registry) Engine() *dynamic.Engine {
	return r.engine
}

func sortedKeys(m map[string]*config.NodeDefinition) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
