package tools

import (
	"github.com/SaiNageswarS/go-collection-boot/linq"
	"github.com/ollama/ollama/api"
)

// Registry is the static capability table built at startup. Lookup is by
// tool name; Definitions preserves registration order so the signature list
// shown to the model is stable across turns.
type Registry struct {
	tools map[string]Tool
	order []string
}

func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]Tool)}
}

func (r *Registry) Register(tool Tool) {
	name := tool.Name()
	if _, exists := r.tools[name]; !exists {
		r.order = append(r.order, name)
	}
	r.tools[name] = tool
}

func (r *Registry) Get(name string) (Tool, bool) {
	tool, ok := r.tools[name]
	return tool, ok
}

func (r *Registry) Len() int {
	return len(r.tools)
}

// Definitions returns the machine-readable function signatures for every
// registered tool, in registration order.
func (r *Registry) Definitions() []api.Tool {
	return linq.Map(r.order, func(name string) api.Tool {
		return r.tools[name].Definition()
	})
}
