package extension

import (
	"sync"

	"github.com/viant/x"

	"github.com/signoffhq/signoff/model"
)

// Registry holds the registered classifiers in registration order together
// with a viant/x type registry for their Go payload types, so configuration
// layers can resolve classifier inputs by name.
type Registry struct {
	mux         sync.RWMutex
	classifiers []Classifier
	byName      map[string]Classifier
	types       *x.Registry
}

// NewRegistry creates a registry seeded with the built-in keyword
// classifier.
func NewRegistry(options ...x.RegistryOption) *Registry {
	ret := &Registry{
		byName: map[string]Classifier{},
		types:  x.NewRegistry(options...),
	}
	ret.Register(NewKeywordClassifier())
	return ret
}

// Register adds a classifier; a classifier with the same name is replaced in
// place, keeping its position in the classification order.
func (r *Registry) Register(classifier Classifier) {
	if classifier == nil {
		return
	}
	r.mux.Lock()
	defer r.mux.Unlock()
	name := classifier.Name()
	if _, ok := r.byName[name]; ok {
		for i, c := range r.classifiers {
			if c.Name() == name {
				r.classifiers[i] = classifier
				break
			}
		}
	} else {
		r.classifiers = append(r.classifiers, classifier)
	}
	r.byName[name] = classifier
}

// Lookup returns a classifier by name.
func (r *Registry) Lookup(name string) Classifier {
	r.mux.RLock()
	defer r.mux.RUnlock()
	return r.byName[name]
}

// RegisterType adds a payload type to the type registry.
func (r *Registry) RegisterType(dataType *x.Type) {
	if dataType == nil {
		return
	}
	r.mux.Lock()
	defer r.mux.Unlock()
	r.types.Register(dataType)
}

// LookupType returns a payload type by name.
func (r *Registry) LookupType(name string) *x.Type {
	r.mux.RLock()
	defer r.mux.RUnlock()
	return r.types.Lookup(name)
}

// Classify runs the classifiers in registration order and returns the first
// match; with no match the general category is returned.
func (r *Registry) Classify(context *model.TaskContext, actions []model.ProposedAction) model.Category {
	r.mux.RLock()
	classifiers := append([]Classifier(nil), r.classifiers...)
	r.mux.RUnlock()
	for _, classifier := range classifiers {
		if category, ok := classifier.Classify(context, actions); ok {
			return category
		}
	}
	return model.CategoryGeneral
}
