// Package template loads form template definitions and validates submitted
// form data against them.
package template

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"

	"github.com/tommy01-cpu/aspac-ithelpdesk-sub001/internal/models"
)

// ErrTemplateNotFound is returned when a template ID is unknown.
var ErrTemplateNotFound = fmt.Errorf("template not found")

// ValidationError carries the individual schema violations for a rejected
// form submission.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "form data invalid: " + strings.Join(e.Problems, "; ")
}

// Registry holds the loaded form templates. It also serves as the approval
// engine's chain source, resolving a request's approval chain from its
// template.
type Registry struct {
	mu        sync.RWMutex
	templates map[string]*models.FormTemplate
}

func NewRegistry() *Registry {
	return &Registry{templates: make(map[string]*models.FormTemplate)}
}

// LoadDir reads every .yaml/.yml file in dir as one template definition.
// Later loads replace earlier templates with the same ID.
func (r *Registry) LoadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read template dir: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if ext != ".yaml" && ext != ".yml" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := r.loadFile(path); err != nil {
			return fmt.Errorf("load template %s: %w", entry.Name(), err)
		}
	}
	return nil
}

func (r *Registry) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var tpl models.FormTemplate
	if err := yaml.Unmarshal(data, &tpl); err != nil {
		return fmt.Errorf("parse yaml: %w", err)
	}
	if tpl.ID == "" {
		return fmt.Errorf("template has no id")
	}
	return r.Register(&tpl)
}

// Register adds or replaces a template. Approval chain levels are sorted and
// checked for gaps so the engine can rely on contiguous 1-based levels.
func (r *Registry) Register(tpl *models.FormTemplate) error {
	chain := append([]models.ApprovalLevelDef(nil), tpl.ApprovalChain...)
	sort.Slice(chain, func(i, j int) bool { return chain[i].Level < chain[j].Level })
	for i, def := range chain {
		if def.Level != i+1 {
			return fmt.Errorf("template %s: approval chain levels must be contiguous from 1, got %d at position %d", tpl.ID, def.Level, i)
		}
		if len(def.Approvers) == 0 {
			return fmt.Errorf("template %s: level %d has no approvers", tpl.ID, def.Level)
		}
	}
	tpl.ApprovalChain = chain

	r.mu.Lock()
	defer r.mu.Unlock()
	r.templates[tpl.ID] = tpl
	return nil
}

// Get returns a template by ID.
func (r *Registry) Get(id string) (*models.FormTemplate, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tpl, ok := r.templates[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTemplateNotFound, id)
	}
	return tpl, nil
}

// List returns all templates sorted by ID.
func (r *Registry) List() []*models.FormTemplate {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*models.FormTemplate, 0, len(r.templates))
	for _, tpl := range r.templates {
		out = append(out, tpl)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// ValidateFormData checks submitted form data against the template's JSON
// schema. Templates without a schema accept anything.
func (r *Registry) ValidateFormData(templateID string, formData json.RawMessage) error {
	tpl, err := r.Get(templateID)
	if err != nil {
		return err
	}
	if len(tpl.Schema) == 0 {
		return nil
	}
	if len(formData) == 0 {
		formData = json.RawMessage("{}")
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewGoLoader(tpl.Schema),
		gojsonschema.NewBytesLoader(formData),
	)
	if err != nil {
		return fmt.Errorf("validate form data: %w", err)
	}
	if result.Valid() {
		return nil
	}

	verr := &ValidationError{}
	for _, desc := range result.Errors() {
		verr.Problems = append(verr.Problems, desc.String())
	}
	return verr
}

// ChainFor resolves the approval chain for a request from its template. It
// satisfies the approval engine's ChainSource interface. Unknown templates
// yield an empty chain rather than an error so legacy requests whose template
// was removed still resolve.
func (r *Registry) ChainFor(ctx context.Context, req *models.Request) ([]models.ApprovalLevelDef, error) {
	tpl, err := r.Get(req.TemplateID)
	if err != nil {
		return nil, nil
	}
	return tpl.ApprovalChain, nil
}
