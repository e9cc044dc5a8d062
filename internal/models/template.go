package models

// FormTemplate defines a service/incident request form: its fields (as a
// JSON Schema the submitted form data is validated against) and the approval
// chain instantiated for requests created from it.
type FormTemplate struct {
	ID            string             `json:"id" yaml:"id"`
	Name          string             `json:"name" yaml:"name"`
	Category      string             `json:"category" yaml:"category"`
	Schema        map[string]any     `json:"schema" yaml:"schema"`
	ApprovalChain []ApprovalLevelDef `json:"approval_chain" yaml:"approval_chain"`
}

// HasApprovals reports whether requests from this template go through the
// approval workflow at all.
func (t *FormTemplate) HasApprovals() bool {
	return len(t.ApprovalChain) > 0
}
