// Package models defines the transformation revision records read by the runtime utilities.
package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// State is the lifecycle state of a transformation revision.
type State string

const (
	StateDraft    State = "DRAFT"
	StateReleased State = "RELEASED"
	StateDisabled State = "DISABLED"
)

// Type distinguishes components (source code) from workflows (graphs).
type Type string

const (
	TypeComponent Type = "COMPONENT"
	TypeWorkflow  Type = "WORKFLOW"
)

// IOConnector is a named, typed input or output port.
type IOConnector struct {
	ID       uuid.UUID `json:"id"`
	Name     *string   `json:"name,omitempty"`
	DataType DataType  `json:"data_type"`
}

// HasName reports whether the port carries a non-empty name.
func (c IOConnector) HasName() bool {
	return c.Name != nil && *c.Name != ""
}

// IOInterface holds the ordered ports of a revision.
type IOInterface struct {
	Inputs  []IOConnector `json:"inputs"`
	Outputs []IOConnector `json:"outputs"`
}

// InputWiring binds a literal example value to a named input.
type InputWiring struct {
	WorkflowInputName string            `json:"workflow_input_name"`
	AdapterID         string            `json:"adapter_id"`
	RefID             *string           `json:"ref_id,omitempty"`
	RefIDType         *string           `json:"ref_id_type,omitempty"`
	Filters           map[string]string `json:"filters,omitempty"`
}

// OutputWiring routes a named output to an adapter.
type OutputWiring struct {
	WorkflowOutputName string            `json:"workflow_output_name"`
	AdapterID          string            `json:"adapter_id"`
	RefID              *string           `json:"ref_id,omitempty"`
	RefIDType          *string           `json:"ref_id_type,omitempty"`
	Filters            map[string]string `json:"filters,omitempty"`
}

// WorkflowWiring is the test wiring stored with a revision.
type WorkflowWiring struct {
	InputWirings  []InputWiring  `json:"input_wirings"`
	OutputWirings []OutputWiring `json:"output_wirings"`
}

// TransformationRevision is a versioned component or workflow definition.
type TransformationRevision struct {
	ID                uuid.UUID       `json:"id"`
	RevisionGroupID   uuid.UUID       `json:"revision_group_id"`
	Name              string          `json:"name"`
	Description       string          `json:"description"`
	Category          string          `json:"category"`
	VersionTag        string          `json:"version_tag"`
	State             State           `json:"state"`
	Type              Type            `json:"type"`
	Documentation     string          `json:"documentation"`
	ReleasedTimestamp *time.Time      `json:"released_timestamp,omitempty"`
	DisabledTimestamp *time.Time      `json:"disabled_timestamp,omitempty"`
	IOInterface       IOInterface     `json:"io_interface"`
	Content           json.RawMessage `json:"content"`
	TestWiring        WorkflowWiring  `json:"test_wiring"`
}

// ErrNoCode is returned by Code for revisions that do not carry source code.
var ErrNoCode = errors.New("transformation revision has no code content")

// IsComponent reports whether the revision content is executable source code.
func (tr *TransformationRevision) IsComponent() bool {
	return tr.Type == TypeComponent
}

// Code returns the source text of a component revision.
func (tr *TransformationRevision) Code() (string, error) {
	if !tr.IsComponent() {
		return "", fmt.Errorf("%w: %s is of type %s", ErrNoCode, tr.ID, tr.Type)
	}
	var code string
	if err := json.Unmarshal(tr.Content, &code); err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrNoCode, tr.ID, err)
	}
	return code, nil
}

// SetCode stores source text as the revision content.
func (tr *TransformationRevision) SetCode(code string) error {
	raw, err := json.Marshal(code)
	if err != nil {
		return err
	}
	tr.Content = raw
	return nil
}

// Validate checks the enumerations carried by the revision.
func (tr *TransformationRevision) Validate() error {
	switch tr.State {
	case StateDraft, StateReleased, StateDisabled:
	default:
		return fmt.Errorf("invalid state %q", tr.State)
	}
	switch tr.Type {
	case TypeComponent, TypeWorkflow:
	default:
		return fmt.Errorf("invalid type %q", tr.Type)
	}
	for _, ports := range [][]IOConnector{tr.IOInterface.Inputs, tr.IOInterface.Outputs} {
		for _, p := range ports {
			if !p.DataType.Valid() {
				return fmt.Errorf("port %s: invalid data type %q", p.ID, p.DataType)
			}
		}
	}
	return nil
}

// DoctestResponse is the outcome of running the embedded examples of a component.
type DoctestResponse struct {
	NofAttempted int    `json:"nof_attempted"`
	NofFailed    int    `json:"nof_failed"`
	Output       string `json:"output"`
}
