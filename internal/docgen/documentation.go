// Package docgen builds the Markdown documentation of a transformation revision.
package docgen

import (
	"strings"

	"revision-runtime/backend/pkg/models"
)

const template = `# {name} ({category})

## Description
{description}

## Inputs
{inputs}

## Outputs
{outputs}

## Examples
{examples}
`

// NoExamples is emitted when the revision carries no input wirings.
const NoExamples = "No examples available."

// Generate formats the revision into the fixed documentation template.
func Generate(tr *models.TransformationRevision) string {
	kind := "component"
	if tr.Type == models.TypeWorkflow {
		kind = "workflow"
	}

	r := strings.NewReplacer(
		"{name}", tr.Name,
		"{category}", tr.Category,
		"{description}", tr.Description,
		"{inputs}", portList(tr.IOInterface.Inputs, "This "+kind+" has no inputs."),
		"{outputs}", portList(tr.IOInterface.Outputs, "This "+kind+" has no outputs."),
		"{examples}", examples(tr.TestWiring),
	)
	return r.Replace(template)
}

func portList(ports []models.IOConnector, empty string) string {
	var lines []string
	for _, p := range ports {
		if !p.HasName() {
			continue
		}
		lines = append(lines, "* **"+*p.Name+"** ("+p.DataType.Label()+")")
	}
	if len(lines) == 0 {
		return empty
	}
	return strings.Join(lines, "\n")
}

func examples(wiring models.WorkflowWiring) string {
	if len(wiring.InputWirings) == 0 {
		return NoExamples
	}

	inputs := make(map[string]any, len(wiring.InputWirings))
	for _, w := range wiring.InputWirings {
		value, ok := w.Filters["value"]
		if !ok {
			inputs[w.WorkflowInputName] = nil
			continue
		}
		inputs[w.WorkflowInputName] = parseLiteral(value)
	}

	return "The json input of a typical call of this transformation is\n" +
		"```json\n" +
		RenderValue(map[string]any{"inputs": inputs}, 0) +
		"\n```"
}
