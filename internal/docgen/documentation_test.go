package docgen

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"revision-runtime/backend/pkg/models"
)

func strPtr(s string) *string { return &s }

func port(name string, dt models.DataType) models.IOConnector {
	c := models.IOConnector{ID: uuid.New(), DataType: dt}
	if name != "" {
		c.Name = strPtr(name)
	}
	return c
}

func TestGenerate_NoInputs(t *testing.T) {
	tr := &models.TransformationRevision{
		Name:        "Constant",
		Category:    "Basic",
		Description: "Returns a constant",
		Type:        models.TypeComponent,
		IOInterface: models.IOInterface{
			Outputs: []models.IOConnector{port("value", models.DataTypeFloat)},
		},
	}

	doc := Generate(tr)

	assert.Contains(t, doc, "# Constant (Basic)\n")
	assert.Contains(t, doc, "## Inputs\nThis component has no inputs.\n")
	assert.Contains(t, doc, "## Outputs\n* **value** (Float)\n")
	assert.Contains(t, doc, "## Examples\n"+NoExamples+"\n")
}

func TestGenerate_InputsInPortOrder(t *testing.T) {
	tr := &models.TransformationRevision{
		Name: "Combine",
		Type: models.TypeWorkflow,
		IOInterface: models.IOInterface{
			Inputs: []models.IOConnector{
				port("series", models.DataTypeSeries),
				port("", models.DataTypeAny),
				port("frame", models.DataTypeDataFrame),
				port("flag", models.DataTypeBoolean),
			},
		},
	}

	doc := Generate(tr)

	var bullets []string
	section := doc[strings.Index(doc, "## Inputs"):strings.Index(doc, "## Outputs")]
	for _, line := range strings.Split(section, "\n") {
		if strings.HasPrefix(line, "* ") {
			bullets = append(bullets, line)
		}
	}
	assert.Equal(t, []string{
		"* **series** (Pandas Series)",
		"* **frame** (Pandas DataFrame)",
		"* **flag** (Boolean)",
	}, bullets)
	assert.Contains(t, doc, "This workflow has no outputs.")
}

func TestGenerate_Examples(t *testing.T) {
	tr := &models.TransformationRevision{
		Name: "Add",
		Type: models.TypeComponent,
		TestWiring: models.WorkflowWiring{
			InputWirings: []models.InputWiring{
				{WorkflowInputName: "b", AdapterID: "direct_provisioning", Filters: map[string]string{"value": "2.5"}},
				{WorkflowInputName: "a", AdapterID: "direct_provisioning", Filters: map[string]string{"value": "abc"}},
			},
		},
	}

	doc := Generate(tr)

	expected := "```json\n" +
		"{\n" +
		"    \"inputs\": {\n" +
		"        \"a\": \"abc\",\n" +
		"        \"b\": 2.5\n" +
		"    }\n" +
		"}\n" +
		"```"
	assert.Contains(t, doc, expected)
}

func TestRenderValue_Scalars(t *testing.T) {
	assert.Equal(t, `"x \"y\""`, RenderValue(`x "y"`, 0))
	assert.Equal(t, "true", RenderValue(true, 0))
	assert.Equal(t, "null", RenderValue(nil, 0))
	assert.Equal(t, "3", RenderValue(3, 0))
	assert.Equal(t, "{}", RenderValue(map[string]any{}, 2))
	assert.Equal(t, "[]", RenderValue([]any{}, 2))
}

func TestRenderValue_IndentGrowsWithDepth(t *testing.T) {
	value := parseLiteral(`{"level1": {"level2": [1, {"level3": "deep"}]}}`)

	out := RenderValue(value, 0)

	expected := `{
    "level1": {
        "level2": [
            1,
            {
                "level3": "deep"
            }
        ]
    }
}`
	assert.Equal(t, expected, out)

	indentOf := func(key string) int {
		for _, line := range strings.Split(out, "\n") {
			if strings.Contains(line, key) {
				return len(line) - len(strings.TrimLeft(line, " "))
			}
		}
		return -1
	}
	assert.Less(t, indentOf(`"level1"`), indentOf(`"level2"`))
	assert.Less(t, indentOf(`"level2"`), indentOf(`"level3"`))
}

func TestParseLiteral(t *testing.T) {
	assert.Equal(t, "plain text", parseLiteral("plain text"))
	assert.Equal(t, "1 2", parseLiteral("1 2"))
	assert.Equal(t, []any{"a"}, parseLiteral(`["a"]`))
	assert.Equal(t, json.Number("1"), parseLiteral(" 1 \n"))
}

func TestParseLiteral_TrailingText(t *testing.T) {
	for _, in := range []string{"1 }", "2]", `"a"}`, `{"a": 1}}`, "[1]]"} {
		assert.Equal(t, in, parseLiteral(in), "input %q", in)
	}
}
