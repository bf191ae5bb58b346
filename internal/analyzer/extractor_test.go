package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hookline/hookline/internal/domain"
)

func TestCodeParameterExtractor_Extract(t *testing.T) {
	extractor := NewCodeParameterExtractor()

	tests := []struct {
		name     string
		code     string
		expected []domain.ParameterSpec
	}{
		{
			name:     "empty code",
			code:     "   ",
			expected: nil,
		},
		{
			name: "required body fields",
			code: `
const to = items[0].json.body.to;
const message = items[0].json.body.message;
return [{ json: { to, message } }];`,
			expected: []domain.ParameterSpec{
				{Name: "to", Type: "string", Required: true},
				{Name: "message", Type: "string", Required: true},
			},
		},
		{
			name: "string default makes field optional",
			code: `
const to = items[0].json.body.to;
const subject = items[0].json.body.subject || "Hello";
return [{ json: { to, subject } }];`,
			expected: []domain.ParameterSpec{
				{Name: "to", Type: "string", Required: true},
				{Name: "subject", Type: "string", Required: false, Default: "Hello"},
			},
		},
		{
			name: "payload root access",
			code: `const name = payload.name; return [{ json: { name } }];`,
			expected: []domain.ParameterSpec{
				{Name: "name", Type: "string", Required: true},
			},
		},
		{
			name: "bracket access with string key",
			code: `const city = payload["city"]; return [{ json: { city } }];`,
			expected: []domain.ParameterSpec{
				{Name: "city", Type: "string", Required: true},
			},
		},
		{
			name: "collection method marks field as array",
			code: `const lines = payload.recipients.map(r => r.trim()); return lines;`,
			expected: []domain.ParameterSpec{
				{Name: "recipients", Type: "array", Required: true},
			},
		},
		{
			name: "index access marks field as array",
			code: `const first = payload.tags[0]; return [{ json: { first } }];`,
			expected: []domain.ParameterSpec{
				{Name: "tags", Type: "array", Required: true},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			specs := extractor.Extract(tt.code)

			require.Len(t, specs, len(tt.expected))

			for i, expected := range tt.expected {
				assert.Equal(t, expected.Name, specs[i].Name)
				assert.Equal(t, expected.Type, specs[i].Type)
				assert.Equal(t, expected.Required, specs[i].Required)

				if expected.Default != nil {
					assert.EqualValues(t, expected.Default, specs[i].Default)
				}
			}
		})
	}
}

func TestCodeParameterExtractor_Extract_NumericDefault(t *testing.T) {
	extractor := NewCodeParameterExtractor()

	specs := extractor.Extract(`const limit = payload.limit || 5; return [{ json: { limit } }];`)

	require.Len(t, specs, 1)
	assert.Equal(t, "limit", specs[0].Name)
	assert.False(t, specs[0].Required)
	assert.EqualValues(t, 5, specs[0].Default)
}

func TestCodeParameterExtractor_Extract_FirstAppearanceOrder(t *testing.T) {
	extractor := NewCodeParameterExtractor()

	specs := extractor.Extract(`
const b = payload.beta;
const a = payload.alpha;
const again = payload.beta;
return [{ json: { a, b } }];`)

	require.Len(t, specs, 2)
	assert.Equal(t, "beta", specs[0].Name)
	assert.Equal(t, "alpha", specs[1].Name)
}

func TestCodeParameterExtractor_Extract_RegexFallback(t *testing.T) {
	extractor := NewCodeParameterExtractor()

	// Unbalanced brace, so the parser gives up and the regex pass runs.
	specs := extractor.Extract(`
if (payload.to {
  const subject = payload.subject || "Hello";
`)

	require.Len(t, specs, 2)
	assert.Equal(t, "to", specs[0].Name)
	assert.True(t, specs[0].Required)
	assert.Equal(t, "subject", specs[1].Name)
	assert.False(t, specs[1].Required)
	assert.Equal(t, "Hello", specs[1].Default)
}
