package render

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tamirms/collide"
	"github.com/tamirms/collide/internal/distinct"
	"gopkg.in/yaml.v3"
)

func sampleReport() *collide.Report {
	return &collide.Report{
		RunID:      "0f8fad5b-d9cb-469f-a165-70867728950e",
		Elapsed:    1500 * time.Millisecond,
		Target:     1_176_490,
		Population: 1_176_490,
		Workers:    4,
		Shares:     []int{294122, 294122, 294122, 294124},
		Tolerance:  0.05,
		Sample:     []string{"c0a1", "c0a2"},
		Histogram:  []int{14700, 14712},
		Collisions: []string{"c99xyz"},
		Pools: []collide.PoolSummary{
			{Worker: 0, Share: 294122, Batches: 30, Shortfalls: 2, Duplicates: 1, Digest: "00c0ffee00c0ffee"},
			{Worker: 3, Share: 294124, Batches: 30, Digest: "0123456789abcdef"},
		},
		Checks: []collide.Check{
			{
				Name:       collide.CheckUniqueness,
				Actual:     1_176_489,
				Expected:   1_176_490,
				Counts:     map[distinct.Method]int{distinct.MethodSet: 1_176_489},
				Collisions: []string{"c99xyz"},
			},
			{Name: collide.CheckCount, Passed: true, Actual: 1_176_490, Expected: 1_176_490},
			{Name: collide.CheckDistribution, Passed: true, Actual: []int{14700, 14712}, Expected: 14707, Min: 13972, Max: 15442},
			{Name: collide.CheckCharset, Passed: true, Actual: 0, Expected: 0},
		},
	}
}

func TestTextReport(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Text(&buf, sampleReport()))
	out := buf.String()

	assert.Contains(t, out, "1,176,490 identifiers from 4 workers")
	assert.Contains(t, out, "294,124")
	assert.Contains(t, out, "FAIL uniqueness")
	assert.Contains(t, out, "PASS count")
	assert.Contains(t, out, "PASS distribution")
	assert.Contains(t, out, "PASS charset")
	assert.Contains(t, out, "c99xyz")
	assert.Contains(t, out, "set=1,176,489")
	assert.Contains(t, out, "SHORTFALLS")
	assert.Contains(t, out, "00c0ffee00c0ffee")
	assert.Contains(t, out, "0123456789abcdef")
	// A buffer is not a terminal.
	assert.NotContains(t, out, "\x1b[")
}

func TestJSONReport(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, JSON(&buf, sampleReport()))

	var got map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "0f8fad5b-d9cb-469f-a165-70867728950e", got["runId"])
	assert.EqualValues(t, 1_176_490, got["population"])
	checks, ok := got["checks"].([]any)
	require.True(t, ok)
	assert.Len(t, checks, 4)
	pools, ok := got["pools"].([]any)
	require.True(t, ok)
	require.Len(t, pools, 2)
	first := pools[0].(map[string]any)
	assert.EqualValues(t, 2, first["shortfalls"])
	assert.Equal(t, "00c0ffee00c0ffee", first["digest"])
}

func TestYAMLReport(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, YAML(&buf, sampleReport()))

	var got struct {
		Workers int `yaml:"workers"`
		Checks  []struct {
			Name   string `yaml:"name"`
			Passed bool   `yaml:"passed"`
		} `yaml:"checks"`
	}
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, 4, got.Workers)
	require.Len(t, got.Checks, 4)
	assert.Equal(t, "uniqueness", got.Checks[0].Name)
	assert.False(t, got.Checks[0].Passed)
}

func TestWriteFormats(t *testing.T) {
	for _, format := range []string{"", "text", "JSON", "yaml"} {
		var buf bytes.Buffer
		assert.NoError(t, Write(&buf, sampleReport(), format), format)
		assert.NotEmpty(t, buf.String(), format)
	}

	var buf bytes.Buffer
	assert.Error(t, Write(&buf, sampleReport(), "xml"))
}
