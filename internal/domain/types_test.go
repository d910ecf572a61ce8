package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestFieldValue_MarshalJSON(t *testing.T) {
	tests := []struct {
		name string
		v    FieldValue
		want string
	}{
		{"zero number", NumberValue(0), `{"kind":"NUMBER","number":0}`},
		{"number", NumberValue(2.5), `{"kind":"NUMBER","number":2.5}`},
		{"text", TextValue("hi"), `{"kind":"TEXT","text":"hi"}`},
		{"select", SelectValue("P1"), `{"kind":"SINGLE_SELECT","text":"P1"}`},
		{"date", DateValue(time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)), `{"kind":"DATE","date":"2024-05-01T00:00:00Z"}`},
		{"empty date", DateValue(time.Time{}), `{"kind":"DATE"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := json.Marshal(tt.v)
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(got))
		})
	}
}

func TestFieldValue_MarshalYAMLKeepsZeroNumber(t *testing.T) {
	out, err := yaml.Marshal(map[string]FieldValue{"Estimate": NumberValue(0)})
	require.NoError(t, err)

	var decoded map[string]map[string]interface{}
	require.NoError(t, yaml.Unmarshal(out, &decoded))
	assert.Equal(t, "NUMBER", decoded["Estimate"]["kind"])
	assert.Contains(t, decoded["Estimate"], "number")
	assert.EqualValues(t, 0, decoded["Estimate"]["number"])
	assert.NotContains(t, decoded["Estimate"], "text")
}

func TestFieldValue_JSONRoundTripKeepsZeroNumber(t *testing.T) {
	item := Item{ID: "PVTI_1", Title: "Sized", Fields: map[string]FieldValue{"Estimate": NumberValue(0)}}
	out, err := json.Marshal(item)
	require.NoError(t, err)

	var back Item
	require.NoError(t, json.Unmarshal(out, &back))
	assert.Equal(t, NumberValue(0), back.Fields["Estimate"])
	assert.Equal(t, "0", back.Fields["Estimate"].String())
}
