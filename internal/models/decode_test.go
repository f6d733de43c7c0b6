package models

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeBMIRequest(t *testing.T) {
	var req BMIRequest
	require.NoError(t, Decode([]byte(`{"weight": 70, "height": 1.75, "name": "sam"}`), &req, false))
	assert.Equal(t, 70.0, *req.Weight)
	assert.Equal(t, 1.75, *req.Height)
}

func TestDecodeZeroIsPresent(t *testing.T) {
	var req BMIRequest
	require.NoError(t, Decode([]byte(`{"weight": 0, "height": 0}`), &req, false))
	assert.Equal(t, 0.0, *req.Weight)
}

func TestDecodeStrictRejectsUnknown(t *testing.T) {
	var req BMIRequest
	err := Decode([]byte(`{"weight": 70, "height": 1.75, "name": "sam"}`), &req, true)
	assert.ErrorIs(t, err, ErrUnknownField)
	assert.Contains(t, err.Error(), "name")
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
		want error
	}{
		{"empty", "   ", ErrMalformed},
		{"syntax", `{"weight": }`, ErrMalformed},
		{"array body", `[70, 1.75]`, ErrMalformed},
		{"missing weight", `{"height": 1.75}`, ErrMissingField},
		{"string weight", `{"weight": "70", "height": 1.75}`, ErrFieldType},
		{"trailing", `{"weight": 70, "height": 1.75} x`, ErrMalformed},
		{"upper case weight", `{"WEIGHT": 70, "height": 1.75}`, ErrUnknownField},
		{"both spellings", `{"weight": 70, "Weight": 80, "height": 1.75}`, ErrUnknownField},
		{"duplicate weight", `{"weight": 70, "weight": 80, "height": 1.75}`, ErrMalformed},
		{"duplicate extra", `{"weight": 70, "height": 1.75, "note": 1, "note": 2}`, ErrMalformed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req BMIRequest
			err := Decode([]byte(tt.body), &req, false)
			assert.ErrorIs(t, err, tt.want)
			assert.True(t, IsBadRequest(err))
		})
	}
}

func TestValidateNamesJSONFields(t *testing.T) {
	err := Validate(&BMIRequest{})
	require.ErrorIs(t, err, ErrMissingField)
	assert.Contains(t, err.Error(), "weight")
	assert.Contains(t, err.Error(), "height")
}

func TestIsBadRequest(t *testing.T) {
	assert.False(t, IsBadRequest(nil))
	assert.False(t, IsBadRequest(errors.New("disk on fire")))
	assert.True(t, IsBadRequest(ErrArity))
}

func TestCheckKeys(t *testing.T) {
	fields := []string{"a", "b"}
	tests := []struct {
		name  string
		body  string
		exact bool
		want  error
	}{
		{"exact set", `{"b": 1, "a": 2}`, true, nil},
		{"extra allowed", `{"a": 1, "b": 2, "c": 3}`, false, nil},
		{"extra rejected", `{"a": 1, "b": 2, "c": 3}`, true, ErrUnknownField},
		{"case differs", `{"A": 1, "b": 2}`, false, ErrUnknownField},
		{"missing", `{"a": 1}`, false, ErrMissingField},
		{"repeated", `{"a": 1, "a": 1, "b": 2}`, true, ErrMalformed},
		{"nested keys ignored", `{"a": {"A": 1, "a": 2}, "b": [{"b": 1}]}`, true, nil},
		{"not an object", `[1, 2]`, false, ErrMalformed},
		{"unterminated", `{"a": 1, "b": 2`, false, ErrMalformed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckKeys([]byte(tt.body), fields, tt.exact)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestDecodeCaseMismatchNamesField(t *testing.T) {
	var req BMIRequest
	err := Decode([]byte(`{"WEIGHT": 70, "height": 1.75}`), &req, false)
	require.ErrorIs(t, err, ErrUnknownField)
	assert.Contains(t, err.Error(), `"WEIGHT"`)
	assert.Contains(t, err.Error(), `"weight"`)
}
