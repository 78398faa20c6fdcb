package core

import (
	"net/http"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

type sample struct {
	Username string `json:"username" validate:"required,alphanum_"`
	Title    string `json:"title" validate:"notblank"`
	Ignored  string `json:"-" validate:"omitempty,max=1"`
}

func TestTranslateErrors(t *testing.T) {
	tests := []struct {
		name string
		in   sample
		want map[string]string
	}{
		{name: "valid", in: sample{Username: "ann_b", Title: "x"}},
		{
			name: "required & blank",
			in:   sample{Title: "   "},
			want: map[string]string{"username": "this field is required", "title": "this field cannot be blank"},
		},
		{
			name: "alphanumeric and underscores",
			in:   sample{Username: "ann-b", Title: "x"},
			want: map[string]string{"username": "only alphanumeric characters and underscores are allowed"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate.Struct(tt.in)
			if tt.want == nil {
				assert.NoError(t, err)
				assert.False(t, IsValidationError(err))
				return
			}
			assert.True(t, IsValidationError(err))
			assert.Equal(t, tt.want, TranslateErrors(errors.Wrap(err, "validating")))
		})
	}
}

func TestTranslateErrors_validationError(t *testing.T) {
	err := NewValidationError(nil, FieldError{Field: "grade", Error: "too high"})
	assert.Equal(t, "grade: too high", err.Error())
	assert.Equal(t, map[string]string{"grade": "too high"}, TranslateErrors(err))
	assert.True(t, IsValidationError(err))

	assert.Nil(t, TranslateErrors(NewValidationError(errors.New("invalid credentials"))))
	assert.Nil(t, TranslateErrors(errors.New("lol")))
}

func TestCleanString(t *testing.T) {
	assert.Equal(t, "Ann", CleanString("  Ann \n"))
	assert.Equal(t, "ann@prodigy.io", CleanString(" Ann@Prodigy.io ", true /* lower */))
	assert.Equal(t, "x", *StrPtr(" x "))
}

type statusErr int

func (e statusErr) Error() string   { return http.StatusText(int(e)) }
func (e statusErr) StatusCode() int { return int(e) }

func TestIsUnauthorized(t *testing.T) {
	assert.True(t, IsUnauthorized(statusErr(http.StatusUnauthorized)))
	assert.True(t, IsUnauthorized(errors.Wrap(statusErr(http.StatusUnauthorized), "listing classes")))
	assert.False(t, IsUnauthorized(statusErr(http.StatusForbidden)))
	assert.False(t, IsUnauthorized(errors.New("unauthorized")))
	assert.False(t, IsUnauthorized(nil))
}

func TestShutdownError(t *testing.T) {
	err := errors.Wrap(NewShutdownError("backend unusable"), "opening session")
	assert.True(t, IsShutdown(err))
	assert.False(t, IsShutdown(errors.New("backend unusable")))
}
