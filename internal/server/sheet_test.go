package server

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSheet(t *testing.T) {
	t.Run("maps header aliases and assigns stable ids", func(t *testing.T) {
		csv := "ClientName,Mobile\nAda Obi,08031234567\nChinedu Eze,+2348098765432\n"

		rows, err := ParseSheet(strings.NewReader(csv), "+234")
		require.NoError(t, err)
		require.Len(t, rows, 2)

		assert.Equal(t, "0", rows[0].ID)
		assert.Equal(t, "Ada Obi", rows[0].Fullname)
		assert.Equal(t, "+2348031234567", rows[0].Phone)

		assert.Equal(t, "1", rows[1].ID)
		assert.Equal(t, "+2348098765432", rows[1].Phone)
	})

	t.Run("accepts a semicolon-delimited sheet", func(t *testing.T) {
		csv := "name;phone\nAda Obi;08031234567\nChinedu Eze;+2348098765432\n"

		rows, err := ParseSheet(strings.NewReader(csv), "+234")
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, "+2348031234567", rows[0].Phone)
		assert.Equal(t, "+2348098765432", rows[1].Phone)
	})

	t.Run("keeps the comma when the header mixes both delimiters", func(t *testing.T) {
		csv := "name,phone,notes;misc\nAda Obi,08031234567,x\n"

		rows, err := ParseSheet(strings.NewReader(csv), "+234")
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, "+2348031234567", rows[0].Phone)
	})

	t.Run("deduplicates by normalized phone", func(t *testing.T) {
		csv := "name,phone\nAda Obi,08031234567\nAda Duplicate,+2348031234567\nChinedu Eze,08098765432\n"

		rows, err := ParseSheet(strings.NewReader(csv), "+234")
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, "Ada Obi", rows[0].Fullname)
		assert.Equal(t, "Chinedu Eze", rows[1].Fullname)
	})

	t.Run("uses the country column for the dial code", func(t *testing.T) {
		csv := "name,phone,country\nKofi Mensah,0241234567,gh\nAda Obi,08031234567,\n"

		rows, err := ParseSheet(strings.NewReader(csv), "+234")
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, "+233241234567", rows[0].Phone)
		assert.Equal(t, "+2348031234567", rows[1].Phone)
	})

	t.Run("skips rows missing a name or phone", func(t *testing.T) {
		csv := "name,phone\n,08031234567\nAda Obi,\nChinedu Eze,08098765432\n"

		rows, err := ParseSheet(strings.NewReader(csv), "+234")
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, "Chinedu Eze", rows[0].Fullname)
	})

	t.Run("rejects a sheet without recognizable columns", func(t *testing.T) {
		csv := "foo,bar\n1,2\n"
		_, err := ParseSheet(strings.NewReader(csv), "+234")
		assert.Error(t, err)
	})

	t.Run("rejects an empty sheet", func(t *testing.T) {
		_, err := ParseSheet(strings.NewReader(""), "+234")
		assert.Error(t, err)
	})

	t.Run("rejects a sheet with only unusable rows", func(t *testing.T) {
		csv := "name,phone\nAda Obi,notaphone\n"
		_, err := ParseSheet(strings.NewReader(csv), "+234")
		assert.Error(t, err)
	})
}

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		dialCode string
		want     string
		ok       bool
	}{
		{"local with leading zero", "08031234567", "+234", "+2348031234567", true},
		{"already international", "+233 24 123 4567", "+234", "+233241234567", true},
		{"formatting characters stripped", "(080) 3123-4567", "+234", "+2348031234567", true},
		{"bare subscriber number", "8031234567", "+234", "+2348031234567", true},
		{"too short", "12345", "+234", "", false},
		{"letters rejected", "0803abc4567", "+234", "", false},
		{"plus not at start rejected", "080+31234567", "+234", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := NormalizePhone(tt.raw, tt.dialCode)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPersonalize(t *testing.T) {
	assert.Equal(t, "Hello Ada!", Personalize("Hello {name}!", "Ada Obi"))
	assert.Equal(t, "No placeholder", Personalize("No placeholder", "Ada Obi"))
	assert.Equal(t, "Hi Ada, Ada again", Personalize("Hi {name}, {name} again", "Ada Obi"))
}
