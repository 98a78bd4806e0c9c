package ui

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectPlain(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    int
		wantErr error
	}{
		{"first", "1\n", 0, nil},
		{"last", "3\n", 2, nil},
		{"retry after invalid", "9\nabc\n2\n", 1, nil},
		{"quit", "q\n", -1, ErrCancelled},
		{"eof", "", -1, ErrCancelled},
	}

	items := []string{"Gibi", "Kızılcık Şerbeti", "Yalı Çapkını"}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			got, err := SelectPlain(strings.NewReader(tt.input), &out, "Dizi", items)
			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Contains(t, out.String(), "  2) Kızılcık Şerbeti")
		})
	}
}

func TestSelectPlainEmpty(t *testing.T) {
	_, err := SelectPlain(strings.NewReader("1\n"), &bytes.Buffer{}, "Dizi", nil)
	assert.Error(t, err)
}

func TestInputPlain(t *testing.T) {
	got, err := InputPlain(strings.NewReader("  yalı çapkını \n"), &bytes.Buffer{}, "Ara")
	require.NoError(t, err)
	assert.Equal(t, "yalı çapkını", got)

	got, err = InputPlain(strings.NewReader("gibi"), &bytes.Buffer{}, "Ara")
	require.NoError(t, err)
	assert.Equal(t, "gibi", got)

	_, err = InputPlain(strings.NewReader("\n"), &bytes.Buffer{}, "Ara")
	assert.Error(t, err)
}

func update(t *testing.T, m tea.Model, msgs ...tea.Msg) tea.Model {
	t.Helper()
	for _, msg := range msgs {
		m, _ = m.Update(msg)
	}
	return m
}

func TestSelectModelChoosesItem(t *testing.T) {
	m := update(t, newSelectModel("Bölüm", []string{"3.Bölüm", "2.Bölüm", "1.Bölüm"}),
		tea.WindowSizeMsg{Width: 80, Height: 24},
		tea.KeyMsg{Type: tea.KeyDown},
		tea.KeyMsg{Type: tea.KeyEnter},
	).(selectModel)

	assert.False(t, m.cancelled)
	assert.Equal(t, 1, m.choice)
}

func TestSelectModelCancel(t *testing.T) {
	m := update(t, newSelectModel("Bölüm", []string{"1.Bölüm"}),
		tea.WindowSizeMsg{Width: 80, Height: 24},
		tea.KeyMsg{Type: tea.KeyEsc},
	).(selectModel)

	assert.True(t, m.cancelled)
	assert.Equal(t, -1, m.choice)
}

func TestInputModel(t *testing.T) {
	m := update(t, newInputModel("Ara"),
		tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("gibi")},
		tea.KeyMsg{Type: tea.KeyEnter},
	).(inputModel)

	assert.False(t, m.cancelled)
	assert.Equal(t, "gibi", m.input.Value())
}
