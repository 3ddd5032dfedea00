package command

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []Command
		wantErr bool
	}{
		{
			name:  "Single command",
			input: "play",
			want:  []Command{{Name: "play"}},
		},
		{
			name:  "Command with argument",
			input: "seek 30000",
			want:  []Command{{Name: "seek", Args: []string{"30000"}}},
		},
		{
			name:  "Multiple commands separated by semicolon",
			input: "pause; seek 1000; play",
			want: []Command{
				{Name: "pause"},
				{Name: "seek", Args: []string{"1000"}},
				{Name: "play"},
			},
		},
		{
			name:  "Empty line yields no commands",
			input: "",
			want:  nil,
		},
		{
			name:  "Whitespace-only line yields no commands",
			input: "   \t  ",
			want:  nil,
		},
		{
			name:  "Empty chunks are skipped",
			input: ";;play;;",
			want:  []Command{{Name: "play"}},
		},
		{
			name:  "Verbs are case-insensitive",
			input: "PlayPause",
			want:  []Command{{Name: "playpause"}},
		},
		{
			name:    "Unknown verb fails the whole line",
			input:   "play; teleport",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCommand_String(t *testing.T) {
	assert.Equal(t, "play", Command{Name: "play"}.String())
	assert.Equal(t, "seek 30000", Command{Name: "seek", Args: []string{"30000"}}.String())
}

func TestQuit(t *testing.T) {
	assert.Equal(t, Command{Name: "quit"}, Quit())
}
