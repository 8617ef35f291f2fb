package recipe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseIngredients(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		want    []string
		wantErr error
	}{
		{
			name: "section ends at blank line",
			text: "Ingredients:\n- 2 eggs\n- 1 cup flour\n\nInstructions:\n- Mix",
			want: []string{"2 eggs", "1 cup flour"},
		},
		{
			name:    "no ingredients header",
			text:    "Pancakes\n- Mix everything\n- Fry",
			want:    []string{},
			wantErr: ErrNoIngredients,
		},
		{
			name: "section runs to end of input",
			text: "Ingredients:\n- 2 eggs\n- 1 cup flour",
			want: []string{"2 eggs", "1 cup flour"},
		},
		{
			name: "preamble and non-bullet lines are skipped",
			text: "Here is a simple omelet.\n\n**Ingredients**\n- 3 eggs\nSeason to taste\n-  pinch of salt  \n\nSteps:\n- Whisk",
			want: []string{"3 eggs", "pinch of salt"},
		},
		{
			name: "header match is case-insensitive",
			text: "INGREDIENTS\n- 1 onion",
			want: []string{"1 onion"},
		},
		{
			name: "only one leading bullet is stripped",
			text: "Ingredients:\n-- 1 tbsp oil",
			want: []string{"- 1 tbsp oil"},
		},
		{
			name: "carriage returns are tolerated",
			text: "Ingredients:\r\n- 2 eggs\r\n\r\n- ignored",
			want: []string{"2 eggs"},
		},
		{
			name:    "header with blank line straight after",
			text:    "Ingredients:\n\n- 2 eggs",
			want:    []string{},
			wantErr: ErrNoIngredients,
		},
		{
			name: "bare bullets name nothing",
			text: "Ingredients:\n- 2 eggs\n-\n-   \n- salt",
			want: []string{"2 eggs", "salt"},
		},
		{
			name:    "only bare bullets",
			text:    "Ingredients:\n-\n- ",
			want:    []string{},
			wantErr: ErrNoIngredients,
		},
		{
			name:    "empty text",
			text:    "",
			want:    []string{},
			wantErr: ErrNoIngredients,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseIngredients(tt.text)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}
