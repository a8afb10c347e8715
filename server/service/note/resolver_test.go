package note

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSplitTagList(t *testing.T) {
	tests := []struct {
		name string
		list string
		want []string
	}{
		{
			name: "simple",
			list: "work,personal",
			want: []string{"work", "personal"},
		},
		{
			name: "whitespace trimmed",
			list: "  work , personal  ",
			want: []string{"work", "personal"},
		},
		{
			name: "empty tokens dropped",
			list: "work,,personal,",
			want: []string{"work", "personal"},
		},
		{
			name: "case-insensitive dedupe keeps first casing",
			list: "Work,work,WORK,reading",
			want: []string{"Work", "reading"},
		},
		{
			name: "empty list",
			list: "",
			want: []string{},
		},
		{
			name: "only separators",
			list: " , ,, ",
			want: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, splitTagList(tt.list))
		})
	}
}
