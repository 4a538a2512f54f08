package application

import (
	"reflect"
	"testing"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		title string
		want  string
	}{
		{"Test Entry", "test-entry"},
		{"The Digital Canvas: Art in the Modern Age", "the-digital-canvas-art-in-the-modern-age"},
		{"  --Hello,   World!--  ", "hello-world"},
		{"LIFE⁴ (ART) = ¹LOVE", "life-art-love"},
		{"Café au lait", "caf-au-lait"},
		{"2024 Recap", "2024-recap"},
		{"!!!", ""},
		{"", ""},
	}

	for _, tt := range tests {
		if got := Slugify(tt.title); got != tt.want {
			t.Errorf("Slugify(%q) = %q, want %q", tt.title, got, tt.want)
		}
	}
}

func TestParseTags(t *testing.T) {
	tests := []struct {
		name  string
		field string
		want  []string
	}{
		{name: "duplicates kept", field: "a, b, b", want: []string{"a", "b", "b"}},
		{name: "blank entries dropped", field: " art ,, ,music,", want: []string{"art", "music"}},
		{name: "inner spaces kept", field: "digital art, social media", want: []string{"digital art", "social media"}},
		{name: "empty field", field: "", want: []string{}},
		{name: "only commas", field: ", ,", want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseTags(tt.field); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseTags(%q) = %#v, want %#v", tt.field, got, tt.want)
			}
		})
	}
}
