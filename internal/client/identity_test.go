package client

import "testing"

func TestIsIdentityQuestion(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"Who made you?", true},
		{"who is your creator", true},
		{"WHO BUILT YOU", true},
		{"who maked u", true},
		{"ur creator?", true},
		{"నిన్ను ఎవరు తయారు చేశారు", true},
		{"உன்னை யார் உருவாக்கினார்கள்", true},
		{"तुम्हें किसने बनाया", true},
		{"¿Quien te creó?", true},
		{"谁开发了你", true},
		{"what is photosynthesis", false},
		{"explain newton's laws", false},
		{"", false},
		{"   ", false},
	}

	for _, tt := range tests {
		if got := IsIdentityQuestion(tt.input); got != tt.want {
			t.Errorf("IsIdentityQuestion(%q): Expected %v, got %v", tt.input, tt.want, got)
		}
	}
}
