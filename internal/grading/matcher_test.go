package grading

import (
	"reflect"
	"testing"
)

func TestIsCorrectAnswer(t *testing.T) {
	testCases := []struct {
		name     string
		user     string
		accepted []string
		expected bool
	}{
		{"exact match", "apple", []string{"apple"}, true},
		{"case and whitespace insensitive", " Apple ", []string{"apple"}, true},
		{"mixed case accepted form", "thank you", []string{"Thank You"}, true},
		{"multiple accepted forms", "dog", []string{"cat", "dog", "puppy"}, true},
		{"not among accepted", "bird", []string{"cat", "dog", "puppy"}, false},
		{"pipe packed alternatives first", "a", []string{"a|b"}, true},
		{"pipe packed alternatives second", "b", []string{"a|b"}, true},
		{"packed form not accepted literally", "a or b", []string{"a|b"}, false},
		{"word or delimiter", "colour", []string{"color or colour"}, true},
		{"word or delimiter other side", "color", []string{"color or colour"}, true},
		{"phrase alternative with or", "put off", []string{"put off or postpone"}, true},
		{"array element containing or matched literally", "to be or not to be", []string{"To be or not to be"}, true},
		{"array element containing pipe matched literally", "a|b c", []string{"a|b c"}, true},
		{"empty input not correct", "", []string{"apple"}, false},
		{"whitespace only not correct", "   ", []string{"apple"}, false},
		{"empty accepted set", "apple", nil, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsCorrectAnswer(tc.user, tc.accepted); got != tc.expected {
				t.Errorf("IsCorrectAnswer(%q, %v) = %v, expected %v", tc.user, tc.accepted, got, tc.expected)
			}
		})
	}
}

func TestSplitAlternatives(t *testing.T) {
	testCases := []struct {
		input    string
		expected []string
	}{
		{"apple", []string{"apple"}},
		{"a|b", []string{"a", "b"}},
		{"color or colour", []string{"color", "colour"}},
		{"It is nice today.", []string{"It is nice today."}},
		{" spaced | out ", []string{"spaced", "out"}},
	}

	for _, tc := range testCases {
		got := SplitAlternatives(tc.input)
		if !reflect.DeepEqual(got, tc.expected) {
			t.Errorf("SplitAlternatives(%q) = %v, expected %v", tc.input, got, tc.expected)
		}
	}
}
