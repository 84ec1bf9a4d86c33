package intent_test

import (
	"testing"

	"github.com/t4paN/ava/internal/intent"
)

// All Classify inputs below are already normalized, as produced by the
// greek package; the classifier never normalizes utterances itself.

func TestClassifier_Call(t *testing.T) {
	t.Parallel()

	c := intent.New(intent.DefaultVocabulary())

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"exact trigger", "καλεσε τον διμιτρι", "διμιτρι"},
		{"noun trigger", "κλισι μαρια", "μαρια"},
		{"clipped trigger at threshold", "ισι γιανα", "γιανα"},
		{"split trigger", "κα λεσε τον διμιτρι", "διμιτρι"},
		{"articles stripped", "τιλεφονισε στον διμιτρι", "διμιτρι"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, rem := c.Classify(tc.in)
			if got != intent.Call {
				t.Fatalf("Classify(%q): intent=%v, want %v", tc.in, got, intent.Call)
			}
			if rem != tc.want {
				t.Errorf("Classify(%q): remainder=%q, want %q", tc.in, rem, tc.want)
			}
		})
	}
}

func TestClassifier_FallbackAssumesCall(t *testing.T) {
	t.Parallel()

	c := intent.New(intent.DefaultVocabulary())

	// Multi-word speech without a recognizable trigger still becomes a call
	// with the first token dropped; the name matcher gets to reject it.
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"unknown leading word", "τι κανισ", "κανισ"},
		{"greeting", "καλιμερα σασ", "σασ"},
		{"junk before trigger", "καλιμερα κλισι διμιτρι", "κλισι διμιτρι"},
		{"call with article only", "καλεσε τον", ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, rem := c.Classify(tc.in)
			if got != intent.Call {
				t.Fatalf("Classify(%q): intent=%v, want %v", tc.in, got, intent.Call)
			}
			if rem != tc.want {
				t.Errorf("Classify(%q): remainder=%q, want %q", tc.in, rem, tc.want)
			}
		})
	}
}

func TestClassifier_SecondaryIntents(t *testing.T) {
	t.Parallel()

	c := intent.New(intent.DefaultVocabulary())

	tests := []struct {
		in   string
		want intent.Intent
	}{
		{"φακοσ", intent.Flashlight},
		{"φοσ", intent.Flashlight},
		{"ραδιο", intent.Radio},
		{"ραδιοφονο", intent.Radio},
	}
	for _, tc := range tests {
		got, rem := c.Classify(tc.in)
		if got != tc.want {
			t.Errorf("Classify(%q): intent=%v, want %v", tc.in, got, tc.want)
		}
		if rem != "" {
			t.Errorf("Classify(%q): remainder=%q, want empty", tc.in, rem)
		}
	}
}

func TestClassifier_None(t *testing.T) {
	t.Parallel()

	c := intent.New(intent.DefaultVocabulary())

	// A lone word that is not a flashlight or radio trigger is never a
	// call, even when it is itself a call trigger with nobody named.
	for _, in := range []string{"", "κλισι", "καλιμερα", "γιανα"} {
		got, rem := c.Classify(in)
		if got != intent.None {
			t.Errorf("Classify(%q): intent=%v, want %v", in, got, intent.None)
		}
		if rem != "" {
			t.Errorf("Classify(%q): remainder=%q, want empty", in, rem)
		}
	}
}

func TestClassifier_Threshold(t *testing.T) {
	t.Parallel()

	// "ρατιο" is one edit from "ραδιο" (similarity 0.8): a trigger at the
	// default threshold, rejected at 0.95.
	loose := intent.New(intent.DefaultVocabulary())
	if got, _ := loose.Classify("ρατιο"); got != intent.Radio {
		t.Errorf("Classify(%q): intent=%v, want %v", "ρατιο", got, intent.Radio)
	}

	strict := intent.New(intent.DefaultVocabulary(), intent.WithThreshold(0.95))
	if got, _ := strict.Classify("ρατιο"); got != intent.None {
		t.Errorf("Classify(%q) at 0.95: intent=%v, want %v", "ρατιο", got, intent.None)
	}
	if got, _ := strict.Classify("ραδιο"); got != intent.Radio {
		t.Errorf("Classify(%q) at 0.95: intent=%v, want %v", "ραδιο", got, intent.Radio)
	}
}
