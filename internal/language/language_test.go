package language

import (
	"strings"
	"testing"
)

func TestValidate_ShortInputAlwaysAccepted(t *testing.T) {
	tests := []struct {
		name string
		text string
		lang string
	}{
		{"empty", "", "hi"},
		{"two latin chars", "ok", "ta"},
		{"digits only", "12345", "bn"},
		{"punctuation only", "?!...", "ml"},
		{"emoji only", "🐟🌊", "te"},
		{"two tamil chars for hindi", "நல", "hi"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, reason := Validate(tt.text, tt.lang)
			if !ok {
				t.Errorf("Validate(%q, %q) rejected (%q), want accept", tt.text, tt.lang, reason)
			}
		})
	}
}

func TestValidate_LatinAlwaysAccepted(t *testing.T) {
	for _, lang := range []string{"en", "hi", "ta", "ml", "or"} {
		ok, reason := Validate("What is the weather like today?", lang)
		if !ok {
			t.Errorf("Latin input rejected for lang %q: %s", lang, reason)
		}
	}
}

func TestValidate_NativeScriptAccepted(t *testing.T) {
	tests := []struct {
		lang string
		text string
	}{
		{"hi", "आज मौसम कैसा है?"},
		{"ta", "இன்று வானிலை எப்படி இருக்கிறது?"},
		{"bn", "আজ আবহাওয়া কেমন?"},
		{"ml", "ഇന്ന് കാലാവസ്ഥ എങ്ങനെയുണ്ട്?"},
		{"te", "ఈరోజు వాతావరణం ఎలా ఉంది?"},
		{"kn", "ಇಂದು ಹವಾಮಾನ ಹೇಗಿದೆ?"},
		{"gu", "આજે હવામાન કેવું છે?"},
		{"or", "ଆଜି ପାଣିପାଗ କେମିତି ଅଛି?"},
	}
	for _, tt := range tests {
		t.Run(tt.lang, func(t *testing.T) {
			ok, reason := Validate(tt.text, tt.lang)
			if !ok {
				t.Errorf("native-script input rejected for %q: %s", tt.lang, reason)
			}
		})
	}
}

func TestValidate_ForeignScriptRejected(t *testing.T) {
	// Tamil input against Hindi selection.
	ok, reason := Validate("இன்று மீன்பிடிக்க நல்ல நாளா?", "hi")
	if ok {
		t.Fatal("Tamil input for Hindi selection should be rejected")
	}
	if !strings.Contains(reason, "tamil") {
		t.Errorf("reason %q should name the detected tamil script", reason)
	}
	if !strings.Contains(reason, "Hindi") {
		t.Errorf("reason %q should name the expected language", reason)
	}
}

func TestValidate_MixedNativeAndLatinAccepted(t *testing.T) {
	// Hinglish-style mixing: Devanagari and Latin in one message.
	ok, reason := Validate("आज weather कैसा है bhai?", "hi")
	if !ok {
		t.Errorf("mixed Devanagari+Latin rejected for hi: %s", reason)
	}
}

func TestValidate_MarathiSharesDevanagari(t *testing.T) {
	ok, reason := Validate("आज हवामान कसे आहे?", "mr")
	if !ok {
		t.Errorf("Devanagari input rejected for mr: %s", reason)
	}
}

func TestDetectScripts(t *testing.T) {
	counts := DetectScripts("hello दुनिया")
	if counts[ScriptLatin] != 5 {
		t.Errorf("latin count = %d, want 5", counts[ScriptLatin])
	}
	if counts[ScriptDevanagari] != 6 {
		t.Errorf("devanagari count = %d, want 6", counts[ScriptDevanagari])
	}
}

func TestRejectionMessage_FallsBackToEnglish(t *testing.T) {
	if got := RejectionMessage("xx"); got != rejectionMessages["en"] {
		t.Errorf("RejectionMessage(xx) = %q, want English fallback", got)
	}
	if got := RejectionMessage("ta"); !strings.Contains(got, "தமிழ்") {
		t.Errorf("RejectionMessage(ta) = %q, want Tamil text", got)
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in, fallback, want string
	}{
		{"HI", "en", "hi"},
		{" ta ", "en", "ta"},
		{"fr", "en", "en"},
		{"", "hi", "hi"},
	}
	for _, tt := range tests {
		if got := Normalize(tt.in, tt.fallback); got != tt.want {
			t.Errorf("Normalize(%q, %q) = %q, want %q", tt.in, tt.fallback, got, tt.want)
		}
	}
}
