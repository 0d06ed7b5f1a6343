// Package language validates that free-text input matches a conversation's
// selected language, using Unicode script ranges for lightweight detection.
// It supports 9 Indic scripts plus Latin (for English and romanized input).
package language

import (
	"fmt"
	"strings"
	"unicode"
)

// Script identifies a writing system we can detect.
type Script string

const (
	ScriptDevanagari Script = "devanagari"
	ScriptBengali    Script = "bengali"
	ScriptGujarati   Script = "gujarati"
	ScriptGurmukhi   Script = "gurmukhi"
	ScriptKannada    Script = "kannada"
	ScriptMalayalam  Script = "malayalam"
	ScriptOdia       Script = "odia"
	ScriptTamil      Script = "tamil"
	ScriptTelugu     Script = "telugu"
	ScriptLatin      Script = "latin"
)

// scriptRanges maps each script to its Unicode block.
var scriptRanges = []struct {
	script Script
	lo, hi rune
}{
	{ScriptDevanagari, 0x0900, 0x097F},
	{ScriptBengali, 0x0980, 0x09FF},
	{ScriptGurmukhi, 0x0A00, 0x0A7F},
	{ScriptGujarati, 0x0A80, 0x0AFF},
	{ScriptOdia, 0x0B00, 0x0B7F},
	{ScriptTamil, 0x0B80, 0x0BFF},
	{ScriptTelugu, 0x0C00, 0x0C7F},
	{ScriptKannada, 0x0C80, 0x0CFF},
	{ScriptMalayalam, 0x0D00, 0x0D7F},
}

// allowedScripts maps a language code to the scripts it accepts. Every
// language accepts Latin so romanized/transliterated input always passes.
var allowedScripts = map[string][]Script{
	"en": {ScriptLatin},
	"hi": {ScriptDevanagari, ScriptLatin},
	"mr": {ScriptDevanagari, ScriptLatin},
	"ml": {ScriptMalayalam, ScriptLatin},
	"ta": {ScriptTamil, ScriptLatin},
	"te": {ScriptTelugu, ScriptLatin},
	"kn": {ScriptKannada, ScriptLatin},
	"bn": {ScriptBengali, ScriptLatin},
	"gu": {ScriptGujarati, ScriptLatin},
	"or": {ScriptOdia, ScriptLatin},
}

// labels maps a language code to its display label (native + English).
var labels = map[string]string{
	"en": "English",
	"hi": "हिन्दी (Hindi)",
	"mr": "मराठी (Marathi)",
	"ml": "മലയാളം (Malayalam)",
	"ta": "தமிழ் (Tamil)",
	"te": "తెలుగు (Telugu)",
	"kn": "ಕನ್ನಡ (Kannada)",
	"bn": "বাংলা (Bengali)",
	"gu": "ગુજરાતી (Gujarati)",
	"or": "ଓଡ଼ିଆ (Odia)",
}

// rejectionMessages holds the user-facing refusal per language. Shown
// instead of a model response when the guard rejects input.
var rejectionMessages = map[string]string{
	"en": "I can only understand English. Please write your message in English. 🙏",
	"hi": "कृपया हिन्दी में लिखें। मैं केवल हिन्दी समझ सकता हूँ। Hinglish भी चलेगा! 🙏",
	"mr": "कृपया मराठीत लिहा. मी फक्त मराठी समजू शकतो. 🙏",
	"ml": "ദയവായി മലയാളത്തിൽ എഴുതുക. എനിക്ക് മലയാളം മാത്രമേ മനസ്സിലാകൂ. 🙏",
	"ta": "தயவுசெய்து தமிழில் எழுதுங்கள். எனக்கு தமிழ் மட்டுமே புரியும். 🙏",
	"te": "దయచేసి తెలుగులో రాయండి. నాకు తెలుగు మాత్రమే అర్థమవుతుంది. 🙏",
	"kn": "ದಯವಿಟ್ಟು ಕನ್ನಡದಲ್ಲಿ ಬರೆಯಿರಿ. ನನಗೆ ಕನ್ನಡ ಮಾತ್ರ ಅರ್ಥವಾಗುತ್ತದೆ. 🙏",
	"bn": "অনুগ্রহ করে বাংলায় লিখুন। আমি শুধু বাংলা বুঝতে পারি। 🙏",
	"gu": "કૃપા કરીને ગુજરાતીમાં લખો. હું ફક્ત ગુજરાતી સમજી શકું છું. 🙏",
	"or": "ଦୟାକରି ଓଡ଼ିଆରେ ଲେଖନ୍ତୁ। ମୁଁ କେବଳ ଓଡ଼ିଆ ବୁଝିପାରେ। 🙏",
}

// Label returns the display label for a language code, falling back to
// English for unknown languages.
func Label(lang string) string {
	if l, ok := labels[lang]; ok {
		return l
	}
	return "English"
}

// Supported reports whether lang is a known language code.
func Supported(lang string) bool {
	_, ok := allowedScripts[lang]
	return ok
}

// RejectionMessage returns the user-facing rejection message in the
// selected language, falling back to English.
func RejectionMessage(lang string) string {
	if m, ok := rejectionMessages[lang]; ok {
		return m
	}
	return rejectionMessages["en"]
}

// classify returns the script of a single rune, or "" if it belongs to
// no tracked script.
func classify(r rune) Script {
	if (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') {
		return ScriptLatin
	}
	for _, sr := range scriptRanges {
		if r >= sr.lo && r <= sr.hi {
			return sr.script
		}
	}
	return ""
}

// DetectScripts returns a count of characters per detected script.
func DetectScripts(text string) map[Script]int {
	counts := make(map[Script]int)
	for _, r := range text {
		if s := classify(r); s != "" {
			counts[s]++
		}
	}
	return counts
}

// meaningfulLength counts characters after stripping whitespace, digits,
// punctuation, and pictographic symbols. Inputs below the acceptance
// threshold are too short to judge.
func meaningfulLength(text string) int {
	n := 0
	for _, r := range text {
		if unicode.IsSpace(r) || unicode.IsDigit(r) || unicode.IsPunct(r) || unicode.IsSymbol(r) {
			continue
		}
		// Emoji and other pictographs sit outside IsSymbol in some blocks.
		if r >= 0x1F000 && r <= 0x1FAFF {
			continue
		}
		n++
	}
	return n
}

// Validate checks whether text is acceptable for the selected language.
//
// Rules, in order:
//  1. Very short input (< 3 meaningful chars) → always accept.
//  2. No recognized script, or Latin only → accept (English or
//     romanized/transliterated input in any supported language).
//  3. Every detected non-Latin script must be in the selected language's
//     allowed set; a foreign script rejects with a reason naming it.
//  4. Mixed native script + Latin is accepted.
//
// Returns (accepted, rejectionReason). The reason is empty when accepted.
func Validate(text, selectedLang string) (bool, string) {
	if meaningfulLength(text) < 3 {
		return true, ""
	}

	scripts := DetectScripts(text)
	if len(scripts) == 0 {
		return true, ""
	}
	if len(scripts) == 1 {
		if _, onlyLatin := scripts[ScriptLatin]; onlyLatin {
			return true, ""
		}
	}

	acceptable := allowedScripts[selectedLang]
	if acceptable == nil {
		acceptable = []Script{ScriptLatin}
	}

	for script := range scripts {
		if script == ScriptLatin {
			continue
		}
		if !containsScript(acceptable, script) {
			label := Label(selectedLang)
			return false, fmt.Sprintf(
				"Detected %s script but selected language is %s. Please write in %s.",
				script, label, label)
		}
	}

	return true, ""
}

func containsScript(scripts []Script, s Script) bool {
	for _, c := range scripts {
		if c == s {
			return true
		}
	}
	return false
}

// Codes returns all supported language codes, for validation at the API
// boundary.
func Codes() []string {
	codes := make([]string, 0, len(allowedScripts))
	for code := range allowedScripts {
		codes = append(codes, code)
	}
	return codes
}

// Normalize lowercases and trims a language code, mapping unknown values
// to fallback.
func Normalize(lang, fallback string) string {
	lang = strings.ToLower(strings.TrimSpace(lang))
	if Supported(lang) {
		return lang
	}
	return fallback
}
