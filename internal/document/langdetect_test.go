package document

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectScript(t *testing.T) {
	cases := []struct {
		text string
		want Script
	}{
		{"plain english text", ScriptLatin},
		{"これは日本語のテキストです", ScriptCJK},
		{"中文内容测试", ScriptCJK},
		{"한국어 텍스트", ScriptHangul},
		{"русский текст", ScriptCyrillic},
		{"نص عربي", ScriptArabic},
		{"1234 !!", ScriptUnknown},
		{"", ScriptUnknown},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, DetectScript(tc.text), "text: %q", tc.text)
	}
}

func TestScriptForLanguage(t *testing.T) {
	cases := []struct {
		lang string
		want Script
	}{
		{"zh", ScriptCJK},
		{"zh-TW", ScriptCJK},
		{"ja", ScriptCJK},
		{"ko", ScriptHangul},
		{"ru", ScriptCyrillic},
		{"ar", ScriptArabic},
		{"en", ScriptLatin},
		{"fr", ScriptLatin},
		{"not-a-tag!!", ScriptLatin},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, ScriptForLanguage(tc.lang), "lang: %q", tc.lang)
	}
}
