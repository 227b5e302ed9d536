package langspec

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestForLanguageReturnsRegisteredSpecs(t *testing.T) {
	for _, lang := range []Language{Python, JavaScript, TypeScript, Rust, Java, Cpp} {
		spec := ForLanguage(lang)
		if assert.NotNil(t, spec, "expected a registered spec for %s", lang) {
			assert.Equal(t, lang, spec.Language)
			assert.NotEmpty(t, spec.FunctionNodeTypes)
		}
	}
}

func TestForLanguageGoHasNoGenericSpec(t *testing.T) {
	assert.Nil(t, ForLanguage(Go))
}

func TestLanguageForExtension(t *testing.T) {
	assert.Equal(t, Python, LanguageForExtension("pkg/mod.py"))
	assert.Equal(t, Go, LanguageForExtension("cmd/main.GO"))
	assert.Equal(t, TypeScript, LanguageForExtension("app/component.tsx"))
	assert.Equal(t, Language(""), LanguageForExtension("README.md"))
}
