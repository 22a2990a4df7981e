package i18n

import (
	"embed"
	"encoding/json"
	"fmt"
	"path"
)

//go:embed translations/*.json
var translationFiles embed.FS

type Language string

const (
	AR Language = "ar"
	EN Language = "en"
)

func (l Language) String() string {
	return string(l)
}

func ParseLanguage(lang string) (Language, error) {
	switch lang {
	case "ar":
		return AR, nil
	case "en":
		return EN, nil
	default:
		return "", fmt.Errorf("unsupported language: %s", lang)
	}
}

type Translations map[string]string

type Translator struct {
	translations map[Language]Translations
	defaultLang  Language
}

func NewTranslator(defaultLang Language) (*Translator, error) {
	t := &Translator{
		translations: make(map[Language]Translations),
		defaultLang:  defaultLang,
	}

	entries, err := translationFiles.ReadDir("translations")
	if err != nil {
		return nil, err
	}
	for _, entry := range entries {
		name := entry.Name()
		lang, err := ParseLanguage(name[:len(name)-len(path.Ext(name))])
		if err != nil {
			return nil, fmt.Errorf("failed to parse language for %s: %w", name, err)
		}

		data, err := translationFiles.ReadFile(path.Join("translations", name))
		if err != nil {
			return nil, err
		}

		var translations Translations
		if err := json.Unmarshal(data, &translations); err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", name, err)
		}
		t.translations[lang] = translations
	}

	return t, nil
}

func (t *Translator) T(lang Language, key string) string {
	if translations, ok := t.translations[lang]; ok {
		if translation, ok := translations[key]; ok {
			return translation
		}
	}

	// Fallback to default language
	if lang != t.defaultLang {
		if translations, ok := t.translations[t.defaultLang]; ok {
			if translation, ok := translations[key]; ok {
				return translation
			}
		}
	}

	// Return key if no translation found
	return key
}

func (t *Translator) AvailableLanguages() []Language {
	var langs []Language
	for lang := range t.translations {
		langs = append(langs, lang)
	}
	return langs
}
