package models

import "fmt"

type Language string

const (
	LanguageTurkish Language = "tr"
	LanguageEnglish Language = "en"
)

// Languages lists the selectable answer languages with their display labels.
var Languages = []struct {
	Code  Language `json:"code"`
	Label string   `json:"label"`
}{
	{LanguageTurkish, "Türkçe"},
	{LanguageEnglish, "English"},
}

func ParseLanguage(s string) (Language, error) {
	switch Language(s) {
	case LanguageTurkish, LanguageEnglish:
		return Language(s), nil
	case "":
		return LanguageTurkish, nil
	}
	return "", fmt.Errorf("unsupported language %q", s)
}

func (l Language) Label() string {
	for _, lang := range Languages {
		if lang.Code == l {
			return lang.Label
		}
	}
	return string(l)
}
