// Package prompts holds every piece of text sent to the model, in Turkish and
// English. Roles and document text are interpolated as plain strings.
package prompts

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/tmc/langchaingo/prompts"

	"pdf-role-chat/internal/models"
)

var ErrInvalidRefineMode = errors.New("invalid refine mode")

var listMarkerRe = regexp.MustCompile(`^(?:[-*•]|\d+[.)])\s+`)

const qaTemplate = `
You are an AI assistant acting as {{.role}}.
The user uploaded the following PDF content:

{{.context}}

The user's question:
{{.question}}

Answer this question as {{.role}} would, in a detailed and clear way.
{{.language_instruction}}
Refer to the document content in your answer.
`

const qaTemplateTR = `
Sen bir {{.role}} gibi davranan bir yapay zeka asistanısın.
Kullanıcı aşağıdaki PDF içeriğini yükledi:

{{.context}}

Kullanıcının sorusu:
{{.question}}

Bu soruyu bir {{.role}} gibi, ayrıntılı ve anlaşılır biçimde yanıtla.
{{.language_instruction}}
Yanıtında belge içeriğine atıfta bulun.
`

// QATemplate is the stuff-documents prompt of the retrieval chain. It expects
// the "context" and "question" variables.
func QATemplate(role string, lang models.Language) prompts.PromptTemplate {
	tmpl := qaTemplateTR
	if lang == models.LanguageEnglish {
		tmpl = qaTemplate
	}
	return prompts.PromptTemplate{
		Template:       tmpl,
		InputVariables: []string{"context", "question"},
		TemplateFormat: prompts.TemplateFormatGoTemplate,
		PartialVariables: map[string]any{
			"role":                 role,
			"language_instruction": answerLanguage(lang),
		},
	}
}

func answerLanguage(lang models.Language) string {
	if lang == models.LanguageEnglish {
		return "Please provide the answer in English."
	}
	return "Lütfen cevabı Türkçe olarak ver."
}

// Refine asks the model to elaborate or simplify a previous answer.
func Refine(question, answer string, mode models.RefineMode, role string, lang models.Language) (string, error) {
	en := lang == models.LanguageEnglish

	var task string
	switch mode {
	case models.RefineElaborate:
		task = pick(en,
			"Expand the answer above in more detail, adding technical terms and explanations.",
			"Yukarıdaki cevabı teknik terimler ve açıklamalar ekleyerek daha ayrıntılı hale getir.")
	case models.RefineSimplify:
		task = pick(en,
			"Rephrase the answer above in simpler language that anyone can understand.",
			"Yukarıdaki cevabı herkesin anlayabileceği daha sade bir dille yeniden yaz.")
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidRefineMode, mode)
	}

	if en {
		return fmt.Sprintf(`You are acting as '%s'.
User question: "%s"
Initial answer: "%s"

TASK: %s
Provide the refined answer in English.
Return only the refined answer.
`, role, question, answer, task), nil
	}
	return fmt.Sprintf(`Bir '%s' rolündesin.
Kullanıcının sorusu: "%s"
Verilen ilk cevap: "%s"

GÖREV: %s
Düzenlenmiş cevabı Türkçe olarak ver.
Yalnızca düzenlenmiş cevabı yaz.
`, role, question, answer, task), nil
}

func Suggestions(context, role string, n int, lang models.Language) string {
	if lang == models.LanguageEnglish {
		return fmt.Sprintf(`Generate %d insightful questions about the following content, in English. The user will be interacting as a '%s'.

Content:
---
%s
---

Provide only the questions, each on a new line. Do not number them or add any other text.
`, n, role, context)
	}
	return fmt.Sprintf(`Aşağıdaki içerik hakkında, '%s' rolündeki bir kullanıcının sorabileceği %d düşündürücü soruyu Türkçe olarak üret.

İçerik:
---
%s
---

Yalnızca soruları, her biri ayrı satırda olacak şekilde yaz. Numara ya da başka metin ekleme.
`, role, n, context)
}

func Summary(context, role string, lang models.Language) string {
	if lang == models.LanguageEnglish {
		return fmt.Sprintf(`You are acting as a '%s'.
Generate a comprehensive summary of the following text.
Provide the summary in English.

Text:
---
%s
---

Present a well-structured summary covering the main points of the text above.
`, role, context)
	}
	return fmt.Sprintf(`Bir '%s' olarak davranıyorsun.
Aşağıdaki metnin kapsamlı bir özetini çıkar.
Özeti Türkçe olarak ver.

Metin:
---
%s
---

Yukarıdaki metnin ana noktalarını kapsayan, iyi yapılandırılmış bir özet sun.
`, role, context)
}

func Keywords(context, role string, n int, lang models.Language) string {
	if lang == models.LanguageEnglish {
		return fmt.Sprintf(`You are acting as a '%s'.
Extract the top %d keywords or concepts from the following text.
Language: English.

Text:
---
%s
---

List the keywords as a single comma-separated line. Add nothing else.
`, role, n, context)
	}
	return fmt.Sprintf(`Bir '%s' olarak davranıyorsun.
Aşağıdaki metinden en önemli %d anahtar kelimeyi veya kavramı çıkar.
Dil: Türkçe.

Metin:
---
%s
---

Anahtar kelimeleri virgülle ayrılmış tek bir satırda listele. Başka bir şey ekleme.
`, role, n, context)
}

const mermaidExample = "```mermaid\ngraph TD\n    A[Main concept] --> B(Sub concept 1)\n    A --> C(Sub concept 2)\n    B --> D{Detail 1.1}\n    C --> E{Detail 2.1}\n```"

func ConceptMap(context, role string, lang models.Language) string {
	if lang == models.LanguageEnglish {
		return fmt.Sprintf(`As a '%s', analyze the main concepts and their relationships in the following text.
Based on this analysis, create a text-based concept map in Mermaid.js 'graph TD' or 'graph LR' format. The map should show the main ideas and their sub-topics hierarchically.
Node labels in English where possible.

Text:
---
%s
---

Example output format:
%s

Reply with ONLY the Mermaid code block. Add no other explanation or text.
`, role, context, mermaidExample)
	}
	return fmt.Sprintf(`Bir '%s' olarak, aşağıdaki metindeki ana kavramları ve aralarındaki ilişkileri analiz et.
Bu analize dayanarak Mermaid.js 'graph TD' veya 'graph LR' biçiminde metin tabanlı bir konsept haritası oluştur. Harita ana fikirleri ve alt başlıklarını hiyerarşik olarak göstermeli.
Kavram etiketleri mümkünse Türkçe olsun.

Metin:
---
%s
---

Örnek çıktı biçimi:
%s

YALNIZCA Mermaid kod bloğunu yanıt olarak ver. Başka açıklama veya metin ekleme.
`, role, context, mermaidExample)
}

func Timeline(context, role string, lang models.Language) string {
	if lang == models.LanguageEnglish {
		return fmt.Sprintf(`As a '%s', analyze the following text to identify dates and the significant events or information associated with them.
Based on this analysis, create a chronologically ordered timeline. List each item in the format 'Date: Description'.
Language: English.

Text:
---
%s
---

List the events in chronological order, one per line. If the text has no clear dates, answer "%s"
`, role, context, For(lang).NoTimeline)
	}
	return fmt.Sprintf(`Bir '%s' olarak, aşağıdaki metindeki tarihleri ve bu tarihlerle ilişkili önemli olayları analiz et.
Bu analize dayanarak kronolojik sırayla bir zaman çizelgesi oluştur. Her maddeyi 'Tarih: Açıklama' biçiminde listele.
Dil: Türkçe.

Metin:
---
%s
---

Olayları kronolojik sırayla, her biri ayrı satırda listele. Metinde belirgin tarihler yoksa "%s" yanıtını ver.
`, role, context, For(lang).NoTimeline)
}

func pick(en bool, english, turkish string) string {
	if en {
		return english
	}
	return turkish
}

// TrimList splits model output on sep, trims entries and drops list markers.
func TrimList(s, sep string, limit int) []string {
	var out []string
	for _, part := range strings.Split(s, sep) {
		part = strings.TrimSpace(listMarkerRe.ReplaceAllString(strings.TrimSpace(part), ""))
		if part == "" {
			continue
		}
		out = append(out, part)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}
