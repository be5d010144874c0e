package prompts

import "pdf-role-chat/internal/models"

// Messages are the user-facing fallback and warning texts of one language.
type Messages struct {
	TruncationMarker    string
	GenericContext      string
	NoTimeline          string
	NoContentSummary    string
	NoContentConceptMap string
	NoContentTimeline   string
	ConceptMapInvalid   string
	AnswerFailed        string
	IndexMissing        string
	RefineFailed        string
	RefineNoAnswer      string
	SummaryFailed       string
	ConceptMapFailed    string
	TimelineFailed      string
	NoDocuments         string
	NoTextExtracted     string
	UnreadableFile      string
	UnsupportedFile     string
	RoleRequired        string
	PreviewUnavailable  string
	SuggestionsFailed   string
	KeywordsFailed      string
	IndexFailed         string
	QuestionRequired    string
	InvalidRefineMode   string
	UnsupportedLanguage string
}

var messages = map[models.Language]Messages{
	models.LanguageTurkish: {
		TruncationMarker:    "[İçeriğin bir kısmı uzunluk sınırı nedeniyle kesildi.]",
		GenericContext:      "Belge içeriği hakkında genel sorular.",
		NoTimeline:          "Belgede belirgin bir zaman çizelgesi bulunamadı.",
		NoContentSummary:    "Özetlenecek içerik bulunamadı.",
		NoContentConceptMap: "Konsept haritası için içerik bulunamadı.",
		NoContentTimeline:   "Zaman çizelgesi için içerik bulunamadı.",
		ConceptMapInvalid:   "Konsept haritası üretilemedi (beklenen biçimde değil).",
		AnswerFailed:        "Yanıt üretilirken bir sorun oluştu.",
		IndexMissing:        "Vektör veritabanı yüklenemedi. Lütfen PDF yükleyip işleyin.",
		RefineFailed:        "Cevap düzenlenirken bir sorun oluştu.",
		RefineNoAnswer:      "Düzenlemek için önce bir cevap alınmalı.",
		SummaryFailed:       "Belge özeti üretilirken bir sorun oluştu.",
		ConceptMapFailed:    "Konsept haritası üretilirken bir sorun oluştu.",
		TimelineFailed:      "Zaman çizelgesi çıkarılırken bir sorun oluştu.",
		NoDocuments:         "Belge bulunamadı. Lütfen önce PDF yükleyin.",
		NoTextExtracted:     "Yüklenen dosyalardan metin çıkarılamadı veya dosyalar boş.",
		UnreadableFile:      "%s dosyasından metin çıkarılamadı veya dosya boş.",
		UnsupportedFile:     "%s desteklenmeyen bir dosya türü.",
		RoleRequired:        "Lütfen bir rol seçin veya kendi rolünüzü yazın.",
		PreviewUnavailable:  "%s - Sayfa %d için önizleme oluşturulamadı.",
		SuggestionsFailed:   "Örnek sorular üretilemedi.",
		KeywordsFailed:      "Anahtar kelimeler çıkarılamadı.",
		IndexFailed:         "Vektör veritabanı oluşturulamadı.",
		QuestionRequired:    "Lütfen bir soru yazın.",
		InvalidRefineMode:   "Geçersiz düzenleme türü: %s",
		UnsupportedLanguage: "Desteklenmeyen dil: %s",
	},
	models.LanguageEnglish: {
		TruncationMarker:    "[Part of the content was cut off due to the length limit.]",
		GenericContext:      "General questions about the document content.",
		NoTimeline:          "No clear timeline was found in the document.",
		NoContentSummary:    "No content found to summarize.",
		NoContentConceptMap: "No content found for a concept map.",
		NoContentTimeline:   "No content found for a timeline.",
		ConceptMapInvalid:   "The concept map could not be generated (unexpected format).",
		AnswerFailed:        "Something went wrong while generating the answer.",
		IndexMissing:        "The vector database could not be loaded. Please upload and process PDFs.",
		RefineFailed:        "Something went wrong while refining the answer.",
		RefineNoAnswer:      "Ask a question first to refine its answer.",
		SummaryFailed:       "Something went wrong while summarizing the documents.",
		ConceptMapFailed:    "Something went wrong while generating the concept map.",
		TimelineFailed:      "Something went wrong while extracting the timeline.",
		NoDocuments:         "No documents found. Please upload PDFs first.",
		NoTextExtracted:     "No text could be extracted from the uploaded files, or they are empty.",
		UnreadableFile:      "No text could be extracted from %s, or the file is empty.",
		UnsupportedFile:     "%s is not a supported file type.",
		RoleRequired:        "Please select a role or write your own.",
		PreviewUnavailable:  "Preview for %s - page %d could not be generated.",
		SuggestionsFailed:   "Suggested questions could not be generated.",
		KeywordsFailed:      "Keywords could not be extracted.",
		IndexFailed:         "The vector database could not be built.",
		QuestionRequired:    "Please enter a question.",
		InvalidRefineMode:   "Invalid refine mode: %s",
		UnsupportedLanguage: "Unsupported language: %s",
	},
}

// For returns the messages of lang, falling back to Turkish.
func For(lang models.Language) Messages {
	if m, ok := messages[lang]; ok {
		return m
	}
	return messages[models.LanguageTurkish]
}
