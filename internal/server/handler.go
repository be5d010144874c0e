package server

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"pdf-role-chat/internal/config"
	"pdf-role-chat/internal/models"
	"pdf-role-chat/internal/prompts"
	"pdf-role-chat/internal/server/response"
	"pdf-role-chat/internal/service"
)

type Handler struct {
	cfg       *config.Config
	svc       *service.Service
	startedAt time.Time
}

type PersonaRequest struct {
	Role       string `json:"role" form:"role"`
	CustomRole string `json:"custom_role" form:"custom_role"`
	Language   string `json:"lang" form:"lang"`
}

type AskRequest struct {
	PersonaRequest
	Question string `json:"question" binding:"required"`
}

type RefineRequest struct {
	PersonaRequest
	Mode string `json:"mode" binding:"required,oneof=elaborate simplify"`
}

// rendered pairs a markdown result with its HTML form.
type rendered struct {
	Result any    `json:"result"`
	HTML   string `json:"html,omitempty"`
}

func NewHandler(cfg *config.Config, svc *service.Service, startedAt time.Time) *Handler {
	return &Handler{cfg: cfg, svc: svc, startedAt: startedAt}
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"app":          h.cfg.App.Name,
		"uptime_sec":   int(time.Since(h.startedAt).Seconds()),
		"vector_store": h.cfg.VectorStore.Backend,
		"model":        h.cfg.LLM.Model,
		"sessions":     h.svc.Sessions().Len(),
	})
}

func (h *Handler) Roles(c *gin.Context) {
	response.OK(c, h.svc.Roles())
}

func (h *Handler) Languages(c *gin.Context) {
	response.OK(c, models.Languages)
}

// persona validates the request language; it writes the error response
// itself and reports false when the request must stop.
func persona(c *gin.Context, req PersonaRequest) (service.Persona, bool) {
	lang, err := models.ParseLanguage(req.Language)
	if err != nil {
		msg := prompts.For(models.LanguageTurkish).UnsupportedLanguage
		response.Error(c, http.StatusBadRequest, response.CodeInvalidLanguage, fmt.Sprintf(msg, req.Language))
		return service.Persona{}, false
	}
	return service.Persona{Role: req.Role, CustomRole: req.CustomRole, Language: lang}, true
}

func bindPersona(c *gin.Context) (service.Persona, bool) {
	var req PersonaRequest
	if c.Request.ContentLength == 0 {
		return persona(c, req)
	}
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return service.Persona{}, false
	}
	return persona(c, req)
}

func (h *Handler) Upload(c *gin.Context) {
	p, ok := bindPersona(c)
	if !ok {
		return
	}
	form, err := c.MultipartForm()
	if err != nil || len(form.File["files"]) == 0 {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "files are required")
		return
	}

	var inputs []service.FileInput
	for _, fh := range form.File["files"] {
		f, err := fh.Open()
		if err != nil {
			log.Warn().Err(err).Str("source", fh.Filename).Msg("Failed to open upload")
			continue
		}
		defer f.Close()
		inputs = append(inputs, service.FileInput{Name: fh.Filename, Reader: f})
	}

	res := h.svc.Upload(c.Request.Context(), currentSession(c), p, inputs)
	if len(res.Warnings) > 0 {
		response.Warn(c, res.Warnings[0], res)
		return
	}
	response.OK(c, res)
}

func (h *Handler) Documents(c *gin.Context) {
	response.OK(c, currentSession(c).Documents())
}

func (h *Handler) Preview(c *gin.Context) {
	page, err := strconv.Atoi(c.Param("page"))
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "page must be a number")
		return
	}
	p, ok := persona(c, PersonaRequest{Language: c.Query("lang")})
	if !ok {
		return
	}

	res := h.svc.Preview(currentSession(c), p.Language, c.Param("name"), page)
	if res.Image == nil {
		response.Error(c, http.StatusNotFound, response.CodeNotFound, res.Warning)
		return
	}
	c.Header("X-Highlighted", strconv.FormatBool(res.Highlighted))
	c.Data(http.StatusOK, "image/png", res.Image)
}

func (h *Handler) Density(c *gin.Context) {
	response.OK(c, h.svc.Density(currentSession(c)))
}

func (h *Handler) History(c *gin.Context) {
	response.OK(c, h.svc.History(currentSession(c)))
}

func (h *Handler) Ask(c *gin.Context) {
	var req AskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}
	p, ok := persona(c, req.PersonaRequest)
	if !ok {
		return
	}

	res := h.svc.Ask(c.Request.Context(), currentSession(c), p, req.Question)
	if res.Warning != "" {
		response.Warn(c, res.Warning, res)
		return
	}
	respondMarkdown(c, res, res.Answer)
}

func (h *Handler) Refine(c *gin.Context) {
	var req RefineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}
	p, ok := persona(c, req.PersonaRequest)
	if !ok {
		return
	}
	respondText(c, h.svc.Refine(c.Request.Context(), currentSession(c), p, models.RefineMode(req.Mode)))
}

func (h *Handler) Summary(c *gin.Context) {
	if p, ok := bindPersona(c); ok {
		respondText(c, h.svc.Summarize(c.Request.Context(), currentSession(c), p))
	}
}

// ConceptMap returns the Mermaid block as is; clients render it.
func (h *Handler) ConceptMap(c *gin.Context) {
	p, ok := bindPersona(c)
	if !ok {
		return
	}
	res := h.svc.ConceptMap(c.Request.Context(), currentSession(c), p)
	if res.Warning != "" {
		response.Warn(c, res.Warning, res)
		return
	}
	response.OK(c, res)
}

func (h *Handler) Timeline(c *gin.Context) {
	if p, ok := bindPersona(c); ok {
		respondText(c, h.svc.Timeline(c.Request.Context(), currentSession(c), p))
	}
}

func (h *Handler) Keywords(c *gin.Context) {
	if p, ok := bindPersona(c); ok {
		respondList(c, h.svc.Keywords(c.Request.Context(), currentSession(c), p))
	}
}

func (h *Handler) Suggestions(c *gin.Context) {
	if p, ok := bindPersona(c); ok {
		respondList(c, h.svc.Suggest(c.Request.Context(), currentSession(c), p))
	}
}

func respondText(c *gin.Context, res service.TextResult) {
	if res.Warning != "" {
		response.Warn(c, res.Warning, res)
		return
	}
	respondMarkdown(c, res, res.Text)
}

func respondList(c *gin.Context, res service.ListResult) {
	if res.Warning != "" {
		response.Warn(c, res.Warning, res)
		return
	}
	response.OK(c, res)
}

func respondMarkdown(c *gin.Context, result any, text string) {
	out := rendered{Result: result}
	html, err := renderMarkdown(text)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to render markdown")
	} else {
		out.HTML = html
	}
	response.OK(c, out)
}
