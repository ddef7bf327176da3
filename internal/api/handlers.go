package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/FocuswithJustin/TabletATF/core/atf"
	"github.com/FocuswithJustin/TabletATF/core/errors"
	"github.com/FocuswithJustin/TabletATF/core/xml"
	"github.com/FocuswithJustin/TabletATF/internal/cache"
	"github.com/FocuswithJustin/TabletATF/internal/logging"
	"github.com/FocuswithJustin/TabletATF/internal/lookup"
	"github.com/FocuswithJustin/TabletATF/internal/render"
	"github.com/FocuswithJustin/TabletATF/internal/source"
	"github.com/FocuswithJustin/TabletATF/internal/store"
	"github.com/FocuswithJustin/TabletATF/internal/validation"
)

// APIResponse is the standard API response wrapper.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
	Meta    *APIMeta    `json:"meta,omitempty"`
}

// APIError represents an API error.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// APIMeta contains response metadata.
type APIMeta struct {
	Total     int    `json:"total,omitempty"`
	Timestamp string `json:"timestamp"`
}

// HealthInfo is the health check response.
type HealthInfo struct {
	Status  string       `json:"status"`
	Version string       `json:"version"`
	Uptime  string       `json:"uptime"`
	Store   bool         `json:"store"`
	Cache   *cache.Stats `json:"cache,omitempty"`
	Clients int          `json:"websocket_clients"`
}

// ParseRequest is the JSON body accepted by the parse endpoints.
type ParseRequest struct {
	Text string `json:"text"`
}

// ParseResult is returned for each parsed text.
type ParseResult struct {
	Document     *atf.Document     `json:"document"`
	Legend       []atf.LegendEntry `json:"legend,omitempty"`
	Glosses      map[string]string `json:"glosses,omitempty"`
	Translations map[string]string `json:"translations,omitempty"`
	Stats        atf.Stats         `json:"stats"`
}

// ParseOptions selects the optional parts of a ParseResult.
type ParseOptions struct {
	Legend  bool `json:"legend"`
	Lookups bool `json:"lookups"`
}

func parseOptions(r *http.Request) ParseOptions {
	q := r.URL.Query()
	return ParseOptions{
		Legend:  queryBool(q.Get("legend")),
		Lookups: queryBool(q.Get("lookups")),
	}
}

func queryBool(v string) bool {
	b, _ := strconv.ParseBool(v)
	return b
}

// NormalizeRequest is the body of POST /api/normalize.
type NormalizeRequest struct {
	Words []string `json:"words"`
}

// NormalizedWord pairs a display form with its lookup key.
type NormalizedWord struct {
	Display string `json:"display"`
	Key     string `json:"key"`
	Present bool   `json:"present"`
}

// TokenizeRequest is the body of POST /api/tokenize.
type TokenizeRequest struct {
	Line string `json:"line"`
}

// GlossResult is returned by GET /api/gloss.
type GlossResult struct {
	Word  string `json:"word"`
	Key   string `json:"key"`
	Gloss string `json:"gloss"`
}

// XPathResult holds the string values of matched nodes.
type XPathResult struct {
	Expr   string   `json:"expr"`
	Values []string `json:"values"`
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	respond(w, http.StatusOK, map[string]interface{}{
		"name":    "TabletATF API",
		"version": Version,
		"endpoints": []string{
			"GET /api/health",
			"POST /api/parse",
			"POST /api/corpus",
			"POST /api/tokenize",
			"POST /api/normalize",
			"POST /api/xpath",
			"GET /api/gloss",
			"GET /api/translation",
			"GET /api/composite",
			"POST /api/import/{glossary,translations,composites}",
			"WS /api/ws/parse",
			"WS /api/ws/events",
		},
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}
	info := HealthInfo{
		Status:  "healthy",
		Version: Version,
		Uptime:  time.Since(s.started).Round(time.Second).String(),
		Store:   s.store != nil,
		Clients: s.hub.ClientCount(),
	}
	if s.glossary != nil {
		st := s.glossary.Stats()
		info.Cache = &st
	}
	respond(w, http.StatusOK, info)
}

func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}
	text, ok := readText(w, r)
	if !ok {
		return
	}

	opts := parseOptions(r)
	switch format := r.URL.Query().Get("format"); format {
	case "", "json":
		result, err := s.parse(r.Context(), text, opts)
		if err != nil {
			respondErr(w, err)
			return
		}
		respond(w, http.StatusOK, result)
	case "xml", "html":
		s.renderParse(w, r, text, format, opts)
	default:
		respondErr(w, errors.NewUnsupported("format", format))
	}
}

// renderParse answers with XML or HTML instead of the JSON envelope.
func (s *Server) renderParse(w http.ResponseWriter, r *http.Request, text, format string, opts ParseOptions) {
	doc, legend := atf.ParseWithLegend(text)

	var buf bytes.Buffer
	if format == "xml" {
		if err := render.XML(&buf, doc); err != nil {
			respondErr(w, err)
			return
		}
		w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	} else {
		hopts := render.HTMLOptions{}
		if opts.Legend {
			hopts.Legend = legend
		}
		if opts.Lookups && s.glossary != nil {
			glosses, err := lookup.Glosses(r.Context(), s.glossary, doc)
			if err != nil {
				respondErr(w, err)
				return
			}
			hopts.Glosses = glosses
		}
		if err := render.HTML(&buf, doc, hopts); err != nil {
			respondErr(w, err)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
	}
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// handleCorpus splits a (possibly compressed) multi-text file and parses
// every text in it.
func (s *Server) handleCorpus(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}
	name := r.URL.Query().Get("name")
	if name == "" {
		name = "upload"
	}
	files, err := source.Read(r.Body, name)
	if err != nil {
		respondErr(w, err)
		return
	}

	opts := parseOptions(r)
	var results []*ParseResult
	for _, f := range files {
		for _, t := range source.SplitTexts(f.Text) {
			res, err := s.parse(r.Context(), t.Body, opts)
			if err != nil {
				respondErr(w, err)
				return
			}
			results = append(results, res)
		}
	}
	respondList(w, results, len(results))
}

// parse parses text and attaches the requested extras.
func (s *Server) parse(ctx context.Context, text string, opts ParseOptions) (*ParseResult, error) {
	start := time.Now()
	doc, stats := atf.ParseStats(text)

	result := &ParseResult{Document: doc, Stats: stats}
	if opts.Legend {
		result.Legend = atf.Summarize(doc)
	}
	if opts.Lookups && s.store != nil {
		glosses, err := lookup.Glosses(ctx, s.glossary, doc)
		if err != nil {
			return nil, err
		}
		translations, err := lookup.LineTranslations(ctx, s.store, doc)
		if err != nil {
			return nil, err
		}
		result.Glosses = glosses
		result.Translations = translations
	}

	logging.ParseCompleted(ctx, doc.Header.CatalogID, len(doc.Surfaces), stats.Content, stats.Unknown,
		"duration_ms", time.Since(start).Milliseconds())
	s.hub.Broadcast(Event{
		Type: EventParsed,
		Data: map[string]interface{}{
			"catalog_id": doc.Header.CatalogID,
			"digest":     doc.SourceDigest,
			"surfaces":   len(doc.Surfaces),
		},
	})
	return result, nil
}

func (s *Server) handleTokenize(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}
	var req TokenizeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := validation.ValidateLine(req.Line); err != nil {
		respondErr(w, &errors.ValidationError{Field: "line", Message: err.Error(), Err: err})
		return
	}
	words := atf.Tokenize(req.Line)
	respondList(w, words, len(words))
}

func (s *Server) handleNormalize(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}
	var req NormalizeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	out := make([]NormalizedWord, len(req.Words))
	for i, word := range req.Words {
		key, ok := atf.Normalize(word)
		out[i] = NormalizedWord{Display: word, Key: key, Present: ok}
	}
	respondList(w, out, len(out))
}

func (s *Server) handleXPath(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}
	expr, err := xml.Compile(r.URL.Query().Get("expr"))
	if err != nil {
		respondErr(w, &errors.ParseError{Format: "XPath", Message: err.Error(), Err: err})
		return
	}
	text, ok := readText(w, r)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := render.XML(&buf, atf.Parse(text)); err != nil {
		respondErr(w, err)
		return
	}
	doc, err := xml.Parse(buf.Bytes())
	if err != nil {
		respondErr(w, err)
		return
	}

	values := []string{}
	for _, n := range doc.Select(expr) {
		values = append(values, n.Text())
	}
	if len(values) == 0 {
		// Scalar expressions such as count() select no nodes.
		if v := doc.EvalExpr(expr); v != "" {
			values = append(values, v)
		}
	}
	respond(w, http.StatusOK, XPathResult{Expr: expr.String(), Values: values})
}

func (s *Server) handleGloss(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) || !s.requireStore(w) {
		return
	}
	word := r.URL.Query().Get("word")
	key := r.URL.Query().Get("key")
	if key == "" {
		key = atf.NormalizeKey(word)
	}
	if key == "" {
		respondErr(w, errors.NewValidation("key", "word or key is required"))
		return
	}

	gloss, found, err := s.glossary.Gloss(r.Context(), key)
	if err != nil {
		logging.LookupError(r.Context(), "glossary", key, err)
		respondErr(w, err)
		return
	}
	if !found {
		respondErr(w, errors.NewNotFound("gloss", key))
		return
	}
	respond(w, http.StatusOK, GlossResult{Word: word, Key: key, Gloss: gloss})
}

func (s *Server) handleTranslation(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) || !s.requireStore(w) {
		return
	}
	q := r.URL.Query()
	tablet := q.Get("tablet")
	surface, err1 := strconv.Atoi(q.Get("surface"))
	column, err2 := strconv.Atoi(q.Get("column"))
	line := q.Get("line")
	if tablet == "" || line == "" || err1 != nil || err2 != nil {
		respondErr(w, errors.NewValidation("query", "tablet, surface, column and line are required"))
		return
	}

	key := lookup.LineKey{Surface: surface, Column: column, Line: store.LineLabel(line)}
	text, found, err := s.store.LineTranslation(r.Context(), tablet, key)
	if err != nil {
		logging.LookupError(r.Context(), "translations", key.String(), err, "tablet", tablet)
		respondErr(w, err)
		return
	}
	if !found {
		respondErr(w, errors.NewNotFound("translation", tablet+"/"+key.String()))
		return
	}
	respond(w, http.StatusOK, map[string]string{"tablet": tablet, "key": key.String(), "text": text})
}

func (s *Server) handleComposite(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) || !s.requireStore(w) {
		return
	}
	id := r.URL.Query().Get("id")
	if id == "" {
		respondErr(w, errors.NewValidation("id", "id is required"))
		return
	}
	title, found, err := s.store.CompositeTitle(r.Context(), id)
	if err != nil {
		logging.LookupError(r.Context(), "composites", id, err)
		respondErr(w, err)
		return
	}
	if !found {
		respondErr(w, errors.NewNotFound("composite", id))
		return
	}
	respond(w, http.StatusOK, map[string]string{"id": id, "title": title})
}

// handleImport loads a CSV body into the store. The last path segment picks
// the table.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) || !s.requireStore(w) {
		return
	}
	kind := strings.TrimPrefix(r.URL.Path, "/api/import/")

	var (
		res store.ImportResult
		err error
	)
	switch kind {
	case store.KindGlossary:
		res, err = s.store.ImportGlossary(r.Context(), r.Body)
	case store.KindTranslations:
		res, err = s.store.ImportTranslations(r.Context(), r.Body)
	case store.KindComposites:
		res, err = s.store.ImportComposites(r.Context(), r.Body)
	default:
		respondError(w, http.StatusNotFound, "NOT_FOUND", fmt.Sprintf("unknown import kind %q", kind))
		return
	}
	if err != nil {
		respondErr(w, err)
		return
	}

	if kind == store.KindGlossary && !res.Repeated {
		s.glossary.Invalidate()
	}
	s.hub.Broadcast(Event{
		Type: EventImported,
		Data: map[string]interface{}{"kind": res.Kind, "rows": res.Rows, "repeated": res.Repeated},
	})
	respond(w, http.StatusOK, res)
}

func (s *Server) requireStore(w http.ResponseWriter) bool {
	if s.store == nil {
		respondError(w, http.StatusServiceUnavailable, "STORE_UNAVAILABLE", "no lookup store is configured")
		return false
	}
	return true
}

// readText returns the request body as transliteration text. JSON bodies
// carry it in a "text" field; anything else is read as raw, possibly
// compressed, text.
func readText(w http.ResponseWriter, r *http.Request) (string, bool) {
	if mt, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type")); mt == "application/json" {
		var req ParseRequest
		if !decodeJSON(w, r, &req) {
			return "", false
		}
		if err := validation.ValidateSource([]byte(req.Text)); err != nil {
			respondErr(w, &errors.ValidationError{Field: "text", Message: err.Error(), Err: err})
			return "", false
		}
		return req.Text, true
	}

	files, err := source.Read(r.Body, "upload")
	if err != nil {
		respondErr(w, err)
		return "", false
	}
	if len(files) != 1 {
		respondErr(w, errors.NewValidation("body", "expected a single text; use /api/corpus for archives"))
		return "", false
	}
	return files[0].Text, true
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil && err != io.EOF {
		respondErr(w, &errors.ParseError{Format: "JSON", Message: err.Error(), Err: err})
		return false
	}
	return true
}

func allowMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method == method {
		return true
	}
	w.Header().Set("Allow", method)
	respondError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Only "+method+" is allowed")
	return false
}

func respond(w http.ResponseWriter, status int, data interface{}) {
	response := APIResponse{
		Success: true,
		Data:    data,
		Meta: &APIMeta{
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		},
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(response)
}

func respondList(w http.ResponseWriter, data interface{}, total int) {
	response := APIResponse{
		Success: true,
		Data:    data,
		Meta: &APIMeta{
			Total:     total,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		},
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(response)
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	response := APIResponse{
		Success: false,
		Error: &APIError{
			Code:    code,
			Message: message,
		},
		Meta: &APIMeta{
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		},
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(response)
}

// respondErr maps typed errors onto HTTP status codes.
func respondErr(w http.ResponseWriter, err error) {
	var (
		notFound    *errors.NotFoundError
		invalid     *errors.ValidationError
		parseErr    *errors.ParseError
		unsupported *errors.UnsupportedError
		tooLarge    *http.MaxBytesError
	)
	switch {
	case errors.As(err, &tooLarge):
		respondError(w, http.StatusRequestEntityTooLarge, "TOO_LARGE", err.Error())
	case errors.As(err, &notFound):
		respondError(w, http.StatusNotFound, "NOT_FOUND", err.Error())
	case errors.As(err, &invalid):
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
	case errors.As(err, &parseErr):
		respondError(w, http.StatusBadRequest, "PARSE_ERROR", err.Error())
	case errors.As(err, &unsupported):
		respondError(w, http.StatusBadRequest, "UNSUPPORTED", err.Error())
	default:
		logging.Error("request failed", "error", err)
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "internal error")
	}
}
