package httpserver

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"path"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/mitchell1972/cafesnearme/internal/app"
	"github.com/mitchell1972/cafesnearme/internal/domain"
)

// maxUploadBytes bounds import uploads (spreadsheets, not media).
const maxUploadBytes = 32 << 20

type Handlers struct {
	Q       *app.QueryService
	S       *app.SearchService
	I       *app.ImportService
	Uploads *rate.Limiter
}

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })
	s.mux.Get("/v1/cafes/search", h.searchCafes)
	s.mux.Get("/v1/cafes/{slug}", h.getCafe)
	s.mux.Get("/v1/cities", h.listCities)
	s.mux.Get("/v1/cities/{city}/cafes", h.listCafesByCity)
	s.mux.Route("/v1/admin", func(r chi.Router) {
		if h.Uploads != nil {
			r.Use(RateLimit(h.Uploads))
		}
		r.Post("/import", h.importFile)
		r.Post("/import/advanced", h.importAdvanced)
	})
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("write JSON response failed")
	}
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	etag := `W/"` + hex.EncodeToString(sum[:]) + `"`
	return etag, body
}

func (h *Handlers) searchCafes(w http.ResponseWriter, r *http.Request) {
	qs := r.URL.Query()
	q := domain.SearchQuery{
		Text:      qs.Get("q"),
		OpenNow:   qs.Get("openNow") == "true" || qs.Get("openNow") == "1",
		Amenities: splitParam(qs.Get("amenities")),
		Features:  splitParam(qs.Get("features")),
	}

	var bad string
	q.Lat, bad = floatParam(qs.Get("lat"), bad, "lat")
	q.Lng, bad = floatParam(qs.Get("lng"), bad, "lng")
	if bad != "" {
		writeProblem(w, http.StatusBadRequest, "Invalid parameter", bad+" must be a number")
		return
	}
	if (q.Lat == nil) != (q.Lng == nil) {
		writeProblem(w, http.StatusBadRequest, "Invalid parameter", "lat and lng must be provided together")
		return
	}
	if rs := qs.Get("radius"); rs != "" {
		f, err := strconv.ParseFloat(rs, 64)
		if err != nil || f <= 0 {
			writeProblem(w, http.StatusBadRequest, "Invalid parameter", "radius must be a positive number")
			return
		}
		q.Radius = f
	}
	q.Limit = intParam(qs.Get("limit"))
	q.Offset = intParam(qs.Get("offset"))

	page, err := h.S.Search(r.Context(), q)
	if err != nil {
		log.Error().Err(err).Msg("search failed")
		writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "search failed")
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (h *Handlers) getCafe(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	c, err := h.Q.GetCafe(r.Context(), slug)
	if errors.Is(err, domain.ErrNotFound) {
		writeProblem(w, http.StatusNotFound, "Not Found", "cafe not found")
		return
	}
	if err != nil {
		log.Error().Err(err).Str("slug", slug).Msg("get cafe failed")
		writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "lookup failed")
		return
	}

	etag, body := calcETagAndBody(c)
	// If client already has this version, short-circuit.
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write getCafe body")
	}
}

func (h *Handlers) listCities(w http.ResponseWriter, r *http.Request) {
	cities, err := h.Q.ListCities(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("list cities failed")
		writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "list cities failed")
		return
	}
	if cities == nil {
		cities = []domain.CityCount{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"cities": cities})
}

func (h *Handlers) listCafesByCity(w http.ResponseWriter, r *http.Request) {
	city := chi.URLParam(r, "city")
	pg := domain.PageQuery{
		Limit:  intParam(r.URL.Query().Get("limit")),
		Offset: intParam(r.URL.Query().Get("offset")),
	}
	cafes, err := h.Q.ListCafesByCity(r.Context(), city, pg)
	if err != nil {
		log.Error().Err(err).Msg("list cafes by city failed")
		writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "listing failed")
		return
	}
	if cafes == nil {
		cafes = []domain.Cafe{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"city": city, "cafes": cafes})
}

func (h *Handlers) importFile(w http.ResponseWriter, r *http.Request) {
	name, data, ok := readUpload(w, r, ".csv", ".xlsx", ".xls")
	if !ok {
		return
	}
	report, err := h.I.ImportFile(r.Context(), name, data)
	if err != nil {
		log.Error().Err(err).Str("file", name).Msg("import failed")
		writeProblem(w, http.StatusInternalServerError, "Import Failed", err.Error())
		return
	}
	// partial failures still get a 200 with the per-row errors
	writeJSON(w, http.StatusOK, report)
}

func (h *Handlers) importAdvanced(w http.ResponseWriter, r *http.Request) {
	name, data, ok := readUpload(w, r, ".xlsx", ".xls")
	if !ok {
		return
	}
	report, err := h.I.ImportOutscraper(r.Context(), name, data)
	if err != nil {
		log.Error().Err(err).Str("file", name).Msg("advanced import failed")
		writeProblem(w, http.StatusInternalServerError, "Import Failed", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// readUpload pulls the multipart "file" field and enforces the allowed
// extensions. Writes the error response itself when it returns !ok.
func readUpload(w http.ResponseWriter, r *http.Request, exts ...string) (string, []byte, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid upload", "expected multipart form with a file field")
		return "", nil, false
	}
	f, fh, err := r.FormFile("file")
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Missing file", "no file provided")
		return "", nil, false
	}
	defer f.Close()

	ext := strings.ToLower(path.Ext(fh.Filename))
	allowed := false
	for _, e := range exts {
		if ext == e {
			allowed = true
			break
		}
	}
	if !allowed {
		writeProblem(w, http.StatusBadRequest, "Invalid file type",
			"supported extensions: "+strings.Join(exts, ", "))
		return "", nil, false
	}

	data, err := io.ReadAll(f)
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid upload", "could not read file")
		return "", nil, false
	}
	return fh.Filename, data, true
}

func splitParam(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func floatParam(s, bad, name string) (*float64, string) {
	if s == "" || bad != "" {
		return nil, bad
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, name
	}
	return &f, ""
}

func intParam(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
