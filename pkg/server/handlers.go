package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/matzehuels/ged2dot/pkg/config"
	gerrors "github.com/matzehuels/ged2dot/pkg/errors"
	"github.com/matzehuels/ged2dot/pkg/observability"
	"github.com/matzehuels/ged2dot/pkg/pipeline"
	"github.com/matzehuels/ged2dot/pkg/render"
)

// Response headers set by /v1/convert.
const (
	HeaderRunID = "X-Run-ID"
	HeaderCache = "X-Cache"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), s.opts.RenderTimeout)
	defer cancel()

	cfg, format, err := s.requestConfig(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.opts.MaxBodyBytes))
	if err != nil {
		s.fail(w, r, err)
		return
	}

	result, err := s.runner.Convert(ctx, body, pipeline.Options{
		Config: cfg,
		Format: format,
		Source: pipeline.SourceRequest,
		Logger: s.opts.Logger.With("request", RequestIDFrom(r.Context())),
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}

	cacheState := "miss"
	if result.CacheInfo.DOTHit && (format == render.FormatDOT || result.CacheInfo.ArtifactHit) {
		cacheState = "hit"
	}
	w.Header().Set("Content-Type", contentType(format, cfg))
	w.Header().Set(HeaderRunID, result.RunID)
	w.Header().Set(HeaderCache, cacheState)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(result.Artifact)
}

// requestConfig applies the query parameters to a copy of the base config.
func (s *Server) requestConfig(r *http.Request) (*config.Config, string, error) {
	q := r.URL.Query()
	cfg := s.opts.Config.Clone()

	if v := q.Get("root"); v != "" {
		cfg.RootFamily = v
	}
	if v := q.Get("layout"); v != "" {
		cfg.Layout = v
	}
	intParams := []struct {
		name string
		dst  *int
	}{
		{"depth", &cfg.LayoutMaxDepth},
		{"siblingDepth", &cfg.LayoutMaxSiblingDepth},
		{"siblingFamilyDepth", &cfg.LayoutMaxSiblingFamilyDepth},
	}
	for _, p := range intParams {
		v := q.Get(p.name)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, "", gerrors.New(gerrors.ErrCodeInvalidConfig, "%s: %q is not an integer", p.name, v)
		}
		*p.dst = n
	}
	if v := q.Get("exclude"); v != "" {
		cfg.IndiBlacklist = config.SplitList(v)
	}
	if v := q.Get("anon"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil, "", gerrors.New(gerrors.ErrCodeInvalidConfig, "anon: %q is not a boolean", v)
		}
		cfg.AnonMode = b
	}
	if v := q.Get("encoding"); v != "" {
		cfg.InputEncoding = v
	}

	format := q.Get("format")
	if format == "" {
		format = render.FormatDOT
	}
	if !render.ValidFormat(format) {
		return nil, "", gerrors.New(gerrors.ErrCodeInvalidFormat, "unsupported output format %q", format)
	}
	// Images refer to server-local paths, never exposed over HTTP.
	cfg.Images = false

	if err := cfg.Validate(); err != nil {
		return nil, "", err
	}
	return cfg, format, nil
}

func contentType(format string, cfg *config.Config) string {
	if format == render.FormatDOT && cfg.OutputEncoding != "" && cfg.OutputEncoding != config.DefaultEncoding {
		return "text/vnd.graphviz; charset=" + cfg.OutputEncoding
	}
	return render.ContentType(format)
}

// errorResponse is the JSON body of every failed request.
type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Line    int    `json:"line,omitempty"`
}

// fail maps err to a status code and writes the JSON error body.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status, resp := errorStatus(err)
	route := "/v1/convert"
	observability.HTTP().OnError(r.Context(), r.Method, route, resp.Code)

	logger := s.opts.Logger.With("request", RequestIDFrom(r.Context()))
	if status >= http.StatusInternalServerError {
		logger.Error("conversion failed", "err", err)
	} else {
		logger.Debug("conversion rejected", "status", status, "err", err)
	}
	writeJSON(w, status, resp)
}

func errorStatus(err error) (int, errorResponse) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return http.StatusRequestEntityTooLarge, errorResponse{
			Code:    "REQUEST_TOO_LARGE",
			Message: "request body exceeds " + strconv.FormatInt(tooLarge.Limit, 10) + " bytes",
		}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return http.StatusGatewayTimeout, errorResponse{Code: "TIMEOUT", Message: "conversion timed out"}
	}

	resp := errorResponse{Code: string(gerrors.GetCode(err)), Message: gerrors.UserMessage(err)}
	var pe *gerrors.ParseError
	if errors.As(err, &pe) {
		resp.Line = pe.Line
	}

	switch gerrors.GetCode(err) {
	case gerrors.ErrCodeInvalidGEDCOM:
		return http.StatusUnprocessableEntity, resp
	case gerrors.ErrCodeNoSuchFamily:
		return http.StatusNotFound, resp
	case gerrors.ErrCodeInvalidConfig, gerrors.ErrCodeInvalidFormat,
		gerrors.ErrCodeInvalidID, gerrors.ErrCodeInvalidEncoding:
		return http.StatusBadRequest, resp
	}
	return http.StatusInternalServerError, errorResponse{
		Code:    string(gerrors.ErrCodeInternal),
		Message: "internal error",
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
