package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"unicode/utf8"

	"mercator-hq/vesta/pkg/audit"
	"mercator-hq/vesta/pkg/audit/export"
	"mercator-hq/vesta/pkg/audit/query"
	"mercator-hq/vesta/pkg/moderation"
)

// CommentRequest is the body of the analyze and moderate endpoints.
type CommentRequest struct {
	Text *string `json:"text"`
}

// BatchRequest is the body of the batch endpoint.
type BatchRequest struct {
	Texts []string `json:"texts"`
}

// BatchResponse holds one result per input text, in input order.
type BatchResponse struct {
	Results []*moderation.AnalysisResult `json:"results"`
}

// RecordsResponse is returned by the audit records endpoint.
type RecordsResponse struct {
	Records []*audit.Record `json:"records"`
	Count   int             `json:"count"`
	Limit   int             `json:"limit"`
	Offset  int             `json:"offset"`
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	text, ok := s.readComment(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, s.moderator.AnalyzeComment(r.Context(), text))
}

func (s *Server) handleModerate(w http.ResponseWriter, r *http.Request) {
	text, ok := s.readComment(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, s.moderator.ModerateRealtime(r.Context(), text))
}

func (s *Server) handleBatch(w http.ResponseWriter, r *http.Request) {
	var req BatchRequest
	if !s.decode(w, r, &req) {
		return
	}
	if req.Texts == nil {
		writeError(w, http.StatusBadRequest, ErrorDetail{
			Message: "texts is required",
			Type:    ErrorTypeInvalidRequest,
			Param:   "texts",
			Code:    CodeMissingField,
		})
		return
	}
	if limit := s.config.MaxBatchSize; limit > 0 && len(req.Texts) > limit {
		writeError(w, http.StatusBadRequest, ErrorDetail{
			Message: fmt.Sprintf("batch has %d comments, the limit is %d", len(req.Texts), limit),
			Type:    ErrorTypeInvalidRequest,
			Param:   "texts",
			Code:    CodeBatchTooLarge,
		})
		return
	}
	for i, text := range req.Texts {
		if !s.checkLength(w, text, fmt.Sprintf("texts[%d]", i)) {
			return
		}
	}

	writeJSON(w, http.StatusOK, BatchResponse{Results: s.moderator.AnalyzeComments(r.Context(), req.Texts)})
}

func (s *Server) handleAuditRecords(w http.ResponseWriter, r *http.Request) {
	if !s.auditEnabled(w) {
		return
	}
	q, ok := s.parseQuery(w, r.URL.Query())
	if !ok {
		return
	}

	ctx, cancel := s.queryContext(r.Context())
	defer cancel()

	records, err := s.store.Query(ctx, q)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "audit query failed", "error", err)
		writeError(w, http.StatusInternalServerError, ErrorDetail{
			Message: "audit query failed",
			Type:    ErrorTypeServerError,
		})
		return
	}
	if records == nil {
		records = []*audit.Record{}
	}

	writeJSON(w, http.StatusOK, RecordsResponse{
		Records: records,
		Count:   len(records),
		Limit:   q.Limit,
		Offset:  q.Offset,
	})
}

func (s *Server) handleAuditExport(w http.ResponseWriter, r *http.Request) {
	if !s.auditEnabled(w) {
		return
	}
	values := r.URL.Query()
	format := values.Get("format")
	if format == "" {
		format = export.FormatJSON
	}
	exp, err := export.New(format)
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorDetail{
			Message: err.Error(),
			Type:    ErrorTypeInvalidRequest,
			Param:   "format",
			Code:    CodeInvalidValue,
		})
		return
	}
	values.Del("format")
	q, ok := s.parseQuery(w, values)
	if !ok {
		return
	}

	ctx, cancel := s.queryContext(r.Context())
	defer cancel()

	contentType := "application/json"
	if format == export.FormatCSV {
		contentType = "text/csv"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=audit.%s", format))

	// Headers are already sent once streaming starts, so failures can only
	// be logged.
	if err := export.Stream(ctx, s.store, q, exp, w); err != nil {
		s.logger.ErrorContext(r.Context(), "audit export failed", "format", format, "error", err)
	}
}

// readComment decodes a CommentRequest and enforces the length limit.
func (s *Server) readComment(w http.ResponseWriter, r *http.Request) (string, bool) {
	var req CommentRequest
	if !s.decode(w, r, &req) {
		return "", false
	}
	if req.Text == nil {
		writeError(w, http.StatusBadRequest, ErrorDetail{
			Message: "text is required",
			Type:    ErrorTypeInvalidRequest,
			Param:   "text",
			Code:    CodeMissingField,
		})
		return "", false
	}
	if !s.checkLength(w, *req.Text, "text") {
		return "", false
	}
	return *req.Text, true
}

func (s *Server) checkLength(w http.ResponseWriter, text, param string) bool {
	limit := s.config.MaxCommentLength
	if limit <= 0 {
		return true
	}
	if n := utf8.RuneCountInString(text); n > limit {
		writeError(w, http.StatusRequestEntityTooLarge, ErrorDetail{
			Message: fmt.Sprintf("comment has %d characters, the limit is %d", n, limit),
			Type:    ErrorTypeTooLarge,
			Param:   param,
			Code:    CodeCommentTooLong,
		})
		return false
	}
	return true
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	body := io.Reader(r.Body)
	if s.config.MaxBodyBytes > 0 {
		body = http.MaxBytesReader(w, r.Body, s.config.MaxBodyBytes)
	}

	if err := json.NewDecoder(body).Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(w, http.StatusRequestEntityTooLarge, ErrorDetail{
				Message: fmt.Sprintf("request body exceeds %d bytes", maxErr.Limit),
				Type:    ErrorTypeTooLarge,
				Code:    CodeBodyTooLarge,
			})
			return false
		}
		writeError(w, http.StatusBadRequest, ErrorDetail{
			Message: "request body is not valid JSON",
			Type:    ErrorTypeInvalidRequest,
			Code:    CodeInvalidJSON,
		})
		return false
	}
	return true
}

func (s *Server) auditEnabled(w http.ResponseWriter) bool {
	if s.store != nil {
		return true
	}
	writeError(w, http.StatusNotFound, ErrorDetail{
		Message: "audit trail is disabled",
		Type:    ErrorTypeNotFound,
		Code:    CodeAuditDisabled,
	})
	return false
}

// parseQuery builds an audit query from URL parameters, applying the
// configured default and maximum page size.
func (s *Server) parseQuery(w http.ResponseWriter, values url.Values) (*audit.Query, bool) {
	q, err := query.Parse(values)
	if err == nil && values.Get("limit") == "" && s.queryConfig.DefaultLimit > 0 {
		q.Limit = s.queryConfig.DefaultLimit
	}
	if err == nil && s.queryConfig.MaxLimit > 0 && q.Limit > s.queryConfig.MaxLimit {
		err = audit.NewQueryError("limit", fmt.Errorf("must be <= %d, got %d", s.queryConfig.MaxLimit, q.Limit))
	}
	if err != nil {
		detail := ErrorDetail{
			Message: err.Error(),
			Type:    ErrorTypeInvalidRequest,
			Code:    CodeInvalidValue,
		}
		var qe *audit.QueryError
		if errors.As(err, &qe) {
			detail.Param = qe.Field
		}
		writeError(w, http.StatusBadRequest, detail)
		return nil, false
	}
	return q, true
}

func (s *Server) queryContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.queryConfig.Timeout > 0 {
		return context.WithTimeout(ctx, s.queryConfig.Timeout)
	}
	return context.WithCancel(ctx)
}
