package graph

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"time"

	"github.com/graphql-go/graphql"
	"github.com/graphql-go/graphql/gqlerrors"

	"github.com/Alp4ka/unigraph"
	"github.com/Alp4ka/unigraph/internal/ctxlog"
	"github.com/Alp4ka/unigraph/metrics"
	"github.com/Alp4ka/unigraph/university"
)

const maxRequestBytes = 1 << 20

// Request is a GraphQL request as sent over HTTP.
type Request struct {
	Query         string                 `json:"query"`
	Variables     map[string]interface{} `json:"variables"`
	OperationName string                 `json:"operationName"`
}

// Handler serves GraphQL requests. Every request gets its own loaders, so
// nothing fetched for one request is visible to another.
type Handler struct {
	schema     graphql.Schema
	storage    unigraph.Storage
	loaderOpts []university.LoadersOption
}

func NewHandler(schema graphql.Schema, st unigraph.Storage, opts ...university.LoadersOption) *Handler {
	return &Handler{
		schema:     schema,
		storage:    st,
		loaderOpts: opts,
	}
}

// Execute runs req with fresh loaders.
func (h *Handler) Execute(ctx context.Context, req Request) *graphql.Result {
	logger := ctxlog.FromContext(ctx)
	started := time.Now()

	ctx = WithLoaders(ctx, university.NewLoaders(h.storage, h.loaderOpts...))
	result := graphql.Do(graphql.Params{
		Schema:         h.schema,
		RequestString:  req.Query,
		VariableValues: req.Variables,
		OperationName:  req.OperationName,
		Context:        ctx,
	})

	if result.HasErrors() {
		metrics.GraphQLErrorsTotal.Add(float64(len(result.Errors)))
		logger.Log(ctx, errorsLevel(result.Errors), "query finished with errors",
			"operation", req.OperationName,
			"errors", len(result.Errors),
			"first_error", result.Errors[0].Message,
			"duration", time.Since(started).String(),
		)
	} else {
		logger.DebugContext(ctx, "query finished",
			"operation", req.OperationName,
			"duration", time.Since(started).String(),
		)
	}

	return result
}

// errorsLevel picks the log level of a failed query from its most severe
// error. Storage failures log at error level, rejected pagination input at
// info, anything else at warn.
func errorsLevel(errs []gqlerrors.FormattedError) slog.Level {
	level := slog.LevelInfo
	for _, formatted := range errs {
		err := resolverError(formatted)
		switch {
		case unigraph.IsStorage(err):
			return slog.LevelError
		case unigraph.IsValidation(err):
			// Client input, level stays.
		default:
			level = slog.LevelWarn
		}
	}

	return level
}

// resolverError strips the graphql-go wrappers, which do not implement
// Unwrap, off the error a resolver or thunk returned.
func resolverError(err error) error {
	for {
		switch wrapped := err.(type) {
		case gqlerrors.FormattedError:
			if wrapped.OriginalError() == nil {
				return err
			}
			err = wrapped.OriginalError()
		case *gqlerrors.Error:
			if wrapped.OriginalError == nil {
				return err
			}
			err = wrapped.OriginalError
		default:
			return err
		}
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodPost {
		w.Header().Set("Allow", "GET, POST")
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	req, err := parseRequest(w, r)
	if err != nil {
		ctxlog.FromContext(r.Context()).InfoContext(r.Context(), "rejected graphql request", "error", err)
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, h.Execute(r.Context(), req))
}

func parseRequest(w http.ResponseWriter, r *http.Request) (Request, error) {
	var req Request

	switch r.Method {
	case http.MethodGet:
		q := r.URL.Query()
		req.Query = q.Get("query")
		req.OperationName = q.Get("operationName")
		if vars := q.Get("variables"); vars != "" {
			if err := json.Unmarshal([]byte(vars), &req.Variables); err != nil {
				return req, fmt.Errorf("invalid variables: %w", err)
			}
		}
	case http.MethodPost:
		body := http.MaxBytesReader(w, r.Body, maxRequestBytes)
		mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
		if mediaType == "application/graphql" {
			query, err := io.ReadAll(body)
			if err != nil {
				return req, fmt.Errorf("cannot read body: %w", err)
			}
			req.Query = string(query)
			break
		}
		if err := json.NewDecoder(body).Decode(&req); err != nil {
			return req, fmt.Errorf("invalid request body: %w", err)
		}
	default:
		return req, fmt.Errorf("method %s not allowed", r.Method)
	}

	if req.Query == "" {
		return req, fmt.Errorf("query is required")
	}

	return req, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
