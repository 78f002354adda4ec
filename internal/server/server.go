package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	eventbus "github.com/hanpama/gqlcore/internal/eventbus"
	events "github.com/hanpama/gqlcore/internal/events"
	executor "github.com/hanpama/gqlcore/internal/executor"
	gqlerrors "github.com/hanpama/gqlcore/internal/gqlerrors"
	language "github.com/hanpama/gqlcore/internal/language"
	reqid "github.com/hanpama/gqlcore/internal/reqid"
	schema "github.com/hanpama/gqlcore/internal/schema"
)

// Handler is an http.Handler that serves a GraphQL endpoint.
// It parses and validates requests, runs the executor, and writes results
// in the GraphQL response format with located errors.
type Handler struct {
	exec   *executor.Executor
	schema *schema.Schema
	opt    Options
}

type Options struct {
	// Timeout sets a default timeout if the incoming request context has none.
	// 0 means no default timeout.
	Timeout time.Duration

	// Pretty enables indented JSON responses (useful for dev).
	Pretty bool

	// MaxBodyBytes limits the size of the request body. 0 means unlimited.
	MaxBodyBytes int64

	// CORS configuration. If AllowedOrigins is empty, CORS is disabled.
	CORS CORSOptions

	// RootValue is the source of root fields.
	RootValue any

	// Bus receives request lifecycle events. Defaults to the global bus.
	Bus *eventbus.Bus

	// ExecutorOptions are passed to the executor.
	ExecutorOptions []executor.Option
}

type Option func(*Options)

func WithTimeout(d time.Duration) Option  { return func(o *Options) { o.Timeout = d } }
func WithPretty() Option                  { return func(o *Options) { o.Pretty = true } }
func WithMaxBodyBytes(n int64) Option     { return func(o *Options) { o.MaxBodyBytes = n } }
func WithRootValue(v any) Option          { return func(o *Options) { o.RootValue = v } }
func WithEventBus(b *eventbus.Bus) Option { return func(o *Options) { o.Bus = b } }
func WithExecutor(opts ...executor.Option) Option {
	return func(o *Options) { o.ExecutorOptions = append(o.ExecutorOptions, opts...) }
}
func WithCORS(origins ...string) Option {
	return func(o *Options) { o.CORS.AllowedOrigins = origins }
}

// CORSOptions holds simple CORS settings.
type CORSOptions struct {
	AllowedOrigins []string
}

// New creates a new GraphQL HTTP handler using the given runtime and schema.
// Requests are validated when the schema was built from SDL.
func New(runtime executor.Runtime, sch *schema.Schema, opts ...Option) *Handler {
	op := Options{Timeout: 10 * time.Second, Bus: eventbus.Default()}
	for _, f := range opts {
		f(&op)
	}
	return &Handler{
		exec:   executor.NewExecutor(runtime, sch, op.ExecutorOptions...),
		schema: sch,
		opt:    op,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if _, ok := ctx.Deadline(); !ok && h.opt.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.opt.Timeout)
		defer cancel()
	}

	ctx, rid := reqid.FromRequest(r.WithContext(ctx))
	w.Header().Set(reqid.Header, rid)
	status := http.StatusOK
	start := time.Now()
	eventbus.Publish(ctx, h.opt.Bus, events.HTTPStart{Request: r})
	defer func() {
		eventbus.Publish(ctx, h.opt.Bus, events.HTTPFinish{Request: r, Status: status, Duration: time.Since(start)})
	}()

	if r.Method == http.MethodOptions {
		if len(h.opt.CORS.AllowedOrigins) > 0 {
			setCORSHeaders(w, r, h.opt.CORS)
		}
		status = http.StatusNoContent
		w.WriteHeader(status)
		return
	}

	if r.Method != http.MethodPost && r.Method != http.MethodGet {
		status = http.StatusMethodNotAllowed
		writeJSON(w, status, requestError("method not allowed"), h.opt.Pretty)
		return
	}

	req, batch, berr := parseRequest(r, h.opt.MaxBodyBytes)
	if berr != nil {
		status = http.StatusBadRequest
		if berr.Message() == errBodyTooLargeMessage {
			status = http.StatusRequestEntityTooLarge
		}
		writeJSON(w, status, executor.Response{Errors: []gqlerrors.Formatted{berr.Formatted()}}, h.opt.Pretty)
		return
	}

	if len(h.opt.CORS.AllowedOrigins) > 0 {
		setCORSHeaders(w, r, h.opt.CORS)
	}

	if batch != nil {
		out := make([]executor.Response, len(batch))
		for i := range batch {
			out[i] = h.executeOne(ctx, batch[i])
		}
		writeJSON(w, status, out, h.opt.Pretty)
		return
	}

	writeJSON(w, status, h.executeOne(ctx, req), h.opt.Pretty)
}

func (h *Handler) executeOne(ctx context.Context, req GraphQLRequest) executor.Response {
	src := language.NewSource(req.Query, "request")
	doc, err := language.ParseQuerySource(src)
	if err != nil {
		return h.reject(ctx, "parse", gqlerrors.FromParser(err, src))
	}
	if ast := h.schema.AST(); ast != nil {
		if errs := language.Validate(ast, doc); len(errs) > 0 {
			return h.reject(ctx, "validate", gqlerrors.FromParser(errs, src))
		}
	}

	opType := ""
	if opDef := selectOperation(doc, req.OperationName); opDef != nil {
		opType = string(opDef.Operation)
	}

	start := time.Now()
	eventbus.Publish(ctx, h.opt.Bus, events.OperationStart{OperationName: req.OperationName, OperationType: opType})
	result := h.exec.ExecuteRequest(ctx, doc, req.OperationName, req.Variables, h.opt.RootValue)
	eventbus.Publish(ctx, h.opt.Bus, events.OperationFinish{
		OperationName: req.OperationName,
		OperationType: opType,
		Errors:        result.Errors,
		Duration:      time.Since(start),
	})
	return result.Response()
}

func (h *Handler) reject(ctx context.Context, stage string, errs gqlerrors.List) executor.Response {
	eventbus.Publish(ctx, h.opt.Bus, events.RequestRejected{Stage: stage, Errors: errs})
	return executor.Response{Errors: errs.Formatted()}
}

func selectOperation(doc *language.QueryDocument, name string) *language.OperationDefinition {
	if name != "" {
		return doc.Operations.ForName(name)
	}
	if len(doc.Operations) == 1 {
		return doc.Operations[0]
	}
	return nil
}

// ------------------ Request parsing ------------------

type GraphQLRequest struct {
	Query         string         `json:"query"`
	OperationName string         `json:"operationName,omitempty"`
	Variables     map[string]any `json:"variables,omitempty"`
	Extensions    map[string]any `json:"extensions,omitempty"`
}

func parseRequest(r *http.Request, maxBody int64) (GraphQLRequest, []GraphQLRequest, *gqlerrors.Error) {
	if r.Method == http.MethodGet {
		q := r.URL.Query().Get("query")
		if q == "" {
			return GraphQLRequest{}, nil, gqlerrors.New("missing 'query'")
		}
		vars := map[string]any{}
		if v := r.URL.Query().Get("variables"); v != "" {
			if err := json.Unmarshal([]byte(v), &vars); err != nil {
				return GraphQLRequest{}, nil, gqlerrors.New("invalid 'variables' JSON", gqlerrors.WithOriginalError(err))
			}
		}
		op := r.URL.Query().Get("operationName")
		return GraphQLRequest{Query: q, Variables: vars, OperationName: op}, nil, nil
	}

	// POST
	ct := r.Header.Get("Content-Type")
	if ct != "" && ct != "application/json" && !strings.HasPrefix(ct, "application/json;") {
		return GraphQLRequest{}, nil, gqlerrors.New("unsupported Content-Type")
	}
	defer r.Body.Close()
	reader := io.Reader(r.Body)
	if maxBody > 0 {
		reader = io.LimitReader(r.Body, maxBody+1)
	}
	body, err := io.ReadAll(reader)
	if err != nil {
		return GraphQLRequest{}, nil, gqlerrors.New("failed to read body", gqlerrors.WithOriginalError(err))
	}
	if maxBody > 0 && int64(len(body)) > maxBody {
		return GraphQLRequest{}, nil, gqlerrors.New(errBodyTooLargeMessage)
	}

	// Try array (batch)
	if len(body) > 0 && body[0] == '[' {
		var arr []GraphQLRequest
		if err := json.Unmarshal(body, &arr); err != nil {
			return GraphQLRequest{}, nil, gqlerrors.New("invalid JSON", gqlerrors.WithOriginalError(err))
		}
		if len(arr) == 0 {
			return GraphQLRequest{}, nil, gqlerrors.New("empty batch")
		}
		return GraphQLRequest{}, arr, nil
	}
	// Single
	var req GraphQLRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return GraphQLRequest{}, nil, gqlerrors.New("invalid JSON", gqlerrors.WithOriginalError(err))
	}
	if req.Query == "" {
		return GraphQLRequest{}, nil, gqlerrors.New("missing 'query'")
	}
	if req.Variables == nil {
		req.Variables = map[string]any{}
	}
	return req, nil, nil
}

// ------------------ Response formatting ------------------

func requestError(message string) executor.Response {
	return executor.Response{Errors: []gqlerrors.Formatted{{Message: message}}}
}

func writeJSON(w http.ResponseWriter, status int, v any, pretty bool) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	if pretty {
		enc.SetIndent("", "  ")
	}
	_ = enc.Encode(v)
}

const errBodyTooLargeMessage = "body too large"

func setCORSHeaders(w http.ResponseWriter, r *http.Request, opts CORSOptions) {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return
	}
	wildcard := contains(opts.AllowedOrigins, "*")
	if !wildcard && !contains(opts.AllowedOrigins, origin) {
		return
	}
	if wildcard {
		w.Header().Set("Access-Control-Allow-Origin", "*")
	} else {
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Add("Vary", "Origin")
	}
	if r.Method == http.MethodOptions {
		if hdr := r.Header.Get("Access-Control-Request-Headers"); hdr != "" {
			w.Header().Set("Access-Control-Allow-Headers", hdr)
		}
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
