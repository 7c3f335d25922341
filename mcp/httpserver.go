package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/foomo/olxexport/olx"
	"github.com/foomo/olxexport/service"
	"github.com/foomo/olxexport/service/vo"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"
)

// DiagnosticsHeader carries the number of diagnostics of a conversion.
const DiagnosticsHeader = "X-Olx-Diagnostics"

// maxCartridgeSize bounds the JSON body accepted by the convert endpoint
const maxCartridgeSize = 64 << 20

// httpRequestKey is a custom context key for storing the original HTTP request
type httpRequestKey struct{}

// withHTTPRequest adds the original HTTP request to the context
func withHTTPRequest(ctx context.Context, req *http.Request) context.Context {
	return context.WithValue(ctx, httpRequestKey{}, req)
}

// httpRequestFromContext extracts the original HTTP request from the context
func httpRequestFromContext(ctx context.Context) (*http.Request, bool) {
	req, ok := ctx.Value(httpRequestKey{}).(*http.Request)
	return req, ok
}

// httpContextFunc extracts the original HTTP request and adds it to the context
func httpContextFunc(ctx context.Context, r *http.Request) context.Context {
	return withHTTPRequest(ctx, r)
}

// NewMcpHTTPServer creates a new MCP HTTP server with traditional MCP endpoints
func NewMcpHTTPServer(s *server.MCPServer, endpoint string) *server.StreamableHTTPServer {
	return server.NewStreamableHTTPServer(
		s,
		server.WithEndpointPath(endpoint),
		server.WithHTTPContextFunc(httpContextFunc),
	)
}

// NewRouter serves the MCP endpoint next to a plain HTTP convert endpoint
func NewRouter(logger *zap.Logger, s *server.MCPServer, serviceInstance service.Service, endpoint string) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Handle(endpoint, NewMcpHTTPServer(s, endpoint))
	r.Post("/convert", convertHTTPHandler(logger, serviceInstance))
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	return r
}

func convertHTTPHandler(logger *zap.Logger, serviceInstance service.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var cartridge vo.Cartridge
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxCartridgeSize)).Decode(&cartridge); err != nil {
			writeJSONError(w, http.StatusBadRequest, "failed to parse cartridge: "+err.Error())
			return
		}

		conversion, err := serviceInstance.Convert(r.Context(), &cartridge)
		if err != nil {
			status := http.StatusInternalServerError
			var unsupported *olx.UnsupportedContentTypeError
			if errors.As(err, &unsupported) || errors.Is(err, olx.ErrNoAssessmentConverter) {
				status = http.StatusUnprocessableEntity
			}
			logger.Warn("conversion failed",
				zap.String("requestID", middleware.GetReqID(r.Context())),
				zap.Error(err),
			)
			writeJSONError(w, status, err.Error())
			return
		}

		w.Header().Set("Content-Type", "application/xml; charset=utf-8")
		w.Header().Set(DiagnosticsHeader, strconv.Itoa(len(conversion.Diagnostics)))
		if _, err := w.Write([]byte(conversion.XML)); err != nil {
			logger.Error("failed to write response", zap.Error(err))
		}
	}
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
