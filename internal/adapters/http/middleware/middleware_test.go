package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/library-circulation/internal/adapters/http/dto"
	"github.com/jsamuelsen/library-circulation/internal/domain"
	"github.com/jsamuelsen/library-circulation/internal/platform/logging"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(router *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	return w
}

// capture returns a request whose context logger writes JSON into buf.
func capture(buf *bytes.Buffer, method, target string) *http.Request {
	req := httptest.NewRequest(method, target, nil)
	logger := slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	return req.WithContext(logging.WithContext(req.Context(), logger))
}

func TestIDMiddleware(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		middleware gin.HandlerFunc
		header     string
		inbound    string
		wantKept   bool
		fromCtx    func(context.Context) string
		fromGin    func(*gin.Context) string
	}{
		{
			name:       "request id generated",
			middleware: RequestID(),
			header:     HeaderRequestID,
			fromCtx:    RequestIDFromContext,
			fromGin:    GetRequestID,
		},
		{
			name:       "request id propagated",
			middleware: RequestID(),
			header:     HeaderRequestID,
			inbound:    "req-42.a_b",
			wantKept:   true,
			fromCtx:    RequestIDFromContext,
			fromGin:    GetRequestID,
		},
		{
			name:       "request id with control characters replaced",
			middleware: RequestID(),
			header:     HeaderRequestID,
			inbound:    "abc\tdef",
			fromCtx:    RequestIDFromContext,
			fromGin:    GetRequestID,
		},
		{
			name:       "oversized request id replaced",
			middleware: RequestID(),
			header:     HeaderRequestID,
			inbound:    strings.Repeat("a", maxInboundIDLength+1),
			fromCtx:    RequestIDFromContext,
			fromGin:    GetRequestID,
		},
		{
			name:       "correlation id propagated",
			middleware: CorrelationID(),
			header:     HeaderCorrelationID,
			inbound:    "checkout-7",
			wantKept:   true,
			fromCtx:    CorrelationIDFromContext,
			fromGin:    GetCorrelationID,
		},
		{
			name:       "correlation id generated",
			middleware: CorrelationID(),
			header:     HeaderCorrelationID,
			fromCtx:    CorrelationIDFromContext,
			fromGin:    GetCorrelationID,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var ginID, ctxID string

			router := gin.New()
			router.Use(tt.middleware)
			router.GET("/", func(c *gin.Context) {
				ginID = tt.fromGin(c)
				ctxID = tt.fromCtx(c.Request.Context())
				c.Status(http.StatusNoContent)
			})

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.inbound != "" {
				req.Header.Set(tt.header, tt.inbound)
			}

			w := serve(router, req)
			echoed := w.Header().Get(tt.header)

			assert.Equal(t, echoed, ginID)
			assert.Equal(t, echoed, ctxID)

			if tt.wantKept {
				assert.Equal(t, tt.inbound, echoed)
				return
			}

			_, err := uuid.Parse(echoed)
			assert.NoError(t, err, "expected a generated UUID, got %q", echoed)
		})
	}
}

func TestIDMiddleware_EnrichesLogger(t *testing.T) {
	var buf bytes.Buffer

	router := gin.New()
	router.Use(RequestID(), CorrelationID())
	router.GET("/", func(c *gin.Context) {
		logging.FromContext(c.Request.Context()).Info("inside")
	})

	req := capture(&buf, http.MethodGet, "/")
	req.Header.Set(HeaderRequestID, "req-1")
	req.Header.Set(HeaderCorrelationID, "corr-1")
	serve(router, req)

	assert.Contains(t, buf.String(), `"request_id":"req-1"`)
	assert.Contains(t, buf.String(), `"correlation_id":"corr-1"`)
}

func TestMustGetIDs(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	assert.Equal(t, "unknown", MustGetRequestID(c))
	assert.Equal(t, "unknown", MustGetCorrelationID(c))

	c.Set(ContextKeyRequestID, "r")
	c.Set(ContextKeyCorrelationID, 17)

	assert.Equal(t, "r", MustGetRequestID(c))
	assert.Equal(t, "unknown", MustGetCorrelationID(c))
}

func TestContextIDs(t *testing.T) {
	ctx := ContextWithCorrelationID(ContextWithRequestID(context.Background(), "request-123"), "correlation-456")

	assert.Equal(t, "request-123", RequestIDFromContext(ctx))
	assert.Equal(t, "correlation-456", CorrelationIDFromContext(ctx))
	assert.Empty(t, RequestIDFromContext(context.Background()))
	assert.Empty(t, CorrelationIDFromContext(nil)) //nolint:staticcheck // nil ctx is handled
}

func TestValidInboundID(t *testing.T) {
	for id, want := range map[string]bool{
		"":                                     false,
		"550e8400-e29b-41d4-a716-446655440000": true,
		"a.b_c-d":                              true,
		"has space":                            false,
		"semi;colon":                           false,
		"ünïcode":                              false,
	} {
		assert.Equal(t, want, validInboundID(id), id)
	}
}

func TestLogging(t *testing.T) {
	tests := []struct {
		name      string
		path      string
		status    int
		wantLevel string
		wantLog   bool
	}{
		{name: "success", path: "/api/v1/books", status: http.StatusOK, wantLevel: "INFO", wantLog: true},
		{name: "client error", path: "/api/v1/borrow", status: http.StatusConflict, wantLevel: "WARN", wantLog: true},
		{name: "server error", path: "/api/v1/payments", status: http.StatusServiceUnavailable, wantLevel: "ERROR", wantLog: true},
		{name: "probe skipped", path: "/-/live", status: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer

			router := gin.New()
			router.Use(Logging(nil))
			router.GET(tt.path, func(c *gin.Context) { c.Status(tt.status) })

			serve(router, capture(&buf, http.MethodGet, tt.path+"?q=x"))

			if !tt.wantLog {
				assert.Empty(t, buf.String())
				return
			}

			lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
			require.Len(t, lines, 2)
			assert.Contains(t, lines[0], `"msg":"request started"`)

			var completed map[string]any
			require.NoError(t, json.Unmarshal([]byte(lines[1]), &completed))
			assert.Equal(t, "request completed", completed["msg"])
			assert.Equal(t, tt.wantLevel, completed["level"])
			assert.Equal(t, tt.path+"?q=x", completed["path"])
			assert.InDelta(t, tt.status, completed["status"], 0)
			assert.NotContains(t, completed, "error_kind")
		})
	}
}

func TestLoggingWithSkipPaths(t *testing.T) {
	var buf bytes.Buffer

	router := gin.New()
	router.Use(LoggingWithSkipPaths(nil, []string{"/favicon.ico"}))
	router.GET("/favicon.ico", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	router.GET("/api/v1/search", func(c *gin.Context) { c.Status(http.StatusOK) })

	serve(router, capture(&buf, http.MethodGet, "/favicon.ico"))
	assert.Empty(t, buf.String())

	serve(router, capture(&buf, http.MethodGet, "/api/v1/search"))
	assert.Contains(t, buf.String(), "request completed")
}

func TestLogging_ErrorKind(t *testing.T) {
	var buf bytes.Buffer

	router := gin.New()
	router.Use(RequestID(), Logging(nil))
	router.GET("/api/v1/borrow", func(c *gin.Context) {
		dto.HandleError(c, domain.NewConflictError(domain.KindBorrowLimitExceeded, "patron", "limit reached"))
	})

	w := serve(router, capture(&buf, http.MethodGet, "/api/v1/borrow"))

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, buf.String(), `"error_kind":"borrow_limit_exceeded"`)
	assert.Contains(t, buf.String(), `"level":"WARN"`)
	assert.Contains(t, buf.String(), `"request_id":"`)
}

func TestRecovery(t *testing.T) {
	var (
		buf       bytes.Buffer
		recovered any
	)

	router := gin.New()
	router.Use(RequestID(), RecoveryWithWriter(nil, func(err any, stack []byte) {
		recovered = err
		assert.NotEmpty(t, stack)
	}))
	router.GET("/panic", func(*gin.Context) { panic("ledger corrupted") })

	req := capture(&buf, http.MethodGet, "/panic")
	req.Header.Set(HeaderRequestID, "req-9")
	w := serve(router, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "ledger corrupted", recovered)
	assert.Contains(t, buf.String(), "panic recovered")

	var resp dto.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, dto.ErrorCodeInternal, resp.Error.Code)
	assert.Equal(t, "req-9", resp.TraceID)
	assert.NotContains(t, w.Body.String(), "ledger corrupted")
}

func TestRecovery_NoPanic(t *testing.T) {
	router := gin.New()
	router.Use(Recovery(slog.New(slog.NewTextHandler(io.Discard, nil))))
	router.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, serve(router, httptest.NewRequest(http.MethodGet, "/", nil)).Code)
}

func TestTimeout(t *testing.T) {
	t.Run("deadline set", func(t *testing.T) {
		var deadline bool

		router := gin.New()
		router.Use(Timeout(5 * time.Second))
		router.GET("/", func(c *gin.Context) {
			_, deadline = c.Request.Context().Deadline()
			c.Status(http.StatusOK)
		})

		assert.Equal(t, http.StatusOK, serve(router, httptest.NewRequest(http.MethodGet, "/", nil)).Code)
		assert.True(t, deadline)
	})

	t.Run("silent handler gets timeout envelope", func(t *testing.T) {
		router := gin.New()
		router.Use(Timeout(10 * time.Millisecond))
		router.GET("/slow", func(c *gin.Context) {
			<-c.Request.Context().Done()
		})

		w := serve(router, httptest.NewRequest(http.MethodGet, "/slow", nil))

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)

		var resp dto.ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, dto.ErrorCodeTimeout, resp.Error.Code)
	})

	t.Run("handler response wins", func(t *testing.T) {
		router := gin.New()
		router.Use(Timeout(10 * time.Millisecond))
		router.GET("/slow", func(c *gin.Context) {
			<-c.Request.Context().Done()
			dto.HandleError(c, domain.NewStorageError("get book", c.Request.Context().Err()))
		})

		w := serve(router, httptest.NewRequest(http.MethodGet, "/slow", nil))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

func TestSimpleTimeout(t *testing.T) {
	var deadline time.Time

	router := gin.New()
	router.Use(SimpleTimeout(time.Minute))
	router.GET("/", func(c *gin.Context) {
		deadline, _ = c.Request.Context().Deadline()
		c.Status(http.StatusOK)
	})

	serve(router, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.WithinDuration(t, time.Now().Add(time.Minute), deadline, 5*time.Second)
}
