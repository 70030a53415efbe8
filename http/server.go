package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/fwojciec/mdextract"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
)

// DefaultMaxUploadSize bounds an uploaded PDF.
const DefaultMaxUploadSize = 50 << 20

// ShutdownTimeout is the time Close waits for in-flight requests.
const ShutdownTimeout = 10 * time.Second

// RequestIDHeader carries the request ID in both directions.
const RequestIDHeader = "X-Request-ID"

// Response is the JSON body of every extraction endpoint.
type Response struct {
	Status      string `json:"status"`
	DownloadURL string `json:"download_url,omitempty"`
	Message     string `json:"message"`
}

// Server exposes a mdextract.Processor over HTTP.
type Server struct {
	ln     net.Listener
	server *http.Server
	router chi.Router

	// Addr is the bind address, for example ":8000".
	Addr string

	// MaxUploadSize bounds multipart request bodies.
	MaxUploadSize int64

	// AllowedOrigins feeds the CORS middleware. Empty allows all origins.
	AllowedOrigins []string

	Processor mdextract.Processor
	Logger    *slog.Logger
}

// NewServer returns a Server with its routes mounted.
func NewServer(processor mdextract.Processor, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	s := &Server{
		MaxUploadSize: DefaultMaxUploadSize,
		Processor:     processor,
		Logger:        logger,
	}
	s.server = &http.Server{ReadHeaderTimeout: 10 * time.Second}
	return s
}

// Handler builds the router. It is safe to call after fields are set.
func (s *Server) Handler() http.Handler {
	origins := s.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(s.requestID)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", RequestIDHeader},
		ExposedHeaders: []string{RequestIDHeader},
		MaxAge:         300,
	}))

	r.Get("/healthz", s.handleHealth)
	r.Post("/upload_pdf_enterprise", s.handleUpload(mdextract.BackendEnterprise))
	r.Post("/upload_pdf_opensource", s.handleUpload(mdextract.BackendOpenSource))
	r.Post("/scrape_webpage", s.handleScrape(mdextract.BackendOpenSource))
	r.Post("/scrape_diffbot", s.handleScrape(mdextract.BackendEnterprise))
	return r
}

// Open binds the listener and starts serving in the background.
func (s *Server) Open() (err error) {
	if s.ln, err = net.Listen("tcp", s.Addr); err != nil {
		return err
	}
	s.server.Handler = s.Handler()
	go func() {
		if err := s.server.Serve(s.ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.Logger.Error("server stopped", "err", err)
		}
	}()
	return nil
}

// URL returns the base URL of the running server.
func (s *Server) URL() string {
	if s.ln == nil {
		return ""
	}
	addr := s.ln.Addr().(*net.TCPAddr)
	host := "localhost"
	if ip := addr.IP; ip != nil && !ip.IsUnspecified() {
		host = ip.String()
	}
	return "http://" + net.JoinHostPort(host, strconv.Itoa(addr.Port))
}

// Close gracefully shuts the server down.
func (s *Server) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	return s.server.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

func (s *Server) handleUpload(backend mdextract.Backend) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, s.MaxUploadSize)
		if err := r.ParseMultipartForm(s.MaxUploadSize); err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				s.writeError(w, r, mdextract.Errorf(mdextract.EINVALID, "File exceeds %d bytes", s.MaxUploadSize))
				return
			}
			s.writeError(w, r, mdextract.Errorf(mdextract.EINVALID, "Invalid multipart form: %v", err))
			return
		}
		defer r.MultipartForm.RemoveAll()

		file, header, err := r.FormFile("file")
		if err != nil {
			s.writeError(w, r, mdextract.Errorf(mdextract.EINVALID, "file required"))
			return
		}
		defer file.Close()

		data, err := io.ReadAll(file)
		if err != nil {
			s.writeError(w, r, mdextract.Errorf(mdextract.EINVALID, "Unable to read upload: %v", err))
			return
		}

		req := mdextract.NewPDFRequest(header.Filename, data, backend)
		s.process(w, r, req)
	}
}

func (s *Server) handleScrape(backend mdextract.Backend) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			s.writeError(w, r, mdextract.Errorf(mdextract.EINVALID, "Invalid form: %v", err))
			return
		}
		req := mdextract.NewWebRequest(r.PostFormValue("url"), backend)
		s.process(w, r, req)
	}
}

func (s *Server) process(w http.ResponseWriter, r *http.Request, req *mdextract.Request) {
	bucket := strings.TrimSpace(r.FormValue("bucket_name"))

	delivery, err := s.Processor.Process(r.Context(), req, bucket)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, Response{
		Status:      "success",
		DownloadURL: delivery.DownloadURL,
		Message:     delivery.Message,
	})
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := mdextract.ErrorCode(err)
	if code == mdextract.EINTERNAL {
		s.Logger.Error("request failed", "path", r.URL.Path, "request_id", requestIDFrom(r.Context()), "err", err)
	}
	writeJSON(w, StatusCode(code), Response{
		Status:  "error",
		Message: mdextract.ErrorMessage(err),
	})
}

// StatusCode maps an application error code to an HTTP status.
func StatusCode(code string) int {
	switch code {
	case "":
		return http.StatusOK
	case mdextract.EINVALID:
		return http.StatusBadRequest
	case mdextract.EUNREACHABLE, mdextract.EBACKEND:
		return http.StatusBadGateway
	case mdextract.ECONFIG:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type requestIDKey struct{}

// requestID tags each request with the caller's X-Request-ID or a fresh UUID.
func (s *Server) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey{}, id)))
	})
}

func requestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.Logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"request_id", requestIDFrom(r.Context()),
			"duration", time.Since(start),
		)
	})
}
