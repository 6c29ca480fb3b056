package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/TemirB/invoice-processor/internal/application/service"
	"github.com/TemirB/invoice-processor/internal/domain"
	"github.com/TemirB/invoice-processor/internal/observability"
)

//go:generate mockgen -source httpapi.go -destination=httpapi_mock_test.go -package=httpapi

type RecordReader interface {
	GetWithStats(ctx context.Context, partition, row string) (domain.OrderRecord, service.LookupStats, error)
	List(ctx context.Context, partition string) ([]domain.OrderRecord, error)
}

// Server exposes the persisted order records read-only.
type Server struct {
	records RecordReader
	router  chi.Router
	logger  *zap.Logger
	metrics observability.Metrics
}

type recordView struct {
	PartitionKey string          `json:"partitionKey"`
	RowKey       string          `json:"rowKey"`
	Order        json.RawMessage `json:"order"`
}

// toView serves the stored payload, so null fields read back as null.
func toView(rec domain.OrderRecord) recordView {
	order := json.RawMessage(rec.Payload)
	if len(order) == 0 {
		if b, err := json.Marshal(rec.Order); err == nil {
			order = b
		}
	}
	return recordView{PartitionKey: rec.PartitionKey, RowKey: rec.RowKey, Order: order}
}

// New builds the router. metricsHandler may be nil.
func New(records RecordReader, metricsHandler http.Handler, logger *zap.Logger, metrics observability.Metrics) *Server {
	s := &Server{
		records: records,
		router:  chi.NewRouter(),
		logger:  logger,
		metrics: metrics,
	}
	s.routes(metricsHandler)
	return s
}

func (s *Server) routes(metricsHandler http.Handler) {
	s.router.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
		ServerTimingApp(s.metrics),
	)

	s.router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	if metricsHandler != nil {
		s.router.Method(http.MethodGet, "/metrics", metricsHandler)
	}

	s.router.Get("/orders/{email}", s.listOrders)
	s.router.Get("/orders/{email}/{orderNumber}", s.getOrder)
}

func pathParam(r *http.Request, key string) string {
	v := chi.URLParam(r, key)
	if u, err := url.PathUnescape(v); err == nil {
		return u
	}
	return v
}

func (s *Server) getOrder(w http.ResponseWriter, r *http.Request) {
	email, number := pathParam(r, "email"), pathParam(r, "orderNumber")
	if email == "" || number == "" {
		http.Error(w, "email and order number required", http.StatusBadRequest)
		return
	}

	rec, st, err := s.records.GetWithStats(r.Context(), email, number)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			http.Error(w, "no order with this number", http.StatusNotFound)
			return
		}
		s.logger.Error("order lookup failed", zap.Error(err))
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	observability.AppendServerTiming(w, "cache", st.CacheMs, "")
	observability.AppendServerTiming(w, "store", st.StoreMs, "")
	observability.AppendServerTiming(w, "source", 0, string(st.Source))
	w.Header().Set("X-Source", string(st.Source))
	observability.SetIfPos(w, "X-Cache-Time", st.CacheMs)
	observability.SetIfPos(w, "X-Store-Time", st.StoreMs)

	writeJSON(w, toView(rec))
}

func (s *Server) listOrders(w http.ResponseWriter, r *http.Request) {
	email := pathParam(r, "email")
	if email == "" {
		http.Error(w, "email required", http.StatusBadRequest)
		return
	}

	t0 := time.Now()
	recs, err := s.records.List(r.Context(), email)
	if err != nil {
		s.logger.Error("order listing failed", zap.Error(err))
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	observability.AppendServerTiming(w, "store", observability.SinceMs(t0), "")

	views := make([]recordView, 0, len(recs))
	for _, rec := range recs {
		views = append(views, toView(rec))
	}
	writeJSON(w, views)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

// ListenAndServe serves until ctx is done, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Handler() http.Handler { return s.router }
