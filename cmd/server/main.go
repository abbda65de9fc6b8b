package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/campusbooks/student-ledger/internal/accounts"
	"github.com/campusbooks/student-ledger/internal/events/kafka"
	"github.com/campusbooks/student-ledger/internal/interfaces"
	"github.com/campusbooks/student-ledger/internal/ledger"
	"github.com/campusbooks/student-ledger/internal/models"
	"github.com/campusbooks/student-ledger/internal/storage/memory"
	"github.com/campusbooks/student-ledger/internal/storage/postgres"
	"github.com/campusbooks/student-ledger/internal/storage/sqlite"
)

// ledgerStore is what the server needs from a backend: the core store
// contract plus startup provisioning.
type ledgerStore interface {
	interfaces.LedgerStore
	EnsureSchema(ctx context.Context) error
}

type server struct {
	store interfaces.LedgerStore
	svc   *ledger.Service
	log   *zap.Logger
}

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	ctx := context.Background()

	store, backend, err := buildStore(ctx)
	if err != nil {
		logger.Fatal("store setup failed", zap.Error(err))
	}
	if closer, ok := store.(io.Closer); ok {
		defer closer.Close()
	}

	if err := store.EnsureSchema(ctx); err != nil {
		logger.Fatal("schema setup failed", zap.Error(err))
	}

	// Fail fast on a misconfigured chart of accounts.
	registry, err := accounts.NewRegistry(ctx, store)
	if err != nil {
		logger.Fatal("account registry validation failed", zap.Error(err))
	}

	opts := []ledger.Option{ledger.WithLogger(logger)}
	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		publisher := kafka.NewPublisher(strings.Split(brokers, ","))
		defer publisher.Close()
		opts = append(opts, ledger.WithPublisher(publisher))
	}

	srv := &server{
		store: store,
		svc:   ledger.NewService(store, registry, opts...),
		log:   logger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})
	mux.HandleFunc("/students", srv.handleStudents)
	mux.HandleFunc("/courses", srv.handleCourses)
	mux.HandleFunc("/enrollments", srv.handleEnrollments)
	mux.HandleFunc("/payments", srv.handlePayments)
	mux.HandleFunc("/students/balance", srv.handleBalance)
	mux.HandleFunc("/students/entries", srv.handleEntries)
	mux.HandleFunc("/students/payments", srv.handleStudentPayments)

	addr := os.Getenv("ADDR")
	if addr == "" {
		addr = ":8080"
	}

	logger.Info("starting server", zap.String("addr", addr), zap.String("backend", backend))
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

// buildStore picks the backend from the environment: postgres when
// DATABASE_URL is set, sqlite when SQLITE_PATH is set, in-memory otherwise.
func buildStore(ctx context.Context) (ledgerStore, string, error) {
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		store, err := postgres.Open(ctx, dsn)
		return store, "postgres", err
	}
	if path := os.Getenv("SQLITE_PATH"); path != "" {
		store, err := sqlite.Open(ctx, path)
		return store, "sqlite", err
	}
	return memory.NewStore(), "memory", nil
}

func (s *server) handleStudents(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		var req struct {
			Name string `json:"name"`
			Age  int    `json:"age"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
		if req.Name == "" {
			http.Error(w, "name is required", http.StatusBadRequest)
			return
		}

		var id int64
		err := s.store.Atomically(r.Context(), func(uow interfaces.UnitOfWork) error {
			var err error
			id, err = uow.InsertStudent(r.Context(), models.Student{Name: req.Name, Age: req.Age})
			return err
		})
		if err != nil {
			s.writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]int64{"student_id": id})

	case http.MethodDelete:
		studentID, ok := queryID(w, r, "student_id")
		if !ok {
			return
		}
		if err := s.svc.DeleteStudent(r.Context(), studentID); err != nil {
			s.writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *server) handleCourses(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		Name  string          `json:"name"`
		Price decimal.Decimal `json:"price"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Name == "" || req.Price.IsNegative() {
		http.Error(w, "name and a non-negative price are required", http.StatusBadRequest)
		return
	}

	var id int64
	err := s.store.Atomically(r.Context(), func(uow interfaces.UnitOfWork) error {
		var err error
		id, err = uow.InsertCourse(r.Context(), models.Course{Name: req.Name, Price: req.Price})
		return err
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]int64{"course_id": id})
}

func (s *server) handleEnrollments(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		var req struct {
			StudentID int64 `json:"student_id"`
			CourseID  int64 `json:"course_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}

		selectionID, err := s.svc.RecordEnrollment(r.Context(), req.StudentID, req.CourseID)
		if err != nil {
			s.writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]int64{"selection_id": selectionID})

	case http.MethodDelete:
		selectionID, ok := queryID(w, r, "selection_id")
		if !ok {
			return
		}
		if err := s.svc.DeleteSelection(r.Context(), selectionID); err != nil {
			s.writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *server) handlePayments(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		StudentID   int64           `json:"student_id"`
		Amount      decimal.Decimal `json:"amount"`
		SelectionID int64           `json:"selection_id"`
		Reference   string          `json:"reference"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	result, err := s.svc.RecordPayment(r.Context(), req.StudentID, req.Amount, req.SelectionID, req.Reference)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"payment_id": result.PaymentID,
		"overpaid":   result.Overpaid,
	})
}

func (s *server) handleBalance(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	studentID, ok := queryID(w, r, "student_id")
	if !ok {
		return
	}

	balance, err := s.svc.StudentBalance(r.Context(), studentID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"student_id": studentID,
		"balance":    balance,
	})
}

func (s *server) handleEntries(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	studentID, ok := queryID(w, r, "student_id")
	if !ok {
		return
	}
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, _ = strconv.Atoi(raw)
	}

	entries, err := s.svc.RecentEntries(r.Context(), studentID, limit)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *server) handleStudentPayments(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	studentID, ok := queryID(w, r, "student_id")
	if !ok {
		return
	}

	payments, err := s.store.PaymentsByStudent(r.Context(), studentID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, payments)
}

func (s *server) writeError(w http.ResponseWriter, err error) {
	var validation *ledger.ValidationError
	switch {
	case errors.As(err, &validation):
		http.Error(w, validation.Msg, http.StatusBadRequest)
	case errors.Is(err, interfaces.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	default:
		s.log.Error("request failed", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func queryID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		http.Error(w, name+" is a mandatory field", http.StatusBadRequest)
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		http.Error(w, name+" must be a positive integer", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
