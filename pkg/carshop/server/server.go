package server

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/nekruzvatanshoev/carshop/pkg/carshop/auth"
	"github.com/nekruzvatanshoev/carshop/pkg/carshop/checkout"
	"github.com/nekruzvatanshoev/carshop/pkg/carshop/dal"
	"github.com/nekruzvatanshoev/carshop/pkg/carshop/logger"
	"github.com/nekruzvatanshoev/carshop/pkg/carshop/metrics"
	"github.com/nekruzvatanshoev/carshop/pkg/carshop/session"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// VehicleService is the catalog as seen by the storefront and admin panel.
type VehicleService interface {
	Vehicles(ctx context.Context) ([]dal.Vehicle, error)
	Vehicle(ctx context.Context, id string) (dal.Vehicle, error)
	CreateVehicle(ctx context.Context, input dal.VehicleInput) (dal.Vehicle, error)
	UpdateVehicle(ctx context.Context, id string, input dal.VehicleInput) (dal.Vehicle, error)
	DeleteVehicle(ctx context.Context, id string) error
	UploadVehicleImage(ctx context.Context, id, filename string, body io.Reader) (dal.Vehicle, error)
}

// OrderHistory lists a customer's past orders.
type OrderHistory interface {
	Orders(ctx context.Context, token, customerID string) ([]dal.Order, error)
}

// Options wires the storefront handlers.
type Options struct {
	Vehicles  VehicleService
	Customers checkout.CustomerReader
	Orders    OrderHistory
	Checkout  *checkout.Service
	Sessions  session.Store
	Admin     *auth.AdminGate
	Logger    *logger.Logger
	// Registry receives the request metrics and backs /metrics. A fresh
	// registry is used when nil.
	Registry   *prometheus.Registry
	CookieName string
	Now        func() time.Time
}

// NewHTTPServer returns a new HTTP server
func NewHTTPServer(addr string, opts Options, readTimeout, writeTimeout time.Duration) *http.Server {
	return &http.Server{
		Addr:         addr,
		Handler:      NewHandler(opts),
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	}
}

// NewHandler builds the storefront router wrapped in the request middleware.
func NewHandler(opts Options) http.Handler {
	server := newHTTPServer(opts)

	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(server.notFound)
	r.MethodNotAllowedHandler = http.HandlerFunc(server.methodNotAllowed)
	r.Use(server.metrics)

	r.HandleFunc("/healthz", server.Healthz).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.HandlerFor(server.registry, promhttp.HandlerOpts{})).Methods(http.MethodGet)

	r.HandleFunc("/vehicles", server.GetVehicles).Methods(http.MethodGet)
	r.HandleFunc("/vehicles/{id}", server.GetVehicle).Methods(http.MethodGet)

	store := r.NewRoute().Subrouter()
	store.Use(server.session)
	store.HandleFunc("/cart", server.GetCart).Methods(http.MethodGet)
	store.HandleFunc("/cart", server.ClearCart).Methods(http.MethodDelete)
	store.HandleFunc("/cart/items", server.AddCartItem).Methods(http.MethodPost)
	store.HandleFunc("/cart/items/{productId}", server.UpdateCartItem).Methods(http.MethodPatch)
	store.HandleFunc("/cart/items/{productId}", server.RemoveCartItem).Methods(http.MethodDelete)
	store.HandleFunc("/checkout/summary", server.GetCheckoutSummary).Methods(http.MethodGet)
	store.HandleFunc("/checkout/financing", server.GetFinancing).Methods(http.MethodGet)
	store.HandleFunc("/checkout/financing", server.PutFinancing).Methods(http.MethodPut)
	store.HandleFunc("/checkout/orders", server.PlaceOrder).Methods(http.MethodPost)

	r.HandleFunc("/orders", server.GetOrders).Methods(http.MethodGet)
	r.HandleFunc("/customer", server.GetCustomer).Methods(http.MethodGet)

	admin := r.PathPrefix("/admin").Subrouter()
	admin.Use(server.requireAdmin)
	admin.HandleFunc("/vehicles", server.CreateVehicle).Methods(http.MethodPost)
	admin.HandleFunc("/vehicles/{id}", server.UpdateVehicle).Methods(http.MethodPut)
	admin.HandleFunc("/vehicles/{id}", server.DeleteVehicle).Methods(http.MethodDelete)
	admin.HandleFunc("/vehicles/{id}/images", server.UploadVehicleImage).Methods(http.MethodPost)

	return server.requestID(server.logging(server.recoverer(r)))
}

type httpServer struct {
	vehicles   VehicleService
	customers  checkout.CustomerReader
	orders     OrderHistory
	checkout   *checkout.Service
	sessions   session.Store
	admin      *auth.AdminGate
	log        *logger.Logger
	registry   *prometheus.Registry
	requests   *metrics.HTTPMetrics
	cookieName string
	now        func() time.Time
}

func newHTTPServer(opts Options) *httpServer {
	logg := opts.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	registry := opts.Registry
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	cookieName := opts.CookieName
	if cookieName == "" {
		cookieName = defaultSessionCookie
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &httpServer{
		vehicles:   opts.Vehicles,
		customers:  opts.Customers,
		orders:     opts.Orders,
		checkout:   opts.Checkout,
		sessions:   opts.Sessions,
		admin:      opts.Admin,
		log:        logg,
		registry:   registry,
		requests:   metrics.NewHTTPMetrics(registry),
		cookieName: cookieName,
		now:        now,
	}
}
