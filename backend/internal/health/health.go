package health

import (
	"encoding/json"
	"log"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// ServiceName имя сервиса в gRPC health
const ServiceName = "solar.SimulationServer"

// Checker состояние процесса для gRPC и HTTP проверок
type Checker struct {
	grpcServer   *grpc.Server
	healthServer *health.Server
	ready        atomic.Bool
	started      time.Time
	viewers      func() int
	logger       *log.Logger
}

// NewChecker создает проверку. viewers может быть nil.
func NewChecker(viewers func() int, logger *log.Logger) *Checker {
	if logger == nil {
		logger = log.Default()
	}

	c := &Checker{
		grpcServer:   grpc.NewServer(),
		healthServer: health.NewServer(),
		started:      time.Now(),
		viewers:      viewers,
		logger:       logger,
	}
	healthpb.RegisterHealthServer(c.grpcServer, c.healthServer)
	c.SetReady(false)
	return c
}

// SetReady переключает статус SERVING / NOT_SERVING
func (c *Checker) SetReady(ready bool) {
	c.ready.Store(ready)

	status := healthpb.HealthCheckResponse_NOT_SERVING
	if ready {
		status = healthpb.HealthCheckResponse_SERVING
	}
	c.healthServer.SetServingStatus("", status)
	c.healthServer.SetServingStatus(ServiceName, status)
}

// Ready сообщает текущий статус
func (c *Checker) Ready() bool {
	return c.ready.Load()
}

// Serve обслуживает gRPC health на слушателе до вызова Stop
func (c *Checker) Serve(lis net.Listener) error {
	c.logger.Printf("[Health] gRPC health на %s", lis.Addr())
	return c.grpcServer.Serve(lis)
}

// Stop переводит сервис в NOT_SERVING и останавливает gRPC сервер
func (c *Checker) Stop() {
	c.SetReady(false)
	c.healthServer.Shutdown()
	c.grpcServer.GracefulStop()
}

// Healthz HTTP обработчик: 200 при готовности, иначе 503
func (c *Checker) Healthz(w http.ResponseWriter, r *http.Request) {
	body := map[string]interface{}{
		"status":         "ok",
		"uptime_seconds": time.Since(c.started).Seconds(),
	}
	if c.viewers != nil {
		body["viewers"] = c.viewers()
	}

	code := http.StatusOK
	if !c.Ready() {
		code = http.StatusServiceUnavailable
		body["status"] = "unavailable"
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		c.logger.Printf("[Health] Ошибка записи ответа: %v", err)
	}
}
