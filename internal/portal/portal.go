// Package portal is the minimal in-band configuration surface exposed
// while the device is provisioning. It serves a settings form on the
// fallback network and hands saved credentials to the connectivity
// manager through a single-slot pending event.
package portal

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"codeberg.org/mikkl/hwmond/internal/connectivity"
	"codeberg.org/mikkl/hwmond/internal/logger"
)

const (
	readHeaderTimeout = 10 * time.Second
	writeTimeout      = 10 * time.Second
	shutdownTimeout   = 3 * time.Second
)

// Service implements connectivity.Portal. The HTTP server runs on its own
// goroutines; the tick thread only touches the mutex-guarded slot, so
// portal processing never stalls rendering.
type Service struct {
	addr     string
	deviceID string

	mu     sync.Mutex
	active bool
	saved  *connectivity.Credentials

	srv *http.Server
}

func NewService(addr string) *Service {
	return &Service{
		addr:     normalizeAddr(addr),
		deviceID: uuid.NewString(),
	}
}

// Start begins serving the portal. Safe to call again after Stop; the
// provisioning flow is re-enterable indefinitely.
func (s *Service) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active {
		return nil
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	s.register(engine)

	s.srv = &http.Server{
		Addr:              s.addr,
		Handler:           engine,
		ReadHeaderTimeout: readHeaderTimeout,
		WriteTimeout:      writeTimeout,
	}
	s.active = true

	go func(srv *http.Server) {
		logger.Info().Str("addr", srv.Addr).Msg("provisioning portal listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("portal server stopped")
			s.mu.Lock()
			s.active = false
			s.mu.Unlock()
		}
	}(s.srv)

	return nil
}

// Stop shuts the portal down, allowing in-flight requests to finish.
func (s *Service) Stop() error {
	s.mu.Lock()
	srv := s.srv
	s.srv = nil
	s.active = false
	s.mu.Unlock()

	if srv == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	return srv.Shutdown(ctx)
}

// Active reports whether the portal is currently serving.
func (s *Service) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.active
}

// ConsumeSaved drains the pending saved-credentials slot. At most one
// save is pending; a newer submission replaces an unconsumed older one.
func (s *Service) ConsumeSaved() (connectivity.Credentials, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.saved == nil {
		return connectivity.Credentials{}, false
	}
	creds := *s.saved
	s.saved = nil

	return creds, true
}

func (s *Service) register(engine *gin.Engine) {
	engine.GET("/", s.handleForm)
	engine.POST("/save", s.handleSave)
	engine.GET("/status", s.handleStatus)
}

func (s *Service) handleForm(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(settingsPage))
}

type saveRequest struct {
	SSID       string `json:"ssid" form:"ssid" binding:"required"`
	Passphrase string `json:"passphrase" form:"passphrase"`
}

func (s *Service) handleSave(c *gin.Context) {
	var req saveRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ssid is required"})

		return
	}

	creds := connectivity.Credentials{
		ID:         uuid.NewString(),
		SSID:       strings.TrimSpace(req.SSID),
		Passphrase: req.Passphrase,
		SavedAt:    time.Now(),
	}
	if creds.SSID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ssid is required"})

		return
	}

	s.mu.Lock()
	s.saved = &creds
	s.mu.Unlock()

	logger.Info().Str("ssid", creds.SSID).Msg("credentials received via portal")
	c.JSON(http.StatusOK, gin.H{"status": "saved", "ssid": creds.SSID})
}

func (s *Service) handleStatus(c *gin.Context) {
	s.mu.Lock()
	pending := s.saved != nil
	s.mu.Unlock()

	c.JSON(http.StatusOK, gin.H{
		"device_id": s.deviceID,
		"pending":   pending,
	})
}

func normalizeAddr(addr string) string {
	if addr == "" {
		return ":8080"
	}
	if strings.HasPrefix(addr, ":") || strings.Contains(addr, ":") {
		return addr
	}

	return ":" + addr
}

const settingsPage = `<!doctype html>
<html>
<head><meta name="viewport" content="width=device-width, initial-scale=1"><title>hwmond setup</title></head>
<body>
<h1>hwmond network setup</h1>
<form method="post" action="/save">
  <label>Network name <input name="ssid" required></label><br>
  <label>Passphrase <input name="passphrase" type="password"></label><br>
  <button type="submit">Save</button>
</form>
</body>
</html>
`
