// Package metrics records launch outcomes in a Prometheus registry and
// persists them as a textfile in the profile at shutdown.
package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/Guliveer/vitalis/desktop/internal/prefs"
	"github.com/Guliveer/vitalis/desktop/internal/resultcodes"
)

// Service is the launch metrics service. A nil *Service records nothing,
// which is what --disable-metrics yields.
type Service struct {
	local    *prefs.Store
	textfile string
	logger   *zap.Logger

	registry  *prometheus.Registry
	decisions *prometheus.CounterVec
	exits     *prometheus.CounterVec
	handoffs  prometheus.Counter
	startup   prometheus.Gauge
	info      *prometheus.GaugeVec

	mu        sync.Mutex
	recording bool
}

// New builds the service. textfile is where Stop writes the registry.
func New(local *prefs.Store, textfile string, logger *zap.Logger) *Service {
	s := &Service{
		local:    local,
		textfile: textfile,
		logger:   logger.Named("metrics"),
		registry: prometheus.NewRegistry(),
		decisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "vitalis_launch_decisions_total",
			Help: "Startup decisions taken, by kind.",
		}, []string{"decision"}),
		exits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "vitalis_exit_codes_total",
			Help: "Process exit codes, by name.",
		}, []string{"code"}),
		handoffs: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "vitalis_handoffs_received_total",
			Help: "Launch requests received from other launches.",
		}),
		startup: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "vitalis_startup_seconds",
			Help: "Time from process start to the main loop.",
		}),
		info: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "vitalis_client_info",
			Help: "Constant 1, labelled with the installation's client id.",
		}, []string{"client_id"}),
	}
	s.registry.MustRegister(s.decisions, s.exits, s.handoffs, s.startup, s.info)
	return s
}

// Start begins recording, persisting the recording flag, and makes sure the
// installation has a client id.
func (s *Service) Start() {
	if s == nil {
		return
	}
	s.mu.Lock()
	s.recording = true
	s.mu.Unlock()

	id := s.local.GetString(prefs.MetricsClientID)
	if id == "" {
		id = uuid.NewString()
		s.local.SetString(prefs.MetricsClientID, id)
	}
	s.local.SetBool(prefs.MetricsIsRecording, true)
	s.info.WithLabelValues(id).Set(1)
	s.logger.Debug("Metrics recording started",
		zap.String("client_id", id),
		zap.Bool("reporting", s.Reporting()))
}

// Recording reports whether the service is recording.
func (s *Service) Recording() bool {
	if s == nil {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.recording
}

// Reporting reports whether recorded metrics are written out at Stop.
func (s *Service) Reporting() bool {
	return s != nil && s.local.GetBool(prefs.MetricsReportingEnabled)
}

// RecordDecision counts a startup decision.
func (s *Service) RecordDecision(kind string) {
	if !s.Recording() {
		return
	}
	s.decisions.WithLabelValues(kind).Inc()
}

// RecordExit counts the exit code of the process.
func (s *Service) RecordExit(code resultcodes.Code) {
	if !s.Recording() {
		return
	}
	s.exits.WithLabelValues(code.String()).Inc()
}

// RecordHandOff counts a launch request received from another launch.
func (s *Service) RecordHandOff() {
	if !s.Recording() {
		return
	}
	s.handoffs.Inc()
}

// ObserveStartup records how long startup took.
func (s *Service) ObserveStartup(d time.Duration) {
	if !s.Recording() {
		return
	}
	s.startup.Set(d.Seconds())
}

// Registry exposes the underlying registry.
func (s *Service) Registry() *prometheus.Registry { return s.registry }

// Stop ends recording, persisting the flag, and when reporting is enabled
// writes the registry to the textfile.
func (s *Service) Stop() error {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	wasRecording := s.recording
	s.recording = false
	s.mu.Unlock()
	s.local.SetBool(prefs.MetricsIsRecording, false)

	if !wasRecording || !s.Reporting() || s.textfile == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(s.textfile), 0750); err != nil {
		return fmt.Errorf("creating metrics directory: %w", err)
	}
	if err := prometheus.WriteToTextfile(s.textfile, s.registry); err != nil {
		return fmt.Errorf("writing metrics textfile: %w", err)
	}
	s.logger.Debug("Metrics written", zap.String("path", s.textfile))
	return nil
}
