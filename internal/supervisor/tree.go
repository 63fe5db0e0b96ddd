// Occurlog - Occurrence Logging and Geographic Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/occurlog

package supervisor

import (
	"context"
	"log/slog"
	"time"

	"github.com/thejerf/suture/v4"
	"github.com/thejerf/sutureslog"
)

// Layer selects the child supervisor a service runs under. A crash in one
// layer restarts only that layer's services.
type Layer int

const (
	DataLayer      Layer = iota // session and lockout cleanup
	MessagingLayer              // event bus, websocket hub
	APILayer                    // HTTP server
)

var layerNames = [...]string{"data-layer", "messaging-layer", "api-layer"}

func (l Layer) String() string { return layerNames[l] }

// TreeConfig tunes restart behavior. Zero fields take DefaultTreeConfig.
type TreeConfig struct {
	FailureThreshold float64       // failures before backoff
	FailureDecay     float64       // seconds for the failure count to decay
	FailureBackoff   time.Duration // pause once the threshold is crossed
	ShutdownTimeout  time.Duration // per-service stop deadline
}

// DefaultTreeConfig mirrors suture's own defaults.
func DefaultTreeConfig() TreeConfig {
	return TreeConfig{
		FailureThreshold: 5,
		FailureDecay:     30,
		FailureBackoff:   15 * time.Second,
		ShutdownTimeout:  10 * time.Second,
	}
}

func orDefault[T comparable](v, d T) T {
	var zero T
	if v == zero {
		return d
	}
	return v
}

// Tree is the process supervisor: a root named occurlog with one child
// supervisor per Layer.
type Tree struct {
	root   *suture.Supervisor
	layers [len(layerNames)]*suture.Supervisor
	config TreeConfig
}

// NewTree builds the tree. Restarts and failures of every layer are logged
// through logger via the root's sutureslog hook.
func NewTree(logger *slog.Logger, cfg TreeConfig) *Tree {
	d := DefaultTreeConfig()
	cfg = TreeConfig{
		FailureThreshold: orDefault(cfg.FailureThreshold, d.FailureThreshold),
		FailureDecay:     orDefault(cfg.FailureDecay, d.FailureDecay),
		FailureBackoff:   orDefault(cfg.FailureBackoff, d.FailureBackoff),
		ShutdownTimeout:  orDefault(cfg.ShutdownTimeout, d.ShutdownTimeout),
	}

	spec := suture.Spec{
		FailureThreshold: cfg.FailureThreshold,
		FailureDecay:     cfg.FailureDecay,
		FailureBackoff:   cfg.FailureBackoff,
		Timeout:          cfg.ShutdownTimeout,
	}
	rootSpec := spec
	rootSpec.EventHook = (&sutureslog.Handler{Logger: logger}).MustHook()

	t := &Tree{root: suture.New("occurlog", rootSpec), config: cfg}
	for i, name := range layerNames {
		t.layers[i] = suture.New(name, spec)
		t.root.Add(t.layers[i])
	}
	return t
}

// Add runs svc under layer.
func (t *Tree) Add(layer Layer, svc suture.Service) suture.ServiceToken {
	return t.layers[layer].Add(svc)
}

// ServeBackground starts the tree. The returned channel receives exactly one
// value when the tree stops and is never closed.
func (t *Tree) ServeBackground(ctx context.Context) <-chan error {
	return t.root.ServeBackground(ctx)
}

// UnstoppedServiceReport lists services that missed the shutdown timeout.
func (t *Tree) UnstoppedServiceReport() ([]suture.UnstoppedService, error) {
	return t.root.UnstoppedServiceReport()
}
