package app

import (
	"github.com/stacklok/gem-sources/internal/livestate"
	"github.com/stacklok/gem-sources/internal/probe"
	"github.com/stacklok/gem-sources/internal/storage"
	pkgsync "github.com/stacklok/gem-sources/internal/sync"
)

// Components groups the collaborators driven by a Manager
type Components struct {
	// Store persists the registry
	Store storage.Store

	// Live is the package manager's source list
	Live livestate.LiveState

	// Prober classifies sources by reachability
	Prober probe.Prober

	// Syncer reconciles the registry with Live
	Syncer pkgsync.Manager
}
