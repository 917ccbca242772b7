// Package settings bundles the configuration values a process wiring the
// name-auction engine together reads at start-up, following the teacher's
// tSettings.ChainCfgParams convention. The engine's package constructors
// take the individual fields, not a *Settings.
package settings

import (
	"github.com/handshake-labs/nsd/chaincfg"
	"github.com/handshake-labs/nsd/reserved"
	"github.com/ordishs/gocore"
)

// Settings is the read-only configuration handle a process builds once;
// its fields are what it hands to the namedb and mempool constructors.
type Settings struct {
	ChainCfgParams *chaincfg.Params
	Reserved       *reserved.Table

	// LogLevel controls the verbosity of every ulogger.Logger this process
	// constructs ("debug", "info", "warn", "error").
	LogLevel string
}

// NewFromGocore builds Settings by reading the process-wide gocore.Config
// singleton, the teacher's environment/ini-backed configuration source
// (util/logger.go reads "logger"/"PRETTY_LOGS" off the same object).
func NewFromGocore(params *chaincfg.Params, table *reserved.Table) *Settings {
	logLevel, _ := gocore.Config().Get("logLevel", "info")

	return &Settings{
		ChainCfgParams: params,
		Reserved:       table,
		LogLevel:       logLevel,
	}
}
