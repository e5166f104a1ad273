// Package logging provides the structured logger used by the driver layer
// (the embedder's reactor loop and cmd/pwclient). Core packages (pod,
// wire, shm, node) never import this package — they return errors and
// leave logging entirely to the caller, matching m-lab/tcp-info's
// netlink/parse/inetdiag packages. Only shm.ActivationRecord.Trigger is an
// exception, and it takes a minimal Logger interface rather than this
// package directly, so the core stays decoupled from logrus.
package logging

import (
	"os"

	"github.com/sirupsen/logrus"
)

// New builds a logger for the named subsystem ("reactor", "transport",
// "activation", ...), one logger per subsystem the way
// dsmmcken/dh-cli's VM lifecycle code does.
func New(subsystem string) *logrus.Entry {
	base := logrus.New()
	base.SetOutput(os.Stderr)
	base.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
	if lvl, err := logrus.ParseLevel(os.Getenv("PWCLIENT_LOG_LEVEL")); err == nil {
		base.SetLevel(lvl)
	} else {
		base.SetLevel(logrus.InfoLevel)
	}
	return base.WithField("subsystem", subsystem)
}

// SetLevel reconfigures the level of an already-built logger from a logrus
// level name, such as a TOML-specified Config.LogLevel, after New has
// already picked a default from the environment. Nothing in this module
// calls it.
func SetLevel(e *logrus.Entry, level string) error {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return err
	}
	e.Logger.SetLevel(lvl)
	return nil
}
