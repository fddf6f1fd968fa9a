// Package logging adapts sirupsen/logrus to the runtime.Logger interface
// every teacher package threads through its methods
// (MapLoader/PhysicsEngine/ScriptEngine/DatabaseManager all take one),
// so the rest of this module keeps that injection idiom without depending
// on an actual Nakama host logger.
package logging

import (
	"fmt"

	"github.com/heroiclabs/nakama-common/runtime"
	"github.com/sirupsen/logrus"
)

// Adapter satisfies runtime.Logger on top of a *logrus.Entry.
type Adapter struct {
	entry *logrus.Entry
}

// New builds an Adapter with fields attached for every call site to
// inherit.
func New(entry *logrus.Entry) *Adapter {
	return &Adapter{entry: entry}
}

// NewDefault builds an Adapter from a freshly configured logrus.Logger.
func NewDefault() *Adapter {
	l := logrus.New()
	l.SetFormatter(&logrus.JSONFormatter{})
	return New(logrus.NewEntry(l))
}

func (a *Adapter) Debug(format string, v ...interface{}) { a.entry.Debug(fmt.Sprintf(format, v...)) }
func (a *Adapter) Info(format string, v ...interface{})  { a.entry.Info(fmt.Sprintf(format, v...)) }
func (a *Adapter) Warn(format string, v ...interface{})  { a.entry.Warn(fmt.Sprintf(format, v...)) }
func (a *Adapter) Error(format string, v ...interface{}) { a.entry.Error(fmt.Sprintf(format, v...)) }

func (a *Adapter) WithField(key string, v interface{}) runtime.Logger {
	return New(a.entry.WithField(key, v))
}

func (a *Adapter) WithFields(fields map[string]interface{}) runtime.Logger {
	return New(a.entry.WithFields(fields))
}

func (a *Adapter) Fields() map[string]interface{} {
	out := make(map[string]interface{}, len(a.entry.Data))
	for k, v := range a.entry.Data {
		out[k] = v
	}
	return out
}
