// Package logging provides a thin, component-tagged wrapper over the
// standard log package, matching the direct log.Printf style the rest of
// this module's ambient stack uses.
package logging

import "log"

// Logger prefixes every line with a fixed "[component]" tag.
type Logger struct {
	tag string
}

// New returns a Logger that prefixes every message with "[component]".
func New(component string) *Logger {
	return &Logger{tag: "[" + component + "] "}
}

func (l *Logger) Printf(format string, args ...interface{}) {
	log.Printf(l.tag+format, args...)
}

func (l *Logger) Println(args ...interface{}) {
	log.Print(append([]interface{}{l.tag}, args...)...)
}
