// Package protocol decodes the raw print-command stream emitted by the
// Seiko QT-2100 timegrapher. The wire format is reverse-engineered; every
// constant of the format lives in the descriptor in this package.
package protocol
