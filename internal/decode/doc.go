// Package decode turns a tokenized QT-2100 print stream into a
// canonical session: mode classification, channel reconciliation and
// reconstruction of device-flagged bad measurements.
package decode
