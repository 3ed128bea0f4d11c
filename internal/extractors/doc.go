// Package extractors provides implementations of the Extractor interface
// for the supported source formats. Each extractor converts one family of
// file kinds into plain text; the registry dispatches over kinds and
// enforces the minimum-content rule.
//
// Extractors are registered with the Registry at startup.
package extractors
