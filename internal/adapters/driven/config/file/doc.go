// Package file provides file-based configuration: TOML settings and
// user-editable prompt templates with embedded defaults.
package file
