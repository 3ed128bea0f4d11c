package domain

import (
	"path/filepath"
	"sort"
	"strings"
)

// FileKind identifies the kind of a source file. Dispatch over kinds is
// exhaustive: a kind without a registered extractor is a hard error,
// never a silent no-op.
type FileKind string

const (
	// FileKindText is a plain text file.
	FileKindText FileKind = "text"

	// FileKindImage is a raster image processed by optical recognition.
	FileKindImage FileKind = "image"

	// FileKindPDF is a PDF document, with or without an embedded text layer.
	FileKindPDF FileKind = "pdf"

	// FileKindOffice is a word-processing document (.docx, legacy .doc).
	FileKindOffice FileKind = "office"

	// FileKindUnknown marks files no extractor supports.
	FileKindUnknown FileKind = "unknown"
)

// kindByExtension maps lower-case file extensions to kinds.
var kindByExtension = map[string]FileKind{
	".txt":  FileKindText,
	".png":  FileKindImage,
	".jpg":  FileKindImage,
	".jpeg": FileKindImage,
	".tiff": FileKindImage,
	".tif":  FileKindImage,
	".bmp":  FileKindImage,
	".gif":  FileKindImage,
	".pdf":  FileKindPDF,
	".docx": FileKindOffice,
	".doc":  FileKindOffice,
}

// DetectKind classifies a path by its extension.
// Returns FileKindUnknown for unsupported extensions.
func DetectKind(path string) FileKind {
	ext := strings.ToLower(filepath.Ext(path))
	if kind, ok := kindByExtension[ext]; ok {
		return kind
	}
	return FileKindUnknown
}

// SupportedExtensions returns the recognised extensions in sorted order.
func SupportedExtensions() []string {
	exts := make([]string, 0, len(kindByExtension))
	for ext := range kindByExtension {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}
