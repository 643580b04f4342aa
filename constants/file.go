package constants

import "strings"

// SourceKind identifies where a piece of text came from. It doubles as the
// provenance tag of merged fields.
type SourceKind string

const (
	SourceBiography   SourceKind = "biografia"
	SourceCV          SourceKind = "hoja_vida"
	SourcePlan        SourceKind = "plan_gobierno"
	SourcePlanSummary SourceKind = "resumen_plan"
)

// DocumentKinds are the kinds resolved from the documents root, in lookup order.
var DocumentKinds = []SourceKind{SourceCV, SourcePlan, SourcePlanSummary}

// documentDirs maps a document kind to its directory under the documents root.
var documentDirs = map[SourceKind]string{
	SourceCV:          "hojas-vida",
	SourcePlan:        "planes-gobierno",
	SourcePlanSummary: "resumenes-planes",
}

// DocumentDir returns the directory name for kind, or "" for kinds that are
// not file backed (the biography lives in the biography store).
func DocumentDir(kind SourceKind) string {
	return documentDirs[kind]
}

// ParseSourceKind accepts the canonical tag or the directory name.
func ParseSourceKind(s string) (SourceKind, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, k := range []SourceKind{SourceBiography, SourceCV, SourcePlan, SourcePlanSummary} {
		if s == string(k) || (documentDirs[k] != "" && s == documentDirs[k]) {
			return k, true
		}
	}
	switch s {
	case "bio", "biography":
		return SourceBiography, true
	case "cv", "resume":
		return SourceCV, true
	case "plan":
		return SourcePlan, true
	case "summary":
		return SourcePlanSummary, true
	}
	return "", false
}

// AllowedExtensions holds the document file extensions looked up per kind, in
// preference order. A ".txt" sidecar is plain text that skips extraction.
var AllowedExtensions = []string{"pdf", "txt"}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

const (
	PDF  = "PDF"
	TEXT = "TXT"
)

// MapExtToFormat maps a normalized extension to its extraction format.
func MapExtToFormat(ext string) string {
	switch NormalizeExt(ext) {
	case "pdf":
		return PDF
	case "txt":
		return TEXT
	default:
		return ""
	}
}
