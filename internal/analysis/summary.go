package analysis

import (
	"sort"
	"time"
)

// Summary is the JSON result of a project.analyze task
type Summary struct {
	Root              string         `json:"root"`
	Files             int            `json:"files"`
	TotalBytes        int64          `json:"totalBytes"`
	Languages         []LanguageStat `json:"languages"`
	GoPackages        []string       `json:"goPackages,omitempty"`
	Skipped           int            `json:"skipped,omitempty"`
	EstimatedMemoryMB float64        `json:"estimatedMemoryMB"`
	BuiltAt           time.Time      `json:"builtAt"`
}

// LanguageStat is the file count for one language
type LanguageStat struct {
	Language string `json:"language"`
	Files    int    `json:"files"`
}

// Summarize converts a Project into its Summary. Languages are ordered by
// file count, then by name.
func Summarize(p *Project, estimatedMemoryMB float64) Summary {
	langs := make([]LanguageStat, 0, len(p.Languages))
	for lang, n := range p.Languages {
		langs = append(langs, LanguageStat{Language: lang, Files: n})
	}
	sort.Slice(langs, func(i, j int) bool {
		if langs[i].Files != langs[j].Files {
			return langs[i].Files > langs[j].Files
		}
		return langs[i].Language < langs[j].Language
	})

	return Summary{
		Root:              p.Root,
		Files:             p.Files,
		TotalBytes:        p.TotalBytes,
		Languages:         langs,
		GoPackages:        p.GoPackages,
		Skipped:           p.Skipped,
		EstimatedMemoryMB: estimatedMemoryMB,
		BuiltAt:           p.BuiltAt,
	}
}
