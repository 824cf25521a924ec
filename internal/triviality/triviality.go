// Package triviality implements the triviality classifier (C8): it
// decides whether a matched segment of text is significant or just
// boilerplate noise, by iteratively stripping language-specific tokens
// until nothing changes and checking whether any text survives.
package triviality

import (
	"path/filepath"
	"regexp"
	"strings"
)

type language int

const (
	unknown language = iota
	langC
	langShell
)

var cPatterns = []*regexp.Regexp{
	regexp.MustCompile(`/\*[\s\S]*?\*/`),
	regexp.MustCompile(`//[^\n]*`),
	regexp.MustCompile(`^\s*#\s*(include|define|ifdef|ifndef|endif|pragma)[^\n]*`),
	regexp.MustCompile(`\b(int|char|void|long|short|unsigned|signed|struct|union|enum|static|const|extern|volatile|typedef|sizeof|return|goto|break|continue|if|else|for|while|do|switch|case|default)\b`),
	regexp.MustCompile(`\b(NULL|TRUE|FALSE|EXIT_SUCCESS|EXIT_FAILURE)\b`),
	regexp.MustCompile(`[{}()\[\];,.*&|+\-/%=<>!~^]`),
	regexp.MustCompile(`\s+`),
}

var shellPatterns = []*regexp.Regexp{
	regexp.MustCompile(`#[^\n]*`),
	regexp.MustCompile(`\b(if|then|else|elif|fi|for|while|do|done|case|esac|function|return|exit|local|export|echo|shift|break|continue)\b`),
	regexp.MustCompile(`\$\{?\w+\}?`),
	regexp.MustCompile("[{}()\\[\\];|&><=!~`]"),
	regexp.MustCompile(`\s+`),
}

func detectFromExtension(fileID string) language {
	switch strings.ToLower(filepath.Ext(fileID)) {
	case ".c", ".h":
		return langC
	case ".sh", ".bash":
		return langShell
	}
	return unknown
}

func detect(fileID, text string) language {
	if l := detectFromExtension(fileID); l != unknown {
		return l
	}
	firstLine := text
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		firstLine = text[:i]
	}
	if strings.Contains(firstLine, "sh") {
		return langShell
	}
	return unknown
}

func patternsFor(l language) []*regexp.Regexp {
	switch l {
	case langC:
		return cPatterns
	case langShell:
		return shellPatterns
	default:
		return nil
	}
}

// IsSignificant reports whether text (the extracted content of one
// clique's witness location) is significant for the language detected
// from fileID's extension or, failing that, from a first line of text
// containing "sh" (a shebang or not). Text in an undetected language is
// always treated as significant.
func IsSignificant(text, fileID string) bool {
	l := detect(fileID, text)
	if l == unknown {
		return true
	}
	return strings.TrimSpace(strip(text, patternsFor(l))) != ""
}

func strip(text string, patterns []*regexp.Regexp) string {
	for {
		before := text
		for _, p := range patterns {
			text = p.ReplaceAllString(text, "")
		}
		if text == before {
			return text
		}
	}
}
