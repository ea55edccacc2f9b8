package analysis

import (
	"bytes"
	"path/filepath"
	"strings"
)

// Language tags known to the registry. Only a subset has an extractor
// variant; the rest still get a tag so callers can report file categories.
const (
	LangGo         = "go"
	LangPython     = "python"
	LangJavaScript = "javascript"
	LangTypeScript = "typescript"
	LangJava       = "java"
	LangCSharp     = "csharp"
	LangRuby       = "ruby"
	LangRust       = "rust"
	LangBash       = "bash"
)

// extensionLanguages maps file extensions to language tags. Extension match
// always takes priority over shebang detection.
var extensionLanguages = map[string]string{
	".go":   LangGo,
	".py":   LangPython,
	".js":   LangJavaScript,
	".jsx":  LangJavaScript,
	".mjs":  LangJavaScript,
	".cjs":  LangJavaScript,
	".ts":   LangTypeScript,
	".tsx":  LangTypeScript,
	".java": LangJava,
	".cs":   LangCSharp,
	".rb":   LangRuby,
	".rs":   LangRust,
	".sh":   LangBash,
	".bash": LangBash,
}

// shebangLanguages maps interpreter-invocation prefixes to language tags,
// checked against the first line when the extension is unknown.
var shebangLanguages = []struct {
	prefix   string
	language string
}{
	{"#!/usr/bin/env python", LangPython},
	{"#!/usr/bin/python", LangPython},
	{"#!/usr/bin/env node", LangJavaScript},
	{"#!/usr/bin/node", LangJavaScript},
	{"#!/usr/bin/env ruby", LangRuby},
	{"#!/usr/bin/env bash", LangBash},
	{"#!/bin/bash", LangBash},
	{"#!/bin/sh", LangBash},
}

// DetectLanguage resolves a file path (and optionally the file's first line)
// to a language tag. An empty tag is a normal result for non-code files, not
// an error.
func DetectLanguage(path string, firstLine string) string {
	ext := strings.ToLower(filepath.Ext(path))
	if lang, ok := extensionLanguages[ext]; ok {
		return lang
	}

	if strings.HasPrefix(firstLine, "#!") {
		line := strings.ToLower(strings.TrimSpace(firstLine))
		for _, s := range shebangLanguages {
			if strings.HasPrefix(line, s.prefix) {
				return s.language
			}
		}
	}

	return ""
}

// FirstLine returns the first line of source, used for shebang detection.
func FirstLine(source []byte) string {
	if i := bytes.IndexByte(source, '\n'); i >= 0 {
		return string(source[:i])
	}
	return string(source)
}
