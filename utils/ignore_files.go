package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// ignoreCacheEntry holds cached ignore patterns with metadata
type ignoreCacheEntry struct {
	patterns []string
	modTime  time.Time
}

// Global cache for ignore-file patterns
var (
	ignoreCache = make(map[string]*ignoreCacheEntry)
	cacheMutex  sync.RWMutex
)

// GetIgnorePatterns reads and returns the patterns from the .gitgeist-ignore
// file in root. If the file does not exist, it returns an empty pattern
// list. Results are cached and invalidated on file modification time.
func GetIgnorePatterns(root string) ([]string, error) {
	ignorePath := filepath.Join(root, ".gitgeist-ignore")

	fileInfo, err := os.Stat(ignorePath)
	if os.IsNotExist(err) {
		return []string{}, nil
	} else if err != nil {
		return nil, fmt.Errorf("error checking .gitgeist-ignore: %w", err)
	}

	cacheMutex.RLock()
	if cached, exists := ignoreCache[ignorePath]; exists {
		if fileInfo.ModTime().Equal(cached.modTime) {
			cacheMutex.RUnlock()
			return cached.patterns, nil
		}
	}
	cacheMutex.RUnlock()

	patterns, err := readIgnoreFile(ignorePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read .gitgeist-ignore: %w", err)
	}

	cacheMutex.Lock()
	ignoreCache[ignorePath] = &ignoreCacheEntry{
		patterns: patterns,
		modTime:  fileInfo.ModTime(),
	}
	cacheMutex.Unlock()

	return patterns, nil
}

// IsDefaultIgnored reports whether any path element matches the built-in
// ignore list: VCS metadata, editor state, build output, binaries and media.
func IsDefaultIgnored(path string) bool {
	ignorePatterns := []string{
		".git",
		".svn",
		".hg",
		".idea",
		".vscode",
		".cache",
		".gitgeist",
		"node_modules",
		"vendor",
		"bin",
		"obj",
		"dist",
		"out",
		"__pycache__",
		"*.exe",
		"*.dll",
		"*.so",
		"*.log",
		"*.tmp",
		"*.bak",
		"*.jpg",
		"*.jpeg",
		"*.png",
		"*.gif",
		"*.mp3",
		"*.mp4",
	}

	parts := strings.Split(path, string(filepath.Separator))
	for _, part := range parts {
		part = strings.ToLower(part)
		for _, pattern := range ignorePatterns {
			if strings.HasPrefix(pattern, "*") {
				if strings.HasSuffix(part, strings.TrimPrefix(pattern, "*")) {
					return true
				}
			} else if part == pattern {
				return true
			}
		}
	}
	return false
}

// readIgnoreFile reads the ignore file and returns the list of patterns.
func readIgnoreFile(ignorePath string) ([]string, error) {
	content, err := os.ReadFile(ignorePath)
	if err != nil {
		return nil, err
	}
	lines := strings.Split(string(content), "\n")
	var patterns []string
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" && !strings.HasPrefix(line, "#") {
			patterns = append(patterns, line)
		}
	}
	return patterns, nil
}

// IsIgnored checks if a path matches any of the user-supplied patterns.
func IsIgnored(path string, patterns []string) bool {
	for _, pattern := range patterns {
		if match, _ := filepath.Match(pattern, path); match {
			return true
		}
		// Patterns like "dir/" ignore entire directories.
		if strings.HasSuffix(pattern, "/") && strings.HasPrefix(path, pattern) {
			return true
		}
	}
	return false
}

// ClearIgnoreCache clears all cached ignore patterns.
func ClearIgnoreCache() {
	cacheMutex.Lock()
	defer cacheMutex.Unlock()
	ignoreCache = make(map[string]*ignoreCacheEntry)
}
