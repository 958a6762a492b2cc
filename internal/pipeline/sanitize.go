// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/duke-git/lancet/v2/fileutil"
)

// MaxFilenameLength bounds a sanitized filename.
const MaxFilenameLength = 100

var (
	hostileChars = regexp.MustCompile(`[<>:"/\\|?*]`)
	whitespace   = regexp.MustCompile(`\s+`)
	nonWordChars = regexp.MustCompile(`[^\w\-.]`)
)

// SanitizeFilename turns any string into a safe filename component: hostile
// characters and whitespace runs become underscores, anything outside
// [A-Za-z0-9_.-] is dropped, and the result is cut to MaxFilenameLength.
// The output is ASCII, so the byte cut never splits a rune.
func SanitizeFilename(name string) string {
	s := hostileChars.ReplaceAllString(name, "_")
	s = whitespace.ReplaceAllString(s, "_")
	s = nonWordChars.ReplaceAllString(s, "")
	if len(s) > MaxFilenameLength {
		s = s[:MaxFilenameLength]
	}
	return s
}

// safeFilename is SanitizeFilename with a fallback for results that cannot
// name a file inside the output directory.
func safeFilename(name string) string {
	s := SanitizeFilename(name)
	if s == "" || s == "." || s == ".." {
		return "download"
	}
	return s
}

// genericBase is the stem sites fall back to when a download has no real name.
const genericBase = "download"

// targetName picks the on-disk name for a download into dir. A generic
// descriptor name ("download", "download.zip") is replaced by the asset
// title with the descriptor's extension, and a name already taken in dir
// gets a -2, -3, ... suffix.
func targetName(dir, filename, title string) string {
	name := safeFilename(filename)
	ext := filepath.Ext(name)
	if strings.EqualFold(strings.TrimSuffix(name, ext), genericBase) {
		if t := SanitizeFilename(title); t != "" && t != "." && t != ".." {
			t = strings.TrimSuffix(t, ext)
			if len(t)+len(ext) > MaxFilenameLength {
				t = t[:MaxFilenameLength-len(ext)]
			}
			name = t + ext
		}
	}
	return uniqueName(dir, name)
}

// uniqueName returns name, or name with a numeric suffix before its
// extension, such that nothing in dir has that name yet.
func uniqueName(dir, name string) string {
	if !fileutil.IsExist(filepath.Join(dir, name)) {
		return name
	}
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	for i := 2; ; i++ {
		candidate := fmt.Sprintf("%s-%d%s", stem, i, ext)
		if !fileutil.IsExist(filepath.Join(dir, candidate)) {
			return candidate
		}
	}
}
