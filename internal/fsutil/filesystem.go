// Package fsutil provides the small filesystem helpers shared by volume
// discovery and frame-sequence path resolution.
package fsutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// Exists checks if a file or directory exists.
func Exists(name string) bool {
	_, err := os.Stat(name)
	return err == nil
}

// SplitFrame locates the trailing run of digits in the file name of path,
// immediately before the extension. It returns the path split around that
// run plus the parsed frame number and its digit width. ok is false when the
// name carries no frame number, in which case the other results are
// undefined.
//
//	SplitFrame("/seq/smoke_0032.vdb") -> "/seq/smoke_", 32, 4, ".vdb", true
func SplitFrame(path string) (head string, frame, width int, tail string, ok bool) {
	ext := filepath.Ext(path)
	stem := path[:len(path)-len(ext)]

	end := len(stem)
	start := end
	for start > 0 && stem[start-1] >= '0' && stem[start-1] <= '9' {
		start--
	}
	if start == end {
		return "", 0, 0, "", false
	}

	frame, err := strconv.Atoi(stem[start:end])
	if err != nil {
		// Digit runs longer than an int are not frame numbers.
		return "", 0, 0, "", false
	}
	return stem[:start], frame, end - start, ext, true
}

// WithFrame substitutes frame into the trailing digit run of path, keeping
// the original zero-padded width. Paths without a frame number are returned
// unchanged.
func WithFrame(path string, frame int) string {
	head, _, width, tail, ok := SplitFrame(path)
	if !ok {
		return path
	}
	return head + fmt.Sprintf("%.*d", width, frame) + tail
}
