package data

import (
	"path"
	"strings"
)

// ToAbsolutePath ensures the path always starts with a leading slash.
func ToAbsolutePath(p string) string {
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return path.Clean(p)
}

// ToRelativePath removes the prefix from path.
// Returns the relative path after the prefix.
// It additionally removes any leading slashes.
func ToRelativePath(p, prefix string) string {
	if prefix == "" || prefix == "/" {
		return strings.TrimPrefix(p, "/")
	}

	if p == prefix {
		return ""
	}

	relPath := strings.TrimPrefix(p, prefix)
	return strings.TrimPrefix(relPath, "/")
}

// HasPrefix checks if path is prefix itself or lies underneath it.
// Both paths should be cleaned before calling.
func HasPrefix(p, prefix string) bool {
	// Root matches everything
	if prefix == "" || prefix == "/" {
		return true
	}

	// Exact match
	if p == prefix {
		return true
	}

	// Check if path starts with prefix followed by /
	return strings.HasPrefix(p, prefix+"/")
}

// Base returns the last element of a catalog path.
func Base(p string) string {
	return path.Base(p)
}

// Dir returns all but the last element of a catalog path.
func Dir(p string) string {
	return path.Dir(p)
}

// Join joins an anchored path expression with a child name without
// cleaning it, so "./x", "~/x" and "x" keep their anchor form.
func Join(base, name string) string {
	if base == "" {
		return name
	}
	if strings.HasSuffix(base, "/") {
		return base + name
	}
	return base + "/" + name
}

// Depth returns the number of segments of p below root.
func Depth(p, root string) int {
	rel := ToRelativePath(p, root)
	if rel == "" {
		return 0
	}
	return strings.Count(rel, "/") + 1
}
