package utils

import (
	"fmt"
	"path/filepath"
	"strings"
)

// FormatFileSize formats bytes to a human-readable size (KB, MB, GB)
func FormatFileSize(bytes int64) string {
	const (
		KB int64 = 1024
		MB       = KB * 1024
		GB       = MB * 1024
	)

	switch {
	case bytes >= GB:
		return fmt.Sprintf("%.1f GB", float64(bytes)/float64(GB))
	case bytes >= MB:
		return fmt.Sprintf("%.1f MB", float64(bytes)/float64(MB))
	case bytes >= KB:
		return fmt.Sprintf("%.1f KB", float64(bytes)/float64(KB))
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}

// CalculatePercentage calculates a completion percentage
// Returns 0 if total is 0 or negative
func CalculatePercentage(done, total int) int {
	if total <= 0 {
		return 0
	}
	return done * 100 / total
}

// SanitizeFileName keeps the base name of an uploaded file and drops
// characters that are unsafe in a path
func SanitizeFileName(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))

	var result strings.Builder
	for _, char := range name {
		switch {
		case char >= 'a' && char <= 'z', char >= 'A' && char <= 'Z', char >= '0' && char <= '9':
			result.WriteRune(char)
		case char == '.' || char == '-' || char == '_':
			result.WriteRune(char)
		case char == ' ':
			result.WriteRune('_')
		}
	}

	finalName := strings.Trim(result.String(), ".")
	if finalName == "" {
		finalName = "file"
	}
	return finalName
}

// FileTypeIcon picks a Font Awesome icon and a color class from the extension
func FileTypeIcon(name string) (icon, colorClass string) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".pdf":
		return "fa-file-pdf", "text-red-500"
	case ".doc", ".docx":
		return "fa-file-word", "text-blue-500"
	case ".xls", ".xlsx", ".csv":
		return "fa-file-excel", "text-green-500"
	case ".ppt", ".pptx":
		return "fa-file-powerpoint", "text-orange-500"
	case ".png", ".jpg", ".jpeg", ".gif", ".svg", ".webp":
		return "fa-file-image", "text-purple-500"
	case ".zip", ".rar", ".7z", ".gz":
		return "fa-file-archive", "text-yellow-500"
	default:
		return "fa-file", "text-gray-500"
	}
}
