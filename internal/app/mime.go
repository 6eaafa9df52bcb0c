package app

import (
	"log/slog"
	"mime"
)

// Minimal containers ship without /etc/mime.types.
func init() {
	for ext, typ := range map[string]string{
		".css": "text/css; charset=utf-8",
		".js":  "text/javascript; charset=utf-8",
		".csv": "text/csv; charset=utf-8",
	} {
		if mime.TypeByExtension(ext) != "" {
			continue
		}
		if err := mime.AddExtensionType(ext, typ); err != nil {
			slog.Warn("register mime type", slog.String("ext", ext), slog.Any("error", err))
		}
	}
}
