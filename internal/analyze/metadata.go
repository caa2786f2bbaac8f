package analyze

import (
	"regexp"
	"strings"

	"github.com/mzorec/logsift/internal/domain"
)

// Metadata extraction is a best-effort heuristic over loosely-specified key
// phrases, not a schema-validated parse. First match wins per field; absent
// fields stay empty and callers treat them as optional hints.
var (
	appVersionRe  = regexp.MustCompile(`(?i)app(?:lication)?[ _-]?version\s*[:=]?\s*v?([0-9][\w.\-]*)`)
	deviceModelRe = regexp.MustCompile(`(?i)device[ _-]?model\s*[:=]?\s*([\w][\w .\-]*)`)
	osNameRe      = regexp.MustCompile(`(?i)\b(Windows(?: Server)?(?: [\w.]+)?|macOS(?: [\w.]+)?|Mac OS X(?: [\w.]+)?|Linux(?: [\w.]+)?|Android(?: [\w.]+)?|iOS(?: [\w.]+)?)\b`)
	buildNumberRe = regexp.MustCompile(`(?i)build[ _-]?(?:number|no)?\s*[:=]\s*([\w.\-]+)`)
)

func extractMetadata(lines []string) domain.FileMetadata {
	var meta domain.FileMetadata

	limit := len(lines)
	if limit > metadataScanLines {
		limit = metadataScanLines
	}

	for _, line := range lines[:limit] {
		if meta.AppVersion == "" {
			if m := appVersionRe.FindStringSubmatch(line); m != nil {
				meta.AppVersion = strings.TrimSpace(m[1])
			}
		}
		if meta.DeviceModel == "" {
			if m := deviceModelRe.FindStringSubmatch(line); m != nil {
				meta.DeviceModel = strings.TrimSpace(m[1])
			}
		}
		if meta.OSName == "" {
			if m := osNameRe.FindStringSubmatch(line); m != nil {
				meta.OSName = strings.TrimSpace(m[1])
			}
		}
		if meta.BuildNumber == "" {
			if m := buildNumberRe.FindStringSubmatch(line); m != nil {
				meta.BuildNumber = strings.TrimSpace(m[1])
			}
		}
		if meta.AppVersion != "" && meta.DeviceModel != "" && meta.OSName != "" && meta.BuildNumber != "" {
			break
		}
	}
	return meta
}
