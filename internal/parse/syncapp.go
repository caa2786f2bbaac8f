package parse

import (
	"fmt"
	"path"
	"regexp"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/mzorec/logsift/internal/domain"
	"github.com/mzorec/logsift/internal/timestamp"
)

// syncExcluded lists the JSON keys lifted into fixed record fields; anything
// else falls through to metadata. The source ecosystem is inconsistent about
// casing, so both spellings appear.
var syncExcluded = map[string]bool{
	"timestamp": true, "Timestamp": true, "time": true, "Time": true, "ts": true,
	"level": true, "Level": true,
	"message": true, "Message": true, "msg": true, "Msg": true,
	"caller": true, "Caller": true,
	"error": true, "Error": true,
	"service": true, "Service": true,
	"user_id": true, "userId": true, "UserId": true,
	"domain_id": true, "domainId": true, "DomainId": true,
	"request_id": true, "requestId": true, "RequestId": true,
}

var callerStemRe = regexp.MustCompile(`^(.+?)\.\w+$`)

// SyncApp parses the JSON Lines format, tolerating both PascalCase and
// lowercase field spellings.
type SyncApp struct{}

// NewSyncApp creates a sync-app format parser.
func NewSyncApp() *SyncApp {
	return &SyncApp{}
}

func (p *SyncApp) Format() domain.Format {
	return domain.FormatSyncApp
}

func (p *SyncApp) ParseLine(line string, ctx *Context) (*domain.Record, error) {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, "{") || !gjson.Valid(trimmed) {
		return nil, fmt.Errorf("line is not a JSON object")
	}
	doc := gjson.Parse(trimmed)

	r := &domain.Record{
		Timestamp: timestamp.Normalize(pick(doc, "timestamp", "Timestamp", "time", "Time", "ts")),
		Level:     domain.ParseLevel(pick(doc, "level", "Level")),
		Service:   ctx.Service,
		Message:   pick(doc, "message", "Message", "msg", "Msg"),
		RawLine:   line,
	}

	if svc := pick(doc, "service", "Service"); svc != "" {
		r.Service = svc
	}

	if caller := pick(doc, "caller", "Caller"); caller != "" {
		r.SetMeta("caller", caller)
		if module := moduleFromCaller(caller); module != "" {
			r.SetMeta("module", module)
		}
	}

	if errMsg := pick(doc, "error", "Error"); errMsg != "" {
		ensureError(r).Message = errMsg
	}

	if uid := pick(doc, "user_id", "userId", "UserId"); uid != "" {
		ensureContext(r).UserID = uid
	}
	if did := pick(doc, "domain_id", "domainId", "DomainId"); did != "" {
		ensureContext(r).DomainID = did
	}
	if rid := pick(doc, "request_id", "requestId", "RequestId"); rid != "" {
		ensureContext(r).RequestID = rid
	}

	doc.ForEach(func(key, value gjson.Result) bool {
		if !syncExcluded[key.String()] {
			r.SetMeta(key.String(), value.Value())
		}
		return true
	})

	return r, nil
}

func pick(doc gjson.Result, keys ...string) string {
	for _, k := range keys {
		if v := doc.Get(k); v.Exists() {
			return v.String()
		}
	}
	return ""
}

// moduleFromCaller extracts the filename stem from a caller reference like
// "sync/engine.go:142".
func moduleFromCaller(caller string) string {
	base := path.Base(caller)
	if i := strings.Index(base, ":"); i >= 0 {
		base = base[:i]
	}
	if m := callerStemRe.FindStringSubmatch(base); m != nil {
		return m[1]
	}
	return base
}
