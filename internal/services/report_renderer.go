package services

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	htmltemplate "html/template"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	texttemplate "text/template"
	"time"

	"github.com/jfbarahonag/mcp-logs/internal/metrics"
	"github.com/jfbarahonag/mcp-logs/internal/models"
	"go.uber.org/zap"
)

const DefaultReportTemplate = "report.md.j2"

// engineSuffixes are stripped before looking at the output format, so
// report.html.j2 escapes like report.html.
var engineSuffixes = []string{".j2", ".jinja", ".tmpl", ".gotmpl"}

type executor interface {
	Execute(w io.Writer, data any) error
}

// Renderer executes named templates from a directory. Templates are read on
// every call; the directory path is fixed at construction.
type Renderer struct {
	dir string
	log *zap.Logger
}

func NewRenderer(dir string, log *zap.Logger) *Renderer {
	return &Renderer{dir: dir, log: log}
}

// Render executes templateName with the variables document_id, generated_at,
// summary and logs. Nothing is returned on failure, so callers never see a
// partially rendered report.
func (r *Renderer) Render(templateName, documentID string, generatedAt time.Time, summary models.ReportSummary, rows []models.LogEntry) (string, error) {
	src, err := r.load(templateName)
	if err != nil {
		metrics.ReportsRendered.WithLabelValues("unknown", models.ErrorKind(err)).Inc()
		return "", err
	}

	tmpl, err := parseTemplate(templateName, string(src))
	if err != nil {
		metrics.ReportsRendered.WithLabelValues(templateName, models.KindTemplateRender).Inc()
		return "", fmt.Errorf("%w: parse %s: %w", models.ErrTemplateRender, templateName, err)
	}

	data := map[string]any{
		"document_id":  documentID,
		"generated_at": generatedAt.UTC().Truncate(time.Second).Format(time.RFC3339),
		"summary":      summary,
		"logs":         rows,
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		metrics.ReportsRendered.WithLabelValues(templateName, models.KindTemplateRender).Inc()
		return "", fmt.Errorf("%w: execute %s: %w", models.ErrTemplateRender, templateName, err)
	}

	metrics.ReportsRendered.WithLabelValues(templateName, "ok").Inc()
	r.log.Debug("report rendered", zap.String("template", templateName), zap.Int("bytes", buf.Len()))
	return buf.String(), nil
}

// load reads name from the template directory. Names that are not plain
// relative paths, or that resolve outside the directory, count as missing.
func (r *Renderer) load(name string) ([]byte, error) {
	if name == "" || !fs.ValidPath(filepath.ToSlash(name)) {
		return nil, fmt.Errorf("%w: %q", models.ErrTemplateNotFound, name)
	}

	root, err := os.OpenRoot(r.dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: open template dir: %w", models.ErrTemplateNotFound, name, err)
	}
	defer root.Close()

	f, err := root.Open(filepath.FromSlash(name))
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %w", models.ErrTemplateNotFound, name, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("%w: stat %s: %w", models.ErrTemplateRender, name, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %q is a directory", models.ErrTemplateNotFound, name)
	}

	src, err := io.ReadAll(f)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %q: %w", models.ErrTemplateNotFound, name, err)
		}
		return nil, fmt.Errorf("%w: read %s: %w", models.ErrTemplateRender, name, err)
	}
	return src, nil
}

func parseTemplate(name, src string) (executor, error) {
	if autoescapes(name) {
		return htmltemplate.New(name).
			Funcs(htmltemplate.FuncMap(templateFuncs)).
			Option("missingkey=error").
			Parse(src)
	}
	return texttemplate.New(name).
		Funcs(texttemplate.FuncMap(templateFuncs)).
		Option("missingkey=error").
		Parse(src)
}

// autoescapes reports whether the output format of name is HTML or XML.
func autoescapes(name string) bool {
	switch outputExt(name) {
	case ".html", ".htm", ".xml":
		return true
	}
	return false
}

// ReportContentType is the media type of what templateName renders.
func ReportContentType(templateName string) string {
	switch outputExt(templateName) {
	case ".html", ".htm":
		return "text/html; charset=utf-8"
	case ".xml":
		return "application/xml; charset=utf-8"
	case ".md", ".markdown":
		return "text/markdown; charset=utf-8"
	default:
		return "text/plain; charset=utf-8"
	}
}

// outputExt is the lowercased extension of name once the engine suffix is
// stripped, so report.html.j2 gives ".html".
func outputExt(name string) string {
	base := strings.ToLower(path.Base(filepath.ToSlash(name)))
	for _, suffix := range engineSuffixes {
		if strings.HasSuffix(base, suffix) {
			base = strings.TrimSuffix(base, suffix)
			break
		}
	}
	return path.Ext(base)
}

var templateFuncs = map[string]any{
	"isotime":    isoTime,
	"deref":      deref,
	"sortedKeys": sortedKeys,
	"json":       toJSON,
}

func isoTime(v any) string {
	switch t := v.(type) {
	case time.Time:
		return t.UTC().Format(time.RFC3339)
	case *time.Time:
		if t == nil {
			return ""
		}
		return t.UTC().Format(time.RFC3339)
	default:
		return ""
	}
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func toJSON(v any) (string, error) {
	if v == nil {
		return "", nil
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	// html/template does its own escaping.
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}
