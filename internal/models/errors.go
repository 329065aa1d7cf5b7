package models

import "errors"

var (
	ErrInvalidDateFormat = errors.New("invalid date format, expected YYYY-MM-DD")
	ErrInvalidArgument   = errors.New("invalid argument")
	ErrStoreUnavailable  = errors.New("store unavailable")
	ErrStoreQuery        = errors.New("store query failed")
	ErrTemplateNotFound  = errors.New("template not found")
	ErrTemplateRender    = errors.New("template render failed")
)

const (
	KindInvalidDateFormat = "InvalidDateFormat"
	KindInvalidArgument   = "InvalidArgument"
	KindStoreUnavailable  = "StoreUnavailable"
	KindStoreQuery        = "StoreQueryError"
	KindTemplateNotFound  = "TemplateNotFound"
	KindTemplateRender    = "TemplateRenderError"
	KindInternal          = "Internal"
)

var errorKinds = []struct {
	err  error
	kind string
}{
	{ErrInvalidDateFormat, KindInvalidDateFormat},
	{ErrInvalidArgument, KindInvalidArgument},
	{ErrStoreUnavailable, KindStoreUnavailable},
	{ErrStoreQuery, KindStoreQuery},
	{ErrTemplateNotFound, KindTemplateNotFound},
	{ErrTemplateRender, KindTemplateRender},
}

// ErrorKind names the taxonomy entry err belongs to, or KindInternal.
func ErrorKind(err error) string {
	for _, k := range errorKinds {
		if errors.Is(err, k.err) {
			return k.kind
		}
	}
	return KindInternal
}
