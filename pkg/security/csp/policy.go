// Package csp builds Content-Security-Policy header values.
package csp

import (
	"strings"
)

// Header names.
const (
	HeaderEnforce    = "Content-Security-Policy"
	HeaderReportOnly = "Content-Security-Policy-Report-Only"
)

// directiveOrder keeps the rendered policy stable and readable.
var directiveOrder = []string{
	"default-src",
	"script-src",
	"style-src",
	"img-src",
	"connect-src",
	"frame-ancestors",
	"form-action",
	"base-uri",
	"object-src",
}

// Builder constructs a policy with a fluent interface.
// A Builder is not safe for concurrent mutation; build once at startup.
//
// Example:
//
//	policy := csp.NewBuilder().
//	    DefaultSrc("'none'").
//	    StyleSrc("'unsafe-inline'").
//	    Build()
//	// "default-src 'none'; style-src 'unsafe-inline'"
type Builder struct {
	directives map[string][]string
	reportOnly bool
}

// NewBuilder returns an empty policy builder.
func NewBuilder() *Builder {
	return &Builder{directives: make(map[string][]string)}
}

// Directive sets the sources of a directive, replacing previous ones.
// Unknown directive names are ignored by Build.
func (b *Builder) Directive(name string, sources ...string) *Builder {
	b.directives[name] = sources
	return b
}

// DefaultSrc sets default-src.
func (b *Builder) DefaultSrc(sources ...string) *Builder {
	return b.Directive("default-src", sources...)
}

// StyleSrc sets style-src.
func (b *Builder) StyleSrc(sources ...string) *Builder { return b.Directive("style-src", sources...) }

// ImgSrc sets img-src.
func (b *Builder) ImgSrc(sources ...string) *Builder { return b.Directive("img-src", sources...) }

// FrameAncestors sets frame-ancestors.
func (b *Builder) FrameAncestors(sources ...string) *Builder {
	return b.Directive("frame-ancestors", sources...)
}

// FormAction sets form-action.
func (b *Builder) FormAction(sources ...string) *Builder {
	return b.Directive("form-action", sources...)
}

// BaseURI sets base-uri.
func (b *Builder) BaseURI(sources ...string) *Builder { return b.Directive("base-uri", sources...) }

// ReportOnly switches the policy to the report-only header.
func (b *Builder) ReportOnly(enabled bool) *Builder {
	b.reportOnly = enabled
	return b
}

// Build renders the policy. An empty builder renders "".
func (b *Builder) Build() string {
	var parts []string
	for _, name := range directiveOrder {
		if sources := b.directives[name]; len(sources) > 0 {
			parts = append(parts, name+" "+strings.Join(sources, " "))
		}
	}
	return strings.Join(parts, "; ")
}

// HeaderName returns the header the policy should be sent under.
func (b *Builder) HeaderName() string {
	if b.reportOnly {
		return HeaderReportOnly
	}
	return HeaderEnforce
}

// ReportPagePolicy is the policy for the HTML validation page: no scripts,
// inline styles only, the form may only submit back to the validator.
func ReportPagePolicy() *Builder {
	return NewBuilder().
		DefaultSrc("'none'").
		StyleSrc("'unsafe-inline'").
		ImgSrc("'self'", "data:").
		FrameAncestors("'none'").
		FormAction("'self'").
		BaseURI("'none'")
}

// APIPolicy is the policy for JSON and plain-text endpoints.
func APIPolicy() *Builder {
	return NewBuilder().
		DefaultSrc("'none'").
		FrameAncestors("'none'")
}
