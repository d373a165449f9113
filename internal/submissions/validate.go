package submissions

import (
	"fmt"
	"net/url"
	"strings"
)

// Field length bounds for public intake.
const (
	NameMinLen        = 2
	NameMaxLen        = 100
	TaglineMinLen     = 10
	TaglineMaxLen     = 140
	DescriptionMinLen = 40
	DescriptionMaxLen = 2000
	MaxTags           = 10
)

// Categories accepted from public intake.
var Categories = map[string]bool{
	"writing":      true,
	"coding":       true,
	"design":       true,
	"marketing":    true,
	"productivity": true,
	"video":        true,
	"audio":        true,
	"research":     true,
	"chatbots":     true,
	"other":        true,
}

// FieldError is a single validation failure reported to the caller.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Validate checks an intake request and returns per-field errors.
// Validation is strict: malformed values are rejected, never coerced.
func (r *SubmitRequest) Validate() []FieldError {
	var errs []FieldError

	name := strings.TrimSpace(r.Name)
	if l := len(name); l < NameMinLen || l > NameMaxLen {
		errs = append(errs, FieldError{"name", fmt.Sprintf("must be %d-%d characters", NameMinLen, NameMaxLen)})
	}
	tagline := strings.TrimSpace(r.Tagline)
	if l := len(tagline); l < TaglineMinLen || l > TaglineMaxLen {
		errs = append(errs, FieldError{"tagline", fmt.Sprintf("must be %d-%d characters", TaglineMinLen, TaglineMaxLen)})
	}
	description := strings.TrimSpace(r.Description)
	if l := len(description); l < DescriptionMinLen || l > DescriptionMaxLen {
		errs = append(errs, FieldError{"description", fmt.Sprintf("must be %d-%d characters", DescriptionMinLen, DescriptionMaxLen)})
	}
	if !Categories[strings.ToLower(strings.TrimSpace(r.Category))] {
		errs = append(errs, FieldError{"category", "unknown category"})
	}
	if !isHTTPURL(r.WebsiteURL) && !isHTTPURL(r.AffiliateURL) {
		errs = append(errs, FieldError{"website_url", "a valid http(s) website or affiliate URL is required"})
	}
	if r.WebsiteURL != "" && !isHTTPURL(r.WebsiteURL) {
		errs = append(errs, FieldError{"website_url", "must be a valid http(s) URL"})
	}
	if r.AffiliateURL != "" && !isHTTPURL(r.AffiliateURL) {
		errs = append(errs, FieldError{"affiliate_url", "must be a valid http(s) URL"})
	}
	if len(r.Tags) > MaxTags {
		errs = append(errs, FieldError{"tags", fmt.Sprintf("at most %d tags", MaxTags)})
	}
	return errs
}

func isHTTPURL(s string) bool {
	if s == "" {
		return false
	}
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
