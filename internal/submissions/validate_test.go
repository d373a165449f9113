package submissions

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func validRequest() SubmitRequest {
	return SubmitRequest{
		Name:        "Jasper AI",
		WebsiteURL:  "https://jasper.example.com",
		Tagline:     "writes marketing copy",
		Description: "Generates long-form marketing copy from short prompts, with templates for ads and blogs.",
		Category:    "writing",
	}
}

func fieldsOf(errs []FieldError) []string {
	out := make([]string, 0, len(errs))
	for _, e := range errs {
		out = append(out, e.Field)
	}
	return out
}

func TestValidateAccepts(t *testing.T) {
	r := validRequest()
	assert.Empty(t, r.Validate())

	// affiliate link alone satisfies the URL requirement
	r = validRequest()
	r.WebsiteURL = ""
	r.AffiliateURL = "https://partner.example.com/ref/123"
	assert.Empty(t, r.Validate())

	// category matching is case-insensitive
	r = validRequest()
	r.Category = "WRITING"
	assert.Empty(t, r.Validate())
}

func TestValidateRejects(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*SubmitRequest)
		field  string
	}{
		{"short name", func(r *SubmitRequest) { r.Name = "x" }, "name"},
		{"long name", func(r *SubmitRequest) { r.Name = strings.Repeat("a", NameMaxLen+1) }, "name"},
		{"short tagline", func(r *SubmitRequest) { r.Tagline = "tiny" }, "tagline"},
		{"short description", func(r *SubmitRequest) { r.Description = "too short" }, "description"},
		{"unknown category", func(r *SubmitRequest) { r.Category = "astrology" }, "category"},
		{"no urls", func(r *SubmitRequest) { r.WebsiteURL = "" }, "website_url"},
		{"bad scheme", func(r *SubmitRequest) { r.WebsiteURL = "ftp://example.com" }, "website_url"},
		{"no host", func(r *SubmitRequest) { r.WebsiteURL = "https://" }, "website_url"},
		{"bad affiliate", func(r *SubmitRequest) { r.AffiliateURL = "javascript:alert(1)" }, "affiliate_url"},
		{"too many tags", func(r *SubmitRequest) { r.Tags = make([]string, MaxTags+1) }, "tags"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := validRequest()
			tc.mutate(&r)
			errs := r.Validate()
			assert.Contains(t, fieldsOf(errs), tc.field)
		})
	}
}

func TestValidateReportsAllFailures(t *testing.T) {
	r := SubmitRequest{}
	errs := r.Validate()
	fields := fieldsOf(errs)
	assert.Contains(t, fields, "name")
	assert.Contains(t, fields, "tagline")
	assert.Contains(t, fields, "description")
	assert.Contains(t, fields, "category")
	assert.Contains(t, fields, "website_url")
}
