package skills

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtract_InlineLabelWithSynonyms(t *testing.T) {
	e := New("React", "Node.js")

	got := e.Extract("Jane Doe\nFull stack developer\nSkills: React, Node.js, SQL\n")

	assert.Subset(t, got, []string{"react", "node.js", "sql", "mysql", "postgres"})
	assert.Nil(t, ExtractYears("Jane Doe\nFull stack developer\nSkills: React, Node.js, SQL\n"))
}

func TestExtract_Empty(t *testing.T) {
	e := New()
	assert.Empty(t, e.Extract(""))
	assert.Empty(t, e.Extract("   \n\t  "))
	assert.NotNil(t, e.Extract(""))
}

func TestExtract_Idempotent(t *testing.T) {
	e := New("Kubernetes", "Terraform")
	text := "TECHNICAL SKILLS\nGo, Kubernetes, Terraform\n\nEXPERIENCE\nBuilt k8s operators for 4 years"
	first := e.Extract(text)
	second := e.Extract(text)
	assert.Equal(t, first, second)
	assert.IsIncreasing(t, first)
}

func TestExtract_SectionParsing(t *testing.T) {
	e := New()

	tests := []struct {
		name    string
		text    string
		want    []string
		notWant []string
	}{
		{
			name: "section with label prefixes",
			text: "SKILLS\nLanguages: Golang; Rust | C++\nCloud: GCP (BigQuery)\n\nEDUCATION\nBSc Widgetry",
			want: []string{"go", "rust", "c++", "gcp", "bigquery"},
		},
		{
			name:    "section stops at known heading",
			text:    "Technical Skills:\nHaskell, Elm\nExperience\nCobol, Fortran",
			want:    []string{"haskell", "elm"},
			notWant: []string{"cobol", "fortran"},
		},
		{
			name:    "section stops at all caps heading",
			text:    "Core Skills\nErlang, Elixir\nWORK HISTORY\nPerl, Tcl",
			want:    []string{"erlang", "elixir"},
			notWant: []string{"perl", "tcl"},
		},
		{
			name: "all caps skill line is content",
			text: "Skills\nAWS GCP SQL\nOcaml, Zig",
			want: []string{"aws", "gcp", "sql", "ocaml", "zig"},
		},
		{
			name:    "section stops at blank line",
			text:    "Skills\n\nSvelte, Deno\n\nLua, Nim",
			want:    []string{"svelte", "deno"},
			notWant: []string{"lua", "nim"},
		},
		{
			name:    "section limited to eight lines",
			text:    "Skills\nl1a\nl2a\nl3a\nl4a\nl5a\nl6a\nl7a\nl8a\nl9a",
			want:    []string{"l1a", "l8a"},
			notWant: []string{"l9a"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := e.Extract(tt.text)
			assert.Subset(t, got, tt.want)
			for _, nw := range tt.notWant {
				assert.NotContains(t, got, nw)
			}
		})
	}
}

func TestExtract_Bullets(t *testing.T) {
	e := New()
	got := e.Extract("Projects\n- Svelte, Deno\n• Clojure\n* Built a payment service with Node and PostgreSQL for a fintech startup")

	assert.Subset(t, got, []string{"svelte", "deno", "clojure", "node.js", "postgres", "sql"})
	assert.NotContains(t, got, "built a payment service with node")
}

func TestExtract_AdmissionFilter(t *testing.T) {
	e := New()
	got := e.Extract("Skills: and, x, ---, 2019, experience, responsibilities, Kotlin")

	assert.Equal(t, []string{"kotlin"}, got)
}

func TestExtract_VocabularyScanUsesWordBoundaries(t *testing.T) {
	e := New()

	got := e.Extract("I wrote JavaScript daily and deployed on Amazon Web Services with k8s.")
	assert.Contains(t, got, "javascript")
	assert.Contains(t, got, "aws")
	assert.Contains(t, got, "kubernetes")
	assert.NotContains(t, got, "java")

	got = e.Extract("Ready to go the extra mile and rest when done.")
	assert.NotContains(t, got, "go")
	assert.NotContains(t, got, "rest")
}

func TestExtract_CatalogVocabulary(t *testing.T) {
	got := New("Technical Writing", "CI/CD").Extract("Ten years of technical writing and ci/cd pipelines.")
	assert.Contains(t, got, "technical writing")
	assert.Contains(t, got, "ci/cd")
}

func TestExtract_MernExpansion(t *testing.T) {
	got := New().Extract("Experienced MERN developer")
	assert.Subset(t, got, []string{"mern", "mongodb", "express", "react", "node.js"})
}

func TestCanonicalize(t *testing.T) {
	tests := map[string]string{
		"JS":           "javascript",
		"ts":           "typescript",
		"NodeJS":       "node.js",
		"node":         "node.js",
		"Node.js":      "node.js",
		"ML":           "machine learning",
		"ReactJS":      "react",
		"PostgreSQL":   "postgres",
		"CI / CD":      "ci/cd",
		"CI/CD":        "ci/cd",
		"  Python.  ":  "python",
		"C++":          "c++",
		"C#":           "c#",
		".NET":         ".net",
		"React Native": "react native",
		"":             "",
	}
	for in, want := range tests {
		assert.Equal(t, want, Canonicalize(in), "Canonicalize(%q)", in)
	}
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "c++ c# node.js and .net", Normalize("C++, C#; Node.js and .NET."))
	assert.Equal(t, "ci cd scikit-learn", Normalize("CI/CD -- scikit-learn"))
	assert.Equal(t, "", Normalize("  ...  "))
}

func TestExtractYears(t *testing.T) {
	tests := []struct {
		text string
		want *int
	}{
		{"no mention here", nil},
		{"", nil},
		{"5+ years of experience", intPtr(5)},
		{"3 yrs at Foo, 7 years overall, 1 year at Bar", intPtr(7)},
		{"12 Years in industry", intPtr(12)},
		{"2 yr contract", intPtr(2)},
		{"Graduated 2019 years ago", nil},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got := ExtractYears(tt.text)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, *tt.want, *got)
		})
	}
}

func intPtr(v int) *int { return &v }
