package render

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"specdoc/internal/content"
)

func TestMarkdown_BulletsNormalized(t *testing.T) {
	doc := &content.Document{
		Title: "Chapter 1",
		Sections: []content.Section{{
			Heading: "1.1 Intro",
			Level:   2,
			Content: []string{"• First", "- Second"},
		}},
	}

	got := Markdown(doc)

	assert.Equal(t, "# Chapter 1\n\n## 1.1 Intro\n\n* First\n\n* Second\n\n", got)
}

func TestMarkdown_EmptyDocument(t *testing.T) {
	assert.Equal(t, "", Markdown(&content.Document{}))
	assert.Equal(t, "", Markdown(nil))
}

func TestMarkdown_BlankTitleOmitted(t *testing.T) {
	doc := &content.Document{
		Title:    "   ",
		Sections: []content.Section{{Heading: "Specs", Level: 1, Content: []string{"750 W"}}},
	}

	got := Markdown(doc)
	assert.False(t, strings.HasPrefix(got, "# \n"))
	assert.True(t, strings.HasPrefix(got, "# Specs\n"))
}

func TestMarkdown_HeadingLevelClamped(t *testing.T) {
	doc := &content.Document{
		Sections: []content.Section{
			{Heading: "Zero", Level: 0, Content: []string{"a"}},
			{Heading: "Nine", Level: 9, Content: []string{"b"}},
		},
	}

	got := Markdown(doc)
	assert.Contains(t, got, "# Zero\n")
	assert.Contains(t, got, "###### Nine\n")
	assert.NotContains(t, got, "####### ")
}

func TestMarkdown_EmptyHeadingRendersContentOnly(t *testing.T) {
	doc := &content.Document{
		Sections: []content.Section{{Level: 2, Content: []string{"orphan paragraph"}}},
	}

	got := Markdown(doc)
	assert.Equal(t, "orphan paragraph\n\n", got)
}

func TestMarkdown_PlaceholderSpacing(t *testing.T) {
	doc := &content.Document{
		Sections: []content.Section{{
			Heading: "Physical",
			Level:   2,
			Content: []string{"weighs{{Chassis weight}}fully loaded"},
		}},
	}

	got := Markdown(doc)
	assert.Contains(t, got, "weighs {{Chassis weight}} fully loaded")
}

func TestMarkdown_Deterministic(t *testing.T) {
	doc := &content.Document{
		Title: "Guide",
		Sections: []content.Section{{
			Heading: "Specs",
			Level:   2,
			Content: []string{"Weight: {{Chassis weight}}", "", "• 750 W PSU"},
			Children: []content.Section{
				{Heading: "Sub", Level: 3, Content: []string{"nested"}},
			},
		}},
	}

	first := Markdown(doc)
	second := Markdown(doc)
	assert.Equal(t, first, second)
}

func TestMarkdown_ExactlyTwoTrailingNewlines(t *testing.T) {
	doc := &content.Document{Title: "T"}
	got := Markdown(doc)
	require.True(t, strings.HasSuffix(got, "\n\n"))
	assert.False(t, strings.HasSuffix(got, "\n\n\n"))
}

func TestMarkdown_NestedSectionsRenderDepthFirst(t *testing.T) {
	doc := &content.Document{
		Sections: []content.Section{{
			Heading: "Parent",
			Level:   1,
			Content: []string{"top"},
			Children: []content.Section{
				{Heading: "Child", Level: 2, Content: []string{"inner"}},
			},
		}},
	}

	got := Markdown(doc)
	parent := strings.Index(got, "# Parent")
	top := strings.Index(got, "top")
	child := strings.Index(got, "## Child")
	inner := strings.Index(got, "inner")
	require.True(t, parent >= 0 && top > parent && child > top && inner > child)
}
