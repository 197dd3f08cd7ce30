package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/noah-isme/magazine-flow-api/internal/models"
)

const (
	annotationSeparator  = "\n\n---\n"
	annotationTimeLayout = "2006-01-02 15:04"
)

// renderAnnotation formats a single note without its leading joiner.
func renderAnnotation(ann models.CXOArticleAnnotation) string {
	if ann.Kind == models.AnnotationSubmitted {
		return stringOr(ann.Text, "")
	}
	verb := string(ann.Kind)
	if ann.Kind == models.AnnotationAutoApproved {
		verb += " after edit"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "[%s by %s on %s]", verb, ann.Author, ann.CreatedAt.UTC().Format(annotationTimeLayout))
	if ann.Text != nil && *ann.Text != "" {
		b.WriteString(": ")
		b.WriteString(*ann.Text)
	}
	if ann.Extra != nil && *ann.Extra != "" {
		b.WriteString("\n")
		b.WriteString(*ann.Extra)
	}
	return b.String()
}

// appendAnnotation returns prior comments with ann appended in the legacy layout.
func appendAnnotation(prior string, ann models.CXOArticleAnnotation) string {
	body := renderAnnotation(ann)
	switch {
	case ann.Kind == models.AnnotationAutoApproved:
		return prior + "\n" + body
	case strings.TrimSpace(prior) != "":
		return prior + annotationSeparator + body
	default:
		return prior + body
	}
}

// RenderComments rebuilds the comments text from ordered annotations.
func RenderComments(annotations []models.CXOArticleAnnotation) string {
	out := ""
	for _, ann := range annotations {
		out = appendAnnotation(out, ann)
	}
	return out
}

func newAnnotation(articleID string, kind models.AnnotationKind, author string, at time.Time, text, extra string) models.CXOArticleAnnotation {
	return models.CXOArticleAnnotation{
		ArticleID: articleID,
		Kind:      kind,
		Author:    author,
		Text:      optionalString(text),
		Extra:     optionalString(extra),
		CreatedAt: at,
	}
}
