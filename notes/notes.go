// Package notes renders release notes from commit subjects.
package notes

import (
	"fmt"
	"strings"

	"github.com/leodido/go-conventionalcommits"
	"github.com/leodido/go-conventionalcommits/parser"
)

// Build renders the release notes body. Subjects that parse as conventional
// commits are grouped by kind; everything else is listed verbatim. Build
// never fails: with no subjects the body is just the preamble.
func Build(preamble string, subjects []string) string {
	var features, fixes, other []string

	m := parser.NewMachine(
		conventionalcommits.WithTypes(conventionalcommits.TypesConventional),
	)

	for _, subject := range subjects {
		subject = strings.TrimSpace(subject)
		if subject == "" {
			continue
		}

		msg, err := m.Parse([]byte(subject))
		if err != nil {
			other = append(other, subject)
			continue
		}

		cc, ok := msg.(*conventionalcommits.ConventionalCommit)
		if !ok {
			other = append(other, subject)
			continue
		}

		switch cc.Type {
		case "feat":
			features = append(features, describe(cc))
		case "fix":
			fixes = append(fixes, describe(cc))
		default:
			other = append(other, subject)
		}
	}

	var b strings.Builder
	b.WriteString(strings.TrimSpace(preamble))

	writeSection(&b, "Features", features)
	writeSection(&b, "Fixes", fixes)
	writeSection(&b, "Other changes", other)

	return b.String() + "\n"
}

func describe(cc *conventionalcommits.ConventionalCommit) string {
	if cc.Scope != nil && *cc.Scope != "" {
		return fmt.Sprintf("%s: %s", *cc.Scope, cc.Description)
	}
	return cc.Description
}

func writeSection(b *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}

	fmt.Fprintf(b, "\n\n## %s\n", title)
	for _, item := range items {
		fmt.Fprintf(b, "\n- %s", item)
	}
}
