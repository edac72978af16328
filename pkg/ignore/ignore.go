// Package ignore implements gitignore-style path exclusion for the
// .codebasedignore files consulted before a directory scan.
package ignore

import (
	"os"
	"regexp"
	"strings"

	"go.uber.org/zap"
)

// Rule is a single compiled ignore pattern together with its origin.
type Rule struct {
	Regex  *regexp.Regexp // Compiled expression matched against slash paths.
	Negate bool           // True when the pattern re-includes matches ('!' prefix).
	Line   string         // Original pattern line.
	LineNo int            // Line number in the source (1-based).
}

// Ruleset holds ignore rules in declaration order. Later rules win, so a
// negated pattern can re-include a path excluded by an earlier one.
type Ruleset struct {
	rules  []*Rule
	logger *zap.Logger
}

// NewRuleset returns an empty Ruleset.
func NewRuleset(logger *zap.Logger) *Ruleset {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Ruleset{logger: logger}
}

// Load builds a Ruleset from the optional global and local ignore files.
// Missing files are not an error.
func Load(localPath, globalPath string, logger *zap.Logger) (*Ruleset, error) {
	rs := NewRuleset(logger)

	if globalPath != "" {
		if err := rs.AddFile(globalPath); err != nil && !os.IsNotExist(err) {
			return nil, err
		}
	}
	if localPath != "" {
		if err := rs.AddFile(localPath); err != nil && !os.IsNotExist(err) {
			return nil, err
		}
	}
	return rs, nil
}

// AddFile reads an ignore file and appends its patterns.
func (rs *Ruleset) AddFile(path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	lines := strings.Split(string(content), "\n")
	rs.AddLines(lines...)
	rs.logger.Debug("Compiled ignore patterns",
		zap.String("filePath", path),
		zap.Int("lineCount", len(lines)))
	return nil
}

// AddLines compiles raw pattern lines and appends them to the set.
// Blank lines, comments, and syntactically invalid patterns are dropped.
func (rs *Ruleset) AddLines(lines ...string) {
	for i, line := range lines {
		rule := compileLine(line)
		if rule == nil {
			continue
		}
		rule.LineNo = i + 1
		rs.rules = append(rs.rules, rule)
	}
}

// Len reports the number of active rules.
func (rs *Ruleset) Len() int {
	return len(rs.rules)
}

// Match reports whether relPath is excluded by the rule set. The path is
// expected relative to the scan root; separators are normalized internally.
func (rs *Ruleset) Match(relPath string) bool {
	matched, _ := rs.MatchRule(relPath)
	return matched
}

// MatchRule is Match plus the last rule that decided the outcome.
func (rs *Ruleset) MatchRule(relPath string) (bool, *Rule) {
	normalized := strings.ReplaceAll(relPath, "\\", "/")

	var decided *Rule
	matched := false
	for _, rule := range rs.rules {
		if rule.Regex.MatchString(normalized) {
			decided = rule
			matched = !rule.Negate
		}
	}
	return matched, decided
}

// compileLine turns one ignore-file line into a Rule, or nil for
// blanks/comments/invalid patterns.
func compileLine(line string) *Rule {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" || strings.HasPrefix(trimmed, "#") {
		return nil
	}

	negate := false
	if strings.HasPrefix(trimmed, "!") {
		negate = true
		trimmed = strings.TrimPrefix(trimmed, "!")
	}

	// Escaped leading '#' or '!' are literal.
	if strings.HasPrefix(trimmed, `\#`) || strings.HasPrefix(trimmed, `\!`) {
		trimmed = trimmed[1:]
	}

	expr := escapeSpecialChars(trimmed)
	expr = expandDoubleStars(expr)
	expr = wildcardToRegex(expr)
	expr = anchorPattern(expr, trimmed)

	compiled, err := regexp.Compile(expr)
	if err != nil {
		return nil
	}
	return &Rule{Regex: compiled, Negate: negate, Line: line}
}

// escapeSpecialChars escapes regex metacharacters except '*', '?', and '/'.
func escapeSpecialChars(pattern string) string {
	specialChars := `.+()|^$[]{}`
	for _, char := range specialChars {
		pattern = strings.ReplaceAll(pattern, string(char), `\`+string(char))
	}
	return pattern
}

// expandDoubleStars rewrites '**' segments into their regex equivalents.
func expandDoubleStars(pattern string) string {
	pattern = regexp.MustCompile(`/\*\*/`).ReplaceAllString(pattern, `(/|/.+/)`)
	pattern = regexp.MustCompile(`/\*\*$`).ReplaceAllString(pattern, `(/.*)?`)
	pattern = regexp.MustCompile(`^\*\*/`).ReplaceAllString(pattern, `(.*/)?`)
	return pattern
}

// wildcardToRegex converts remaining '*' and '?' wildcards.
func wildcardToRegex(pattern string) string {
	pattern = regexp.MustCompile(`\*`).ReplaceAllString(pattern, `[^/]*`)
	return strings.ReplaceAll(pattern, "?", ".")
}

// anchorPattern anchors the expression so it matches whole path segments:
// a directory pattern also matches everything beneath it, and an unanchored
// pattern may match at any depth.
func anchorPattern(pattern string, originalPattern string) string {
	// A trailing '/' marks a directory pattern; the directory itself and
	// everything beneath it match. File patterns also swallow descendants
	// so a matched directory name excludes its contents.
	pattern = strings.TrimSuffix(pattern, "/") + "(|/.*)$"

	// A leading '/' anchors the pattern at the scan root.
	if strings.HasPrefix(originalPattern, "/") {
		return "^" + strings.TrimPrefix(pattern, "/")
	}
	return "^(|.*/)" + pattern
}
