package db

import (
	"strconv"
	"strings"
	"unicode"
)

// MatchAll is the FT.SEARCH expression that matches every document.
const MatchAll = "*"

// separators are the characters the RediSearch tokenizer splits on.
const separators = ",.<>{}[]\"':;!@#$%^&*()-+=~/\\|?`"

// Tokenize splits text the way the index tokenizer does and lowercases the tokens.
func Tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return unicode.IsSpace(r) || strings.ContainsRune(separators, r)
	})
}

// EscapeText escapes query syntax characters inside a text term.
func EscapeText(s string) string {
	return queryEscaper.Replace(s)
}

// EscapeTag escapes a value for use inside a TAG clause.
func EscapeTag(s string) string {
	return tagEscaper.Replace(s)
}

// TagMatch builds @attr:{v1|v2}.
func TagMatch(attr string, values ...string) string {
	escaped := make([]string, len(values))
	for i, v := range values {
		escaped[i] = EscapeTag(v)
	}
	return "@" + attr + ":{" + strings.Join(escaped, "|") + "}"
}

// NumericEquals builds @attr:[v v].
func NumericEquals(attr string, v int64) string {
	s := strconv.FormatInt(v, 10)
	return "@" + attr + ":[" + s + " " + s + "]"
}

// InFields restricts expr to the given TEXT attributes: @a|b:(expr).
func InFields(attrs []string, expr string) string {
	if len(attrs) == 0 {
		return expr
	}
	return "@" + strings.Join(attrs, "|") + ":(" + expr + ")"
}

// Intersect ANDs non-empty clauses. An empty list yields MatchAll.
func Intersect(clauses ...string) string {
	parts := nonEmpty(clauses)
	switch len(parts) {
	case 0:
		return MatchAll
	case 1:
		return parts[0]
	}
	return strings.Join(parts, " ")
}

// Union ORs non-empty clauses inside a group.
func Union(clauses ...string) string {
	parts := nonEmpty(clauses)
	switch len(parts) {
	case 0:
		return ""
	case 1:
		return parts[0]
	}
	return "(" + strings.Join(parts, "|") + ")"
}

func nonEmpty(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

var tagEscaper = strings.NewReplacer(
	",", "\\,",
	".", "\\.",
	"<", "\\<",
	">", "\\>",
	"{", "\\{",
	"}", "\\}",
	"[", "\\[",
	"]", "\\]",
	"\"", "\\\"",
	"'", "\\'",
	":", "\\:",
	";", "\\;",
	"!", "\\!",
	"@", "\\@",
	"#", "\\#",
	"$", "\\$",
	"%", "\\%",
	"^", "\\^",
	"&", "\\&",
	"*", "\\*",
	"(", "\\(",
	")", "\\)",
	"-", "\\-",
	"+", "\\+",
	"=", "\\=",
	"~", "\\~",
	"|", "\\|",
	"/", "\\/",
	" ", "\\ ",
)

var queryEscaper = strings.NewReplacer(
	`\`, `\\`,
	`'`, `\'`,
	`"`, `\"`,
	`@`, `\@`,
	`{`, `\{`,
	`}`, `\}`,
	`(`, `\(`,
	`)`, `\)`,
	`|`, `\|`,
	`-`, `\-`,
	`~`, `\~`,
	`*`, `\*`,
	`[`, `\[`,
	`]`, `\]`,
	`!`, `\!`,
	`%`, `\%`,
	`^`, `\^`,
	`$`, `\$`,
	`<`, `\<`,
	`>`, `\>`,
	`=`, `\=`,
	`;`, `\;`,
	`+`, `\+`,
	`:`, `\:`,
)
