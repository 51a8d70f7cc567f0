package model

import (
	"regexp"
	"strings"
)

var (
	packageRe = regexp.MustCompile(`package\s+([^\s;]+)\s*;`)
	importRe  = regexp.MustCompile(`import\s+([^\s;]+)\s*;`)
	extendsRe = regexp.MustCompile(`\b(?:class|interface)\s+[\w$]+(?:\s*<[^{]*>)?\s+extends\s+([\w$.]+)`)
	tableRe   = regexp.MustCompile(`@Table\s*\([^)]*?\bname\s*=\s*("[^"]*"|[^,)\s]+)`)
	actionRe  = regexp.MustCompile(`on(Delete|Update)\s*=\s*(?:[\w$]+\.)*(SET_NULL|SET_DEFAULT|CASCADE|RESTRICT|NO_ACTION)\b`)
	fieldRe   = regexp.MustCompile(`(?:^|[\s;{}])(?:(?:public|protected|private|static|final|transient|volatile)\s+)*([A-Za-z_$][\w$.]*(?:<[^;=]*?>)?(?:\[\])*)\s+([A-Za-z_$][\w$]*)\s*(?:=[^;]*)?;`)
)

const columnMarker = "@Column"

// declaration is what one source line contributes to a model. A line can
// carry several parts, e.g. an annotated class header.
type declaration struct {
	line int // 1-based

	pkg      string
	imp      string
	extends  string
	table    string
	marker   bool
	onDelete string
	onUpdate string

	field *fieldDecl
}

type fieldDecl struct {
	typ  string
	name string
}

// classify turns one source line into a declaration.
func classify(n int, line string) declaration {
	d := declaration{line: n}
	code := stripComment(line)

	if m := packageRe.FindStringSubmatch(code); m != nil {
		d.pkg = m[1]
	}
	if m := importRe.FindStringSubmatch(code); m != nil {
		d.imp = m[1]
	}
	if m := extendsRe.FindStringSubmatch(code); m != nil {
		d.extends = m[1]
	}
	if m := tableRe.FindStringSubmatch(code); m != nil {
		d.table = strings.TrimSpace(m[1])
	}
	if strings.Contains(code, columnMarker) {
		d.marker = true
		for _, m := range actionRe.FindAllStringSubmatch(code, -1) {
			action := strings.ReplaceAll(m[2], "_", " ")
			if m[1] == "Delete" {
				d.onDelete = action
			} else {
				d.onUpdate = action
			}
		}
	}
	if d.pkg == "" && d.imp == "" {
		if m := fieldRe.FindStringSubmatch(stripAnnotations(code)); m != nil && !isKeyword(m[1]) {
			d.field = &fieldDecl{typ: m[1], name: m[2]}
		}
	}
	return d
}

// scan classifies every line of a snapshot.
func scan(lines []string) []declaration {
	decls := make([]declaration, len(lines))
	for i, l := range lines {
		decls[i] = classify(i+1, l)
	}
	return decls
}

// nextField returns the index of the first declaration at or after i that
// declares a field, or -1.
func nextField(decls []declaration, i int) int {
	for ; i < len(decls); i++ {
		if decls[i].field != nil {
			return i
		}
	}
	return -1
}

// stripComment drops a trailing // comment outside string literals, and
// whole lines that sit inside a block comment.
func stripComment(line string) string {
	if t := strings.TrimSpace(line); strings.HasPrefix(t, "/*") || strings.HasPrefix(t, "*") {
		return ""
	}
	inString := false
	for i := 0; i < len(line); i++ {
		switch line[i] {
		case '\\':
			i++
		case '"':
			inString = !inString
		case '/':
			if !inString && i+1 < len(line) && line[i+1] == '/' {
				return line[:i]
			}
		}
	}
	return line
}

// stripAnnotations removes @Name and @Name(...) prefixes so that a field
// declared on its marker line is still recognized.
func stripAnnotations(code string) string {
	for {
		at := strings.IndexByte(code, '@')
		if at < 0 {
			return code
		}
		end := at + 1
		for end < len(code) && (isIdentByte(code[end]) || code[end] == '.') {
			end++
		}
		if rest := strings.TrimLeft(code[end:], " \t"); strings.HasPrefix(rest, "(") {
			end = len(code) - len(rest)
			depth := 0
			for end < len(code) {
				if code[end] == '(' {
					depth++
				} else if code[end] == ')' {
					depth--
					if depth == 0 {
						end++
						break
					}
				}
				end++
			}
		}
		code = code[:at] + " " + code[end:]
	}
}

func isIdentByte(b byte) bool {
	return b == '_' || b == '$' || b >= '0' && b <= '9' || b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z'
}

var keywords = map[string]bool{
	"return": true, "throw": true, "new": true, "package": true, "import": true,
	"else": true, "case": true, "goto": true, "assert": true,
}

func isKeyword(s string) bool {
	return keywords[s]
}
