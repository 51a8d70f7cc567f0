package catalog

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/participle/v2/lexer"

	"aamigrate/internal/logger"
)

const (
	serializerBase = "TypeSerializer"
	fromAccessor   = "getDeserializedType"
	toAccessor     = "getSerializedType"
)

// javaLexer splits Java source into just enough token kinds to follow
// identifiers across comments and string literals.
var javaLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Comment", Pattern: `//[^\n]*|/\*(?s:.*?)\*/`},
	{Name: "String", Pattern: `"(?:\\.|[^"\\])*"|'(?:\\.|[^'\\])*'`},
	{Name: "Ident", Pattern: `[A-Za-z_$][\w$]*`},
	{Name: "Number", Pattern: `[0-9][\w.]*`},
	{Name: "Punct", Pattern: `[^\s\w$"']`},
	{Name: "Whitespace", Pattern: `\s+`},
})

var (
	identToken   = javaLexer.Symbols()["Ident"]
	punctToken   = javaLexer.Symbols()["Punct"]
	ignoredToken = map[lexer.TokenType]bool{
		javaLexer.Symbols()["Comment"]:    true,
		javaLexer.Symbols()["Whitespace"]: true,
	}
)

// Discover returns the built-in mappings overridden by every serializer
// found in the .java files below root.
func Discover(root string) (Catalog, error) {
	cat := Builtins()
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if p != root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(p) != ".java" {
			return nil
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return fmt.Errorf("read %s: %w", p, err)
		}
		from, to, ok, err := serializerTypes(p, string(data))
		if err != nil {
			logger.Warn("skipping %s: %v", p, err)
			return nil
		}
		if ok {
			logger.Debug("%s: %s stored as %s", p, from, to)
			cat[from] = to
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("discover serializers in %s: %w", root, err)
	}
	return cat, nil
}

// serializerTypes returns the (deserialized, serialized) type pair of the
// last complete serializer class in src. Accessors count only once a class
// extending TypeSerializer has been declared.
func serializerTypes(filename, src string) (from, to string, ok bool, err error) {
	if !strings.Contains(src, serializerBase) {
		return "", "", false, nil
	}
	lex, err := javaLexer.Lex(filename, strings.NewReader(src))
	if err != nil {
		return "", "", false, err
	}
	all, err := lexer.ConsumeAll(lex)
	if err != nil {
		return "", "", false, err
	}
	toks := make([]lexer.Token, 0, len(all))
	for _, t := range all {
		if !ignoredToken[t.Type] {
			toks = append(toks, t)
		}
	}

	type pair struct{ from, to string }
	var cur, last pair
	var want *string
	armed := false
	for i := 0; i < len(toks); i++ {
		if toks[i].Type != identToken {
			continue
		}
		switch toks[i].Value {
		case "extends":
			if i+1 < len(toks) && toks[i+1].Value == serializerBase {
				if cur.from != "" && cur.to != "" {
					last, ok = cur, true
				}
				cur = pair{}
				armed = true
			}
		case fromAccessor:
			if armed {
				want = &cur.from
			}
		case toAccessor:
			if armed {
				want = &cur.to
			}
		case "return":
			if want == nil {
				continue
			}
			if name := returnedClass(toks[i+1:]); name != "" {
				*want = name
			}
			want = nil
		}
	}
	if cur.from != "" && cur.to != "" {
		last, ok = cur, true
	}
	return last.from, last.to, ok, nil
}

// returnedClass reads a dotted expression such as java.util.Calendar.class
// and returns the segment before the last one.
func returnedClass(toks []lexer.Token) string {
	var parts []string
	for _, t := range toks {
		if t.Type == identToken {
			parts = append(parts, t.Value)
			continue
		}
		if t.Type == punctToken && t.Value == "." {
			continue
		}
		break
	}
	if len(parts) < 2 {
		return ""
	}
	return parts[len(parts)-2]
}
