package tools

import (
	"strings"

	"golang.org/x/net/html"
)

// ExtractField returns the value attribute of the first <input> whose name
// matches, or "" when there is none. Attribute order and quoting do not matter.
func ExtractField(doc, name string) string {
	return findInput(doc, "name", name)
}

// ExtractFieldByID is ExtractField matched on the id attribute.
func ExtractFieldByID(doc, id string) string {
	return findInput(doc, "id", id)
}

func findInput(doc, attr, want string) string {
	z := html.NewTokenizer(strings.NewReader(doc))
	for {
		switch z.Next() {
		case html.ErrorToken:
			// io.EOF or a read error, either way nothing more to scan
			return ""
		case html.StartTagToken, html.SelfClosingTagToken:
			tok := z.Token()
			if tok.Data != "input" {
				continue
			}
			if v, ok := inputValue(tok, attr, want); ok {
				return v
			}
		}
	}
}

func inputValue(tok html.Token, attr, want string) (string, bool) {
	matched := false
	value := ""
	for _, a := range tok.Attr {
		switch a.Key {
		case attr:
			matched = strings.EqualFold(a.Val, want)
		case "value":
			value = a.Val
		}
	}
	return value, matched
}

// ContainsAny reports whether text contains one of the phrases, ignoring case.
func ContainsAny(text string, phrases ...string) bool {
	lower := strings.ToLower(text)
	for _, p := range phrases {
		if p != "" && strings.Contains(lower, strings.ToLower(p)) {
			return true
		}
	}
	return false
}
