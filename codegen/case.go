package codegen

import "strings"

func toCamel(s string) string {
	s = strings.TrimSpace(s)
	// all caps stays as is
	if s == strings.ToUpper(s) {
		return s
	}
	// so does a leading capital followed by caps (ASNBe)
	if len(s) > 1 && isUpper(rune(s[0])) && s[1:] == strings.ToUpper(s[1:]) {
		return s
	}
	parts := strings.FieldsFunc(s, isDelim)
	for i, p := range parts {
		if p == "" {
			continue
		}
		runes := []rune(p)
		if isLower(runes[0]) {
			runes[0] = toUpper(runes[0])
		}
		parts[i] = string(runes)
	}
	return strings.Join(parts, "")
}

func toSnake(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	var result []rune
	prevUnderscore := false
	runes := []rune(s)
	for i, r := range runes {
		if isDelim(r) {
			if !prevUnderscore {
				result = append(result, '_')
				prevUnderscore = true
			}
			continue
		}

		if isUpper(r) {
			if i > 0 && !prevUnderscore {
				result = append(result, '_')
			}
			result = append(result, toLower(r))
			prevUnderscore = false
		} else {
			result = append(result, r)
			prevUnderscore = false
		}
	}
	res := string(result)
	for strings.Contains(res, "__") {
		res = strings.ReplaceAll(res, "__", "_")
	}
	return strings.Trim(res, "_")
}

// toModule keeps the letters of s and folds every delimiter into '_',
// which is how rust-protobuf names the module of a .proto file.
func toModule(s string) string {
	b := strings.Builder{}
	for _, r := range strings.TrimSpace(s) {
		if isDelim(r) || r == '/' {
			b.WriteRune('_')
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func isUpper(r rune) bool {
	return r >= 'A' && r <= 'Z'
}

func isLower(r rune) bool {
	return r >= 'a' && r <= 'z'
}

func toUpper(r rune) rune {
	if isLower(r) {
		return r - ('a' - 'A')
	}
	return r
}

func toLower(r rune) rune {
	if isUpper(r) {
		return r + ('a' - 'A')
	}
	return r
}

func isDelim(r rune) bool {
	return r == '_' || r == '-' || r == '.' || r == ' '
}

// toCase applies a Language.Case to s.
func toCase(s, caseKind string) string {
	switch caseKind {
	case "camel":
		return toCamel(s)
	case "module":
		return toModule(s)
	}
	return s
}
