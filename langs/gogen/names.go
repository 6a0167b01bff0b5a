package gogen

import (
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var titleCaser = cases.Title(language.English)

// commonInitialisms get their canonical Go spelling when they appear as a
// whole name part.
var commonInitialisms = map[string]string{
	"id":   "ID",
	"url":  "URL",
	"uuid": "UUID",
	"json": "JSON",
	"sql":  "SQL",
}

// exportedName converts a query or column name (snake_case or camelCase)
// to an exported Go identifier.
func exportedName(name string) string {
	if name == "" {
		return "Value"
	}

	if !strings.Contains(name, "_") {
		if canonical, ok := commonInitialisms[strings.ToLower(name)]; ok {
			return canonical
		}

		return strings.ToUpper(name[:1]) + name[1:]
	}

	parts := strings.Split(name, "_")
	for i, part := range parts {
		if canonical, ok := commonInitialisms[part]; ok {
			parts[i] = canonical
			continue
		}

		parts[i] = titleCaser.String(part)
	}

	return strings.Join(parts, "")
}

// goKeywords and the identifiers generated bodies use themselves.
var reservedParamNames = map[string]bool{
	"break": true, "case": true, "chan": true, "const": true, "continue": true,
	"default": true, "defer": true, "else": true, "fallthrough": true, "for": true,
	"func": true, "go": true, "goto": true, "if": true, "import": true,
	"interface": true, "map": true, "package": true, "range": true, "return": true,
	"select": true, "struct": true, "switch": true, "type": true, "var": true,
	"q": true, "stmt": true, "mapper": true, "cursor": true, "sb": true,
	"ord": true, "err": true, "zero": true,
}

// paramName converts a parameter name to an unexported Go identifier that
// cannot collide with generated body locals.
func paramName(name string) string {
	if name == "" {
		name = "value"
	}

	if strings.Contains(name, "_") {
		parts := strings.Split(name, "_")
		for i, part := range parts[1:] {
			parts[i+1] = titleCaser.String(part)
		}

		name = strings.Join(parts, "")
	}

	if reservedParamNames[name] {
		return name + "Arg"
	}

	return name
}

// identAllocator keeps the identifiers of one generated signature unique:
// distinct source names can fold to the same Go spelling, like user_id and
// userId both becoming userId.
type identAllocator struct {
	used map[string]int
}

func newIdentAllocator() *identAllocator {
	return &identAllocator{used: map[string]int{}}
}

func (a *identAllocator) allocate(base string) string {
	count, exists := a.used[base]
	if !exists {
		a.used[base] = 1
		return base
	}

	a.used[base] = count + 1

	return base + strconv.Itoa(count+1)
}
