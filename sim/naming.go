package sim

import (
	"fmt"
	"strconv"
	"strings"
)

// A Name is a hierarchical component name such as "Node[0].Sensor[1]".
type Name struct {
	Tokens []NameToken
}

// NameToken is one dot-separated element of a name.
type NameToken struct {
	ElemName string
	Index    []int
}

// ParseName splits a name into its tokens. It panics on malformed indices.
func ParseName(s string) Name {
	parts := strings.Split(s, ".")
	n := Name{Tokens: make([]NameToken, len(parts))}

	for i, p := range parts {
		n.Tokens[i] = parseNameToken(p)
	}

	return n
}

func parseNameToken(token string) NameToken {
	depth := 0
	for _, c := range token {
		switch c {
		case '[':
			depth++
		case ']':
			depth--
			if depth < 0 {
				panic("unmatched bracket")
			}
		}
	}

	if depth != 0 {
		panic("unmatched bracket")
	}

	segments := strings.Split(token, "[")
	t := NameToken{ElemName: segments[0]}

	for _, seg := range segments[1:] {
		index, err := strconv.Atoi(strings.TrimSuffix(seg, "]"))
		if err != nil {
			panic("index must be an integer")
		}

		t.Index = append(t.Index, index)
	}

	return t
}

// NameMustBeValid panics unless every element of the name is a non-empty,
// capitalized identifier without underscores, dashes or quotes.
func NameMustBeValid(name string) {
	defer func() {
		if r := recover(); r != nil {
			panic(fmt.Sprintf("name %q is not valid: %v", name, r))
		}
	}()

	for _, token := range ParseName(name).Tokens {
		if token.ElemName == "" {
			panic("empty element")
		}

		if strings.ContainsAny(token.ElemName, "_-\"'") {
			panic("element contains an invalid character")
		}

		if token.ElemName[0] < 'A' || token.ElemName[0] > 'Z' {
			panic("element must start with a capital letter")
		}
	}
}

// BuildName joins a parent name and an element name.
func BuildName(parentName, elementName string) string {
	if parentName == "" {
		return elementName
	}

	return parentName + "." + elementName
}

// BuildNameWithIndex joins a parent name and an indexed element name.
func BuildNameWithIndex(parentName, elementName string, index int) string {
	return BuildName(parentName, elementName+"["+strconv.Itoa(index)+"]")
}
