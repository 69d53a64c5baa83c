package schema

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"github.com/santhosh-tekuri/jsonschema/v6/kind"
	"golang.org/x/text/message"
)

// describe renders an error kind as the predicate of a violation sentence.
// Required yields one predicate per missing property. Kinds without a
// phrase fall back to the library's English message.
func describe(k jsonschema.ErrorKind, p *message.Printer) []string {
	switch k := k.(type) {
	case *kind.Required:
		out := make([]string, 0, len(k.Missing))
		for _, name := range k.Missing {
			out = append(out, fmt.Sprintf("did not contain a required property of '%s'", name))
		}
		return out
	case *kind.Type:
		if len(k.Want) == 1 {
			return []string{fmt.Sprintf("of type %s did not match the following type: %s", k.Got, k.Want[0])}
		}
		return []string{fmt.Sprintf("of type %s did not match one or more of the following types: %s", k.Got, strings.Join(k.Want, ", "))}
	case *kind.Enum:
		want := make([]string, len(k.Want))
		for i, w := range k.Want {
			want[i] = literal(w)
		}
		return []string{fmt.Sprintf("value %s did not match one of the following values: %s", literal(k.Got), strings.Join(want, ", "))}
	case *kind.Const:
		return []string{fmt.Sprintf("value %s did not match constant %s", literal(k.Got), literal(k.Want))}
	case *kind.Format:
		if k.Want == "date-time" {
			return []string{"must be a date/time in the ISO-8601 format"}
		}
		return []string{fmt.Sprintf("must be a valid %s", formatName(k.Want))}
	case *kind.AdditionalProperties:
		return []string{fmt.Sprintf("contains additional properties %s outside of the schema when none are allowed", literal(k.Properties))}
	case *kind.MinItems:
		return []string{fmt.Sprintf("did not contain a minimum number of items %d", k.Want)}
	case *kind.MaxItems:
		return []string{fmt.Sprintf("had more items than the allowed %d", k.Want)}
	case *kind.MinLength:
		return []string{fmt.Sprintf("was not of a minimum string length of %d", k.Want)}
	case *kind.MaxLength:
		return []string{fmt.Sprintf("was not of a maximum string length of %d", k.Want)}
	case *kind.Pattern:
		return []string{fmt.Sprintf("value %s did not match the regex '%s'", literal(k.Got), k.Want)}
	default:
		return []string{k.LocalizedString(p)}
	}
}

// literal renders a JSON value the way it appears in the document.
func literal(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(b)
}

func formatName(format string) string {
	switch format {
	case "uri", "uri-reference", "iri", "iri-reference":
		return "URI"
	case "email", "idn-email":
		return "email address"
	default:
		return format
	}
}
