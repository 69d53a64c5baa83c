package validate

import "regexp"

// rewrite is one step of the message cleanup chain.
type rewrite struct {
	Pattern  *regexp.Regexp
	Template string
}

// messageRewrites turn raw schema violations into field-qualified sentences.
// They are applied in order, each to every match. Path components are only
// recognized when they consist of lowercase letters or digits, so paths such
// as '#/home_page_url' keep their raw form apart from the trailing cleanups.
var messageRewrites = []rewrite{
	// '#/'
	{Pattern: regexp.MustCompile(`The property '#/' `), Template: "The top-level object "},
	// '#/title'
	{Pattern: regexp.MustCompile(`The property '#/([a-z]*)' `), Template: `The "${1}" field `},
	// '#/items/3'
	{Pattern: regexp.MustCompile(`The property '#/([a-z]*)/([0-9]*)' `), Template: `The "${1}" array (index ${2}) `},
	// '#/items/3/author/name'
	{Pattern: regexp.MustCompile(`The property '#/([a-z]*)/([0-9]*)/([a-z]*)/([a-z]*)' `), Template: `The "${4}" field in "${3}" ("${1}" array, index ${2}) `},
	// '#/items/3/attachments/0'
	{Pattern: regexp.MustCompile(`The property '#/([a-z]*)/([0-9]*)/([a-z]*)/([0-9]*)' `), Template: `The object in "${3}" (index ${4}, from array "${1}" index ${2}) `},
	{Pattern: regexp.MustCompile(`- allOf #0:`), Template: ""},
	{Pattern: regexp.MustCompile(` in schema .*`), Template: "."},
}

// CleanMessage rewrites one raw schema violation into a readable sentence.
//
// Examples:
//
//	CleanMessage("The property '#/items/2' of type string did not match the following type: object in schema file:///schema.json#")
//	// `The "items" array (index 2) of type string did not match the following type: object.`
func CleanMessage(raw string) string {
	cleaned := raw
	for _, r := range messageRewrites {
		cleaned = r.Pattern.ReplaceAllString(cleaned, r.Template)
	}
	return cleaned
}

// CleanMessages cleans each raw violation, preserving order.
func CleanMessages(raw []string) []string {
	out := make([]string, len(raw))
	for i, m := range raw {
		out[i] = CleanMessage(m)
	}
	return out
}
