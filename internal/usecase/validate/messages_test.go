package validate

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func TestCleanMessage(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			name: "top-level object",
			raw:  "The property '#/' did not contain a required property of 'title' in schema file:///srv/config/schema.json#",
			want: "The top-level object did not contain a required property of 'title'.",
		},
		{
			name: "single field",
			raw:  "The property '#/title' of type integer did not match the following type: string in schema https://jsonfeed.org/schema/feed.json#/properties/title",
			want: `The "title" field of type integer did not match the following type: string.`,
		},
		{
			name: "array element",
			raw:  "The property '#/items/2' did not contain a required property of 'id' in schema file:///tmp/schema.json#",
			want: `The "items" array (index 2) did not contain a required property of 'id'.`,
		},
		{
			name: "field inside array element",
			raw:  "The property '#/items/0/author/name' of type boolean did not match the following type: string in schema x",
			want: `The "name" field in "author" ("items" array, index 0) of type boolean did not match the following type: string.`,
		},
		{
			name: "object inside nested array",
			raw:  "The property '#/items/3/attachments/1' did not contain a required property of 'url' in schema x",
			want: `The object in "attachments" (index 1, from array "items" index 3) did not contain a required property of 'url'.`,
		},
		{
			name: "underscore field is not recognized",
			raw:  "The property '#/home_page_url' must be a valid URI in schema x",
			want: "The property '#/home_page_url' must be a valid URI.",
		},
		{
			name: "uppercase field is not recognized",
			raw:  "The property '#/Title' of type null did not match the following type: string in schema x",
			want: "The property '#/Title' of type null did not match the following type: string.",
		},
		{
			name: "deeper path passes through",
			raw:  "The property '#/items/0/tags/2/x' of type integer did not match the following type: string in schema x",
			want: "The property '#/items/0/tags/2/x' of type integer did not match the following type: string.",
		},
		{
			name: "allOf marker stripped",
			raw:  "The property '#/' of type object did not match all of the required schemas - allOf #0: oops in schema x",
			want: "The top-level object of type object did not match all of the required schemas  oops.",
		},
		{
			name: "no schema suffix",
			raw:  "The property '#/version' value 1 did not match",
			want: `The "version" field value 1 did not match`,
		},
		{
			name: "unrelated text",
			raw:  "something else entirely",
			want: "something else entirely",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanMessage(tt.raw))
		})
	}
}

func TestCleanMessage_ArrayIndexPrefix(t *testing.T) {
	got := CleanMessage("The property '#/items/2' is missing a value")
	assert.Equal(t, `The "items" array (index 2) is missing a value`, got)
}

func TestCleanMessage_SchemaSuffixBecomesPeriod(t *testing.T) {
	got := CleanMessage("The property '#/title' was wrong in schema file:///tmp/schema.json#")
	assert.Equal(t, `The "title" field was wrong.`, got)
}

func TestCleanMessages_PreservesOrder(t *testing.T) {
	raw := []string{
		"The property '#/' did not contain a required property of 'items' in schema a",
		"The property '#/title' of type integer did not match the following type: string in schema a",
		"The property '#/items/0' of type string did not match the following type: object in schema a",
	}
	want := []string{
		"The top-level object did not contain a required property of 'items'.",
		`The "title" field of type integer did not match the following type: string.`,
		`The "items" array (index 0) of type string did not match the following type: object.`,
	}

	if diff := cmp.Diff(want, CleanMessages(raw)); diff != "" {
		t.Errorf("CleanMessages() mismatch (-want +got):\n%s", diff)
	}
}

func TestCleanMessages_Empty(t *testing.T) {
	assert.Empty(t, CleanMessages(nil))
}
