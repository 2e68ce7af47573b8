package commands

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/tokenstd/revert-registry/internal/grammar"
)

func TestRenderDefinition(t *testing.T) {
	out := renderDefinition(grammar.DefaultVocabulary().Definition())

	for _, want := range []string{
		"domains:  ERC20, ERC721, ERC1155",
		"Insufficient",
		"quantity",
		"ERC721",
		"Balance -> Owner (actor)",
		"Approval -> Allowance",
		"Operator -> Spender",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestViewOf(t *testing.T) {
	raw, err := json.Marshal(viewOf(grammar.DefaultVocabulary().Definition()))
	if err != nil {
		t.Fatalf("marshal error: %v", err)
	}
	out := string(raw)

	for _, key := range []string{`"domains"`, `"prefixes"`, `"subjects"`, `"renames"`} {
		if !strings.Contains(out, key) {
			t.Errorf("JSON missing %s key: %s", key, out)
		}
	}
	if strings.Contains(out, `"Domains"`) {
		t.Errorf("exported field name leaked into JSON: %s", out)
	}
}
