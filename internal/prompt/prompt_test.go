package prompt

import (
	"strings"
	"testing"
)

func TestCompose_ContainsContextAndQuestionVerbatim(t *testing.T) {
	contexts := []string{
		"The capital of France is Paris.",
		"France is in western Europe.",
	}
	question := "What is the capital of France?"

	out := Compose(contexts, question)

	for _, c := range contexts {
		if !strings.Contains(out, c) {
			t.Errorf("prompt missing context %q", c)
		}
	}
	if !strings.Contains(out, question) {
		t.Errorf("prompt missing question %q", question)
	}
	if !strings.Contains(out, "cannot be answered") {
		t.Error("prompt missing the cannot-answer policy instruction")
	}
}

func TestCompose_PreservesRankedOrder(t *testing.T) {
	out := Compose([]string{"first passage", "second passage"}, "q")

	if strings.Index(out, "first passage") > strings.Index(out, "second passage") {
		t.Error("context passages are out of ranked order")
	}
	if !strings.Contains(out, "first passage"+Separator+"second passage") {
		t.Error("passages are not joined with the separator")
	}
}

func TestCompose_Deterministic(t *testing.T) {
	a := Compose([]string{"ctx"}, "q")
	b := Compose([]string{"ctx"}, "q")
	if a != b {
		t.Error("Compose is not deterministic")
	}
}

func TestCompose_NoContext(t *testing.T) {
	out := Compose(nil, "orphan question")
	if !strings.Contains(out, "orphan question") {
		t.Error("prompt missing question")
	}
}
