package gaf

import (
	"strings"
	"testing"
)

func gafLine(cols ...string) string {
	full := make([]string, 17)
	copy(full, cols)
	return strings.Join(full, "\t")
}

func TestParseSkipsCommentsAndShortLines(t *testing.T) {
	input := strings.Join([]string{
		"!gaf-version: 2.2",
		"! generated by test",
		gafLine("UniProtKB", "P01308", "INS", "enables", "GO:0005179", "GO_REF:0000043", "IEA", "", "F",
			"Insulin", "INS|IDDM2|proinsulin", "protein", "taxon:9606", "20240101", "UniProt", "", ""),
		"too\tshort\tline",
	}, "\n")

	records, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("records: want=1 got=%d", len(records))
	}

	rec := records[0]
	if rec.Symbol != "INS" || rec.GOID != "GO:0005179" || rec.Qualifier != "enables" {
		t.Fatalf("record fields: got=%+v", rec)
	}
	if rec.Aspect != "F" || rec.ObjectType != "protein" {
		t.Fatalf("aspect/type: got=%q %q", rec.Aspect, rec.ObjectType)
	}
}

func TestParseSplitsMultiValuedFields(t *testing.T) {
	input := gafLine("UniProtKB", "P01308", "INS", "enables", "GO:0005179", "ref", "IEA", "", "F",
		"Insulin", "INS|IDDM2", "protein", "taxon:9606|taxon:1234", "20240101", "UniProt", "", "")

	records, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	rec := records[0]
	if len(rec.Synonyms) != 2 || rec.Synonyms[0] != "INS" || rec.Synonyms[1] != "IDDM2" {
		t.Fatalf("synonyms: got=%v", rec.Synonyms)
	}
	if len(rec.Taxa) != 2 || rec.Taxa[1] != "taxon:1234" {
		t.Fatalf("taxa: got=%v", rec.Taxa)
	}
}

func TestParseEmptyMultiValuedFieldIsEmptySet(t *testing.T) {
	input := gafLine("UniProtKB", "P01308", "INS", "enables", "GO:0005179", "ref", "IEA", "", "F",
		"Insulin", "", "protein", "", "20240101", "UniProt", "", "")

	records, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(records[0].Synonyms) != 0 {
		t.Fatalf("synonyms: want empty got=%v", records[0].Synonyms)
	}
	if len(records[0].Taxa) != 0 {
		t.Fatalf("taxa: want empty got=%v", records[0].Taxa)
	}
}
