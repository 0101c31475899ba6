// Package kgml parses KEGG pathway markup (KGML) files into pathway entries
// and relations.
package kgml

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/genegraph/genegraph-backend/internal/domain"
)

type xmlPathway struct {
	Number    string        `xml:"number,attr"`
	Title     string        `xml:"title,attr"`
	Entries   []xmlEntry    `xml:"entry"`
	Relations []xmlRelation `xml:"relation"`
}

type xmlEntry struct {
	ID       string       `xml:"id,attr"`
	Type     string       `xml:"type,attr"`
	Name     string       `xml:"name,attr"`
	Graphics *xmlGraphics `xml:"graphics"`
}

type xmlGraphics struct {
	Name string `xml:"name,attr"`
}

type xmlRelation struct {
	Entry1   string       `xml:"entry1,attr"`
	Entry2   string       `xml:"entry2,attr"`
	Type     string       `xml:"type,attr"`
	Subtypes []xmlSubtype `xml:"subtype"`
}

type xmlSubtype struct {
	Name string `xml:"name,attr"`
}

func ParseFile(path string) (*domain.Pathway, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("kgml: open %s: %w", path, err)
	}
	defer f.Close()
	pathway, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("kgml: parse %s: %w", path, err)
	}
	return pathway, nil
}

// Parse reads one KGML document. Only gene and compound entries are kept;
// relations are kept verbatim with their subtype names in document order.
func Parse(r io.Reader) (*domain.Pathway, error) {
	var doc xmlPathway
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, err
	}

	pathway := &domain.Pathway{
		ID:   doc.Number,
		Name: doc.Title,
	}

	for _, entry := range doc.Entries {
		entryType := domain.EntryType(entry.Type)
		if entryType != domain.EntryGene && entryType != domain.EntryCompound {
			continue
		}
		parsed := domain.PathwayEntry{
			EntryID: entry.ID,
			Type:    entryType,
			Names:   strings.Fields(entry.Name),
			Symbols: parseSymbols(entry.Graphics),
		}
		switch entryType {
		case domain.EntryGene:
			pathway.Genes = append(pathway.Genes, parsed)
		case domain.EntryCompound:
			pathway.Compounds = append(pathway.Compounds, parsed)
		}
	}

	for _, rel := range doc.Relations {
		subtypes := make([]string, 0, len(rel.Subtypes))
		for _, st := range rel.Subtypes {
			subtypes = append(subtypes, st.Name)
		}
		pathway.Relations = append(pathway.Relations, domain.PathwayRelation{
			Entry1:   rel.Entry1,
			Entry2:   rel.Entry2,
			Type:     rel.Type,
			Subtypes: subtypes,
		})
	}

	return pathway, nil
}

// parseSymbols splits the graphics display name and strips the trailing
// "..." marker KEGG uses to truncate long symbol lists.
func parseSymbols(graphics *xmlGraphics) []string {
	if graphics == nil || strings.TrimSpace(graphics.Name) == "" {
		return nil
	}
	parts := strings.Split(graphics.Name, ", ")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		symbol := strings.TrimRight(part, ".")
		if symbol == "" {
			continue
		}
		out = append(out, symbol)
	}
	return out
}
