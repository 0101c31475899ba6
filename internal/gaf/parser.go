// Package gaf parses GO Annotation Format (GAF 2.x) files into flat
// annotation records.
package gaf

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/genegraph/genegraph-backend/internal/domain"
)

const columnCount = 17

func ParseFile(path string) ([]domain.AnnotationRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("gaf: open %s: %w", path, err)
	}
	defer f.Close()
	records, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("gaf: parse %s: %w", path, err)
	}
	return records, nil
}

// Parse reads a tab-separated GAF document. Comment lines start with "!".
// Lines with fewer than 17 columns are skipped; trailing columns may be
// empty. DB_Object_Synonym and Taxon are pipe-delimited sets.
func Parse(r io.Reader) ([]domain.AnnotationRecord, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	var records []domain.AnnotationRecord
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" || strings.HasPrefix(line, "!") {
			continue
		}
		cols := strings.Split(line, "\t")
		if len(cols) < columnCount {
			continue
		}
		records = append(records, domain.AnnotationRecord{
			DB:            cols[0],
			ObjectID:      cols[1],
			Symbol:        cols[2],
			Qualifier:     cols[3],
			GOID:          cols[4],
			Reference:     cols[5],
			EvidenceCode:  cols[6],
			WithOrFrom:    cols[7],
			Aspect:        cols[8],
			ObjectName:    cols[9],
			Synonyms:      splitMulti(cols[10]),
			ObjectType:    cols[11],
			Taxa:          splitMulti(cols[12]),
			Date:          cols[13],
			AssignedBy:    cols[14],
			Extension:     cols[15],
			GeneProductID: cols[16],
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

func splitMulti(field string) []string {
	if strings.TrimSpace(field) == "" {
		return nil
	}
	return strings.Split(field, "|")
}
