package domain

// AnnotationRecord is one body line of a GAF 2.x annotation file. Multi-valued
// fields are split on "|" at parse time.
type AnnotationRecord struct {
	DB            string
	ObjectID      string
	Symbol        string
	Qualifier     string
	GOID          string
	Reference     string
	EvidenceCode  string
	WithOrFrom    string
	Aspect        string
	ObjectName    string
	Synonyms      []string
	ObjectType    string
	Taxa          []string
	Date          string
	AssignedBy    string
	Extension     string
	GeneProductID string
}
