package domain

// EntryType is the KGML entry kind this pipeline keeps. Other KGML kinds
// (map, group, ortholog) are dropped at parse time.
type EntryType string

const (
	EntryGene     EntryType = "gene"
	EntryCompound EntryType = "compound"
)

// PathwayEntry is one gene or compound entry of a KGML pathway. EntryID is
// scoped to the pathway file, not a global gene identity.
type PathwayEntry struct {
	EntryID string
	Type    EntryType
	// Names are the external identifiers from the entry's name attribute.
	Names []string
	// Symbols are the display symbols from the graphics element.
	Symbols []string
}

// PathwayRelation is one directed relation between two pathway entries.
type PathwayRelation struct {
	Entry1   string
	Entry2   string
	Type     string
	Subtypes []string
}

// Pathway is the parsed content of one KGML file. ID is the KGML number
// attribute and doubles as the disease identifier in the graph.
type Pathway struct {
	ID        string
	Name      string
	Genes     []PathwayEntry
	Compounds []PathwayEntry
	Relations []PathwayRelation
}
