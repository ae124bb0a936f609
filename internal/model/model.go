// Package model defines the relational + graph data model shared by the
// store, extractors, resolver, and graph overlay: File, Symbol, Reference,
// Edge, FileEdge, GraphMetrics and Cluster.
package model

import "time"

// SymbolKind is a closed vocabulary of declaration kinds. Extractors only
// ever emit one of these; the resolver and graph overlay switch on it.
type SymbolKind string

const (
	KindFunction    SymbolKind = "function"
	KindMethod      SymbolKind = "method"
	KindClass       SymbolKind = "class"
	KindConstructor SymbolKind = "constructor"
	KindInterface   SymbolKind = "interface"
	KindStruct      SymbolKind = "struct"
	KindEnum        SymbolKind = "enum"
	KindTrait       SymbolKind = "trait"
	KindModule      SymbolKind = "module"
	KindField       SymbolKind = "field"
	KindProperty    SymbolKind = "property"
	KindVariable    SymbolKind = "variable"
	KindConstant    SymbolKind = "constant"
	KindParameter   SymbolKind = "parameter"
	KindDecorator   SymbolKind = "decorator"
	KindTrigger     SymbolKind = "trigger"
)

// AnchorKinds are the symbol kinds considered architectural anchors for
// cluster labeling (spec 4.5).
var AnchorKinds = map[SymbolKind]bool{
	KindClass:     true,
	KindStruct:    true,
	KindInterface: true,
	KindEnum:      true,
	KindTrait:     true,
	KindModule:    true,
}

// Visibility is a closed vocabulary; languages without an explicit notion
// default per their own convention (see lang package).
type Visibility string

const (
	VisibilityPublic    Visibility = "public"
	VisibilityPrivate   Visibility = "private"
	VisibilityProtected Visibility = "protected"
)

// RefKind is the semantic flavor of a Reference / Edge.
type RefKind string

const (
	RefCall       RefKind = "call"
	RefImport     RefKind = "import"
	RefInherits   RefKind = "inherits"
	RefImplements RefKind = "implements"
	RefUses       RefKind = "uses"
	RefUsesTrait  RefKind = "uses_trait"
	RefTemplate   RefKind = "template"
	RefReference  RefKind = "reference"
)

// File is one source file discovered under the project root.
type File struct {
	ID        int64
	Path      string // repository-relative, forward-slash normalized
	Language  string
	Hash      uint64 // content hash, stable across whitespace-equivalent reads
	MTime     time.Time
	LineCount int
}

// Symbol is a named declaration owned by a File.
type Symbol struct {
	ID            int64
	FileID        int64
	Name          string
	QualifiedName string
	Kind          SymbolKind
	Signature     string
	LineStart     int
	LineEnd       int
	Docstring     string // empty when absent
	Visibility    Visibility
	IsExported    bool
	ParentID      int64 // 0 when no parent
}

// Reference is the transient, never-persisted record produced by an
// extractor's reference pass and consumed by the Resolver.
type Reference struct {
	TargetName string
	Kind       RefKind
	Line       int
	SourceName string // scope/owner name at the point of the reference, may be empty
	SourceFile string // repo-relative path, filled in by the orchestrator
	ImportPath string // literal module specifier, when known
}

// Edge is a resolved symbol-to-symbol arc.
type Edge struct {
	ID       int64
	SourceID int64
	TargetID int64
	Kind     RefKind
	Line     int
}

// FileEdge aggregates the symbol edges between two distinct files.
type FileEdge struct {
	SourceFileID int64
	TargetFileID int64
	SymbolCount  int
	Kind         string // always "imports"
}

// GraphMetrics attaches derived centrality numbers to a symbol.
type GraphMetrics struct {
	SymbolID    int64
	InDegree    int
	OutDegree   int
	Betweenness float64
	PageRank    float64
}

// Cluster assigns a symbol to a community.
type Cluster struct {
	SymbolID     int64
	ClusterID    int
	ClusterLabel string
}

// FileStats carries the complexity metric computed at index time (spec
// supplement C.1) alongside the git-collector-populated churn fields (spec
// §6, not populated by this core).
type FileStats struct {
	FileID         int64
	Complexity     float64
	CommitCount    int
	TotalChurn     int
	DistinctAuthors int
}
