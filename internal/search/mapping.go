package search

import (
	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/v2/mapping"
)

// mappingVersion is bumped whenever buildIndexMapping changes so on-disk
// indexes are rebuilt at startup.
const mappingVersion = "1"

// buildIndexMapping indexes entry names and descriptions with the standard
// analyzer (Unicode tokenizer, lowercase) so non-Latin names tokenize sensibly,
// and the category code as an exact keyword.
func buildIndexMapping() mapping.IndexMapping {
	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultAnalyzer = standard.Name

	doc := bleve.NewDocumentMapping()

	name := bleve.NewTextFieldMapping()
	name.Analyzer = standard.Name
	name.Store = true
	name.IncludeTermVectors = true
	doc.AddFieldMappingsAt("name", name)

	// Exact lowercase name for prefix queries across whitespace.
	nameExact := bleve.NewTextFieldMapping()
	nameExact.Analyzer = keyword.Name
	nameExact.Store = false
	doc.AddFieldMappingsAt("name_exact", nameExact)

	desc := bleve.NewTextFieldMapping()
	desc.Analyzer = standard.Name
	desc.Store = false
	doc.AddFieldMappingsAt("description", desc)

	category := bleve.NewTextFieldMapping()
	category.Analyzer = keyword.Name
	category.Store = true
	doc.AddFieldMappingsAt("category", category)

	liked := bleve.NewNumericFieldMapping()
	liked.Store = true
	doc.AddFieldMappingsAt("liked", liked)

	indexMapping.DefaultMapping = doc
	return indexMapping
}
