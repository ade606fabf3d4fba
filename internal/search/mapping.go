package search

import (
	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/v2/mapping"
)

// buildIndexMapping creates the mapping for feed documents: folded
// full-text title, keyword kind/author/tags, numeric likes and created_at.
func buildIndexMapping() mapping.IndexMapping {
	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultAnalyzer = standard.Name

	docMapping := bleve.NewDocumentMapping()

	titleFieldMapping := bleve.NewTextFieldMapping()
	titleFieldMapping.Analyzer = standard.Name
	titleFieldMapping.IncludeTermVectors = true
	docMapping.AddFieldMappingsAt("title", titleFieldMapping)

	rawTitleFieldMapping := bleve.NewTextFieldMapping()
	rawTitleFieldMapping.Index = false
	rawTitleFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("title_raw", rawTitleFieldMapping)

	for _, field := range []string{"id", "kind", "author", "tags"} {
		fm := bleve.NewTextFieldMapping()
		fm.Analyzer = keyword.Name
		fm.Store = field == "kind"
		docMapping.AddFieldMappingsAt(field, fm)
	}

	for _, field := range []string{"likes", "created_at"} {
		fm := bleve.NewNumericFieldMapping()
		docMapping.AddFieldMappingsAt(field, fm)
	}

	indexMapping.AddDocumentMapping("_default", docMapping)
	return indexMapping
}
