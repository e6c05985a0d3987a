package normalize

// Transform is the pluggable per-log-type document transform the core
// consumes as an external capability, gated by LogConfig.ScriptECS.
// Implementations may set DocIDSuffixKey/IndexNameKey on the returned
// Dict; the Normalizer consumes and strips them before emission.
type Transform interface {
	Transform(doc Dict) (Dict, error)
}

// DocIDSuffixKey and IndexNameKey are the sentinel fields a Transform
// may set on its output to override document id suffixing and index
// naming.
const (
	DocIDSuffixKey = "__doc_id_suffix"
	IndexNameKey   = "__index_name"
)

// PopSentinels extracts and removes DocIDSuffixKey/IndexNameKey from
// doc, returning whichever were present.
func PopSentinels(doc Dict) (docIDSuffix, indexName string, hasSuffix, hasIndex bool) {
	if v, ok := doc[DocIDSuffixKey]; ok {
		delete(doc, DocIDSuffixKey)
		if s, ok := v.(string); ok && s != "" {
			docIDSuffix, hasSuffix = s, true
		}
	}
	if v, ok := doc[IndexNameKey]; ok {
		delete(doc, IndexNameKey)
		if s, ok := v.(string); ok && s != "" {
			indexName, hasIndex = s, true
		}
	}
	return
}
