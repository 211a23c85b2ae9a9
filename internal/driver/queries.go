package driver

// Exact lookup queries take the node label via fmt.Sprintf because Cypher
// cannot parameterize labels. Labels come from the fixed vocabulary schema
// and are validated before interpolation.
const (
	ExactByCodeQuery = `
		MATCH (n:%s {code: $code})
		RETURN n.code AS code,
		       n.term AS term,
		       n.definition AS definition,
		       n.type AS type,
		       n.openai_embedding AS embedding
	`

	ExactByTermQuery = `
		MATCH (n:%s {term: $term})
		RETURN n.code AS code,
		       n.term AS term,
		       n.definition AS definition,
		       n.type AS type,
		       n.openai_embedding AS embedding
	`

	ExactByTermFoldedQuery = `
		MATCH (n:%s)
		WHERE toLower(n.term) = toLower($term)
		RETURN n.code AS code,
		       n.term AS term,
		       n.definition AS definition,
		       n.type AS type,
		       n.openai_embedding AS embedding
	`

	SynonymsFromPVQuery = `
		MATCH (pv:PV {term: $term})-[:HAS_CONCEPT]->(c:NCIT)-[:HAS_SYNONYM]->(syn:SYN)
		RETURN syn.term AS synonym
	`

	SynonymsFromPVFoldedQuery = `
		MATCH (pv:PV)-[:HAS_CONCEPT]->(c:NCIT)-[:HAS_SYNONYM]->(syn:SYN)
		WHERE toLower(pv.term) = toLower($term)
		RETURN syn.term AS synonym
	`

	SynonymsFromCodeQuery = `
		MATCH (n:NCIT {code: $code})-[:HAS_SYNONYM]->(syn:SYN)
		RETURN syn.term AS synonym
	`

	PVToCDEQuery = `
		CALL db.index.vector.queryNodes($index, $top_k, $embedding)
		YIELD node, score
		WHERE node:PV
		WITH node, score
		MATCH (node)<-[:HAS_PV]-(vdm:VDM)<-[:HAS_VDM]-(cde:CDE)
		RETURN score,
		       node.code AS pv_code,
		       node.term AS pv_term,
		       cde.code AS cde_code,
		       cde.term AS cde_term,
		       cde.definition AS cde_definition
		ORDER BY score DESC
	`

	ConceptToCDEQuery = `
		CALL db.index.vector.queryNodes($index, $top_k, $embedding)
		YIELD node, score
		WHERE node:NCIT
		WITH node, score
		MATCH (node)<-[:HAS_CONCEPT]-(pv:PV)
		OPTIONAL MATCH (pv)<-[:HAS_PV]-(vdm:VDM)<-[:HAS_VDM]-(cde:CDE)
		WITH collect(cde.code) AS cdes, node, pv, score
		RETURN score,
		       node.code AS concept_code,
		       node.term AS concept_term,
		       node.definition AS concept_definition,
		       pv.code AS pv_code,
		       pv.term AS pv_term,
		       cdes AS of_cdes
		ORDER BY score DESC
	`

	VectorSearchQuery = `
		CALL db.index.vector.queryNodes($index, $top_k, $embedding)
		YIELD node, score
		RETURN score,
		       node.code AS code,
		       node.term AS term,
		       node.definition AS definition
		ORDER BY score DESC
	`

	ObjectClassForCDEQuery = `
		MATCH (cde:CDE {code: $cde_code})-->(dec:DEC)-[:HAS_OC]->(oc:OC)
		RETURN DISTINCT oc.term AS oc_term
		LIMIT 1
	`

	FulltextTermQuery = `
		CALL db.index.fulltext.queryNodes($index, $term)
		YIELD node, score
		WHERE node:NCIT
		RETURN node.code AS code,
		       node.term AS term,
		       node.definition AS definition,
		       node.type AS type,
		       score
		ORDER BY score DESC
		LIMIT $limit
	`
)
