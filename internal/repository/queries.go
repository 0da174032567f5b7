package repository

// Cypher statements. Every value is passed as a parameter; labels and
// relationship types are fixed.
const (
	createCategoryQuery = `
MERGE (b:MainNode {name: $root})
MERGE (c:Category {name: $name})
MERGE (c)-[:BELONGS_TO]->(b)
RETURN c.name AS name, c.share_data AS share_data`

	deleteCategoryQuery = `
MATCH (c:Category {name: $name})
DETACH DELETE c
RETURN count(*) AS deleted`

	listCategoriesQuery = `
MATCH (c:Category)
RETURN c.name AS name
ORDER BY name`

	getDatasetQuery = `
MATCH (d:Dataset {name: $name})
RETURN properties(d) AS props
LIMIT 1`

	// The old parent edge is dropped so a re-created dataset keeps a single parent.
	createDatasetQuery = `
MATCH (c:Category {name: $belongs_to})
MERGE (d:Dataset {name: $name})
SET d.url = $url,
    d.user = $user,
    d.description = $description,
    d.share_data = $share_data,
    d.last_accessed = $now
SET d += $tags
WITH c, d
OPTIONAL MATCH (d)-[old:BELONGS_TO]->(prev)
WHERE prev <> c
DELETE old
WITH DISTINCT c, d
MERGE (d)-[:BELONGS_TO]->(c)
RETURN d.name AS name, c.name AS belongs_to`

	touchDatasetQuery = `
MATCH (d:Dataset {name: $name, user: $user})
SET d.last_accessed = $now
RETURN d.name AS name`

	deleteDatasetQuery = `
MATCH (d:Dataset {name: $name, user: $user})
DETACH DELETE d
RETURN count(*) AS deleted`

	listUserDatasetsQuery = `
MATCH (d:Dataset {user: $user})
RETURN properties(d) AS props
ORDER BY d.name`

	listAllDatasetsQuery = `
MATCH (d:Dataset)
RETURN properties(d) AS props
ORDER BY d.name`

	// One row per category or dataset: its parent, its own children and the
	// fields the tree builder needs.
	treeQuery = `
MATCH (n)
WHERE n:Category OR n:Dataset
OPTIONAL MATCH (n)-[:BELONGS_TO]->(p)
OPTIONAL MATCH (child)-[:BELONGS_TO]->(n)
RETURN n.name AS node_name,
       p.name AS upper_node,
       CASE WHEN n.url IS NOT NULL AND n.url <> '' THEN 1 ELSE null END AS has_info,
       collect(DISTINCT child.name) AS under_nodes,
       labels(n) AS label,
       n.user AS node_user,
       n.share_data AS share_data`
)
