// Package topology decides the structural category of a subgraph.
//
// A subgraph is a set of nodes sharing one source set. [Classify] looks only
// at the node count, the source set, and the in/out degree of a lone node,
// and maps the subgraph to one of seven [Category] values. The categories
// overlap in principle, so the order in which rules are tried is part of the
// contract and is documented on [Classify].
//
// The stage that classifies a whole partition and files subgraphs into
// category containers lives in package category.
package topology
