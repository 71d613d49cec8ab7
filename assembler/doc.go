// Package assembler renders retrieval results into a single markdown context
// block, typically used as grounding for a language model.
//
// Every summary is rendered as a short overview. Details, when given, are
// expanded underneath with their description, objectives, prerequisites,
// assignments and syllabus. AssembleWithBudget trims expanded details from
// the tail until the estimated size fits the budget, but always keeps at
// least one. Details must therefore be passed in relevance order, which is
// what hierarchy.Manager.HierarchicalSearch returns.
//
// Token counts are estimated with a TokenEstimator. The default heuristic
// counts one token per four bytes; TiktokenEstimator counts BPE tokens.
package assembler
