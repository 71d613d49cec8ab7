// Package catalog loads, generates and ingests course catalogs.
//
// A catalog file is JSON or YAML with a top-level "courses" list of course
// details. Ingest validates each record, checks prerequisite references
// against the rest of the batch and hands valid courses to a
// hierarchy.Manager.
package catalog
