// Package memory provides in-process implementations of the store contracts.
//
// They are safe for concurrent use and are intended for tests, demos and
// small catalogs. Search is an exact cosine scan over every record.
package memory
